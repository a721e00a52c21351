package notify

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// SlackAdapter posts to one Slack channel via the Web API.
type SlackAdapter struct {
	client  slackClient
	channel string
}

// NewSlackAdapter creates a Slack adapter from a bot token.
func NewSlackAdapter(token, channel string) *SlackAdapter {
	return &SlackAdapter{client: slackapi.New(token), channel: channel}
}

// Name implements Adapter.
func (a *SlackAdapter) Name() string { return "slack" }

// Post implements Adapter.
func (a *SlackAdapter) Post(ctx context.Context, text string) error {
	_, _, err := a.client.PostMessageContext(ctx, a.channel, slackapi.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("notify: slack post to %s: %w", a.channel, err)
	}
	return nil
}
