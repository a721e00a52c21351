package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// discordSession abstracts the discordgo.Session methods we use,
// enabling test mocks.
type discordSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAdapter posts to one Discord channel via the REST API.
type DiscordAdapter struct {
	session discordSession
	channel string
}

// NewDiscordAdapter creates a Discord adapter from a bot token.
func NewDiscordAdapter(token, channel string) (*DiscordAdapter, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("notify: discord session: %w", err)
	}
	return &DiscordAdapter{session: session, channel: channel}, nil
}

// Name implements Adapter.
func (a *DiscordAdapter) Name() string { return "discord" }

// Post implements Adapter. The discordgo REST client has no context
// parameter; ctx is accepted for interface symmetry.
func (a *DiscordAdapter) Post(ctx context.Context, text string) error {
	if _, err := a.session.ChannelMessageSend(a.channel, text); err != nil {
		return fmt.Errorf("notify: discord post to %s: %w", a.channel, err)
	}
	return nil
}
