// Package notify posts report summaries to chat channels. Delivery is
// best-effort: a failed post is logged, never fatal to the report.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/zulandar/marketlens/internal/analytics"
	"github.com/zulandar/marketlens/internal/config"
)

// Adapter posts a text message to one chat platform.
type Adapter interface {
	Name() string
	Post(ctx context.Context, text string) error
}

// FromConfig builds the adapters enabled by configuration.
func FromConfig(cfg config.NotifyConfig) ([]Adapter, error) {
	var adapters []Adapter
	if cfg.SlackToken != "" {
		adapters = append(adapters, NewSlackAdapter(cfg.SlackToken, cfg.SlackChannel))
	}
	if cfg.DiscordToken != "" {
		a, err := NewDiscordAdapter(cfg.DiscordToken, cfg.DiscordChannel)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// Summary renders the one-line report summary posted to channels.
func Summary(experiment string, report *analytics.Report) string {
	s := report.Analytics.MarketplaceSummary
	text := fmt.Sprintf("%s: %d threads, %d payments, %d proposals, total utility %.2f",
		experiment, len(report.MessageThreads), s.TotalPayments, s.TotalProposals, s.TotalUtility)
	if d := report.Diagnostics; d != nil {
		text += fmt.Sprintf(" (%d undecodable rows, %d dropped actions, %d unattributed payments)",
			d.DecodeFailures, d.DroppedActions, d.UnattributedPayments)
	}
	return text
}

// PostAll sends text through every adapter, logging failures.
func PostAll(ctx context.Context, adapters []Adapter, text string) {
	for _, a := range adapters {
		if err := a.Post(ctx, text); err != nil {
			log.Printf("notify: %s: %v", a.Name(), err)
		}
	}
}
