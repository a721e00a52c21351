// Package pipeline runs one full log reconstruction: fetch a snapshot,
// decode, assemble threads, attribute payments, aggregate. Invocations
// are independent: each owns its directory, thread map, and attribution
// table, and the storage handle arrives as an argument, never through
// package state.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zulandar/marketlens/internal/actions"
	"github.com/zulandar/marketlens/internal/agents"
	"github.com/zulandar/marketlens/internal/analytics"
	"github.com/zulandar/marketlens/internal/attribution"
	"github.com/zulandar/marketlens/internal/models"
	"github.com/zulandar/marketlens/internal/scoring"
	"github.com/zulandar/marketlens/internal/threads"
)

// Reader is the storage collaborator: a bulk snapshot source for one
// experiment. The two fetches are the pipeline's only suspension
// points; retries, if any, belong to the implementation behind this
// interface.
type Reader interface {
	AllAgents(ctx context.Context) ([]models.Agent, error)
	AllActions(ctx context.Context) ([]models.Action, error)
}

// Options tunes one pipeline invocation.
type Options struct {
	// FetchTimeout bounds the snapshot fetch. Zero means no bound
	// beyond the caller's ctx.
	FetchTimeout time.Duration
	// Utility overrides the default feature-match scorer.
	Utility analytics.UtilityFunc
}

// Run computes the report for one experiment snapshot. A storage
// failure is fatal and returns an error with no partial report;
// malformed rows and unresolvable participants degrade to diagnostics
// on an otherwise complete report.
func Run(ctx context.Context, reader Reader, opts Options) (*analytics.Report, error) {
	fetchCtx := ctx
	if opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, opts.FetchTimeout)
		defer cancel()
	}

	agentRows, err := reader.AllAgents(fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	actionRows, err := reader.AllActions(fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	dir := agents.BuildDirectory(agentRows)

	decoded, failures := actions.DecodeAll(actionRows)
	for _, f := range failures {
		log.Printf("pipeline: undecodable row %s: %s", f.RowID, f.Reason)
	}

	assembled := threads.Assemble(decoded, dir)
	if assembled.Dropped > 0 {
		log.Printf("pipeline: dropped %d actions with unresolvable participants", assembled.Dropped)
	}

	table := attribution.Attribute(decoded, dir)

	utility := opts.Utility
	if utility == nil {
		utility = scoring.NewFeatureMatchScorer(dir).Score
	}

	report := analytics.Aggregate(analytics.Input{
		Assembled:   assembled,
		Directory:   dir,
		Attribution: table,
		Actions:     decoded,
		Utility:     utility,
	})

	if len(failures) > 0 || assembled.Dropped > 0 || len(table.Unattributed) > 0 {
		report.Diagnostics = &analytics.Diagnostics{
			DecodeFailures:       len(failures),
			DroppedActions:       assembled.Dropped,
			UnattributedPayments: len(table.Unattributed),
		}
	}
	return report, nil
}
