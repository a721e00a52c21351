package analytics

import (
	"github.com/zulandar/marketlens/internal/actions"
	"github.com/zulandar/marketlens/internal/agents"
	"github.com/zulandar/marketlens/internal/attribution"
	"github.com/zulandar/marketlens/internal/threads"
)

// Input carries everything Aggregate needs. Actions is the full
// decoded list: marketplace totals count every payment and proposal,
// including ones that never made it onto a thread.
type Input struct {
	Assembled   *threads.Result
	Directory   *agents.Directory
	Attribution *attribution.Table
	Actions     []actions.Action
	Utility     UtilityFunc
}

// Aggregate produces the report. It is a pure function of its inputs:
// recomputing from the identical snapshot yields an identical report.
func Aggregate(in Input) *Report {
	utilityFn := in.Utility
	if utilityFn == nil {
		utilityFn = func(string, string) float64 { return 0 }
	}

	// Score flagged threads; unpaid threads keep utility 0.
	for key := range in.Assembled.Flagged {
		t := in.Assembled.Threads[key]
		t.Utility = utilityFn(key.CustomerID, key.BusinessID)
	}

	ordered := make([]actions.Action, len(in.Actions))
	copy(ordered, in.Actions)
	actions.Sort(ordered)

	report := &Report{
		Messages:       make([]threads.Message, 0, len(ordered)),
		MessageThreads: threadViews(in.Assembled, in.Directory),
		Analytics: Analytics{
			CustomerAnalytics: make(map[string]CustomerRecord),
			BusinessAnalytics: make(map[string]BusinessRecord),
		},
	}
	for _, a := range ordered {
		report.Messages = append(report.Messages, threads.NewMessage(a))
	}

	// Per-thread utilities roll up to both participants.
	customerUtility := make(map[string]float64)
	businessUtility := make(map[string]float64)
	for key := range in.Assembled.Flagged {
		u := in.Assembled.Threads[key].Utility
		customerUtility[key.CustomerID] += u
		businessUtility[key.BusinessID] += u
	}

	// Directional action counts from the full decoded list.
	paymentsMade := make(map[string]int)
	proposalsReceived := make(map[string]int)
	proposalsSent := make(map[string]int)
	totalPayments, totalProposals := 0, 0
	for _, a := range ordered {
		switch a.Kind {
		case actions.KindPayment:
			totalPayments++
			paymentsMade[a.FromAgent]++
		case actions.KindProposal:
			totalProposals++
			proposalsSent[a.FromAgent]++
			proposalsReceived[a.ToAgent]++
		}
	}

	totalUtility := 0.0
	for _, c := range in.Directory.Customers() {
		rec := CustomerRecord{
			Utility:           customerUtility[c.ID],
			PaymentsMade:      paymentsMade[c.ID],
			ProposalsReceived: proposalsReceived[c.ID],
		}
		report.Analytics.CustomerAnalytics[c.ID] = rec
		totalUtility += rec.Utility
	}
	for _, b := range in.Directory.Businesses() {
		report.Analytics.BusinessAnalytics[b.ID] = BusinessRecord{
			Utility:          businessUtility[b.ID],
			ProposalsSent:    proposalsSent[b.ID],
			PaymentsReceived: in.Attribution.PaymentsReceived(b.ID),
		}
	}
	report.Analytics.MarketplaceSummary = MarketplaceSummary{
		TotalUtility:   totalUtility,
		TotalPayments:  totalPayments,
		TotalProposals: totalProposals,
	}

	return report
}

// threadViews renders threads in presentation order with resolved
// participants. Every thread key resolves by construction; the lookups
// fill in display names.
func threadViews(r *threads.Result, dir *agents.Directory) []ThreadView {
	sorted := r.Sorted()
	views := make([]ThreadView, 0, len(sorted))
	for _, t := range sorted {
		customer, _ := dir.Resolve(t.Key.CustomerID)
		business, _ := dir.Resolve(t.Key.BusinessID)
		views = append(views, ThreadView{
			Participants: Participants{
				Customer: Participant{ID: t.Key.CustomerID, Name: customer.Name},
				Business: Participant{ID: t.Key.BusinessID, Name: business.Name},
			},
			Messages:        t.Messages,
			LastMessageTime: t.LastMessageTime,
			Utility:         t.Utility,
		})
	}
	return views
}
