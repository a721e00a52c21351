// Package analytics combines the directory, assembled threads, and the
// payment attribution table into the marketplace report. Field names in
// the JSON output are part of the contract with downstream consumers.
package analytics

import (
	"time"

	"github.com/zulandar/marketlens/internal/threads"
)

// UtilityFunc scores one completed (paid) conversation. The formula is
// an externally-defined policy; the aggregator only knows the call
// signature.
type UtilityFunc func(customerID, businessID string) float64

// Report is the full analytics output for one experiment snapshot.
type Report struct {
	Messages       []threads.Message `json:"messages"`
	MessageThreads []ThreadView      `json:"messageThreads"`
	Analytics      Analytics         `json:"analytics"`
	Diagnostics    *Diagnostics      `json:"diagnostics,omitempty"`
}

// Participant identifies one side of a conversation.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Participants names the customer and business of a thread.
type Participants struct {
	Customer Participant `json:"customer"`
	Business Participant `json:"business"`
}

// ThreadView is the external presentation of one thread.
type ThreadView struct {
	Participants    Participants      `json:"participants"`
	Messages        []threads.Message `json:"messages"`
	LastMessageTime time.Time         `json:"lastMessageTime"`
	Utility         float64           `json:"utility"`
}

// Analytics holds the per-agent and marketplace-wide summaries.
type Analytics struct {
	CustomerAnalytics  map[string]CustomerRecord `json:"customer_analytics"`
	BusinessAnalytics  map[string]BusinessRecord `json:"business_analytics"`
	MarketplaceSummary MarketplaceSummary        `json:"marketplace_summary"`
}

// CustomerRecord is the economic summary for one customer.
type CustomerRecord struct {
	Utility           float64 `json:"utility"`
	PaymentsMade      int     `json:"payments_made"`
	ProposalsReceived int     `json:"proposals_received"`
}

// BusinessRecord is the economic summary for one business.
type BusinessRecord struct {
	Utility          float64 `json:"utility"`
	ProposalsSent    int     `json:"proposals_sent"`
	PaymentsReceived int     `json:"payments_received"`
}

// MarketplaceSummary aggregates across all participants.
type MarketplaceSummary struct {
	TotalUtility   float64 `json:"total_utility"`
	TotalPayments  int     `json:"total_payments"`
	TotalProposals int     `json:"total_proposals"`
}

// Diagnostics surfaces non-fatal data-quality signals: rows that failed
// to decode, actions dropped for unresolvable participants, and
// payments with no matchable proposal. None of these abort a report.
type Diagnostics struct {
	DecodeFailures       int `json:"decode_failures"`
	DroppedActions       int `json:"dropped_actions"`
	UnattributedPayments int `json:"unattributed_payments"`
}
