// Package threads reconstructs per-participant conversation threads
// from the decoded action stream. Conversation structure is not
// recorded explicitly; it is inferred from participant identity and
// action adjacency.
package threads

import (
	"time"

	"github.com/zulandar/marketlens/internal/actions"
)

// Key identifies one conversation: a (customer, business) pair.
type Key struct {
	CustomerID string
	BusinessID string
}

// Message is the view of one action as stored on a thread and in the
// report's messages list. A search view carries only the query; the
// matched business-id set is retained for fan-out but stripped from
// the stored copy.
type Message struct {
	ID         string                 `json:"id"`
	FromAgent  string                 `json:"from_agent"`
	ToAgent    *string                `json:"to_agent"`
	Type       string                 `json:"type"`
	Content    string                 `json:"content"`
	CreatedAt  time.Time              `json:"created_at"`
	Items      []actions.ProposalItem `json:"items,omitempty"`
	TotalPrice float64                `json:"total_price,omitempty"`
	Amount     float64                `json:"amount,omitempty"`
}

// NewMessage builds the message view of a decoded action.
func NewMessage(a actions.Action) Message {
	m := Message{
		ID:        a.ID,
		FromAgent: a.FromAgent,
		Type:      string(a.Kind),
		CreatedAt: a.CreatedAt,
	}
	if a.ToAgent != "" {
		to := a.ToAgent
		m.ToAgent = &to
	}
	switch a.Kind {
	case actions.KindSearch:
		m.Content = a.Search.Query
	case actions.KindSendMessage:
		m.Content = a.Message.Content
	case actions.KindProposal:
		m.Items = a.Proposal.Items
		m.TotalPrice = a.Proposal.TotalPrice
	case actions.KindPayment:
		m.Amount = a.Payment.Amount
	}
	return m
}

// Thread is one reconstructed conversation. Messages appear in global
// fold order, which is chronological with a stable id tie-break; they
// are not re-sorted per thread.
type Thread struct {
	Key             Key
	Messages        []Message
	LastMessageTime time.Time
	HasPayment      bool
	Utility         float64
}

// append adds a message view and refreshes LastMessageTime.
func (t *Thread) append(m Message) {
	t.Messages = append(t.Messages, m)
	t.refreshLastMessageTime()
}

// refreshLastMessageTime recomputes the maximum created_at over the
// thread's own messages. Recomputed, never cached stale.
func (t *Thread) refreshLastMessageTime() {
	var max time.Time
	for _, m := range t.Messages {
		if m.CreatedAt.After(max) {
			max = m.CreatedAt
		}
	}
	t.LastMessageTime = max
}
