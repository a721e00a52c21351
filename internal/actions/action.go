// Package actions decodes raw marketplace log rows into a closed set
// of typed action variants.
package actions

import (
	"sort"
	"time"
)

// Kind discriminates the action variants.
type Kind string

// The closed set of action kinds recorded by the marketplace.
const (
	KindSearch      Kind = "search"
	KindSendMessage Kind = "send_message"
	KindProposal    Kind = "proposal"
	KindPayment     Kind = "payment"
)

// Action is one decoded, immutable log fact. Exactly one payload field
// is set, matching Kind. ToAgent is empty for searches, which address
// the marketplace rather than a counterpart.
type Action struct {
	ID        string
	Kind      Kind
	FromAgent string
	ToAgent   string
	CreatedAt time.Time

	Search   *SearchPayload
	Message  *MessagePayload
	Proposal *ProposalPayload
	Payment  *PaymentPayload
}

// SearchPayload holds a search request and the business ids its result
// matched. The id set drives thread fan-out and is stripped from the
// message copy stored on each thread.
type SearchPayload struct {
	Query       string
	BusinessIDs []string
}

// MessagePayload holds free-form text between a customer and a business.
type MessagePayload struct {
	Content string
}

// ProposalItem is one line of a business offer.
type ProposalItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ProposalPayload holds a business's offer to a customer.
type ProposalPayload struct {
	Items      []ProposalItem
	TotalPrice float64
}

// PaymentPayload holds a customer's payment against an earlier offer.
// There is no recorded link to the proposal; attribution is inferred.
type PaymentPayload struct {
	Amount float64
}

// DecodeFailure records one row that could not be decoded. Failures
// are data, not errors: the pipeline logs them and continues.
type DecodeFailure struct {
	RowID  string
	Reason string
}

// Sort orders actions by (created_at, id). The id tie-break keeps the
// fold order stable when timestamps collide.
func Sort(list []Action) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
