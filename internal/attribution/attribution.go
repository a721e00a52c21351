// Package attribution matches payments to the proposals that caused
// them. The log records no foreign key between the two, so the match
// is an adjacency heuristic: nearest preceding proposal from the same
// business to the same customer. Best-effort by design, kept as a pure
// function over a sorted view so it stays testable and swappable.
package attribution

import (
	"sort"

	"github.com/zulandar/marketlens/internal/actions"
	"github.com/zulandar/marketlens/internal/agents"
)

// Attribution links one payment to the proposal it most plausibly pays.
type Attribution struct {
	ProposalID string
	PaymentID  string
	BusinessID string
	CustomerID string
}

// Table is the proposal→payment association table for one snapshot.
// Unattributed holds payment ids with no qualifying proposal; those
// still count in marketplace totals but match no proposal.
type Table struct {
	Attributed   []Attribution
	Unattributed []string
}

// Attribute builds the association table from the decoded action
// stream. For each payment issued by a customer it scans backward
// through that customer's own action history, in (created_at, id)
// order, for the nearest preceding proposal addressed to that customer
// from the payment's business. The input slice is not modified.
func Attribute(list []actions.Action, dir *agents.Directory) *Table {
	ordered := make([]actions.Action, len(list))
	copy(ordered, list)
	actions.Sort(ordered)

	// A customer's history covers every action they sent or received.
	history := make(map[string][]actions.Action)
	for _, a := range ordered {
		if c, ok := dir.ResolveAs(agents.RoleCustomer, a.FromAgent); ok {
			history[c.ID] = append(history[c.ID], a)
		} else if c, ok := dir.ResolveAs(agents.RoleCustomer, a.ToAgent); ok {
			history[c.ID] = append(history[c.ID], a)
		}
	}

	customerIDs := make([]string, 0, len(history))
	for id := range history {
		customerIDs = append(customerIDs, id)
	}
	sort.Strings(customerIDs)

	table := &Table{}
	for _, customerID := range customerIDs {
		h := history[customerID]
		for i, a := range h {
			if a.Kind != actions.KindPayment || a.FromAgent != customerID {
				continue
			}
			businessID := a.ToAgent
			matched := false
			for j := i - 1; j >= 0; j-- {
				p := h[j]
				if p.Kind == actions.KindProposal && p.FromAgent == businessID && p.ToAgent == customerID {
					table.Attributed = append(table.Attributed, Attribution{
						ProposalID: p.ID,
						PaymentID:  a.ID,
						BusinessID: businessID,
						CustomerID: customerID,
					})
					matched = true
					break
				}
			}
			if !matched {
				table.Unattributed = append(table.Unattributed, a.ID)
			}
		}
	}
	return table
}

// PaymentsReceived counts attributed payments recorded for a business.
func (t *Table) PaymentsReceived(businessID string) int {
	n := 0
	for _, a := range t.Attributed {
		if a.BusinessID == businessID {
			n++
		}
	}
	return n
}
