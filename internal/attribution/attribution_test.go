package attribution

import (
	"testing"
	"time"

	"github.com/zulandar/marketlens/internal/actions"
	"github.com/zulandar/marketlens/internal/agents"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testDirectory() *agents.Directory {
	return agents.NewDirectory([]agents.Profile{
		{ID: "c1", Role: agents.RoleCustomer},
		{ID: "c2", Role: agents.RoleCustomer},
		{ID: "b1", Role: agents.RoleBusiness},
		{ID: "b2", Role: agents.RoleBusiness},
	})
}

func proposal(id string, at time.Time, from, to string) actions.Action {
	return actions.Action{
		ID: id, Kind: actions.KindProposal, FromAgent: from, ToAgent: to, CreatedAt: at,
		Proposal: &actions.ProposalPayload{TotalPrice: 10},
	}
}

func payment(id string, at time.Time, from, to string) actions.Action {
	return actions.Action{
		ID: id, Kind: actions.KindPayment, FromAgent: from, ToAgent: to, CreatedAt: at,
		Payment: &actions.PaymentPayload{Amount: 10},
	}
}

func TestAttribute_NearestPrecedingProposal(t *testing.T) {
	table := Attribute([]actions.Action{
		proposal("p1", base.Add(10*time.Second), "b1", "c1"),
		proposal("p2", base.Add(20*time.Second), "b1", "c1"),
		payment("pay1", base.Add(25*time.Second), "c1", "b1"),
	}, testDirectory())

	if len(table.Attributed) != 1 {
		t.Fatalf("Attributed = %+v, want one entry", table.Attributed)
	}
	got := table.Attributed[0]
	if got.ProposalID != "p2" {
		t.Errorf("ProposalID = %q, want p2 (nearest preceding)", got.ProposalID)
	}
	if got.PaymentID != "pay1" || got.BusinessID != "b1" || got.CustomerID != "c1" {
		t.Errorf("attribution = %+v", got)
	}
	if len(table.Unattributed) != 0 {
		t.Errorf("Unattributed = %v, want empty", table.Unattributed)
	}
}

func TestAttribute_IgnoresOtherBusinessProposals(t *testing.T) {
	table := Attribute([]actions.Action{
		proposal("p1", base.Add(10*time.Second), "b1", "c1"),
		proposal("p2", base.Add(20*time.Second), "b2", "c1"),
		payment("pay1", base.Add(30*time.Second), "c1", "b1"),
	}, testDirectory())

	if len(table.Attributed) != 1 || table.Attributed[0].ProposalID != "p1" {
		t.Fatalf("Attributed = %+v, want p1 despite later b2 proposal", table.Attributed)
	}
}

func TestAttribute_UnattributedPayment(t *testing.T) {
	table := Attribute([]actions.Action{
		// Proposal arrives after the payment, so it cannot have caused it.
		payment("pay1", base, "c1", "b1"),
		proposal("p1", base.Add(time.Second), "b1", "c1"),
	}, testDirectory())

	if len(table.Attributed) != 0 {
		t.Fatalf("Attributed = %+v, want empty", table.Attributed)
	}
	if len(table.Unattributed) != 1 || table.Unattributed[0] != "pay1" {
		t.Fatalf("Unattributed = %v, want [pay1]", table.Unattributed)
	}
}

func TestAttribute_PerCustomerHistories(t *testing.T) {
	// A proposal to c2 never satisfies c1's payment, even from the right
	// business at the right time.
	table := Attribute([]actions.Action{
		proposal("p1", base, "b1", "c2"),
		payment("pay1", base.Add(time.Second), "c1", "b1"),
		proposal("p2", base.Add(2*time.Second), "b1", "c2"),
		payment("pay2", base.Add(3*time.Second), "c2", "b1"),
	}, testDirectory())

	if len(table.Attributed) != 1 {
		t.Fatalf("Attributed = %+v, want one entry for c2", table.Attributed)
	}
	if table.Attributed[0].CustomerID != "c2" || table.Attributed[0].ProposalID != "p2" {
		t.Errorf("attribution = %+v, want c2 paying p2", table.Attributed[0])
	}
	if len(table.Unattributed) != 1 || table.Unattributed[0] != "pay1" {
		t.Errorf("Unattributed = %v, want [pay1]", table.Unattributed)
	}
}

func TestAttribute_ProposalReusedAcrossPayments(t *testing.T) {
	// Nothing marks a proposal as consumed; two payments may both land
	// on the same nearest proposal.
	table := Attribute([]actions.Action{
		proposal("p1", base, "b1", "c1"),
		payment("pay1", base.Add(time.Second), "c1", "b1"),
		payment("pay2", base.Add(2*time.Second), "c1", "b1"),
	}, testDirectory())

	if len(table.Attributed) != 2 {
		t.Fatalf("Attributed = %+v, want two entries", table.Attributed)
	}
	for _, a := range table.Attributed {
		if a.ProposalID != "p1" {
			t.Errorf("ProposalID = %q, want p1", a.ProposalID)
		}
	}
}

func TestAttribute_BusinessPaymentNotAttributed(t *testing.T) {
	table := Attribute([]actions.Action{
		proposal("p1", base, "b1", "c1"),
		payment("pay1", base.Add(time.Second), "b1", "c1"),
	}, testDirectory())

	if len(table.Attributed) != 0 || len(table.Unattributed) != 0 {
		t.Errorf("table = %+v, want no entries for business-issued payment", table)
	}
}

func TestAttribute_InputNotModified(t *testing.T) {
	list := []actions.Action{
		payment("pay1", base.Add(time.Second), "c1", "b1"),
		proposal("p1", base, "b1", "c1"),
	}
	Attribute(list, testDirectory())
	if list[0].ID != "pay1" || list[1].ID != "p1" {
		t.Errorf("input reordered: [%s %s]", list[0].ID, list[1].ID)
	}
}

func TestPaymentsReceived(t *testing.T) {
	table := &Table{Attributed: []Attribution{
		{BusinessID: "b1"},
		{BusinessID: "b1"},
		{BusinessID: "b2"},
	}}

	if got := table.PaymentsReceived("b1"); got != 2 {
		t.Errorf("PaymentsReceived(b1) = %d, want 2", got)
	}
	if got := table.PaymentsReceived("b3"); got != 0 {
		t.Errorf("PaymentsReceived(b3) = %d, want 0", got)
	}
}
