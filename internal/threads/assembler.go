package threads

import (
	"sort"

	"github.com/zulandar/marketlens/internal/actions"
	"github.com/zulandar/marketlens/internal/agents"
)

// Result holds the assembled thread map plus the keys flagged as paid
// and the count of actions dropped for unresolvable participants.
type Result struct {
	Threads map[Key]*Thread
	Flagged map[Key]bool
	Dropped int
}

// Assemble folds the action stream into conversation threads. The fold
// is deterministic: actions are processed in (created_at, id) order,
// threads are created lazily on first qualifying action, and a search
// fans out one append per resolvable matched business. Actions whose
// participants cannot be resolved to a (customer, business) pair are
// dropped from assembly and counted in Dropped. The input slice is not
// modified.
func Assemble(list []actions.Action, dir *agents.Directory) *Result {
	ordered := make([]actions.Action, len(list))
	copy(ordered, list)
	actions.Sort(ordered)

	r := &Result{
		Threads: make(map[Key]*Thread),
		Flagged: make(map[Key]bool),
	}

	for _, a := range ordered {
		if a.Kind == actions.KindSearch {
			r.foldSearch(a, dir)
			continue
		}
		r.foldDirect(a, dir)
	}
	return r
}

// foldSearch appends one copy of the search message to the thread of
// every resolvable matched business. An unresolvable business id skips
// that branch only; duplicate ids in the matched set contribute a
// single copy per thread.
func (r *Result) foldSearch(a actions.Action, dir *agents.Directory) {
	customer, ok := dir.ResolveAs(agents.RoleCustomer, a.FromAgent)
	if !ok {
		r.Dropped++
		return
	}

	msg := NewMessage(a)
	seen := make(map[string]bool, len(a.Search.BusinessIDs))
	for _, businessID := range a.Search.BusinessIDs {
		if seen[businessID] {
			continue
		}
		seen[businessID] = true
		business, ok := dir.ResolveAs(agents.RoleBusiness, businessID)
		if !ok {
			continue
		}
		r.thread(Key{CustomerID: customer.ID, BusinessID: business.ID}).append(msg)
	}
}

// foldDirect appends a message, proposal, or payment to the thread of
// its (customer, business) pair, resolving each side from either
// endpoint of the action.
func (r *Result) foldDirect(a actions.Action, dir *agents.Directory) {
	customer, ok := dir.ResolveAs(agents.RoleCustomer, a.FromAgent)
	if !ok {
		customer, ok = dir.ResolveAs(agents.RoleCustomer, a.ToAgent)
	}
	if !ok {
		r.Dropped++
		return
	}
	business, ok := dir.ResolveAs(agents.RoleBusiness, a.FromAgent)
	if !ok {
		business, ok = dir.ResolveAs(agents.RoleBusiness, a.ToAgent)
	}
	if !ok {
		r.Dropped++
		return
	}

	key := Key{CustomerID: customer.ID, BusinessID: business.ID}
	t := r.thread(key)
	t.append(NewMessage(a))

	if a.Kind == actions.KindPayment && a.FromAgent == customer.ID {
		t.HasPayment = true
		r.Flagged[key] = true
	}
}

// thread returns the thread for key, creating it on first use.
func (r *Result) thread(key Key) *Thread {
	t, ok := r.Threads[key]
	if !ok {
		t = &Thread{Key: key}
		r.Threads[key] = t
	}
	return t
}

// Sorted returns threads in presentation order: LastMessageTime
// descending, ties broken by key for determinism. This ordering is
// independent of the internal per-thread message order.
func (r *Result) Sorted() []*Thread {
	out := make([]*Thread, 0, len(r.Threads))
	for _, t := range r.Threads {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LastMessageTime.Equal(out[j].LastMessageTime) {
			return out[i].LastMessageTime.After(out[j].LastMessageTime)
		}
		if out[i].Key.CustomerID != out[j].Key.CustomerID {
			return out[i].Key.CustomerID < out[j].Key.CustomerID
		}
		return out[i].Key.BusinessID < out[j].Key.BusinessID
	})
	return out
}
