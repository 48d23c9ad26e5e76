// Package dashboard owns the view state and the load pipeline that feeds it.
package dashboard

import (
	"sync"

	"ledgerview/internal/core"
)

// ViewState is the ordered record set a single viewer is looking at.
//
// It is replaced wholesale by completed loads, never patched. Every load
// takes a ticket from Begin; a result is applied only if its ticket is newer
// than the last applied one, so an older request that finishes late cannot
// overwrite a newer view.
type ViewState struct {
	mu      sync.Mutex
	records []core.Transaction
	issued  uint64
	applied uint64
}

// NewViewState returns an empty state.
func NewViewState() *ViewState {
	return &ViewState{}
}

// Begin issues the next ticket.
func (s *ViewState) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Replace installs records for ticket. It reports false, leaving the state
// untouched, when a newer ticket has already been applied.
func (s *ViewState) Replace(ticket uint64, records []core.Transaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket <= s.applied {
		return false
	}
	s.applied = ticket
	s.records = append([]core.Transaction(nil), records...)
	return true
}

// Snapshot returns a copy of the current records.
func (s *ViewState) Snapshot() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.records...)
}

// Len returns the number of records currently held.
func (s *ViewState) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
