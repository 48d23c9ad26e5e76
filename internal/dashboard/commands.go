package dashboard

import (
	"strings"

	"ledgerview/internal/core"
	"ledgerview/internal/ledger"
)

// User-facing validation messages.
const (
	MsgPickRange     = "Pick both start and end dates"
	MsgInvalidUserID = "Please enter a valid User ID (number)."
	MsgMissingConfig = "Configuration error: Missing endpoint data attribute."
)

// Intent is a resolved request to load an upstream endpoint.
type Intent struct {
	Endpoint string
}

// Command is a UI action that resolves to an Intent or a validation error.
type Command interface {
	Resolve() (Intent, error)
}

// ChipCommand loads a control's pre-configured endpoint as is.
type ChipCommand struct {
	Endpoint string
}

func (c ChipCommand) Resolve() (Intent, error) {
	ep := strings.TrimSpace(c.Endpoint)
	if ep == "" {
		return Intent{}, core.NewValidationError("endpoint", MsgMissingConfig)
	}
	return Intent{Endpoint: ep}, nil
}

// RangeCommand loads an inclusive date range. Both dates are required.
type RangeCommand struct {
	Start string
	End   string
}

func (c RangeCommand) Resolve() (Intent, error) {
	start, end := strings.TrimSpace(c.Start), strings.TrimSpace(c.End)
	if start == "" || end == "" {
		return Intent{}, core.NewValidationError("range", MsgPickRange)
	}
	return Intent{Endpoint: ledger.RangePath(start, end)}, nil
}

// UserCommand loads one user's records. Endpoint is the base path carried by
// the search control.
type UserCommand struct {
	Input    string
	Endpoint string
}

func (c UserCommand) Resolve() (Intent, error) {
	id := strings.TrimSpace(c.Input)
	if id == "" || !hasIntegerPrefix(id) {
		return Intent{}, core.NewValidationError("user_id", MsgInvalidUserID)
	}
	base := strings.TrimSpace(c.Endpoint)
	if base == "" {
		return Intent{}, core.NewValidationError("endpoint", MsgMissingConfig)
	}
	return Intent{Endpoint: ledger.UserLookupPath(base, id)}, nil
}

// hasIntegerPrefix reports whether s starts with an optionally signed run of
// digits, which is what a lenient integer parse would accept. "42abc" passes
// and is sent upstream as is.
func hasIntegerPrefix(s string) bool {
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}
