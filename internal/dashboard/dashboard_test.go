package dashboard

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerview/internal/core"
	"ledgerview/internal/ledger"
	"ledgerview/internal/log"
)

type fetchResult struct {
	records []core.Transaction
	err     error
}

// fakeFetcher answers per endpoint and records every call.
type fakeFetcher struct {
	mu      sync.Mutex
	answers map[string]fetchResult
	gates   map[string]chan struct{}
	calls   []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, endpoint string) ([]core.Transaction, error) {
	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	gate := f.gates[endpoint]
	res := f.answers[endpoint]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return res.records, res.err
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

var sample = []core.Transaction{
	{Date: "2024-05-03", Time: "10:00:00", Description: "Salary", Vendor: "Acme", Amount: 2500, Type: "debit"},
	{Date: "2024-05-02", Time: "09:00:00", Description: "Rent", Vendor: "Landlord", Amount: -1200, Type: "credit"},
	{Date: "2024-05-01", Time: "08:00:00", Description: "Refund", Vendor: "Shop", Amount: 0, Type: "debit"},
}

func TestLoadReplacesStateInOrder(t *testing.T) {
	f := &fakeFetcher{answers: map[string]fetchResult{ledger.AllPath: {records: sample}}}
	c := NewController(f, quietLogger())
	state := NewViewState()

	out := c.Load(context.Background(), state, ledger.AllPath, true)

	require.NoError(t, out.Err)
	assert.True(t, out.Changed)
	assert.Equal(t, sample, out.Records)
	assert.Equal(t, sample, state.Snapshot())
	require.NotNil(t, out.Notice)
	assert.Equal(t, NoticeSuccess, out.Notice.Kind)
	assert.Equal(t, "Loaded 3 transactions", out.Notice.Message)
	assert.Equal(t, NoticeDuration, out.Notice.Duration)
}

func TestLoadWithoutNotify(t *testing.T) {
	f := &fakeFetcher{answers: map[string]fetchResult{ledger.AllPath: {records: sample}}}
	out := NewController(f, quietLogger()).Load(context.Background(), NewViewState(), ledger.AllPath, false)
	assert.Nil(t, out.Notice)
	assert.True(t, out.Changed)
}

func TestLoadNotFoundClearsState(t *testing.T) {
	userPath := ledger.UserLookupPath(ledger.UserPath, "42")
	f := &fakeFetcher{answers: map[string]fetchResult{
		ledger.AllPath: {records: sample},
		userPath:       {err: &core.HTTPError{Status: 404}},
	}}
	c := NewController(f, quietLogger())
	state := NewViewState()
	c.Load(context.Background(), state, ledger.AllPath, true)

	out := c.Dispatch(context.Background(), state, UserCommand{Input: " 42 ", Endpoint: ledger.UserPath})

	assert.True(t, core.IsNotFound(out.Err))
	assert.True(t, out.Changed)
	assert.False(t, out.Failed())
	assert.Empty(t, out.Records)
	assert.Zero(t, state.Len())
	require.NotNil(t, out.Notice)
	assert.Equal(t, NoticeInfo, out.Notice.Kind)
	assert.Equal(t, MsgNoUserRecords, out.Notice.Message)
	assert.Equal(t, core.Summary{}, core.Summarize(out.Records))
	assert.Equal(t, []string{ledger.AllPath, "/api/transactions/user/42"}, f.Calls())
}

func TestLoadFailureKeepsLastGoodState(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"http error", &core.HTTPError{Status: 500}, "Load failed: HTTP 500"},
		{"transport error", &core.TransportError{Op: "GET", URL: "http://ledger/x", Err: errors.New("refused")}, "Load failed: GET http://ledger/x: refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{answers: map[string]fetchResult{
				ledger.AllPath: {records: sample},
				"/broken":      {err: tt.err},
			}}
			c := NewController(f, quietLogger())
			state := NewViewState()
			c.Load(context.Background(), state, ledger.AllPath, true)

			out := c.Dispatch(context.Background(), state, ChipCommand{Endpoint: "/broken"})

			assert.True(t, out.Failed())
			assert.False(t, out.Changed)
			assert.Equal(t, sample, out.Records)
			assert.Equal(t, sample, state.Snapshot())
			require.NotNil(t, out.Notice)
			assert.Equal(t, NoticeError, out.Notice.Kind)
			assert.Equal(t, tt.message, out.Notice.Message)
		})
	}
}

func TestDispatchValidationIssuesNoRequest(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		message string
	}{
		{"range missing end", RangeCommand{Start: "2024-01-01"}, MsgPickRange},
		{"range missing start", RangeCommand{End: "2024-01-31"}, MsgPickRange},
		{"user id not a number", UserCommand{Input: "abc", Endpoint: ledger.UserPath}, MsgInvalidUserID},
		{"user id blank", UserCommand{Input: "   ", Endpoint: ledger.UserPath}, MsgInvalidUserID},
		{"user endpoint missing", UserCommand{Input: "7"}, MsgMissingConfig},
		{"chip endpoint missing", ChipCommand{}, MsgMissingConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{answers: map[string]fetchResult{ledger.AllPath: {records: sample}}}
			c := NewController(f, quietLogger())
			state := NewViewState()
			c.Load(context.Background(), state, ledger.AllPath, false)

			out := c.Dispatch(context.Background(), state, tt.cmd)

			assert.True(t, core.IsValidation(out.Err))
			assert.False(t, out.Changed)
			assert.Equal(t, sample, state.Snapshot())
			require.NotNil(t, out.Notice)
			assert.Equal(t, NoticeWarning, out.Notice.Kind)
			assert.Equal(t, tt.message, out.Notice.Message)
			assert.Equal(t, []string{ledger.AllPath}, f.Calls())
		})
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	slow := make(chan struct{})
	older := []core.Transaction{{Description: "older"}}
	newer := []core.Transaction{{Description: "newer"}}
	f := &fakeFetcher{
		answers: map[string]fetchResult{"/slow": {records: older}, "/fast": {records: newer}},
		gates:   map[string]chan struct{}{"/slow": slow},
	}
	c := NewController(f, quietLogger())
	state := NewViewState()

	done := make(chan Outcome)
	go func() { done <- c.Load(context.Background(), state, "/slow", true) }()

	// Wait until the slow request holds its ticket.
	require.Eventually(t, func() bool { return len(f.Calls()) == 1 }, timeout, tick)

	fast := c.Load(context.Background(), state, "/fast", true)
	assert.True(t, fast.Changed)

	close(slow)
	stale := <-done

	assert.True(t, stale.Stale)
	assert.False(t, stale.Changed)
	assert.Nil(t, stale.Notice)
	assert.Equal(t, newer, stale.Records)
	assert.Equal(t, newer, state.Snapshot())
}

func TestStaleNotFoundLeavesNewerView(t *testing.T) {
	slow := make(chan struct{})
	newer := []core.Transaction{{Description: "newer"}}
	f := &fakeFetcher{
		answers: map[string]fetchResult{
			"/api/transactions/user/7": {err: &core.HTTPError{Status: 404, URL: "/api/transactions/user/7"}},
			"/fast":                    {records: newer},
		},
		gates: map[string]chan struct{}{"/api/transactions/user/7": slow},
	}
	c := NewController(f, quietLogger())
	state := NewViewState()

	done := make(chan Outcome)
	go func() { done <- c.Load(context.Background(), state, "/api/transactions/user/7", true) }()
	require.Eventually(t, func() bool { return len(f.Calls()) == 1 }, timeout, tick)

	require.True(t, c.Load(context.Background(), state, "/fast", true).Changed)

	close(slow)
	stale := <-done

	assert.True(t, errors.Is(stale.Err, core.ErrNotFound))
	assert.True(t, stale.Stale)
	assert.False(t, stale.Changed)
	assert.False(t, stale.Failed())
	assert.Nil(t, stale.Notice, "a superseded 404 must not announce an empty result")
	assert.Equal(t, newer, stale.Records)
	assert.Equal(t, newer, state.Snapshot())
}

func TestDispatchHonorsEndpointPolicy(t *testing.T) {
	policy := NewEndpointPolicy([]string{ledger.AllPath, ledger.DepositsPath}, ledger.UserPath)
	tests := []struct {
		name    string
		cmd     Command
		allowed bool
	}{
		{"configured chip", ChipCommand{Endpoint: ledger.DepositsPath}, true},
		{"chip with padding", ChipCommand{Endpoint: "  " + ledger.AllPath + " "}, true},
		{"unlisted chip", ChipCommand{Endpoint: "/api/admin"}, false},
		{"date range", RangeCommand{Start: "2024-01-01", End: "2024-01-31"}, true},
		{"user lookup", UserCommand{Input: "42", Endpoint: ledger.UserPath}, true},
		{"user id with slash stays one segment", UserCommand{Input: "4/2", Endpoint: ledger.UserPath}, true},
		{"user lookup on foreign base", UserCommand{Input: "42", Endpoint: "/api/admin"}, false},
		{"traversal through chip", ChipCommand{Endpoint: ledger.UserPath + "/42/../../admin"}, false},
		{"bare user base", ChipCommand{Endpoint: ledger.UserPath + "/"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{answers: map[string]fetchResult{}}
			c := NewController(f, quietLogger(), WithEndpointPolicy(policy))

			out := c.Dispatch(context.Background(), NewViewState(), tt.cmd)

			if tt.allowed {
				assert.False(t, core.IsValidation(out.Err), out.Err)
				assert.Len(t, f.Calls(), 1)
				return
			}
			assert.True(t, core.IsValidation(out.Err))
			require.NotNil(t, out.Notice)
			assert.Equal(t, MsgEndpointNotAllowed, out.Notice.Message)
			assert.Empty(t, f.Calls())
		})
	}
}

func TestNilPolicyPermitsEverything(t *testing.T) {
	var p *EndpointPolicy
	assert.True(t, p.Permits("/anything"))
}
