package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledgerview/internal/core"
	"ledgerview/internal/log"
)

// NoticeDuration is how long a notification stays on screen.
const NoticeDuration = 1800 * time.Millisecond

// MsgNoUserRecords is shown when the ledger answers 404.
const MsgNoUserRecords = "No transactions found for that User ID."

// NoticeKind classifies a notification for styling.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient user-facing message.
type Notice struct {
	Kind     NoticeKind
	Message  string
	Duration time.Duration
}

func newNotice(kind NoticeKind, msg string) *Notice {
	return &Notice{Kind: kind, Message: msg, Duration: NoticeDuration}
}

// Fetcher retrieves a record list for an upstream endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) ([]core.Transaction, error)
}

// Outcome describes what a load or dispatch did.
type Outcome struct {
	// Records is the state snapshot after the operation.
	Records []core.Transaction
	Notice  *Notice
	// Err is the failure, if any. Validation and not-found results carry
	// their error too, so callers can tell them apart.
	Err error
	// Changed is true when the state was replaced.
	Changed bool
	// Stale is true when a newer load had already been applied.
	Stale bool
}

// Failed reports whether the view was left untouched because of an error.
func (o Outcome) Failed() bool {
	return o.Err != nil && !o.Changed && !o.Stale
}

// Controller runs loads against the ledger and applies them to a ViewState.
type Controller struct {
	fetcher Fetcher
	policy  *EndpointPolicy
	logger  *log.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithEndpointPolicy restricts Dispatch to the endpoints p permits.
func WithEndpointPolicy(p *EndpointPolicy) ControllerOption {
	return func(c *Controller) { c.policy = p }
}

// NewController returns a controller backed by fetcher.
func NewController(fetcher Fetcher, logger *log.Logger, opts ...ControllerOption) *Controller {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	c := &Controller{fetcher: fetcher, logger: logger.WithComponent(log.ComponentDashboard)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dispatch resolves cmd and loads its intent. Validation failures never
// reach the network and leave state unchanged.
func (c *Controller) Dispatch(ctx context.Context, state *ViewState, cmd Command) Outcome {
	intent, err := cmd.Resolve()
	if err == nil && !c.policy.Permits(intent.Endpoint) {
		err = core.NewValidationError("endpoint", MsgEndpointNotAllowed)
	}
	if err != nil {
		var ve *core.ValidationError
		msg := err.Error()
		if errors.As(err, &ve) {
			msg = ve.Message
		}
		c.logger.DebugContext(ctx, "Command rejected",
			log.FieldCommand, fmt.Sprintf("%T", cmd),
			log.FieldEndpoint, intent.Endpoint,
			log.FieldErrorType, log.ErrorTypeValidation,
			log.FieldError, err)
		return Outcome{Records: state.Snapshot(), Notice: newNotice(NoticeWarning, msg), Err: err}
	}
	return c.Load(ctx, state, intent.Endpoint, true)
}

// Load fetches endpoint and replaces state with the result.
//
// A 404 is an empty result: state is cleared and an informational notice is
// returned. Any other failure leaves state at its last good value.
func (c *Controller) Load(ctx context.Context, state *ViewState, endpoint string, notify bool) Outcome {
	ticket := state.Begin()
	start := time.Now()

	records, err := c.fetcher.Fetch(ctx, endpoint)
	switch {
	case err == nil:
		applied := state.Replace(ticket, records)
		out := Outcome{Records: state.Snapshot(), Changed: applied, Stale: !applied}
		fields := log.NewFields().WithLoad(endpoint, len(records), !applied)
		fields[log.FieldTicket] = ticket
		fields[log.FieldDuration] = time.Since(start).Milliseconds()
		c.logger.InfoContext(ctx, "Ledger loaded", fields.ToSlice()...)
		if applied && notify {
			out.Notice = newNotice(NoticeSuccess, fmt.Sprintf("Loaded %d transactions", len(records)))
		}
		return out

	case core.IsNotFound(err):
		applied := state.Replace(ticket, nil)
		c.logger.DebugContext(ctx, "Ledger returned no records",
			log.FieldEndpoint, endpoint,
			log.FieldTicket, ticket,
			log.FieldStale, !applied,
			log.FieldErrorType, log.ErrorTypeNotFound)
		out := Outcome{Records: state.Snapshot(), Err: err, Changed: applied, Stale: !applied}
		if applied {
			out.Notice = newNotice(NoticeInfo, MsgNoUserRecords)
		}
		return out

	default:
		errType := log.ErrorTypeNetwork
		if core.StatusOf(err) != 0 {
			errType = log.ErrorTypeUpstream
		} else if core.IsValidation(err) {
			errType = log.ErrorTypeValidation
		}
		fields := log.NewFields().WithOperation(log.OpLoad).WithError(err)
		fields[log.FieldEndpoint] = endpoint
		fields[log.FieldTicket] = ticket
		fields[log.FieldStatusCode] = core.StatusOf(err)
		fields[log.FieldErrorType] = errType
		c.logger.ErrorContext(ctx, "Ledger load failed", fields.ToSlice()...)
		return Outcome{
			Records: state.Snapshot(),
			Notice:  newNotice(NoticeError, "Load failed: "+err.Error()),
			Err:     err,
		}
	}
}
