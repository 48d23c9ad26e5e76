package dashboard

import (
	"strings"

	"ledgerview/internal/ledger"
)

// MsgEndpointNotAllowed is shown when a control asks for an endpoint the
// dashboard was not configured with.
const MsgEndpointNotAllowed = "That view is not available."

// EndpointPolicy lists the upstream endpoints commands may load: the
// configured chip endpoints, date ranges, and lookups under the user base.
// A nil policy permits every relative endpoint.
type EndpointPolicy struct {
	chips    map[string]struct{}
	userBase string
}

// NewEndpointPolicy builds a policy from the configured chip endpoints and
// user lookup base path. An empty userBase disables user lookups.
func NewEndpointPolicy(chips []string, userBase string) *EndpointPolicy {
	p := &EndpointPolicy{chips: make(map[string]struct{}, len(chips))}
	for _, ep := range chips {
		if ep = strings.TrimSpace(ep); ep != "" {
			p.chips[ep] = struct{}{}
		}
	}
	if base := strings.TrimRight(strings.TrimSpace(userBase), "/"); base != "" {
		p.userBase = base + "/"
	}
	return p
}

// Permits reports whether endpoint may be fetched.
func (p *EndpointPolicy) Permits(endpoint string) bool {
	if p == nil {
		return true
	}
	if _, ok := p.chips[endpoint]; ok {
		return true
	}
	if strings.HasPrefix(endpoint, ledger.RangeBase+"?") {
		return true
	}
	if p.userBase != "" && strings.HasPrefix(endpoint, p.userBase) {
		// One escaped path segment: the user id.
		id := strings.TrimPrefix(endpoint, p.userBase)
		return id != "" && !strings.ContainsAny(id, "/?#")
	}
	return false
}
