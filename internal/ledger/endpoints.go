package ledger

import (
	"net/url"
	"strings"
)

// Upstream routes.
const (
	AllPath      = "/api/transactions"
	DepositsPath = "/api/transactions/deposits"
	PaymentsPath = "/api/transactions/payments"
	RangeBase    = "/api/transactions/range"
	UserPath     = "/api/transactions/user"
)

// RangePath builds the inclusive date-range query. Both dates are encoded
// as URI components.
func RangePath(start, end string) string {
	return RangeBase + "?start=" + encodeComponent(start) + "&end=" + encodeComponent(end)
}

// UserLookupPath appends the encoded user id as a path segment of base.
func UserLookupPath(base, userID string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(userID)
}

// encodeComponent matches encodeURIComponent: spaces become %20, not '+'.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
