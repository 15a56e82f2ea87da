package analysis

import "net/http"

// User-facing exhaustion messages. Which one is returned depends only on the
// last candidate's failure; earlier failures are discarded.
const (
	MsgRateLimited = "AidPal's helpers are all catching their breath. Please try again in a minute."
	MsgMaintenance = "AidPal is down for a quick maintenance check. Please check back soon."
	MsgAllBusy     = "All of AidPal's buddies are busy right now. Please try again shortly."
)

// classifyExhaustion picks the user-facing message from the terminal error's
// status code. Kept as an explicit function so the last-error-wins policy is
// visible and testable rather than buried in the loop.
func classifyExhaustion(lastErr error) string {
	status, ok := StatusOf(lastErr)
	if !ok {
		return MsgAllBusy
	}
	switch status {
	case http.StatusTooManyRequests:
		return MsgRateLimited
	case http.StatusNotFound:
		return MsgMaintenance
	default:
		return MsgAllBusy
	}
}
