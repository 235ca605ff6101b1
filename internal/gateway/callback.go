package gateway

import (
	"net/url"
	"strconv"
	"time"
)

// Callback query parameters appended by the gateway on redirect back.
const (
	ParamStatus    = "status"
	ParamAppID     = "app_id"
	ParamExpiresAt = "expires_at"
	ParamState     = "state"
	ParamProxyURL  = "proxy_url"
)

const (
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// CallbackResult is the decoded redirect outcome. It is derived from
// query parameters only and never persisted.
type CallbackResult struct {
	Approved  bool
	AppID     string
	ExpiresAt time.Time
}

// ParseCallback validates the redirect parameters. ok is false for
// anything that is not a well-formed approved or denied callback; such
// requests are treated as stale or foreign and quietly dropped.
func ParseCallback(params url.Values) (result CallbackResult, ok bool) {
	switch params.Get(ParamStatus) {
	case StatusDenied:
		return CallbackResult{Approved: false}, true
	case StatusApproved:
	default:
		return CallbackResult{}, false
	}

	appID := params.Get(ParamAppID)
	if appID == "" {
		return CallbackResult{}, false
	}

	expiresAt, err := parseTimestamp(params.Get(ParamExpiresAt))
	if err != nil {
		return CallbackResult{}, false
	}

	return CallbackResult{
		Approved:  true,
		AppID:     appID,
		ExpiresAt: expiresAt,
	}, true
}

// parseTimestamp accepts unix seconds or RFC 3339; gateways have shipped
// both.
func parseTimestamp(s string) (time.Time, error) {
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0), nil
	}
	return time.Parse(time.RFC3339, s)
}
