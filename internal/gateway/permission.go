package gateway

import "time"

// Duration presets understood by the gateway.
const (
	DurationOneHour    = "1_hour"
	DurationEightHours = "8_hours"
	DurationOneDay     = "24_hours"
)

// RequestedDuration is either a named preset or an explicit expiry.
type RequestedDuration struct {
	Type      string     `json:"type"` // "preset" or "explicit"
	Value     string     `json:"value,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func PresetDuration(value string) RequestedDuration {
	return RequestedDuration{Type: "preset", Value: value}
}

func ExplicitDuration(expiresAt time.Time) RequestedDuration {
	return RequestedDuration{Type: "explicit", ExpiresAt: &expiresAt}
}

// PermissionRequest asks for a set of actions on one resource. The
// gateway owner may grant a subset of what is requested.
type PermissionRequest struct {
	ResourceID        string            `json:"resource_id"`
	Actions           []string          `json:"actions"`
	RequestedDuration RequestedDuration `json:"requested_duration"`
}

// DefaultLLMPermissions is the arena's standard request: chat completions
// on the common providers for one hour.
func DefaultLLMPermissions() []PermissionRequest {
	duration := PresetDuration(DurationOneHour)
	providers := []string{"llm:openai", "llm:groq", "llm:gemini"}

	perms := make([]PermissionRequest, 0, len(providers))
	for _, p := range providers {
		perms = append(perms, PermissionRequest{
			ResourceID:        p,
			Actions:           []string{"chat.completions"},
			RequestedDuration: duration,
		})
	}
	return perms
}
