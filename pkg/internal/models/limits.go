package models

// RateLimitDecision is the outcome of a single sliding-window check.
type RateLimitDecision struct {
	Allowed   bool   `json:"allowed"`
	Key       string `json:"key"`
	Remaining int64  `json:"remaining"`
}
