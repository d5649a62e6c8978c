// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// Scope selects whether a series operation applies to one event or to the
// whole series.
type Scope string

// Scope values
const (
	ScopeSingle Scope = "single"
	ScopeAll    Scope = "all"
)

// ParseScope parses a scope, defaulting to ScopeSingle.
func ParseScope(s string) (Scope, bool) {
	switch Scope(s) {
	case "", ScopeSingle:
		return ScopeSingle, true
	case ScopeAll:
		return ScopeAll, true
	}
	return "", false
}

// BatchFailure records an event a batch could not apply to.
type BatchFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult is the outcome of applying an operation to a set of events.
type BatchResult struct {
	AnchorID string         `json:"anchor_id,omitempty"`
	Affected []string       `json:"affected"`
	Failed   []BatchFailure `json:"failed,omitempty"`
}

// Partial reports whether some, but not all, events were affected.
func (r *BatchResult) Partial() bool {
	return len(r.Failed) > 0 && len(r.Affected) > 0
}

// Fail records a failure for id.
func (r *BatchResult) Fail(id string, err error) {
	r.Failed = append(r.Failed, BatchFailure{ID: id, Reason: err.Error()})
}
