// Package analysis implements the wound-analysis orchestrator: a sequential
// fallback loop over a fixed priority list of remote vision models that
// returns the first schema-valid structured result.
package analysis

// Severity is the closed three-value ordered wound severity scale.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Known reports whether s is one of the three allowed values.
func (s Severity) Known() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Request is one analysis invocation. Image is an encoded image string,
// either a data URI or a bare base64 payload; Context is free text from the
// user and may be empty.
type Request struct {
	Image   string `json:"image"`
	Context string `json:"context"`
}

// Result is the validated five-field recommendation returned to the caller.
// The JSON field names are the wire contract and must not change.
type Result struct {
	WoundType      string   `json:"woundType" validate:"required"`
	Severity       Severity `json:"severity" validate:"required,oneof=Low Medium High"`
	Description    string   `json:"description" validate:"required"`
	FirstAidSteps  []string `json:"firstAidSteps" validate:"required,min=1,dive,required"`
	Recommendation string   `json:"recommendation" validate:"required"`
}

// Error is the single error surfaced to callers when every candidate model
// has failed. Message is user-facing; Cause is the last candidate's failure.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
