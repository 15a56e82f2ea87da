package eventbus

import "time"

// Topics published by the analysis pipeline.
const (
	EventAnalysisStarted   = "analysis:started"
	EventAnalysisCompleted = "analysis:completed"
	EventAnalysisFailed    = "analysis:failed"
	EventCacheHit          = "analysis:cache_hit"
)

// AnalysisStartedData accompanies EventAnalysisStarted.
type AnalysisStartedData struct {
	DeviceID  string    `json:"device_id,omitempty"`
	Context   string    `json:"context,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalysisCompletedData accompanies EventAnalysisCompleted. Image carries the
// original payload so subscribers can persist the full exchange.
type AnalysisCompletedData struct {
	DeviceID  string    `json:"device_id,omitempty"`
	Image     string    `json:"image"`
	Context   string    `json:"context,omitempty"`
	WoundType string    `json:"wound_type"`
	Severity  string    `json:"severity"`
	Result    any       `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalysisFailedData accompanies EventAnalysisFailed.
type AnalysisFailedData struct {
	DeviceID  string    `json:"device_id,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
