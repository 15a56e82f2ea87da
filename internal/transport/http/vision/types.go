package vision

import "aidpal-server-go/internal/domain/analysis"

// AnalyzeRequest is the JSON request body for the analyze endpoint. Image is
// a data URI or bare base64 payload.
type AnalyzeRequest struct {
	Image   string `json:"image" binding:"required"`
	Context string `json:"context"`
}

// AnalyzeData wraps a finished analysis in the response envelope.
type AnalyzeData struct {
	Result *analysis.Result `json:"result"`
}

// StatusData reports endpoint health and the configured candidate models.
type StatusData struct {
	Status string   `json:"status"`
	Models []string `json:"models"`
}
