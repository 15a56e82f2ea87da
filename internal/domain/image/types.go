package image

// Payload is a decoded wound photo ready for validation and upload.
type Payload struct {
	// Data is the raw base64 payload without any data-URI framing.
	Data      string `json:"data,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	Format    string `json:"format,omitempty"`
}

// ValidationResult captures the outcome of security validation.
type ValidationResult struct {
	IsValid      bool
	Format       string
	Width        int
	Height       int
	FileSize     int64
	Error        error
	SecurityRisk string
}
