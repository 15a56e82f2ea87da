package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// InvokeRequest is one trial against one candidate model: a single
// multimodal request carrying the image part, the text part, and the schema
// the remote side must constrain its output to.
type InvokeRequest struct {
	Model        string
	ImagePayload string // base64, no data-URI framing
	MediaType    string
	Prompt       string
	Schema       json.RawMessage
}

// Invoker submits one multimodal request to a named remote model and
// returns the raw response text.
type Invoker interface {
	Invoke(ctx context.Context, req InvokeRequest) (string, error)
}

// RemoteError is a transport or remote-side failure optionally carrying the
// HTTP status code reported by the provider.
type RemoteError struct {
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("remote model error (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("remote model error: %v", e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// StatusOf extracts the HTTP status from an error chain, if any.
func StatusOf(err error) (int, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Status > 0 {
		return remote.Status, true
	}
	return 0, false
}
