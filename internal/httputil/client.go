package httputil

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds outbound calls made on behalf of the processing
// endpoint (page fetches).
const DefaultTimeout = 30 * time.Second

// UserAgent is sent on every outbound request.
const UserAgent = "transcriptfmt/1.0"

// NewClient returns an HTTP client with the given overall timeout.
// A zero timeout leaves deadlines to the transport and the request context.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}
