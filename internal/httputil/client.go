package httputil

import (
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

// UserAgent identifies this client to the Firewatch API.
const UserAgent = "firewatch-client/1.0"

// NewClient returns an HTTP client with standard timeout configuration.
// Per-request deadlines still come from the caller's context.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}
