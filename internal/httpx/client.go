// Package httpx owns the shared HTTP client used for every external
// call, so one timeout knob covers them all.
package httpx

import (
	"net/http"
	"time"
)

const defaultExternalTimeout = 30 * time.Second

var externalClient = &http.Client{
	Timeout: defaultExternalTimeout,
}

// Configure applies the configured timeout (seconds) to the shared
// client and returns the value in effect. Zero or negative keeps the
// default.
func Configure(timeoutSeconds int) time.Duration {
	if timeoutSeconds > 0 {
		externalClient.Timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return externalClient.Timeout
}

// Client returns the shared external HTTP client.
func Client() *http.Client {
	return externalClient
}
