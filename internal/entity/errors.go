package entity

import "errors"

const (
	EchoFailureMessage    = "Error: Could not connect to service"
	NoFileSelectedMessage = "Please select an image file."
	ProxyErrorPrefix      = "Backend proxy error: "
)

var (
	ErrNoFileSelected   = errors.New(NoFileSelectedMessage)
	ErrUnknownEndpoint  = errors.New("unknown endpoint")
	ErrMissingMessage   = errors.New("response has no message field")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrResponseTooLarge = errors.New("proxy response too large")
	ErrBackendUnhealthy = errors.New("backend unhealthy")
	ErrNotAnImage       = errors.New("blob is not a decodable image")
)

// ProxyError carries the proxy's response body verbatim.
type ProxyError struct {
	StatusCode int
	Body       string
}

func (e *ProxyError) Error() string {
	return ProxyErrorPrefix + e.Body
}
