// Package utils provides common utility functions.
package utils

import "net/http"

// Default request identity for archive.org: a browser arriving from the Wayback UI.
const (
	DefaultReferer   = "https://web.archive.org/"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36"
)

// HTTPHelper provides HTTP utility functions.
type HTTPHelper struct {
	referer   string
	userAgent string
}

// NewHTTPHelper creates a new HTTP helper with the default identity.
func NewHTTPHelper() *HTTPHelper {
	return &HTTPHelper{referer: DefaultReferer, userAgent: DefaultUserAgent}
}

// NewHTTPHelperWithIdentity overrides referer and user agent. Empty values keep the defaults.
func NewHTTPHelperWithIdentity(referer, userAgent string) *HTTPHelper {
	h := NewHTTPHelper()
	if referer != "" {
		h.referer = referer
	}

	if userAgent != "" {
		h.userAgent = userAgent
	}

	return h
}

// BuildHeaders creates HTTP headers with defaults.
func (h *HTTPHelper) BuildHeaders(customHeaders map[string]string) http.Header {
	headers := http.Header{}

	headers.Set("Referer", h.referer)
	headers.Set("User-Agent", h.userAgent)
	headers.Set("Accept", "text/plain, */*")

	for key, value := range customHeaders {
		headers.Set(key, value)
	}

	return headers
}

// HeaderMap flattens BuildHeaders for clients that take a plain map.
func (h *HTTPHelper) HeaderMap(customHeaders map[string]string) map[string]string {
	headers := h.BuildHeaders(customHeaders)

	out := make(map[string]string, len(headers))
	for key := range headers {
		out[key] = headers.Get(key)
	}

	return out
}
