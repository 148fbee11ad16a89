package provider

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrDataNotFound means the provider answered with a well-formed body
// that is missing the expected data for the requested symbol. It is
// distinct from transport failures: the upstream was reachable.
var ErrDataNotFound = errors.New("no data for symbol")

// NotFound wraps ErrDataNotFound with provider and symbol detail.
func NotFound(name, symbol string) error {
	return fmt.Errorf("%s: %w: %s", name, ErrDataNotFound, symbol)
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Method string
	URL    string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s -> %d", e.Method, e.URL, e.Code)
}

// RedactedURL renders the full request URL for error reporting, masking
// the named query parameters. Credentials must never reach logs.
func RedactedURL(u *url.URL, secretParams ...string) string {
	q := u.Query()
	masked := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			masked = true
		}
	}
	if !masked {
		return u.String()
	}
	r := *u
	r.RawQuery = q.Encode()
	return r.String()
}
