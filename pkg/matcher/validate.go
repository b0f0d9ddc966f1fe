package matcher

import (
	"net/url"
	"strconv"
)

// URLValidator decides whether a candidate string is an acceptable URL.
type URLValidator interface {
	// Validate returns the parsed URL, or false to reject the candidate.
	Validate(candidate string) (*url.URL, bool)
}

// HostValidator accepts candidates that parse as URLs and have a non-empty host.
// A bare port such as "http://:80" has no host and is rejected, as is a port
// outside 0-65535.
type HostValidator struct{}

// Validate implements URLValidator.
func (HostValidator) Validate(candidate string) (*url.URL, bool) {
	u, err := url.Parse(candidate)
	if err != nil {
		return nil, false
	}
	if u.Hostname() == "" {
		return nil, false
	}
	if port := u.Port(); port != "" {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return nil, false
		}
	}
	return u, true
}

// ValidatorFunc adapts a function to URLValidator.
type ValidatorFunc func(candidate string) (*url.URL, bool)

// Validate implements URLValidator.
func (f ValidatorFunc) Validate(candidate string) (*url.URL, bool) {
	return f(candidate)
}
