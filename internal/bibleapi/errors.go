package bibleapi

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a TransportError.
type ErrorKind int

const (
	KindConnectivity ErrorKind = iota // request never produced a response
	KindStatus                        // service answered with a non-2xx status
	KindDecode                        // response body could not be parsed
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// TransportError is returned by Client.Fetch for every failed lookup.
type TransportError struct {
	Kind       ErrorKind
	Passage    string
	StatusCode int    // 0 when no response was received
	Detail     string // service-provided error text, if any
	Err        error  // underlying cause, if any
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Detail != "" {
			return fmt.Sprintf("bibleapi: fetch %q: status %d: %s", e.Passage, e.StatusCode, e.Detail)
		}
		return fmt.Sprintf("bibleapi: fetch %q: status %d", e.Passage, e.StatusCode)
	default:
		return fmt.Sprintf("bibleapi: fetch %q: %s: %v", e.Passage, e.Kind, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Message returns the user-facing description of the failure. The text
// depends only on Kind and StatusCode, never on the transport's wording.
func (e *TransportError) Message() string {
	switch e.Kind {
	case KindConnectivity:
		return "Could not reach the verse service. Check your connection and try again."
	case KindDecode:
		return "The verse service returned a response that could not be read."
	}

	switch {
	case e.StatusCode == http.StatusNotFound:
		return "Passage not found. Check the reference (e.g. john 3:16)."
	case e.StatusCode >= 500:
		return fmt.Sprintf("The verse service is unavailable right now (HTTP %d).", e.StatusCode)
	default:
		return fmt.Sprintf("The verse service rejected the request (HTTP %d).", e.StatusCode)
	}
}
