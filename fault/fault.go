// Package fault classifies the failures the relay reports to clients.
package fault

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

type Kind int

const (
	// Conversion means the input audio could not be decoded or normalized.
	Conversion Kind = iota
	// Segmentation means the splitting utility failed; the whole upload
	// is abandoned because ordering of later chunks can't be guaranteed.
	Segmentation
	// BackendUnavailable is a network-level failure reaching an external
	// service.
	BackendUnavailable
	// BackendError is a non-success status or unparsable body from an
	// external service.
	BackendError
	// Protocol is a malformed inbound command.
	Protocol
)

func (k Kind) String() string {
	switch k {
	case Conversion:
		return "conversion"
	case Segmentation:
		return "segmentation"
	case BackendUnavailable:
		return "backend unavailable"
	case BackendError:
		return "backend error"
	case Protocol:
		return "protocol"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf reports the kind of err, or ok=false if err carries none.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// FromBackend classifies an external-service failure. Connection-level
// errors map to BackendUnavailable; a response that arrived but was a
// non-success or could not be parsed maps to BackendError.
func FromBackend(err error) *Error {
	var ue *url.Error
	var ne net.Error
	if errors.As(err, &ue) || errors.As(err, &ne) {
		return Wrap(BackendUnavailable, err)
	}
	return Wrap(BackendError, err)
}
