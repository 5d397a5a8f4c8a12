package services

import (
	"context"
	"errors"
	"fmt"
	"net"

	"itinerary-scoring-service/internal/ports"
)

// ErrResolversUnavailable means the pipeline could not reach any lookup
// service, e.g. because no API key is configured.
var ErrResolversUnavailable = errors.New("lookup services unavailable")

// LookupKind classifies why a place or route lookup failed.
type LookupKind string

const (
	KindNotFound    LookupKind = "not_found"
	KindProvider    LookupKind = "provider"
	KindTransport   LookupKind = "transport"
	KindTimeout     LookupKind = "timeout"
	KindUnavailable LookupKind = "unavailable"
)

// LookupError reports a failed lookup for one key. It never aborts a
// pipeline run; the affected field is left empty instead.
type LookupError struct {
	Kind LookupKind
	Key  string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %q: %s: %v", e.Key, e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// classify wraps err in a LookupError, inferring its kind.
func classify(key string, err error) *LookupError {
	var le *LookupError
	if errors.As(err, &le) {
		return le
	}

	kind := KindProvider
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = KindTimeout
	case errors.Is(err, ports.ErrNotFound):
		kind = KindNotFound
	case errors.Is(err, ports.ErrUnavailable):
		kind = KindUnavailable
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			kind = KindTimeout
		} else {
			kind = KindTransport
		}
	}

	return &LookupError{Kind: kind, Key: key, Err: err}
}
