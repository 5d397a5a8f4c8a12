package ports

import (
	"context"
	"errors"
	"itinerary-scoring-service/internal/domain"
)

var (
	// ErrNotFound is returned by providers when the service answered but had no result.
	ErrNotFound = errors.New("no result")
	// ErrUnavailable is returned when a provider cannot be used at all, e.g. no API key.
	ErrUnavailable = errors.New("provider unavailable")
)

// PlaceProvider resolves a free-text place query to what the lookup service
// knows about it. Implementations must be safe for concurrent use.
type PlaceProvider interface {
	ResolvePlace(ctx context.Context, query string) (domain.PlaceInfo, error)
}
