package cache

import (
	"itinerary-scoring-service/internal/ports"
)

// Store caches both place and route lookups.
type Store interface {
	ports.PlaceCache
	ports.RouteCache
}

const (
	placePrefix = "place:"
	routePrefix = "route:"
)

func placeKey(query string) string { return placePrefix + query }

func routeKey(k ports.RouteKey) string { return routePrefix + k.String() }
