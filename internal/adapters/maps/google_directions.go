package maps

import (
	"context"
	"fmt"
	"net/url"

	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/platform/obs"
	"itinerary-scoring-service/internal/ports"
)

type directionsResponse struct {
	envelope
	Routes []struct {
		Legs []struct {
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

// ResolveRoute returns the first suggested route between two places.
// Distance and duration are taken from the numeric leg values, summed when
// the route has several legs.
func (g *GoogleProvider) ResolveRoute(ctx context.Context, from, to, mode string) (_ domain.Route, err error) {
	defer obs.Time(ctx, "google.ResolveRoute")(&err)

	from, to = normalize(from), normalize(to)
	if from == "" || to == "" {
		return domain.Route{}, fmt.Errorf("resolve route: origin and destination: %w", errEmptyQuery)
	}
	if mode == "" {
		mode = "driving"
	}

	params := url.Values{}
	params.Set("origin", from)
	params.Set("destination", to)
	params.Set("mode", mode)
	if g.region != "" {
		params.Set("region", g.region)
	}

	var resp directionsResponse
	if err := g.getJSON(ctx, "/directions/json", params, &resp); err != nil {
		return domain.Route{}, wrapStatus(fmt.Sprintf("directions %q -> %q", from, to), err)
	}

	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return domain.Route{}, fmt.Errorf("directions %q -> %q: %w", from, to, ports.ErrNotFound)
	}

	route := domain.Route{Mode: mode}
	for _, leg := range resp.Routes[0].Legs {
		route.DistanceMeters += leg.Distance.Value
		route.DurationSeconds += leg.Duration.Value
	}

	return route, nil
}
