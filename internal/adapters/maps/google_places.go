package maps

import (
	"context"
	"fmt"
	"net/url"

	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/platform/obs"
	"itinerary-scoring-service/internal/ports"
)

type textSearchResponse struct {
	envelope
	Results []struct {
		PlaceID string `json:"place_id"`
	} `json:"results"`
}

type placeDetailsResponse struct {
	envelope
	Result struct {
		Name             string   `json:"name"`
		Rating           *float64 `json:"rating"`
		UserRatingsTotal int      `json:"user_ratings_total"`
		FormattedAddress string   `json:"formatted_address"`
	} `json:"result"`
}

// ResolvePlace finds the best text-search match for query and fetches its
// details in a second request.
func (g *GoogleProvider) ResolvePlace(ctx context.Context, query string) (_ domain.PlaceInfo, err error) {
	defer obs.Time(ctx, "google.ResolvePlace")(&err)

	query = normalize(query)
	if query == "" {
		return domain.PlaceInfo{}, fmt.Errorf("resolve place: %w", errEmptyQuery)
	}

	placeID, err := g.findPlace(ctx, query)
	if err != nil {
		return domain.PlaceInfo{}, err
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "name,rating,user_ratings_total,formatted_address")

	var details placeDetailsResponse
	if err := g.getJSON(ctx, "/place/details/json", params, &details); err != nil {
		return domain.PlaceInfo{}, wrapStatus(fmt.Sprintf("place details %q", query), err)
	}

	r := details.Result
	info := domain.PlaceInfo{
		Name:        r.Name,
		Rating:      r.Rating,
		RatingCount: r.UserRatingsTotal,
		Address:     r.FormattedAddress,
	}
	if info.Name == "" {
		info.Name = query
	}

	return info, nil
}

// findPlace runs a text search and returns the top result's place id.
func (g *GoogleProvider) findPlace(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("query", query)
	if g.region != "" {
		params.Set("region", g.region)
	}

	var found textSearchResponse
	if err := g.getJSON(ctx, "/place/textsearch/json", params, &found); err != nil {
		return "", wrapStatus(fmt.Sprintf("find place %q", query), err)
	}

	if len(found.Results) == 0 || found.Results[0].PlaceID == "" {
		return "", fmt.Errorf("find place %q: %w", query, ports.ErrNotFound)
	}

	return found.Results[0].PlaceID, nil
}
