package maps

import (
	"context"
	"fmt"
	"sync"
	"time"

	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/ports"
)

// MockPlace is a canned answer for one place query.
type MockPlace struct {
	Query       string
	Name        string
	Rating      float64
	RatingCount int
	Address     string
}

// MockPair is a canned directed route.
type MockPair struct {
	From, To string
	Meters   int
	Seconds  int
}

// MockProvider is a deterministic in-memory PlaceProvider and RouteProvider.
// Unknown queries and pairs fail with ports.ErrNotFound. It counts calls so
// tests can assert on caching behaviour.
type MockProvider struct {
	// Delay is applied to every call; a cancelled context ends the wait early.
	Delay time.Duration

	places map[string]domain.PlaceInfo
	routes map[string]domain.Route

	mu         sync.Mutex
	failures   map[string]error
	placeCalls map[string]int
	routeCalls map[string]int
}

func NewMockProvider(places []MockPlace, pairs []MockPair) *MockProvider {
	p := &MockProvider{
		places:     make(map[string]domain.PlaceInfo, len(places)),
		routes:     make(map[string]domain.Route, len(pairs)),
		failures:   make(map[string]error),
		placeCalls: make(map[string]int),
		routeCalls: make(map[string]int),
	}

	for _, mp := range places {
		info := domain.PlaceInfo{Name: mp.Name, RatingCount: mp.RatingCount, Address: mp.Address}
		if mp.Rating > 0 {
			rating := mp.Rating
			info.Rating = &rating
		}
		p.places[mp.Query] = info
	}
	for _, pair := range pairs {
		p.routes[pair.From+"|"+pair.To] = domain.Route{DistanceMeters: pair.Meters, DurationSeconds: pair.Seconds}
	}

	return p
}

// FailRoute makes every lookup of the directed pair fail with err.
func (p *MockProvider) FailRoute(from, to string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures["route|"+from+"|"+to] = err
}

// FailPlace makes every lookup of query fail with err.
func (p *MockProvider) FailPlace(query string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures["place|"+query] = err
}

func (p *MockProvider) PlaceCalls(query string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.placeCalls[query]
}

func (p *MockProvider) RouteCalls(from, to string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.routeCalls[from+"|"+to]
}

// TotalCalls counts every lookup made so far.
func (p *MockProvider) TotalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.placeCalls {
		n += c
	}
	for _, c := range p.routeCalls {
		n += c
	}
	return n
}

func (p *MockProvider) ResolvePlace(ctx context.Context, query string) (domain.PlaceInfo, error) {
	p.mu.Lock()
	p.placeCalls[query]++
	fail := p.failures["place|"+query]
	p.mu.Unlock()

	if err := p.wait(ctx); err != nil {
		return domain.PlaceInfo{}, err
	}
	if fail != nil {
		return domain.PlaceInfo{}, fail
	}

	info, ok := p.places[query]
	if !ok {
		return domain.PlaceInfo{}, fmt.Errorf("missing place %q: %w", query, ports.ErrNotFound)
	}
	return info, nil
}

func (p *MockProvider) ResolveRoute(ctx context.Context, from, to, mode string) (domain.Route, error) {
	p.mu.Lock()
	p.routeCalls[from+"|"+to]++
	fail := p.failures["route|"+from+"|"+to]
	p.mu.Unlock()

	if err := p.wait(ctx); err != nil {
		return domain.Route{}, err
	}
	if fail != nil {
		return domain.Route{}, fail
	}

	r, ok := p.routes[from+"|"+to]
	if !ok {
		return domain.Route{}, fmt.Errorf("missing pair %q -> %q: %w", from, to, ports.ErrNotFound)
	}
	r.Mode = mode
	return r, nil
}

func (p *MockProvider) wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
