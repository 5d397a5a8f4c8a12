package maps

import (
	"context"
	"errors"
	"testing"
	"time"

	"itinerary-scoring-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider(t *testing.T) {
	p := NewMockProvider(
		[]MockPlace{{Query: "台北101", Name: "台北101", Rating: 4.5, RatingCount: 2000}},
		[]MockPair{{From: "A", To: "B", Meters: 1000, Seconds: 300}},
	)
	ctx := context.Background()

	info, err := p.ResolvePlace(ctx, "台北101")
	require.NoError(t, err)
	require.NotNil(t, info.Rating)
	assert.Equal(t, 4.5, *info.Rating)

	_, err = p.ResolvePlace(ctx, "unknown")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	r, err := p.ResolveRoute(ctx, "A", "B", "walking")
	require.NoError(t, err)
	assert.Equal(t, 300, r.DurationSeconds)
	assert.Equal(t, "walking", r.Mode)

	_, err = p.ResolveRoute(ctx, "B", "A", "walking")
	assert.ErrorIs(t, err, ports.ErrNotFound, "pairs are directed")

	boom := errors.New("boom")
	p.FailRoute("A", "B", boom)
	_, err = p.ResolveRoute(ctx, "A", "B", "walking")
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 1, p.PlaceCalls("台北101"))
	assert.Equal(t, 2, p.RouteCalls("A", "B"))
	assert.Equal(t, 5, p.TotalCalls())
}

func TestMockProviderDelayHonoursContext(t *testing.T) {
	p := NewMockProvider(nil, nil)
	p.Delay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.ResolvePlace(ctx, "anything")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
