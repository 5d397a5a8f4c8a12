package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"itinerary-scoring-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, h http.Handler) *GoogleProvider {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	p, err := NewGoogleProvider(GoogleConfig{
		APIKey:        "test-key",
		BaseURL:       srv.URL,
		Language:      "zh-TW",
		Region:        "tw",
		RetryAttempts: 3,
		RetryBackoff:  time.Millisecond,
	})
	require.NoError(t, err)
	return p
}

func TestNewGoogleProviderRequiresKey(t *testing.T) {
	_, err := NewGoogleProvider(GoogleConfig{APIKey: "  "})
	require.ErrorIs(t, err, ports.ErrUnavailable)
}

func TestResolvePlace(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/place/textsearch/json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "台北 士林夜市", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "zh-TW", r.URL.Query().Get("language"))
		assert.Equal(t, "tw", r.URL.Query().Get("region"))
		w.Write([]byte(`{"status":"OK","results":[{"place_id":"abc"}]}`))
	})
	mux.HandleFunc("/place/details/json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", r.URL.Query().Get("place_id"))
		w.Write([]byte(`{"status":"OK","result":{"name":"士林夜市","rating":4.2,"user_ratings_total":500,"formatted_address":"台北市士林區基河路101號"}}`))
	})

	p := newTestProvider(t, mux)

	info, err := p.ResolvePlace(context.Background(), "  台北   士林夜市 ")
	require.NoError(t, err)
	assert.Equal(t, "士林夜市", info.Name)
	require.NotNil(t, info.Rating)
	assert.Equal(t, 4.2, *info.Rating)
	assert.Equal(t, 500, info.RatingCount)
	assert.Equal(t, "台北市士林區基河路101號", info.Address)
}

func TestResolvePlaceWithoutRating(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/place/textsearch/json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":[{"place_id":"abc"}]}`))
	})
	mux.HandleFunc("/place/details/json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","result":{"name":"小巷"}}`))
	})

	info, err := newTestProvider(t, mux).ResolvePlace(context.Background(), "小巷")
	require.NoError(t, err)
	assert.Nil(t, info.Rating)
	assert.Zero(t, info.RatingCount)
}

func TestResolvePlaceZeroResults(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})

	_, err := newTestProvider(t, h).ResolvePlace(context.Background(), "nowhere")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestResolvePlaceRequestDeniedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
	})

	_, err := newTestProvider(t, h).ResolvePlace(context.Background(), "台北101")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrNotFound)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.EqualValues(t, 1, calls.Load())
}

func TestResolveRouteRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.Write([]byte(`{"status":"OVER_QUERY_LIMIT"}`))
		default:
			assert.Equal(t, "台北101", r.URL.Query().Get("origin"))
			assert.Equal(t, "台北 士林夜市", r.URL.Query().Get("destination"))
			assert.Equal(t, "driving", r.URL.Query().Get("mode"))
			assert.Equal(t, "tw", r.URL.Query().Get("region"))
			w.Write([]byte(`{"status":"OK","routes":[{"legs":[
				{"distance":{"value":1800,"text":"1.8 公里"},"duration":{"value":500,"text":"8 分鐘"}},
				{"distance":{"value":1200,"text":"1.2 公里"},"duration":{"value":400,"text":"7 分鐘"}}
			]}]}`))
		}
	})

	route, err := newTestProvider(t, h).ResolveRoute(context.Background(), "台北101", "台北 士林夜市", "")
	require.NoError(t, err)
	assert.Equal(t, 3000, route.DistanceMeters)
	assert.Equal(t, 900, route.DurationSeconds)
	assert.Equal(t, "driving", route.Mode)
	assert.EqualValues(t, 3, calls.Load())
}

func TestResolveRouteGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := newTestProvider(t, h).ResolveRoute(context.Background(), "A", "B", "walking")
	require.Error(t, err)

	var he *httpStatusError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadGateway, he.Code)
	assert.EqualValues(t, 3, calls.Load())
}

func TestResolveRouteNoRoutes(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","routes":[]}`))
	})

	_, err := newTestProvider(t, h).ResolveRoute(context.Background(), "A", "B", "driving")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestResolveRouteRespectsContext(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestProvider(t, h).ResolveRoute(ctx, "A", "B", "driving")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, err.Error(), "test-key")
}

func TestRedactKey(t *testing.T) {
	got := redactKey("https://maps.example.com/directions/json?key=secret&origin=A")
	assert.NotContains(t, got, "secret")
	assert.Contains(t, got, "origin=A")
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"ok", `{"status":"OK","results":[{"place_id":"abc"}]}`, false},
		{"no results", `{"status":"ZERO_RESULTS","results":[]}`, false},
		{"revoked key", `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				assert.Equal(t, "/place/textsearch/json", r.URL.Path)
				w.Write([]byte(tt.body))
			}))

			err := p.Check(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.NotContains(t, err.Error(), "test-key")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestCheckWithoutProvider(t *testing.T) {
	var p *GoogleProvider
	require.ErrorIs(t, p.Check(context.Background()), ports.ErrUnavailable)
}
