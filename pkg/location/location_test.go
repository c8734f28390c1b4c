package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photofeed/pkg/errors"
)

func TestIPSourceSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","lat":46.0207,"lon":7.7491,"city":"Zermatt"}`))
	}))
	defer server.Close()

	source := NewIPSource(server.URL)
	require.True(t, source.Available())

	coord, err := source.Current(context.Background(), DefaultQueryOptions())
	require.NoError(t, err)
	assert.InDelta(t, 46.0207, coord.Lat, 0.0001)
	assert.InDelta(t, 7.7491, coord.Lng, 0.0001)
}

func TestIPSourceFailStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
	}))
	defer server.Close()

	_, err := NewIPSource(server.URL).Current(context.Background(), DefaultQueryOptions())
	assert.True(t, errors.IsCode(err, "GEO_UNAVAILABLE"))
}

func TestIPSourceRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewIPSource(server.URL).Current(context.Background(), DefaultQueryOptions())
	assert.True(t, errors.IsCode(err, "GEO_PERMISSION_DENIED"))
}

func TestIPSourceMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	_, err := NewIPSource(server.URL).Current(context.Background(), DefaultQueryOptions())
	assert.True(t, errors.IsCode(err, "GEO_UNKNOWN"))
}

func TestIPSourceTimeoutClassifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	opts := DefaultQueryOptions()
	opts.Timeout = 20 * time.Millisecond

	_, err := NewIPSource(server.URL).Current(context.Background(), opts)
	require.Error(t, err)
	assert.Equal(t, "GEO_TIMEOUT", Classify(err).Code)
}

func TestIPSourceEmptyEndpointUnavailable(t *testing.T) {
	assert.False(t, NewIPSource("").Available())
}

func TestStaticSource(t *testing.T) {
	source := NewStaticSource(59.33, 18.07)
	require.True(t, source.Available())

	coord, err := source.Current(context.Background(), QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 59.33, coord.Lat)
	assert.Equal(t, 18.07, coord.Lng)
}
