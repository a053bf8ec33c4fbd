package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const featureCollectionJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [23.73, 37.98]},
			"properties": {
				"id": "det-1",
				"confidence": 0.82,
				"fwi_bucket": 4,
				"created_at": "2026-08-29T10:15:00+00:00",
				"status": "unconfirmed",
				"community": {"confirms": 2, "denies": 0, "unsure": 1},
				"wind_dir_deg": 135.0
			}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [22.94, 40.64]},
			"properties": {
				"id": "det-2",
				"confidence": 0.61,
				"created_at": "2026-08-29T11:00:00+00:00",
				"status": "confirmed",
				"community": {"confirms": 5, "denies": 1, "unsure": 0}
			}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [21.73, 38.25]},
			"properties": {
				"id": "det-3",
				"confidence": 0.55,
				"fwi_bucket": 1,
				"created_at": "2026-08-29T12:30:00+00:00",
				"status": "unconfirmed",
				"community": {"confirms": 0, "denies": 0, "unsure": 0}
			}
		}
	]
}`

func TestFetchDetections_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/detections", r.URL.Path)
		assert.Equal(t, "24", r.URL.Query().Get("hours"))
		assert.Equal(t, "0.5", r.URL.Query().Get("min_confidence"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(featureCollectionJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	dets, err := c.FetchDetections(context.Background(), 24, 0.5)
	require.NoError(t, err)

	// Server result is authoritative; the client does no extra filtering.
	require.Len(t, dets, 3)

	assert.Equal(t, "det-1", dets[0].ID)
	assert.Equal(t, 37.98, dets[0].Lat, "coordinates are [lon, lat]")
	assert.Equal(t, 23.73, dets[0].Lon)
	require.NotNil(t, dets[0].Bucket)
	assert.Equal(t, 4, *dets[0].Bucket)
	assert.Equal(t, Tally{Confirms: 2, Denies: 0, Unsure: 1}, dets[0].Community)
	require.NotNil(t, dets[0].WindDirDeg)
	assert.Equal(t, 135.0, *dets[0].WindDirDeg)
	assert.Equal(t, 2026, dets[0].CreatedAt.Year())

	assert.Nil(t, dets[1].Bucket, "missing fwi_bucket stays nil")
	assert.Nil(t, dets[1].WindDirDeg)
	assert.Equal(t, StatusConfirmed, dets[1].Status)
}

func TestFetchDetections_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail":"upstream down"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.FetchDetections(context.Background(), 24, 0.5)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.Status)
	assert.Equal(t, "upstream down", httpErr.Detail)
}

func TestFetchDetections_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.FetchDetections(context.Background(), 24, 0.5)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestFetchDetections_ValidatesFilters(t *testing.T) {
	c := NewClient("http://example.invalid", nil)

	tests := []struct {
		name    string
		hours   int
		minConf float64
	}{
		{"zero hours", 0, 0.5},
		{"negative hours", -6, 0.5},
		{"confidence below range", 24, -0.1},
		{"confidence above range", 24, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.FetchDetections(context.Background(), tt.hours, tt.minConf)
			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
		})
	}
}

func TestFetchDetections_SkipsFeaturesWithoutGeometry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"id":"no-geom"}},
			{"type":"Feature","geometry":{"type":"Point","coordinates":[22.0,39.0]},"properties":{"id":"ok","created_at":"2026-08-29T10:00:00+00:00"}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	dets, err := c.FetchDetections(context.Background(), 24, 0.5)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "ok", dets[0].ID)
	assert.Equal(t, StatusUnconfirmed, dets[0].Status, "missing status defaults to unconfirmed")
}

func TestFetchMetrics_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/metrics", r.URL.Path)
		assert.Equal(t, "24", r.URL.Query().Get("window_hours"))
		w.Write([]byte(`{
			"north_star_pct": 62.5,
			"false_alarm_rate": 0.12,
			"abuse_block_rate": 0.03,
			"totals": {"detections": 40, "accepted": 25, "dismissed": 5}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	snap, ok := c.FetchMetrics(context.Background())
	require.True(t, ok)
	assert.Equal(t, 62.5, snap.NorthStarPct)
	assert.Equal(t, 0.12, snap.FalseAlarmRate)
	assert.Equal(t, Totals{Detections: 40, Accepted: 25, Dismissed: 5}, snap.Totals)
}

func TestFetchMetrics_NeverFailsHard(t *testing.T) {
	// Non-success status.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	c := NewClient(srv.URL, nil)
	snap, ok := c.FetchMetrics(context.Background())
	assert.False(t, ok)
	assert.Nil(t, snap)
	srv.Close()

	// Transport failure against the now-closed server.
	snap, ok = c.FetchMetrics(context.Background())
	assert.False(t, ok)
	assert.Nil(t, snap)
}

func TestFetchDetections_SendsFingerprintCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("hf_fp")
		require.NoError(t, err)
		assert.Equal(t, "1-2-3-4", cookie.Value)
		w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, func() string { return "1-2-3-4" })
	_, err := c.FetchDetections(context.Background(), 24, 0.5)
	require.NoError(t, err)
}
