package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hellasfirewatch/firewatch/internal/fingerprint"
	"github.com/hellasfirewatch/firewatch/internal/httputil"
	"github.com/hellasfirewatch/firewatch/internal/metrics"
)

const metricsWindowHours = 24

// Client reads detections and aggregate metrics from the Firewatch API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      fingerprint.TokenFunc
}

// NewClient creates a feed client for the given API base URL. token may be
// nil; when set, the device fingerprint cookie rides along on every request.
func NewClient(baseURL string, token fingerprint.TokenFunc) *Client {
	return &Client{
		httpClient: httputil.NewClient(),
		baseURL:    baseURL,
		token:      token,
	}
}

// FetchDetections retrieves detections for the lookback window. Filter values
// are validated before a request is built; a bad value fails fast with a
// ValidationError instead of bouncing off the server.
//
// Failures are fatal to the caller's refresh cycle: transport errors surface
// as NetworkError, non-success responses as HTTPError. No retries.
func (c *Client) FetchDetections(ctx context.Context, hours int, minConfidence float64) ([]Detection, error) {
	if hours < 1 {
		return nil, &ValidationError{Field: "hours", Reason: "must be a positive number of hours"}
	}
	if minConfidence < 0 || minConfidence > 1 {
		return nil, &ValidationError{Field: "min_confidence", Reason: "must be between 0 and 1"}
	}

	q := url.Values{}
	q.Set("hours", strconv.Itoa(hours))
	q.Set("min_confidence", strconv.FormatFloat(minConfidence, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/detections?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.prepare(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.FeedFetchLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FeedFetchesTotal.WithLabelValues("network_error").Inc()
		return nil, &NetworkError{Op: "fetch detections", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FeedFetchesTotal.WithLabelValues("http_error").Inc()
		return nil, &HTTPError{Status: resp.StatusCode, Detail: decodeDetail(resp)}
	}

	var fc FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		metrics.FeedFetchesTotal.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	detections := make([]Detection, 0, len(fc.Features))
	for _, f := range fc.Features {
		if d, ok := f.detection(); ok {
			detections = append(detections, d)
		}
	}

	metrics.FeedFetchesTotal.WithLabelValues("ok").Inc()
	return detections, nil
}

// FetchMetrics retrieves the aggregate metrics snapshot. This read is
// non-critical: any failure is swallowed and reported as unavailable, never
// as an error to the caller.
func (c *Client) FetchMetrics(ctx context.Context) (*MetricsSnapshot, bool) {
	u := fmt.Sprintf("%s/api/metrics?window_hours=%d", c.baseURL, metricsWindowHours)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, false
	}
	c.prepare(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.MetricsFetchesTotal.WithLabelValues("unavailable").Inc()
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.MetricsFetchesTotal.WithLabelValues("unavailable").Inc()
		return nil, false
	}

	var snap MetricsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		metrics.MetricsFetchesTotal.WithLabelValues("unavailable").Inc()
		return nil, false
	}

	metrics.MetricsFetchesTotal.WithLabelValues("ok").Inc()
	return &snap, true
}

func (c *Client) prepare(req *http.Request) {
	req.Header.Set("User-Agent", httputil.UserAgent)
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.AddCookie(&http.Cookie{Name: fingerprint.CookieName, Value: tok})
		}
	}
}

// decodeDetail pulls the server's detail message out of an error response
// body, if there is one.
func decodeDetail(resp *http.Response) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	return body.Detail
}
