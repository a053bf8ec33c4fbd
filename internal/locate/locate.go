// Package locate resolves the user's approximate position. It is a single
// attempt with no retry and no background polling; failure degrades to a
// status message upstream.
package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hellasfirewatch/firewatch/internal/geo"
	"github.com/hellasfirewatch/firewatch/internal/httputil"
)

// Locator is the one-shot location capability.
type Locator interface {
	Locate(ctx context.Context) (geo.Point, error)
}

const defaultEndpoint = "http://ip-api.com/json/"

// IPLocator looks the position up from the caller's public IP.
type IPLocator struct {
	httpClient *http.Client
	endpoint   string
}

func NewIPLocator() *IPLocator {
	return &IPLocator{
		httpClient: httputil.NewClient(),
		endpoint:   defaultEndpoint,
	}
}

// NewIPLocatorEndpoint overrides the lookup endpoint, mainly for tests.
func NewIPLocatorEndpoint(endpoint string) *IPLocator {
	l := NewIPLocator()
	l.endpoint = endpoint
	return l
}

func (l *IPLocator) Locate(ctx context.Context) (geo.Point, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", l.endpoint, nil)
	if err != nil {
		return geo.Point{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", httputil.UserAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return geo.Point{}, fmt.Errorf("lookup location: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Point{}, fmt.Errorf("lookup location: status %d", resp.StatusCode)
	}

	var body struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return geo.Point{}, fmt.Errorf("decode location: %w", err)
	}
	if body.Status != "success" {
		return geo.Point{}, fmt.Errorf("lookup location: %s", body.Message)
	}

	return geo.Point{Lat: body.Lat, Lon: body.Lon}, nil
}
