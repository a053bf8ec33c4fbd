package feed

import (
	"encoding/json"
	"time"

	"github.com/hellasfirewatch/firewatch/internal/geo"
)

// FeatureCollection is the detection feed payload.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single detection as served by the feed.
type Feature struct {
	Type       string     `json:"type"`
	Geometry   *Geometry  `json:"geometry"`
	Properties Properties `json:"properties"`
}

// Geometry is a GeoJSON point; coordinates are ordered [lon, lat].
type Geometry struct {
	Type        string `json:"type"`
	Coordinates Coords `json:"coordinates,omitempty"`
}

// Coords handles variable coordinate nesting in GeoJSON.
// For Point: [lon, lat]. For anything deeper we keep the first point.
type Coords []float64

func (c *Coords) UnmarshalJSON(data []byte) error {
	var simple []float64
	if err := json.Unmarshal(data, &simple); err == nil {
		*c = simple
		return nil
	}

	var nested [][][]float64
	if err := json.Unmarshal(data, &nested); err == nil {
		if len(nested) > 0 && len(nested[0]) > 0 && len(nested[0][0]) >= 2 {
			*c = nested[0][0]
			return nil
		}
	}

	*c = nil
	return nil
}

// Properties carries the detection metadata attached to a feature.
type Properties struct {
	ID         string   `json:"id"`
	Confidence float64  `json:"confidence"`
	FWIBucket  *int     `json:"fwi_bucket"`
	CreatedAt  string   `json:"created_at"`
	Status     string   `json:"status"`
	Source     string   `json:"source"`
	Community  Tally    `json:"community"`
	WindDirDeg *float64 `json:"wind_dir_deg"`
}

// Tally is the community verification count for one detection.
type Tally struct {
	Confirms int `json:"confirms"`
	Denies   int `json:"denies"`
	Unsure   int `json:"unsure"`
}

// Detection status values as reported by the server.
const (
	StatusUnconfirmed = "unconfirmed"
	StatusConfirmed   = "confirmed"
	StatusDismissed   = "dismissed"
)

// Detection is a decoded feed feature. The working set is rebuilt wholesale
// from every feed response; detections are never patched in place.
type Detection struct {
	ID         string
	Lat        float64
	Lon        float64
	Confidence float64
	Bucket     *int
	CreatedAt  time.Time
	Status     string
	Community  Tally
	WindDirDeg *float64
}

// Location returns the detection position as a geo point.
func (d Detection) Location() geo.Point {
	return geo.Point{Lat: d.Lat, Lon: d.Lon}
}

// MetricsSnapshot is the aggregate health read from /api/metrics.
type MetricsSnapshot struct {
	NorthStarPct   float64 `json:"north_star_pct"`
	FalseAlarmRate float64 `json:"false_alarm_rate"`
	AbuseBlockRate float64 `json:"abuse_block_rate"`
	Totals         Totals  `json:"totals"`
}

type Totals struct {
	Detections int `json:"detections"`
	Accepted   int `json:"accepted"`
	Dismissed  int `json:"dismissed"`
}

// detection converts a feature, reporting ok=false when the feature has no
// usable point geometry.
func (f Feature) detection() (Detection, bool) {
	if f.Geometry == nil || len(f.Geometry.Coordinates) < 2 {
		return Detection{}, false
	}

	d := Detection{
		ID:         f.Properties.ID,
		Lat:        f.Geometry.Coordinates[1],
		Lon:        f.Geometry.Coordinates[0],
		Confidence: f.Properties.Confidence,
		Bucket:     f.Properties.FWIBucket,
		Status:     f.Properties.Status,
		Community:  f.Properties.Community,
		WindDirDeg: f.Properties.WindDirDeg,
	}
	if d.Status == "" {
		d.Status = StatusUnconfirmed
	}
	if t, err := time.Parse(time.RFC3339, f.Properties.CreatedAt); err == nil {
		d.CreatedAt = t
	}
	return d, true
}
