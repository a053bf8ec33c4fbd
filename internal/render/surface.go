// Package render turns the current detection set into drawing operations
// against a map surface. The surface itself is a capability supplied by the
// host: draw geometry with a style class, place interactive markers, show
// status text.
package render

import (
	"context"

	"github.com/hellasfirewatch/firewatch/internal/verify"
)

// Layer identifies one of the redrawable layers. Each refresh fully replaces
// a layer's contents; nothing is patched incrementally.
type Layer string

const (
	LayerRisk       Layer = "risk"
	LayerDetections Layer = "detections"
)

// StatusArea identifies a status text slot outside the map layers.
type StatusArea string

const (
	StatusNearby  StatusArea = "nearby"
	StatusMetrics StatusArea = "metrics"
	StatusAlert   StatusArea = "alert"
)

// Circle is a styled shape on a layer. RadiusM is in metres.
type Circle struct {
	Lat     float64
	Lon     float64
	RadiusM float64
	Class   string
}

// Control is one verdict action in a marker's detail panel. Activate is
// bound exactly once when the marker is created; reopening the panel must
// not bind it again.
type Control struct {
	Verdict  verify.Verdict
	Activate func(ctx context.Context, photo *verify.Photo)
}

// Marker is an interactive point with a detail panel.
type Marker struct {
	ID         string
	Lat        float64
	Lon        float64
	PanelLines []string
	Controls   []Control
}

// Surface is the drawing capability the renderers target.
type Surface interface {
	// ResetLayer discards everything previously drawn on the layer.
	ResetLayer(layer Layer)
	DrawCircle(layer Layer, c Circle)
	PlaceMarker(layer Layer, m Marker)

	// SetPanelMessage updates the submission status line local to one
	// marker's panel.
	SetPanelMessage(markerID, text string)
	// SetControlEnabled toggles a single verdict control.
	SetControlEnabled(markerID string, verdict verify.Verdict, enabled bool)

	SetStatus(area StatusArea, text string)
}
