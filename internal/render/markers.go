package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/hellasfirewatch/firewatch/internal/feed"
	"github.com/hellasfirewatch/firewatch/internal/verify"
)

// Submitter is the verification dependency of the marker layer.
type Submitter interface {
	Submit(ctx context.Context, detectionID string, verdict verify.Verdict, photo *verify.Photo) (string, error)
}

// Markers draws the interactive detection layer. Each marker carries a detail
// panel with verdict controls wired to the submitter.
type Markers struct {
	surface   Surface
	submitter Submitter
}

func NewMarkers(surface Surface, submitter Submitter) *Markers {
	return &Markers{surface: surface, submitter: submitter}
}

// Redraw replaces the whole detection layer. Verdict-control handlers are
// bound here, once per marker, keyed by detection id; opening the panel
// later attaches nothing new.
func (m *Markers) Redraw(detections []feed.Detection) {
	m.surface.ResetLayer(LayerDetections)

	for _, d := range detections {
		m.surface.PlaceMarker(LayerDetections, Marker{
			ID:         d.ID,
			Lat:        d.Lat,
			Lon:        d.Lon,
			PanelLines: panelLines(d),
			Controls:   m.bindControls(d.ID),
		})
	}
}

func (m *Markers) bindControls(detectionID string) []Control {
	verdicts := []verify.Verdict{verify.VerdictConfirm, verify.VerdictDeny, verify.VerdictUnsure}

	controls := make([]Control, 0, len(verdicts))
	for _, v := range verdicts {
		verdict := v
		controls = append(controls, Control{
			Verdict: verdict,
			Activate: func(ctx context.Context, photo *verify.Photo) {
				m.activate(ctx, detectionID, verdict, photo)
			},
		})
	}
	return controls
}

// activate runs one verdict submission and keeps its outcome local to the
// originating panel. The control stays disabled for the duration so a second
// activation cannot start a concurrent submission.
func (m *Markers) activate(ctx context.Context, detectionID string, verdict verify.Verdict, photo *verify.Photo) {
	m.surface.SetControlEnabled(detectionID, verdict, false)
	m.surface.SetPanelMessage(detectionID, "Submitting…")

	status, err := m.submitter.Submit(ctx, detectionID, verdict, photo)
	if errors.Is(err, verify.ErrSubmissionInFlight) {
		// Another activation of this control is still running; leave its
		// state alone.
		return
	}

	m.surface.SetControlEnabled(detectionID, verdict, true)
	if err != nil {
		m.surface.SetPanelMessage(detectionID, FailureMessage(err))
		return
	}
	m.surface.SetPanelMessage(detectionID, fmt.Sprintf("Saved. Status: %s.", status))
}

// FailureMessage converts a submission error into the user-facing panel
// text: the server's detail message when present, a generic line otherwise.
func FailureMessage(err error) string {
	var httpErr *feed.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Detail != "" {
			return httpErr.Detail
		}
		return fmt.Sprintf("Verify failed (%d)", httpErr.Status)
	}
	return "Verification failed"
}
