package render

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/hellasfirewatch/firewatch/internal/verify"
)

// Term is the terminal Surface: status and panel messages print as they
// happen, layer contents accumulate and print on Flush.
type Term struct {
	mu       sync.Mutex
	w        io.Writer
	circles  map[Layer][]Circle
	markers  map[Layer][]Marker
	disabled map[string]bool
}

func NewTerm(w io.Writer) *Term {
	return &Term{
		w:        w,
		circles:  make(map[Layer][]Circle),
		markers:  make(map[Layer][]Marker),
		disabled: make(map[string]bool),
	}
}

func (t *Term) ResetLayer(layer Layer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.circles, layer)
	delete(t.markers, layer)
}

func (t *Term) DrawCircle(layer Layer, c Circle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.circles[layer] = append(t.circles[layer], c)
}

func (t *Term) PlaceMarker(layer Layer, m Marker) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.markers[layer] = append(t.markers[layer], m)
}

func (t *Term) SetPanelMessage(markerID, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "detection %s: %s\n", markerID, text)
}

func (t *Term) SetControlEnabled(markerID string, verdict verify.Verdict, enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disabled[markerID+"/"+string(verdict)] = !enabled
}

func (t *Term) SetStatus(area StatusArea, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s: %s\n", area, text)
}

// Flush prints the current layer contents: each detection with its panel,
// then a one-line halo summary.
func (t *Term) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	markers := append([]Marker(nil), t.markers[LayerDetections]...)
	sort.Slice(markers, func(i, j int) bool { return markers[i].ID < markers[j].ID })

	fmt.Fprintf(t.w, "%d detection(s)\n", len(markers))
	for _, m := range markers {
		fmt.Fprintf(t.w, "— %s at (%.4f, %.4f)\n", m.ID, m.Lat, m.Lon)
		for _, line := range m.PanelLines {
			fmt.Fprintf(t.w, "    %s\n", line)
		}
	}

	if circles := t.circles[LayerRisk]; len(circles) > 0 {
		fmt.Fprintf(t.w, "%d risk halo(s):", len(circles))
		for _, c := range circles {
			fmt.Fprintf(t.w, " %.1fkm/%s", c.RadiusM/1000, c.Class)
		}
		fmt.Fprintln(t.w)
	}
}
