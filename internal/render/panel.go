package render

import (
	"fmt"

	"github.com/hellasfirewatch/firewatch/internal/feed"
	"github.com/hellasfirewatch/firewatch/internal/risk"
)

// compassArrows are 8-point wind direction glyphs, starting at north.
var compassArrows = []string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}

// panelLines renders a detection's detail panel body.
func panelLines(d feed.Detection) []string {
	c := d.Community

	lines := []string{
		"Detection",
		fmt.Sprintf("✅ %d confirm  ❌ %d deny  🤷 %d unsure", c.Confirms, c.Denies, c.Unsure),
	}
	if !d.CreatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Time: %s", d.CreatedAt.Local().Format("2 Jan 2006 15:04")))
	}
	lines = append(lines,
		fmt.Sprintf("Confidence: %.2f | Status: %s", d.Confidence, d.Status),
		fmt.Sprintf("Risk: %s [%s]", risk.BadgeLabel(d.Bucket), risk.BadgeClass(d.Bucket)),
		fmt.Sprintf("Wind: %s", windArrow(d.WindDirDeg)),
	)
	return lines
}

// windArrow formats a wind direction in degrees as an arrow plus the number.
// A missing direction renders as 0°, matching how the panel has always shown
// it.
func windArrow(deg *float64) string {
	v := 0.0
	if deg != nil {
		v = *deg
	}

	idx := int((v+22.5)/45.0) % len(compassArrows)
	if idx < 0 {
		idx += len(compassArrows)
	}
	return fmt.Sprintf("%s %.0f°", compassArrows[idx], v)
}
