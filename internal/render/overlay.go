package render

import (
	"github.com/hellasfirewatch/firewatch/internal/feed"
	"github.com/hellasfirewatch/firewatch/internal/risk"
)

// Overlay draws the risk halo layer: one circle per detection, sized and
// classed by its FWI bucket.
type Overlay struct {
	surface Surface
}

func NewOverlay(surface Surface) *Overlay {
	return &Overlay{surface: surface}
}

// Redraw replaces the whole risk layer from the detection set. A detection
// without a bucket is drawn with the fallback bucket on this layer only;
// the marker badge makes no such assumption.
func (o *Overlay) Redraw(detections []feed.Detection) {
	o.surface.ResetLayer(LayerRisk)

	for _, d := range detections {
		bucket := risk.FallbackBucket
		if d.Bucket != nil {
			bucket = *d.Bucket
		}

		o.surface.DrawCircle(LayerRisk, Circle{
			Lat:     d.Lat,
			Lon:     d.Lon,
			RadiusM: risk.HaloRadiusM(bucket),
			Class:   string(risk.Classify(bucket)),
		})
	}
}
