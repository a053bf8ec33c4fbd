package risk

import "fmt"

// Class is the display risk class derived from a detection's FWI bucket.
type Class string

const (
	ClassLow      Class = "fwi0"
	ClassElevated Class = "fwi2"
	ClassSevere   Class = "fwi4"
)

// Halo sizing for the risk overlay, in metres. Each bucket step widens the
// halo by haloScaleM.
const (
	haloBaseM  = 1500.0
	haloScaleM = 900.0
)

// FallbackBucket is assumed for the risk overlay when a detection carries no
// bucket. The marker badge intentionally has no such fallback.
const FallbackBucket = 2

// Classify maps an FWI bucket to its display class. Bucket edges are
// closed-lower, open-upper: 4 and above is severe, 2 up to 4 is elevated.
func Classify(bucket int) Class {
	switch {
	case bucket >= 4:
		return ClassSevere
	case bucket >= 2:
		return ClassElevated
	default:
		return ClassLow
	}
}

// HaloRadiusM returns the overlay halo radius in metres for a bucket.
func HaloRadiusM(bucket int) float64 {
	return haloBaseM + float64(bucket)*haloScaleM
}

// BadgeLabel formats the risk badge shown in a detection panel. A nil bucket
// renders as unknown; the overlay fallback does not apply here.
func BadgeLabel(bucket *int) string {
	if bucket == nil {
		return "FWI –"
	}
	return fmt.Sprintf("FWI %d", *bucket)
}

// BadgeClass returns the display class for a panel badge. Unlike the overlay,
// a missing bucket gets the lowest class rather than the fallback bucket.
func BadgeClass(bucket *int) Class {
	if bucket == nil {
		return ClassLow
	}
	return Classify(*bucket)
}
