// Package app wires the Firewatch client together and owns the refresh
// cycle.
package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hellasfirewatch/firewatch/internal/feed"
	"github.com/hellasfirewatch/firewatch/internal/fingerprint"
	"github.com/hellasfirewatch/firewatch/internal/geo"
	"github.com/hellasfirewatch/firewatch/internal/httputil"
	"github.com/hellasfirewatch/firewatch/internal/locate"
	"github.com/hellasfirewatch/firewatch/internal/metrics"
	"github.com/hellasfirewatch/firewatch/internal/render"
	"github.com/hellasfirewatch/firewatch/internal/verify"
)

// locateTimeout bounds the single location attempt.
const locateTimeout = 8 * time.Second

// Filters supplies the current feed filter values, read once per cycle.
type Filters interface {
	Current() (hours int, minConfidence float64)
}

// StaticFilters is a fixed filter source, as set from CLI flags.
type StaticFilters struct {
	Hours         int
	MinConfidence float64
}

func (f StaticFilters) Current() (int, float64) {
	return f.Hours, f.MinConfidence
}

// Options configures a Controller.
type Options struct {
	BaseURL string
	Surface render.Surface
	Filters Filters
	Issuer  *fingerprint.Issuer // optional; requests go uncookied without it
	Locator locate.Locator      // optional; location requests degrade without it
}

// Controller orchestrates the refresh cycle and owns the only pieces of
// shared state: the user location and the refresh generation counter. The
// refresh callback is injected into the submitter here at construction;
// there are no ambient globals.
type Controller struct {
	feed      *feed.Client
	submitter *verify.Submitter
	overlay   *render.Overlay
	markers   *render.Markers
	surface   render.Surface
	filters   Filters
	issuer    *fingerprint.Issuer
	locator   locate.Locator

	gen atomic.Uint64

	mu      sync.Mutex
	userLoc *geo.Point
}

func New(opts Options) *Controller {
	c := &Controller{
		surface: opts.Surface,
		filters: opts.Filters,
		issuer:  opts.Issuer,
		locator: opts.Locator,
	}

	var token fingerprint.TokenFunc
	if opts.Issuer != nil {
		token = opts.Issuer.Token
	}
	c.feed = feed.NewClient(opts.BaseURL, token)
	c.submitter = verify.NewSubmitter(opts.BaseURL, token, c.refreshAfterVerification)
	c.overlay = render.NewOverlay(opts.Surface)
	c.markers = render.NewMarkers(opts.Surface, c.submitter)

	return c
}

// Setup runs the one-time session initialization: fingerprint issuance.
// Everything else (surface, control wiring) happened at construction.
func (c *Controller) Setup() error {
	if c.issuer == nil {
		return nil
	}
	if err := c.issuer.Ensure(); err != nil {
		return fmt.Errorf("ensure fingerprint: %w", err)
	}
	return nil
}

// Refresh runs one full cycle: read filters, fetch detections, redraw both
// layers from the same result, recompute the proximity summary when a
// location is known, then fetch metrics (soft-fail).
//
// A feed failure aborts the cycle and surfaces to the caller; the previously
// rendered layers stay as they were. Overlapping cycles are resolved by a
// generation counter: only the latest cycle's response is rendered, older
// ones are discarded silently.
func (c *Controller) Refresh(ctx context.Context) error {
	gen := c.gen.Add(1)
	hours, minConfidence := c.filters.Current()

	detections, err := c.feed.FetchDetections(ctx, hours, minConfidence)
	if err != nil {
		metrics.RefreshCyclesTotal.WithLabelValues("error").Inc()
		c.surface.SetStatus(render.StatusAlert, fmt.Sprintf("Failed to load detections: %v", err))
		return fmt.Errorf("fetch detections: %w", err)
	}

	if !c.latest(gen) {
		metrics.StaleRendersDiscarded.Inc()
		return nil
	}

	c.overlay.Redraw(detections)
	c.markers.Redraw(detections)
	log.Printf("refresh: rendered %d detection(s)", len(detections))

	if loc := c.UserLocation(); loc != nil {
		sum := geo.Nearby(*loc, detectionPoints(detections))
		c.surface.SetStatus(render.StatusNearby, formatNearby(sum))
	}

	if snap, ok := c.feed.FetchMetrics(ctx); !ok {
		c.surface.SetStatus(render.StatusMetrics, "Unavailable")
	} else if c.latest(gen) {
		c.surface.SetStatus(render.StatusMetrics, formatMetrics(snap))
	}

	metrics.RefreshCyclesTotal.WithLabelValues("ok").Inc()
	return nil
}

// SubmitVerification posts one verdict directly, outside a marker panel. The
// submitter still fires the refresh callback on success.
func (c *Controller) SubmitVerification(ctx context.Context, detectionID string, verdict verify.Verdict, photo *verify.Photo) (string, error) {
	return c.submitter.Submit(ctx, detectionID, verdict, photo)
}

// RequestLocation performs the one-shot location attempt. On success the
// location sticks for the session and a refresh recomputes the proximity
// summary; on denial or timeout a status message is all the user gets.
func (c *Controller) RequestLocation(ctx context.Context) {
	if c.locator == nil {
		c.surface.SetStatus(render.StatusNearby, "Location lookup not available.")
		return
	}

	c.surface.SetStatus(render.StatusNearby, "Requesting location…")

	lctx, cancel := context.WithTimeout(ctx, locateTimeout)
	defer cancel()

	pt, err := c.locator.Locate(lctx)
	if err != nil {
		c.surface.SetStatus(render.StatusNearby, "Location unavailable.")
		return
	}

	c.SetUserLocation(pt)
	c.surface.SetStatus(render.StatusNearby, "Location enabled. Refreshing…")
	if err := c.Refresh(ctx); err != nil {
		log.Printf("refresh: %v", err)
	}
}

// SetUserLocation records the user position for proximity summaries. Held in
// memory only.
func (c *Controller) SetUserLocation(pt geo.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userLoc = &pt
}

// UserLocation returns the recorded position, or nil when none is set.
func (c *Controller) UserLocation() *geo.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userLoc == nil {
		return nil
	}
	loc := *c.userLoc
	return &loc
}

func (c *Controller) latest(gen uint64) bool {
	return c.gen.Load() == gen
}

// refreshAfterVerification is the callback handed to the submitter. A
// refresh failure here is logged, not propagated: the verification itself
// already succeeded.
func (c *Controller) refreshAfterVerification() {
	ctx, cancel := context.WithTimeout(context.Background(), httputil.DefaultTimeout)
	defer cancel()
	if err := c.Refresh(ctx); err != nil {
		log.Printf("refresh after verification: %v", err)
	}
}

func detectionPoints(detections []feed.Detection) []geo.Point {
	pts := make([]geo.Point, len(detections))
	for i, d := range detections {
		pts[i] = d.Location()
	}
	return pts
}

func formatNearby(sum geo.Summary) string {
	if sum.Count == 0 {
		return fmt.Sprintf("No detections within %.0f km.", geo.NearbyRadiusKM)
	}
	return fmt.Sprintf("Nearby detections: %d (closest %.1f km). Open the point to verify.", sum.Count, sum.NearestKM)
}

func formatMetrics(snap *feed.MetricsSnapshot) string {
	return fmt.Sprintf(
		"North-star: %.1f%% | False-alarm rate: %.1f%% | Abuse block rate: %.1f%% | Detections: %d Accepted: %d Dismissed: %d",
		snap.NorthStarPct,
		snap.FalseAlarmRate*100,
		snap.AbuseBlockRate*100,
		snap.Totals.Detections,
		snap.Totals.Accepted,
		snap.Totals.Dismissed,
	)
}
