package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/hellasfirewatch/firewatch/internal/app"
	"github.com/hellasfirewatch/firewatch/internal/fingerprint"
	"github.com/hellasfirewatch/firewatch/internal/geo"
	"github.com/hellasfirewatch/firewatch/internal/locate"
	"github.com/hellasfirewatch/firewatch/internal/render"
	"github.com/hellasfirewatch/firewatch/internal/store"
	"github.com/hellasfirewatch/firewatch/internal/verify"
)

type cli struct {
	Server        string  `env:"FIREWATCH_SERVER" default:"http://localhost:8000" help:"Firewatch API base URL."`
	StateDB       string  `env:"FIREWATCH_STATE_DB" default:"data/firewatch.db" help:"Path to the client state database."`
	Hours         int     `env:"FIREWATCH_HOURS" default:"24" help:"Lookback window in hours."`
	MinConfidence float64 `env:"FIREWATCH_MIN_CONFIDENCE" default:"0.5" help:"Minimum detection confidence (0-1)."`

	Refresh refreshCmd `cmd:"" help:"Fetch detections once and print the rendered layers."`
	Watch   watchCmd   `cmd:"" help:"Poll the detection feed until interrupted."`
	Verify  verifyCmd  `cmd:"" help:"Submit a verdict for one detection."`
	Near    nearCmd    `cmd:"" help:"Show detections near a location."`
}

// runCtx is handed to every command by kong.
type runCtx struct {
	ctx  context.Context
	ctrl *app.Controller
	term *render.Term
}

type refreshCmd struct {
	Locate bool `help:"Look up the user location first and include the proximity summary."`
}

func (c *refreshCmd) Run(r *runCtx) error {
	if c.Locate {
		r.ctrl.RequestLocation(r.ctx)
	} else if err := r.ctrl.Refresh(r.ctx); err != nil {
		return err
	}
	r.term.Flush()
	return nil
}

type watchCmd struct {
	Interval    time.Duration `default:"5m" help:"Poll interval."`
	MetricsAddr string        `env:"FIREWATCH_METRICS_ADDR" help:"Optional address to serve Prometheus metrics on."`
	Locate      bool          `help:"Look up the user location before the first poll."`
}

func (c *watchCmd) Run(r *runCtx) error {
	if c.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics listening on %s", c.MetricsAddr)
			if err := http.ListenAndServe(c.MetricsAddr, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	if c.Locate {
		r.ctrl.RequestLocation(r.ctx)
	}
	r.ctrl.Watch(r.ctx, c.Interval)
	return nil
}

type verifyCmd struct {
	ID      string `arg:"" help:"Detection id."`
	Verdict string `arg:"" enum:"confirm,deny,unsure" help:"Verdict: confirm, deny or unsure."`
	Photo   string `type:"existingfile" help:"Optional photo to attach."`
}

func (c *verifyCmd) Run(r *runCtx) error {
	verdict, err := verify.ParseVerdict(c.Verdict)
	if err != nil {
		return err
	}

	var photo *verify.Photo
	if c.Photo != "" {
		if photo, err = verify.LoadPhoto(c.Photo); err != nil {
			return err
		}
	}

	status, err := r.ctrl.SubmitVerification(r.ctx, c.ID, verdict, photo)
	if err != nil {
		return fmt.Errorf("%s", render.FailureMessage(err))
	}

	fmt.Printf("Saved. Status: %s.\n", status)
	r.term.Flush()
	return nil
}

type nearCmd struct {
	Lat *float64 `help:"Latitude; defaults to an IP-based lookup."`
	Lon *float64 `help:"Longitude; defaults to an IP-based lookup."`
}

func (c *nearCmd) Run(r *runCtx) error {
	if c.Lat != nil && c.Lon != nil {
		r.ctrl.SetUserLocation(geo.Point{Lat: *c.Lat, Lon: *c.Lon})
		if err := r.ctrl.Refresh(r.ctx); err != nil {
			return err
		}
	} else {
		r.ctrl.RequestLocation(r.ctx)
	}
	r.term.Flush()
	return nil
}

func main() {
	var flags cli
	kctx := kong.Parse(&flags,
		kong.Name("firewatch"),
		kong.Description("Client for the Hellas Firewatch crowd-verified wildfire detection feed."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	if dir := filepath.Dir(flags.StateDB); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create state dir: %v", err)
		}
	}

	db, err := sql.Open("sqlite", flags.StateDB)
	if err != nil {
		log.Fatalf("open state database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	term := render.NewTerm(os.Stdout)
	ctrl := app.New(app.Options{
		BaseURL: flags.Server,
		Surface: term,
		Filters: app.StaticFilters{Hours: flags.Hours, MinConfidence: flags.MinConfidence},
		Issuer:  fingerprint.NewIssuer(st),
		Locator: locate.NewIPLocator(),
	})
	if err := ctrl.Setup(); err != nil {
		log.Fatalf("setup: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kctx.FatalIfErrorf(kctx.Run(&runCtx{ctx: ctx, ctrl: ctrl, term: term}))
}
