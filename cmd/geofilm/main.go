// Command geofilm maps the filming locations nearest to a viewer for
// one production year and draws a short visiting route through them.
//
// Usage:
//
//	geofilm -year 2015 -lat 49.8397 -lng 24.0297 -dataset locations.list
//
// The interactive map lands in map.html and resolved coordinates are
// kept in the geocache snapshot, so re-runs only pay for new
// locations. A .env file is honored when present; LOG_LEVEL and
// LOG_FORMAT tune the logging and GEOFILM_USER_AGENT overrides the
// Nominatim User-Agent.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	geofilm "github.com/amytnyk/UCU-Lab-Geofilm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// The .env file is optional.
	_ = godotenv.Load()

	var (
		year      = flag.Int("year", 0, "production year to keep")
		lat       = flag.Float64("lat", 0, "viewer latitude in degrees")
		lng       = flag.Float64("lng", 0, "viewer longitude in degrees")
		dataset   = flag.String("dataset", "", "path to the locations dump")
		cachePath = flag.String("cache", "geocache", "path of the geocode snapshot")
		out       = flag.String("out", "map.html", "path of the rendered map")
		geoJSON   = flag.String("geojson", "", "optional GeoJSON output path")
		userAgent = flag.String("user-agent", envOr("GEOFILM_USER_AGENT", geofilm.DefaultUserAgent), "User-Agent for Nominatim requests")
		rps       = flag.Float64("rate", 1, "Nominatim requests per second")
		timeout   = flag.Duration("timeout", 10*time.Second, "Nominatim request timeout")
		quiet     = flag.Bool("quiet", false, "suppress the progress line")
	)
	flag.Parse()

	logger := setupLogger()
	slog.SetDefault(logger)

	viewer := geofilm.Coordinate{Lat: *lat, Lng: *lng}
	if err := checkFlags(*year, *dataset, viewer); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := geofilm.NewNominatimResolver(
		geofilm.WithUserAgent(*userAgent),
		geofilm.WithRequestsPerSecond(*rps),
		geofilm.WithTimeout(*timeout),
	)

	renderer := geofilm.MultiRenderer{&geofilm.HTMLMapRenderer{Path: *out}}
	if *geoJSON != "" {
		renderer = append(renderer, &geofilm.GeoJSONRenderer{Path: *geoJSON})
	}

	opts := []geofilm.Option{
		geofilm.WithDataset(*dataset),
		geofilm.WithCachePath(*cachePath),
		geofilm.WithYear(*year),
		geofilm.WithViewer(viewer),
		geofilm.WithResolver(resolver),
		geofilm.WithRenderer(renderer),
		geofilm.WithLogger(logger),
	}
	if !*quiet {
		var progress *geofilm.Progress
		opts = append(opts, geofilm.WithProgress(func(done, total int) {
			if progress == nil {
				progress = geofilm.NewProgress(os.Stdout, "Fetching locations", total)
			}
			progress.Set(done)
			if done == total {
				progress.Done()
			}
		}))
	}

	result, err := geofilm.NewPipeline(opts...).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("map written", "path", *out, "locations", len(result.Locations))
	return nil
}

// checkFlags validates the required arguments before any work starts.
// A year of zero counts as unset; no film carries it.
func checkFlags(year int, dataset string, viewer geofilm.Coordinate) error {
	if dataset == "" {
		return errors.New("missing -dataset")
	}
	if year == 0 {
		return errors.New("missing -year")
	}
	if !viewer.Valid() {
		return fmt.Errorf("viewer position %v, %v is not on the map", viewer.Lat, viewer.Lng)
	}
	return nil
}

// setupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func setupLogger() *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	} else {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}
	return slog.New(h)
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
