package geofilm

import (
	"context"
	"fmt"
	"log/slog"
)

// Config carries everything a pipeline run needs.
type Config struct {
	DatasetPath string
	CachePath   string
	Year        int
	Viewer      Coordinate
	Count       int
	Resolver    Resolver
	Renderer    Renderer
	Logger      *slog.Logger
	RouteOpts   []RouteOption
	Report      func(done, total int)
}

// Option is a functional option for configuring a Pipeline.
type Option func(*Config)

// WithDataset sets the filmography dump to read.
func WithDataset(path string) Option {
	return func(c *Config) {
		c.DatasetPath = path
	}
}

// WithCachePath sets where the geocode snapshot lives.
func WithCachePath(path string) Option {
	return func(c *Config) {
		c.CachePath = path
	}
}

// WithYear selects the production year to keep.
func WithYear(year int) Option {
	return func(c *Config) {
		c.Year = year
	}
}

// WithViewer sets the position distances are measured from.
func WithViewer(viewer Coordinate) Option {
	return func(c *Config) {
		c.Viewer = viewer
	}
}

// WithCount overrides how many nearest locations are kept.
func WithCount(n int) Option {
	return func(c *Config) {
		c.Count = n
	}
}

// WithResolver swaps the geocode resolver.
func WithResolver(r Resolver) Option {
	return func(c *Config) {
		c.Resolver = r
	}
}

// WithRenderer sets the artifact renderer. Without one the pipeline
// stops after computing the route.
func WithRenderer(r Renderer) Option {
	return func(c *Config) {
		c.Renderer = r
	}
}

// WithLogger routes pipeline logging somewhere specific.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithRouteOptions forwards options to the route search.
func WithRouteOptions(opts ...RouteOption) Option {
	return func(c *Config) {
		c.RouteOpts = append(c.RouteOpts, opts...)
	}
}

// WithProgress reports resolution progress after every record.
func WithProgress(report func(done, total int)) Option {
	return func(c *Config) {
		c.Report = report
	}
}

func defaultPipelineConfig() *Config {
	return &Config{
		CachePath: "geocache",
		Count:     DefaultNearestCount,
	}
}

// Pipeline wires the stages together: parse the dataset, resolve
// locations through the cache, keep the nearest, order them into a
// tour, render. Stages run strictly in sequence.
type Pipeline struct {
	cfg *Config
}

// NewPipeline builds a pipeline from the options. The zero setup reads
// the "geocache" snapshot next to the working directory and resolves
// against public Nominatim.
func NewPipeline(opts ...Option) *Pipeline {
	cfg := defaultPipelineConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Resolver == nil {
		cfg.Resolver = NewNominatimResolver()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{cfg: cfg}
}

// Result is what a run produces: the nearest locations closest first,
// the visiting order over viewer-plus-locations, and the viewer.
type Result struct {
	Locations []ResolvedLocation
	Route     Route
	Viewer    Coordinate
}

// Run executes the stages in order. Records that do not parse and
// locations that resolve to nothing drop out silently; a missing record
// section or an unreadable cache snapshot aborts the run. Cancellation
// is honored between resolver calls and between stages.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	cfg := p.cfg
	log := cfg.Logger

	records, err := ReadDatasetFile(cfg.DatasetPath, cfg.Year)
	if err != nil {
		return nil, err
	}
	log.Info("dataset parsed", "path", cfg.DatasetPath, "year", cfg.Year, "records", len(records))

	cache, err := LoadCache(cfg.CachePath)
	if err != nil {
		return nil, err
	}
	log.Info("geocache loaded", "path", cfg.CachePath, "entries", cache.Len())

	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Location
	}
	resolveErr := cache.ResolveAll(ctx, names, cfg.Resolver, cfg.Report)
	// Lookups done before an abort are still worth keeping.
	if err := cache.Save(); err != nil {
		if resolveErr == nil {
			return nil, err
		}
		log.Warn("geocache not saved", "error", err)
	}
	if resolveErr != nil {
		return nil, resolveErr
	}
	log.Info("geocache saved", "path", cfg.CachePath, "entries", cache.Len())

	var resolved []ResolvedLocation
	for _, rec := range records {
		coord, ok := cache.Get(rec.Location)
		if !ok || coord == nil {
			continue
		}
		resolved = append(resolved, ResolvedLocation{Title: rec.Title, Coord: *coord})
	}
	log.Info("locations resolved", "resolved", len(resolved), "records", len(records))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nearest := NearestLocations(resolved, cfg.Viewer, cfg.Count)
	route := ShortestRoute(routePoints(nearest, cfg.Viewer), cfg.RouteOpts...)
	log.Info("route computed", "stops", len(nearest))

	result := &Result{Locations: nearest, Route: route, Viewer: cfg.Viewer}
	if cfg.Renderer != nil {
		if err := cfg.Renderer.Render(result.Locations, result.Route, result.Viewer); err != nil {
			return nil, fmt.Errorf("rendering: %w", err)
		}
	}
	return result, nil
}
