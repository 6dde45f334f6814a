package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ringsaturn/tzf"

	"ai-travel-planner/internal/config"
	"ai-travel-planner/internal/database"
	"ai-travel-planner/internal/geo"
	"ai-travel-planner/internal/ghost"
	"ai-travel-planner/internal/guide"
	"ai-travel-planner/internal/itinerary"
	"ai-travel-planner/internal/llm"
	"ai-travel-planner/internal/metrics"
	"ai-travel-planner/internal/storage"
)

// Runtime is a fully wired App together with the resources backing it.
type Runtime struct {
	App        *App
	DB         *database.DB
	Collectors *metrics.Collectors
	closers    []func() error
}

// Close releases the database and the text backend.
func (r *Runtime) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Bootstrap builds the App described by cfg. reg may be nil, in which case
// no Prometheus series are registered.
func Bootstrap(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{}

	textGen, err := llm.NewTextGenerator(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create text backend: %w", err)
	}
	if c, ok := textGen.(llm.Closer); ok {
		rt.closers = append(rt.closers, c.Close)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	rt.DB = db
	rt.closers = append(rt.closers, db.Close)

	exports, err := storage.NewExportStore(cfg.ExportPath)
	if err != nil {
		rt.Close()
		return nil, err
	}

	// The timezone index is large; a failure only costs the coordinate lookup.
	var tz geo.TimezoneFinder
	if finder, err := tzf.NewDefaultFinder(); err != nil {
		logger.Warn("Timezone finder unavailable", "error", err)
	} else {
		tz = finder
	}

	locations := geo.NewGeoNamesClient(cfg.GeoNamesURL, cfg.GeoNamesUsername, tz, logger)
	places := geo.NewOverpassClient(cfg.OverpassURL, logger)

	opts := []itinerary.Option{itinerary.WithTimeout(cfg.GenerationTimeout)}
	if cfg.GuideBaseURL != "" {
		opts = append(opts, itinerary.WithGuide(guide.NewClient(cfg.GuideBaseURL)))
	}

	deps := Deps{
		Locations: locations,
		Assembler: itinerary.NewAssembler(places, textGen, logger, opts...),
		Reviser:   itinerary.NewReviser(textGen, logger),
		Repo:      itinerary.NewRepository(db.SQL),
		Metrics:   metrics.NewStore(db.SQL),
		Exports:   exports,
		Logger:    logger,
	}
	if reg != nil {
		deps.Collectors = metrics.NewCollectors(reg)
		rt.Collectors = deps.Collectors
	}
	if cfg.GhostEnabled() {
		deps.Ghost = ghost.NewClient(cfg)
	}
	if cfg.OpenRouteAPIKey != "" {
		deps.Routes = geo.NewRouteClient(cfg.OpenRouteURL, cfg.OpenRouteAPIKey)
	}

	rt.App = NewApp(deps)
	return rt, nil
}
