package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ai-travel-planner/internal/geo"
	"ai-travel-planner/internal/ghost"
	"ai-travel-planner/internal/itinerary"
	"ai-travel-planner/internal/metrics"
	"ai-travel-planner/internal/shared"
	"ai-travel-planner/internal/storage"
)

// ErrPublishingDisabled is returned by Publish when Ghost is not configured.
var ErrPublishingDisabled = errors.New("ghost publishing is not configured")

// ErrRoutingDisabled is returned by Routes when no routing key is configured.
var ErrRoutingDisabled = errors.New("routing is not configured")

// LocationResolver turns a destination name into a located place.
type LocationResolver interface {
	ResolveLocation(ctx context.Context, name string) (*geo.LocationInfo, error)
}

// RouteFinder computes a route between two points.
type RouteFinder interface {
	Route(ctx context.Context, start, end geo.Coordinates, profile string) (*geo.Route, error)
}

// Deps are the collaborators an App is built from. Ghost, Routes and
// Collectors are optional.
type Deps struct {
	Locations  LocationResolver
	Assembler  *itinerary.Assembler
	Reviser    *itinerary.Reviser
	Repo       *itinerary.Repository
	Metrics    *metrics.Store
	Collectors *metrics.Collectors
	Exports    *storage.ExportStore
	Ghost      ghost.Client
	Routes     RouteFinder
	Logger     *slog.Logger
}

// App holds the application's dependencies and exposes the use cases shared
// by the CLI and the Telegram bot.
type App struct {
	locations  LocationResolver
	assembler  *itinerary.Assembler
	reviser    *itinerary.Reviser
	repo       *itinerary.Repository
	metrics    *metrics.Store
	collectors *metrics.Collectors
	exports    *storage.ExportStore
	ghost      ghost.Client
	routes     RouteFinder
	logger     *slog.Logger
	now        func() time.Time
}

// NewApp creates and initializes a new App instance.
func NewApp(d Deps) *App {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		locations:  d.Locations,
		assembler:  d.Assembler,
		reviser:    d.Reviser,
		repo:       d.Repo,
		metrics:    d.Metrics,
		collectors: d.Collectors,
		exports:    d.Exports,
		ghost:      d.Ghost,
		routes:     d.Routes,
		logger:     logger,
		now:        time.Now,
	}
}

// PlanResult is a stored, freshly assembled itinerary.
type PlanResult struct {
	ID        string
	Itinerary *itinerary.Itinerary
	Fallback  bool
	Reason    error
	Metas     []shared.AgentMeta
}

// PlanTrip resolves the destination, assembles an itinerary and stores it
// for userID. Only request validation and persistence failures are errors.
func (a *App) PlanTrip(ctx context.Context, userID string, req itinerary.TripRequest) (*PlanResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	loc, err := a.locations.ResolveLocation(ctx, req.Destination)
	if err != nil {
		a.logger.Warn("Location lookup failed", "destination", req.Destination, "error", err)
		loc = nil
	}
	if loc == nil {
		loc = &geo.LocationInfo{Name: req.Destination}
	}

	res := a.assembler.Build(ctx, req, loc)
	a.recordMetas(ctx, res.Metas)
	if a.collectors != nil {
		a.collectors.ObserveAssembly(res.Fallback, res.Metas, len(res.CostIssues))
	}
	if res.Fallback {
		a.logger.Warn("Fallback itinerary built", "destination", req.Destination, "reason", res.Reason)
	}

	id, err := a.repo.Save(ctx, userID, res.Itinerary, res.Fallback)
	if err != nil {
		return nil, fmt.Errorf("failed to save itinerary: %w", err)
	}

	a.logger.Info("Itinerary planned", "id", id, "destination", req.Destination, "days", len(res.Itinerary.Days), "fallback", res.Fallback)
	return &PlanResult{ID: id, Itinerary: res.Itinerary, Fallback: res.Fallback, Reason: res.Reason, Metas: res.Metas}, nil
}

// Show loads a stored itinerary.
func (a *App) Show(ctx context.Context, id string) (*itinerary.Record, error) {
	return a.repo.Get(ctx, id)
}

// Latest returns the most recent itinerary of userID.
func (a *App) Latest(ctx context.Context, userID string) (*itinerary.Record, error) {
	records, err := a.repo.ListRecent(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, itinerary.ErrNotFound
	}
	return &records[0], nil
}

// Recent lists the latest itineraries of userID, or of everyone when userID is empty.
func (a *App) Recent(ctx context.Context, userID string, limit int) ([]itinerary.Record, error) {
	return a.repo.ListRecent(ctx, userID, limit)
}

// Revise applies a free-text modification to a stored itinerary and saves
// the result in place.
func (a *App) Revise(ctx context.Context, id, modification string) (*itinerary.Itinerary, error) {
	rec, err := a.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	revised, meta, err := a.reviser.Revise(ctx, rec.Itinerary, modification)
	a.recordMetas(ctx, []shared.AgentMeta{meta})
	if err != nil {
		return nil, fmt.Errorf("failed to revise itinerary: %w", err)
	}

	if err := a.repo.Update(ctx, revised); err != nil {
		return nil, fmt.Errorf("failed to update itinerary: %w", err)
	}
	return revised, nil
}

// Calendar renders a stored itinerary as an iCalendar document.
func (a *App) Calendar(ctx context.Context, id string) (string, error) {
	rec, err := a.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return itinerary.RenderICS(rec.Itinerary, a.now()), nil
}

// Export writes a versioned JSON snapshot plus text and calendar renderings
// of a stored itinerary, removes older versions and returns the written paths.
func (a *App) Export(ctx context.Context, id string) ([]string, error) {
	if a.exports == nil {
		return nil, errors.New("export store is not configured")
	}
	rec, err := a.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := a.now()
	version := storage.Version(rec.UpdatedAt)
	snapshot, err := a.exports.SaveSnapshot(rec.Itinerary, version)
	if err != nil {
		return nil, err
	}
	text, err := a.exports.SaveArtifact(id, version, "txt", []byte(itinerary.RenderText(rec.Itinerary)))
	if err != nil {
		return nil, err
	}
	ics, err := a.exports.SaveArtifact(id, version, "ics", []byte(itinerary.RenderICS(rec.Itinerary, now)))
	if err != nil {
		return nil, err
	}

	if err := a.exports.RemoveStaleVersions(id, version); err != nil {
		a.logger.Warn("Failed to remove stale exports", "id", id, "error", err)
	}
	return []string{snapshot, text, ics}, nil
}

// Publish posts a stored itinerary to Ghost, as a draft unless publish is set.
func (a *App) Publish(ctx context.Context, id string, publish bool) (*ghost.Post, error) {
	if a.ghost == nil {
		return nil, ErrPublishingDisabled
	}
	rec, err := a.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	post, err := a.ghost.PublishItinerary(ctx, rec.Itinerary, publish)
	if err != nil {
		return nil, fmt.Errorf("failed to publish itinerary: %w", err)
	}
	return post, nil
}

// Leg is the route from the itinerary's hotel to one restaurant.
type Leg struct {
	From  string
	To    string
	Route *geo.Route
	Err   error
}

// Routes computes the route from the first hotel with coordinates to every
// restaurant with coordinates. Per-leg failures are reported on the leg.
func (a *App) Routes(ctx context.Context, id, profile string) ([]Leg, error) {
	if a.routes == nil {
		return nil, ErrRoutingDisabled
	}
	rec, err := a.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == "" {
		profile = geo.DefaultRouteProfile
	}

	origin, ok := firstLocated(rec.Itinerary.Hotels)
	if !ok {
		return nil, errors.New("no hotel with coordinates")
	}

	var legs []Leg
	for _, r := range rec.Itinerary.Restaurants {
		if r.Coordinates == nil {
			continue
		}
		route, err := a.routes.Route(ctx, *origin.Coordinates, *r.Coordinates, profile)
		if err != nil {
			a.logger.Warn("Route lookup failed", "from", origin.Name, "to", r.Name, "error", err)
		}
		legs = append(legs, Leg{From: origin.Name, To: r.Name, Route: route, Err: err})
	}
	return legs, nil
}

// Usage returns per-day generation usage for the last days.
func (a *App) Usage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	return a.metrics.GetDailyUsage(ctx, days)
}

// CleanupMetrics removes execution metrics older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	return a.metrics.Cleanup(ctx, days)
}

func (a *App) recordMetas(ctx context.Context, metas []shared.AgentMeta) {
	for _, m := range metas {
		if m.AgentName == "" {
			continue
		}
		if err := a.metrics.RecordMeta(ctx, m); err != nil {
			a.logger.Warn("Failed to record metrics", "agent", m.AgentName, "error", err)
		}
		if a.collectors != nil {
			a.collectors.ObserveMeta(m)
		}
	}
}

func firstLocated(places []geo.PlaceCandidate) (geo.PlaceCandidate, bool) {
	for _, p := range places {
		if p.Coordinates != nil {
			return p, true
		}
	}
	return geo.PlaceCandidate{}, false
}
