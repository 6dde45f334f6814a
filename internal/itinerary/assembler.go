package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"ai-travel-planner/internal/geo"
	"ai-travel-planner/internal/llm"
	"ai-travel-planner/internal/shared"
)

var (
	// ErrEmptyResponse is returned when the text backend produced no text.
	ErrEmptyResponse = errors.New("empty response from text backend")
	// ErrNoDays is returned when a response yields no day at all.
	ErrNoDays = errors.New("no days found in response")
	// ErrMissingCoordinates is returned when the destination has no coordinates.
	ErrMissingCoordinates = errors.New("location has no coordinates")
	// ErrInvalidDuration is returned for trips shorter than one day.
	ErrInvalidDuration = errors.New("duration must be at least one day")
)

const (
	maxHotels      = 3
	maxRestaurants = 5
)

// PlaceFinder looks up points of interest. Implementations return an empty
// slice on failure.
type PlaceFinder interface {
	FindPlaces(ctx context.Context, lat, lng float64, radius int, category string) []geo.PlaceCandidate
}

// Result is the outcome of one assembly. Itinerary is always set; when
// Fallback is true, Reason holds the failure that caused it.
type Result struct {
	Itinerary  *Itinerary
	Fallback   bool
	Reason     error
	Metas      []shared.AgentMeta
	CostIssues []error
}

// Assembler builds itineraries from generated text and fetched places.
type Assembler struct {
	places  PlaceFinder
	textGen llm.TextGenerator
	tips    *TipGenerator
	parser  *ResponseParser
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock overrides the clock used for defaulted arrival dates.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithTimeout bounds the lookups and generation calls of one assembly.
func WithTimeout(d time.Duration) Option {
	return func(a *Assembler) { a.timeout = d }
}

// WithGuide adds a destination guide to the tips prompt.
func WithGuide(guide GuideSource) Option {
	return func(a *Assembler) { a.tips.guide = guide }
}

// NewAssembler creates an Assembler.
func NewAssembler(places PlaceFinder, textGen llm.TextGenerator, logger *slog.Logger, opts ...Option) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Assembler{
		places:  places,
		textGen: textGen,
		tips:    NewTipGenerator(textGen, nil, logger),
		parser:  NewResponseParser(logger),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build assembles the itinerary for req at loc. It never fails: any problem
// in the generation pipeline, including a panic, yields the fallback
// itinerary instead.
func (a *Assembler) Build(ctx context.Context, req TripRequest, loc *geo.LocationInfo) (res Result) {
	logger := a.logger.With("destination", req.Destination)

	start, ok := req.ParseArrivalDate(a.now())
	if !ok {
		logger.WarnContext(ctx, "Invalid arrival date, using today",
			"arrival_date", req.ArrivalDate)
	}

	var hotels, restaurants []geo.PlaceCandidate
	defer func() {
		if r := recover(); r != nil {
			res = a.fallback(ctx, logger, req, start, loc, hotels, restaurants, fmt.Errorf("panic during assembly: %v", r))
		}
	}()

	if req.Duration < 1 {
		return a.fallback(ctx, logger, req, start, loc, nil, nil, ErrInvalidDuration)
	}
	if loc == nil || !loc.HasCoordinates() {
		return a.fallback(ctx, logger, req, start, loc, nil, nil, ErrMissingCoordinates)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	c := loc.Coordinates
	hotels = lo.Slice(a.places.FindPlaces(ctx, c.Lat, c.Lng, geo.DefaultSearchRadius, geo.CategoryHotel), 0, maxHotels)
	restaurants = lo.Slice(a.places.FindPlaces(ctx, c.Lat, c.Lng, geo.DefaultSearchRadius, geo.CategoryRestaurant), 0, maxRestaurants)

	it, metas, issues, err := a.generate(ctx, logger, req, start, loc, hotels, restaurants)
	if err != nil {
		res = a.fallback(ctx, logger, req, start, loc, hotels, restaurants, err)
		res.Metas = metas
		return res
	}

	logger.InfoContext(ctx, "Itinerary assembled",
		"days", len(it.Days), "total_cost", it.TotalEstimatedCost)
	return Result{Itinerary: it, Metas: metas, CostIssues: issues}
}

func (a *Assembler) generate(
	ctx context.Context,
	logger *slog.Logger,
	req TripRequest,
	start time.Time,
	loc *geo.LocationInfo,
	hotels, restaurants []geo.PlaceCandidate,
) (*Itinerary, []shared.AgentMeta, []error, error) {
	prompt, err := buildItineraryPrompt(req, start, loc, hotels, restaurants)
	if err != nil {
		return nil, nil, nil, err
	}

	began := time.Now()
	resp, err := a.textGen.GenerateContent(ctx, prompt)
	metas := []shared.AgentMeta{{
		AgentName: "Itinerary",
		Usage:     resp.Usage,
		Latency:   time.Since(began),
		Failed:    err != nil,
	}}
	if err != nil {
		return nil, metas, nil, fmt.Errorf("failed to generate itinerary: %w", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		metas[0].Failed = true
		return nil, metas, nil, ErrEmptyResponse
	}

	days := a.parser.Parse(resp.Content, start, req.Duration)
	if len(days) == 0 {
		return nil, metas, nil, ErrNoDays
	}
	if len(days) < req.Duration {
		logger.WarnContext(ctx, "Response shorter than trip, padding with generic days",
			"parsed", len(days), "duration", req.Duration)
		days = append(days, fallbackDays(start, len(days)+1, req.Duration)...)
	}

	it := newItinerary(req, start, loc, hotels, restaurants)
	it.Days = days
	issues := normalizeDays(it)
	for _, issue := range issues {
		logger.WarnContext(ctx, "Day cost excluded from total", "error", issue)
	}

	tips, meta, err := a.tips.Generate(ctx, it.Destination, it.Country)
	metas = append(metas, meta)
	if err != nil {
		return nil, metas, issues, err
	}
	it.TravelTips = tips

	return it, metas, issues, nil
}

func (a *Assembler) fallback(
	ctx context.Context,
	logger *slog.Logger,
	req TripRequest,
	start time.Time,
	loc *geo.LocationInfo,
	hotels, restaurants []geo.PlaceCandidate,
	reason error,
) Result {
	logger.WarnContext(ctx, "Using fallback itinerary", "reason", reason)
	return Result{
		Itinerary: BuildFallback(req, start, loc, hotels, restaurants),
		Fallback:  true,
		Reason:    reason,
	}
}

// normalizeDays renumbers and dates the days from the arrival date, sums the
// numeric costs, then fills empty slots and absent costs. The total is taken
// before defaults so placeholder costs never count.
func normalizeDays(it *Itinerary) []error {
	for i := range it.Days {
		it.Days[i].DayNumber = i + 1
		it.Days[i].Date = it.ArrivalDate.AddDate(0, 0, i)
	}

	total, issues := TotalCost(it.Days)
	it.TotalEstimatedCost = total

	filler := fmt.Sprintf("Free time to explore %s", it.Destination)
	currency := it.Currency()
	for i := range it.Days {
		day := &it.Days[i]
		day.Activities.Morning = backfill(day.Activities.Morning, filler)
		day.Activities.Afternoon = backfill(day.Activities.Afternoon, filler)
		day.Activities.Evening = backfill(day.Activities.Evening, filler)
		applyCostDefault(day, currency)
	}
	return issues
}

func backfill(slot []string, filler string) []string {
	if len(slot) == 0 {
		return []string{filler}
	}
	return slot
}
