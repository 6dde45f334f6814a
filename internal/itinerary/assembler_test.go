package itinerary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-travel-planner/internal/geo"
)

var fixedNow = time.Date(2025, 2, 14, 9, 30, 0, 0, time.UTC)

const tipsResponse = "1. Transport: buy a Viva Viagem card\n\n- Safety: watch for pickpockets on tram 28\nCustoms: greet with two kisses\n"

func newTestAssembler(gen *scriptedGenerator, finder PlaceFinder, opts ...Option) *Assembler {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewAssembler(finder, gen, nil, opts...)
}

func fullResponse(days int) string {
	var b strings.Builder
	b.WriteString("Sure! Here is your itinerary.\n\n")
	for i := 1; i <= days; i++ {
		b.WriteString(dayText(i, fmt.Sprintf("Sight %d", i)))
	}
	return b.String()
}

func assertCompleteDays(t *testing.T, it *Itinerary, duration int, start time.Time) {
	t.Helper()
	require.Len(t, it.Days, duration)
	for i, d := range it.Days {
		assert.Equal(t, i+1, d.DayNumber)
		assert.True(t, start.AddDate(0, 0, i).Equal(d.Date), "day %d date", i+1)
		assert.NotEmpty(t, d.Activities.Morning, "day %d morning", i+1)
		assert.NotEmpty(t, d.Activities.Afternoon, "day %d afternoon", i+1)
		assert.NotEmpty(t, d.Activities.Evening, "day %d evening", i+1)
	}
}

func TestAssembler_Build(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{fullResponse(3), tipsResponse}}
		a := newTestAssembler(gen, defaultPlaces())

		res := a.Build(ctx, validRequest(), lisbon())

		require.False(t, res.Fallback, "reason: %v", res.Reason)
		assert.NoError(t, res.Reason)
		it := res.Itinerary
		assertCompleteDays(t, it, 3, start)
		assert.Equal(t, []string{"Sight 2"}, it.Days[1].Activities.Morning)
		assert.Equal(t, "$30", it.Days[2].EstimatedCost)
		assert.Equal(t, 60.0, it.TotalEstimatedCost)
		assert.Len(t, it.Hotels, 3)
		assert.Len(t, it.Restaurants, 5)
		assert.Equal(t, []string{
			"1. Transport: buy a Viva Viagem card",
			"Safety: watch for pickpockets on tram 28",
			"Customs: greet with two kisses",
		}, it.TravelTips)
		require.Len(t, res.Metas, 2)
		assert.Equal(t, "Itinerary", res.Metas[0].AgentName)
		assert.Equal(t, "Tips", res.Metas[1].AgentName)

		prompt := gen.prompts[0]
		assert.Contains(t, prompt, `["Hotel Avenida","Casa Alfama","Lisboa Plaza"]`)
		assert.Contains(t, prompt, "Taberna da Rua")
		assert.NotContains(t, prompt, "Sixth Place")
		assert.Contains(t, prompt, "3-day travel itinerary for Lisbon, Portugal")
	})

	t.Run("DurationProperty", func(t *testing.T) {
		for _, duration := range []int{1, 2, 5, 9} {
			for _, blocks := range []int{1, duration, duration + 2} {
				gen := &scriptedGenerator{responses: []string{fullResponse(blocks), tipsResponse}}
				req := validRequest()
				req.Duration = duration

				res := newTestAssembler(gen, defaultPlaces()).Build(ctx, req, lisbon())
				assertCompleteDays(t, res.Itinerary, duration, start)
			}
		}
	})

	t.Run("MissingSectionBackfilled", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{"MORNING: A", tipsResponse}}
		req := validRequest()
		req.Duration = 1

		res := newTestAssembler(gen, defaultPlaces()).Build(ctx, req, lisbon())

		require.False(t, res.Fallback)
		day := res.Itinerary.Days[0]
		assert.Equal(t, []string{"A"}, day.Activities.Morning)
		assert.Equal(t, []string{"Free time to explore Lisbon"}, day.Activities.Afternoon)
		assert.Equal(t, []string{"Free time to explore Lisbon"}, day.Activities.Evening)
		assert.Equal(t, "$150", day.EstimatedCost)
		assert.Zero(t, res.Itinerary.TotalEstimatedCost)
	})

	t.Run("ShortResponsePadded", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{fullResponse(1), tipsResponse}}

		res := newTestAssembler(gen, defaultPlaces()).Build(ctx, validRequest(), lisbon())

		require.False(t, res.Fallback)
		it := res.Itinerary
		assertCompleteDays(t, it, 3, start)
		assert.Equal(t, []string{"Explore local attractions"}, it.Days[2].Activities.Morning)
		assert.Equal(t, "$150", it.Days[2].EstimatedCost)
		assert.Equal(t, 10.0, it.TotalEstimatedCost)
	})

	t.Run("CostIssuesReported", func(t *testing.T) {
		text := "DAY 1:\nMORNING:\n- A\nESTIMATED DAILY COST: $40\nDAY 2:\nMORNING:\n- B\nESTIMATED DAILY COST: $100-150"
		gen := &scriptedGenerator{responses: []string{text, tipsResponse}}
		req := validRequest()
		req.Duration = 2

		res := newTestAssembler(gen, defaultPlaces()).Build(ctx, req, lisbon())

		require.False(t, res.Fallback)
		assert.Equal(t, 40.0, res.Itinerary.TotalEstimatedCost)
		require.Len(t, res.CostIssues, 1)
		assert.Equal(t, "$100-150", res.Itinerary.Days[1].EstimatedCost)
	})

	t.Run("EmptyResponseFallsBack", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{"   "}}

		res := newTestAssembler(gen, defaultPlaces()).Build(ctx, validRequest(), lisbon())

		require.True(t, res.Fallback)
		assert.ErrorIs(t, res.Reason, ErrEmptyResponse)
		it := res.Itinerary
		assertCompleteDays(t, it, 3, start)
		for _, d := range it.Days {
			assert.Equal(t, CostVaries, d.EstimatedCost)
		}
		tips := strings.Join(it.TravelTips, "\n")
		for _, p := range append(it.Hotels, it.Restaurants...) {
			assert.Contains(t, tips, p.Name)
		}
		assert.Len(t, it.Hotels, 3)
		require.Len(t, res.Metas, 1)
		assert.True(t, res.Metas[0].Failed)
	})

	t.Run("GenerationErrorFallsBack", func(t *testing.T) {
		gen := &scriptedGenerator{errs: []error{errBackendDown}}

		res := newTestAssembler(gen, defaultPlaces()).Build(ctx, validRequest(), lisbon())

		require.True(t, res.Fallback)
		assert.ErrorIs(t, res.Reason, errBackendDown)
		assertCompleteDays(t, res.Itinerary, 3, start)
	})

	t.Run("TipsFailureFallsBack", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{fullResponse(3)}, errs: []error{nil, errBackendDown}}

		res := newTestAssembler(gen, defaultPlaces()).Build(ctx, validRequest(), lisbon())

		require.True(t, res.Fallback)
		assert.ErrorIs(t, res.Reason, errBackendDown)
		assert.Len(t, res.Metas, 2)
	})

	t.Run("MissingCoordinatesSkipsGeneration", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{fullResponse(3)}}
		loc := lisbon()
		loc.Coordinates = nil

		res := newTestAssembler(gen, defaultPlaces()).Build(ctx, validRequest(), loc)

		require.True(t, res.Fallback)
		assert.ErrorIs(t, res.Reason, ErrMissingCoordinates)
		assert.Empty(t, gen.prompts)
		assert.True(t, res.Itinerary.Hotels[0].Placeholder)
		assertCompleteDays(t, res.Itinerary, 3, start)
	})

	t.Run("NilLocation", func(t *testing.T) {
		gen := &scriptedGenerator{}
		res := newTestAssembler(gen, defaultPlaces()).Build(ctx, validRequest(), nil)
		require.True(t, res.Fallback)
		assert.ErrorIs(t, res.Reason, ErrMissingCoordinates)
	})

	t.Run("NoPlacesUsesPlaceholders", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{""}}
		res := newTestAssembler(gen, &fakePlaces{}).Build(ctx, validRequest(), lisbon())

		require.True(t, res.Fallback)
		tips := strings.Join(res.Itinerary.TravelTips, "\n")
		assert.Contains(t, tips, "Local accommodation in Lisbon")
		assert.Contains(t, tips, "Local restaurant in Lisbon")
	})

	t.Run("InvalidDateDefaultsToToday", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{fullResponse(3), tipsResponse}}
		req := validRequest()
		req.ArrivalDate = "13/45/2025"

		res := newTestAssembler(gen, defaultPlaces()).Build(ctx, req, lisbon())

		today := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, today, res.Itinerary.ArrivalDate)
		assertCompleteDays(t, res.Itinerary, 3, today)
	})

	t.Run("InvalidDuration", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{fullResponse(3)}}
		req := validRequest()
		req.Duration = 0

		res := newTestAssembler(gen, defaultPlaces()).Build(ctx, req, lisbon())

		require.True(t, res.Fallback)
		assert.ErrorIs(t, res.Reason, ErrInvalidDuration)
		assert.Empty(t, res.Itinerary.Days)
	})

	t.Run("TimeoutFallsBack", func(t *testing.T) {
		a := NewAssembler(defaultPlaces(), blockingGenerator{}, nil, WithTimeout(20*time.Millisecond))

		res := a.Build(ctx, validRequest(), lisbon())

		require.True(t, res.Fallback)
		assert.ErrorIs(t, res.Reason, context.DeadlineExceeded)
		assert.Len(t, res.Itinerary.Days, 3)
	})

	t.Run("PanicFallsBack", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{fullResponse(3)}}

		var res Result
		assert.NotPanics(t, func() {
			res = newTestAssembler(gen, &fakePlaces{panics: true}).Build(ctx, validRequest(), lisbon())
		})

		require.True(t, res.Fallback)
		require.NotNil(t, res.Itinerary)
		assert.Len(t, res.Itinerary.Days, 3)
	})

	t.Run("GuideExcerptInTipsPrompt", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{fullResponse(3), tipsResponse}}
		guide := guideFunc(func(ctx context.Context, destination, country string) (string, error) {
			return "Lisbon is built on seven hills.", nil
		})

		res := newTestAssembler(gen, defaultPlaces(), WithGuide(guide)).Build(ctx, validRequest(), lisbon())

		require.False(t, res.Fallback)
		require.Len(t, gen.prompts, 2)
		assert.Contains(t, gen.prompts[1], "seven hills")
	})
}

type guideFunc func(ctx context.Context, destination, country string) (string, error)

func (f guideFunc) Excerpt(ctx context.Context, destination, country string) (string, error) {
	return f(ctx, destination, country)
}

func TestAssembler_BuildIsIndependentPerCall(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{fullResponse(2), tipsResponse, fullResponse(2), tipsResponse}}
	a := newTestAssembler(gen, defaultPlaces())
	req := validRequest()
	req.Duration = 2

	first := a.Build(context.Background(), req, lisbon())
	second := a.Build(context.Background(), req, lisbon())

	first.Itinerary.Days[0].Activities.Morning[0] = "changed"
	assert.Equal(t, "Sight 1", second.Itinerary.Days[0].Activities.Morning[0])
	assert.Equal(t, geo.CategoryHotel, second.Itinerary.Hotels[0].Category)
}

func TestAssembler_FallbackLogLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	gen := &scriptedGenerator{errs: []error{errBackendDown}}

	res := NewAssembler(defaultPlaces(), gen, logger, WithClock(func() time.Time { return fixedNow })).
		Build(context.Background(), validRequest(), lisbon())
	require.True(t, res.Fallback)

	var found bool
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var line map[string]any
		require.NoError(t, json.Unmarshal(raw, &line))
		if line["msg"] != "Using fallback itinerary" {
			continue
		}
		found = true
		assert.Equal(t, "WARN", line["level"])
		assert.Equal(t, "Lisbon", line["destination"])
		assert.Contains(t, line["reason"], errBackendDown.Error())
	}
	assert.True(t, found, buf.String())
}
