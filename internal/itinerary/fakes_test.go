package itinerary

import (
	"context"
	"errors"
	"sync"

	"ai-travel-planner/internal/geo"
	"ai-travel-planner/internal/llm"
	"ai-travel-planner/internal/shared"
)

// scriptedGenerator replays responses in order; once exhausted it repeats the
// last one.
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (g *scriptedGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := len(g.prompts)
	g.prompts = append(g.prompts, prompt)

	if err := ctx.Err(); err != nil {
		return llm.ContentResponse{}, err
	}
	if i < len(g.errs) && g.errs[i] != nil {
		return llm.ContentResponse{}, g.errs[i]
	}
	if len(g.responses) == 0 {
		return llm.ContentResponse{}, nil
	}
	if i >= len(g.responses) {
		i = len(g.responses) - 1
	}
	return llm.ContentResponse{
		Content: g.responses[i],
		Usage:   shared.TokenUsage{Model: "fake", PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	}, nil
}

// blockingGenerator waits for the context to end.
type blockingGenerator struct{}

func (blockingGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	<-ctx.Done()
	return llm.ContentResponse{}, ctx.Err()
}

type fakePlaces struct {
	byCategory map[string][]geo.PlaceCandidate
	panics     bool
}

func (f *fakePlaces) FindPlaces(ctx context.Context, lat, lng float64, radius int, category string) []geo.PlaceCandidate {
	if f.panics {
		panic("lookup exploded")
	}
	return f.byCategory[category]
}

var errBackendDown = errors.New("backend down")

func lisbon() *geo.LocationInfo {
	return &geo.LocationInfo{
		Name:        "Lisbon",
		Country:     "Portugal",
		Coordinates: &geo.Coordinates{Lat: 38.7167, Lng: -9.1333},
		Timezone:    "Europe/Lisbon",
	}
}

func places(category string, names ...string) []geo.PlaceCandidate {
	out := make([]geo.PlaceCandidate, 0, len(names))
	for i, n := range names {
		out = append(out, geo.PlaceCandidate{ID: category + string(rune('a'+i)), Name: n, Category: category})
	}
	return out
}

func defaultPlaces() *fakePlaces {
	return &fakePlaces{byCategory: map[string][]geo.PlaceCandidate{
		geo.CategoryHotel:      places(geo.CategoryHotel, "Hotel Avenida", "Casa Alfama", "Lisboa Plaza", "Extra Hotel"),
		geo.CategoryRestaurant: places(geo.CategoryRestaurant, "Tasca do Chico", "Cervejaria Ramiro", "Time Out Market", "A Cevicheria", "Taberna da Rua", "Sixth Place"),
	}}
}
