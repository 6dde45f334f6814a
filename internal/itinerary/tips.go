package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ai-travel-planner/internal/llm"
	"ai-travel-planner/internal/shared"
)

// GuideSource supplies optional background text about a destination.
type GuideSource interface {
	Excerpt(ctx context.Context, destination, country string) (string, error)
}

// TipGenerator asks the text backend for trip-level travel tips.
type TipGenerator struct {
	textGen llm.TextGenerator
	guide   GuideSource
	logger  *slog.Logger
}

// NewTipGenerator creates a TipGenerator. guide may be nil.
func NewTipGenerator(textGen llm.TextGenerator, guide GuideSource, logger *slog.Logger) *TipGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TipGenerator{textGen: textGen, guide: guide, logger: logger}
}

// Generate returns one tip per non-empty line of the model response.
func (g *TipGenerator) Generate(ctx context.Context, destination, country string) ([]string, shared.AgentMeta, error) {
	data := struct {
		Destination string
		Country     string
		Guide       string
	}{Destination: destination, Country: country}

	if g.guide != nil {
		excerpt, err := g.guide.Excerpt(ctx, destination, country)
		if err != nil {
			g.logger.WarnContext(ctx, "Destination guide unavailable",
				"destination", destination, "error", err)
		}
		data.Guide = excerpt
	}

	prompt, err := execute(tipsTmpl, data)
	if err != nil {
		return nil, shared.AgentMeta{AgentName: "Tips"}, err
	}

	start := time.Now()
	resp, err := g.textGen.GenerateContent(ctx, prompt)
	meta := shared.AgentMeta{
		AgentName: "Tips",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
		Failed:    err != nil,
	}
	if err != nil {
		return nil, meta, fmt.Errorf("failed to generate travel tips: %w", err)
	}

	tips := ParseTips(resp.Content)
	if len(tips) == 0 {
		meta.Failed = true
		return nil, meta, ErrEmptyResponse
	}
	return tips, meta, nil
}

var tipMarkers = []string{"- ", "* ", "• "}

// ParseTips splits a tips response into lines, dropping list markers.
func ParseTips(text string) []string {
	var tips []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range tipMarkers {
			if strings.HasPrefix(line, marker) {
				line = strings.TrimSpace(line[len(marker):])
				break
			}
		}
		if line != "" {
			tips = append(tips, line)
		}
	}
	return tips
}
