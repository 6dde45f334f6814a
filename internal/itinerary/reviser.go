package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"ai-travel-planner/internal/geo"
	"ai-travel-planner/internal/llm"
	"ai-travel-planner/internal/shared"
)

// Reviser applies free-text modifications to a stored itinerary.
type Reviser struct {
	textGen llm.TextGenerator
	logger  *slog.Logger
}

// NewReviser creates a Reviser.
func NewReviser(textGen llm.TextGenerator, logger *slog.Logger) *Reviser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reviser{textGen: textGen, logger: logger}
}

// revision is the lenient shape accepted back from the model.
type revision struct {
	Days []struct {
		Activities Activities `json:"activities"`
		Tips       []string   `json:"tips"`
		Cost       costText   `json:"estimated_cost"`
	} `json:"days"`
	TravelTips  []string             `json:"travel_tips"`
	Hotels      []geo.PlaceCandidate `json:"hotels"`
	Restaurants []geo.PlaceCandidate `json:"restaurants"`
}

// costText accepts both "$40" and 40.
type costText string

func (c *costText) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = costText(s)
		return nil
	}
	if string(b) == "null" {
		*c = ""
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid cost %s", b)
	}
	*c = costText(strconv.FormatFloat(v, 'f', -1, 64))
	return nil
}

// Revise returns a revised copy of current. When the model answer is not a
// usable itinerary, the copy keeps the current plan and carries the answer in
// ModificationNotes. Only generation failures are returned as errors.
func (r *Reviser) Revise(ctx context.Context, current *Itinerary, modification string) (*Itinerary, shared.AgentMeta, error) {
	meta := shared.AgentMeta{AgentName: "Reviser"}

	currentJSON, err := json.MarshalIndent(promptCopy(current), "", "  ")
	if err != nil {
		return nil, meta, fmt.Errorf("failed to encode itinerary: %w", err)
	}

	prompt, err := execute(reviserTmpl, struct {
		Destination  string
		Itinerary    string
		Modification string
	}{current.Destination, string(currentJSON), modification})
	if err != nil {
		return nil, meta, err
	}

	start := time.Now()
	resp, err := r.textGen.GenerateContent(ctx, prompt)
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		meta.Failed = true
		return nil, meta, fmt.Errorf("failed to generate revision: %w", err)
	}

	revised := cloneItinerary(current)

	rev, err := decodeRevision(resp.Content)
	if err != nil {
		r.logger.WarnContext(ctx, "Revision is not a usable itinerary, keeping current plan",
			"destination", current.Destination, "error", err)
		revised.ModificationNotes = strings.TrimSpace(resp.Content)
		return revised, meta, nil
	}

	revised.Days = make([]Day, 0, len(rev.Days))
	for i, d := range rev.Days {
		day := Day{
			Activities:    d.Activities,
			Tips:          d.Tips,
			EstimatedCost: strings.TrimSpace(string(d.Cost)),
		}
		// an echoed placeholder stays a placeholder
		if i < len(current.Days) && current.Days[i].CostEstimated && day.EstimatedCost == current.Days[i].EstimatedCost {
			day.CostEstimated = true
		}
		revised.Days = append(revised.Days, day)
	}
	revised.Duration = len(revised.Days)
	if len(rev.TravelTips) > 0 {
		revised.TravelTips = rev.TravelTips
	}
	if len(rev.Hotels) > 0 {
		revised.Hotels = rev.Hotels
	}
	if len(rev.Restaurants) > 0 {
		revised.Restaurants = rev.Restaurants
	}
	revised.ModificationNotes = ""

	for _, issue := range normalizeDays(revised) {
		r.logger.WarnContext(ctx, "Day cost excluded from total", "error", issue)
	}
	return revised, meta, nil
}

// decodeRevision reads the model answer as JSON directly, then from a code
// fence, then from the outermost braces.
func decodeRevision(text string) (*revision, error) {
	candidates := []string{strings.TrimSpace(text)}
	if fenced, ok := fencedBlock(text); ok {
		candidates = append(candidates, fenced)
	}
	if open, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); open >= 0 && end > open {
		candidates = append(candidates, text[open:end+1])
	}

	var lastErr error = ErrNoDays
	for _, c := range candidates {
		var rev revision
		if err := json.Unmarshal([]byte(c), &rev); err != nil {
			lastErr = err
			continue
		}
		if len(rev.Days) == 0 {
			lastErr = ErrNoDays
			continue
		}
		return &rev, nil
	}
	return nil, fmt.Errorf("failed to decode revision: %w", lastErr)
}

func fencedBlock(text string) (string, bool) {
	_, rest, ok := strings.Cut(text, "```")
	if !ok {
		return "", false
	}
	// drop an info string such as "json"
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	body, _, ok := strings.Cut(rest, "```")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(body), true
}

// promptCopy is the itinerary as shown to the model: placeholder costs go back
// to "Varies" so they are not returned as real estimates.
func promptCopy(it *Itinerary) *Itinerary {
	c := cloneItinerary(it)
	for i := range c.Days {
		if c.Days[i].CostEstimated {
			c.Days[i].EstimatedCost = CostVaries
			c.Days[i].CostEstimated = false
		}
	}
	return c
}

func cloneItinerary(it *Itinerary) *Itinerary {
	c := *it
	c.Hotels = append([]geo.PlaceCandidate(nil), it.Hotels...)
	c.Restaurants = append([]geo.PlaceCandidate(nil), it.Restaurants...)
	c.TravelTips = cloneStrings(it.TravelTips)
	c.Days = make([]Day, len(it.Days))
	for i, d := range it.Days {
		d.Activities = Activities{
			Morning:   cloneStrings(d.Activities.Morning),
			Afternoon: cloneStrings(d.Activities.Afternoon),
			Evening:   cloneStrings(d.Activities.Evening),
		}
		d.Tips = cloneStrings(d.Tips)
		c.Days[i] = d
	}
	return &c
}
