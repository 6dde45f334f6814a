package itinerary

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"github.com/samber/lo"

	"ai-travel-planner/internal/geo"
)

//go:embed itinerary_prompt.md
var itineraryPrompt string

//go:embed tips_prompt.md
var tipsPrompt string

//go:embed reviser_prompt.md
var reviserPrompt string

var (
	itineraryTmpl = template.Must(template.New("itinerary").Parse(itineraryPrompt))
	tipsTmpl      = template.Must(template.New("tips").Parse(tipsPrompt))
	reviserTmpl   = template.Must(template.New("reviser").Parse(reviserPrompt))
)

type itineraryPromptData struct {
	Destination   string
	Country       string
	Budget        string
	Currency      string
	Travelers     string
	Activities    string
	Accommodation string
	ArrivalDate   string
	Duration      int
	Hotels        string
	Restaurants   string
}

func buildItineraryPrompt(req TripRequest, start time.Time, loc *geo.LocationInfo, hotels, restaurants []geo.PlaceCandidate) (string, error) {
	hotelNames, err := namesJSON(hotels)
	if err != nil {
		return "", err
	}
	restaurantNames, err := namesJSON(restaurants)
	if err != nil {
		return "", err
	}

	data := itineraryPromptData{
		Destination:   req.Destination,
		Budget:        req.Budget,
		Currency:      req.Currency(),
		Travelers:     req.Travelers,
		Activities:    req.Activities,
		Accommodation: req.Accommodation,
		ArrivalDate:   start.Format(DisplayDateLayout),
		Duration:      req.Duration,
		Hotels:        hotelNames,
		Restaurants:   restaurantNames,
	}
	if loc != nil {
		data.Country = loc.Country
	}
	return execute(itineraryTmpl, data)
}

func namesJSON(places []geo.PlaceCandidate) (string, error) {
	b, err := json.Marshal(lo.Map(places, func(p geo.PlaceCandidate, _ int) string { return p.Name }))
	if err != nil {
		return "", fmt.Errorf("failed to encode place names: %w", err)
	}
	return string(b), nil
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
