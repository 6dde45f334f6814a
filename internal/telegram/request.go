package telegram

import (
	"fmt"
	"strings"

	"ai-travel-planner/internal/itinerary"
)

const pipeFields = 7

// requestUsage is sent back when a message cannot be read as a trip request.
const requestUsage = `Send your trip in one line:
destination | budget | mm/dd/yyyy | days | people | accommodation | activities

or one field per line:
destination: Lisbon
budget: $1500
arrival: 6/1/2025
days: 3
people: 2
accommodation: hotel
activities: food, history`

var fieldAliases = map[string]string{
	"destination":   "destination",
	"city":          "destination",
	"budget":        "budget",
	"arrival":       "arrival_date",
	"arrival_date":  "arrival_date",
	"date":          "arrival_date",
	"duration":      "duration",
	"days":          "duration",
	"people":        "people",
	"travelers":     "people",
	"travellers":    "people",
	"accommodation": "accommodation",
	"stay":          "accommodation",
	"activities":    "activities",
	"interests":     "activities",
}

// ParseTripRequest reads a trip request from a chat message, either as
// pipe-separated fields or as "key: value" lines.
func ParseTripRequest(text string) (itinerary.TripRequest, error) {
	fields := map[string]string{}

	if strings.Contains(text, "|") {
		parts := strings.SplitN(text, "|", pipeFields)
		if len(parts) < pipeFields {
			return itinerary.TripRequest{}, fmt.Errorf("expected %d fields separated by |, got %d", pipeFields, len(parts))
		}
		for i, key := range []string{"destination", "budget", "arrival_date", "duration", "people", "accommodation", "activities"} {
			fields[key] = strings.TrimSpace(parts[i])
		}
	} else {
		for _, line := range strings.Split(text, "\n") {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
			if name, known := fieldAliases[key]; known {
				fields[name] = strings.TrimSpace(value)
			}
		}
	}

	req := itinerary.TripRequest{
		Destination:   fields["destination"],
		Budget:        fields["budget"],
		ArrivalDate:   fields["arrival_date"],
		Duration:      itinerary.ParseDuration(fields["duration"]),
		Travelers:     fields["people"],
		Accommodation: fields["accommodation"],
		Activities:    fields["activities"],
	}
	return req, req.Validate()
}
