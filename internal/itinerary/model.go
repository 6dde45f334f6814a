package itinerary

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"ai-travel-planner/internal/geo"
)

// ArrivalDateLayout is the month/day/year format accepted for arrival dates.
const ArrivalDateLayout = "1/2/2006"

// CostVaries marks a day whose cost could not be estimated.
const CostVaries = "Varies"

// TripRequest is the traveler's input.
type TripRequest struct {
	Destination   string `json:"destination"`
	Budget        string `json:"budget"`
	ArrivalDate   string `json:"arrival_date"`
	Duration      int    `json:"duration"`
	Travelers     string `json:"people"`
	Accommodation string `json:"accommodation"`
	Activities    string `json:"activities"`
}

// Validate reports the first missing required field.
func (r TripRequest) Validate() error {
	fields := []struct {
		name    string
		missing bool
	}{
		{"destination", strings.TrimSpace(r.Destination) == ""},
		{"budget", strings.TrimSpace(r.Budget) == ""},
		{"arrival_date", strings.TrimSpace(r.ArrivalDate) == ""},
		{"duration", r.Duration < 1},
		{"people", strings.TrimSpace(r.Travelers) == ""},
		{"accommodation", strings.TrimSpace(r.Accommodation) == ""},
		{"activities", strings.TrimSpace(r.Activities) == ""},
	}
	for _, f := range fields {
		if f.missing {
			return fmt.Errorf("missing required field: %s", f.name)
		}
	}
	return nil
}

// ParseArrivalDate parses the arrival date, falling back to the calendar day of
// now. The boolean reports whether the request's own date was usable.
func (r TripRequest) ParseArrivalDate(now time.Time) (time.Time, bool) {
	d, err := time.ParseInLocation(ArrivalDateLayout, strings.TrimSpace(r.ArrivalDate), now.Location())
	if err != nil {
		return truncateDay(now), false
	}
	return d, true
}

// Currency returns the currency marker of the budget, "$" when none is given.
func (r TripRequest) Currency() string {
	return currencyOf(r.Budget)
}

// ActivityList splits the comma-separated activity preferences.
func (r TripRequest) ActivityList() []string {
	var out []string
	for _, a := range strings.Split(r.Activities, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// ParseDuration converts user text such as "5" or "5 days" into a day count.
// Unusable text yields 0.
func ParseDuration(text string) int {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func currencyOf(budget string) string {
	fields := strings.Fields(budget)
	if len(fields) == 0 {
		return "$"
	}
	token := fields[0]

	if len(token) == 3 && strings.IndexFunc(token, func(r rune) bool { return !unicode.IsUpper(r) }) == -1 {
		return token
	}

	symbol := strings.TrimRightFunc(token, func(r rune) bool {
		return unicode.IsDigit(r) || r == '.' || r == ','
	})
	if symbol != "" && strings.IndexFunc(symbol, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) == -1 {
		return symbol
	}
	if symbol != "" && unicode.Is(unicode.Sc, []rune(symbol)[len([]rune(symbol))-1]) {
		// prefixed symbols such as R$ or US$
		return symbol
	}
	return "$"
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Activities holds the ordered activities of each time slot.
type Activities struct {
	Morning   []string `json:"morning"`
	Afternoon []string `json:"afternoon"`
	Evening   []string `json:"evening"`
}

// Count returns the number of activities over all slots.
func (a Activities) Count() int {
	return len(a.Morning) + len(a.Afternoon) + len(a.Evening)
}

// Day is one day of the itinerary.
type Day struct {
	DayNumber     int        `json:"day_number"`
	Date          time.Time  `json:"date"`
	Activities    Activities `json:"activities"`
	Tips          []string   `json:"tips,omitempty"`
	EstimatedCost string     `json:"estimated_cost"`
	// CostEstimated marks a placeholder cost, which never counts toward the
	// trip total.
	CostEstimated bool `json:"cost_estimated,omitempty"`
}

// Itinerary is the assembled trip plan.
type Itinerary struct {
	ID                 string               `json:"id,omitempty"`
	Destination        string               `json:"destination"`
	Country            string               `json:"country"`
	Budget             string               `json:"budget"`
	ArrivalDate        time.Time            `json:"arrival_date"`
	Duration           int                  `json:"duration"`
	Travelers          string               `json:"people"`
	Accommodation      string               `json:"accommodation"`
	Hotels             []geo.PlaceCandidate `json:"hotels"`
	Restaurants        []geo.PlaceCandidate `json:"restaurants"`
	Days               []Day                `json:"days"`
	TravelTips         []string             `json:"travel_tips"`
	TotalEstimatedCost float64              `json:"total_estimated_cost"`
	ModificationNotes  string               `json:"modification_notes,omitempty"`
}

// Currency returns the currency marker of the itinerary budget.
func (it *Itinerary) Currency() string {
	return currencyOf(it.Budget)
}
