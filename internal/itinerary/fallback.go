package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"ai-travel-planner/internal/geo"
)

var fallbackActivities = Activities{
	Morning:   []string{"Explore local attractions"},
	Afternoon: []string{"Enjoy local cuisine"},
	Evening:   []string{"Relax and experience local culture"},
}

// BuildFallback produces the generation-independent itinerary: duration days
// of generic activities with a "Varies" cost, plus tips naming the candidates.
// Empty candidate lists are replaced by a single placeholder each. It makes no
// external calls and cannot fail.
func BuildFallback(req TripRequest, start time.Time, loc *geo.LocationInfo, hotels, restaurants []geo.PlaceCandidate) *Itinerary {
	if len(hotels) == 0 {
		hotels = []geo.PlaceCandidate{placeholderCandidate(geo.CategoryHotel, req.Destination)}
	}
	if len(restaurants) == 0 {
		restaurants = []geo.PlaceCandidate{placeholderCandidate(geo.CategoryRestaurant, req.Destination)}
	}

	it := newItinerary(req, start, loc, hotels, restaurants)
	it.Days = fallbackDays(start, 1, req.Duration)
	it.TravelTips = fallbackTips(req.Destination, hotels, restaurants)
	return it
}

func newItinerary(req TripRequest, start time.Time, loc *geo.LocationInfo, hotels, restaurants []geo.PlaceCandidate) *Itinerary {
	it := &Itinerary{
		Destination:   req.Destination,
		Budget:        req.Budget,
		ArrivalDate:   start,
		Duration:      max(req.Duration, 0),
		Travelers:     req.Travelers,
		Accommodation: req.Accommodation,
		Hotels:        hotels,
		Restaurants:   restaurants,
	}
	if loc != nil {
		it.Country = loc.Country
	}
	return it
}

// fallbackDays returns generic days numbered from..to inclusive.
func fallbackDays(start time.Time, from, to int) []Day {
	days := []Day{}
	for n := from; n <= to; n++ {
		days = append(days, Day{
			DayNumber: n,
			Date:      start.AddDate(0, 0, n-1),
			Activities: Activities{
				Morning:   cloneStrings(fallbackActivities.Morning),
				Afternoon: cloneStrings(fallbackActivities.Afternoon),
				Evening:   cloneStrings(fallbackActivities.Evening),
			},
			EstimatedCost: CostVaries,
		})
	}
	return days
}

func fallbackTips(destination string, hotels, restaurants []geo.PlaceCandidate) []string {
	name := func(p geo.PlaceCandidate, _ int) string { return p.Name }
	return []string{
		fmt.Sprintf("A detailed itinerary for %s could not be generated, so this plan uses general suggestions.", destination),
		"Suggested accommodation: " + strings.Join(lo.Map(hotels, name), ", "),
		"Suggested restaurants: " + strings.Join(lo.Map(restaurants, name), ", "),
		"Check local tourism websites for current opening hours and prices.",
	}
}

func placeholderCandidate(category, destination string) geo.PlaceCandidate {
	label := "Local accommodation"
	if category == geo.CategoryRestaurant {
		label = "Local restaurant"
	}
	return geo.PlaceCandidate{
		ID:          "placeholder-" + category,
		Name:        fmt.Sprintf("%s in %s", label, destination),
		Category:    category,
		Placeholder: true,
	}
}

func cloneStrings(s []string) []string {
	return append([]string(nil), s...)
}
