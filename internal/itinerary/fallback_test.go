package itinerary

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-travel-planner/internal/geo"
)

func TestBuildFallback(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("WithCandidates", func(t *testing.T) {
		hotels := places(geo.CategoryHotel, "Hotel Avenida", "Casa Alfama")
		restaurants := places(geo.CategoryRestaurant, "Tasca do Chico")

		it := BuildFallback(validRequest(), start, lisbon(), hotels, restaurants)

		assert.Equal(t, "Lisbon", it.Destination)
		assert.Equal(t, "Portugal", it.Country)
		require.Len(t, it.Days, 3)
		for i, d := range it.Days {
			assert.Equal(t, i+1, d.DayNumber)
			assert.Equal(t, start.AddDate(0, 0, i), d.Date)
			assert.Equal(t, CostVaries, d.EstimatedCost)
			assert.Equal(t, []string{"Explore local attractions"}, d.Activities.Morning)
			assert.Equal(t, []string{"Enjoy local cuisine"}, d.Activities.Afternoon)
			assert.Equal(t, []string{"Relax and experience local culture"}, d.Activities.Evening)
		}
		assert.Zero(t, it.TotalEstimatedCost)

		tips := strings.Join(it.TravelTips, "\n")
		assert.Contains(t, tips, "could not be generated")
		for _, name := range []string{"Hotel Avenida", "Casa Alfama", "Tasca do Chico"} {
			assert.Contains(t, tips, name)
		}
	})

	t.Run("PlaceholderCandidates", func(t *testing.T) {
		it := BuildFallback(validRequest(), start, nil, nil, nil)

		require.Len(t, it.Hotels, 1)
		require.Len(t, it.Restaurants, 1)
		assert.True(t, it.Hotels[0].Placeholder)
		assert.Equal(t, "Local accommodation in Lisbon", it.Hotels[0].Name)
		assert.Equal(t, "Local restaurant in Lisbon", it.Restaurants[0].Name)
		assert.Empty(t, it.Country)
		assert.Contains(t, strings.Join(it.TravelTips, "\n"), "Local restaurant in Lisbon")
	})

	t.Run("InvalidDurationYieldsNoDays", func(t *testing.T) {
		req := validRequest()
		req.Duration = ParseDuration("three")
		it := BuildFallback(req, start, lisbon(), nil, nil)
		assert.Empty(t, it.Days)
		assert.Zero(t, it.Duration)
	})

	t.Run("DaysDoNotShareSlices", func(t *testing.T) {
		it := BuildFallback(validRequest(), start, lisbon(), nil, nil)
		it.Days[0].Activities.Morning[0] = "changed"
		assert.Equal(t, "Explore local attractions", it.Days[1].Activities.Morning[0])
		assert.Equal(t, "Explore local attractions", fallbackActivities.Morning[0])
	})
}
