package itinerary

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr error
	}{
		{raw: "$20", want: 20},
		{raw: "$30.5", want: 30.5},
		{raw: "~€1,200 per person", want: 1200},
		{raw: "USD 80", want: 80},
		{raw: "$50 (approx.)", want: 50},
		{raw: "€30,50", want: 30.5},
		{raw: "€45,00 per person", want: 45},
		{raw: "$1,250.75", want: 1250.75},
		{raw: "About $60.", want: 60},
		{raw: "Varies", wantErr: ErrVariableCost},
		{raw: "varies", wantErr: ErrVariableCost},
		{raw: "  ", wantErr: ErrMissingCost},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseCost(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, raw := range []string{"$100-150", "free", "depends on the season", "€1,2345", "$12,34,567", "1.200.50"} {
		_, err := ParseCost(raw)
		assert.Error(t, err, raw)
		assert.False(t, errors.Is(err, ErrVariableCost), raw)
	}
}

func TestTotalCost(t *testing.T) {
	t.Run("VariesExcluded", func(t *testing.T) {
		days := []Day{
			{DayNumber: 1, EstimatedCost: "$20"},
			{DayNumber: 2, EstimatedCost: "Varies"},
			{DayNumber: 3, EstimatedCost: "$30.5"},
		}
		total, issues := TotalCost(days)
		assert.Equal(t, 50.5, total)
		assert.Empty(t, issues)
	})

	t.Run("PlaceholderExcluded", func(t *testing.T) {
		days := []Day{
			{DayNumber: 1, EstimatedCost: "$40"},
			{DayNumber: 2, EstimatedCost: "$150", CostEstimated: true},
		}
		total, issues := TotalCost(days)
		assert.Equal(t, 40.0, total)
		assert.Empty(t, issues)
	})

	t.Run("UnparseableReported", func(t *testing.T) {
		days := []Day{
			{DayNumber: 1, EstimatedCost: "$40"},
			{DayNumber: 2, EstimatedCost: "$100-150"},
			{DayNumber: 3},
		}
		total, issues := TotalCost(days)
		assert.Equal(t, 40.0, total)
		require.Len(t, issues, 1)

		var costErr *CostError
		require.ErrorAs(t, issues[0], &costErr)
		assert.Equal(t, 2, costErr.Day)
		assert.Equal(t, "$100-150", costErr.Raw)
	})
}

func TestPlaceholderCost(t *testing.T) {
	day := Day{Activities: Activities{
		Morning:   []string{"a", "b"},
		Afternoon: []string{"c"},
		Evening:   []string{"d"},
	}}
	assert.Equal(t, "$200", PlaceholderCost(day, "$"))
	assert.Equal(t, "EUR 200", PlaceholderCost(day, "EUR"))

	day.EstimatedCost = "Varies"
	applyCostDefault(&day, "€")
	assert.Equal(t, "€200", day.EstimatedCost)
	assert.True(t, day.CostEstimated)

	day.Activities.Evening = append(day.Activities.Evening, "e")
	applyCostDefault(&day, "€")
	assert.Equal(t, "€250", day.EstimatedCost)

	day.EstimatedCost = "$15"
	day.CostEstimated = false
	applyCostDefault(&day, "€")
	assert.Equal(t, "$15", day.EstimatedCost)
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$12.50", FormatCost(12.5, "$"))
	assert.Equal(t, "$300", FormatCost(300, ""))
	assert.Equal(t, "GBP 7", FormatCost(7, "GBP"))
}
