package itinerary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() TripRequest {
	return TripRequest{
		Destination:   "Lisbon",
		Budget:        "$1500",
		ArrivalDate:   "6/1/2025",
		Duration:      3,
		Travelers:     "2",
		Accommodation: "hotel",
		Activities:    "food, history, fado",
	}
}

func TestTripRequest_Validate(t *testing.T) {
	require.NoError(t, validRequest().Validate())

	tests := []struct {
		field  string
		mutate func(*TripRequest)
	}{
		{"destination", func(r *TripRequest) { r.Destination = " " }},
		{"budget", func(r *TripRequest) { r.Budget = "" }},
		{"arrival_date", func(r *TripRequest) { r.ArrivalDate = "" }},
		{"duration", func(r *TripRequest) { r.Duration = 0 }},
		{"people", func(r *TripRequest) { r.Travelers = "" }},
		{"accommodation", func(r *TripRequest) { r.Accommodation = "" }},
		{"activities", func(r *TripRequest) { r.Activities = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			assert.EqualError(t, req.Validate(), "missing required field: "+tt.field)
		})
	}
}

func TestTripRequest_ParseArrivalDate(t *testing.T) {
	now := time.Date(2025, 2, 14, 17, 45, 0, 0, time.UTC)

	req := validRequest()
	got, ok := req.ParseArrivalDate(now)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)

	for _, raw := range []string{"13/45/2025", "2025-06-01", ""} {
		req.ArrivalDate = raw
		got, ok = req.ParseArrivalDate(now)
		assert.False(t, ok, raw)
		assert.Equal(t, time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), got, raw)
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5, ParseDuration("5"))
	assert.Equal(t, 5, ParseDuration(" 5 days"))
	assert.Equal(t, 0, ParseDuration("five"))
	assert.Equal(t, 0, ParseDuration("-2"))
	assert.Equal(t, 0, ParseDuration(""))
}

func TestTripRequest_Currency(t *testing.T) {
	tests := map[string]string{
		"$1500":         "$",
		"€ 2000":        "€",
		"EUR 2000":      "EUR",
		"R$5000":        "R$",
		"£1,000.50":     "£",
		"2000":          "$",
		"about 2000":    "$",
		"":              "$",
		"usd 100":       "$",
		"JPY 100000 ok": "JPY",
	}
	for budget, want := range tests {
		assert.Equal(t, want, TripRequest{Budget: budget}.Currency(), budget)
	}
}

func TestTripRequest_ActivityList(t *testing.T) {
	assert.Equal(t, []string{"food", "history", "fado"}, validRequest().ActivityList())
	assert.Empty(t, TripRequest{Activities: " , "}.ActivityList())
}
