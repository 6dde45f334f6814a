package geo

import "fmt"

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lng)
}

// LocationInfo is the resolved destination. Coordinates are nil when the
// lookup could not provide them.
type LocationInfo struct {
	Name        string       `json:"name"`
	Country     string       `json:"country"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Timezone    string       `json:"timezone,omitempty"`
	Population  int64        `json:"population,omitempty"`
}

// HasCoordinates reports whether POI lookups around the location are possible.
func (l LocationInfo) HasCoordinates() bool {
	return l.Coordinates != nil
}

// Place categories used by the itinerary pipeline.
const (
	CategoryHotel      = "hotel"
	CategoryRestaurant = "restaurant"
	CategoryAttraction = "attraction"
)

// UnnamedPlace is used when a point of interest carries no name tag.
const UnnamedPlace = "Unnamed Location"

// PlaceCandidate is a point of interest near the destination.
type PlaceCandidate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    string       `json:"category,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Address     string       `json:"address,omitempty"`
	Website     string       `json:"website,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Placeholder bool         `json:"placeholder,omitempty"`
}

// Route summarizes a routing lookup between two points.
type Route struct {
	DistanceKM  float64       `json:"distance_km"`
	DurationMin float64       `json:"duration_min"`
	Points      []Coordinates `json:"route_points"`
}
