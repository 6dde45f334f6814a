package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultRouteProfile is the OpenRouteService profile used when none is given.
const DefaultRouteProfile = "driving-car"

// routePointStride thins the returned geometry to every n-th point.
const routePointStride = 10

// RouteClient queries OpenRouteService directions.
type RouteClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRouteClient creates an OpenRouteService client.
func NewRouteClient(baseURL, apiKey string) *RouteClient {
	return &RouteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type directionsResponse struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Route returns the route summary between start and end.
func (c *RouteClient) Route(ctx context.Context, start, end Coordinates, profile string) (*Route, error) {
	if profile == "" {
		profile = DefaultRouteProfile
	}

	q := url.Values{}
	q.Set("start", fmt.Sprintf("%f,%f", start.Lng, start.Lat))
	q.Set("end", fmt.Sprintf("%f,%f", end.Lng, end.Lat))

	endpoint := fmt.Sprintf("%s/v2/directions/%s?%s", c.baseURL, url.PathEscape(profile), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json, application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouteservice api error: status %d", resp.StatusCode)
	}

	var data directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(data.Features) == 0 {
		return nil, fmt.Errorf("no route found")
	}

	feature := data.Features[0]
	route := &Route{
		DistanceKM:  round2(feature.Properties.Summary.Distance / 1000),
		DurationMin: round2(feature.Properties.Summary.Duration / 60),
	}
	for i := 0; i < len(feature.Geometry.Coordinates); i += routePointStride {
		point := feature.Geometry.Coordinates[i]
		if len(point) < 2 {
			continue
		}
		route.Points = append(route.Points, Coordinates{Lat: point[1], Lng: point[0]})
	}
	return route, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
