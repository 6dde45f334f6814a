package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultSearchRadius is the POI search radius around a destination, in meters.
const DefaultSearchRadius = 5000

// OverpassClient finds points of interest through the OpenStreetMap Overpass API.
type OverpassClient struct {
	endpoint   string
	httpClient *http.Client
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewOverpassClient creates an Overpass client.
func NewOverpassClient(endpoint string, logger *slog.Logger) *OverpassClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &OverpassClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache.New(6*time.Hour, 30*time.Minute),
		logger:     logger,
	}
}

type overpassResponse struct {
	Elements []struct {
		ID   int64             `json:"id"`
		Lat  *float64          `json:"lat"`
		Lon  *float64          `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// FindPlaces returns the places of the given category around (lat, lng) in the
// order Overpass reports them. Lookup failures yield an empty result.
func (c *OverpassClient) FindPlaces(ctx context.Context, lat, lng float64, radius int, category string) []PlaceCandidate {
	key := fmt.Sprintf("%.4f,%.4f,%d,%s", lat, lng, radius, category)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]PlaceCandidate)
	}

	places, err := c.query(ctx, buildOverpassQuery(lat, lng, radius), category)
	if err != nil {
		c.logger.WarnContext(ctx, "Overpass lookup failed",
			"category", category, "error", err)
		return []PlaceCandidate{}
	}

	c.cache.Set(key, places, cache.DefaultExpiration)
	return places
}

func (c *OverpassClient) query(ctx context.Context, query, category string) ([]PlaceCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass api error: status %d", resp.StatusCode)
	}

	var data overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	places := []PlaceCandidate{}
	for _, el := range data.Elements {
		if el.Tags == nil {
			continue
		}

		kind := el.Tags["tourism"]
		if kind == "" {
			kind = el.Tags["amenity"]
		}
		if category != "" && kind != category {
			continue
		}

		name := el.Tags["name"]
		if name == "" {
			name = UnnamedPlace
		}

		place := PlaceCandidate{
			ID:       strconv.FormatInt(el.ID, 10),
			Name:     name,
			Category: kind,
			Address:  el.Tags["addr:street"],
			Website:  el.Tags["website"],
			Phone:    el.Tags["phone"],
		}
		if el.Lat != nil && el.Lon != nil {
			place.Coordinates = &Coordinates{Lat: *el.Lat, Lng: *el.Lon}
		}
		places = append(places, place)
	}
	return places, nil
}

func buildOverpassQuery(lat, lng float64, radius int) string {
	around := fmt.Sprintf("(around:%d,%f,%f)", radius, lat, lng)
	return "[out:json];(" +
		`node["tourism"~"hotel|guesthouse|attraction"]` + around + ";" +
		`node["amenity"~"restaurant|cafe|bar"]` + around + ";" +
		");out center;"
}
