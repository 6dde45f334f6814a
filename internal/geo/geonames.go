package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// TimezoneFinder resolves an IANA zone name from coordinates.
// *tzf.DefaultFinder satisfies it.
type TimezoneFinder interface {
	GetTimezoneName(lng float64, lat float64) string
}

// GeoNamesClient resolves destination names through the GeoNames search API.
type GeoNamesClient struct {
	baseURL    string
	username   string
	httpClient *http.Client
	cache      *cache.Cache
	tz         TimezoneFinder
	logger     *slog.Logger
}

// NewGeoNamesClient creates a GeoNames client. tz may be nil.
func NewGeoNamesClient(baseURL, username string, tz TimezoneFinder, logger *slog.Logger) *GeoNamesClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeoNamesClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache.New(24*time.Hour, time.Hour),
		tz:         tz,
		logger:     logger,
	}
}

type geoNamesResponse struct {
	TotalResultsCount int `json:"totalResultsCount"`
	Geonames          []struct {
		Name        string `json:"name"`
		Lat         string `json:"lat"`
		Lng         string `json:"lng"`
		CountryName string `json:"countryName"`
		Population  int64  `json:"population"`
		Timezone    *struct {
			TimeZoneID string `json:"timeZoneId"`
		} `json:"timezone"`
	} `json:"geonames"`
}

// ResolveLocation returns the best match for name, or nil when nothing matched.
func (c *GeoNamesClient) ResolveLocation(ctx context.Context, name string) (*LocationInfo, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*LocationInfo), nil
	}

	q := url.Values{}
	q.Set("q", name)
	q.Set("maxRows", "1")
	q.Set("style", "FULL")
	q.Set("username", c.username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/searchJSON?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geonames api error: status %d", resp.StatusCode)
	}

	var data geoNamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if data.TotalResultsCount == 0 || len(data.Geonames) == 0 {
		return nil, nil
	}

	result := data.Geonames[0]
	loc := &LocationInfo{
		Name:       result.Name,
		Country:    result.CountryName,
		Population: result.Population,
	}
	if result.Timezone != nil {
		loc.Timezone = result.Timezone.TimeZoneID
	}

	lat, latErr := strconv.ParseFloat(result.Lat, 64)
	lng, lngErr := strconv.ParseFloat(result.Lng, 64)
	if latErr == nil && lngErr == nil {
		loc.Coordinates = &Coordinates{Lat: lat, Lng: lng}
	} else {
		c.logger.WarnContext(ctx, "GeoNames result without usable coordinates",
			"name", name, "lat", result.Lat, "lng", result.Lng)
	}

	if loc.Timezone == "" && loc.Coordinates != nil && c.tz != nil {
		loc.Timezone = c.tz.GetTimezoneName(loc.Coordinates.Lng, loc.Coordinates.Lat)
	}

	c.cache.Set(key, loc, cache.DefaultExpiration)
	return loc, nil
}
