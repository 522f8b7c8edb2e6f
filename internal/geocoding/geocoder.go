package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"sitewise/server/config"
	"sitewise/server/internal/models"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

type Geocoder struct {
	logger  *logrus.Logger
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGeocoder(logger *logrus.Logger, apiKey string, timeout time.Duration) *Geocoder {
	return &Geocoder{
		logger:  logger,
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the Geocoding API endpoint, used in tests.
func (g *Geocoder) SetBaseURL(u string) {
	g.baseURL = u
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a free-text location to a coordinate. It never fails: when
// the Geocoding API is unreachable or returns nothing, the static fallback
// table is consulted, and when that misses too the default city is used.
func (g *Geocoder) Geocode(ctx context.Context, location string) models.Coordinate {
	coord, err := g.lookup(ctx, location)
	if err == nil {
		return coord
	}
	g.logger.WithError(err).WithField("location", location).Warn("Geocoding failed, using fallback table")

	if city := config.MatchFallbackCity(location); city != nil {
		g.logger.WithFields(logrus.Fields{
			"location": location,
			"city":     city.Key,
		}).Info("Using fallback coordinates")
		return models.Coordinate{Lat: city.Lat, Lng: city.Lng}
	}

	city := config.DefaultFallbackCity()
	g.logger.WithField("location", location).Infof("Using default coordinates (%s)", city.Key)
	return models.Coordinate{Lat: city.Lat, Lng: city.Lng}
}

func (g *Geocoder) lookup(ctx context.Context, location string) (models.Coordinate, error) {
	params := url.Values{
		"address": []string{location},
		"key":     []string{g.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL, nil)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()

	resp, err := g.client.Do(req)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("failed to read response: %w", err)
	}

	var result geocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return models.Coordinate{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Status != "OK" || len(result.Results) == 0 {
		return models.Coordinate{}, fmt.Errorf("geocoding returned status %q with %d results", result.Status, len(result.Results))
	}

	loc := result.Results[0].Geometry.Location
	g.logger.WithFields(logrus.Fields{
		"location":  location,
		"latitude":  loc.Lat,
		"longitude": loc.Lng,
		"source":    "google",
	}).Info("Successfully geocoded location")

	return models.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}
