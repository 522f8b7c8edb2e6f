package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sitewise/server/internal/models"
)

const (
	defaultBaseURL = "https://places.googleapis.com/v1/places:searchNearby"
	maxResultCount = 20
	fieldMask      = "places.displayName,places.formattedAddress,places.location,places.rating,places.priceLevel,places.id"
)

// categoryTags maps a lowercased business type to Places API category tags.
var categoryTags = map[string][]string{
	"restaurant": {"restaurant"},
	"cafe":       {"cafe"},
	"coffee":     {"cafe"},
	"salon":      {"beauty_salon"},
	"gym":        {"gym"},
	"fitness":    {"gym"},
	"store":      {"store"},
	"shop":       {"store"},
	"retail":     {"store"},
}

var defaultTags = []string{"restaurant"}

type Finder struct {
	logger  *logrus.Logger
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewFinder(logger *logrus.Logger, apiKey string, timeout time.Duration) *Finder {
	return &Finder{
		logger:  logger,
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the Places API endpoint, used in tests.
func (f *Finder) SetBaseURL(u string) {
	f.baseURL = u
}

type nearbySearchRequest struct {
	IncludedTypes       []string `json:"includedTypes"`
	MaxResultCount      int      `json:"maxResultCount"`
	LocationRestriction struct {
		Circle struct {
			Center struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"center"`
			Radius float64 `json:"radius"`
		} `json:"circle"`
	} `json:"locationRestriction"`
}

type nearbySearchResponse struct {
	Places []struct {
		ID          string `json:"id"`
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string   `json:"formattedAddress"`
		Rating           *float64 `json:"rating"`
		PriceLevel       string   `json:"priceLevel"`
		Location         struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
	} `json:"places"`
}

// FindNearby searches the places directory for businesses of the given type
// within radius meters of center. Any transport or API failure yields an
// empty competitor list; the analysis degrades rather than failing.
func (f *Finder) FindNearby(ctx context.Context, center models.Coordinate, businessType string, radius int) []models.Competitor {
	reqBody := nearbySearchRequest{
		IncludedTypes:  tagsFor(businessType),
		MaxResultCount: maxResultCount,
	}
	reqBody.LocationRestriction.Circle.Center.Latitude = center.Lat
	reqBody.LocationRestriction.Circle.Center.Longitude = center.Lng
	reqBody.LocationRestriction.Circle.Radius = float64(radius)

	payload, err := json.Marshal(reqBody)
	if err != nil {
		f.logger.WithError(err).Error("Failed to marshal places request")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL, bytes.NewReader(payload))
	if err != nil {
		f.logger.WithError(err).Error("Failed to create places request")
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", f.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.WithError(err).Error("Places request failed")
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logger.WithError(err).Error("Failed to read places response")
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		f.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("Places API returned an error")
		return nil
	}

	var result nearbySearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		f.logger.WithError(err).Error("Failed to parse places response")
		return nil
	}

	competitors := make([]models.Competitor, 0, len(result.Places))
	for _, place := range result.Places {
		competitor := models.Competitor{
			Name:    place.DisplayName.Text,
			Address: place.FormattedAddress,
			Rating:  place.Rating,
			Lat:     place.Location.Latitude,
			Lng:     place.Location.Longitude,
			PlaceID: place.ID,
		}
		if place.PriceLevel != "" {
			level := place.PriceLevel
			competitor.PriceLevel = &level
		}
		competitors = append(competitors, competitor)
	}

	f.logger.WithFields(logrus.Fields{
		"business_type": businessType,
		"count":         len(competitors),
	}).Info("Found competitors")

	return competitors
}

func tagsFor(businessType string) []string {
	if tags, ok := categoryTags[strings.ToLower(businessType)]; ok {
		return tags
	}
	return defaultTags
}
