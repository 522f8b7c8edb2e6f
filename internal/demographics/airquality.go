package demographics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultAirQualityURL = "https://airquality.googleapis.com/v1/currentConditions:lookup"

// aqiCategories maps vendor category codes to display strings.
var aqiCategories = map[string]string{
	"EXCELLENT":                      "Excellent",
	"GOOD":                           "Good",
	"MODERATE":                       "Moderate",
	"UNHEALTHY_FOR_SENSITIVE_GROUPS": "Unhealthy for Sensitive Groups",
	"UNHEALTHY":                      "Unhealthy",
	"VERY_UNHEALTHY":                 "Very Unhealthy",
	"HAZARDOUS":                      "Hazardous",
}

type AirQuality struct {
	AQI   int
	Level string
}

type AirQualityClient struct {
	logger  *logrus.Logger
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewAirQualityClient(logger *logrus.Logger, apiKey string, timeout time.Duration) *AirQualityClient {
	return &AirQualityClient{
		logger:  logger,
		apiKey:  apiKey,
		baseURL: defaultAirQualityURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the Air Quality API endpoint, used in tests.
func (c *AirQualityClient) SetBaseURL(u string) {
	c.baseURL = u
}

type airQualityRequest struct {
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

type airQualityResponse struct {
	Indexes []struct {
		Code     string `json:"code"`
		AQI      int    `json:"aqi"`
		Category string `json:"category"`
	} `json:"indexes"`
}

// Lookup fetches the universal AQI for a coordinate.
func (c *AirQualityClient) Lookup(ctx context.Context, lat, lng float64) (*AirQuality, error) {
	var reqBody airQualityRequest
	reqBody.Location.Latitude = lat
	reqBody.Location.Longitude = lng

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal air quality request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create air quality request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("air quality request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("air quality API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read air quality response: %w", err)
	}

	var result airQualityResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse air quality response: %w", err)
	}

	for _, index := range result.Indexes {
		if index.Code != "uaqi" {
			continue
		}
		level := index.Category
		if mapped, ok := aqiCategories[index.Category]; ok {
			level = mapped
		}
		return &AirQuality{AQI: index.AQI, Level: level}, nil
	}

	return nil, fmt.Errorf("no universal AQI index in response")
}
