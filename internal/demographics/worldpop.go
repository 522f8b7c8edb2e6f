package demographics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"sitewise/server/internal/geometry"
)

const (
	defaultWorldPopURL = "https://api.worldpop.org/v1/services/stats"
	worldPopDataset    = "wpgppop"
	worldPopYear       = "2020"
	circleSegments     = 36
)

type WorldPopClient struct {
	logger  *logrus.Logger
	baseURL string
	client  *http.Client
}

func NewWorldPopClient(logger *logrus.Logger, timeout time.Duration) *WorldPopClient {
	return &WorldPopClient{
		logger:  logger,
		baseURL: defaultWorldPopURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the WorldPop endpoint, used in tests.
func (c *WorldPopClient) SetBaseURL(u string) {
	c.baseURL = u
}

type worldPopResponse struct {
	Data struct {
		TotalPopulation float64 `json:"total_population"`
	} `json:"data"`
}

// TotalPopulation asks the world population grid for the head count inside a
// circular polygon approximating the search radius.
func (c *WorldPopClient) TotalPopulation(ctx context.Context, lat, lng float64, radius int) (float64, error) {
	fc := geometry.CircleFeatureCollection(lat, lng, radius, circleSegments)
	geojsonBody, err := fc.MarshalJSON()
	if err != nil {
		return 0, fmt.Errorf("failed to marshal circle polygon: %w", err)
	}

	params := url.Values{
		"dataset": []string{worldPopDataset},
		"year":    []string{worldPopYear},
		"geojson": []string{string(geojsonBody)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create worldpop request: %w", err)
	}
	req.URL.RawQuery = params.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("worldpop request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("worldpop returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read worldpop response: %w", err)
	}

	var result worldPopResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("failed to parse worldpop response: %w", err)
	}

	return result.Data.TotalPopulation, nil
}
