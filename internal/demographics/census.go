package demographics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultFCCAreaURL       = "https://geo.fcc.gov/api/census/area"
	defaultReverseGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultCensusBaseURL    = "https://api.census.gov/data"
	acsDataset              = "2022/acs/acs5"
)

// acsVariables is the county-level query, in a fixed order the parser relies on.
var acsVariables = []string{
	"B01003_001E", // Total population
	"B19013_001E", // Median household income
	"B01002_001E", // Median age
	"B15003_022E", // Bachelor's degree
	"B15003_001E", // Total education
	"B08303_001E", // Commute time
	"B19301_001E", // Per capita income
	"B25077_001E", // Median home value
	"B25064_001E", // Median gross rent
	"B17001_002E", // Poverty count
	"B23025_005E", // Unemployed
	"B23025_002E", // Labor force
	"B19001_002E", "B19001_003E", "B19001_004E", "B19001_005E",
	"B19001_006E", "B19001_007E", "B19001_008E", "B19001_009E",
	"B19001_010E", "B19001_011E", "B19001_012E", "B19001_013E",
	"B19001_014E", "B19001_015E", "B19001_016E", "B19001_017E",
}

// zctaVariables is the finer postal-code-level query.
const zctaVariables = "B01003_001E,B19013_001E,B19301_001E,B25077_001E,B25064_001E"

var incomeBracketLabels = []string{
	"under_10k", "10k_15k", "15k_20k", "20k_25k", "25k_30k",
	"30k_35k", "35k_40k", "40k_45k", "45k_50k", "50k_60k",
	"60k_75k", "75k_100k", "100k_125k", "125k_150k", "150k_200k", "200k_plus",
}

// spendingShares breaks annual consumer spending (72% of income) into
// categories, per the BLS Consumer Expenditure Survey averages.
var spendingShares = []struct {
	Category string
	Share    float64
}{
	{"housing", 0.33},
	{"food", 0.13},
	{"transportation", 0.16},
	{"healthcare", 0.08},
	{"entertainment", 0.05},
	{"retail_shopping", 0.12},
	{"other", 0.13},
}

// CensusData is the raw result of the national-statistics lookup before it is
// folded into a Demographics record.
type CensusData struct {
	ZipCode               string
	Population            *int
	MedianIncome          *float64
	PerCapitaIncome       *float64
	MedianAge             *float64
	EducationBachelorPct  float64
	MonthlyRetailSpending *float64
	SpendingIndex         *float64
	FootTrafficMultiplier float64
	CommuteTime           *float64
	PovertyRate           float64
	UnemploymentRate      float64
	HomeValue             *float64
	MedianRent            *float64
	RentBurden            *float64
	IncomeDistribution    map[string]incomeBracket
	SpendingCategories    map[string]float64
}

type incomeBracket struct {
	Count      int
	Percentage float64
}

type CensusClient struct {
	logger            *logrus.Logger
	apiKey            string
	fccAreaURL        string
	reverseGeocodeURL string
	censusBaseURL     string
	client            *http.Client
}

func NewCensusClient(logger *logrus.Logger, apiKey string, timeout time.Duration) *CensusClient {
	return &CensusClient{
		logger:            logger,
		apiKey:            apiKey,
		fccAreaURL:        defaultFCCAreaURL,
		reverseGeocodeURL: defaultReverseGeocodeURL,
		censusBaseURL:     defaultCensusBaseURL,
		client:            &http.Client{Timeout: timeout},
	}
}

// SetBaseURLs overrides the external endpoints, used in tests.
func (c *CensusClient) SetBaseURLs(fccArea, reverseGeocode, census string) {
	c.fccAreaURL = fccArea
	c.reverseGeocodeURL = reverseGeocode
	c.censusBaseURL = census
}

type fccAreaResponse struct {
	Results []struct {
		StateFIPS  string `json:"state_fips"`
		CountyFIPS string `json:"county_fips"`
	} `json:"results"`
}

type reverseGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// Lookup resolves the coordinate to an administrative region and queries ACS
// statistics for it, preferring postal-code granularity when the ZIP code
// resolves. Returns an error when the location is outside census coverage.
func (c *CensusClient) Lookup(ctx context.Context, lat, lng float64) (*CensusData, error) {
	stateFIPS, countyFIPS, err := c.lookupFIPS(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	// ZIP lookup failure is tolerated; county granularity still works.
	zipCode, err := c.lookupZipCode(ctx, lat, lng)
	if err != nil {
		c.logger.WithError(err).Debug("ZIP code lookup failed, using county granularity")
	}

	countyRow, err := c.queryACS(ctx, map[string]string{
		"get": strings.Join(acsVariables, ","),
		"for": "county:" + countyFIPS,
		"in":  "state:" + stateFIPS,
	}, len(acsVariables))
	if err != nil {
		return nil, err
	}

	var zctaRow []*string
	if zipCode != "" {
		zctaRow, err = c.queryACS(ctx, map[string]string{
			"get": zctaVariables,
			"for": "zip code tabulation area:" + zipCode,
		}, 5)
		if err != nil {
			c.logger.WithError(err).WithField("zip_code", zipCode).Debug("ZCTA lookup failed, using county data")
			zctaRow = nil
		}
	}

	return deriveCensusData(zipCode, countyRow, zctaRow), nil
}

func (c *CensusClient) lookupFIPS(ctx context.Context, lat, lng float64) (string, string, error) {
	params := url.Values{
		"lat":    []string{strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    []string{strconv.FormatFloat(lng, 'f', -1, 64)},
		"format": []string{"json"},
	}

	var result fccAreaResponse
	if err := c.getJSON(ctx, c.fccAreaURL, params, &result); err != nil {
		return "", "", err
	}
	if len(result.Results) == 0 {
		return "", "", fmt.Errorf("no FIPS results for %.4f,%.4f", lat, lng)
	}

	area := result.Results[0]
	if area.StateFIPS == "" || area.CountyFIPS == "" {
		return "", "", fmt.Errorf("incomplete FIPS result for %.4f,%.4f", lat, lng)
	}
	return area.StateFIPS, area.CountyFIPS, nil
}

func (c *CensusClient) lookupZipCode(ctx context.Context, lat, lng float64) (string, error) {
	params := url.Values{
		"latlng":      []string{fmt.Sprintf("%f,%f", lat, lng)},
		"key":         []string{c.apiKey},
		"result_type": []string{"postal_code"},
	}

	var result reverseGeocodeResponse
	if err := c.getJSON(ctx, c.reverseGeocodeURL, params, &result); err != nil {
		return "", err
	}
	if result.Status != "OK" || len(result.Results) == 0 {
		return "", fmt.Errorf("reverse geocode returned status %q", result.Status)
	}

	for _, component := range result.Results[0].AddressComponents {
		for _, t := range component.Types {
			if t == "postal_code" {
				return component.LongName, nil
			}
		}
	}
	return "", fmt.Errorf("no postal code component in reverse geocode result")
}

// queryACS runs one tabular query and returns the first data row. The census
// API answers with an array of string arrays, header row first, where missing
// values come back as null or sentinel strings.
func (c *CensusClient) queryACS(ctx context.Context, query map[string]string, minColumns int) ([]*string, error) {
	params := url.Values{}
	for k, v := range query {
		params.Set(k, v)
	}

	var rows [][]*string
	endpoint := c.censusBaseURL + "/" + acsDataset
	if err := c.getJSON(ctx, endpoint, params, &rows); err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("census query returned no data rows")
	}
	if len(rows[1]) < minColumns {
		return nil, fmt.Errorf("census data row has %d columns, want at least %d", len(rows[1]), minColumns)
	}
	return rows[1], nil
}

func (c *CensusClient) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", endpoint, err)
	}
	return nil
}

// deriveCensusData folds the raw ACS rows into derived metrics. The finer
// ZCTA row, when present, overrides population, income, and housing values;
// everything else stays at county granularity.
func deriveCensusData(zipCode string, countyRow, zctaRow []*string) *CensusData {
	data := &CensusData{ZipCode: zipCode}

	if zctaRow != nil {
		data.Population = safeInt(zctaRow[0])
		data.MedianIncome = safeFloat(zctaRow[1])
		data.PerCapitaIncome = safeFloat(zctaRow[2])
		data.HomeValue = safeFloat(zctaRow[3])
		data.MedianRent = safeFloat(zctaRow[4])
	} else {
		data.Population = safeInt(countyRow[0])
		data.MedianIncome = safeFloat(countyRow[1])
		data.PerCapitaIncome = safeFloat(countyRow[6])
		data.HomeValue = safeFloat(countyRow[7])
		data.MedianRent = safeFloat(countyRow[8])
	}

	data.MedianAge = safeFloat(countyRow[2])
	bachelorCount := intOr(safeInt(countyRow[3]), 0)
	totalEducation := intOr(safeInt(countyRow[4]), 1)
	data.CommuteTime = safeFloat(countyRow[5])
	povertyCount := intOr(safeInt(countyRow[9]), 0)
	unemployed := intOr(safeInt(countyRow[10]), 0)
	laborForce := intOr(safeInt(countyRow[11]), 1)

	if totalEducation > 0 {
		data.EducationBachelorPct = float64(bachelorCount) / float64(totalEducation) * 100
	}
	if data.Population != nil && *data.Population > 0 {
		data.PovertyRate = float64(povertyCount) / float64(*data.Population) * 100
	}
	if laborForce > 0 {
		data.UnemploymentRate = float64(unemployed) / float64(laborForce) * 100
	}

	data.IncomeDistribution = make(map[string]incomeBracket, len(incomeBracketLabels))
	for i, label := range incomeBracketLabels {
		col := 12 + i
		if col >= len(countyRow) {
			break
		}
		count := intOr(safeInt(countyRow[col]), 0)
		pct := 0.0
		if data.Population != nil && *data.Population > 0 {
			pct = round1(float64(count) / float64(*data.Population) * 100)
		}
		data.IncomeDistribution[label] = incomeBracket{Count: count, Percentage: pct}
	}

	if data.MedianIncome != nil {
		annualSpending := *data.MedianIncome * 0.72
		data.SpendingCategories = make(map[string]float64, len(spendingShares))
		for _, share := range spendingShares {
			data.SpendingCategories[share.Category] = round2(annualSpending * share.Share)
		}
		monthlyRetail := data.SpendingCategories["retail_shopping"] / 12
		data.MonthlyRetailSpending = &monthlyRetail

		// Normalized so 100 = the ~$60k national average.
		spendingIndex := *data.MedianIncome / 60000 * 100
		data.SpendingIndex = &spendingIndex
	}

	data.FootTrafficMultiplier = footTrafficMultiplier(
		data.MedianIncome, data.EducationBachelorPct, data.MedianAge, data.UnemploymentRate)

	if data.MedianRent != nil && data.MedianIncome != nil && *data.MedianIncome > 0 {
		burden := *data.MedianRent * 12 / *data.MedianIncome * 100
		data.RentBurden = &burden
	}

	return data
}

// footTrafficMultiplier builds the multiplier additively from income tier,
// education tier, prime spending age, and low unemployment.
func footTrafficMultiplier(medianIncome *float64, educationPct float64, medianAge *float64, unemploymentRate float64) float64 {
	mult := 1.0

	if medianIncome != nil {
		switch {
		case *medianIncome > 80000:
			mult += 0.4
		case *medianIncome > 60000:
			mult += 0.25
		case *medianIncome < 35000:
			mult -= 0.2
		}
	}

	switch {
	case educationPct > 50:
		mult += 0.3
	case educationPct > 30:
		mult += 0.15
	}

	if medianAge != nil && *medianAge >= 25 && *medianAge <= 45 {
		mult += 0.25
	}

	if unemploymentRate > 0 && unemploymentRate < 5 {
		mult += 0.1
	}

	return mult
}

// safeFloat parses a census value, treating null and sentinel strings as absent.
func safeFloat(val *string) *float64 {
	if val == nil {
		return nil
	}
	s := strings.TrimSpace(*val)
	switch strings.ToLower(s) {
	case "", "null", "-", "none":
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func safeInt(val *string) *int {
	f := safeFloat(val)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

func intOr(val *int, fallback int) int {
	if val == nil {
		return fallback
	}
	return *val
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
