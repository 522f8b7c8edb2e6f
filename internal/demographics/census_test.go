package demographics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

const countyRowJSON = `[
	["B01003_001E","B19013_001E","B01002_001E","B15003_022E","B15003_001E","B08303_001E","B19301_001E","B25077_001E","B25064_001E","B17001_002E","B23025_005E","B23025_002E","B19001_002E","B19001_003E","B19001_004E","B19001_005E","B19001_006E","B19001_007E","B19001_008E","B19001_009E","B19001_010E","B19001_011E","B19001_012E","B19001_013E","B19001_014E","B19001_015E","B19001_016E","B19001_017E","state","county"],
	["100000","85000","35","30000","60000",null,"45000","500000","2000","10000","2000","50000","5000","5000","5000","5000","5000","5000","5000","5000","5000","5000","5000","5000","5000","5000","5000","5000","36","061"]
]`

const zctaRowJSON = `[
	["B01003_001E","B19013_001E","B19301_001E","B25077_001E","B25064_001E","zip code tabulation area"],
	["50000","90000","50000","600000","2500","10001"]
]`

func newCensusTestClient(t *testing.T, withZip bool) (*CensusClient, func()) {
	fcc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [{"state_fips": "36", "county_fips": "061"}]}`))
	}))

	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !withZip {
			w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
			return
		}
		w.Write([]byte(`{
			"status": "OK",
			"results": [{"address_components": [
				{"long_name": "New York", "types": ["locality"]},
				{"long_name": "10001", "types": ["postal_code"]}
			]}]
		}`))
	}))

	census := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Query().Get("for"), "zip code tabulation area") {
			w.Write([]byte(zctaRowJSON))
			return
		}
		w.Write([]byte(countyRowJSON))
	}))

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	c := NewCensusClient(logger, "test-key", 2*time.Second)
	c.SetBaseURLs(fcc.URL, geocode.URL, census.URL)

	cleanup := func() {
		fcc.Close()
		geocode.Close()
		census.Close()
	}
	return c, cleanup
}

func TestCensusLookupCountyGranularity(t *testing.T) {
	c, cleanup := newCensusTestClient(t, false)
	defer cleanup()

	data, err := c.Lookup(context.Background(), 40.7128, -74.006)
	assert.NoError(t, err)
	assert.NotNil(t, data)

	assert.Empty(t, data.ZipCode)
	assert.NotNil(t, data.Population)
	assert.Equal(t, 100000, *data.Population)
	assert.InDelta(t, 85000, *data.MedianIncome, 0.001)
	assert.InDelta(t, 45000, *data.PerCapitaIncome, 0.001)
	assert.InDelta(t, 500000, *data.HomeValue, 0.001)

	// Derived metrics.
	assert.InDelta(t, 50.0, data.EducationBachelorPct, 0.001)
	assert.InDelta(t, 10.0, data.PovertyRate, 0.001)
	assert.InDelta(t, 4.0, data.UnemploymentRate, 0.001)
	assert.Nil(t, data.CommuteTime, "null census value must stay absent")

	// Multiplier: +0.4 income, +0.15 education, +0.25 age, +0.1 unemployment.
	assert.InDelta(t, 1.9, data.FootTrafficMultiplier, 0.0001)

	// Spending: 72% of income split into fixed shares.
	annual := 85000 * 0.72
	assert.InDelta(t, annual*0.33, data.SpendingCategories["housing"], 0.01)
	assert.InDelta(t, annual*0.12, data.SpendingCategories["retail_shopping"], 0.01)
	assert.InDelta(t, annual*0.12/12, *data.MonthlyRetailSpending, 0.01)
	assert.InDelta(t, 85000.0/60000*100, *data.SpendingIndex, 0.001)

	// Rent burden: annualized rent over income.
	assert.InDelta(t, 2000.0*12/85000*100, *data.RentBurden, 0.001)

	// 16 income brackets, each 5% of population.
	assert.Len(t, data.IncomeDistribution, 16)
	assert.Equal(t, 5000, data.IncomeDistribution["under_10k"].Count)
	assert.InDelta(t, 5.0, data.IncomeDistribution["under_10k"].Percentage, 0.001)
	assert.Equal(t, 5000, data.IncomeDistribution["200k_plus"].Count)
}

func TestCensusLookupPrefersZCTA(t *testing.T) {
	c, cleanup := newCensusTestClient(t, true)
	defer cleanup()

	data, err := c.Lookup(context.Background(), 40.7128, -74.006)
	assert.NoError(t, err)
	assert.NotNil(t, data)

	// ZCTA row overrides population, income, and housing.
	assert.Equal(t, "10001", data.ZipCode)
	assert.Equal(t, 50000, *data.Population)
	assert.InDelta(t, 90000, *data.MedianIncome, 0.001)
	assert.InDelta(t, 50000, *data.PerCapitaIncome, 0.001)
	assert.InDelta(t, 600000, *data.HomeValue, 0.001)
	assert.InDelta(t, 2500, *data.MedianRent, 0.001)

	// County-only fields still come from the coarser row.
	assert.InDelta(t, 35.0, *data.MedianAge, 0.001)
	assert.InDelta(t, 50.0, data.EducationBachelorPct, 0.001)

	// Brackets are county counts against the ZCTA population.
	assert.InDelta(t, 10.0, data.IncomeDistribution["under_10k"].Percentage, 0.001)
}

func TestCensusLookupFailsOutsideCoverage(t *testing.T) {
	fcc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer fcc.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	c := NewCensusClient(logger, "test-key", 2*time.Second)
	c.SetBaseURLs(fcc.URL, fcc.URL, fcc.URL)

	data, err := c.Lookup(context.Background(), 19.076, 72.8777)
	assert.Error(t, err)
	assert.Nil(t, data)
}

func TestFootTrafficMultiplierTiers(t *testing.T) {
	tests := []struct {
		name         string
		income       *float64
		educationPct float64
		age          *float64
		unemployment float64
		expected     float64
	}{
		{"No signals", nil, 0, nil, 0, 1.0},
		{"High income only", floatPtr(90000), 0, nil, 0, 1.4},
		{"Above average income", floatPtr(70000), 0, nil, 0, 1.25},
		{"Low income", floatPtr(30000), 0, nil, 0, 0.8},
		{"Well educated", nil, 40, nil, 0, 1.15},
		{"Highly educated", nil, 60, nil, 0, 1.3},
		{"Prime age", nil, 0, floatPtr(30), 0, 1.25},
		{"Low unemployment", nil, 0, nil, 4, 1.1},
		{"Everything", floatPtr(90000), 60, floatPtr(30), 4, 2.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := footTrafficMultiplier(tt.income, tt.educationPct, tt.age, tt.unemployment)
			assert.InDelta(t, tt.expected, got, 0.0001)
		})
	}
}

func TestSafeFloat(t *testing.T) {
	str := func(s string) *string { return &s }

	assert.Nil(t, safeFloat(nil))
	assert.Nil(t, safeFloat(str("null")))
	assert.Nil(t, safeFloat(str("-")))
	assert.Nil(t, safeFloat(str("")))
	assert.Nil(t, safeFloat(str("not a number")))

	v := safeFloat(str("42.5"))
	assert.NotNil(t, v)
	assert.InDelta(t, 42.5, *v, 0.0001)
}
