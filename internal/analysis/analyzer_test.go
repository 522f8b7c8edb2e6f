package analysis

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"sitewise/server/internal/models"
)

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, location string) models.Coordinate {
	args := m.Called(ctx, location)
	return args.Get(0).(models.Coordinate)
}

type MockFinder struct {
	mock.Mock
}

func (m *MockFinder) FindNearby(ctx context.Context, center models.Coordinate, businessType string, radius int) []models.Competitor {
	args := m.Called(ctx, center, businessType, radius)
	return args.Get(0).([]models.Competitor)
}

type MockDemographics struct {
	mock.Mock
}

func (m *MockDemographics) Aggregate(ctx context.Context, center models.Coordinate, radius int) models.Demographics {
	args := m.Called(ctx, center, radius)
	return args.Get(0).(models.Demographics)
}

type MockRental struct {
	mock.Mock
}

func (m *MockRental) Estimate(center models.Coordinate, businessType string) models.RentalEstimate {
	args := m.Called(center, businessType)
	return args.Get(0).(models.RentalEstimate)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func newMockedAnalyzer() (*Analyzer, *MockGeocoder, *MockFinder, *MockDemographics, *MockRental) {
	geocoder := &MockGeocoder{}
	finder := &MockFinder{}
	demographics := &MockDemographics{}
	rental := &MockRental{}
	analyzer := NewAnalyzer(quietLogger(), geocoder, finder, demographics, rental)
	return analyzer, geocoder, finder, demographics, rental
}

func TestAnalyzeAssemblesRecord(t *testing.T) {
	analyzer, geocoder, finder, demographics, rental := newMockedAnalyzer()

	center := models.Coordinate{Lat: 28.6304, Lng: 77.2177}
	competitors := []models.Competitor{
		{Name: "a", Rating: floatPtr(4.0)},
		{Name: "b", Rating: floatPtr(4.5)},
	}
	density := 6000.0
	demo := models.Demographics{
		DataSource:        models.SourceCensus,
		PopulationDensity: &density,
	}
	rentalEstimate := models.RentalEstimate{EstimatedRentPerSqft: floatPtr(18)}

	geocoder.On("Geocode", mock.Anything, "Connaught Place, Delhi").Return(center)
	finder.On("FindNearby", mock.Anything, center, "restaurant", 5000).Return(competitors)
	demographics.On("Aggregate", mock.Anything, center, 5000).Return(demo)
	rental.On("Estimate", center, "restaurant").Return(rentalEstimate)

	record := analyzer.Analyze(context.Background(), models.LocationQuery{
		BusinessType: "restaurant",
		Location:     "Connaught Place, Delhi",
		Radius:       5000,
	})

	assert.NotEmpty(t, record.SearchID)
	assert.Equal(t, "Connaught Place, Delhi", record.Location)
	assert.Equal(t, 2, record.CompetitorCount)
	assert.Len(t, record.Competitors, 2)
	assert.Contains(t, []float64{20, 40, 60, 80, 100}, record.SaturationScore)
	assert.NotNil(t, record.BreakEvenAnalysis.ROIPercentage)
	assert.False(t, record.AnalysisDate.IsZero())

	// Centroid is GeoJSON lng,lat ordered.
	assert.NotNil(t, record.CenterLocation)
	assert.InDelta(t, 28.6304, record.CenterLat, 0.0001)
	assert.InDelta(t, 77.2177, record.CenterLng, 0.0001)

	geocoder.AssertExpectations(t)
	finder.AssertExpectations(t)
	demographics.AssertExpectations(t)
	rental.AssertExpectations(t)
}

func TestAnalyzeDefaultsRadius(t *testing.T) {
	analyzer, geocoder, finder, demographics, rental := newMockedAnalyzer()

	center := models.Coordinate{Lat: 19.076, Lng: 72.8777}
	geocoder.On("Geocode", mock.Anything, "Mumbai").Return(center)
	finder.On("FindNearby", mock.Anything, center, "cafe", 5000).Return([]models.Competitor{})
	demographics.On("Aggregate", mock.Anything, center, 5000).Return(models.Demographics{})
	rental.On("Estimate", center, "cafe").Return(models.RentalEstimate{})

	record := analyzer.Analyze(context.Background(), models.LocationQuery{
		BusinessType: "cafe",
		Location:     "Mumbai",
	})

	assert.Equal(t, 5000, record.Radius)
	assert.Equal(t, 30.0, record.FootTrafficScore, "no competitors yields the flat score")
	finder.AssertExpectations(t)
}

func TestCompareRejectsBadLocationCounts(t *testing.T) {
	analyzer, geocoder, finder, demographics, rental := newMockedAnalyzer()

	one := []models.LocationQuery{{BusinessType: "cafe", Location: "Pune"}}
	five := make([]models.LocationQuery, 5)
	for i := range five {
		five[i] = models.LocationQuery{BusinessType: "cafe", Location: "Pune"}
	}

	for _, queries := range [][]models.LocationQuery{one, five, nil} {
		record, err := analyzer.Compare(context.Background(), queries)
		assert.Nil(t, record)
		assert.ErrorIs(t, err, ErrInvalidLocationCount)
	}

	// Validation happens before any enrichment call.
	geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	finder.AssertNotCalled(t, "FindNearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	demographics.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything, mock.Anything)
	rental.AssertNotCalled(t, "Estimate", mock.Anything, mock.Anything)
}

func TestCompareBuildsSummary(t *testing.T) {
	analyzer, geocoder, finder, demographics, rental := newMockedAnalyzer()

	puneCenter := models.Coordinate{Lat: 18.5204, Lng: 73.8567}
	mumbaiCenter := models.Coordinate{Lat: 19.076, Lng: 72.8777}

	geocoder.On("Geocode", mock.Anything, "Pune").Return(puneCenter)
	geocoder.On("Geocode", mock.Anything, "Mumbai").Return(mumbaiCenter)

	// Pune: no competitors. Mumbai: a dense, well rated market.
	finder.On("FindNearby", mock.Anything, puneCenter, "cafe", 5000).Return([]models.Competitor{})
	finder.On("FindNearby", mock.Anything, mumbaiCenter, "cafe", 5000).Return([]models.Competitor{
		{Name: "x", Rating: floatPtr(4.8)},
		{Name: "y", Rating: floatPtr(4.6)},
	})

	puneDensity := 1000.0
	mumbaiDensity := 20000.0
	demographics.On("Aggregate", mock.Anything, puneCenter, 5000).Return(models.Demographics{
		PopulationDensity:   &puneDensity,
		EstimatedPopulation: intPtr(100000),
	})
	demographics.On("Aggregate", mock.Anything, mumbaiCenter, 5000).Return(models.Demographics{
		PopulationDensity:     &mumbaiDensity,
		EstimatedPopulation:   intPtr(2000000),
		ConsumerSpendingIndex: floatPtr(150),
		MedianHouseholdIncome: floatPtr(90000),
	})

	rental.On("Estimate", mock.Anything, "cafe").Return(models.RentalEstimate{EstimatedRentPerSqft: floatPtr(15)})

	record, err := analyzer.Compare(context.Background(), []models.LocationQuery{
		{BusinessType: "cafe", Location: "Pune", Radius: 5000},
		{BusinessType: "cafe", Location: "Mumbai", Radius: 5000},
	})

	assert.NoError(t, err)
	assert.NotNil(t, record)
	assert.NotEmpty(t, record.ComparisonID)
	assert.Len(t, record.Locations, 2)

	// Both have 20 saturation (tie) -> first location wins.
	assert.Equal(t, "Pune", *record.Summary.BestForLowCompetition)
	// Mumbai wins everything demand-side.
	assert.Equal(t, "Mumbai", *record.Summary.BestForROI)
	assert.Equal(t, "Mumbai", *record.Summary.BestForFootTraffic)
	assert.Equal(t, "Mumbai", *record.Summary.BestForDemographics)
}

func TestBuildSummaryTiesGoToFirst(t *testing.T) {
	roi := floatPtr(10.0)
	records := []models.AnalysisRecord{
		{
			Location:          "first",
			SaturationScore:   40,
			FootTrafficScore:  55,
			Demographics:      models.Demographics{EstimatedPopulation: intPtr(500)},
			BreakEvenAnalysis: models.BreakEvenAnalysis{ROIPercentage: roi},
		},
		{
			Location:          "second",
			SaturationScore:   40,
			FootTrafficScore:  55,
			Demographics:      models.Demographics{EstimatedPopulation: intPtr(500)},
			BreakEvenAnalysis: models.BreakEvenAnalysis{ROIPercentage: roi},
		},
	}

	summary := buildSummary(records)
	assert.Equal(t, "first", *summary.BestForLowCompetition)
	assert.Equal(t, "first", *summary.BestForROI)
	assert.Equal(t, "first", *summary.BestForFootTraffic)
	assert.Equal(t, "first", *summary.BestForDemographics)
}
