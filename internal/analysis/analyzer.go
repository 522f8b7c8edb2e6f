package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"sitewise/server/internal/models"
	"sitewise/server/internal/scoring"
)

const (
	defaultRadius = 5000

	minComparisonLocations = 2
	maxComparisonLocations = 4
)

// ErrInvalidLocationCount is returned before any enrichment call when a
// comparison request holds fewer than 2 or more than 4 locations.
var ErrInvalidLocationCount = fmt.Errorf("please provide %d-%d locations for comparison", minComparisonLocations, maxComparisonLocations)

type Geocoder interface {
	Geocode(ctx context.Context, location string) models.Coordinate
}

type CompetitorFinder interface {
	FindNearby(ctx context.Context, center models.Coordinate, businessType string, radius int) []models.Competitor
}

type DemographicsSource interface {
	Aggregate(ctx context.Context, center models.Coordinate, radius int) models.Demographics
}

type RentalEstimator interface {
	Estimate(center models.Coordinate, businessType string) models.RentalEstimate
}

// Analyzer runs the enrichment pipeline for one location and derives
// comparisons across several. Stages run sequentially; each stage degrades on
// its own and the pipeline itself never fails.
type Analyzer struct {
	logger       *logrus.Logger
	geocoder     Geocoder
	competitors  CompetitorFinder
	demographics DemographicsSource
	rental       RentalEstimator
}

func NewAnalyzer(logger *logrus.Logger, geocoder Geocoder, competitors CompetitorFinder, demographics DemographicsSource, rental RentalEstimator) *Analyzer {
	return &Analyzer{
		logger:       logger,
		geocoder:     geocoder,
		competitors:  competitors,
		demographics: demographics,
		rental:       rental,
	}
}

// Analyze runs the full pipeline: geocode, competitor search, demographics,
// rental estimate, break-even, and both scores.
func (a *Analyzer) Analyze(ctx context.Context, query models.LocationQuery) models.AnalysisRecord {
	radius := query.Radius
	if radius <= 0 {
		radius = defaultRadius
	}

	center := a.geocoder.Geocode(ctx, query.Location)

	competitors := a.competitors.FindNearby(ctx, center, query.BusinessType, radius)
	demographics := a.demographics.Aggregate(ctx, center, radius)
	rentalEstimate := a.rental.Estimate(center, query.BusinessType)

	breakEven := scoring.CalculateBreakEven(query.BusinessType, len(competitors), demographics, rentalEstimate)
	saturation := scoring.SaturationScore(len(competitors), radius)
	footTraffic := scoring.FootTrafficScore(competitors, demographics)

	record := models.AnalysisRecord{
		SearchID:          uuid.New().String(),
		BusinessType:      query.BusinessType,
		Location:          query.Location,
		CenterLat:         center.Lat,
		CenterLng:         center.Lng,
		CenterLocation:    geojson.NewGeometry(orb.Point{center.Lng, center.Lat}),
		Radius:            radius,
		Competitors:       competitors,
		CompetitorCount:   len(competitors),
		SaturationScore:   saturation,
		Demographics:      demographics,
		RentalEstimates:   rentalEstimate,
		BreakEvenAnalysis: breakEven,
		FootTrafficScore:  footTraffic,
		AnalysisDate:      time.Now().UTC(),
	}

	a.logger.WithFields(logrus.Fields{
		"search_id":        record.SearchID,
		"location":         record.Location,
		"competitor_count": record.CompetitorCount,
		"saturation_score": record.SaturationScore,
		"data_source":      demographics.DataSource,
	}).Info("Completed location analysis")

	return record
}

// Compare validates the location count, analyzes each location in request
// order, and derives the best-per-criterion summary.
func (a *Analyzer) Compare(ctx context.Context, queries []models.LocationQuery) (*models.ComparisonRecord, error) {
	if len(queries) < minComparisonLocations || len(queries) > maxComparisonLocations {
		return nil, ErrInvalidLocationCount
	}

	results := make([]models.AnalysisRecord, 0, len(queries))
	for _, query := range queries {
		results = append(results, a.Analyze(ctx, query))
	}

	record := &models.ComparisonRecord{
		ComparisonID:   uuid.New().String(),
		Locations:      results,
		ComparisonDate: time.Now().UTC(),
		Summary:        buildSummary(results),
	}

	a.logger.WithFields(logrus.Fields{
		"comparison_id": record.ComparisonID,
		"locations":     len(results),
	}).Info("Completed location comparison")

	return record, nil
}

// buildSummary selects the extremum per criterion. Ties go to the first
// location in request order: a later location must be strictly better to
// displace the current pick.
func buildSummary(results []models.AnalysisRecord) models.ComparisonSummary {
	var summary models.ComparisonSummary
	if len(results) == 0 {
		return summary
	}

	bestSaturation := 0
	bestROI := 0
	bestTraffic := 0
	bestPopulation := 0

	for i := 1; i < len(results); i++ {
		if results[i].SaturationScore < results[bestSaturation].SaturationScore {
			bestSaturation = i
		}
		if roiOf(results[i]) > roiOf(results[bestROI]) {
			bestROI = i
		}
		if results[i].FootTrafficScore > results[bestTraffic].FootTrafficScore {
			bestTraffic = i
		}
		if populationOf(results[i]) > populationOf(results[bestPopulation]) {
			bestPopulation = i
		}
	}

	summary.BestForLowCompetition = &results[bestSaturation].Location
	summary.BestForROI = &results[bestROI].Location
	summary.BestForFootTraffic = &results[bestTraffic].Location
	summary.BestForDemographics = &results[bestPopulation].Location
	return summary
}

func roiOf(record models.AnalysisRecord) float64 {
	if record.BreakEvenAnalysis.ROIPercentage == nil {
		return 0
	}
	return *record.BreakEvenAnalysis.ROIPercentage
}

func populationOf(record models.AnalysisRecord) int {
	if record.Demographics.EstimatedPopulation == nil {
		return 0
	}
	return *record.Demographics.EstimatedPopulation
}
