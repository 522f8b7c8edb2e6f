package models

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

// Provenance values for Demographics.DataSource.
const (
	SourceCensus    = "census"
	SourceWorldPop  = "worldpop"
	SourceSynthetic = "synthetic"
)

type LocationQuery struct {
	BusinessType string `json:"business_type" bson:"business_type" binding:"required"`
	Location     string `json:"location" bson:"location" binding:"required"`
	Radius       int    `json:"radius" bson:"radius"`
}

type ComparisonRequest struct {
	Locations []LocationQuery `json:"locations" binding:"required"`
}

type Coordinate struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

type Competitor struct {
	Name       string   `json:"name" bson:"name"`
	Address    string   `json:"address" bson:"address"`
	Rating     *float64 `json:"rating,omitempty" bson:"rating,omitempty"`
	PriceLevel *string  `json:"price_level,omitempty" bson:"price_level,omitempty"`
	Lat        float64  `json:"lat" bson:"lat"`
	Lng        float64  `json:"lng" bson:"lng"`
	PlaceID    string   `json:"place_id" bson:"place_id"`
}

type IncomeBracket struct {
	Count      int     `json:"count" bson:"count"`
	Percentage float64 `json:"percentage" bson:"percentage"`
}

// Demographics is a flat record of independently optional fields. A nil field
// means the data source did not cover this location, not zero. DataSource
// records which tier of the lookup waterfall produced the record so callers
// can tell authoritative data from the synthetic fallback.
type Demographics struct {
	DataSource                  string                   `json:"data_source,omitempty" bson:"data_source,omitempty"`
	PopulationDensity           *float64                 `json:"population_density,omitempty" bson:"population_density,omitempty"`
	EstimatedPopulation         *int                     `json:"estimated_population,omitempty" bson:"estimated_population,omitempty"`
	UrbanRuralIndex             *float64                 `json:"urban_rural_index,omitempty" bson:"urban_rural_index,omitempty"`
	EconomicActivityScore       *float64                 `json:"economic_activity_score,omitempty" bson:"economic_activity_score,omitempty"`
	AirQualityIndex             *int                     `json:"air_quality_index,omitempty" bson:"air_quality_index,omitempty"`
	AirQualityLevel             *string                  `json:"air_quality_level,omitempty" bson:"air_quality_level,omitempty"`
	MedianHouseholdIncome       *float64                 `json:"median_household_income,omitempty" bson:"median_household_income,omitempty"`
	MedianAge                   *float64                 `json:"median_age,omitempty" bson:"median_age,omitempty"`
	EducationBachelorPlus       *float64                 `json:"education_bachelor_plus,omitempty" bson:"education_bachelor_plus,omitempty"`
	AverageSpendingRetail       *float64                 `json:"average_spending_retail,omitempty" bson:"average_spending_retail,omitempty"`
	ConsumerSpendingIndex       *float64                 `json:"consumer_spending_index,omitempty" bson:"consumer_spending_index,omitempty"`
	FootTrafficMultiplier       *float64                 `json:"foot_traffic_multiplier,omitempty" bson:"foot_traffic_multiplier,omitempty"`
	ZipCode                     *string                  `json:"zip_code,omitempty" bson:"zip_code,omitempty"`
	PerCapitaIncome             *float64                 `json:"per_capita_income,omitempty" bson:"per_capita_income,omitempty"`
	HouseholdIncomeDistribution map[string]IncomeBracket `json:"household_income_distribution,omitempty" bson:"household_income_distribution,omitempty"`
	PovertyRate                 *float64                 `json:"poverty_rate,omitempty" bson:"poverty_rate,omitempty"`
	UnemploymentRate            *float64                 `json:"unemployment_rate,omitempty" bson:"unemployment_rate,omitempty"`
	AverageHomeValue            *float64                 `json:"average_home_value,omitempty" bson:"average_home_value,omitempty"`
	RentBurdenPercentage        *float64                 `json:"rent_burden_percentage,omitempty" bson:"rent_burden_percentage,omitempty"`
	CommuteTimeMinutes          *float64                 `json:"commute_time_minutes,omitempty" bson:"commute_time_minutes,omitempty"`
	SpendingCategories          map[string]float64       `json:"spending_categories,omitempty" bson:"spending_categories,omitempty"`
}

type RentalEstimate struct {
	EstimatedRentPerSqft *float64 `json:"estimated_rent_per_sqft" bson:"estimated_rent_per_sqft"`
	RentalIndex          *string  `json:"rental_index" bson:"rental_index"`
	MarketTier           *string  `json:"market_tier" bson:"market_tier"`
}

// BreakEvenAnalysis holds the projected economics for one location.
// BreakEvenMonths is nil when the projected monthly profit is non-positive;
// there is no numeric sentinel for "never breaks even".
type BreakEvenAnalysis struct {
	EstimatedMonthlyRevenue *float64 `json:"estimated_monthly_revenue" bson:"estimated_monthly_revenue"`
	MonthlyCosts            *float64 `json:"monthly_costs" bson:"monthly_costs"`
	BreakEvenMonths         *float64 `json:"break_even_months" bson:"break_even_months"`
	ROIPercentage           *float64 `json:"roi_percentage" bson:"roi_percentage"`
	ProfitProjectionYear1   *float64 `json:"profit_projection_year1" bson:"profit_projection_year1"`
}

// AnalysisRecord is the durable result of one location analysis. It is
// written once and never mutated. CenterLocation is a GeoJSON point so the
// store can keep a 2dsphere index on it.
type AnalysisRecord struct {
	SearchID          string            `json:"search_id" bson:"search_id"`
	BusinessType      string            `json:"business_type" bson:"business_type"`
	Location          string            `json:"location" bson:"location"`
	CenterLat         float64           `json:"center_lat" bson:"center_lat"`
	CenterLng         float64           `json:"center_lng" bson:"center_lng"`
	CenterLocation    *geojson.Geometry `json:"center_location" bson:"center_location"`
	Radius            int               `json:"radius" bson:"radius"`
	Competitors       []Competitor      `json:"competitors" bson:"competitors"`
	CompetitorCount   int               `json:"competitor_count" bson:"competitor_count"`
	SaturationScore   float64           `json:"saturation_score" bson:"saturation_score"`
	Demographics      Demographics      `json:"demographics" bson:"demographics"`
	RentalEstimates   RentalEstimate    `json:"rental_estimates" bson:"rental_estimates"`
	BreakEvenAnalysis BreakEvenAnalysis `json:"break_even_analysis" bson:"break_even_analysis"`
	FootTrafficScore  float64           `json:"foot_traffic_score" bson:"foot_traffic_score"`
	AnalysisDate      time.Time         `json:"analysis_date" bson:"analysis_date"`
}

// ComparisonSummary names the best location per criterion. Ties are resolved
// in favor of the first location in request order.
type ComparisonSummary struct {
	BestForLowCompetition *string `json:"best_for_low_competition" bson:"best_for_low_competition"`
	BestForROI            *string `json:"best_for_roi" bson:"best_for_roi"`
	BestForFootTraffic    *string `json:"best_for_foot_traffic" bson:"best_for_foot_traffic"`
	BestForDemographics   *string `json:"best_for_demographics" bson:"best_for_demographics"`
}

type ComparisonRecord struct {
	ComparisonID   string            `json:"comparison_id" bson:"comparison_id"`
	Locations      []AnalysisRecord  `json:"locations" bson:"locations"`
	ComparisonDate time.Time         `json:"comparison_date" bson:"comparison_date"`
	Summary        ComparisonSummary `json:"summary" bson:"summary"`
}
