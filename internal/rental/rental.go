package rental

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"sitewise/server/internal/models"
)

// CityRate holds the per-city rental table entry, in USD per sqft per month.
type CityRate struct {
	Name       string
	Lat        float64
	Lng        float64
	Commercial float64
	Retail     float64
	Tier       string
}

// cityRates is an ordered table; selection is by coordinate proximity, never
// by map iteration order.
var cityRates = []CityRate{
	{"mumbai", 19.0760, 72.8777, 15, 20, "Tier 1"},
	{"delhi", 28.6139, 77.2090, 12, 18, "Tier 1"},
	{"bangalore", 12.9716, 77.5946, 10, 15, "Tier 1"},
	{"pune", 18.5204, 73.8567, 8, 12, "Tier 2"},
	{"london", 51.5074, -0.1278, 50, 70, "Global Tier 1"},
	{"newyork", 40.7128, -74.0060, 60, 80, "Global Tier 1"},
}

var defaultRate = CityRate{Name: "default", Commercial: 8, Retail: 12, Tier: "Tier 3"}

// cityProximityThreshold is the L1 degree distance within which a coordinate
// is priced as the nearest table city.
const cityProximityThreshold = 0.75

// businessMultipliers scale the retail rate per business type.
var businessMultipliers = map[string]float64{
	"restaurant": 1.3,
	"cafe":       1.1,
	"salon":      1.0,
	"gym":        0.8,
	"retail":     1.2,
	"store":      1.0,
}

type Estimator struct {
	logger *logrus.Logger
}

func NewEstimator(logger *logrus.Logger) *Estimator {
	return &Estimator{logger: logger}
}

// Estimate prices the location from the city table and the business-type
// multiplier. The city is chosen by coordinate proximity; coordinates far
// from every table city get the default tier.
func (e *Estimator) Estimate(center models.Coordinate, businessType string) models.RentalEstimate {
	city := rateForCoordinate(center)

	multiplier := 1.0
	if m, ok := businessMultipliers[strings.ToLower(businessType)]; ok {
		multiplier = m
	}

	rate := math.Round(city.Retail*multiplier*100) / 100
	index := fmt.Sprintf("$%.2f/sqft/month", rate)
	tier := city.Tier

	e.logger.WithFields(logrus.Fields{
		"city":          city.Name,
		"business_type": businessType,
		"rate":          rate,
	}).Debug("Estimated rental rate")

	return models.RentalEstimate{
		EstimatedRentPerSqft: &rate,
		RentalIndex:          &index,
		MarketTier:           &tier,
	}
}

func rateForCoordinate(center models.Coordinate) CityRate {
	best := defaultRate
	bestDistance := math.Inf(1)

	for _, city := range cityRates {
		distance := math.Abs(center.Lat-city.Lat) + math.Abs(center.Lng-city.Lng)
		if distance < bestDistance && distance <= cityProximityThreshold {
			bestDistance = distance
			best = city
		}
	}
	return best
}
