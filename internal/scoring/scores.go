package scoring

import (
	"math"

	"sitewise/server/internal/models"
)

// saturation step thresholds, in competitors per km2.
var saturationSteps = []struct {
	MaxDensity float64
	Score      float64
}{
	{0.5, 20},
	{1, 40},
	{2, 60},
	{3, 80},
}

const saturationMax = 100.0

// SaturationScore maps competitor density inside the search radius onto the
// 0-100 step scale. It is a step function, deliberately not continuous.
func SaturationScore(competitorCount int, radius int) float64 {
	areaKm2 := math.Pow(float64(radius)/1000, 2) * math.Pi
	if areaKm2 <= 0 {
		return saturationMax
	}
	return saturationBucket(float64(competitorCount) / areaKm2)
}

func saturationBucket(density float64) float64 {
	for _, step := range saturationSteps {
		if density < step.MaxDensity {
			return step.Score
		}
	}
	return saturationMax
}

const (
	noCompetitorTrafficScore = 30.0
	defaultCompetitorRating  = 3.5
	defaultDensity           = 1000.0
	densityCeiling           = 5000.0
)

// FootTrafficScore estimates pedestrian volume from the mean competitor
// rating (area attractiveness) and population density. With no competitors
// there is no signal and the score is a flat 30.0.
func FootTrafficScore(competitors []models.Competitor, demo models.Demographics) float64 {
	if len(competitors) == 0 {
		return noCompetitorTrafficScore
	}

	sum := 0.0
	count := 0
	for _, c := range competitors {
		if c.Rating != nil {
			sum += *c.Rating
			count++
		}
	}
	avgRating := defaultCompetitorRating
	if count > 0 {
		avgRating = sum / float64(count)
	}

	density := defaultDensity
	if demo.PopulationDensity != nil && *demo.PopulationDensity > 0 {
		density = *demo.PopulationDensity
	}
	densityFactor := math.Min(density/densityCeiling, 1.0)

	score := (avgRating/5.0)*0.6 + densityFactor*0.4
	return math.Round(score*100*10) / 10
}
