package demographics

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"sitewise/server/internal/models"
)

// Aggregator merges census statistics, a world population grid, and the
// synthetic fallback into one demographic record. Each tier is only attempted
// when the previous one yields nothing, and the air quality lookup is merged
// into whichever tier wins. The aggregator never fails: worst case the record
// carries only AQI fields.
type Aggregator struct {
	logger     *logrus.Logger
	census     *CensusClient
	worldPop   *WorldPopClient
	airQuality *AirQualityClient
}

func NewAggregator(logger *logrus.Logger, census *CensusClient, worldPop *WorldPopClient, airQuality *AirQualityClient) *Aggregator {
	return &Aggregator{
		logger:     logger,
		census:     census,
		worldPop:   worldPop,
		airQuality: airQuality,
	}
}

func (a *Aggregator) Aggregate(ctx context.Context, center models.Coordinate, radius int) models.Demographics {
	var aqi *AirQuality
	if a.airQuality != nil {
		var err error
		aqi, err = a.airQuality.Lookup(ctx, center.Lat, center.Lng)
		if err != nil {
			a.logger.WithError(err).Warn("Air quality lookup failed")
		}
	}

	demo := a.lookupTiers(ctx, center, radius)
	mergeAirQuality(&demo, aqi)
	return demo
}

func (a *Aggregator) lookupTiers(ctx context.Context, center models.Coordinate, radius int) models.Demographics {
	if a.census != nil {
		census, err := a.census.Lookup(ctx, center.Lat, center.Lng)
		if err == nil && census != nil {
			a.logger.WithField("zip_code", census.ZipCode).Info("Using census demographics")
			return fromCensus(census, radius)
		}
		a.logger.WithError(err).Info("Census lookup yielded nothing, trying population grid")
	}

	if a.worldPop != nil {
		population, err := a.worldPop.TotalPopulation(ctx, center.Lat, center.Lng, radius)
		if err == nil && population > 0 {
			a.logger.WithField("population", population).Info("Using world population grid demographics")
			return fromWorldPop(population, radius)
		}
		a.logger.WithError(err).Info("Population grid lookup yielded nothing, using synthetic fallback")
	}

	return GenerateSynthetic(center.Lat, center.Lng, radius)
}

// fromCensus folds the census result and the search radius into a record.
func fromCensus(census *CensusData, radius int) models.Demographics {
	demo := models.Demographics{DataSource: models.SourceCensus}

	areaKm2 := math.Pow(float64(radius)/1000, 2) * math.Pi
	if census.Population != nil && *census.Population > 0 && areaKm2 > 0 {
		density := round2(float64(*census.Population) / areaKm2)
		demo.PopulationDensity = &density
		demo.EstimatedPopulation = census.Population

		urbanRural := math.Min(density/1000, 1.0)
		demo.UrbanRuralIndex = &urbanRural
	}

	// Economic activity blends income ratio and education share, capped at 100.
	income := 50000.0
	if census.MedianIncome != nil {
		income = *census.MedianIncome
	}
	education := 25.0
	if census.EducationBachelorPct > 0 {
		education = census.EducationBachelorPct
	}
	economicScore := round1(math.Min((income/50000*0.6+education/50*0.4)*100, 100))
	demo.EconomicActivityScore = &economicScore

	if census.ZipCode != "" {
		zip := census.ZipCode
		demo.ZipCode = &zip
	}
	demo.MedianHouseholdIncome = census.MedianIncome
	demo.PerCapitaIncome = census.PerCapitaIncome
	demo.MedianAge = census.MedianAge
	if census.EducationBachelorPct > 0 {
		pct := census.EducationBachelorPct
		demo.EducationBachelorPlus = &pct
	}
	demo.AverageSpendingRetail = census.MonthlyRetailSpending
	demo.ConsumerSpendingIndex = census.SpendingIndex
	if census.FootTrafficMultiplier > 0 {
		mult := census.FootTrafficMultiplier
		demo.FootTrafficMultiplier = &mult
	}
	if len(census.IncomeDistribution) > 0 {
		dist := make(map[string]models.IncomeBracket, len(census.IncomeDistribution))
		for label, bracket := range census.IncomeDistribution {
			dist[label] = models.IncomeBracket{Count: bracket.Count, Percentage: bracket.Percentage}
		}
		demo.HouseholdIncomeDistribution = dist
	}
	povertyRate := census.PovertyRate
	demo.PovertyRate = &povertyRate
	unemploymentRate := census.UnemploymentRate
	demo.UnemploymentRate = &unemploymentRate
	demo.AverageHomeValue = census.HomeValue
	demo.RentBurdenPercentage = census.RentBurden
	demo.CommuteTimeMinutes = census.CommuteTime
	demo.SpendingCategories = census.SpendingCategories

	return demo
}

// fromWorldPop derives the coarse indices available from a bare head count.
func fromWorldPop(population float64, radius int) models.Demographics {
	demo := models.Demographics{DataSource: models.SourceWorldPop}

	areaKm2 := math.Pow(float64(radius)/1000, 2) * math.Pi
	if areaKm2 > 0 {
		density := round2(population / areaKm2)
		demo.PopulationDensity = &density

		urbanRural := math.Min(density/1000, 1.0)
		demo.UrbanRuralIndex = &urbanRural

		economicScore := math.Min(density/500, 1.0) * 100
		demo.EconomicActivityScore = &economicScore
	}

	estimated := int(population)
	demo.EstimatedPopulation = &estimated

	return demo
}

// mergeAirQuality overlays the independent AQI lookup onto the record. The
// vendor value wins; the synthetic tier's fabricated AQI only stands when the
// lookup failed.
func mergeAirQuality(demo *models.Demographics, aqi *AirQuality) {
	if aqi == nil {
		return
	}
	value := aqi.AQI
	level := aqi.Level
	demo.AirQualityIndex = &value
	demo.AirQualityLevel = &level
}
