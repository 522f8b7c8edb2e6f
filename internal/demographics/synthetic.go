package demographics

import (
	"fmt"
	"math"
	"math/rand"

	"sitewise/server/internal/models"
)

// populationCenters drive the fallback population estimate. Densities are
// rough people-per-km2 figures for each metro core.
var populationCenters = []struct {
	Name    string
	Lat     float64
	Lng     float64
	Density float64
}{
	{"delhi", 28.6, 77.2, 11000},
	{"mumbai", 19.1, 72.9, 20700},
	{"bangalore", 12.9, 77.6, 4100},
	{"kolkata", 22.6, 88.4, 24000},
	{"chennai", 13.1, 80.3, 26000},
	{"london", 51.5, -0.1, 5600},
	{"newyork", 40.7, -74.0, 10900},
	{"tokyo", 35.7, 139.7, 6200},
}

// tierCities classify a coordinate into a market tier by proximity.
var tierCities = []struct {
	Name string
	Lat  float64
	Lng  float64
	Tier string
}{
	{"mumbai", 19.1, 72.9, "metro"},
	{"delhi", 28.6, 77.2, "metro"},
	{"bangalore", 12.9, 77.6, "metro"},
	{"london", 51.5, -0.1, "global"},
	{"newyork", 40.7, -74.0, "global"},
}

// tierProximityThreshold is the L1 distance in degrees within which a
// coordinate inherits the nearest reference city's tier.
const tierProximityThreshold = 0.5

// GenerateSynthetic emits a fully populated demographic record with plausible
// values for demonstration purposes. The generator is seeded from the
// coordinate, so repeated calls for the same point return identical data. The
// record is tagged SourceSynthetic so it is never mistaken for census output.
func GenerateSynthetic(lat, lng float64, radius int) models.Demographics {
	rng := rand.New(rand.NewSource(int64((lat + lng) * 1000)))

	tier := classifyTier(lat, lng)

	var baseIncome, educationPct, aqi int
	var zipCode string
	switch tier {
	case "global":
		baseIncome = randInt(rng, 65000, 95000)
		zipCode = fmt.Sprintf("%d", randInt(rng, 10000, 99999))
		aqi = randInt(rng, 25, 65)
		educationPct = randInt(rng, 45, 75)
	case "metro":
		baseIncome = randInt(rng, 45000, 75000)
		zipCode = fmt.Sprintf("%d", randInt(rng, 100000, 999999))
		aqi = randInt(rng, 80, 150)
		educationPct = randInt(rng, 35, 60)
	default: // suburban
		baseIncome = randInt(rng, 35000, 55000)
		zipCode = fmt.Sprintf("%d", randInt(rng, 10000, 99999))
		aqi = randInt(rng, 40, 90)
		educationPct = randInt(rng, 25, 45)
	}

	perCapita := float64(int(float64(baseIncome) * randFloat(rng, 0.6, 0.8)))
	medianAge := float64(randInt(rng, 28, 42))
	monthlyRetail := round2(float64(baseIncome) * 0.12 / 12)
	spendingIndex := round1(float64(baseIncome) / 60000 * 100)
	footTraffic := round2(randFloat(rng, 0.8, 1.4))

	incomeDistribution := map[string]models.IncomeBracket{
		"under_50k": {Percentage: float64(randInt(rng, 20, 40))},
		"50k_100k":  {Percentage: float64(randInt(rng, 35, 50))},
		"100k_plus": {Percentage: float64(randInt(rng, 15, 30))},
	}

	annualSpending := float64(baseIncome) * 0.72
	spendingCategories := map[string]float64{
		"housing":         round2(annualSpending * 0.33),
		"food":            round2(annualSpending * 0.13),
		"transportation":  round2(annualSpending * 0.16),
		"retail_shopping": round2(annualSpending * 0.12),
		"entertainment":   round2(annualSpending * 0.05),
		"other":           round2(annualSpending * 0.21),
	}

	povertyRate := float64(randInt(rng, 8, 18))
	unemploymentRate := float64(randInt(rng, 3, 8))
	homeValue := float64(randInt(rng, 200000, 800000))
	rentBurden := float64(randInt(rng, 25, 45))
	commuteTime := float64(randInt(rng, 18, 35))

	population := EstimatePopulation(lat, lng, radius)
	areaKm2 := math.Pow(float64(radius)/1000, 2) * math.Pi
	density := 0.0
	if areaKm2 > 0 {
		density = round2(float64(population) / areaKm2)
	}

	income := float64(baseIncome)
	aqiLevel := aqiLevelFor(aqi)
	urbanRural := 0.5
	economicScore := 50.0

	return models.Demographics{
		DataSource:                  models.SourceSynthetic,
		PopulationDensity:           &density,
		EstimatedPopulation:         &population,
		UrbanRuralIndex:             &urbanRural,
		EconomicActivityScore:       &economicScore,
		AirQualityIndex:             &aqi,
		AirQualityLevel:             &aqiLevel,
		ZipCode:                     &zipCode,
		MedianHouseholdIncome:       &income,
		PerCapitaIncome:             &perCapita,
		MedianAge:                   &medianAge,
		EducationBachelorPlus:       floatPtr(float64(educationPct)),
		AverageSpendingRetail:       &monthlyRetail,
		ConsumerSpendingIndex:       &spendingIndex,
		FootTrafficMultiplier:       &footTraffic,
		HouseholdIncomeDistribution: incomeDistribution,
		PovertyRate:                 &povertyRate,
		UnemploymentRate:            &unemploymentRate,
		AverageHomeValue:            &homeValue,
		RentBurdenPercentage:        &rentBurden,
		CommuteTimeMinutes:          &commuteTime,
		SpendingCategories:          spendingCategories,
	}
}

// EstimatePopulation approximates the population inside the search radius
// from the nearest known metro core, decaying density with distance.
func EstimatePopulation(lat, lng float64, radius int) int {
	minDistance := math.Inf(1)
	closestDensity := 2000.0 // default suburban density

	for _, center := range populationCenters {
		distance := math.Sqrt(math.Pow(lat-center.Lat, 2) + math.Pow(lng-center.Lng, 2))
		if distance < minDistance {
			minDistance = distance
			densityFactor := math.Max(0.1, 1-distance*50)
			closestDensity = center.Density * densityFactor
		}
	}

	areaKm2 := math.Pow(float64(radius)/1000, 2) * math.Pi
	return int(closestDensity * areaKm2)
}

func classifyTier(lat, lng float64) string {
	tier := "suburban"
	minDistance := math.Inf(1)

	for _, city := range tierCities {
		distance := math.Abs(lat-city.Lat) + math.Abs(lng-city.Lng)
		if distance < minDistance {
			minDistance = distance
			if distance < tierProximityThreshold {
				tier = city.Tier
			}
		}
	}
	return tier
}

func aqiLevelFor(aqi int) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	default:
		return "Unhealthy"
	}
}

// randInt returns a uniform value in [min, max].
func randInt(rng *rand.Rand, min, max int) int {
	return min + rng.Intn(max-min+1)
}

// randFloat returns a uniform value in [min, max).
func randFloat(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

func floatPtr(v float64) *float64 {
	return &v
}
