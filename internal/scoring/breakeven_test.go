package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sitewise/server/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestCalculateBreakEvenBaseline(t *testing.T) {
	// Neutral demographics, no competitors, default rent.
	result := CalculateBreakEven("cafe", 0, models.Demographics{}, models.RentalEstimate{})

	// Revenue: 30 * 1000 = 30000.
	assert.InDelta(t, 30000, *result.EstimatedMonthlyRevenue, 0.001)
	// Costs: rent 10*1000 + operating 30000*0.8 = 34000.
	assert.InDelta(t, 34000, *result.MonthlyCosts, 0.001)
	// Profit is negative, so payback is undefined.
	assert.Nil(t, result.BreakEvenMonths)
	assert.NotNil(t, result.ROIPercentage)
	assert.NotNil(t, result.ProfitProjectionYear1)
	assert.InDelta(t, -48000, *result.ProfitProjectionYear1, 0.001)
}

func TestCalculateBreakEvenProfitable(t *testing.T) {
	demo := models.Demographics{
		ConsumerSpendingIndex: floatPtr(150),
		FootTrafficMultiplier: floatPtr(1.5),
		MedianHouseholdIncome: floatPtr(100000),
		EducationBachelorPlus: floatPtr(50),
	}
	rent := models.RentalEstimate{EstimatedRentPerSqft: floatPtr(20)}

	result := CalculateBreakEven("salon", 0, demo, rent)

	// Multiplier: 1.5 * 1.5 * 2.0 * 1.15 = 5.175; revenue/sqft 35*5.175.
	revenue := 35.0 * 5.175 * 800
	operating := revenue * 0.75
	costs := 20.0*800 + operating
	profit := revenue - costs
	investment := costs * 6

	assert.InDelta(t, revenue, *result.EstimatedMonthlyRevenue, 0.01)
	assert.InDelta(t, costs, *result.MonthlyCosts, 0.01)
	assert.NotNil(t, result.BreakEvenMonths)
	assert.InDelta(t, investment/profit, *result.BreakEvenMonths, 0.1)
	assert.InDelta(t, profit*12/investment*100, *result.ROIPercentage, 0.1)
}

func TestCalculateBreakEvenCompetitionFactor(t *testing.T) {
	demo := models.Demographics{}

	// Revenue shrinks by 5% per competitor.
	few := CalculateBreakEven("retail", 2, demo, models.RentalEstimate{})
	assert.InDelta(t, 20*0.9*1500, *few.EstimatedMonthlyRevenue, 0.001)

	// The factor floors at 0.5 no matter how many competitors.
	many := CalculateBreakEven("retail", 50, demo, models.RentalEstimate{})
	assert.InDelta(t, 20*0.5*1500, *many.EstimatedMonthlyRevenue, 0.001)
}

func TestCalculateBreakEvenMonthsAbsentWhenUnprofitable(t *testing.T) {
	// Crushing rent guarantees a loss.
	rent := models.RentalEstimate{EstimatedRentPerSqft: floatPtr(500)}

	for _, businessType := range []string{"restaurant", "cafe", "gym", "unknown"} {
		result := CalculateBreakEven(businessType, 10, models.Demographics{}, rent)
		assert.Nil(t, result.BreakEvenMonths, "type %s", businessType)
		assert.NotNil(t, result.ROIPercentage)
	}
}

func TestCalculateBreakEvenUnknownTypeUsesDefaultModel(t *testing.T) {
	result := CalculateBreakEven("bookbindery", 0, models.Demographics{}, models.RentalEstimate{})
	// Default model: 20/sqft over 1500 sqft.
	assert.InDelta(t, 30000, *result.EstimatedMonthlyRevenue, 0.001)
}

func TestCalculateBreakEvenSpendingFactorPreference(t *testing.T) {
	rent := models.RentalEstimate{EstimatedRentPerSqft: floatPtr(10)}

	// Consumer spending index wins over economic activity score.
	both := models.Demographics{
		ConsumerSpendingIndex: floatPtr(200),
		EconomicActivityScore: floatPtr(50),
	}
	indexOnly := CalculateBreakEven("cafe", 0, both, rent)
	assert.InDelta(t, 30*2.0*1000, *indexOnly.EstimatedMonthlyRevenue, 0.001)

	// Economic activity score is the fallback.
	scoreOnly := models.Demographics{EconomicActivityScore: floatPtr(50)}
	fallback := CalculateBreakEven("cafe", 0, scoreOnly, rent)
	assert.InDelta(t, 30*0.5*1000, *fallback.EstimatedMonthlyRevenue, 0.001)
}
