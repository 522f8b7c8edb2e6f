package scoring

import (
	"math"
	"strings"

	"sitewise/server/internal/models"
)

// RevenueModel describes per-type unit economics: revenue per sqft per month,
// operating margin, and typical floor space in sqft.
type RevenueModel struct {
	RevenuePerSqft  float64
	OperatingMargin float64
	AvgSpace        float64
}

var revenueModels = map[string]RevenueModel{
	"restaurant": {RevenuePerSqft: 25, OperatingMargin: 0.15, AvgSpace: 2000},
	"cafe":       {RevenuePerSqft: 30, OperatingMargin: 0.20, AvgSpace: 1000},
	"salon":      {RevenuePerSqft: 35, OperatingMargin: 0.25, AvgSpace: 800},
	"gym":        {RevenuePerSqft: 8, OperatingMargin: 0.30, AvgSpace: 5000},
	"retail":     {RevenuePerSqft: 20, OperatingMargin: 0.18, AvgSpace: 1500},
}

var defaultRevenueModel = RevenueModel{RevenuePerSqft: 20, OperatingMargin: 0.20, AvgSpace: 1500}

const (
	// Each competitor shaves 5% off projected revenue, floored at half.
	competitionPenalty = 0.05
	competitionFloor   = 0.5

	// Initial investment is six months of total costs.
	investmentMonths = 6

	defaultRentPerSqft = 10.0
)

// CalculateBreakEven combines competitor pressure, demographics, and rent
// into revenue, cost, and payback projections. BreakEvenMonths stays nil when
// the projected profit is non-positive.
func CalculateBreakEven(businessType string, competitorCount int, demo models.Demographics, rental models.RentalEstimate) models.BreakEvenAnalysis {
	model, ok := revenueModels[strings.ToLower(businessType)]
	if !ok {
		model = defaultRevenueModel
	}

	competitionFactor := math.Max(competitionFloor, 1-float64(competitorCount)*competitionPenalty)

	spendingFactor := 1.0
	switch {
	case demo.ConsumerSpendingIndex != nil:
		spendingFactor = *demo.ConsumerSpendingIndex / 100
	case demo.EconomicActivityScore != nil:
		spendingFactor = *demo.EconomicActivityScore / 100
	}

	footTraffic := 1.0
	if demo.FootTrafficMultiplier != nil {
		footTraffic = *demo.FootTrafficMultiplier
	}

	incomeFactor := 1.0
	if demo.MedianHouseholdIncome != nil {
		incomeFactor = math.Min(*demo.MedianHouseholdIncome/50000, 2.0)
	}

	educationFactor := 1.0
	if demo.EducationBachelorPlus != nil {
		educationFactor = 1 + *demo.EducationBachelorPlus/100*0.3
	}

	demographicMultiplier := spendingFactor * footTraffic * incomeFactor * educationFactor

	adjustedRevenuePerSqft := model.RevenuePerSqft * competitionFactor * demographicMultiplier

	rentPerSqft := defaultRentPerSqft
	if rental.EstimatedRentPerSqft != nil {
		rentPerSqft = *rental.EstimatedRentPerSqft
	}

	monthlyRevenue := adjustedRevenuePerSqft * model.AvgSpace
	monthlyRent := rentPerSqft * model.AvgSpace
	monthlyOperatingCosts := monthlyRevenue * (1 - model.OperatingMargin)
	monthlyTotalCosts := monthlyRent + monthlyOperatingCosts
	monthlyProfit := monthlyRevenue - monthlyTotalCosts

	initialInvestment := monthlyTotalCosts * investmentMonths

	var breakEvenMonths *float64
	if monthlyProfit > 0 {
		months := round1(initialInvestment / monthlyProfit)
		breakEvenMonths = &months
	}

	annualProfit := monthlyProfit * 12
	roi := 0.0
	if initialInvestment > 0 {
		roi = round1(annualProfit / initialInvestment * 100)
	}

	revenue := round2(monthlyRevenue)
	costs := round2(monthlyTotalCosts)
	yearOne := round2(annualProfit)

	return models.BreakEvenAnalysis{
		EstimatedMonthlyRevenue: &revenue,
		MonthlyCosts:            &costs,
		BreakEvenMonths:         breakEvenMonths,
		ROIPercentage:           &roi,
		ProfitProjectionYear1:   &yearOne,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
