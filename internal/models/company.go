package models

import "strings"

// Recommendation is the analyst call attached to an investment thesis.
type Recommendation string

const (
	RecommendationBuy  Recommendation = "Buy"
	RecommendationHold Recommendation = "Hold"
	RecommendationSell Recommendation = "Sell"
)

// Conviction grades how strongly the recommendation is held.
type Conviction string

const (
	ConvictionHigh       Conviction = "High"
	ConvictionMediumHigh Conviction = "Medium-High"
	ConvictionMedium     Conviction = "Medium"
	ConvictionLow        Conviction = "Low"
)

// Company is one covered company in the investment document.
// Ticker is the join key against theses and quote lookups.
type Company struct {
	Name             string           `json:"name"`
	Ticker           string           `json:"ticker"`
	Industry         Industry         `json:"industry"`
	Metadata         CompanyMetadata  `json:"metadata"`
	InvestmentThesis InvestmentThesis `json:"investmentThesis"`
	QuantitativeData QuantitativeData `json:"quantitativeData"`
}

// Industry classifies a company.
type Industry struct {
	Sector      string `json:"sector"`
	SubIndustry string `json:"subIndustry"`
}

// CompanyMetadata holds optional descriptive facts.
type CompanyMetadata struct {
	Founded      *string `json:"founded,omitempty"`
	Headquarters *string `json:"headquarters,omitempty"`
}

// InvestmentThesis is the structured research view on a company.
type InvestmentThesis struct {
	Recommendation     Recommendation `json:"recommendation"`
	Conviction         Conviction     `json:"conviction"`
	KeyDrivers         []string       `json:"keyDrivers"`
	ExpectedReturn     ExpectedReturn `json:"expectedReturn"`
	RiskAssessment     RiskAssessment `json:"riskAssessment"`
	MonitoringTriggers []string       `json:"monitoringTriggers"`
}

// ExpectedReturn is a projected return over a timeframe, in percent.
type ExpectedReturn struct {
	Value     float64 `json:"value"`
	Timeframe string  `json:"timeframe"`
}

// RiskAssessment summarises the downside view.
type RiskAssessment struct {
	Level   string   `json:"level"`
	Factors []string `json:"factors"`
}

// QuantitativeData groups numeric metrics. A nil pointer means the
// metric was not computed for this company.
type QuantitativeData struct {
	ValuationMetrics ValuationMetrics `json:"valuationMetrics"`
	GrowthRates      GrowthRates      `json:"growthRates"`
	FinancialRatios  FinancialRatios  `json:"financialRatios"`
	RiskMetrics      RiskMetrics      `json:"riskMetrics"`
}

type ValuationMetrics struct {
	MarketCap *float64 `json:"marketCap"`
	PERatio   *float64 `json:"peRatio"`
	PBRatio   *float64 `json:"pbRatio"`
}

type GrowthRates struct {
	RevenueGrowth RevenueGrowth `json:"revenueGrowth"`
}

type RevenueGrowth struct {
	Value     *float64 `json:"value"`
	Timeframe *string  `json:"timeframe"`
}

type FinancialRatios struct {
	ProfitMargin ProfitMargin `json:"profitMargin"`
}

type ProfitMargin struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

type RiskMetrics struct {
	Probability *float64 `json:"probability"`
	Impact      *float64 `json:"impact"`
}

// InvestmentDocument is the payload served by /api/insights/investment.
type InvestmentDocument struct {
	Companies []Company `json:"companies"`
}

// Thesis is free-text research narrative for a ticker.
type Thesis struct {
	Ticker string `json:"ticker"`
	Thesis string `json:"thesis"`
}

// ThesisDocument is the payload served by /api/insights/thesis.
type ThesisDocument struct {
	Investments []Thesis `json:"investments"`
}

// SameTicker compares tickers case-insensitively, ignoring surrounding space.
func SameTicker(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
