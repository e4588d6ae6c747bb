package mcp

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/symphony/internal/models"
)

func formatSigned(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func formatSignedPct(v float64) string {
	return formatSigned(v) + "%"
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatOptionalVolume(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// formatQuote formats a quote as markdown
func formatQuote(symbol string, q *models.StockQuote) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", symbol))
	sb.WriteString(fmt.Sprintf("**Price:** %.2f\n", q.RegularMarketPrice))
	sb.WriteString(fmt.Sprintf("**Change:** %s (%s)\n", formatSigned(q.RegularMarketChange), formatSignedPct(q.RegularMarketChangePercent)))
	sb.WriteString(fmt.Sprintf("**Previous Close:** %.2f\n", q.RegularMarketPreviousClose))
	sb.WriteString(fmt.Sprintf("**Open:** %s\n", formatOptional(q.RegularMarketOpen)))
	sb.WriteString(fmt.Sprintf("**Day Range:** %s - %s\n", formatOptional(q.RegularMarketDayLow), formatOptional(q.RegularMarketDayHigh)))
	return sb.String()
}

// formatHistory summarises the period and lists the most recent bars
func formatHistory(symbol string, c *models.StockCandles, bars int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s Price History\n\n", symbol))

	points := c.Closes()
	if len(points) == 0 {
		sb.WriteString("No price data for this period.\n")
		return sb.String()
	}

	first, last := points[0], points[len(points)-1]
	high, low := first.Close, first.Close
	for _, p := range points {
		if p.Close > high {
			high = p.Close
		}
		if p.Close < low {
			low = p.Close
		}
	}

	sb.WriteString(fmt.Sprintf("**Bars:** %d (%d with a close)\n", len(c.Timestamp), len(points)))
	sb.WriteString(fmt.Sprintf("**Period:** %s to %s\n", first.Time.Format("2006-01-02"), last.Time.Format("2006-01-02")))
	if first.Close != 0 {
		change := last.Close - first.Close
		sb.WriteString(fmt.Sprintf("**Change:** %s (%s)\n", formatSigned(change), formatSignedPct(change/first.Close*100)))
	}
	sb.WriteString(fmt.Sprintf("**Close Range:** %.2f - %.2f\n\n", low, high))

	start := len(c.Timestamp) - bars
	if start < 0 {
		start = 0
	}
	sb.WriteString("| Date | Open | High | Low | Close | Volume |\n")
	sb.WriteString("|------|------|------|-----|-------|--------|\n")
	for i := len(c.Timestamp) - 1; i >= start; i-- {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			time.Unix(c.Timestamp[i], 0).UTC().Format("2006-01-02 15:04"),
			formatOptional(at(c.Open, i)),
			formatOptional(at(c.High, i)),
			formatOptional(at(c.Low, i)),
			formatOptional(at(c.Close, i)),
			formatOptionalVolume(at(c.Volume, i)),
		))
	}
	return sb.String()
}

func at[T any](s []*T, i int) *T {
	if i < len(s) {
		return s[i]
	}
	return nil
}

// formatInsights lists covered companies grouped by recommendation
func formatInsights(folder string, companies []models.Company) string {
	var sb strings.Builder
	sb.WriteString("# Investment Insights\n\n")
	sb.WriteString(fmt.Sprintf("**Research Run:** %s\n", folder))
	sb.WriteString(fmt.Sprintf("**Companies:** %d\n\n", len(companies)))

	if len(companies) == 0 {
		sb.WriteString("No companies in this run.\n")
		return sb.String()
	}

	sorted := make([]models.Company, len(companies))
	copy(sorted, companies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ticker < sorted[j].Ticker })

	sb.WriteString("| Ticker | Name | Sector | Rec | Conviction | Expected Return |\n")
	sb.WriteString("|--------|------|--------|-----|------------|-----------------|\n")
	for _, c := range sorted {
		th := c.InvestmentThesis
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s over %s |\n",
			c.Ticker, c.Name, c.Industry.Sector, th.Recommendation, th.Conviction,
			formatSignedPct(th.ExpectedReturn.Value), th.ExpectedReturn.Timeframe))
	}
	return sb.String()
}

// formatCompany renders one company's research view
func formatCompany(c *models.Company, thesis *models.Thesis) string {
	var sb strings.Builder
	th := c.InvestmentThesis
	q := c.QuantitativeData

	sb.WriteString(fmt.Sprintf("# %s (%s)\n\n", c.Name, c.Ticker))
	sb.WriteString(fmt.Sprintf("**Sector:** %s / %s\n", c.Industry.Sector, c.Industry.SubIndustry))
	if c.Metadata.Headquarters != nil {
		sb.WriteString(fmt.Sprintf("**Headquarters:** %s\n", *c.Metadata.Headquarters))
	}
	if c.Metadata.Founded != nil {
		sb.WriteString(fmt.Sprintf("**Founded:** %s\n", *c.Metadata.Founded))
	}
	sb.WriteString(fmt.Sprintf("**Recommendation:** %s (%s conviction)\n", th.Recommendation, th.Conviction))
	sb.WriteString(fmt.Sprintf("**Expected Return:** %s over %s\n", formatSignedPct(th.ExpectedReturn.Value), th.ExpectedReturn.Timeframe))
	sb.WriteString(fmt.Sprintf("**Risk Level:** %s\n\n", th.RiskAssessment.Level))

	writeList(&sb, "Key Drivers", th.KeyDrivers)
	writeList(&sb, "Risk Factors", th.RiskAssessment.Factors)
	writeList(&sb, "Monitoring Triggers", th.MonitoringTriggers)

	sb.WriteString("## Metrics\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Market Cap | %s |\n", formatOptional(q.ValuationMetrics.MarketCap)))
	sb.WriteString(fmt.Sprintf("| P/E | %s |\n", formatOptional(q.ValuationMetrics.PERatio)))
	sb.WriteString(fmt.Sprintf("| P/B | %s |\n", formatOptional(q.ValuationMetrics.PBRatio)))
	growth := formatOptional(q.GrowthRates.RevenueGrowth.Value)
	if q.GrowthRates.RevenueGrowth.Timeframe != nil && q.GrowthRates.RevenueGrowth.Value != nil {
		growth += " (" + *q.GrowthRates.RevenueGrowth.Timeframe + ")"
	}
	sb.WriteString(fmt.Sprintf("| Revenue Growth | %s |\n", growth))
	sb.WriteString(fmt.Sprintf("| Profit Margin | %s %s |\n", formatOptional(q.FinancialRatios.ProfitMargin.Value), q.FinancialRatios.ProfitMargin.Unit))
	sb.WriteString(fmt.Sprintf("| Risk Probability | %s |\n", formatOptional(q.RiskMetrics.Probability)))
	sb.WriteString(fmt.Sprintf("| Risk Impact | %s |\n\n", formatOptional(q.RiskMetrics.Impact)))

	if thesis != nil && thesis.Thesis != "" {
		sb.WriteString("## Thesis\n\n")
		sb.WriteString(thesis.Thesis)
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	for _, item := range items {
		sb.WriteString("- " + item + "\n")
	}
	sb.WriteString("\n")
}
