package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/bobmcallan/symphony/internal/app"
	"github.com/bobmcallan/symphony/internal/common"
	"github.com/bobmcallan/symphony/internal/dashboard"
	"github.com/bobmcallan/symphony/internal/models"
)

var (
	configPath  = flag.String("config", "", "Configuration file path")
	apiURL      = flag.String("api", "", "Dashboard API base URL (overrides config)")
	ticker      = flag.String("ticker", "", "Show the detail view for one ticker")
	timeframe   = flag.String("timeframe", "month", "History window for the detail view: week, month or year")
	watch       = flag.Bool("watch", false, "Keep refreshing quotes at the configured interval")
	logLevel    = flag.String("log-level", "warn", "Log level for stderr output")
	showVersion = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	common.LoadVersionFromFile()
	if *showVersion {
		fmt.Printf("symphony version %s\n", common.GetVersion())
		return
	}

	config, err := common.LoadConfig(app.ResolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *apiURL != "" {
		config.Dashboard.APIURL = *apiURL
	}

	tf, err := dashboard.ParseTimeframe(*timeframe)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := common.NewLoggerWithOutput(*logLevel, os.Stderr)
	d := dashboard.NewFromConfig(config.Dashboard, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	render := func() error {
		if *ticker != "" {
			return renderDetail(ctx, os.Stdout, d, *ticker, tf)
		}
		return renderGrid(ctx, os.Stdout, d)
	}

	if err := render(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !*watch {
		return
	}

	refresh := time.NewTicker(config.Dashboard.GetRefreshInterval())
	defer refresh.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-refresh.C:
			fmt.Fprint(os.Stdout, "\033[H\033[2J")
			if err := render(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
	}
}

// renderGrid prints one row per company with its live quote.
func renderGrid(ctx context.Context, out io.Writer, d *dashboard.Dashboard) error {
	d.Companies.EnsureLoaded(ctx)
	state := d.Companies.Snapshot()
	if state.Error != nil {
		return fmt.Errorf("%s", *state.Error)
	}

	fmt.Fprintln(out, "TradeSymphony Dashboard")
	fmt.Fprintf(out, "AI-Powered Investment Analysis  (%d companies, updated %s)\n\n",
		len(state.Records), time.Now().Format("15:04:05"))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tNAME\tSECTOR\tCALL\tCONVICTION\tEXP. RETURN\tPRICE\tCHANGE")
	for _, c := range state.Records {
		price, change := "-", "-"
		if q, err := d.API.GetStockQuote(ctx, c.Ticker); err == nil {
			price = fmt.Sprintf("%.2f", q.RegularMarketPrice)
			change = fmt.Sprintf("%+.2f (%+.2f%%)", q.RegularMarketChange, q.RegularMarketChangePercent)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Ticker,
			c.Name,
			c.Industry.Sector,
			c.InvestmentThesis.Recommendation,
			c.InvestmentThesis.Conviction,
			expectedReturn(c.InvestmentThesis.ExpectedReturn),
			price,
			change,
		)
	}
	return tw.Flush()
}

// renderDetail prints the company, its thesis and a price summary for the timeframe.
func renderDetail(ctx context.Context, out io.Writer, d *dashboard.Dashboard, symbol string, tf dashboard.Timeframe) error {
	d.Companies.EnsureLoaded(ctx)
	d.Theses.EnsureLoaded(ctx)

	if state := d.Companies.Snapshot(); state.Error != nil {
		return fmt.Errorf("%s", *state.Error)
	}

	detail, ok := d.Detail(symbol)
	if !ok {
		return fmt.Errorf("company %s not found", strings.ToUpper(symbol))
	}
	c := detail.Company
	it := c.InvestmentThesis

	fmt.Fprintf(out, "%s (%s)\n", c.Name, c.Ticker)
	fmt.Fprintf(out, "%s / %s\n\n", c.Industry.Sector, c.Industry.SubIndustry)

	if q, err := d.API.GetStockQuote(ctx, c.Ticker); err == nil {
		fmt.Fprintf(out, "Price %.2f  %+.2f (%+.2f%%)  prev close %.2f\n",
			q.RegularMarketPrice, q.RegularMarketChange, q.RegularMarketChangePercent, q.RegularMarketPreviousClose)
	} else {
		fmt.Fprintln(out, "Price unavailable")
	}

	if candles, err := d.API.GetStockCandles(ctx, c.Ticker, tf); err == nil {
		points := candles.Closes()
		if len(points) >= 2 {
			first, last := points[0], points[len(points)-1]
			fmt.Fprintf(out, "%s: %.2f -> %.2f (%+.2f%%) over %d sessions\n",
				tf, first.Close, last.Close, (last.Close-first.Close)/first.Close*100, len(points))
		}
	}

	fmt.Fprintf(out, "\nRecommendation: %s (%s conviction), expected return %s\n",
		it.Recommendation, it.Conviction, expectedReturn(it.ExpectedReturn))

	printList(out, "Key drivers", it.KeyDrivers)
	printList(out, fmt.Sprintf("Risks (%s)", it.RiskAssessment.Level), it.RiskAssessment.Factors)
	printList(out, "Monitoring triggers", it.MonitoringTriggers)

	if detail.Thesis != nil {
		fmt.Fprintf(out, "\nThesis\n%s\n", detail.Thesis.Thesis)
	}
	return nil
}

func expectedReturn(r models.ExpectedReturn) string {
	if r.Timeframe == "" {
		return fmt.Sprintf("%.1f%%", r.Value)
	}
	return fmt.Sprintf("%.1f%% / %s", r.Value, r.Timeframe)
}

func printList(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", title)
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}
