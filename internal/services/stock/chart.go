package stock

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/symphony/internal/models"
)

// ErrInsufficientHistory is returned when fewer than two non-null closes exist.
var ErrInsufficientHistory = errors.New("not enough price history to chart")

// RenderHistoryChart renders the close series as a PNG line chart.
// Null closes are dropped along with their timestamps.
func RenderHistoryChart(symbol string, candles *models.StockCandles) ([]byte, error) {
	points := candles.Closes()
	if len(points) < 2 {
		return nil, fmt.Errorf("%s has %d points: %w", symbol, len(points), ErrInsufficientHistory)
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.Time
		yValues[i] = p.Close
	}

	// Green when the window closed up, red when down.
	stroke := drawing.ColorFromHex("16a34a")
	if yValues[len(yValues)-1] < yValues[0] {
		stroke = drawing.ColorFromHex("dc2626")
	}

	span := xValues[len(xValues)-1].Sub(xValues[0])
	dateFormat := "Jan 02"
	if span > 180*24*time.Hour {
		dateFormat = "Jan 06"
	} else if span <= 48*time.Hour {
		dateFormat = "15:04"
	}

	graph := chart.Chart{
		Title:  symbol,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format(dateFormat)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Close",
				Style: chart.Style{
					StrokeColor: stroke,
					StrokeWidth: 2,
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
