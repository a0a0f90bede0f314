// Package chart renders the price chart: the fetched close series with an
// EMA-20 overlay, drawn as braille lines. The model holds the chart's
// backing data and replaces it wholesale on every refresh; the next View
// call draws whatever is current.
package chart

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/coinvest518/alpaca-agent/internal/series"
	"github.com/coinvest518/alpaca-agent/internal/timeframe"
)

const (
	minChartWidth  = 40
	minChartHeight = 8
)

var (
	priceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	downStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	emaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("11")).
			Padding(0, 1)
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// Model holds the chart's backing data.
type Model struct {
	mu sync.Mutex

	width  int
	height int

	times     []time.Time
	prices    []float64
	ema       []float64
	source    series.Source
	selection string
}

// New creates a chart model with an initial size.
func New(width, height int) *Model {
	return &Model{width: width, height: height}
}

// SetSize resizes the chart drawing area.
func (m *Model) SetSize(width, height int) {
	m.mu.Lock()
	m.width = width
	m.height = height
	m.mu.Unlock()
}

// Render replaces the chart's backing data wholesale. An empty series
// clears the chart. The slices are copied so later mutation by the caller
// cannot tear a frame.
func (m *Model) Render(s series.Series, ema []float64) {
	times := make([]time.Time, len(s.Points))
	prices := make([]float64, len(s.Points))
	for i, p := range s.Points {
		times[i] = p.Time
		prices[i] = p.Close
	}
	emaCopy := make([]float64, len(ema))
	copy(emaCopy, ema)

	m.mu.Lock()
	m.times = times
	m.prices = prices
	m.ema = emaCopy
	m.source = s.Source
	m.selection = s.Selection
	m.mu.Unlock()
}

// Len returns the number of plotted points.
func (m *Model) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prices)
}

// Source reports where the plotted series came from.
func (m *Model) Source() series.Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// View draws the chart.
func (m *Model) View() string {
	m.mu.Lock()
	times := m.times
	prices := m.prices
	ema := m.ema
	source := m.source
	selection := m.selection
	width := m.width
	height := m.height
	m.mu.Unlock()

	if len(prices) < 2 {
		return faintStyle.Render("No chart data")
	}
	if width < minChartWidth || height < minChartHeight {
		return faintStyle.Render("Terminal too small for chart")
	}

	minPrice, maxPrice, margin := adaptiveMargin(prices)

	lineStyle := priceStyle
	if prices[len(prices)-1] < prices[0] {
		lineStyle = downStyle
	}

	layout := timeframe.LabelFormat(selection)
	xLabel := func(_ int, value float64) string {
		idx := int(math.Round(value))
		if idx < 0 || idx >= len(times) {
			return ""
		}
		return times[idx].Format(layout)
	}

	lc := linechart.New(width, height,
		0, float64(len(prices)-1),
		minPrice-margin, maxPrice+margin,
		linechart.WithXYSteps(6, 4),
		linechart.WithXLabelFormatter(xLabel),
		linechart.WithYLabelFormatter(yLabel),
		linechart.WithStyles(axisStyle, axisStyle, lineStyle),
	)

	drawLine(&lc, ema, emaStyle)
	drawLine(&lc, prices, lineStyle)
	lc.DrawXYAxisAndLabel()

	var b strings.Builder
	if source == series.SourceSynthetic {
		b.WriteString(badgeStyle.Render("SIMULATED"))
		b.WriteString("\n")
	}
	b.WriteString(lc.View())
	return b.String()
}

func drawLine(lc *linechart.Model, values []float64, style lipgloss.Style) {
	for i := 0; i < len(values)-1; i++ {
		p1 := canvas.Float64Point{X: float64(i), Y: values[i]}
		p2 := canvas.Float64Point{X: float64(i + 1), Y: values[i+1]}
		lc.DrawBrailleLineWithStyle(p1, p2, style)
	}
}

// yLabel picks price label precision by magnitude.
func yLabel(_ int, value float64) string {
	switch {
	case value >= 100:
		return fmt.Sprintf("%.1f", value)
	case value >= 10:
		return fmt.Sprintf("%.2f", value)
	case value >= 1:
		return fmt.Sprintf("%.3f", value)
	default:
		return fmt.Sprintf("%.4f", value)
	}
}

// adaptiveMargin sizes the Y-axis headroom by the series' volatility: quiet
// series get proportionally more space so small moves stay visible.
func adaptiveMargin(prices []float64) (minPrice, maxPrice, margin float64) {
	if len(prices) == 0 {
		return 0, 0, 0
	}

	minPrice, maxPrice = prices[0], prices[0]
	for _, p := range prices {
		if p < minPrice {
			minPrice = p
		}
		if p > maxPrice {
			maxPrice = p
		}
	}

	priceRange := maxPrice - minPrice
	if priceRange < 0.0001 {
		return minPrice, maxPrice, minPrice * 0.005
	}

	volatility := (priceRange / minPrice) * 100
	var marginRatio float64
	switch {
	case volatility < 1.0:
		marginRatio = 0.5
	case volatility < 3.0:
		marginRatio = 0.2
	default:
		marginRatio = 0.1
	}

	margin = priceRange * marginRatio
	if minMargin := minPrice * 0.003; margin < minMargin {
		margin = minMargin
	}
	return minPrice, maxPrice, margin
}
