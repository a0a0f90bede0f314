package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/coinvest518/alpaca-agent/internal/api"
	"github.com/coinvest518/alpaca-agent/internal/dashboard"
)

// Styles.
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	activeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")).Padding(0, 1)
	stoppedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("9")).Padding(0, 1)
	openStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	preStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	afterStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	closedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	symbolStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	symbolCurStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Padding(0, 1)
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	panelTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	buyStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	sellStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	holdStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	positiveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	negativeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	neutralStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3")).Padding(0, 1)
	helpStyle      = lipgloss.NewStyle().Faint(true)
	delayedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func chartWidth(termWidth int) int {
	w := termWidth - 46
	if w < 40 {
		w = 40
	}
	return w
}

func chartHeight(termHeight int) int {
	h := termHeight - 24
	if h < 8 {
		h = 8
	}
	if h > 16 {
		h = 16
	}
	return h
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewSymbols())
	b.WriteString("\n")

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.viewMarket(),
		m.viewPortfolio(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.viewIndicators(),
		m.viewDecisions(),
		m.viewNews(),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m model) viewHeader() string {
	var badge string
	if m.sess.Active() {
		badge = activeStyle.Render("TRADING")
	} else {
		badge = stoppedStyle.Render("STOPPED")
	}

	status := dashboard.MarketStatusAt(m.now)
	var market string
	switch status {
	case dashboard.MarketOpen:
		market = openStyle.Render(string(status))
	case dashboard.MarketPreMarket:
		market = preStyle.Render(string(status))
	case dashboard.MarketAfterHours:
		market = afterStyle.Render(string(status))
	default:
		market = closedStyle.Render(string(status))
	}

	updated := "never"
	if lu := m.sess.LastUpdate(); !lu.IsZero() {
		updated = lu.Format("15:04:05")
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(" Trading Dashboard "),
		"  ", badge,
		"  market: ", market,
		dimStyle.Render(fmt.Sprintf("  updated: %s", updated)),
	)
}

func (m model) viewSymbols() string {
	view := m.snap.Symbols
	if len(view.Display) == 0 {
		return dimStyle.Render("no symbols")
	}

	current := m.sess.Symbol()
	parts := make([]string, 0, len(view.Display)+1)
	for _, s := range view.Display {
		label := s
		switch view.Annotation(s) {
		case "position":
			label += "*"
		case "order":
			label += "+"
		}
		if s == current {
			parts = append(parts, symbolCurStyle.Render(label))
		} else {
			parts = append(parts, symbolStyle.Render(label))
		}
	}
	if m.adding {
		parts = append(parts, "add: "+m.input.View())
	}
	return strings.Join(parts, " ")
}

func (m model) viewMarket() string {
	var b strings.Builder
	symbol := m.sess.Symbol()
	b.WriteString(panelTitle.Render(fmt.Sprintf("Market  %s  %s", symbol, m.sess.Selection())))
	b.WriteString("\n")

	price := "-"
	volume := "-"
	if q := m.snap.Quote; q != nil {
		price = dashboard.FormatPrice(q.Price)
		volume = dashboard.FormatVolume(q.Volume)
		if q.SubscriptionLimited {
			volume += " " + delayedStyle.Render("(delayed)")
		}
	}

	change := dimStyle.Render("24h: -")
	if m.snap.Change24h != nil {
		text := "24h: " + dashboard.FormatChange(*m.snap.Change24h)
		if *m.snap.Change24h >= 0 {
			change = gainStyle.Render(text)
		} else {
			change = lossStyle.Render(text)
		}
	}

	b.WriteString(fmt.Sprintf("%s  %s  vol: %s", price, change, volume))
	b.WriteString("\n")
	b.WriteString(m.chart.View())

	return panelStyle.Render(b.String())
}

func (m model) viewPortfolio() string {
	var b strings.Builder
	b.WriteString(panelTitle.Render("Portfolio"))
	b.WriteString("\n")

	pf := m.snap.Portfolio
	if pf == nil {
		b.WriteString(dimStyle.Render("no portfolio data"))
		return panelStyle.Render(b.String())
	}

	pnlStyle := gainStyle
	if pf.Summary.TotalUnrealizedPL < 0 {
		pnlStyle = lossStyle
	}
	b.WriteString(fmt.Sprintf("value: %s  P&L: %s %s\n",
		dashboard.FormatPrice(pf.Summary.TotalMarketValue),
		pnlStyle.Render(dashboard.FormatSignedMoney(pf.Summary.TotalUnrealizedPL)),
		pnlStyle.Render(fmt.Sprintf("(%s)", dashboard.FormatChange(pf.Summary.TotalUnrealizedPLPC))),
	))

	if len(pf.Positions) == 0 {
		b.WriteString(dimStyle.Render("no open positions"))
		return panelStyle.Render(b.String())
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("%-6s %8s %10s %10s %12s", "SYM", "QTY", "ENTRY", "PRICE", "P&L")))
	for _, pos := range pf.Positions {
		rowStyle := gainStyle
		if pos.UnrealizedPL < 0 {
			rowStyle = lossStyle
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-6s %8s %10s %10s %s",
			pos.Symbol,
			dashboard.FormatInt(int(pos.Qty)),
			dashboard.FormatPrice(pos.AvgEntryPrice),
			dashboard.FormatPrice(pos.CurrentPrice),
			rowStyle.Render(fmt.Sprintf("%12s", dashboard.FormatSignedMoney(pos.UnrealizedPL))),
		))
	}
	return panelStyle.Render(b.String())
}

func (m model) viewDecisions() string {
	var b strings.Builder
	b.WriteString(panelTitle.Render("Decisions"))
	b.WriteString("\n")

	if m.snap.Status == nil || m.snap.Status.LastData == nil || len(m.snap.Status.LastData.Decisions) == 0 {
		b.WriteString(dimStyle.Render("no recent decisions"))
		return panelStyle.Render(b.String())
	}

	last := m.snap.Status.LastData
	syms := make([]string, 0, len(last.Decisions))
	for s := range last.Decisions {
		syms = append(syms, s)
	}
	sort.Strings(syms)

	for i, s := range syms {
		if i > 0 {
			b.WriteString("\n")
		}
		action := last.Decisions[s]
		var style lipgloss.Style
		switch strings.ToUpper(action) {
		case "BUY":
			style = buyStyle
		case "SELL":
			style = sellStyle
		default:
			style = holdStyle
		}
		b.WriteString(fmt.Sprintf("%-6s %s", s, style.Render(strings.ToUpper(action))))
		if detail := analysisDetail(last.AnalysisResults[s].Indicators); detail != "" {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render("  " + detail))
		}
	}
	return panelStyle.Render(b.String())
}

// analysisDetail condenses an analysis result into one line.
func analysisDetail(ind api.Indicators) string {
	var parts []string
	if ind.Close != nil {
		parts = append(parts, fmt.Sprintf("price %.2f", *ind.Close))
	}
	if ind.RSI != nil {
		parts = append(parts, fmt.Sprintf("RSI %.2f", *ind.RSI))
	}
	if ind.EMA != nil {
		parts = append(parts, fmt.Sprintf("EMA %.3f", *ind.EMA))
	}
	if ind.ATR != nil {
		parts = append(parts, fmt.Sprintf("ATR %.3f", *ind.ATR))
	}
	return strings.Join(parts, "  ")
}

func (m model) viewNews() string {
	var b strings.Builder
	b.WriteString(panelTitle.Render("News"))
	b.WriteString("\n")

	if len(m.snap.News) == 0 {
		b.WriteString(dimStyle.Render("no news available"))
		return panelStyle.Render(b.String())
	}

	syms := make([]string, 0, len(m.snap.News))
	for s := range m.snap.News {
		syms = append(syms, s)
	}
	sort.Strings(syms)

	first := true
	for _, s := range syms {
		items := m.snap.News[s]
		if len(items) > 5 {
			items = items[:5]
		}
		for _, item := range items {
			if !first {
				b.WriteString("\n")
			}
			first = false

			var style lipgloss.Style
			switch item.Sentiment {
			case "positive":
				style = positiveStyle
			case "negative":
				style = negativeStyle
			default:
				style = neutralStyle
			}
			b.WriteString(fmt.Sprintf("%s %s", style.Render("●"), truncate(item.Title, 44)))
			if item.Summary != "" {
				b.WriteString("\n")
				b.WriteString(dimStyle.Render("  " + truncate(item.Summary, 42)))
			}
		}
	}
	return panelStyle.Render(b.String())
}

func (m model) viewIndicators() string {
	var b strings.Builder
	b.WriteString(panelTitle.Render(fmt.Sprintf("Indicators  %s", m.sess.Symbol())))
	b.WriteString("\n")

	var ind api.Indicators
	if m.snap.Status != nil && m.snap.Status.LastData != nil {
		ind = m.snap.Status.LastData.AnalysisResults[m.sess.Symbol()].Indicators
	}

	b.WriteString(indicatorLine("RSI", ind.RSI, "%.2f", rsiLabel))
	b.WriteString("\n")
	b.WriteString(indicatorLine("EMA", ind.EMA, "%.3f", func(float64) string { return "Trend indicator" }))
	b.WriteString("\n")
	b.WriteString(indicatorLine("ATR", ind.ATR, "%.3f", atrLabel))
	b.WriteString("\n")
	b.WriteString(indicatorLine("Volatility", ind.VolatilityScore, "%.3f", volatilityLabel))
	return panelStyle.Render(b.String())
}

func indicatorLine(name string, value *float64, format string, label func(float64) string) string {
	if value == nil {
		return fmt.Sprintf("%-10s %8s  %s", name, "--", dimStyle.Render("waiting for data"))
	}
	return fmt.Sprintf("%-10s %8s  %s", name, fmt.Sprintf(format, *value), dimStyle.Render(label(*value)))
}

func rsiLabel(v float64) string {
	switch {
	case v < 30:
		return "Oversold (Buy)"
	case v > 70:
		return "Overbought (Sell)"
	default:
		return "Neutral (30-70)"
	}
}

func atrLabel(v float64) string {
	switch {
	case v < -0.5:
		return "Bearish signal"
	case v > 0.5:
		return "Bullish signal"
	default:
		return "Neutral signal"
	}
}

func volatilityLabel(v float64) string {
	switch {
	case v < 2:
		return "Low risk"
	case v < 5:
		return "Medium risk"
	default:
		return "High risk"
	}
}

func (m model) viewFooter() string {
	help := helpStyle.Render("tab: symbol  1-4: timeframe  a: add  s: start  x: stop  c: cycle  q: quit")
	if m.status == "" {
		return help
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, statusStyle.Render(m.status), "  ", help)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
