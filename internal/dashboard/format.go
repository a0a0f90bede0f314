// Package dashboard provides display formatting for the TUI widgets and the
// market session clock.
package dashboard

import (
	"fmt"
	"strings"
)

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPrice formats a price as $X.XX, or "-" when unknown.
func FormatPrice(p float64) string {
	if p <= 0 {
		return "-"
	}
	return fmt.Sprintf("$%.2f", p)
}

// FormatVolume formats a share volume with B/M/K suffixes.
func FormatVolume(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatChange formats a signed percentage change as "+X.XX%" or "-X.XX%".
func FormatChange(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}

// FormatSignedMoney formats a P&L dollar amount with an explicit sign.
func FormatSignedMoney(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("+$%.2f", v)
}
