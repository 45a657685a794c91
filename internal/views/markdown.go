package views

import (
	"fmt"
	"strings"
)

// Markdown renders a compact text report of the five views suitable for
// terminal output or pasting into docs.
func (b Bundle) Markdown() string {
	var sb strings.Builder
	sb.WriteString("[CHART PERFORMANCE]\n")
	if len(b.Line) == 0 {
		sb.WriteString("(no charting albums)\n")
	}
	for _, p := range b.Line {
		sb.WriteString(fmt.Sprintf("- %s: #%s\n", safeVal(p.Album), trimNum(p.Position)))
	}

	sb.WriteString("\n[RELEASE FREQUENCY]\n")
	for _, yc := range b.Releases {
		sb.WriteString(fmt.Sprintf("- %d: %d album", yc.Year, yc.Count))
		if yc.Count != 1 {
			sb.WriteString("s")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n[YEAR VS POSITION]\n")
	for _, p := range b.Scatter {
		sb.WriteString(fmt.Sprintf("- %d: #%s (%s)\n", p.Year, trimNum(p.Position), safeVal(p.Album)))
	}

	sb.WriteString("\n[POSITION GRID]\n")
	if len(b.Heat.Years) > 0 {
		sb.WriteString("| ")
		for i, y := range b.Heat.Years {
			if i > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(fmt.Sprintf("%d", y))
		}
		sb.WriteString(" |\n| ")
		for i, p := range b.Heat.Positions {
			if i > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(trimNum(p))
		}
		sb.WriteString(" |\n")
	}

	sb.WriteString("\n[PERFORMANCE TIERS]\n")
	for _, tc := range b.Tiers {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", tc.Tier, tc.Count))
	}
	return sb.String()
}

// trimNum prints whole positions without a trailing ".0" style fraction.
func trimNum(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func safeVal(s string) string {
	s = strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
	if strings.TrimSpace(s) == "" {
		return "(unnamed)"
	}
	return s
}
