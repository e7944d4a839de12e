package aggregate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const barWidth = 30

// Markdown renders every chart as a text bar chart.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[CHARTS]\n")
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	if r.Segment != "" {
		b.WriteString(fmt.Sprintf("Segment: %s\n", r.Segment))
	}
	b.WriteString(fmt.Sprintf("Charts: %d\n", len(r.Charts)))
	for _, c := range r.Charts {
		b.WriteString("\n")
		b.WriteString(c.Markdown())
	}
	return b.String()
}

// Markdown renders one chart as a heading and a fenced block of bars scaled to
// 100 for percentages or to the largest mean otherwise.
func (c Chart) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("### %s\n", safeTitle(c.Title)))
	b.WriteString(fmt.Sprintf("%s (n=%d)\n\n", c.YLabel, c.N))
	if len(c.Bars) == 0 {
		b.WriteString("(no data)\n")
		return b.String()
	}

	labelWidth := 0
	for _, bar := range c.Bars {
		if w := utf8.RuneCountInString(bar.Label); w > labelWidth {
			labelWidth = w
		}
	}
	scale := 100.0
	if !c.Percent() {
		scale = 0
		for _, bar := range c.Bars {
			if !bar.Empty && bar.Value > scale {
				scale = bar.Value
			}
		}
	}

	b.WriteString("```text\n")
	for _, bar := range c.Bars {
		b.WriteString(bar.Label)
		b.WriteString(strings.Repeat(" ", labelWidth-utf8.RuneCountInString(bar.Label)))
		b.WriteString(" | ")
		filled := 0
		if !bar.Empty && scale > 0 && bar.Value > 0 {
			filled = int(bar.Value/scale*barWidth + 0.5)
			filled = min(max(filled, 1), barWidth)
		}
		b.WriteString(strings.Repeat("█", filled))
		b.WriteString(strings.Repeat(" ", barWidth-filled))
		b.WriteString(" ")
		b.WriteString(c.formatValue(bar))
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	return b.String()
}

func (c Chart) formatValue(bar Bar) string {
	switch {
	case bar.Empty:
		return "n/a"
	case c.Percent():
		return fmt.Sprintf("%.1f%%", bar.Value)
	default:
		return fmt.Sprintf("%.2f", bar.Value)
	}
}

func safeTitle(s string) string { return strings.ReplaceAll(s, "\n", " ") }
