package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/JonMunkholm/equipviz/internal/animation"
	"github.com/JonMunkholm/equipviz/internal/core"
	"github.com/JonMunkholm/equipviz/internal/history"
	"github.com/JonMunkholm/equipviz/internal/web/templates"
)

// Colors
var (
	accent  = lipgloss.Color("#2563EB")
	muted   = lipgloss.Color("#666666")
	hot     = lipgloss.Color("#DC2626")
	warn    = lipgloss.Color("#D97706")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	hotStyle     = lipgloss.NewStyle().Foreground(hot).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warn)
	errorStyle   = lipgloss.NewStyle().Foreground(hot).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(success)
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2).
			Width(20)
)

const distributionWidth = 30

// renderKPIs lays the four summary figures out as cards in one row.
func renderKPIs(s core.AggregateSummary) string {
	cards := []string{
		kpiCard("Total Units", strconv.Itoa(s.UnitCount)),
		kpiCard("Avg Pressure", templates.FormatOptional(s.AvgPressure, "bar")),
		kpiCard("Max Temp", templates.FormatOptional(s.MaxTemperature, "°C")),
		kpiCard("Avg Flowrate", templates.FormatOptional(s.AvgFlowrate, "")),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func kpiCard(label, value string) string {
	return cardStyle.Render(mutedStyle.Render(label) + "\n" + titleStyle.Render(value))
}

// renderDistribution draws one bar per category scaled by the frame's
// progress. Labels and percentages follow the frame's visibility flags.
func renderDistribution(f animation.Frame) string {
	if len(f.Slices) == 0 {
		return mutedStyle.Render("  no equipment types")
	}

	largest := 0
	nameWidth := 0
	for _, sl := range f.Slices {
		if sl.Target > largest {
			largest = sl.Target
		}
		if w := lipgloss.Width(sl.Category); w > nameWidth {
			nameWidth = w
		}
	}

	var b strings.Builder
	for i, sl := range f.Slices {
		filled := 0
		if largest > 0 {
			filled = int(sl.Value / float64(largest) * distributionWidth)
		}

		label := strings.Repeat(" ", nameWidth)
		if f.LabelsVisible {
			label = sl.Category + strings.Repeat(" ", nameWidth-lipgloss.Width(sl.Category))
		}
		fmt.Fprintf(&b, "  %s %s%s %d",
			label,
			accentStyle.Render(strings.Repeat("█", filled)),
			mutedStyle.Render(strings.Repeat("░", distributionWidth-filled)),
			sl.Count,
		)
		if f.PercentagesVisible {
			b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%.1f%%)", sl.Percent)))
		}
		if i < len(f.Slices)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderLeaderboard(entries []core.EfficiencyEntry) string {
	if len(entries) == 0 {
		return mutedStyle.Render("  no units with a pressure reading")
	}

	medals := []string{"🥇", "🥈", "🥉"}
	t := newTable("#", "Equipment", "Type", "Temp/Pressure")
	for i, e := range entries {
		rank := strconv.Itoa(i + 1)
		if i < len(medals) {
			rank = medals[i]
		}
		t.Row(rank, e.Name, e.Type, fmt.Sprintf("%.2f", e.Ratio))
	}
	return t.Render()
}

// renderRows prints the dataset, highlighting units above the temperature
// limit.
func renderRows(ds core.Dataset) string {
	if len(ds) == 0 {
		return mutedStyle.Render("  no matching rows")
	}

	t := newTable("Equipment", "Type", "Pressure", "Temperature", "Flowrate")
	for _, r := range ds {
		temp := fmt.Sprintf("%.2f", r.Temperature)
		if r.Overheated() {
			temp = hotStyle.Render(temp + " !")
		}
		t.Row(r.Name, r.Type, fmt.Sprintf("%.2f", r.Pressure), temp, fmt.Sprintf("%.2f", r.Flowrate))
	}
	return t.Render()
}

// renderHistory numbers entries from 1, newest first, and shows 0.00 for a
// missing average pressure.
func renderHistory(entries []history.Entry) string {
	if len(entries) == 0 {
		return mutedStyle.Render("  no uploads yet")
	}

	t := newTable("#", "File", "Uploaded", "Units", "Avg Pressure")
	for i, e := range entries {
		pressure := "0.00"
		if e.AvgPressure != nil {
			pressure = fmt.Sprintf("%.2f", *e.AvgPressure)
		}
		t.Row(strconv.Itoa(i+1), e.SourceName, e.UploadTime(), strconv.Itoa(e.UnitCount), pressure)
	}
	return t.Render()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return accentStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
