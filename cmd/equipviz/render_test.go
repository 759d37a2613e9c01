package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/equipviz/internal/animation"
	"github.com/JonMunkholm/equipviz/internal/core"
	"github.com/JonMunkholm/equipviz/internal/history"
)

func ptr(v float64) *float64 { return &v }

func TestRenderKPIs(t *testing.T) {
	out := renderKPIs(core.AggregateSummary{
		UnitCount:      3,
		AvgPressure:    ptr(20),
		MaxTemperature: ptr(118.5),
	})

	assert.Contains(t, out, "Total Units")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "20.00 bar")
	assert.Contains(t, out, "118.50 °C")
	assert.Contains(t, out, "–")
}

func TestRenderDistribution_FollowsVisibility(t *testing.T) {
	seq := animation.NewSequencer()
	seq.Start([]animation.Target{{Category: "Pump", Count: 3}, {Category: "Valve", Count: 1}})

	seq.Tick(0.1)
	early := renderDistribution(seq.CurrentFrame())
	assert.NotContains(t, early, "Pump")
	assert.NotContains(t, early, "%")

	for seq.Tick(0.25) {
	}
	done := renderDistribution(seq.CurrentFrame())
	assert.Contains(t, done, "Pump")
	assert.Contains(t, done, "Valve")
	assert.Contains(t, done, "(75.0%)")
	assert.Contains(t, done, "(25.0%)")
	assert.Equal(t, 1, strings.Count(done, "\n"))
}

func TestRenderDistribution_Empty(t *testing.T) {
	assert.Contains(t, renderDistribution(animation.Frame{}), "no equipment types")
}

func TestRenderHistory(t *testing.T) {
	at := time.Date(2026, 10, 19, 14, 30, 0, 0, time.Local)
	out := renderHistory([]history.Entry{
		{ID: 2, SourceName: "b.csv", IngestedAt: at, UnitCount: 4, AvgPressure: ptr(5.25)},
		{ID: 1, SourceName: "a.csv", IngestedAt: at, UnitCount: 0},
	})

	assert.Contains(t, out, "b.csv")
	assert.Contains(t, out, "19/10/2026, 14:30")
	assert.Contains(t, out, "5.25")
	assert.Contains(t, out, "0.00")
	assert.Less(t, strings.Index(out, "b.csv"), strings.Index(out, "a.csv"))

	assert.Contains(t, renderHistory(nil), "no uploads yet")
}

func TestRenderRows_FlagsOverheated(t *testing.T) {
	out := renderRows(core.Dataset{
		{Name: "Reactor-1", Type: "Reactor", Pressure: 8, Temperature: 130, Flowrate: 10},
		{Name: "Pump-1", Type: "Pump", Pressure: 5, Temperature: 100, Flowrate: 50},
	})
	assert.Contains(t, out, "130.00 !")
	assert.Contains(t, out, "100.00")
	assert.NotContains(t, out, "100.00 !")
}

func TestRenderLeaderboard(t *testing.T) {
	out := renderLeaderboard([]core.EfficiencyEntry{
		{Name: "Pump-2", Type: "Pump", Ratio: 10},
		{Name: "Pump-1", Type: "Pump", Ratio: 20},
	})
	assert.Contains(t, out, "Pump-2")
	assert.Contains(t, out, "10.00")
	assert.Less(t, strings.Index(out, "Pump-2"), strings.Index(out, "Pump-1"))

	assert.Contains(t, renderLeaderboard(nil), "no units")
}

func TestIngestCommand_MemoryStore(t *testing.T) {
	t.Setenv("HISTORY_DRIVER", "")
	t.Setenv("HISTORY_DSN", "")

	path := filepath.Join(t.TempDir(), "plant.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"Equipment Name,Type,Pressure,Temperature,Flowrate\n"+
			"Pump-1,Pump,5,110,120\n"+
			"Reactor-1,Reactor,10,130,40\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"ingest", path, "--driver", "memory", "--no-animate", "--rows"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		historyDriver, ingestNoAnimate, ingestRows = "", false, false
	})

	require.NoError(t, rootCmd.Execute())

	got := out.String()
	assert.Contains(t, got, "plant.csv")
	assert.Contains(t, got, "Total Units")
	assert.Contains(t, got, "7.50 bar")
	assert.Contains(t, got, "(50.0%)")
	assert.Contains(t, got, "130.00 !")
	assert.Contains(t, got, "RECENT UPLOADS")
}

func TestIngestCommand_MissingFile(t *testing.T) {
	t.Setenv("HISTORY_DRIVER", "")

	rootCmd.SetArgs([]string{"ingest", filepath.Join(t.TempDir(), "nope.csv"), "--driver", "memory"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		historyDriver = ""
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input file not found")
}

func TestIngestCommand_CorruptHistoryStillShowsKPIs(t *testing.T) {
	t.Setenv("HISTORY_DRIVER", "")
	t.Setenv("HISTORY_DSN", "")

	dir := t.TempDir()
	dsn := filepath.Join(dir, "history.duckdb")
	require.NoError(t, os.WriteFile(dsn, []byte("this is not a database"), 0o644))

	path := filepath.Join(dir, "plant.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"Equipment Name,Type,Pressure,Temperature,Flowrate\n"+
			"Pump-1,Pump,5,110,120\n"+
			"Reactor-1,Reactor,10,130,40\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"ingest", path, "--driver", "duckdb", "--dsn", dsn, "--no-animate"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		historyDriver, historyDSN, ingestNoAnimate = "", "", false
	})

	require.NoError(t, rootCmd.Execute())

	got := out.String()
	assert.Contains(t, got, "Total Units")
	assert.Contains(t, got, "7.50 bar")
	assert.Contains(t, got, "(50.0%)")
	assert.Contains(t, got, "HIST001")
	assert.NotContains(t, got, "RECENT UPLOADS")
}

func TestHistoryCommand_CorruptHistoryReportsUserMessage(t *testing.T) {
	t.Setenv("HISTORY_DRIVER", "")
	t.Setenv("HISTORY_DSN", "")

	dsn := filepath.Join(t.TempDir(), "history.duckdb")
	require.NoError(t, os.WriteFile(dsn, []byte("this is not a database"), 0o644))

	rootCmd.SetArgs([]string{"history", "--driver", "duckdb", "--dsn", dsn})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		historyDriver, historyDSN = "", ""
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HIST001")
}

func TestRenderDistribution_AlignsMultiByteNames(t *testing.T) {
	seq := animation.NewSequencer()
	seq.Start([]animation.Target{{Category: "Échangeur", Count: 2}, {Category: "Pump", Count: 2}})
	for seq.Tick(1) {
	}

	lines := strings.Split(renderDistribution(seq.CurrentFrame()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Index(lines[1], "█"), len("  Pump      "))
	assert.Equal(t, lipgloss.Width(lines[0][:strings.Index(lines[0], "█")]), lipgloss.Width(lines[1][:strings.Index(lines[1], "█")]))
}
