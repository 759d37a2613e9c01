package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestDuckDBStoreRetentionSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.duckdb")

	store, closeStore, err := OpenStore(ctx, "duckdb", path, DefaultRetention)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}

	base := time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)
	for i := 1; i <= 7; i++ {
		avg := float64(i) * 1.5
		e, err := store.Record(ctx, Entry{
			SourceName:  fmt.Sprintf("f%d.csv", i),
			IngestedAt:  base.Add(time.Duration(i) * time.Minute),
			UnitCount:   i,
			AvgPressure: &avg,
		})
		if err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
		if e.ID != int64(i) {
			t.Errorf("Record %d: ID = %d, want %d", i, e.ID, i)
		}
	}

	check := func(label string, s Store) {
		t.Helper()
		entries, err := s.List(ctx)
		if err != nil {
			t.Fatalf("%s: List: %v", label, err)
		}
		if len(entries) != DefaultRetention {
			t.Fatalf("%s: len(List) = %d, want %d", label, len(entries), DefaultRetention)
		}
		for i, e := range entries {
			n := 7 - i
			if e.ID != int64(n) || e.SourceName != fmt.Sprintf("f%d.csv", n) || e.UnitCount != n {
				t.Errorf("%s: entries[%d] = %+v, want id %d", label, i, e, n)
			}
			if e.AvgPressure == nil || *e.AvgPressure != float64(n)*1.5 {
				t.Errorf("%s: entries[%d].AvgPressure = %v, want %v", label, i, e.AvgPressure, float64(n)*1.5)
			}
			if !e.IngestedAt.Equal(base.Add(time.Duration(n) * time.Minute)) {
				t.Errorf("%s: entries[%d].IngestedAt = %v", label, i, e.IngestedAt)
			}
		}
	}
	check("before reopen", store)

	if err := closeStore(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, closeReopened, err := OpenStore(ctx, "duckdb", path, DefaultRetention)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer closeReopened()
	check("after reopen", reopened)

	e, err := reopened.Record(ctx, Entry{SourceName: "f8.csv", IngestedAt: base})
	if err != nil {
		t.Fatalf("Record after reopen: %v", err)
	}
	if e.ID != 8 {
		t.Errorf("ID after reopen = %d, want 8", e.ID)
	}
}
