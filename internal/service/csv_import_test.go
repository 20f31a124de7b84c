package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
)

const validCSV = `day,satisfaction_score,steps,minutes_in_bed,active_energy_kcal,exercise_minutes,stand_hours,daylight_minutes,walking_distance_m,flights_climbed,resting_heart_rate
2025-03-01,7.5,8000,440,520,30,9,25,6400,10,68
2025-03-02,,5000,400,400,15,7,5,4000,8,75
2025-03-03,9,14000,500,780,60,13,80,11200,16,58
`

func TestParseEntriesCSV_Valid(t *testing.T) {
	entries, err := ParseEntriesCSV(strings.NewReader(validCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	if v, ok := entries[0].Score.Value(); !ok || v != 7.5 {
		t.Fatalf("expected first day scored 7.5, got %v (known=%v)", v, ok)
	}
	if entries[1].Score.Known() {
		t.Fatalf("expected blank score cell to mean unscored")
	}
	if entries[0].Day.Format(domain.DayFormat) != "2025-03-01" {
		t.Fatalf("unexpected day: %v", entries[0].Day)
	}
	if got := entries[2].Metrics[0]; got != 14000 {
		t.Fatalf("expected steps 14000, got %v", got)
	}
	if len(entries[0].Metrics) != domain.MetricCount {
		t.Fatalf("expected %d metrics, got %d", domain.MetricCount, len(entries[0].Metrics))
	}
}

func TestParseEntriesCSV_RejectsBadHeader(t *testing.T) {
	csv := "day,score,steps\n2025-03-01,5,100\n"
	if _, err := ParseEntriesCSV(strings.NewReader(csv)); !errors.Is(err, ErrInvalidCSV) {
		t.Fatalf("expected ErrInvalidCSV for bad header, got %v", err)
	}
}

func TestParseEntriesCSV_ReportsLineNumbers(t *testing.T) {
	csv := strings.Replace(validCSV, "2025-03-02", "not-a-date", 1)
	_, err := ParseEntriesCSV(strings.NewReader(csv))
	if !errors.Is(err, ErrInvalidCSV) {
		t.Fatalf("expected ErrInvalidCSV, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line number in error, got %q", err.Error())
	}
}

func TestEntryService_ImportCSV(t *testing.T) {
	repo := newMockEntryRepo()
	svc := NewEntryService(nil, repo)
	ctx := context.Background()

	entries, err := ParseEntriesCSV(strings.NewReader(validCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	imported, err := svc.ImportCSV(ctx, "u1", entries)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported != 3 {
		t.Fatalf("expected 3 imported days, got %d", imported)
	}

	// Reimportar los mismos dias actualiza en vez de duplicar.
	if _, err := svc.ImportCSV(ctx, "u1", entries); err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if len(repo.entries) != 3 {
		t.Fatalf("expected unique rows per day, got %d", len(repo.entries))
	}
}
