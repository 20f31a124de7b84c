package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
	"github.com/aefremenko24/quantifying-happiness/internal/engine"
)

func seedHistory(t *testing.T, repo *mockEntryRepo) {
	t.Helper()
	ctx := context.Background()
	history := []struct {
		d       int
		score   domain.Score
		metrics domain.MetricVector
	}{
		{1, domain.Scored(4.0), domain.MetricVector{4000, 360, 350, 10, 6, 0, 3200, 6, 78}},
		{2, domain.Scored(5.0), domain.MetricVector{5000, 400, 400, 15, 7, 5, 4000, 8, 75}},
		{3, domain.Scored(6.5), domain.MetricVector{8000, 440, 520, 30, 9, 25, 6400, 10, 68}},
		{4, domain.Scored(7.5), domain.MetricVector{10000, 460, 600, 40, 11, 45, 8000, 12, 64}},
		{5, domain.Scored(8.5), domain.MetricVector{12000, 480, 700, 50, 12, 60, 9600, 14, 60}},
		{6, domain.Unscored(), domain.MetricVector{6000, 420, 450, 20, 8, 15, 4800, 9, 72}},
	}
	for _, h := range history {
		entry := domain.SatisfactionEntry{
			ID:      "e",
			UserID:  "u1",
			Day:     day(h.d),
			Score:   h.score,
			Metrics: h.metrics,
		}
		if _, err := repo.Upsert(ctx, entry); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func newTestSuggestionService(repo *mockEntryRepo, cache SuggestionCache) *SuggestionService {
	svc := NewSuggestionService(nil, repo, cache, SuggestionConfig{
		Neighbors: 5,
		Annealer:  engine.AnnealerConfig{MaxIterations: 1000},
	})
	return svc.WithRandSource(func() *rand.Rand {
		return rand.New(rand.NewSource(42))
	})
}

func TestSuggestionService_SuggestForDay(t *testing.T) {
	repo := newMockEntryRepo()
	seedHistory(t, repo)
	svc := newTestSuggestionService(repo, nil)

	suggestion, err := svc.SuggestForDay(context.Background(), "u1", day(2))
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if suggestion.Best.Value < 5.0 {
		t.Fatalf("expected best >= starting score 5.0, got %v", suggestion.Best.Value)
	}
	if len(suggestion.Deltas) != domain.MetricCount {
		t.Fatalf("expected %d deltas, got %d", domain.MetricCount, len(suggestion.Deltas))
	}
	if len(suggestion.History) == 0 {
		t.Fatalf("expected non-empty history")
	}
	for i, d := range suggestion.Deltas {
		if d.Metric != domain.MetricNames[i] {
			t.Fatalf("delta %d: metric %q, expected %q", i, d.Metric, domain.MetricNames[i])
		}
		if got := d.Suggested - d.Current; got != d.Delta {
			t.Fatalf("delta %d inconsistent: %v != %v", i, got, d.Delta)
		}
	}
}

func TestSuggestionService_MissingDay(t *testing.T) {
	repo := newMockEntryRepo()
	seedHistory(t, repo)
	svc := newTestSuggestionService(repo, nil)

	if _, err := svc.SuggestForDay(context.Background(), "u1", day(20)); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestSuggestionService_UnscoredStartPropagatesMissingScore(t *testing.T) {
	repo := newMockEntryRepo()
	seedHistory(t, repo)
	svc := newTestSuggestionService(repo, nil)

	if _, err := svc.SuggestForDay(context.Background(), "u1", day(6)); !errors.Is(err, engine.ErrMissingScore) {
		t.Fatalf("expected engine.ErrMissingScore, got %v", err)
	}
}

func TestSuggestionService_EmptyTrainingSet(t *testing.T) {
	repo := newMockEntryRepo()
	entry := domain.SatisfactionEntry{
		ID: "e", UserID: "u1", Day: day(1),
		Score:   domain.Unscored(),
		Metrics: validMetrics(),
	}
	if _, err := repo.Upsert(context.Background(), entry); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := newTestSuggestionService(repo, nil)

	if _, err := svc.SuggestForDay(context.Background(), "u1", day(1)); !errors.Is(err, engine.ErrEmptyTrainingSet) {
		t.Fatalf("expected engine.ErrEmptyTrainingSet, got %v", err)
	}
}

func TestSuggestionService_CachesWhileDatasetUnchanged(t *testing.T) {
	repo := newMockEntryRepo()
	seedHistory(t, repo)
	cache := NewMemorySuggestionCache()
	svc := newTestSuggestionService(repo, cache)
	ctx := context.Background()

	first, err := svc.SuggestForDay(ctx, "u1", day(2))
	if err != nil {
		t.Fatalf("first suggest: %v", err)
	}
	second, err := svc.SuggestForDay(ctx, "u1", day(2))
	if err != nil {
		t.Fatalf("second suggest: %v", err)
	}
	if first.Best.Value != second.Best.Value || len(first.History) != len(second.History) {
		t.Fatalf("expected cached result to match original")
	}
}
