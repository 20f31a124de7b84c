package engine

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
)

// activityDataset devuelve un historial sintetico donde mas actividad se
// corresponde con mas satisfaccion.
func activityDataset() []domain.SatisfactionEntry {
	return []domain.SatisfactionEntry{
		testEntry(1, domain.Scored(4.0), domain.MetricVector{4000, 360, 350, 10, 6, 0, 3200, 6, 78}),
		testEntry(2, domain.Scored(5.0), domain.MetricVector{5000, 400, 400, 15, 7, 5, 4000, 8, 75}),
		testEntry(3, domain.Scored(6.5), domain.MetricVector{8000, 440, 520, 30, 9, 25, 6400, 10, 68}),
		testEntry(4, domain.Scored(7.5), domain.MetricVector{10000, 460, 600, 40, 11, 45, 8000, 12, 64}),
		testEntry(5, domain.Scored(8.5), domain.MetricVector{12000, 480, 700, 50, 12, 60, 9600, 14, 60}),
		testEntry(6, domain.Scored(9.0), domain.MetricVector{14000, 500, 780, 60, 13, 80, 11200, 16, 58}),
		testEntry(7, domain.Unscored(), domain.MetricVector{6000, 420, 450, 20, 8, 15, 4800, 9, 72}),
	}
}

func fitEngine(t *testing.T, dataset []domain.SatisfactionEntry, cfg AnnealerConfig, seed int64) *AnnealingOptimizer {
	t.Helper()
	var scored []domain.MetricVector
	for _, e := range dataset {
		if e.Score.Known() {
			scored = append(scored, e.Metrics)
		}
	}
	scaler, err := NewFeatureScaler().Fit(scored)
	if err != nil {
		t.Fatalf("fit scaler: %v", err)
	}
	regressor, err := NewKNNRegressor(DefaultNeighbors).Fit(dataset, scaler)
	if err != nil {
		t.Fatalf("fit knn: %v", err)
	}
	optimizer, err := NewAnnealingOptimizer(dataset, scaler, regressor, cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("new optimizer: %v", err)
	}
	return optimizer
}

func TestAnnealingOptimizer_ImprovesLowActivityStart(t *testing.T) {
	dataset := activityDataset()
	optimizer := fitEngine(t, dataset, AnnealerConfig{MaxIterations: 2000}, 42)

	start := testEntry(2, domain.Scored(5.0), domain.MetricVector{5000, 400, 400, 15, 7, 5, 4000, 8, 75})
	best, history, err := optimizer.Optimize(start)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if best.Value < 5.0 {
		t.Fatalf("expected best value >= starting score 5.0, got %v", best.Value)
	}
	if len(history) == 0 {
		t.Fatalf("expected accepted candidates in history")
	}
	if len(best.Metrics) != domain.MetricCount {
		t.Fatalf("expected %d-dimensional suggestion, got %d", domain.MetricCount, len(best.Metrics))
	}
}

func TestAnnealingOptimizer_NoRegressionNearMaximum(t *testing.T) {
	dataset := activityDataset()
	optimizer := fitEngine(t, dataset, AnnealerConfig{MaxIterations: 1500}, 7)

	start := testEntry(6, domain.Scored(9.0), domain.MetricVector{14000, 500, 780, 60, 13, 80, 11200, 16, 58})
	best, _, err := optimizer.Optimize(start)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if best.Value < 9.0 {
		t.Fatalf("best value regressed below starting score: %v", best.Value)
	}
}

func TestAnnealingOptimizer_HistoryStaysWithinObservedBounds(t *testing.T) {
	dataset := activityDataset()
	optimizer := fitEngine(t, dataset, AnnealerConfig{MaxIterations: 800, StepSize: 0.5}, 3)
	obsMin, obsMax := optimizer.Bounds()

	start := dataset[1]
	_, history, err := optimizer.Optimize(start)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	for _, c := range history {
		for i, x := range c.Metrics {
			if x < obsMin[i] || x > obsMax[i] {
				t.Fatalf("accepted candidate escaped observed bounds: dim %d value %v not in [%v, %v]", i, x, obsMin[i], obsMax[i])
			}
		}
	}
}

func TestAnnealingOptimizer_MissingScoreAbortsBeforeSearch(t *testing.T) {
	dataset := activityDataset()
	optimizer := fitEngine(t, dataset, AnnealerConfig{}, 1)

	start := testEntry(7, domain.Unscored(), domain.MetricVector{6000, 420, 450, 20, 8, 15, 4800, 9, 72})
	_, history, err := optimizer.Optimize(start)
	if !errors.Is(err, ErrMissingScore) {
		t.Fatalf("expected ErrMissingScore, got %v", err)
	}
	if history != nil {
		t.Fatalf("expected no search on missing score, got %d accepted candidates", len(history))
	}
}

func TestAnnealingOptimizer_PredictedObjectiveAllowsUnscoredStart(t *testing.T) {
	dataset := activityDataset()
	optimizer := fitEngine(t, dataset, AnnealerConfig{MaxIterations: 500, Objective: ObjectivePredicted}, 11)

	start := testEntry(7, domain.Unscored(), domain.MetricVector{6000, 420, 450, 20, 8, 15, 4800, 9, 72})
	best, _, err := optimizer.Optimize(start)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if best.Value <= 0 {
		t.Fatalf("expected positive predicted value, got %v", best.Value)
	}
}

func TestAnnealingOptimizer_RestartsConcatenateHistories(t *testing.T) {
	dataset := activityDataset()
	single := fitEngine(t, dataset, AnnealerConfig{MaxIterations: 300, NumRestarts: 1}, 5)
	multi := fitEngine(t, dataset, AnnealerConfig{MaxIterations: 300, NumRestarts: 3}, 5)

	start := dataset[1]
	_, singleHistory, err := single.Optimize(start)
	if err != nil {
		t.Fatalf("optimize single: %v", err)
	}
	_, multiHistory, err := multi.Optimize(start)
	if err != nil {
		t.Fatalf("optimize multi: %v", err)
	}
	if len(multiHistory) <= len(singleHistory) {
		t.Fatalf("expected restarts to accumulate history: single=%d multi=%d", len(singleHistory), len(multiHistory))
	}
}

func TestAnnealingOptimizer_ZeroRestartsTreatedAsOne(t *testing.T) {
	dataset := activityDataset()
	optimizer := fitEngine(t, dataset, AnnealerConfig{MaxIterations: 200, NumRestarts: -2}, 9)

	best, history, err := optimizer.Optimize(dataset[1])
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if len(history) == 0 {
		t.Fatalf("expected a single full run, got empty history")
	}
	if best.Value < 5.0 {
		t.Fatalf("expected best >= start, got %v", best.Value)
	}
}

func TestAnnealingOptimizer_RequiresFittedModelsAndData(t *testing.T) {
	dataset := activityDataset()
	var scored []domain.MetricVector
	for _, e := range dataset {
		if e.Score.Known() {
			scored = append(scored, e.Metrics)
		}
	}
	scaler, err := NewFeatureScaler().Fit(scored)
	if err != nil {
		t.Fatalf("fit scaler: %v", err)
	}
	regressor, err := NewKNNRegressor(3).Fit(dataset, scaler)
	if err != nil {
		t.Fatalf("fit knn: %v", err)
	}

	if _, err := NewAnnealingOptimizer(nil, scaler, regressor, AnnealerConfig{}, nil); !errors.Is(err, ErrEmptyTrainingSet) {
		t.Fatalf("expected ErrEmptyTrainingSet, got %v", err)
	}
	if _, err := NewAnnealingOptimizer(dataset, NewFeatureScaler(), regressor, AnnealerConfig{}, nil); !errors.Is(err, ErrUnfittedModel) {
		t.Fatalf("expected ErrUnfittedModel for unfitted scaler, got %v", err)
	}
	if _, err := NewAnnealingOptimizer(dataset, scaler, NewKNNRegressor(3), AnnealerConfig{}, nil); !errors.Is(err, ErrUnfittedModel) {
		t.Fatalf("expected ErrUnfittedModel for unfitted regressor, got %v", err)
	}
}
