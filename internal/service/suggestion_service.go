package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
	"github.com/aefremenko24/quantifying-happiness/internal/engine"
	"github.com/aefremenko24/quantifying-happiness/internal/repository"
)

// Suggestion es el resultado de una corrida del motor: el mejor candidato,
// los deltas por metrica contra el dia de partida y la trayectoria de
// candidatos aceptados.
type Suggestion struct {
	Day     string             `json:"day"`
	Best    domain.Candidate   `json:"best"`
	Deltas  []MetricDelta      `json:"deltas"`
	History []domain.Candidate `json:"history"`
}

// MetricDelta expresa la sugerencia como "sube/baja la metrica X en Y".
type MetricDelta struct {
	Metric    string  `json:"metric"`
	Current   float64 `json:"current"`
	Suggested float64 `json:"suggested"`
	Delta     float64 `json:"delta"`
}

// SuggestionConfig agrupa los parametros del motor expuestos via config.
type SuggestionConfig struct {
	Neighbors int
	Annealer  engine.AnnealerConfig
	CacheTTL  time.Duration
}

// SuggestionService orquesta una corrida completa del motor: toma un
// snapshot del historial del usuario, ajusta scaler y regresor desde cero
// (nada aprendido persiste entre invocaciones) y corre el optimizador.
// Cada llamada construye sus propios modelos, asi que corridas concurrentes
// para distintos usuarios quedan naturalmente aisladas.
type SuggestionService struct {
	logger  *zap.Logger
	entries repository.EntryRepository
	cache   SuggestionCache
	cfg     SuggestionConfig

	// newRand produce la fuente de azar de cada corrida; los tests inyectan
	// una semilla fija para reproducibilidad.
	newRand func() *rand.Rand
}

func NewSuggestionService(logger *zap.Logger, entries repository.EntryRepository, cache SuggestionCache, cfg SuggestionConfig) *SuggestionService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &SuggestionService{
		logger:  logger,
		entries: entries,
		cache:   cache,
		cfg:     cfg,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// WithRandSource reemplaza la fuente de azar por corrida.
func (s *SuggestionService) WithRandSource(newRand func() *rand.Rand) *SuggestionService {
	if newRand != nil {
		s.newRand = newRand
	}
	return s
}

// SuggestForDay corre el motor para el dia indicado del usuario.
// El dia de partida debe existir y (en la variante por defecto) estar
// calificado; esos fallos llegan al caller como errores del motor para que
// la capa HTTP degrade a "no suggestion available".
func (s *SuggestionService) SuggestForDay(ctx context.Context, userID string, day time.Time) (Suggestion, error) {
	dataset, err := s.entries.ListByUser(ctx, userID)
	if err != nil {
		return Suggestion{}, fmt.Errorf("suggestion: list entries: %w", err)
	}

	var start *domain.SatisfactionEntry
	for i := range dataset {
		if dataset[i].Day.Equal(day) {
			start = &dataset[i]
			break
		}
	}
	if start == nil {
		return Suggestion{}, ErrEntryNotFound
	}

	key := s.cacheKey(userID, day, dataset)
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			return cached, nil
		} else if err != nil && s.logger != nil {
			s.logger.Warn("suggestion cache get failed", zap.Error(err))
		}
	}

	suggestion, err := s.run(*start, dataset)
	if err != nil {
		return Suggestion{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, suggestion, s.cfg.CacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("suggestion cache set failed", zap.Error(err))
		}
	}
	return suggestion, nil
}

// run ajusta los modelos sobre el snapshot y ejecuta la busqueda.
func (s *SuggestionService) run(start domain.SatisfactionEntry, dataset []domain.SatisfactionEntry) (Suggestion, error) {
	var scored []domain.MetricVector
	for _, e := range dataset {
		if e.Score.Known() {
			scored = append(scored, e.Metrics)
		}
	}
	if len(scored) == 0 {
		return Suggestion{}, fmt.Errorf("suggestion: %w", engine.ErrEmptyTrainingSet)
	}

	scaler, err := engine.NewFeatureScaler().Fit(scored)
	if err != nil {
		return Suggestion{}, fmt.Errorf("suggestion: fit scaler: %w", err)
	}
	regressor, err := engine.NewKNNRegressor(s.cfg.Neighbors).Fit(dataset, scaler)
	if err != nil {
		return Suggestion{}, fmt.Errorf("suggestion: fit regressor: %w", err)
	}
	optimizer, err := engine.NewAnnealingOptimizer(dataset, scaler, regressor, s.cfg.Annealer, s.newRand())
	if err != nil {
		return Suggestion{}, fmt.Errorf("suggestion: %w", err)
	}

	best, history, err := optimizer.Optimize(start)
	if err != nil {
		return Suggestion{}, fmt.Errorf("suggestion: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("suggestion computed",
			zap.String("user_id", start.UserID),
			zap.String("day", start.Day.Format(domain.DayFormat)),
			zap.Float64("best_value", best.Value),
			zap.Int("accepted", len(history)),
		)
	}

	return Suggestion{
		Day:     start.Day.Format(domain.DayFormat),
		Best:    best,
		Deltas:  metricDeltas(start.Metrics, best.Metrics),
		History: history,
	}, nil
}

func (s *SuggestionService) cacheKey(userID string, day time.Time, dataset []domain.SatisfactionEntry) string {
	var highWater int64
	for _, e := range dataset {
		if ts := e.UpdatedAt.Unix(); ts > highWater {
			highWater = ts
		}
	}
	return fmt.Sprintf("%s:%s:%d:%d", userID, day.Format(domain.DayFormat), len(dataset), highWater)
}

func metricDeltas(current, suggested domain.MetricVector) []MetricDelta {
	deltas := make([]MetricDelta, 0, len(suggested))
	for i := range suggested {
		deltas = append(deltas, MetricDelta{
			Metric:    domain.MetricNames[i],
			Current:   current[i],
			Suggested: suggested[i],
			Delta:     suggested[i] - current[i],
		})
	}
	return deltas
}
