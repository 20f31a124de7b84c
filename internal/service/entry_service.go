package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
	"github.com/aefremenko24/quantifying-happiness/internal/repository"
)

// EntryService coordina el ciclo de vida de los registros diarios: un entry
// se crea la primera vez que se ve o importa un dia y despues se muta in
// place con nuevas lecturas o con la calificacion del usuario.
type EntryService struct {
	logger  *zap.Logger
	entries repository.EntryRepository
}

func NewEntryService(logger *zap.Logger, entries repository.EntryRepository) *EntryService {
	return &EntryService{
		logger:  logger,
		entries: entries,
	}
}

var (
	ErrEntryNotFound  = errors.New("entry not found")
	ErrInvalidMetrics = errors.New("invalid metrics")
	ErrInvalidScore   = errors.New("invalid score")
)

// Rango nominal de la calificacion de satisfaccion.
const (
	minScore = 0.0
	maxScore = 10.0
)

func validateMetrics(metrics domain.MetricVector) error {
	if len(metrics) != domain.MetricCount {
		return fmt.Errorf("%w: expected %d values, got %d", ErrInvalidMetrics, domain.MetricCount, len(metrics))
	}
	for i, x := range metrics {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidMetrics, domain.MetricNames[i])
		}
	}
	return nil
}

func validateScore(score float64) error {
	if math.IsNaN(score) || score < minScore || score > maxScore {
		return fmt.Errorf("%w: %v outside [%v, %v]", ErrInvalidScore, score, minScore, maxScore)
	}
	return nil
}

// UpsertMetrics crea o actualiza las metricas del dia indicado. Una
// calificacion previa del dia se conserva.
func (s *EntryService) UpsertMetrics(ctx context.Context, userID string, day time.Time, metrics domain.MetricVector) (domain.SatisfactionEntry, error) {
	if err := validateMetrics(metrics); err != nil {
		return domain.SatisfactionEntry{}, err
	}
	entry := domain.SatisfactionEntry{
		ID:      uuid.NewString(),
		UserID:  userID,
		Day:     day,
		Score:   domain.Unscored(),
		Metrics: metrics.Clone(),
	}
	return s.entries.Upsert(ctx, entry)
}

// RateDay registra la calificacion de satisfaccion de un dia ya existente.
func (s *EntryService) RateDay(ctx context.Context, userID string, day time.Time, score float64) (domain.SatisfactionEntry, error) {
	if err := validateScore(score); err != nil {
		return domain.SatisfactionEntry{}, err
	}
	entry, err := s.entries.UpdateScore(ctx, userID, day, domain.Scored(score))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SatisfactionEntry{}, ErrEntryNotFound
	}
	return entry, err
}

func (s *EntryService) GetDay(ctx context.Context, userID string, day time.Time) (domain.SatisfactionEntry, error) {
	entry, err := s.entries.GetByDay(ctx, userID, day)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SatisfactionEntry{}, ErrEntryNotFound
	}
	return entry, err
}

func (s *EntryService) ListDays(ctx context.Context, userID string) ([]domain.SatisfactionEntry, error) {
	return s.entries.ListByUser(ctx, userID)
}

func (s *EntryService) DeleteDay(ctx context.Context, userID string, day time.Time) error {
	err := s.entries.Delete(ctx, userID, day)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEntryNotFound
	}
	return err
}

// SimilarDays devuelve los k dias historicos mas parecidos al dia indicado.
func (s *EntryService) SimilarDays(ctx context.Context, userID string, day time.Time, k int) ([]domain.SatisfactionEntry, error) {
	entry, err := s.GetDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	return s.entries.SimilarDays(ctx, userID, entry.Metrics, k)
}

// ImportCSV ingiere un historial en CSV y hace upsert de cada dia.
// Devuelve la cantidad de dias importados.
func (s *EntryService) ImportCSV(ctx context.Context, userID string, rows []domain.SatisfactionEntry) (int, error) {
	imported := 0
	for _, row := range rows {
		if err := validateMetrics(row.Metrics); err != nil {
			return imported, fmt.Errorf("day %s: %w", row.Day.Format(domain.DayFormat), err)
		}
		if v, ok := row.Score.Value(); ok {
			if err := validateScore(v); err != nil {
				return imported, fmt.Errorf("day %s: %w", row.Day.Format(domain.DayFormat), err)
			}
		}
		row.ID = uuid.NewString()
		row.UserID = userID
		if _, err := s.entries.Upsert(ctx, row); err != nil {
			return imported, fmt.Errorf("day %s: %w", row.Day.Format(domain.DayFormat), err)
		}
		imported++
	}
	if s.logger != nil {
		s.logger.Info("csv import finished", zap.String("user_id", userID), zap.Int("imported", imported))
	}
	return imported, nil
}
