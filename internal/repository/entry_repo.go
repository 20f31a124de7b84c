package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
)

// EntryRepository define el contrato de persistencia para registros diarios.
// La restriccion de unicidad por (usuario, dia) vive en la base y Upsert la
// respeta: un dia se crea al verse por primera vez y luego se muta in place.
type EntryRepository interface {
	Upsert(ctx context.Context, entry domain.SatisfactionEntry) (domain.SatisfactionEntry, error)
	GetByDay(ctx context.Context, userID string, day time.Time) (domain.SatisfactionEntry, error)
	ListByUser(ctx context.Context, userID string) ([]domain.SatisfactionEntry, error)
	UpdateScore(ctx context.Context, userID string, day time.Time, score domain.Score) (domain.SatisfactionEntry, error)
	Delete(ctx context.Context, userID string, day time.Time) error
	SimilarDays(ctx context.Context, userID string, metrics domain.MetricVector, k int) ([]domain.SatisfactionEntry, error)
}

// PgEntryRepository implementa EntryRepository usando pgxpool, almacenando el
// vector de metricas en una columna pgvector vector(9).
type PgEntryRepository struct {
	pool *pgxpool.Pool
}

func NewPgEntryRepository(pool *pgxpool.Pool) *PgEntryRepository {
	return &PgEntryRepository{pool: pool}
}

const entryColumns = "id, user_id, day, satisfaction_score, metrics, created_at, updated_at"

func (r *PgEntryRepository) Upsert(ctx context.Context, entry domain.SatisfactionEntry) (domain.SatisfactionEntry, error) {
	const query = `
		INSERT INTO satisfaction_entries (id, user_id, day, satisfaction_score, metrics, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id, day) DO UPDATE SET
			satisfaction_score = COALESCE(EXCLUDED.satisfaction_score, satisfaction_entries.satisfaction_score),
			metrics = EXCLUDED.metrics,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + entryColumns
	return r.scanEntry(r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Day,
		scoreParam(entry.Score),
		toVector(entry.Metrics),
		time.Now().UTC(),
	))
}

func (r *PgEntryRepository) GetByDay(ctx context.Context, userID string, day time.Time) (domain.SatisfactionEntry, error) {
	const query = `
		SELECT ` + entryColumns + `
		FROM satisfaction_entries
		WHERE user_id = $1 AND day = $2
	`
	return r.scanEntry(r.pool.QueryRow(ctx, query, userID, day))
}

func (r *PgEntryRepository) ListByUser(ctx context.Context, userID string) ([]domain.SatisfactionEntry, error) {
	const query = `
		SELECT ` + entryColumns + `
		FROM satisfaction_entries
		WHERE user_id = $1
		ORDER BY day ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectEntries(rows)
}

func (r *PgEntryRepository) UpdateScore(ctx context.Context, userID string, day time.Time, score domain.Score) (domain.SatisfactionEntry, error) {
	const query = `
		UPDATE satisfaction_entries
		SET satisfaction_score = $3, updated_at = $4
		WHERE user_id = $1 AND day = $2
		RETURNING ` + entryColumns
	return r.scanEntry(r.pool.QueryRow(ctx, query, userID, day, scoreParam(score), time.Now().UTC()))
}

func (r *PgEntryRepository) Delete(ctx context.Context, userID string, day time.Time) error {
	const query = `
		DELETE FROM satisfaction_entries
		WHERE user_id = $1 AND day = $2
	`
	tag, err := r.pool.Exec(ctx, query, userID, day)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SimilarDays devuelve los k dias del usuario mas cercanos al vector dado,
// ordenados por distancia L2 sobre la columna pgvector.
func (r *PgEntryRepository) SimilarDays(ctx context.Context, userID string, metrics domain.MetricVector, k int) ([]domain.SatisfactionEntry, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT ` + entryColumns + `
		FROM satisfaction_entries
		WHERE user_id = $1
		ORDER BY metrics <-> $2
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, toVector(metrics), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectEntries(rows)
}

func (r *PgEntryRepository) scanEntry(row pgx.Row) (domain.SatisfactionEntry, error) {
	var (
		e     domain.SatisfactionEntry
		score *float64
		vec   pgvector.Vector
	)
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Day,
		&score,
		&vec,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SatisfactionEntry{}, err
	}
	if err != nil {
		return domain.SatisfactionEntry{}, err
	}
	if score != nil {
		e.Score = domain.Scored(*score)
	} else {
		e.Score = domain.Unscored()
	}
	e.Metrics = fromVector(vec)
	return e, nil
}

func (r *PgEntryRepository) collectEntries(rows pgx.Rows) ([]domain.SatisfactionEntry, error) {
	var entries []domain.SatisfactionEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scoreParam(s domain.Score) any {
	if v, ok := s.Value(); ok {
		return v
	}
	return nil
}

func toVector(v domain.MetricVector) pgvector.Vector {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return pgvector.NewVector(out)
}

func fromVector(v pgvector.Vector) domain.MetricVector {
	slice := v.Slice()
	out := make(domain.MetricVector, len(slice))
	for i, x := range slice {
		out[i] = float64(x)
	}
	return out
}
