package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feedbacklens/backend/internal/models"
)

// Store persists run history so the dashboard can re-read the latest batch
// without re-running the pipeline. The server runs fine without one.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) CreateRun(ctx context.Context, status string) (string, error) {
	var id string
	err := s.Pool.QueryRow(ctx, `INSERT INTO runs (status, started_at) VALUES ($1, NOW()) RETURNING id`, status).Scan(&id)
	return id, err
}

// FinishRun records the batch outcome: summary holds the pipeline Summary and
// result holds the serialized PipelineResult handed to the dashboard.
func (s *Store) FinishRun(ctx context.Context, runID string, status string, summary []byte, result []byte) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE runs SET status = $1, summary = $2, result = $3, finished_at = NOW() WHERE id = $4`,
		status, summary, result, runID)
	return err
}

func (s *Store) GetLatestRun(ctx context.Context) (models.Run, []byte, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT id, started_at, finished_at, status, summary, result
		 FROM runs WHERE status = 'SUCCESS' ORDER BY started_at DESC LIMIT 1`)
	var (
		run    models.Run
		result []byte
	)
	if err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.Summary, &result); err != nil {
		return models.Run{}, nil, err
	}
	return run, result, nil
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, started_at, finished_at, status, summary FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Run
	for rows.Next() {
		var run models.Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.Summary); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// PruneRuns deletes runs older than the retention window.
func (s *Store) PruneRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM runs WHERE started_at < NOW() - $1::interval`, olderThan.String())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
