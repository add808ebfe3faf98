// Package repositories contains the PostgreSQL persistence layer for
// discovery run metadata.  Heavy run artifacts (population, logbook,
// solutions) live in object storage; this layer keeps only the queryable
// lifecycle state.
package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/common"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

const pgUniqueViolation = "23505"

// RunRepository persists discovery.Run records.
type RunRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewRunRepository constructs a ready-to-use RunRepository.
func NewRunRepository(pool *pgxpool.Pool, logger logging.Logger) *RunRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RunRepository{pool: pool, logger: logger}
}

// Create inserts a new run record.
func (r *RunRepository) Create(ctx context.Context, run *discovery.Run) error {
	params, err := json.Marshal(run.Parameters)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to encode run parameters")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO discovery_runs (
			id, status, parameters, drug_count, error, artifact_key,
			created_at, started_at, finished_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		run.ID, run.Status, params, run.DrugCount, nullable(run.Error), nullable(run.ArtifactKey),
		run.CreatedAt, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if appErrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return appErrors.Newf(appErrors.ErrCodeRunAlreadyExists, "run %s already exists", run.ID)
		}
		r.logger.Error("RunRepository.Create", logging.Err(err))
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert run")
	}
	return nil
}

// GetByID fetches one run.
func (r *RunRepository) GetByID(ctx context.Context, id common.ID) (*discovery.Run, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, status, parameters, drug_count, error, artifact_key,
		       created_at, started_at, finished_at
		FROM discovery_runs WHERE id = $1`, id)
	return r.scanRun(row)
}

// List returns runs ordered by creation time descending, optionally
// filtered by status, plus the total matching count.
func (r *RunRepository) List(ctx context.Context, status common.Status, page common.Pagination) ([]*discovery.Run, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = "WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM discovery_runs "+where, args...).Scan(&total); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count runs")
	}

	query := `
		SELECT id, status, parameters, drug_count, error, artifact_key,
		       created_at, started_at, finished_at
		FROM discovery_runs ` + where + `
		ORDER BY created_at DESC`
	if status != "" {
		query += " LIMIT $2 OFFSET $3"
	} else {
		query += " LIMIT $1 OFFSET $2"
	}
	args = append(args, page.PageSize, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list runs")
	}
	defer rows.Close()

	var runs []*discovery.Run
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to iterate runs")
	}
	return runs, total, nil
}

// MarkStarted transitions a pending run to running.
func (r *RunRepository) MarkStarted(ctx context.Context, id common.ID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE discovery_runs
		SET status = $2, started_at = $3
		WHERE id = $1 AND status = $4`,
		id, common.StatusRunning, at, common.StatusPending,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to mark run started")
	}
	if tag.RowsAffected() == 0 {
		return r.explainMissedUpdate(ctx, id, common.StatusPending)
	}
	return nil
}

// MarkCompleted finalizes a running run with its artifact location.
func (r *RunRepository) MarkCompleted(ctx context.Context, id common.ID, at time.Time, artifactKey string, drugCount int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE discovery_runs
		SET status = $2, finished_at = $3, artifact_key = $4, drug_count = $5
		WHERE id = $1 AND status = $6`,
		id, common.StatusCompleted, at, artifactKey, drugCount, common.StatusRunning,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to mark run completed")
	}
	if tag.RowsAffected() == 0 {
		return r.explainMissedUpdate(ctx, id, common.StatusRunning)
	}
	return nil
}

// MarkFailed finalizes a run with its failure message.  Failure is a legal
// transition from both pending and running.
func (r *RunRepository) MarkFailed(ctx context.Context, id common.ID, at time.Time, message string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE discovery_runs
		SET status = $2, finished_at = $3, error = $4
		WHERE id = $1 AND status IN ($5, $6)`,
		id, common.StatusFailed, at, message, common.StatusPending, common.StatusRunning,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to mark run failed")
	}
	if tag.RowsAffected() == 0 {
		return r.explainMissedUpdate(ctx, id, common.StatusRunning)
	}
	return nil
}

// Delete removes a run record.
func (r *RunRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM discovery_runs WHERE id = $1`, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete run")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.Newf(appErrors.ErrCodeRunNotFound, "run %s not found", id)
	}
	return nil
}

// explainMissedUpdate distinguishes a missing run from an illegal state
// transition after a guarded UPDATE matched no rows.
func (r *RunRepository) explainMissedUpdate(ctx context.Context, id common.ID, want common.Status) error {
	run, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return appErrors.Newf(appErrors.ErrCodeRunStateInvalid,
		"run %s is %s, expected %s", id, run.Status, want)
}

func (r *RunRepository) scanRun(row pgx.Row) (*discovery.Run, error) {
	var (
		run         discovery.Run
		params      []byte
		errMsg      *string
		artifactKey *string
	)
	err := row.Scan(
		&run.ID, &run.Status, &params, &run.DrugCount, &errMsg, &artifactKey,
		&run.CreatedAt, &run.StartedAt, &run.FinishedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, appErrors.New(appErrors.ErrCodeRunNotFound, "run not found")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan run")
	}
	if err := json.Unmarshal(params, &run.Parameters); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to decode run parameters")
	}
	if errMsg != nil {
		run.Error = *errMsg
	}
	if artifactKey != nil {
		run.ArtifactKey = *artifactKey
	}
	return &run, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

//Personal.AI order the ending
