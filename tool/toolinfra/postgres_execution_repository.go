package toolinfra

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/storex"
	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/tool"
	"github.com/jmoiron/sqlx"
)

type PostgresExecutionRepository struct {
	db *sqlx.DB
}

var _ tool.ExecutionRepository = (*PostgresExecutionRepository)(nil)

func NewPostgresExecutionRepository(db *sqlx.DB) *PostgresExecutionRepository {
	return &PostgresExecutionRepository{db: db}
}

func (r *PostgresExecutionRepository) Save(ctx context.Context, execution tool.Execution) error {
	query := `
		INSERT INTO tool_executions (
			id, tool_id, user_id, baby_id, parameters, result, status,
			error, metadata, started_at, ended_at, duration_ms
		) VALUES (
			:id, :tool_id, :user_id, :baby_id, :parameters, :result, :status,
			:error, :metadata, :started_at, :ended_at, :duration_ms
		)`

	_, err := r.db.NamedExecContext(ctx, query, execution)
	if err != nil {
		return errx.Wrap(err, "failed to create execution", errx.TypeInternal).
			WithDetail("execution_id", execution.ID.String())
	}

	return nil
}

func (r *PostgresExecutionRepository) Update(ctx context.Context, execution tool.Execution) error {
	query := `
		UPDATE tool_executions SET
			result = :result,
			status = :status,
			error = :error,
			metadata = :metadata,
			ended_at = :ended_at,
			duration_ms = :duration_ms
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, execution)
	if err != nil {
		return errx.Wrap(err, "failed to update execution", errx.TypeInternal).
			WithDetail("execution_id", execution.ID.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	if rowsAffected == 0 {
		return tool.ErrExecutionNotFound().WithDetail("execution_id", execution.ID.String())
	}

	return nil
}

func (r *PostgresExecutionRepository) FindByID(ctx context.Context, id kernel.ExecutionID) (*tool.Execution, error) {
	query := `
		SELECT
			id, tool_id, user_id, baby_id, parameters, result, status,
			error, metadata, started_at, ended_at, duration_ms
		FROM tool_executions
		WHERE id = $1`

	var execution tool.Execution
	err := r.db.GetContext(ctx, &execution, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tool.ErrExecutionNotFound().WithDetail("execution_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find execution by id", errx.TypeInternal).
			WithDetail("execution_id", id.String())
	}

	return &execution, nil
}

func (r *PostgresExecutionRepository) List(ctx context.Context, req tool.ListExecutionsRequest) (tool.ExecutionListResponse, error) {
	// Build WHERE conditions
	var conditions []string
	var args []any
	argPos := 1

	if req.ToolID != nil {
		conditions = append(conditions, fmt.Sprintf("tool_id = $%d", argPos))
		args = append(args, req.ToolID.String())
		argPos++
	}

	if req.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, req.UserID.String())
		argPos++
	}

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}

	if req.From != nil {
		conditions = append(conditions, fmt.Sprintf("started_at >= $%d", argPos))
		args = append(args, *req.From)
		argPos++
	}

	if req.To != nil {
		conditions = append(conditions, fmt.Sprintf("started_at <= $%d", argPos))
		args = append(args, *req.To)
		argPos++
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	// Count query
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tool_executions WHERE %s", whereClause)
	var total int
	err := r.db.GetContext(ctx, &total, countQuery, args...)
	if err != nil {
		return tool.ExecutionListResponse{}, errx.Wrap(err, "failed to count executions", errx.TypeInternal)
	}

	// Data query with pagination
	dataQuery := fmt.Sprintf(`
		SELECT
			id, tool_id, user_id, baby_id, parameters, result, status,
			error, metadata, started_at, ended_at, duration_ms
		FROM tool_executions
		WHERE %s
		ORDER BY started_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argPos, argPos+1)

	args = append(args, req.PageSize, req.GetOffset())

	var executions []tool.Execution
	err = r.db.SelectContext(ctx, &executions, dataQuery, args...)
	if err != nil {
		return tool.ExecutionListResponse{}, errx.Wrap(err, "failed to list executions", errx.TypeInternal)
	}

	return storex.NewPaginated(executions, req.Page, req.PageSize, total), nil
}

func (r *PostgresExecutionRepository) CountByTool(ctx context.Context, toolID kernel.ToolID) (int, error) {
	query := `SELECT COUNT(*) FROM tool_executions WHERE tool_id = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, toolID.String())
	if err != nil {
		return 0, errx.Wrap(err, "failed to count executions by tool", errx.TypeInternal)
	}

	return count, nil
}

func (r *PostgresExecutionRepository) CountByStatus(ctx context.Context, toolID kernel.ToolID, status tool.ExecutionStatus) (int, error) {
	query := `SELECT COUNT(*) FROM tool_executions WHERE tool_id = $1 AND status = $2`

	var count int
	err := r.db.GetContext(ctx, &count, query, toolID.String(), status)
	if err != nil {
		return 0, errx.Wrap(err, "failed to count executions by status", errx.TypeInternal)
	}

	return count, nil
}

func (r *PostgresExecutionRepository) GetAverageDuration(ctx context.Context, toolID kernel.ToolID) (float64, error) {
	query := `
		SELECT COALESCE(AVG(duration_ms), 0)
		FROM tool_executions
		WHERE tool_id = $1 AND status = 'success'`

	var avg float64
	err := r.db.GetContext(ctx, &avg, query, toolID.String())
	if err != nil {
		return 0, errx.Wrap(err, "failed to get average duration", errx.TypeInternal)
	}

	return avg, nil
}

func (r *PostgresExecutionRepository) FailStaleRunning(ctx context.Context, maxAgeSeconds int) (int, error) {
	query := `
		UPDATE tool_executions
		SET status = 'failed',
		    error = 'execution timed out',
		    ended_at = NOW(),
		    duration_ms = EXTRACT(EPOCH FROM (NOW() - started_at)) * 1000
		WHERE status = 'running'
		  AND started_at < NOW() - make_interval(secs => $1)`

	result, err := r.db.ExecContext(ctx, query, maxAgeSeconds)
	if err != nil {
		return 0, errx.Wrap(err, "failed to mark stale executions", errx.TypeInternal)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	return int(rowsAffected), nil
}
