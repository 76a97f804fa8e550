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
	"github.com/lib/pq"
)

type PostgresToolRepository struct {
	db *sqlx.DB
}

var _ tool.Repository = (*PostgresToolRepository)(nil)

func NewPostgresToolRepository(db *sqlx.DB) *PostgresToolRepository {
	return &PostgresToolRepository{db: db}
}

func (r *PostgresToolRepository) Save(ctx context.Context, t tool.Tool) error {
	query := `
		INSERT INTO tools (
			id, name, description, type, configuration, capabilities, status,
			version, usage_count, last_used_at, created_at, updated_at
		) VALUES (
			:id, :name, :description, :type, :configuration, :capabilities, :status,
			:version, :usage_count, :last_used_at, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return tool.ErrToolAlreadyExists().WithDetail("name", t.Name)
			}
		}
		return errx.Wrap(err, "failed to create tool", errx.TypeInternal).
			WithDetail("tool_id", t.ID.String())
	}

	return nil
}

func (r *PostgresToolRepository) Update(ctx context.Context, t tool.Tool) error {
	query := `
		UPDATE tools SET
			name = :name,
			description = :description,
			type = :type,
			configuration = :configuration,
			capabilities = :capabilities,
			status = :status,
			version = :version,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return tool.ErrToolAlreadyExists().WithDetail("name", t.Name)
			}
		}
		return errx.Wrap(err, "failed to update tool", errx.TypeInternal).
			WithDetail("tool_id", t.ID.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	if rowsAffected == 0 {
		return tool.ErrToolNotFound().WithDetail("tool_id", t.ID.String())
	}

	return nil
}

func (r *PostgresToolRepository) FindByID(ctx context.Context, id kernel.ToolID) (*tool.Tool, error) {
	query := `
		SELECT
			id, name, description, type, configuration, capabilities, status,
			version, usage_count, last_used_at, created_at, updated_at
		FROM tools
		WHERE id = $1`

	var t tool.Tool
	err := r.db.GetContext(ctx, &t, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tool.ErrToolNotFound().WithDetail("tool_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find tool by id", errx.TypeInternal).
			WithDetail("tool_id", id.String())
	}

	return &t, nil
}

func (r *PostgresToolRepository) FindByName(ctx context.Context, name string) (*tool.Tool, error) {
	query := `
		SELECT
			id, name, description, type, configuration, capabilities, status,
			version, usage_count, last_used_at, created_at, updated_at
		FROM tools
		WHERE name = $1`

	var t tool.Tool
	err := r.db.GetContext(ctx, &t, query, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tool.ErrToolNotFound().WithDetail("name", name)
		}
		return nil, errx.Wrap(err, "failed to find tool by name", errx.TypeInternal).
			WithDetail("name", name)
	}

	return &t, nil
}

func (r *PostgresToolRepository) Delete(ctx context.Context, id kernel.ToolID) error {
	query := `DELETE FROM tools WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete tool", errx.TypeInternal).
			WithDetail("tool_id", id.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	if rowsAffected == 0 {
		return tool.ErrToolNotFound().WithDetail("tool_id", id.String())
	}

	return nil
}

func (r *PostgresToolRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tools WHERE name = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, name)
	if err != nil {
		return false, errx.Wrap(err, "failed to check tool existence by name", errx.TypeInternal).
			WithDetail("name", name)
	}

	return exists, nil
}

func (r *PostgresToolRepository) List(ctx context.Context, req tool.ListToolsRequest) (tool.ToolListResponse, error) {
	// Build WHERE conditions
	var conditions []string
	var args []any
	argPos := 1

	if req.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argPos))
		args = append(args, *req.Type)
		argPos++
	}

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argPos, argPos+1))
		searchPattern := "%" + req.Search + "%"
		args = append(args, searchPattern, searchPattern)
		argPos += 2
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	// Count query
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tools WHERE %s", whereClause)
	var total int
	err := r.db.GetContext(ctx, &total, countQuery, args...)
	if err != nil {
		return tool.ToolListResponse{}, errx.Wrap(err, "failed to count tools", errx.TypeInternal)
	}

	// Data query with pagination
	dataQuery := fmt.Sprintf(`
		SELECT
			id, name, description, type, configuration, capabilities, status,
			version, usage_count, last_used_at, created_at, updated_at
		FROM tools
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		whereClause, argPos, argPos+1)

	args = append(args, req.PageSize, req.GetOffset())

	var toolList []tool.Tool
	err = r.db.SelectContext(ctx, &toolList, dataQuery, args...)
	if err != nil {
		return tool.ToolListResponse{}, errx.Wrap(err, "failed to list tools", errx.TypeInternal)
	}

	return storex.NewPaginated(toolList, req.Page, req.PageSize, total), nil
}

func (r *PostgresToolRepository) FindByType(ctx context.Context, toolType tool.ToolType) ([]*tool.Tool, error) {
	query := `
		SELECT
			id, name, description, type, configuration, capabilities, status,
			version, usage_count, last_used_at, created_at, updated_at
		FROM tools
		WHERE type = $1
		ORDER BY name ASC`

	var toolList []tool.Tool
	err := r.db.SelectContext(ctx, &toolList, query, toolType)
	if err != nil {
		return nil, errx.Wrap(err, "failed to find tools by type", errx.TypeInternal).
			WithDetail("type", string(toolType))
	}

	result := make([]*tool.Tool, len(toolList))
	for i := range toolList {
		result[i] = &toolList[i]
	}

	return result, nil
}

func (r *PostgresToolRepository) FindActive(ctx context.Context) ([]tool.Tool, error) {
	query := `
		SELECT
			id, name, description, type, configuration, capabilities, status,
			version, usage_count, last_used_at, created_at, updated_at
		FROM tools
		WHERE status = 'active'
		ORDER BY name ASC`

	var toolList []tool.Tool
	err := r.db.SelectContext(ctx, &toolList, query)
	if err != nil {
		return nil, errx.Wrap(err, "failed to find active tools", errx.TypeInternal)
	}

	return toolList, nil
}

func (r *PostgresToolRepository) IncrementUsage(ctx context.Context, id kernel.ToolID) error {
	query := `
		UPDATE tools
		SET usage_count = usage_count + 1, last_used_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return errx.Wrap(err, "failed to increment tool usage", errx.TypeInternal).
			WithDetail("tool_id", id.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	if rowsAffected == 0 {
		return tool.ErrToolNotFound().WithDetail("tool_id", id.String())
	}

	return nil
}
