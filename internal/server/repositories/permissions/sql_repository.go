package permissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/dbx"
	"github.com/dmitrijs2005/remotetm/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

const permissionColumns = `user_id, memory_id, can_read, can_write, can_export`

func scanPermission(row interface{ Scan(...any) error }) (*models.Permission, error) {
	p := &models.Permission{}
	if err := row.Scan(&p.UserID, &p.MemoryID, &p.Read, &p.Write, &p.Export); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]*models.Permission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Get(ctx context.Context, memoryID, userID string) (*models.Permission, error) {
	query :=
		`SELECT ` + permissionColumns + ` FROM permissions
		 WHERE memory_id = ? AND user_id = ?`

	p, err := scanPermission(r.db.QueryRowContext(ctx, query, memoryID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *SQLRepository) ListByMemory(ctx context.Context, memoryID string) ([]*models.Permission, error) {
	return r.list(ctx,
		`SELECT `+permissionColumns+` FROM permissions
		 WHERE memory_id = ?
		 ORDER BY user_id`, memoryID)
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID string) ([]*models.Permission, error) {
	return r.list(ctx,
		`SELECT `+permissionColumns+` FROM permissions
		 WHERE user_id = ?
		 ORDER BY memory_id`, userID)
}

// ListForActiveUsers returns one entry per active user, with all-false
// rights where no row exists. The memory id is filled in here, not selected,
// so the statement carries no untyped parameter in its target list.
func (r *SQLRepository) ListForActiveUsers(ctx context.Context, memoryID string) ([]*models.Permission, error) {
	query :=
		`SELECT u.id, COALESCE(p.can_read, FALSE), COALESCE(p.can_write, FALSE), COALESCE(p.can_export, FALSE)
		 FROM users u
		 LEFT JOIN permissions p ON p.user_id = u.id AND p.memory_id = ?
		 WHERE u.active = TRUE
		 ORDER BY u.id`

	rows, err := r.db.QueryContext(ctx, query, memoryID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Permission
	for rows.Next() {
		p := &models.Permission{MemoryID: memoryID}
		if err := rows.Scan(&p.UserID, &p.Read, &p.Write, &p.Export); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Insert(ctx context.Context, p *models.Permission) error {
	query :=
		`INSERT INTO permissions (` + permissionColumns + `)
		 VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, p.UserID, p.MemoryID, p.Read, p.Write, p.Export)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorDuplicateKey
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) deleteWhere(ctx context.Context, query string, arg string) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, arg)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) DeleteByMemory(ctx context.Context, memoryID string) (int64, error) {
	return r.deleteWhere(ctx, `DELETE FROM permissions WHERE memory_id = ?`, memoryID)
}

func (r *SQLRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return r.deleteWhere(ctx, `DELETE FROM permissions WHERE user_id = ?`, userID)
}
