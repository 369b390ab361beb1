package memories

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

const memoryColumns = `id, name, owner, project, subject, client, creation_date`

func scanMemory(row interface{ Scan(...any) error }) (*models.Memory, error) {
	m := &models.Memory{}
	err := row.Scan(&m.ID, &m.Name, &m.Owner, &m.Project, &m.Subject, &m.Client, &m.CreationDate)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *SQLRepository) Create(ctx context.Context, m *models.Memory) error {
	query :=
		`INSERT INTO memories (` + memoryColumns + `)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Owner, m.Project, m.Subject, m.Client, m.CreationDate.UTC())
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorDuplicateKey
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Memory, error) {
	query :=
		`SELECT ` + memoryColumns + ` FROM memories
		 WHERE id = ?`

	m, err := scanMemory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// List returns every memory ordered by name, case-insensitively.
func (r *SQLRepository) List(ctx context.Context) ([]*models.Memory, error) {
	query :=
		`SELECT ` + memoryColumns + ` FROM memories
		 ORDER BY LOWER(name), id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) CountByOwner(ctx context.Context, owner string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories WHERE owner = ?`, owner).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
