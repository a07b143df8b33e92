package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
)

// PostgresPermissionRepository implements PermissionRepository using PostgreSQL.
type PostgresPermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPermissionRepository creates a new PostgresPermissionRepository.
func NewPostgresPermissionRepository(pool *pgxpool.Pool) *PostgresPermissionRepository {
	return &PostgresPermissionRepository{pool: pool}
}

const permissionColumns = `id, subject, action, slug, description, created_at, updated_at`

func scanPermission(row pgx.Row) (*domain.Permission, error) {
	p := &domain.Permission{}
	err := row.Scan(
		&p.ID,
		&p.Subject,
		&p.Action,
		&p.Slug,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// Create persists a new permission.
func (r *PostgresPermissionRepository) Create(ctx context.Context, permission *domain.Permission) error {
	query := `
		INSERT INTO permissions (id, subject, action, slug, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		permission.ID,
		permission.Subject,
		permission.Action,
		permission.Slug,
		permission.Description,
		permission.CreatedAt,
		permission.UpdatedAt,
	)
	return err
}

// GetByID retrieves a permission by ID.
func (r *PostgresPermissionRepository) GetByID(ctx context.Context, id string) (*domain.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions WHERE id = $1`
	return scanPermission(r.pool.QueryRow(ctx, query, id))
}

// GetBySlug retrieves a permission by slug.
func (r *PostgresPermissionRepository) GetBySlug(ctx context.Context, slug string) (*domain.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions WHERE slug = $1`
	return scanPermission(r.pool.QueryRow(ctx, query, slug))
}

// GetByIDs retrieves the permissions matching the given ids.
func (r *PostgresPermissionRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + permissionColumns + ` FROM permissions WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []*domain.Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}
	return permissions, rows.Err()
}

// List retrieves permissions matching the optional field-equality filter.
func (r *PostgresPermissionRepository) List(ctx context.Context, filter *domain.PermissionFilter) ([]*domain.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions`
	var args []interface{}
	var clauses []string

	addClause := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter != nil {
		addClause("subject", filter.Subject)
		addClause("action", filter.Action)
		addClause("slug", filter.Slug)
		addClause("description", filter.Description)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []*domain.Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}
	return permissions, rows.Err()
}

// Update updates a permission.
func (r *PostgresPermissionRepository) Update(ctx context.Context, permission *domain.Permission) error {
	query := `
		UPDATE permissions
		SET subject = $2, action = $3, slug = $4, description = $5, updated_at = $6
		WHERE id = $1
	`
	permission.UpdatedAt = time.Now()
	_, err := r.pool.Exec(ctx, query,
		permission.ID,
		permission.Subject,
		permission.Action,
		permission.Slug,
		permission.Description,
		permission.UpdatedAt,
	)
	return err
}

// Delete removes a permission. Existing role-permission links are left to the
// schema's foreign-key behavior.
func (r *PostgresPermissionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM permissions WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
