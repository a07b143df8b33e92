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

// PostgresRoleRepository implements RoleRepository using PostgreSQL.
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRoleRepository creates a new PostgresRoleRepository.
func NewPostgresRoleRepository(pool *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

const roleColumns = `id, name, slug, description, created_at, updated_at`

func scanRole(row pgx.Row) (*domain.Role, error) {
	role := &domain.Role{}
	err := row.Scan(
		&role.ID,
		&role.Name,
		&role.Slug,
		&role.Description,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

// Create persists a new role.
func (r *PostgresRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	query := `
		INSERT INTO roles (id, name, slug, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		role.ID,
		role.Name,
		role.Slug,
		role.Description,
		role.CreatedAt,
		role.UpdatedAt,
	)
	return err
}

// GetByID retrieves a role by ID, without its permission links.
func (r *PostgresRoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1`
	return scanRole(r.pool.QueryRow(ctx, query, id))
}

// GetBySlug retrieves a role by slug.
func (r *PostgresRoleRepository) GetBySlug(ctx context.Context, slug string) (*domain.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE slug = $1`
	return scanRole(r.pool.QueryRow(ctx, query, slug))
}

// List retrieves roles matching the optional filter, sorted by name ascending.
func (r *PostgresRoleRepository) List(ctx context.Context, filter *domain.RoleFilter) ([]*domain.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles`
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
		addClause("name", filter.Name)
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
	query += " ORDER BY name ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// Update updates a role.
func (r *PostgresRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	query := `
		UPDATE roles
		SET name = $2, slug = $3, description = $4, updated_at = $5
		WHERE id = $1
	`
	role.UpdatedAt = time.Now()
	_, err := r.pool.Exec(ctx, query,
		role.ID,
		role.Name,
		role.Slug,
		role.Description,
		role.UpdatedAt,
	)
	return err
}

// Delete removes a role.
func (r *PostgresRoleRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM roles WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
