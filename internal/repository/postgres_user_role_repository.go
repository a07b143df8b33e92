package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
)

// PostgresUserRoleRepository implements UserRoleRepository using PostgreSQL.
type PostgresUserRoleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRoleRepository creates a new PostgresUserRoleRepository.
func NewPostgresUserRoleRepository(pool *pgxpool.Pool) *PostgresUserRoleRepository {
	return &PostgresUserRoleRepository{pool: pool}
}

// GetByUserID retrieves a user's role link, if any. The user_id column is
// unique, so at most one row exists.
func (r *PostgresUserRoleRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserRole, error) {
	query := `
		SELECT id, user_id, role_id, created_at, updated_at
		FROM user_roles
		WHERE user_id = $1
	`
	link := &domain.UserRole{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&link.ID,
		&link.UserID,
		&link.RoleID,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return link, nil
}

// GetByRoleID retrieves a role's user links with each user joined in.
func (r *PostgresUserRoleRepository) GetByRoleID(ctx context.Context, roleID string) ([]*domain.UserRole, error) {
	query := `
		SELECT ur.id, ur.user_id, ur.role_id, ur.created_at, ur.updated_at,
		       u.id, u.first_name, u.last_name, u.email, u.phone, u.password_hash,
		       u.is_admin, u.status, u.last_login_at, u.created_at, u.updated_at
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.role_id = $1
	`
	rows, err := r.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*domain.UserRole
	for rows.Next() {
		link := &domain.UserRole{User: &domain.User{}}
		if err := rows.Scan(
			&link.ID,
			&link.UserID,
			&link.RoleID,
			&link.CreatedAt,
			&link.UpdatedAt,
			&link.User.ID,
			&link.User.FirstName,
			&link.User.LastName,
			&link.User.Email,
			&link.User.Phone,
			&link.User.PasswordHash,
			&link.User.IsAdmin,
			&link.User.Status,
			&link.User.LastLoginAt,
			&link.User.CreatedAt,
			&link.User.UpdatedAt,
		); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// Create inserts a new user-role link.
func (r *PostgresUserRoleRepository) Create(ctx context.Context, link *domain.UserRole) error {
	query := `
		INSERT INTO user_roles (id, user_id, role_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.UserID,
		link.RoleID,
		link.CreatedAt,
		link.UpdatedAt,
	)
	return err
}

// Update rewrites an existing link's role in place.
func (r *PostgresUserRoleRepository) Update(ctx context.Context, link *domain.UserRole) error {
	query := `UPDATE user_roles SET role_id = $2, updated_at = $3 WHERE id = $1`
	link.UpdatedAt = time.Now()
	_, err := r.pool.Exec(ctx, query, link.ID, link.RoleID, link.UpdatedAt)
	return err
}

// DeleteByUserID removes a user's role link.
func (r *PostgresUserRoleRepository) DeleteByUserID(ctx context.Context, userID string) error {
	query := `DELETE FROM user_roles WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}
