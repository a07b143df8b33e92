package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
)

// PostgresRolePermissionRepository implements RolePermissionRepository using PostgreSQL.
type PostgresRolePermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRolePermissionRepository creates a new PostgresRolePermissionRepository.
func NewPostgresRolePermissionRepository(pool *pgxpool.Pool) *PostgresRolePermissionRepository {
	return &PostgresRolePermissionRepository{pool: pool}
}

// GetByRoleID retrieves a role's permission links with each permission joined in.
func (r *PostgresRolePermissionRepository) GetByRoleID(ctx context.Context, roleID string) ([]*domain.RolePermission, error) {
	query := `
		SELECT rp.id, rp.role_id, rp.permission_id, rp.created_at,
		       p.id, p.subject, p.action, p.slug, p.description, p.created_at, p.updated_at
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
	`
	rows, err := r.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*domain.RolePermission
	for rows.Next() {
		link := &domain.RolePermission{Permission: &domain.Permission{}}
		if err := rows.Scan(
			&link.ID,
			&link.RoleID,
			&link.PermissionID,
			&link.CreatedAt,
			&link.Permission.ID,
			&link.Permission.Subject,
			&link.Permission.Action,
			&link.Permission.Slug,
			&link.Permission.Description,
			&link.Permission.CreatedAt,
			&link.Permission.UpdatedAt,
		); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// CreateMany inserts the given links in one batch.
func (r *PostgresRolePermissionRepository) CreateMany(ctx context.Context, links []*domain.RolePermission) error {
	if len(links) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO role_permissions (id, role_id, permission_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	for _, link := range links {
		batch.Queue(query, link.ID, link.RoleID, link.PermissionID, link.CreatedAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range links {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// DeleteByRoleAndPermissions removes the links matching (roleID, permissionIDs)
// and returns how many rows were removed.
func (r *PostgresRolePermissionRepository) DeleteByRoleAndPermissions(ctx context.Context, roleID string, permissionIDs []string) (int64, error) {
	query := `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = ANY($2)`
	tag, err := r.pool.Exec(ctx, query, roleID, permissionIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
