package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
)

// PostgresSessionRepository implements SessionRepository using PostgreSQL.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository.
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Create persists a new refresh-token session.
func (r *PostgresSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO user_sessions (id, user_id, refresh_token, ip_address, user_agent, login_at, expired_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.RefreshToken,
		session.IPAddress,
		session.UserAgent,
		session.LoginAt,
		session.ExpiredAt,
	)
	return err
}

// GetByTokenAndUser retrieves the session backing a refresh token.
func (r *PostgresSessionRepository) GetByTokenAndUser(ctx context.Context, refreshToken, userID string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, refresh_token, ip_address, user_agent, login_at, expired_at
		FROM user_sessions
		WHERE refresh_token = $1 AND user_id = $2
	`
	session := &domain.Session{}
	err := r.pool.QueryRow(ctx, query, refreshToken, userID).Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshToken,
		&session.IPAddress,
		&session.UserAgent,
		&session.LoginAt,
		&session.ExpiredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// UpdateClientInfo records the most recent caller metadata on the session.
func (r *PostgresSessionRepository) UpdateClientInfo(ctx context.Context, id, ipAddress, userAgent string) error {
	query := `UPDATE user_sessions SET ip_address = $2, user_agent = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, ipAddress, userAgent)
	return err
}
