package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/dto"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/repository"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/config"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/telemetry"
)

// ClientInfo carries the request metadata recorded on a session.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthService defines the interface for authentication operations.
type AuthService interface {
	// Login verifies credentials and mints an access/refresh token pair
	// backed by a new session row.
	Login(ctx context.Context, req *dto.LoginRequest, client ClientInfo) (*dto.LoginResponse, error)
	// AuthUser resolves the user behind a bearer access token.
	AuthUser(ctx context.Context, accessToken string) (*domain.User, error)
	// ValidateAccessToken parses an access token and returns its claims.
	ValidateAccessToken(tokenString string) (*domain.Claims, error)
	// RefreshToken exchanges a valid refresh token for a new access token.
	// The refresh token itself is not rotated.
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, client ClientInfo) (*dto.RefreshResponse, error)
	// UpdatePassword changes a user's password after verifying the old one.
	UpdatePassword(ctx context.Context, userID string, req *dto.UpdatePasswordRequest) error
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	jwtCfg      config.JWTConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, jwtCfg config.JWTConfig) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtCfg:      jwtCfg,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, client ClientInfo) (*dto.LoginResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	// Unknown email and wrong password collapse to the same error so the
	// response never reveals whether the account exists.
	if user == nil {
		span.SetStatus(codes.Error, "unknown email")
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		span.SetStatus(codes.Error, "password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	span.SetAttributes(attribute.String("user_id", user.ID))

	isFirstLogin := user.LastLoginAt == nil

	now := time.Now()
	accessToken, err := s.mintToken(user, domain.TokenTypeAccess, now, s.jwtCfg.AccessTokenTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	refreshToken, err := s.mintToken(user, domain.TokenTypeRefresh, now, s.jwtCfg.RefreshTokenTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	session := &domain.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
		LoginAt:      now,
		ExpiredAt:    now.Add(s.jwtCfg.RefreshTokenTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	user.LastLoginAt = &now

	span.SetAttributes(attribute.Bool("is_first_login", isFirstLogin))
	span.SetStatus(codes.Ok, "")
	return &dto.LoginResponse{
		User:         dto.ToUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IsFirstLogin: isFirstLogin,
	}, nil
}

func (s *authService) AuthUser(ctx context.Context, accessToken string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.auth_user")
	defer span.End()

	claims, err := s.parseToken(accessToken, domain.TokenTypeAccess)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", claims.UserID))

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	// A signed token can outlive its account.
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

func (s *authService) ValidateAccessToken(tokenString string) (*domain.Claims, error) {
	return s.parseToken(tokenString, domain.TokenTypeAccess)
}

func (s *authService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, client ClientInfo) (*dto.RefreshResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.refresh")
	defer span.End()

	claims, err := s.parseToken(req.RefreshToken, domain.TokenTypeRefresh)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", claims.UserID))

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	// The session row is the authority. A valid signature alone is not
	// enough to refresh.
	session, err := s.sessionRepo.GetByTokenAndUser(ctx, req.RefreshToken, user.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if session == nil {
		span.SetStatus(codes.Error, "no session for token")
		return nil, domain.ErrInvalidToken
	}
	if time.Now().After(session.ExpiredAt) {
		span.SetStatus(codes.Error, "session expired")
		return nil, domain.ErrTokenExpired
	}

	if err := s.sessionRepo.UpdateClientInfo(ctx, session.ID, client.IPAddress, client.UserAgent); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	accessToken, err := s.mintToken(user, domain.TokenTypeAccess, time.Now(), s.jwtCfg.AccessTokenTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.RefreshResponse{
		User:         dto.ToUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: req.RefreshToken,
	}, nil
}

func (s *authService) UpdatePassword(ctx context.Context, userID string, req *dto.UpdatePasswordRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.update_password")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return domain.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		span.SetStatus(codes.Error, "old password mismatch")
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *authService) mintToken(user *domain.User, tokenType domain.TokenType, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.TokenRole()),
		"type": string(tokenType),
		"iat":  issuedAt.Unix(),
		"exp":  issuedAt.Add(ttl).Unix(),
	}
	if s.jwtCfg.Issuer != "" {
		claims["iss"] = s.jwtCfg.Issuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

func (s *authService) parseToken(tokenString string, want domain.TokenType) (*domain.Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	tokenType, _ := claims["type"].(string)
	if sub == "" {
		return nil, domain.ErrInvalidToken
	}
	if domain.TokenType(tokenType) != want {
		return nil, domain.ErrWrongTokenType
	}

	return &domain.Claims{
		UserID: sub,
		Role:   domain.TokenRole(role),
		Type:   domain.TokenType(tokenType),
	}, nil
}
