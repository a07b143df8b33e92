package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/dto"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "test-secret-key",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "test",
	}
}

func seedUser(t *testing.T, repo *mockUserRepository, email, password string, admin bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &domain.User{
		ID:           "user-" + email,
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		Phone:        "+4470000" + email[:2],
		PasswordHash: string(hash),
		IsAdmin:      admin,
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestAuthService_Login(t *testing.T) {
	userRepo := newMockUserRepository()
	sessionRepo := newMockSessionRepository()
	svc := NewAuthService(userRepo, sessionRepo, testJWTConfig())

	seedUser(t, userRepo, "login@example.com", "Password1", false)

	client := ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test-agent"}

	t.Run("first login", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "login@example.com",
			Password: "Password1",
		}, client)
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if resp.AccessToken == "" {
			t.Error("Login() AccessToken is empty")
		}
		if resp.RefreshToken == "" {
			t.Error("Login() RefreshToken is empty")
		}
		if !resp.IsFirstLogin {
			t.Error("Login() IsFirstLogin = false, want true")
		}
		if resp.User.Email != "login@example.com" {
			t.Errorf("Login() User.Email = %v", resp.User.Email)
		}
	})

	t.Run("second login clears first-login flag", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "login@example.com",
			Password: "Password1",
		}, client)
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if resp.IsFirstLogin {
			t.Error("Login() IsFirstLogin = true, want false")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "login@example.com",
			Password: "WrongPassword1",
		}, client)
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want %v", err, domain.ErrInvalidCredentials)
		}
	})

	t.Run("unknown email yields the same error as wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{
			Email:    "nobody@example.com",
			Password: "Password1",
		}, client)
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want %v", err, domain.ErrInvalidCredentials)
		}
	})
}

func TestAuthService_TokenTypeSeparation(t *testing.T) {
	userRepo := newMockUserRepository()
	sessionRepo := newMockSessionRepository()
	svc := NewAuthService(userRepo, sessionRepo, testJWTConfig())

	seedUser(t, userRepo, "types@example.com", "Password1", true)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "types@example.com",
		Password: "Password1",
	}, ClientInfo{})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	t.Run("access token validates", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(resp.AccessToken)
		if err != nil {
			t.Fatalf("ValidateAccessToken() error = %v", err)
		}
		if claims.Type != domain.TokenTypeAccess {
			t.Errorf("claims.Type = %v, want access", claims.Type)
		}
		if claims.Role != domain.TokenRoleAdmin {
			t.Errorf("claims.Role = %v, want admin", claims.Role)
		}
	})

	t.Run("refresh token rejected as access token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(resp.RefreshToken)
		if !errors.Is(err, domain.ErrWrongTokenType) {
			t.Errorf("ValidateAccessToken() error = %v, want %v", err, domain.ErrWrongTokenType)
		}
	})

	t.Run("access token rejected for refresh", func(t *testing.T) {
		_, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
			RefreshToken: resp.AccessToken,
		}, ClientInfo{})
		if !errors.Is(err, domain.ErrWrongTokenType) {
			t.Errorf("RefreshToken() error = %v, want %v", err, domain.ErrWrongTokenType)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-jwt")
		if !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("ValidateAccessToken() error = %v, want %v", err, domain.ErrInvalidToken)
		}
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	userRepo := newMockUserRepository()
	sessionRepo := newMockSessionRepository()
	svc := NewAuthService(userRepo, sessionRepo, testJWTConfig())

	seedUser(t, userRepo, "refresh@example.com", "Password1", false)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "refresh@example.com",
		Password: "Password1",
	}, ClientInfo{IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	t.Run("successful refresh keeps the refresh token", func(t *testing.T) {
		resp, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
			RefreshToken: login.RefreshToken,
		}, ClientInfo{IPAddress: "10.0.0.2", UserAgent: "new-agent"})
		if err != nil {
			t.Fatalf("RefreshToken() error = %v", err)
		}
		if resp.AccessToken == "" {
			t.Error("RefreshToken() AccessToken is empty")
		}
		if resp.RefreshToken != login.RefreshToken {
			t.Error("RefreshToken() rotated the refresh token, want it unchanged")
		}
	})

	t.Run("refresh updates session client info", func(t *testing.T) {
		session, _ := sessionRepo.GetByTokenAndUser(context.Background(), login.RefreshToken, "user-refresh@example.com")
		if session == nil {
			t.Fatal("session not found")
		}
		if session.IPAddress != "10.0.0.2" || session.UserAgent != "new-agent" {
			t.Errorf("session client info = %s/%s, want 10.0.0.2/new-agent", session.IPAddress, session.UserAgent)
		}
	})

	t.Run("signature-valid token without a session is rejected", func(t *testing.T) {
		// A second service sharing the secret mints a token the session
		// store has never seen.
		other := NewAuthService(userRepo, newMockSessionRepository(), testJWTConfig()).(*authService)
		user, _ := userRepo.GetByID(context.Background(), "user-refresh@example.com")
		foreign, err := other.mintToken(user, domain.TokenTypeRefresh, time.Now(), time.Hour)
		if err != nil {
			t.Fatalf("mintToken() error = %v", err)
		}

		_, err = svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
			RefreshToken: foreign,
		}, ClientInfo{})
		if !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("RefreshToken() error = %v, want %v", err, domain.ErrInvalidToken)
		}
	})

	t.Run("expired session is rejected even with a valid signature", func(t *testing.T) {
		session, _ := sessionRepo.GetByTokenAndUser(context.Background(), login.RefreshToken, "user-refresh@example.com")
		session.ExpiredAt = time.Now().Add(-time.Minute)

		_, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
			RefreshToken: login.RefreshToken,
		}, ClientInfo{})
		if !errors.Is(err, domain.ErrTokenExpired) {
			t.Errorf("RefreshToken() error = %v, want %v", err, domain.ErrTokenExpired)
		}
	})
}

func TestAuthService_AuthUser(t *testing.T) {
	userRepo := newMockUserRepository()
	sessionRepo := newMockSessionRepository()
	svc := NewAuthService(userRepo, sessionRepo, testJWTConfig())

	seedUser(t, userRepo, "whoami@example.com", "Password1", false)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "whoami@example.com",
		Password: "Password1",
	}, ClientInfo{})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	t.Run("resolves the token's user", func(t *testing.T) {
		user, err := svc.AuthUser(context.Background(), login.AccessToken)
		if err != nil {
			t.Fatalf("AuthUser() error = %v", err)
		}
		if user.Email != "whoami@example.com" {
			t.Errorf("AuthUser() Email = %v", user.Email)
		}
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		delete(userRepo.users, "user-whoami@example.com")
		_, err := svc.AuthUser(context.Background(), login.AccessToken)
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("AuthUser() error = %v, want %v", err, domain.ErrUserNotFound)
		}
	})
}

func TestAuthService_ExpiredAccessToken(t *testing.T) {
	userRepo := newMockUserRepository()
	svc := NewAuthService(userRepo, newMockSessionRepository(), testJWTConfig()).(*authService)

	user := seedUser(t, userRepo, "expired@example.com", "Password1", false)

	token, err := svc.mintToken(user, domain.TokenTypeAccess, time.Now().Add(-time.Hour), time.Minute)
	if err != nil {
		t.Fatalf("mintToken() error = %v", err)
	}

	_, err = svc.ValidateAccessToken(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("ValidateAccessToken() error = %v, want %v", err, domain.ErrTokenExpired)
	}
}

func TestAuthService_UpdatePassword(t *testing.T) {
	userRepo := newMockUserRepository()
	svc := NewAuthService(userRepo, newMockSessionRepository(), testJWTConfig())

	user := seedUser(t, userRepo, "pw@example.com", "OldPassword1", false)

	t.Run("wrong old password", func(t *testing.T) {
		err := svc.UpdatePassword(context.Background(), user.ID, &dto.UpdatePasswordRequest{
			OldPassword: "Nope1nope",
			Password:    "NewPassword1",
		})
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("UpdatePassword() error = %v, want %v", err, domain.ErrInvalidCredentials)
		}
	})

	t.Run("successful change", func(t *testing.T) {
		err := svc.UpdatePassword(context.Background(), user.ID, &dto.UpdatePasswordRequest{
			OldPassword: "OldPassword1",
			Password:    "NewPassword1",
		})
		if err != nil {
			t.Fatalf("UpdatePassword() error = %v", err)
		}

		stored, _ := userRepo.GetByID(context.Background(), user.ID)
		if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("NewPassword1")) != nil {
			t.Error("stored hash does not match the new password")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		err := svc.UpdatePassword(context.Background(), "missing", &dto.UpdatePasswordRequest{
			OldPassword: "OldPassword1",
			Password:    "NewPassword1",
		})
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("UpdatePassword() error = %v, want %v", err, domain.ErrUserNotFound)
		}
	})
}
