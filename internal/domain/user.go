package domain

import "time"

// UserStatus marks whether an account can sign in.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// TokenRole is the coarse role flag embedded in tokens, derived from IsAdmin.
type TokenRole string

const (
	TokenRoleAdmin TokenRole = "admin"
	TokenRoleUser  TokenRole = "user"
)

// User is a CRM account. Fine-grained authorization lives in the UserRole
// link; the token only carries the admin/user flag.
type User struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"is_admin"`
	Status       UserStatus `json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TokenRole returns the role flag minted into this user's tokens.
func (u *User) TokenRole() TokenRole {
	if u.IsAdmin {
		return TokenRoleAdmin
	}
	return TokenRoleUser
}

// TokenType discriminates access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the decoded token payload.
type Claims struct {
	UserID string
	Role   TokenRole
	Type   TokenType
}

// Session binds a refresh token to a user and client metadata. A session row
// is the authority for refresh validity: a signature-valid token without a
// matching, unexpired session is rejected.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	RefreshToken string    `json:"-"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	LoginAt      time.Time `json:"login_at"`
	ExpiredAt    time.Time `json:"expired_at"`
}
