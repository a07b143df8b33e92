package dto

import (
	"regexp"
	"unicode"
)

// CreateUserRequest creates a CRM account. RoleID is optional; when present
// and the account is admin-capable, role assignment happens asynchronously
// after the user row commits.
type CreateUserRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2"`
	LastName  string `json:"last_name" binding:"required,min=2"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	IsAdmin   bool   `json:"is_admin"`
	RoleID    string `json:"role_id"`
}

// UpdateUserRequest partially updates a user. RoleID, when present and
// different from the current assignment, triggers asynchronous reassignment.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=2"`
	LastName  *string `json:"last_name" binding:"omitempty,min=2"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	IsAdmin   *bool   `json:"is_admin"`
	Status    *string `json:"status" binding:"omitempty,oneof=active inactive"`
	RoleID    string  `json:"role_id"`
}

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ValidatePhone checks the phone number format.
func (r *CreateUserRequest) ValidatePhone() (bool, string) {
	if !phoneRegex.MatchString(r.Phone) {
		return false, "Phone must be 7-15 digits with an optional leading +"
	}
	return true, ""
}

// ValidatePassword validates password strength requirements:
// - at least one uppercase letter
// - at least one lowercase letter
// - at least one digit
func (r *CreateUserRequest) ValidatePassword() (bool, string) {
	return validatePasswordStrength(r.Password)
}

// ValidatePassword validates the new password's strength.
func (r *UpdatePasswordRequest) ValidatePassword() (bool, string) {
	return validatePasswordStrength(r.Password)
}

func validatePasswordStrength(password string) (bool, string) {
	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}

	if !hasUpper {
		return false, "Password must contain at least one uppercase letter"
	}
	if !hasLower {
		return false, "Password must contain at least one lowercase letter"
	}
	if !hasDigit {
		return false, "Password must contain at least one digit"
	}
	return true, ""
}
