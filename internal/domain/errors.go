package domain

import "errors"

// Domain errors
var (
	// Credential / token errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrWrongTokenType     = errors.New("wrong token type")

	// Not-found errors
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrUserRoleNotFound   = errors.New("user role not found")

	// Uniqueness errors
	ErrPermissionSlugExists = errors.New("permission with this slug already exists")
	ErrRoleSlugExists       = errors.New("role with this slug already exists")
	ErrEmailExists          = errors.New("user with this email already exists")
	ErrPhoneExists          = errors.New("user with this phone already exists")

	// Assignment errors
	ErrSomePermissionsMissing = errors.New("some permissions do not exist")
	ErrNoNewPermissions       = errors.New("all permissions are already assigned to this role")
	ErrNoLinkedPermissions    = errors.New("none of the permissions are assigned to this role")
	ErrUserNotAdmin           = errors.New("only admin users can be assigned a role")
)

