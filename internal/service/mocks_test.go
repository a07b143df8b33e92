package service

import (
	"context"
	"time"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
)

// mockUserRepository is an in-memory UserRepository.
type mockUserRepository struct {
	users       map[string]*domain.User
	emailIndex  map[string]*domain.User
	phoneIndex  map[string]*domain.User
	createError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:      make(map[string]*domain.User),
		emailIndex: make(map[string]*domain.User),
		phoneIndex: make(map[string]*domain.User),
	}
}

func (r *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if r.createError != nil {
		return r.createError
	}
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user
	r.phoneIndex[user.Phone] = user
	return nil
}

func (r *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.users[id], nil
}

func (r *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.emailIndex[email], nil
}

func (r *mockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.phoneIndex[phone], nil
}

func (r *mockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user
	r.phoneIndex[user.Phone] = user
	return nil
}

func (r *mockUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if u := r.users[id]; u != nil {
		u.LastLoginAt = &at
	}
	return nil
}

func (r *mockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if u := r.users[id]; u != nil {
		u.PasswordHash = passwordHash
	}
	return nil
}

// mockPermissionRepository is an in-memory PermissionRepository.
type mockPermissionRepository struct {
	permissions map[string]*domain.Permission
	slugIndex   map[string]*domain.Permission
}

func newMockPermissionRepository() *mockPermissionRepository {
	return &mockPermissionRepository{
		permissions: make(map[string]*domain.Permission),
		slugIndex:   make(map[string]*domain.Permission),
	}
}

func (r *mockPermissionRepository) Create(ctx context.Context, p *domain.Permission) error {
	r.permissions[p.ID] = p
	r.slugIndex[p.Slug] = p
	return nil
}

func (r *mockPermissionRepository) GetByID(ctx context.Context, id string) (*domain.Permission, error) {
	return r.permissions[id], nil
}

func (r *mockPermissionRepository) GetBySlug(ctx context.Context, slug string) (*domain.Permission, error) {
	return r.slugIndex[slug], nil
}

func (r *mockPermissionRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Permission, error) {
	var out []*domain.Permission
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p := r.permissions[id]; p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *mockPermissionRepository) List(ctx context.Context, filter *domain.PermissionFilter) ([]*domain.Permission, error) {
	var out []*domain.Permission
	for _, p := range r.permissions {
		if filter != nil {
			if filter.Subject != "" && p.Subject != filter.Subject {
				continue
			}
			if filter.Action != "" && p.Action != filter.Action {
				continue
			}
			if filter.Slug != "" && p.Slug != filter.Slug {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *mockPermissionRepository) Update(ctx context.Context, p *domain.Permission) error {
	old := r.permissions[p.ID]
	if old != nil && old.Slug != p.Slug {
		delete(r.slugIndex, old.Slug)
	}
	r.permissions[p.ID] = p
	r.slugIndex[p.Slug] = p
	return nil
}

func (r *mockPermissionRepository) Delete(ctx context.Context, id string) error {
	if p := r.permissions[id]; p != nil {
		delete(r.slugIndex, p.Slug)
		delete(r.permissions, id)
	}
	return nil
}

// mockRoleRepository is an in-memory RoleRepository.
type mockRoleRepository struct {
	roles     map[string]*domain.Role
	slugIndex map[string]*domain.Role
}

func newMockRoleRepository() *mockRoleRepository {
	return &mockRoleRepository{
		roles:     make(map[string]*domain.Role),
		slugIndex: make(map[string]*domain.Role),
	}
}

func (r *mockRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	r.roles[role.ID] = role
	r.slugIndex[role.Slug] = role
	return nil
}

func (r *mockRoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.roles[id], nil
}

func (r *mockRoleRepository) GetBySlug(ctx context.Context, slug string) (*domain.Role, error) {
	return r.slugIndex[slug], nil
}

func (r *mockRoleRepository) List(ctx context.Context, filter *domain.RoleFilter) ([]*domain.Role, error) {
	var out []*domain.Role
	for _, role := range r.roles {
		if filter != nil {
			if filter.Name != "" && role.Name != filter.Name {
				continue
			}
			if filter.Slug != "" && role.Slug != filter.Slug {
				continue
			}
		}
		out = append(out, role)
	}
	return out, nil
}

func (r *mockRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	old := r.roles[role.ID]
	if old != nil && old.Slug != role.Slug {
		delete(r.slugIndex, old.Slug)
	}
	r.roles[role.ID] = role
	r.slugIndex[role.Slug] = role
	return nil
}

func (r *mockRoleRepository) Delete(ctx context.Context, id string) error {
	if role := r.roles[id]; role != nil {
		delete(r.slugIndex, role.Slug)
		delete(r.roles, id)
	}
	return nil
}

// mockRolePermissionRepository is an in-memory RolePermissionRepository.
type mockRolePermissionRepository struct {
	links []*domain.RolePermission
}

func newMockRolePermissionRepository() *mockRolePermissionRepository {
	return &mockRolePermissionRepository{}
}

func (r *mockRolePermissionRepository) GetByRoleID(ctx context.Context, roleID string) ([]*domain.RolePermission, error) {
	var out []*domain.RolePermission
	for _, link := range r.links {
		if link.RoleID == roleID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (r *mockRolePermissionRepository) CreateMany(ctx context.Context, links []*domain.RolePermission) error {
	r.links = append(r.links, links...)
	return nil
}

func (r *mockRolePermissionRepository) DeleteByRoleAndPermissions(ctx context.Context, roleID string, permissionIDs []string) (int64, error) {
	wanted := make(map[string]bool, len(permissionIDs))
	for _, id := range permissionIDs {
		wanted[id] = true
	}
	var kept []*domain.RolePermission
	var removed int64
	for _, link := range r.links {
		if link.RoleID == roleID && wanted[link.PermissionID] {
			removed++
			continue
		}
		kept = append(kept, link)
	}
	r.links = kept
	return removed, nil
}

// mockUserRoleRepository is an in-memory UserRoleRepository.
type mockUserRoleRepository struct {
	byUser map[string]*domain.UserRole
}

func newMockUserRoleRepository() *mockUserRoleRepository {
	return &mockUserRoleRepository{byUser: make(map[string]*domain.UserRole)}
}

func (r *mockUserRoleRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserRole, error) {
	return r.byUser[userID], nil
}

func (r *mockUserRoleRepository) GetByRoleID(ctx context.Context, roleID string) ([]*domain.UserRole, error) {
	var out []*domain.UserRole
	for _, link := range r.byUser {
		if link.RoleID == roleID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (r *mockUserRoleRepository) Create(ctx context.Context, link *domain.UserRole) error {
	r.byUser[link.UserID] = link
	return nil
}

func (r *mockUserRoleRepository) Update(ctx context.Context, link *domain.UserRole) error {
	r.byUser[link.UserID] = link
	return nil
}

func (r *mockUserRoleRepository) DeleteByUserID(ctx context.Context, userID string) error {
	delete(r.byUser, userID)
	return nil
}

// mockSessionRepository is an in-memory SessionRepository.
type mockSessionRepository struct {
	sessions map[string]*domain.Session
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*domain.Session)}
}

func (r *mockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	r.sessions[session.ID] = session
	return nil
}

func (r *mockSessionRepository) GetByTokenAndUser(ctx context.Context, refreshToken, userID string) (*domain.Session, error) {
	for _, s := range r.sessions {
		if s.RefreshToken == refreshToken && s.UserID == userID {
			return s, nil
		}
	}
	return nil, nil
}

func (r *mockSessionRepository) UpdateClientInfo(ctx context.Context, id, ipAddress, userAgent string) error {
	if s := r.sessions[id]; s != nil {
		s.IPAddress = ipAddress
		s.UserAgent = userAgent
	}
	return nil
}

// capturingPublisher records published events.
type capturingPublisher struct {
	events []*domain.UserEvent
}

func (p *capturingPublisher) PublishUserEvent(ctx context.Context, event *domain.UserEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) Close() {}
