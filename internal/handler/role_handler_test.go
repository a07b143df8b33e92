package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/dto"
)

// mockRoleService is a mock implementation of RoleService
type mockRoleService struct {
	roles       map[string]*domain.Role
	permissions map[string]*domain.Permission
	links       map[string][]string          // roleID -> permissionIDs
	userRoles   map[string]*domain.UserRole  // userID -> link
	admins      map[string]bool              // userID -> is admin
}

func newMockRoleService() *mockRoleService {
	return &mockRoleService{
		roles:       make(map[string]*domain.Role),
		permissions: make(map[string]*domain.Permission),
		links:       make(map[string][]string),
		userRoles:   make(map[string]*domain.UserRole),
		admins:      make(map[string]bool),
	}
}

func (m *mockRoleService) Create(ctx context.Context, req *dto.CreateRoleRequest) (*domain.Role, error) {
	for _, r := range m.roles {
		if r.Name == req.Name {
			return nil, domain.ErrRoleSlugExists
		}
	}
	role := &domain.Role{ID: "role-1", Name: req.Name, Slug: req.Name}
	m.roles[role.ID] = role
	return role, nil
}

func (m *mockRoleService) List(ctx context.Context, filter *domain.RoleFilter) ([]*domain.Role, error) {
	var out []*domain.Role
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRoleService) GetOrFail(ctx context.Context, id string) (*domain.Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return role, nil
}

func (m *mockRoleService) Update(ctx context.Context, id string, req *dto.UpdateRoleRequest) (*domain.Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return role, nil
}

func (m *mockRoleService) Delete(ctx context.Context, id string) error {
	if _, ok := m.roles[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(m.roles, id)
	return nil
}

func (m *mockRoleService) AssignPermissions(ctx context.Context, roleID string, permissionIDs []string) ([]*domain.RolePermission, error) {
	if _, ok := m.roles[roleID]; !ok {
		return nil, domain.ErrRoleNotFound
	}
	for _, id := range permissionIDs {
		if _, ok := m.permissions[id]; !ok {
			return nil, domain.ErrSomePermissionsMissing
		}
	}
	linked := make(map[string]bool)
	for _, id := range m.links[roleID] {
		linked[id] = true
	}
	var out []*domain.RolePermission
	for _, id := range permissionIDs {
		if linked[id] {
			continue
		}
		m.links[roleID] = append(m.links[roleID], id)
		out = append(out, &domain.RolePermission{ID: "link-" + id, RoleID: roleID, PermissionID: id})
	}
	if len(out) == 0 {
		return nil, domain.ErrNoNewPermissions
	}
	return out, nil
}

func (m *mockRoleService) RemovePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	if _, ok := m.roles[roleID]; !ok {
		return domain.ErrRoleNotFound
	}
	linked := make(map[string]bool)
	for _, id := range m.links[roleID] {
		linked[id] = true
	}
	removed := false
	var kept []string
	wanted := make(map[string]bool)
	for _, id := range permissionIDs {
		wanted[id] = true
	}
	for _, id := range m.links[roleID] {
		if wanted[id] {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		return domain.ErrNoLinkedPermissions
	}
	m.links[roleID] = kept
	return nil
}

func (m *mockRoleService) GetPermissions(ctx context.Context, roleID string) ([]*domain.RolePermission, error) {
	if _, ok := m.roles[roleID]; !ok {
		return nil, domain.ErrRoleNotFound
	}
	var out []*domain.RolePermission
	for _, id := range m.links[roleID] {
		out = append(out, &domain.RolePermission{RoleID: roleID, PermissionID: id})
	}
	return out, nil
}

func (m *mockRoleService) GetUsers(ctx context.Context, roleID string) ([]*domain.UserRole, error) {
	if _, ok := m.roles[roleID]; !ok {
		return nil, domain.ErrRoleNotFound
	}
	var out []*domain.UserRole
	for _, link := range m.userRoles {
		if link.RoleID == roleID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (m *mockRoleService) AssignUserRole(ctx context.Context, userID, roleID string) (*domain.UserRole, error) {
	if _, ok := m.roles[roleID]; !ok {
		return nil, domain.ErrRoleNotFound
	}
	if existing := m.userRoles[userID]; existing != nil {
		existing.RoleID = roleID
		return existing, nil
	}
	isAdmin, known := m.admins[userID]
	if !known {
		return nil, domain.ErrUserNotFound
	}
	if !isAdmin {
		return nil, domain.ErrUserNotAdmin
	}
	link := &domain.UserRole{ID: "ur-1", UserID: userID, RoleID: roleID}
	m.userRoles[userID] = link
	return link, nil
}

func (m *mockRoleService) RemoveUserRole(ctx context.Context, userID string) error {
	if m.userRoles[userID] == nil {
		return domain.ErrUserRoleNotFound
	}
	delete(m.userRoles, userID)
	return nil
}

func setupRoleRouter(h *RoleHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	roles := router.Group("/roles")
	roles.POST("", h.Create)
	roles.GET("", h.List)
	roles.POST("/users", h.AssignUserRole)
	roles.DELETE("/users/:user_id", h.RemoveUserRole)
	roles.GET("/:id", h.Get)
	roles.PATCH("/:id", h.Update)
	roles.DELETE("/:id", h.Delete)
	roles.POST("/:id/permissions", h.AssignPermissions)
	roles.DELETE("/:id/permissions", h.RemovePermissions)
	roles.GET("/:id/permissions", h.GetPermissions)
	roles.GET("/:id/users", h.GetUsers)
	return router
}

func TestRoleHandler_Create(t *testing.T) {
	svc := newMockRoleService()
	router := setupRoleRouter(NewRoleHandler(svc))

	body, _ := json.Marshal(dto.CreateRoleRequest{Name: "Manager"})
	req, _ := http.NewRequest(http.MethodPost, "/roles", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusCreated, resp.Code)

	// Duplicate name maps to 400 with a CONFLICT code.
	req, _ = http.NewRequest(http.MethodPost, "/roles", bytes.NewReader(body))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "CONFLICT", envelope.Error.Code)
}

func TestRoleHandler_AssignPermissions(t *testing.T) {
	svc := newMockRoleService()
	svc.roles["role-1"] = &domain.Role{ID: "role-1", Name: "Editor"}
	svc.permissions["p1"] = &domain.Permission{ID: "p1"}
	router := setupRoleRouter(NewRoleHandler(svc))

	post := func(roleID string, ids []string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(dto.RolePermissionsRequest{PermissionIDs: ids})
		req, _ := http.NewRequest(http.MethodPost, "/roles/"+roleID+"/permissions", bytes.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	t.Run("created", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, post("role-1", []string{"p1"}).Code)
	})

	t.Run("redundant assignment is a 400", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, post("role-1", []string{"p1"}).Code)
	})

	t.Run("unknown permission is a 400", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, post("role-1", []string{"missing"}).Code)
	})

	t.Run("unknown role is a 404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, post("nope", []string{"p1"}).Code)
	})

	t.Run("empty id list rejected by binding", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, post("role-1", []string{}).Code)
	})
}

func TestRoleHandler_UserRoleRoutes(t *testing.T) {
	svc := newMockRoleService()
	svc.roles["role-1"] = &domain.Role{ID: "role-1", Name: "Manager"}
	svc.admins["admin-1"] = true
	svc.admins["user-1"] = false
	router := setupRoleRouter(NewRoleHandler(svc))

	assign := func(userID, roleID string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(dto.AssignUserRoleRequest{UserID: userID, RoleID: roleID})
		req, _ := http.NewRequest(http.MethodPost, "/roles/users", bytes.NewReader(body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	t.Run("assign to admin", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, assign("admin-1", "role-1").Code)
	})

	t.Run("non-admin is a 400", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, assign("user-1", "role-1").Code)
	})

	t.Run("unknown user is a 404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, assign("ghost", "role-1").Code)
	})

	t.Run("unknown role is a 404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, assign("admin-1", "ghost").Code)
	})

	t.Run("remove existing link", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, "/roles/users/admin-1", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("remove absent link is a 404", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, "/roles/users/admin-1", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestRoleHandler_Get(t *testing.T) {
	svc := newMockRoleService()
	svc.roles["role-1"] = &domain.Role{ID: "role-1", Name: "Viewer"}
	router := setupRoleRouter(NewRoleHandler(svc))

	req, _ := http.NewRequest(http.MethodGet, "/roles/role-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)

	req, _ = http.NewRequest(http.MethodGet, "/roles/missing", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
