package service

import (
	"context"
	"errors"
	"testing"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/dto"
)

func TestPermissionService_Create(t *testing.T) {
	repo := newMockPermissionRepository()
	svc := NewPermissionService(repo)
	ctx := context.Background()

	t.Run("derives slug from subject and action", func(t *testing.T) {
		p, err := svc.Create(ctx, &dto.CreatePermissionRequest{
			Subject: "Contact Person",
			Action:  "create",
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if p.Slug != "contact-person.create" {
			t.Errorf("Create() Slug = %v, want contact-person.create", p.Slug)
		}
	})

	t.Run("duplicate slug is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &dto.CreatePermissionRequest{
			Subject: "contact   PERSON",
			Action:  "create",
		})
		if !errors.Is(err, domain.ErrPermissionSlugExists) {
			t.Errorf("Create() error = %v, want %v", err, domain.ErrPermissionSlugExists)
		}
	})

	t.Run("same subject with a different action is fine", func(t *testing.T) {
		p, err := svc.Create(ctx, &dto.CreatePermissionRequest{
			Subject: "Contact Person",
			Action:  "delete",
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if p.Slug != "contact-person.delete" {
			t.Errorf("Create() Slug = %v", p.Slug)
		}
	})
}

func TestPermissionService_Update(t *testing.T) {
	repo := newMockPermissionRepository()
	svc := NewPermissionService(repo)
	ctx := context.Background()

	a, err := svc.Create(ctx, &dto.CreatePermissionRequest{Subject: "Deal", Action: "read"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, &dto.CreatePermissionRequest{Subject: "Deal", Action: "update"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("changing the action recomputes the slug", func(t *testing.T) {
		action := "export"
		updated, err := svc.Update(ctx, a.ID, &dto.UpdatePermissionRequest{Action: &action})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Slug != "deal.export" {
			t.Errorf("Update() Slug = %v, want deal.export", updated.Slug)
		}
	})

	t.Run("recomputed slug colliding with another permission fails", func(t *testing.T) {
		action := "update"
		_, err := svc.Update(ctx, a.ID, &dto.UpdatePermissionRequest{Action: &action})
		if !errors.Is(err, domain.ErrPermissionSlugExists) {
			t.Errorf("Update() error = %v, want %v", err, domain.ErrPermissionSlugExists)
		}
	})

	t.Run("description-only update keeps the slug", func(t *testing.T) {
		desc := "exports deal data"
		updated, err := svc.Update(ctx, a.ID, &dto.UpdatePermissionRequest{Description: &desc})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Slug != "deal.export" {
			t.Errorf("Update() Slug = %v, want deal.export", updated.Slug)
		}
		if updated.Description != desc {
			t.Errorf("Update() Description = %v", updated.Description)
		}
	})

	t.Run("unknown permission", func(t *testing.T) {
		desc := "x"
		_, err := svc.Update(ctx, "missing", &dto.UpdatePermissionRequest{Description: &desc})
		if !errors.Is(err, domain.ErrPermissionNotFound) {
			t.Errorf("Update() error = %v, want %v", err, domain.ErrPermissionNotFound)
		}
	})
}

func TestPermissionService_List(t *testing.T) {
	repo := newMockPermissionRepository()
	svc := NewPermissionService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &dto.CreatePermissionRequest{Subject: "Contact", Action: "read"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, &dto.CreatePermissionRequest{Subject: "Deal", Action: "read"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("filter by subject", func(t *testing.T) {
		out, err := svc.List(ctx, &domain.PermissionFilter{Subject: "Contact"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(out) != 1 {
			t.Errorf("List() = %d results, want 1", len(out))
		}
	})

	t.Run("no filter returns all", func(t *testing.T) {
		out, err := svc.List(ctx, nil)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(out) != 2 {
			t.Errorf("List() = %d results, want 2", len(out))
		}
	})
}

func TestPermissionService_Delete(t *testing.T) {
	repo := newMockPermissionRepository()
	svc := NewPermissionService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, &dto.CreatePermissionRequest{Subject: "Report", Action: "read"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("deletes and frees the slug", func(t *testing.T) {
		if err := svc.Delete(ctx, p.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := svc.Create(ctx, &dto.CreatePermissionRequest{Subject: "Report", Action: "read"}); err != nil {
			t.Errorf("Create() after delete error = %v, want slug reusable", err)
		}
	})

	t.Run("unknown permission", func(t *testing.T) {
		if err := svc.Delete(ctx, "missing"); !errors.Is(err, domain.ErrPermissionNotFound) {
			t.Errorf("Delete() error = %v, want %v", err, domain.ErrPermissionNotFound)
		}
	})
}
