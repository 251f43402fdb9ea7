package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"qmate-api/internal/model"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type DepartmentStore interface {
	List(ctx context.Context) ([]model.Department, error)
	FindBySlug(ctx context.Context, slug string) (model.Department, error)
	Create(ctx context.Context, department model.NewDepartment) (model.Department, error)
}

type DepartmentService struct {
	store DepartmentStore
}

func NewDepartmentService(store DepartmentStore) *DepartmentService {
	return &DepartmentService{store: store}
}

func (s *DepartmentService) List(ctx context.Context) ([]model.Department, error) {
	return s.store.List(ctx)
}

func (s *DepartmentService) Create(ctx context.Context, in model.NewDepartment) (model.Department, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		in.Description = &desc
		if desc == "" {
			in.Description = nil
		}
	}

	if in.Name == "" {
		return model.Department{}, fmt.Errorf("%w: department name is required", model.ErrInvalidInput)
	}
	if !slugPattern.MatchString(in.Slug) {
		return model.Department{}, fmt.Errorf("%w: slug must be lowercase words joined by dashes", model.ErrInvalidInput)
	}

	return s.store.Create(ctx, in)
}

// EnsureDefaults creates every department whose slug is not yet present and
// returns how many were created.
func (s *DepartmentService) EnsureDefaults(ctx context.Context, defaults []model.NewDepartment) (int, error) {
	created := 0
	for _, d := range defaults {
		_, err := s.store.FindBySlug(ctx, d.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrDepartmentNotFound) {
			return created, fmt.Errorf("lookup department %s: %w", d.Slug, err)
		}

		if _, err := s.Create(ctx, d); err != nil {
			return created, fmt.Errorf("create department %s: %w", d.Slug, err)
		}
		created++
	}
	return created, nil
}

func DefaultDepartments() []model.NewDepartment {
	describe := func(s string) *string { return &s }
	return []model.NewDepartment{
		{Name: "Computer Science", Slug: "cs", Description: describe("Computer Science Department")},
		{Name: "Administration", Slug: "admin", Description: describe("General Administration")},
		{Name: "Finance", Slug: "finance", Description: describe("Finance and Fees Department")},
		{Name: "Academic Affairs", Slug: "academic", Description: describe("Academic Affairs Department")},
	}
}
