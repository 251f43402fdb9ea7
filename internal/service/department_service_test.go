package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"qmate-api/internal/model"
	"qmate-api/internal/repository"
)

func TestDepartmentService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("normalizes and validates input", func(t *testing.T) {
		svc := NewDepartmentService(repository.NewMemoryDirectory().Departments())

		blank := "   "
		dep, err := svc.Create(ctx, model.NewDepartment{Name: " Student Life ", Slug: " Student-Life ", Description: &blank})
		require.NoError(t, err)
		require.Equal(t, "Student Life", dep.Name)
		require.Equal(t, "student-life", dep.Slug)
		require.Nil(t, dep.Description)

		_, err = svc.Create(ctx, model.NewDepartment{Name: "Bad", Slug: "bad slug!"})
		require.ErrorIs(t, err, model.ErrInvalidInput)

		_, err = svc.Create(ctx, model.NewDepartment{Name: " ", Slug: "empty"})
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("ensures defaults idempotently", func(t *testing.T) {
		svc := NewDepartmentService(repository.NewMemoryDirectory().Departments())

		created, err := svc.EnsureDefaults(ctx, DefaultDepartments())
		require.NoError(t, err)
		require.Equal(t, 4, created)

		created, err = svc.EnsureDefaults(ctx, DefaultDepartments())
		require.NoError(t, err)
		require.Zero(t, created)

		list, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 4)
	})
}
