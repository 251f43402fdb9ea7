package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"qmate-api/internal/model"
)

const departmentColumns = `id, name, slug, description, is_active, created_at, updated_at`

type DepartmentRepository struct {
	pool *pgxpool.Pool
}

func NewDepartmentRepository(pool *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

func (r *DepartmentRepository) List(ctx context.Context) ([]model.Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	departments := make([]model.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *DepartmentRepository) FindBySlug(ctx context.Context, slug string) (model.Department, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE slug = $1`, strings.TrimSpace(slug))
	d, err := scanDepartment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Department{}, model.ErrDepartmentNotFound
	}
	if err != nil {
		return model.Department{}, fmt.Errorf("find department by slug: %w", err)
	}
	return d, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, nd model.NewDepartment) (model.Department, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO departments (id, name, slug, description, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, true, $5, $5)
		 RETURNING `+departmentColumns,
		uuid.New(), nd.Name, nd.Slug, nd.Description, now)

	d, err := scanDepartment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return model.Department{}, model.ErrDepartmentConflict
		}
		return model.Department{}, fmt.Errorf("create department: %w", err)
	}
	return d, nil
}

func scanDepartment(row pgx.Row) (model.Department, error) {
	var d model.Department
	err := row.Scan(&d.ID, &d.Name, &d.Slug, &d.Description, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}
