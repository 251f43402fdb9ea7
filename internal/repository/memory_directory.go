package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"qmate-api/internal/model"
)

// MemoryDirectory keeps users and departments in process memory. It mirrors
// the uniqueness and foreign key rules of the Postgres schema and is used as
// a test double by the service, middleware and router tests.
type MemoryDirectory struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]model.User
	byEmail     map[string]uuid.UUID
	departments map[uuid.UUID]model.Department
	lookups     int
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		users:       map[uuid.UUID]model.User{},
		byEmail:     map[string]uuid.UUID{},
		departments: map[uuid.UUID]model.Department{},
	}
}

func (d *MemoryDirectory) FindByID(_ context.Context, id uuid.UUID) (model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++

	u, ok := d.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (d *MemoryDirectory) FindByEmail(_ context.Context, email string) (model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++

	id, ok := d.byEmail[model.NormalizeEmail(email)]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return d.users[id], nil
}

func (d *MemoryDirectory) Create(_ context.Context, nu model.NewUser) (model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	email := model.NormalizeEmail(nu.Email)
	if _, exists := d.byEmail[email]; exists {
		return model.User{}, model.ErrDuplicateIdentity
	}
	if nu.DepartmentID != nil {
		if _, exists := d.departments[*nu.DepartmentID]; !exists {
			return model.User{}, model.ErrUnknownDepartment
		}
	}

	now := time.Now().UTC()
	u := model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: nu.PasswordHash,
		Name:         nu.Name,
		Role:         nu.Role,
		DepartmentID: nu.DepartmentID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	d.users[u.ID] = u
	d.byEmail[email] = u.ID
	return u, nil
}

func (d *MemoryDirectory) DepartmentExists(_ context.Context, id uuid.UUID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.departments[id]
	return ok, nil
}

func (d *MemoryDirectory) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now().UTC()
	d.users[id] = u
	return nil
}

func (d *MemoryDirectory) Count(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users), nil
}

// Lookups returns how many FindByID/FindByEmail calls have been served.
func (d *MemoryDirectory) Lookups() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lookups
}

// Departments exposes the department side of the directory with the same
// method set as DepartmentRepository.
func (d *MemoryDirectory) Departments() *MemoryDepartments {
	return &MemoryDepartments{dir: d}
}

type MemoryDepartments struct {
	dir *MemoryDirectory
}

func (m *MemoryDepartments) List(_ context.Context) ([]model.Department, error) {
	m.dir.mu.RLock()
	defer m.dir.mu.RUnlock()

	out := make([]model.Department, 0, len(m.dir.departments))
	for _, dep := range m.dir.departments {
		out = append(out, dep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryDepartments) FindBySlug(_ context.Context, slug string) (model.Department, error) {
	m.dir.mu.RLock()
	defer m.dir.mu.RUnlock()

	slug = strings.TrimSpace(slug)
	for _, dep := range m.dir.departments {
		if dep.Slug == slug {
			return dep, nil
		}
	}
	return model.Department{}, model.ErrDepartmentNotFound
}

func (m *MemoryDepartments) Create(_ context.Context, nd model.NewDepartment) (model.Department, error) {
	m.dir.mu.Lock()
	defer m.dir.mu.Unlock()

	for _, dep := range m.dir.departments {
		if dep.Slug == nd.Slug || dep.Name == nd.Name {
			return model.Department{}, model.ErrDepartmentConflict
		}
	}

	now := time.Now().UTC()
	dep := model.Department{
		ID:          uuid.New(),
		Name:        nd.Name,
		Slug:        nd.Slug,
		Description: nd.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.dir.departments[dep.ID] = dep
	return dep, nil
}
