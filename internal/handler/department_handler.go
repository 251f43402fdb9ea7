package handler

import (
	"context"
	"net/http"

	"qmate-api/internal/model"
)

type departmentService interface {
	List(ctx context.Context) ([]model.Department, error)
	Create(ctx context.Context, in model.NewDepartment) (model.Department, error)
}

type DepartmentHandler struct {
	service departmentService
}

func NewDepartmentHandler(service departmentService) *DepartmentHandler {
	return &DepartmentHandler{service: service}
}

func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if departments == nil {
		departments = []model.Department{}
	}
	writeSuccess(w, http.StatusOK, model.DepartmentList{Departments: departments})
}

func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.CreateDepartmentRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	department, err := h.service.Create(r.Context(), model.NewDepartment{
		Name:        payload.Name,
		Slug:        payload.Slug,
		Description: payload.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, department)
}
