package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{employeeService: employeeService}
}

// Create implements EmployeeHandler.
func (e *employeeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	var req employee.CreateEmployeeRequest
	if !decodeJSON(w, r, "CreateEmployee", &req, false) {
		return
	}

	created, err := e.employeeService.Create(r.Context(), principal, req)
	if err != nil {
		slog.Error("CreateEmployee service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Employee created successfully", created)
}

// List implements EmployeeHandler.
func (e *employeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	employees, err := e.employeeService.List(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessList(w, employees)
}

// Get implements EmployeeHandler.
func (e *employeeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	detail, err := e.employeeService.Get(r.Context(), principal, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, detail)
}
