package handler

import (
	"net/http"

	"medchain/internal/catalog"
	"medchain/internal/httputil"
)

// CatalogHandler serves the clinical catalog
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// DepartmentsResponse lists the selectable departments
type DepartmentsResponse struct {
	Departments []catalog.Department `json:"departments"`
}

// ListDepartments returns every known department
// GET /api/catalog/departments
func (h *CatalogHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, DepartmentsResponse{
		Departments: h.catalog.Departments(),
	})
}
