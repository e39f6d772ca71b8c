// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/dashboard").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	super := string(models.RoleSuperAdmin)
	dept := string(models.RoleDepartmentAdmin)

	r.Get("/", h.ServeDashboard)
	r.With(sm.RequireRole(super)).Get("/super-admin", h.ServeSuperAdmin)
	r.With(sm.RequireRole(dept)).Get("/department-admin", h.ServeDepartmentAdmin)
	r.With(sm.RequireRole(super, dept)).Post("/actions/{action}", h.ServeAction)

	return r
}
