// internal/app/features/departments/routes.go
package departments

import (
	"net/http"

	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts department mutations under the base path (typically
// "/departments" from bootstrap). Only super admins may create or delete.
// Extra middleware (such as a rate limiter) runs after the role check.
func Routes(h *Handler, sm *auth.SessionManager, mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(string(models.RoleSuperAdmin)))
		pr.Use(mw...)

		pr.Post("/", h.HandleCreate)
		pr.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}
