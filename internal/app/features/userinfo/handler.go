// internal/app/features/userinfo/handler.go
package userinfo

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/collegehub/internal/app/system/auth"
)

// Handler reports who the current session belongs to.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type userInfo struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	DepartmentID    string `json:"department_id,omitempty"`
	Dashboard       string `json:"dashboard,omitempty"`
}

// ServeUserInfo returns the session identity and, for admins, the path of
// their dashboard.
//
//	{ "isAuthenticated": true, "id": "...", "name": "...", "email": "...",
//	  "role": "department_admin", "department_id": "...",
//	  "dashboard": "/dashboard/department-admin" }
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := auth.CurrentUser(r)
	if !ok {
		_ = json.NewEncoder(w).Encode(userInfo{})
		return
	}

	info := userInfo{
		IsAuthenticated: true,
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		DepartmentID:    user.DepartmentID,
	}
	switch user.Role {
	case "super_admin":
		info.Dashboard = "/dashboard/super-admin"
	case "department_admin":
		info.Dashboard = "/dashboard/department-admin"
	}
	_ = json.NewEncoder(w).Encode(info)
}
