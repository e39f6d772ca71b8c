package home

import (
	"net/http"

	errorsfeature "github.com/dalemusser/collegehub/internal/app/features/errors"
	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler serves the landing document. Denied dashboard requests are
// redirected here.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type landing struct {
	Service  string            `json:"service"`
	SignedIn bool              `json:"signed_in"`
	Links    map[string]string `json:"links"`
}

// ServeRoot handles GET /.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	_, signedIn := auth.CurrentUser(r)
	links := map[string]string{
		"user":   "/api/user",
		"health": "/health",
	}
	if signedIn {
		links["dashboard"] = "/dashboard"
	}
	errorsfeature.WriteJSON(w, http.StatusOK, landing{
		Service:  "collegehub",
		SignedIn: signedIn,
		Links:    links,
	})
}
