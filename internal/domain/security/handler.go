package security

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkbazaar/linkbazaar-api/internal/middleware"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Unlock clears the failed-attempt counter and any lock for an IP
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, "ip")
	if ip == "" {
		response.BadRequest(w, "ip is required")
		return
	}

	if err := h.svc.Reset(r.Context(), ip); err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"unlocked": ip})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireStaff())
	r.Delete("/lockouts/{ip}", h.Unlock)

	return r
}
