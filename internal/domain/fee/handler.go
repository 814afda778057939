package fee

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linkbazaar/linkbazaar-api/internal/middleware"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/response"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns collected fee records, optionally filtered by fee_type
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var feeType *RecordType
	if raw := r.URL.Query().Get("fee_type"); raw != "" {
		ft := RecordType(raw)
		switch ft {
		case RecordTypeTopUp, RecordTypeWithdrawal, RecordTypeSellerDomainFee:
			feeType = &ft
		default:
			response.BadRequest(w, "invalid fee_type")
			return
		}
	}

	records, err := h.repo.List(r.Context(), feeType, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"records": records})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireStaff())
	r.Get("/", h.List)

	return r
}
