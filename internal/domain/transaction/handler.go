package transaction

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linkbazaar/linkbazaar-api/internal/domain/fee"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/settings"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/wallet"
	"github.com/linkbazaar/linkbazaar-api/internal/middleware"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/response"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(dto); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	req, err := h.svc.Create(r.Context(), CreateParams{
		UserID:   userID,
		Type:     RequestType(dto.Type),
		Amount:   dto.Amount,
		Method:   dto.Method,
		UserTxID: dto.UserTxID,
	})
	if err != nil {
		switch {
		case errors.Is(err, fee.ErrBelowMinimum), errors.Is(err, fee.ErrAboveMaximum):
			response.BadRequest(w, err.Error())
		case errors.Is(err, wallet.ErrInvalidAmount), errors.Is(err, ErrInvalidType), errors.Is(err, ErrMethodRequired):
			response.BadRequest(w, err.Error())
		case errors.Is(err, wallet.ErrInsufficientFunds):
			response.Conflict(w, "insufficient wallet balance")
		case errors.Is(err, settings.ErrNotConfigured):
			response.Error(w, http.StatusServiceUnavailable, "NOT_CONFIGURED", "platform is not configured for payments")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, map[string]interface{}{"request": req})
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	reqs, err := h.svc.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"requests": reqs})
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	reqs, err := h.svc.ListPending(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"requests": reqs})
}

func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	if actorID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid request id")
		return
	}

	var dto ProcessRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(dto); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	req, err := h.svc.Process(r.Context(), ProcessParams{
		RequestID: requestID,
		Decision:  Decision(dto.Decision),
		ActorID:   actorID,
		Note:      dto.Note,
		Reason:    dto.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "request not found")
		case errors.Is(err, ErrAlreadyProcessed):
			response.Conflict(w, "request already processed")
		case errors.Is(err, ErrReasonRequired), errors.Is(err, ErrInvalidDecision):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]interface{}{"request": req})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Create)
	r.Get("/", h.ListMine)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireStaff())
		r.Get("/pending", h.ListPending)
		r.Post("/{id}/process", h.Process)
	})

	return r
}
