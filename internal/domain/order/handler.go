package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

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
	buyerID := middleware.GetUserID(r.Context())
	if buyerID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var dto CreateOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(dto); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	sellerID, err := uuid.Parse(dto.SellerID)
	if err != nil {
		response.BadRequest(w, "invalid seller id")
		return
	}
	listingID, err := uuid.Parse(dto.ListingID)
	if err != nil {
		response.BadRequest(w, "invalid listing id")
		return
	}

	o, err := h.svc.Create(r.Context(), CreateParams{
		BuyerID:      buyerID,
		SellerID:     sellerID,
		ListingID:    listingID,
		Price:        dto.Price,
		Requirements: dto.Requirements,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrSelfPurchase):
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

	response.Created(w, map[string]interface{}{"order": o})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid order id")
		return
	}

	o, err := h.svc.GetByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "order not found")
			return
		}
		response.InternalError(w)
		return
	}
	if o.BuyerID != userID && o.SellerID != userID && !middleware.IsStaff(middleware.GetRole(r.Context())) {
		response.Forbidden(w, "order belongs to another user")
		return
	}

	response.OK(w, map[string]interface{}{"order": o})
}

func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ListByBuyer)
}

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ListBySeller)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID, limit, offset int) ([]Order, error)) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := fn(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"orders": orders})
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Accept)
}

func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Deliver)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.ConfirmCompletion)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Cancel)
}

func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Decline)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, orderID, actorID uuid.UUID) (*Order, error)) {
	actorID := middleware.GetUserID(r.Context())
	if actorID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid order id")
		return
	}

	o, err := fn(r.Context(), orderID, actorID)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"order": o})
}

func (h *Handler) writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "order not found")
	case errors.Is(err, ErrNotYourOrder):
		response.Forbidden(w, "order belongs to another user")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, "order status does not allow this action")
	default:
		response.InternalError(w)
	}
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid order id")
		return
	}

	o, err := h.svc.Refund(r.Context(), orderID)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"order": o})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid order id")
		return
	}

	refunded, err := h.svc.DeleteWithRefund(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "order not found")
		case errors.Is(err, ErrOrderCompleted):
			response.Conflict(w, "completed orders cannot be deleted")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, map[string]interface{}{"deleted": true, "refund_amount": refunded})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Create)
	r.Get("/purchases", h.ListPurchases)
	r.Get("/sales", h.ListSales)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/accept", h.Accept)
	r.Post("/{id}/deliver", h.Deliver)
	r.Post("/{id}/complete", h.Complete)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/decline", h.Decline)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireStaff())
		r.Post("/{id}/refund", h.Refund)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		r.Delete("/{id}", h.Delete)
	})

	return r
}
