package settings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkbazaar/linkbazaar-api/internal/middleware"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/response"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/validator"
)

type Handler struct {
	repo  *Repository
	cache *Cache
}

func NewHandler(repo *Repository, cache *Cache) *Handler {
	return &Handler{repo: repo, cache: cache}
}

type updateDTO struct {
	PlatformFeeType          string `json:"platform_fee_type" validate:"required,oneof=percentage flat"`
	PlatformFeeValue         int64  `json:"platform_fee_value" validate:"gte=0"`
	MinDepositAmount         int64  `json:"min_deposit_amount" validate:"gte=0"`
	MaxDepositAmount         int64  `json:"max_deposit_amount" validate:"gte=0"`
	MinWithdrawalAmount      int64  `json:"min_withdrawal_amount" validate:"gte=0"`
	MaxWithdrawalAmount      int64  `json:"max_withdrawal_amount" validate:"gte=0"`
	ReferralCommissionAmount int64  `json:"referral_commission_amount" validate:"gte=0"`
}

type toggleDTO struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Get(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			response.NotFound(w, "platform settings not configured")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"settings": s})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto updateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(dto); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	current, err := h.repo.Get(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			response.NotFound(w, "platform settings not configured")
			return
		}
		response.InternalError(w)
		return
	}

	current.PlatformFeeType = FeeType(dto.PlatformFeeType)
	current.PlatformFeeValue = dto.PlatformFeeValue
	current.MinDepositAmount = dto.MinDepositAmount
	current.MaxDepositAmount = dto.MaxDepositAmount
	current.MinWithdrawalAmount = dto.MinWithdrawalAmount
	current.MaxWithdrawalAmount = dto.MaxWithdrawalAmount
	current.ReferralCommissionAmount = dto.ReferralCommissionAmount

	if err := h.repo.Update(r.Context(), current); err != nil {
		response.InternalError(w)
		return
	}
	h.cache.Invalidate(r.Context())

	response.OK(w, map[string]interface{}{"settings": current})
}

func (h *Handler) SetLoginProtection(w http.ResponseWriter, r *http.Request) {
	var dto toggleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(dto); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	if err := h.repo.SetLoginProtection(r.Context(), *dto.Enabled); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			response.NotFound(w, "platform settings not configured")
			return
		}
		response.InternalError(w)
		return
	}
	h.cache.Invalidate(r.Context())

	response.OK(w, map[string]interface{}{"login_protection_enabled": *dto.Enabled})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireAdmin())
	r.Get("/", h.Get)
	r.Put("/", h.Update)
	r.Put("/login-protection", h.SetLoginProtection)

	return r
}
