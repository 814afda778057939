package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linkbazaar/linkbazaar-api/internal/domain/user"
	"github.com/linkbazaar/linkbazaar-api/internal/middleware"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/jwt"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/response"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(dto); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	var referrerID uuid.NullUUID
	if dto.ReferrerID != "" {
		id, err := uuid.Parse(dto.ReferrerID)
		if err != nil {
			response.BadRequest(w, "invalid referrer id")
			return
		}
		referrerID = uuid.NullUUID{UUID: id, Valid: true}
	}

	result, err := h.svc.Register(r.Context(), RegisterParams{
		Email:      dto.Email,
		Username:   dto.Username,
		Password:   dto.Password,
		ReferrerID: referrerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken), errors.Is(err, user.ErrUsernameTaken):
			response.Conflict(w, err.Error())
		case errors.Is(err, ErrInvalidReferrer):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, result)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(dto); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	result, err := h.svc.Login(r.Context(), dto.Email, dto.Password, middleware.GetClientIP(r))
	if err != nil {
		var locked *LockedOutError
		switch {
		case errors.As(err, &locked):
			response.TooManyRequests(w, locked.Message)
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var dto RefreshDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(dto); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	tokens, err := h.svc.Refresh(r.Context(), dto.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, jwt.ErrExpiredToken):
			response.Unauthorized(w, "invalid refresh token")
		case errors.Is(err, user.ErrNotFound):
			response.Unauthorized(w, "account no longer exists")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]interface{}{"tokens": tokens})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			response.NotFound(w, "user not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"user": u})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.Me)
	})

	return r
}
