package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Rrens/sql-tutor/internal/api/response"
	"github.com/Rrens/sql-tutor/internal/domain"
	"github.com/Rrens/sql-tutor/internal/service"
)

var validate = validator.New()

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RequestOTP mails a one-time login code to the given address
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.authService.RequestCode(r.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrCooldown) {
			response.TooManyRequests(w, err.Error())
			return
		}
		response.InternalError(w, "failed to send code")
		return
	}

	response.OK(w, map[string]string{"message": "code sent"})
}

// VerifyOTP exchanges a one-time code for a token pair
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPVerify
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	pair, err := h.authService.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			response.Unauthorized(w, err.Error())
			return
		}
		response.InternalError(w, "failed to verify code")
		return
	}

	response.OK(w, pair)
}

// Refresh rotates a token pair
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	pair, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.Unauthorized(w, "invalid refresh token")
		return
	}

	response.OK(w, pair)
}
