package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mailsense/mailsense/internal/api/dto"
	"github.com/mailsense/mailsense/internal/auth"
)

type AuthHandler struct {
	authService auth.Authenticator
}

func NewAuthHandler(authService auth.Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	user, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Username already registered"})
		case errors.Is(err, auth.ErrEmailTaken):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Email already registered"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Registration failed"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserDTO{
		ID:         user.ID.String(),
		Username:   user.Username,
		Email:      user.Email,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
	})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Token is required"})
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), token); err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid or expired token"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Verification failed"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Email verified successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	token, user, err := h.authService.Login(r.Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid username or password"})
		case errors.Is(err, auth.ErrEmailNotVerified):
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Email not verified. A new verification email has been sent."})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token: token,
		Type:  "bearer",
		User: dto.UserDTO{
			ID:         user.ID.String(),
			Username:   user.Username,
			Email:      user.Email,
			IsVerified: user.IsVerified,
			CreatedAt:  user.CreatedAt,
		},
	})
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestPasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Password reset request failed"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Password reset email sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid or expired token"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Password reset failed"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Password reset successful"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
