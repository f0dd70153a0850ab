package handlers

import (
	"fmt"
	"net/http"

	"github.com/mailsense/mailsense/internal/api/dto"
	"github.com/mailsense/mailsense/internal/api/middleware"
	"github.com/mailsense/mailsense/internal/auth"
	"github.com/mailsense/mailsense/pkg/config"
)

type SubscriptionHandler struct {
	authService auth.Authenticator
	paddle      *config.PaddleConfig
}

func NewSubscriptionHandler(authService auth.Authenticator, paddle *config.PaddleConfig) *SubscriptionHandler {
	return &SubscriptionHandler{authService: authService, paddle: paddle}
}

func (h *SubscriptionHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SubscriptionStatusResponse{
		IsPremium:          user.IsPremium,
		SubscriptionStatus: user.SubscriptionStatus,
		APIUsageCount:      user.APIUsageCount,
		APIUsageLimit:      user.APIUsageLimit,
	})
}

func (h *SubscriptionHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	if h.paddle.VendorID == "" || h.paddle.ProductID == "" {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Billing not configured"})
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.CheckoutResponse{
		CheckoutURL:   fmt.Sprintf("https://buy.paddle.com/product/%s", h.paddle.ProductID),
		CustomerEmail: user.Email,
		UserID:        user.ID.String(),
	})
}

func (h *SubscriptionHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.PricingResponse{
		Plans: []dto.PricingPlan{
			{
				Name:     "Free",
				Price:    0,
				APICalls: 10,
				Features: []string{"Basic sentiment analysis", "Email verification"},
			},
			{
				Name:     "Premium",
				Price:    9.99,
				APICalls: "unlimited",
				Features: []string{"Unlimited sentiment analysis", "Advanced tone analysis", "Priority support"},
			},
		},
	})
}
