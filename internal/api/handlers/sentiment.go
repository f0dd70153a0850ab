package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mailsense/mailsense/internal/api/dto"
	"github.com/mailsense/mailsense/internal/api/middleware"
	"github.com/mailsense/mailsense/internal/auth"
	"github.com/mailsense/mailsense/internal/sentiment"
)

type SentimentHandler struct {
	sentimentService *sentiment.Service
	authService      auth.Authenticator
}

func NewSentimentHandler(sentimentService *sentiment.Service, authService auth.Authenticator) *SentimentHandler {
	return &SentimentHandler{
		sentimentService: sentimentService,
		authService:      authService,
	}
}

func (h *SentimentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req dto.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "User not found"})
		return
	}

	analysis, err := h.sentimentService.Analyze(r.Context(), user, req.EmailText)
	if err != nil {
		switch {
		case errors.Is(err, sentiment.ErrUsageLimitReached):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "API usage limit reached. Upgrade to premium for unlimited analyses."})
		case errors.Is(err, sentiment.ErrUpstream):
			writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{Error: "Analysis service unavailable"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Analysis failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.AnalysisResponse{
		Sentiment:  analysis.Sentiment,
		Tone:       analysis.Tone,
		AnalyzedAt: analysis.AnalyzedAt,
	})
}

func (h *SentimentHandler) History(w http.ResponseWriter, r *http.Request) {
	analyses, err := h.sentimentService.History(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load analysis history"})
		return
	}

	items := make([]dto.AnalysisHistoryItem, 0, len(analyses))
	for _, a := range analyses {
		items = append(items, dto.AnalysisHistoryItem{
			ID:         a.ID.String(),
			EmailText:  a.EmailText,
			Sentiment:  a.Sentiment,
			Tone:       a.Tone,
			AnalyzedAt: a.AnalyzedAt,
		})
	}

	writeJSON(w, http.StatusOK, items)
}
