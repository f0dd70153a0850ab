package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mailsense/mailsense/internal/api/dto"
	"github.com/mailsense/mailsense/internal/testutil"
	"github.com/mailsense/mailsense/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeEndpoint(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		ts := newTestServer(t, nil)

		req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/sentiment/analyze",
			dto.AnalyzeRequest{EmailText: "hello"})
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("returns parsed labels", func(t *testing.T) {
		ts := newTestServer(t, nil)
		user := testutil.CreateTestUser(t, ts.DB)
		token := testutil.GenerateTestToken(t, ts.JWTService, user)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/sentiment/analyze",
			dto.AnalyzeRequest{EmailText: "Thanks for the great work!"}, token)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.AnalysisResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		require.NotNil(t, resp.Sentiment)
		require.NotNil(t, resp.Tone)
		assert.Equal(t, "Positive", *resp.Sentiment)
		assert.Equal(t, "Friendly", *resp.Tone)
	})

	t.Run("empty email text fails validation", func(t *testing.T) {
		ts := newTestServer(t, nil)
		user := testutil.CreateTestUser(t, ts.DB)
		token := testutil.GenerateTestToken(t, ts.JWTService, user)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/sentiment/analyze",
			dto.AnalyzeRequest{EmailText: ""}, token)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("exhausted free tier gets 403", func(t *testing.T) {
		ts := newTestServer(t, nil)
		user := testutil.CreateTestUser(t, ts.DB)
		require.NoError(t, ts.DB.Model(user).Update("api_usage_count", user.APIUsageLimit).Error)
		token := testutil.GenerateTestToken(t, ts.JWTService, user)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/sentiment/analyze",
			dto.AnalyzeRequest{EmailText: "hello"}, token)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "usage limit")
	})

	t.Run("upstream failure maps to 502", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.Completion.Err = errors.New("connection refused")
		user := testutil.CreateTestUser(t, ts.DB)
		token := testutil.GenerateTestToken(t, ts.JWTService, user)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/sentiment/analyze",
			dto.AnalyzeRequest{EmailText: "hello"}, token)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestAnalyzeEndpoint_SubscriptionGate(t *testing.T) {
	ts := newTestServer(t, &config.SentimentConfig{RequireSubscription: true, FreeTierLimit: 10})

	t.Run("free user is blocked by the gate", func(t *testing.T) {
		user := testutil.CreateTestUser(t, ts.DB)
		token := testutil.GenerateTestToken(t, ts.JWTService, user)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/sentiment/analyze",
			dto.AnalyzeRequest{EmailText: "hello"}, token)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "Active subscription required")
	})

	t.Run("subscriber passes the gate", func(t *testing.T) {
		user := testutil.CreateSubscribedTestUser(t, ts.DB)
		token := testutil.GenerateTestToken(t, ts.JWTService, user)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/sentiment/analyze",
			dto.AnalyzeRequest{EmailText: "hello"}, token)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestHistoryEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	user := testutil.CreateTestUser(t, ts.DB)
	token := testutil.GenerateTestToken(t, ts.JWTService, user)

	for _, text := range []string{"first email", "second email"} {
		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/sentiment/analyze",
			dto.AnalyzeRequest{EmailText: text}, token)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	other := testutil.CreateTestUser(t, ts.DB)
	otherToken := testutil.GenerateTestToken(t, ts.JWTService, other)

	t.Run("returns only the caller's analyses", func(t *testing.T) {
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/sentiment/history", nil, token))

		require.Equal(t, http.StatusOK, rr.Code)

		var items []dto.AnalysisHistoryItem
		testutil.ParseJSONResponse(t, rr, &items)
		assert.Len(t, items, 2)
	})

	t.Run("a user with no analyses gets an empty list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/sentiment/history", nil, otherToken))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})
}
