package handlers_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mailsense/mailsense/internal/database/models"
	"github.com/mailsense/mailsense/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paddleSignature(secret, ts string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + ";"))
	mac.Write(body)
	return fmt.Sprintf("ts=%s;h1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func signedWebhookRequest(secret string, body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paddle", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ts := fmt.Sprintf("%d", time.Now().Unix())
	req.Header.Set("Paddle-Signature", paddleSignature(secret, ts, body))
	return req
}

func TestPaddleWebhook(t *testing.T) {
	t.Run("rejects a bad signature without touching state", func(t *testing.T) {
		ts := newTestServer(t, nil)
		user := testutil.CreateTestUser(t, ts.DB)

		body := []byte(fmt.Sprintf(`{"alert_name":"subscription_created","subscription_id":"sub_1","email":%q,"status":"active"}`, user.Email))
		req := signedWebhookRequest("wrong-secret", body)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)

		var fresh models.User
		require.NoError(t, ts.DB.First(&fresh, "id = ?", user.ID).Error)
		assert.False(t, fresh.IsPremium)
	})

	t.Run("missing signature headers are rejected", func(t *testing.T) {
		ts := newTestServer(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paddle",
			bytes.NewReader([]byte(`{"alert_name":"subscription_created"}`)))
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("valid signature activates the subscription", func(t *testing.T) {
		ts := newTestServer(t, nil)
		user := testutil.CreateTestUser(t, ts.DB)

		body := []byte(fmt.Sprintf(`{"alert_name":"subscription_created","subscription_id":"sub_42","subscription_plan_id":"plan_9","email":%q,"status":"active"}`, user.Email))
		req := signedWebhookRequest(ts.Paddle.WebhookSecret, body)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "received")

		var fresh models.User
		require.NoError(t, ts.DB.First(&fresh, "id = ?", user.ID).Error)
		assert.True(t, fresh.IsPremium)
		assert.Equal(t, models.SubscriptionActive, fresh.SubscriptionStatus)
		require.NotNil(t, fresh.SubscriptionID)
		assert.Equal(t, "sub_42", *fresh.SubscriptionID)
	})

	t.Run("legacy key scheme still works", func(t *testing.T) {
		ts := newTestServer(t, nil)
		user := testutil.CreateTestUser(t, ts.DB)

		body := []byte(fmt.Sprintf(`{"alert_name":"subscription_created","subscription_id":"sub_7","email":%q,"status":"active"}`, user.Email))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paddle", bytes.NewReader(body))
		req.Header.Set("X-Webhook-Key", "test-legacy-key")
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var fresh models.User
		require.NoError(t, ts.DB.First(&fresh, "id = ?", user.ID).Error)
		assert.True(t, fresh.IsPremium)
	})

	t.Run("wrong legacy key is rejected", func(t *testing.T) {
		ts := newTestServer(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paddle",
			bytes.NewReader([]byte(`{"alert_name":"subscription_created"}`)))
		req.Header.Set("X-Webhook-Key", "not-the-key")
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unparseable body after a valid signature is 400", func(t *testing.T) {
		ts := newTestServer(t, nil)

		body := []byte(`{"alert_name":`)
		req := signedWebhookRequest(ts.Paddle.WebhookSecret, body)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown event kind is acknowledged", func(t *testing.T) {
		ts := newTestServer(t, nil)

		body := []byte(`{"alert_name":"invoice.created","subscription_id":"sub_1"}`)
		req := signedWebhookRequest(ts.Paddle.WebhookSecret, body)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("processing failure is still acknowledged", func(t *testing.T) {
		ts := newTestServer(t, nil)

		// No user matches this subscription or email.
		body := []byte(`{"alert_name":"subscription_created","subscription_id":"sub_missing","email":"ghost@example.com","status":"active"}`)
		req := signedWebhookRequest(ts.Paddle.WebhookSecret, body)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "received")
	})

	t.Run("cancellation downgrades on the next status read", func(t *testing.T) {
		ts := newTestServer(t, nil)
		user := testutil.CreateSubscribedTestUser(t, ts.DB)

		body := []byte(fmt.Sprintf(`{"alert_name":"subscription_cancelled","subscription_id":%q,"status":"deleted"}`, *user.SubscriptionID))
		req := signedWebhookRequest(ts.Paddle.WebhookSecret, body)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var fresh models.User
		require.NoError(t, ts.DB.First(&fresh, "id = ?", user.ID).Error)
		assert.False(t, fresh.IsPremium)
		assert.Equal(t, models.SubscriptionCancelled, fresh.SubscriptionStatus)
		assert.NotNil(t, fresh.SubscriptionEndedAt)
	})
}
