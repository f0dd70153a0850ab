package sentiment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mailsense/mailsense/internal/sentiment"
	"github.com/mailsense/mailsense/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *sentiment.OpenAIClient {
	return sentiment.NewOpenAIClient(&config.OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: baseURL,
	})
}

func TestOpenAIClient_Complete(t *testing.T) {
	t.Run("returns trimmed message content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "gpt-4o-mini", req["model"])

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices":[{"message":{"content":"  Sentiment: Positive\nTone: Friendly  "}}]}`))
		}))
		defer server.Close()

		got, err := newTestClient(server.URL).Complete(context.Background(), "analyze this")
		require.NoError(t, err)
		assert.Equal(t, "Sentiment: Positive\nTone: Friendly", got)
	})

	t.Run("surfaces provider error message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Complete(context.Background(), "analyze this")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Incorrect API key provided")
	})

	t.Run("non-200 without error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Complete(context.Background(), "analyze this")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Complete(context.Background(), "analyze this")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no choices")
	})

	t.Run("missing api key fails without a request", func(t *testing.T) {
		client := sentiment.NewOpenAIClient(&config.OpenAIConfig{BaseURL: "http://unused"})
		_, err := client.Complete(context.Background(), "analyze this")
		require.Error(t, err)
	})
}
