package handlers_test

import (
	"net/http"
	"testing"

	"github.com/mailsense/mailsense/internal/api"
	"github.com/mailsense/mailsense/internal/auth"
	"github.com/mailsense/mailsense/internal/billing"
	"github.com/mailsense/mailsense/internal/sentiment"
	"github.com/mailsense/mailsense/internal/testutil"
	"github.com/mailsense/mailsense/pkg/config"
	"github.com/mailsense/mailsense/pkg/util"
	"gorm.io/gorm"
)

// testServer wires the full router against an in-memory database so handler
// tests exercise routing, middleware, and JSON encoding together.
type testServer struct {
	Router     http.Handler
	DB         *gorm.DB
	JWTService *auth.JWTService
	Emails     *testutil.FakeEnqueuer
	Completion *testutil.FakeCompletionClient
	Paddle     *config.PaddleConfig
}

func newTestServer(t *testing.T, sentimentCfg *config.SentimentConfig) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := util.NewLogger("test")
	jwtService := testutil.CreateTestJWTService()
	emails := &testutil.FakeEnqueuer{}
	completion := &testutil.FakeCompletionClient{Response: "Sentiment: Positive\nTone: Friendly"}

	paddle := &config.PaddleConfig{
		WebhookSecret: "test-webhook-secret",
		LegacyKey:     "test-legacy-key",
		VendorID:      "12345",
		ProductID:     "67890",
	}

	if sentimentCfg == nil {
		sentimentCfg = &config.SentimentConfig{FreeTierLimit: 10}
	}

	router := api.NewRouter(api.RouterConfig{
		DB:               db,
		Logger:           logger,
		JWTService:       jwtService,
		AuthService:      auth.NewService(db, jwtService, emails, sentimentCfg.FreeTierLimit, logger),
		BillingService:   billing.NewService(db, logger),
		SentimentService: sentiment.NewService(db, completion, logger),
		Paddle:           paddle,
		Sentiment:        sentimentCfg,
	})

	return &testServer{
		Router:     router,
		DB:         db,
		JWTService: jwtService,
		Emails:     emails,
		Completion: completion,
		Paddle:     paddle,
	}
}
