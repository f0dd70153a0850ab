package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mailsense/mailsense/internal/auth"
	"github.com/mailsense/mailsense/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.EmailAnalysis{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// FakeEnqueuer records enqueued account emails instead of touching a queue.
type FakeEnqueuer struct {
	mu            sync.Mutex
	Verifications []QueuedEmail
	Resets        []QueuedEmail
}

type QueuedEmail struct {
	Email string
	Token string
}

func (f *FakeEnqueuer) EnqueueVerificationEmail(email, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Verifications = append(f.Verifications, QueuedEmail{Email: email, Token: token})
	return nil
}

func (f *FakeEnqueuer) EnqueuePasswordResetEmail(email, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Resets = append(f.Resets, QueuedEmail{Email: email, Token: token})
	return nil
}

var _ auth.EmailEnqueuer = (*FakeEnqueuer)(nil)

// FakeCompletionClient returns a canned response or error.
type FakeCompletionClient struct {
	Response string
	Err      error
	Prompts  []string
}

func (f *FakeCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// CreateTestUser creates a verified user ready to log in.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	suffix := uuid.New().String()[:8]
	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Username:           "user-" + suffix,
		Email:              "test-" + suffix + "@example.com",
		PasswordHash:       hash,
		IsVerified:         true,
		SubscriptionStatus: models.SubscriptionInactive,
		APIUsageLimit:      10,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateSubscribedTestUser creates a verified user with an active subscription.
func CreateSubscribedTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	subID := "sub_" + uuid.New().String()[:8]
	now := time.Now()

	err := db.Model(user).Updates(map[string]interface{}{
		"subscription_id":         subID,
		"subscription_status":     models.SubscriptionActive,
		"is_premium":              true,
		"subscription_started_at": now,
	}).Error
	if err != nil {
		t.Fatalf("failed to subscribe test user: %v", err)
	}

	user.SubscriptionID = &subID
	user.SubscriptionStatus = models.SubscriptionActive
	user.IsPremium = true
	user.SubscriptionStartedAt = &now
	return user
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestSetup holds the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Emails     *FakeEnqueuer
	User       *models.User
	Token      string
}

// NewTestContext creates a complete test setup with DB, verified user, and token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	user := CreateTestUser(t, db)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		Emails:     &FakeEnqueuer{},
		User:       user,
		Token:      token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
