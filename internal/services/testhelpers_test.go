// internal/services/testhelpers_test.go
package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopdesk/backend/internal/config"
	"github.com/shopdesk/backend/internal/models"
	"github.com/shopdesk/backend/internal/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled :memory: database would hand each connection its own empty
	// schema, so pin the pool to one connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.CallRecord{},
		&models.AlertRecord{},
		&models.AppNotification{},
		&models.AuditLog{},
	))

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 2,
		},
		Email: config.EmailConfig{
			FromEmail: "noreply@test.local",
			FromName:  "ShopDesk Test",
		},
		AI: config.AIConfig{
			TimeoutSeconds:      1,
			ConfidenceThreshold: 0.8,
			AutoConvert:         true,
		},
		Alerts: config.AlertConfig{
			CooldownHours: 24,
		},
	}
}

// fakeMailer records sent emails and can be flipped into failure mode.
type fakeMailer struct {
	mu       sync.Mutex
	sent     []sentEmail
	failWith error
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) setFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func testPaginationParams() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}
}

// fakeExtractor returns a canned extraction result or error.
type fakeExtractor struct {
	result *ExtractionResult
	err    error
}

func (e *fakeExtractor) Extract(ctx context.Context, transcript string) (*ExtractionResult, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}
