package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuditLogger() *AuditLogger {
	logger := NewAuditLogger(&AuditConfig{
		BufferSize:        100,
		FlushInterval:     10 * time.Millisecond,
		BatchSize:         10,
		SkipPaths:         []string{"/health"},
		SkipMethods:       []string{"GET", "HEAD", "OPTIONS"},
		ActionMapper:      defaultActionMapper,
		ResourceExtractor: defaultResourceExtractor,
	})
	logger.SetTestMode(true)
	return logger
}

func setupAuditRouter(logger *AuditLogger) *gin.Engine {
	router := gin.New()
	router.Use(AuditMiddleware(logger))
	router.POST("/api/v1/checkout/raffle", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	router.POST("/api/v1/organizer/raffles/:id/close", func(c *gin.Context) {
		c.Set(ContextKeyOrganizerID, "org-1")
		SetAuditResource(c, "raffle", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/api/v1/raffles", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.POST("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func waitForEntries(t *testing.T, logger *AuditLogger, want int) []*AuditEntry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if entries := logger.GetTestEntries(); len(entries) >= want {
			return entries
		}
		time.Sleep(5 * time.Millisecond)
	}
	entries := logger.GetTestEntries()
	require.Len(t, entries, want)
	return entries
}

func TestAuditMiddleware(t *testing.T) {
	t.Run("records checkout as reserve", func(t *testing.T) {
		logger := newTestAuditLogger()
		defer logger.Close()
		router := setupAuditRouter(logger)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/raffle", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		entries := waitForEntries(t, logger, 1)
		entry := entries[0]
		assert.Equal(t, AuditActionReserve, entry.Action)
		assert.Equal(t, http.StatusCreated, entry.StatusCode)
		assert.Nil(t, entry.OrganizerID)
		assert.NotEmpty(t, entry.ID)
		assert.NotEmpty(t, entry.IPAddress)
	})

	t.Run("records organizer and pinned resource on close", func(t *testing.T) {
		logger := newTestAuditLogger()
		defer logger.Close()
		router := setupAuditRouter(logger)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/organizer/raffles/r-42/close", nil)
		router.ServeHTTP(w, req)

		entries := waitForEntries(t, logger, 1)
		entry := entries[0]
		assert.Equal(t, AuditActionClose, entry.Action)
		require.NotNil(t, entry.OrganizerID)
		assert.Equal(t, "org-1", *entry.OrganizerID)
		assert.Equal(t, "raffle", entry.ResourceType)
		require.NotNil(t, entry.ResourceID)
		assert.Equal(t, "r-42", *entry.ResourceID)
	})

	t.Run("skips GET requests", func(t *testing.T) {
		logger := newTestAuditLogger()
		defer logger.Close()
		router := setupAuditRouter(logger)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/raffles", nil)
		router.ServeHTTP(w, req)

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, logger.GetTestEntries())
	})

	t.Run("skips configured paths", func(t *testing.T) {
		logger := newTestAuditLogger()
		defer logger.Close()
		router := setupAuditRouter(logger)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		router.ServeHTTP(w, req)

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, logger.GetTestEntries())
	})
}

func TestDefaultActionMapper(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		expected AuditAction
	}{
		{"checkout reserves", "POST", "/api/v1/checkout/raffle", AuditActionReserve},
		{"close path", "POST", "/api/v1/organizer/raffles/123/close", AuditActionClose},
		{"manual confirm", "POST", "/api/v1/organizer/payments/123/confirm", AuditActionConfirm},
		{"manual reject", "POST", "/api/v1/organizer/payments/123/reject", AuditActionReject},
		{"webhook settles", "POST", "/api/v1/webhooks/payment", AuditActionSettle},
		{"POST creates", "POST", "/api/v1/organizer/raffles", AuditActionCreate},
		{"PATCH updates", "PATCH", "/api/v1/organizer/profile", AuditActionUpdate},
		{"DELETE deletes", "DELETE", "/api/v1/organizer/raffles/123", AuditActionDelete},
		{"GET views", "GET", "/api/v1/raffles", AuditActionView},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, defaultActionMapper(tt.method, tt.path))
		})
	}
}

func TestDefaultResourceExtractor(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		expectedType string
		expectedID   string
	}{
		{"uuid id", "/api/v1/raffles/123e4567-e89b-12d3-a456-426614174000", "raffle", "123e4567-e89b-12d3-a456-426614174000"},
		{"resource list", "/api/v1/campaigns", "campaign", ""},
		{"numeric id", "/api/v1/raffles/12345", "raffle", "12345"},
		{"organizer prefix skipped", "/api/v1/organizer/raffles/777", "raffle", "777"},
		{"non-id segment ignored", "/api/v1/checkout/raffle", "checkout", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resourceType, resourceID := defaultResourceExtractor(tt.path)
			assert.Equal(t, tt.expectedType, resourceType)
			assert.Equal(t, tt.expectedID, resourceID)
		})
	}
}

func TestAuditLogger_CloseFlushesBuffer(t *testing.T) {
	logger := NewAuditLogger(&AuditConfig{
		BufferSize:    100,
		FlushInterval: time.Hour, // never fires; only Close flushes
		BatchSize:     100,
	})
	logger.SetTestMode(true)

	for i := 0; i < 5; i++ {
		logger.Log(&AuditEntry{ID: "entry", Action: AuditActionCreate, CreatedAt: time.Now()})
	}
	require.NoError(t, logger.Close())

	assert.Len(t, logger.GetTestEntries(), 5)
}
