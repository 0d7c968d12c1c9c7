package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionDelete  AuditAction = "delete"
	AuditActionReserve AuditAction = "reserve"
	AuditActionConfirm AuditAction = "confirm"
	AuditActionReject  AuditAction = "reject"
	AuditActionClose   AuditAction = "close"
	AuditActionSettle  AuditAction = "settle"
	AuditActionView    AuditAction = "view"
)

// Context keys for audit data set by handlers
const (
	ContextKeyAuditResourceType = "audit_resource_type"
	ContextKeyAuditResourceID   = "audit_resource_id"
	ContextKeyAuditMetadata     = "audit_metadata"
)

// AuditEntry is one row of the audit trail. Holder identities never go in
// here; the trail records who acted on which resource, not buyer data.
type AuditEntry struct {
	ID           string                 `json:"id"`
	OrganizerID  *string                `json:"organizer_id,omitempty"`
	Action       AuditAction            `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   *string                `json:"resource_id,omitempty"`
	StatusCode   int                    `json:"status_code"`
	IPAddress    string                 `json:"ip_address,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	TraceID      string                 `json:"trace_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// AuditConfig holds configuration for the audit middleware
type AuditConfig struct {
	// DB is the PostgreSQL connection pool the trail is written to
	DB *pgxpool.Pool
	// BufferSize is the size of the async buffer (default: 1000)
	BufferSize int
	// FlushInterval is how often to flush the buffer (default: 5 seconds)
	FlushInterval time.Duration
	// BatchSize caps how many entries one flush writes (default: 100)
	BatchSize int
	// SkipPaths lists paths that are never audited
	SkipPaths []string
	// SkipMethods lists HTTP methods that are never audited
	// (default: GET, HEAD, OPTIONS)
	SkipMethods []string
	// ActionMapper maps method + path to an audit action
	ActionMapper func(method, path string) AuditAction
	// ResourceExtractor pulls resource type and ID out of the path
	ResourceExtractor func(path string) (resourceType string, resourceID string)
}

// DefaultAuditConfig returns the configuration used in production
func DefaultAuditConfig(db *pgxpool.Pool) *AuditConfig {
	return &AuditConfig{
		DB:                db,
		BufferSize:        1000,
		FlushInterval:     5 * time.Second,
		BatchSize:         100,
		SkipPaths:         []string{"/health"},
		SkipMethods:       []string{"GET", "HEAD", "OPTIONS"},
		ActionMapper:      defaultActionMapper,
		ResourceExtractor: defaultResourceExtractor,
	}
}

// AuditLogger buffers entries and writes them in the background so audit
// persistence never sits on the request path.
type AuditLogger struct {
	config    *AuditConfig
	buffer    chan *AuditEntry
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	// For testing: collect entries instead of writing to the DB
	testMode    bool
	testEntries []*AuditEntry
	testMu      sync.Mutex
}

// NewAuditLogger creates a new audit logger and starts its worker
func NewAuditLogger(config *AuditConfig) *AuditLogger {
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 5 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}

	ctx, cancel := context.WithCancel(context.Background())
	al := &AuditLogger{
		config: config,
		buffer: make(chan *AuditEntry, config.BufferSize),
		ctx:    ctx,
		cancel: cancel,
	}

	al.wg.Add(1)
	go al.worker()

	return al
}

// Log adds an entry to the buffer without blocking. A full buffer drops
// the entry; the trail must never stall the request that produced it.
func (al *AuditLogger) Log(entry *AuditEntry) {
	select {
	case al.buffer <- entry:
	default:
	}
}

// Close drains the buffer, flushes, and stops the worker
func (al *AuditLogger) Close() error {
	al.closeOnce.Do(func() {
		close(al.buffer)
		al.wg.Wait()
		al.cancel()
	})
	return nil
}

// SetTestMode collects entries in memory instead of writing to the DB
func (al *AuditLogger) SetTestMode(enabled bool) {
	al.testMu.Lock()
	defer al.testMu.Unlock()
	al.testMode = enabled
	if enabled {
		al.testEntries = make([]*AuditEntry, 0)
	}
}

// GetTestEntries returns collected entries (test mode only)
func (al *AuditLogger) GetTestEntries() []*AuditEntry {
	al.testMu.Lock()
	defer al.testMu.Unlock()
	result := make([]*AuditEntry, len(al.testEntries))
	copy(result, al.testEntries)
	return result
}

func (al *AuditLogger) worker() {
	defer al.wg.Done()

	ticker := time.NewTicker(al.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]*AuditEntry, 0, al.config.BatchSize)

	for {
		select {
		case entry, ok := <-al.buffer:
			if !ok {
				if len(batch) > 0 {
					al.flush(batch)
				}
				return
			}
			batch = append(batch, entry)
			if len(batch) >= al.config.BatchSize {
				al.flush(batch)
				batch = make([]*AuditEntry, 0, al.config.BatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				al.flush(batch)
				batch = make([]*AuditEntry, 0, al.config.BatchSize)
			}
		case <-al.ctx.Done():
			if len(batch) > 0 {
				al.flush(batch)
			}
			return
		}
	}
}

func (al *AuditLogger) flush(entries []*AuditEntry) {
	al.testMu.Lock()
	if al.testMode {
		al.testEntries = append(al.testEntries, entries...)
		al.testMu.Unlock()
		return
	}
	al.testMu.Unlock()

	if al.config.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	query := `
		INSERT INTO audit_logs (
			id, organizer_id, action, resource_type, resource_id,
			status_code, ip_address, user_agent, trace_id, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for _, entry := range entries {
		metadataJSON, _ := json.Marshal(entry.Metadata)
		if string(metadataJSON) == "null" {
			metadataJSON = []byte("{}")
		}
		// An insert failure loses one trail entry, never the request.
		_, _ = al.config.DB.Exec(ctx, query,
			entry.ID, entry.OrganizerID, string(entry.Action),
			entry.ResourceType, entry.ResourceID,
			entry.StatusCode, entry.IPAddress, entry.UserAgent,
			entry.TraceID, metadataJSON, entry.CreatedAt,
		)
	}
}

// AuditMiddleware records mutating requests: who (organizer or anonymous
// buyer IP) did what (reserve/confirm/close/...) to which resource.
func AuditMiddleware(logger *AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		config := logger.config

		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}
		for _, method := range config.SkipMethods {
			if c.Request.Method == method {
				c.Next()
				return
			}
		}

		startTime := time.Now()
		c.Next()

		if skip, exists := c.Get("audit_skip"); exists && skip.(bool) {
			return
		}

		entry := &AuditEntry{
			ID:         uuid.New().String(),
			StatusCode: c.Writer.Status(),
			CreatedAt:  startTime,
		}

		if organizerID, ok := OrganizerIDFromContext(c); ok {
			entry.OrganizerID = &organizerID
		}

		if config.ActionMapper != nil {
			entry.Action = config.ActionMapper(c.Request.Method, c.Request.URL.Path)
		}
		if config.ResourceExtractor != nil {
			resourceType, resourceID := config.ResourceExtractor(c.Request.URL.Path)
			entry.ResourceType = resourceType
			if resourceID != "" {
				entry.ResourceID = &resourceID
			}
		}

		// Handlers may pin the resource more precisely than the path shows
		if rt, exists := c.Get(ContextKeyAuditResourceType); exists {
			entry.ResourceType = rt.(string)
		}
		if rid, exists := c.Get(ContextKeyAuditResourceID); exists {
			if s, ok := rid.(string); ok && s != "" {
				entry.ResourceID = &s
			}
		}
		if meta, exists := c.Get(ContextKeyAuditMetadata); exists {
			entry.Metadata = meta.(map[string]interface{})
		}

		entry.IPAddress = c.ClientIP()
		entry.UserAgent = c.GetHeader("User-Agent")
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			entry.TraceID = sc.TraceID().String()
		}

		logger.Log(entry)
	}
}

// defaultActionMapper maps method + path to an audit action
func defaultActionMapper(method, path string) AuditAction {
	pathLower := strings.ToLower(path)

	switch {
	case strings.Contains(pathLower, "/checkout"):
		return AuditActionReserve
	case strings.Contains(pathLower, "/close"):
		return AuditActionClose
	case strings.Contains(pathLower, "/confirm"):
		return AuditActionConfirm
	case strings.Contains(pathLower, "/reject"):
		return AuditActionReject
	case strings.Contains(pathLower, "/webhooks"):
		return AuditActionSettle
	}

	switch method {
	case "POST":
		return AuditActionCreate
	case "PUT", "PATCH":
		return AuditActionUpdate
	case "DELETE":
		return AuditActionDelete
	default:
		return AuditActionView
	}
}

// defaultResourceExtractor maps a path like
// /api/v1/organizer/raffles/123 to ("raffle", "123")
func defaultResourceExtractor(path string) (resourceType string, resourceID string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	idx := 0
	for idx < len(parts) {
		p := parts[idx]
		if p == "api" || p == "organizer" || (strings.HasPrefix(p, "v") && len(p) <= 3) {
			idx++
			continue
		}
		break
	}
	if idx >= len(parts) {
		return "unknown", ""
	}

	resourceType = strings.TrimSuffix(parts[idx], "s")
	if idx+1 < len(parts) && looksLikeID(parts[idx+1]) {
		resourceID = parts[idx+1]
	}
	return resourceType, resourceID
}

func looksLikeID(s string) bool {
	if _, err := uuid.Parse(s); err == nil {
		return true
	}
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// SetAuditResource lets a handler pin the audited resource explicitly
func SetAuditResource(c *gin.Context, resourceType, resourceID string) {
	c.Set(ContextKeyAuditResourceType, resourceType)
	c.Set(ContextKeyAuditResourceID, resourceID)
}

// SetAuditMetadata attaches extra context to the trail entry
func SetAuditMetadata(c *gin.Context, metadata map[string]interface{}) {
	c.Set(ContextKeyAuditMetadata, metadata)
}

// SkipAudit marks the current request to skip the trail
func SkipAudit(c *gin.Context) {
	c.Set("audit_skip", true)
}
