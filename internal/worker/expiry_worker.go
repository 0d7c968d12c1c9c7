package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rifahub/backend/internal/service"
	"github.com/rifahub/backend/pkg/logger"
)

// ExpiryWorkerConfig holds expiry worker settings
type ExpiryWorkerConfig struct {
	// ScanInterval is how often to scan for expired reservations
	ScanInterval time.Duration
	// BatchSize is the maximum number of reservations released per scan
	BatchSize int
}

// DefaultExpiryWorkerConfig returns the default worker configuration
func DefaultExpiryWorkerConfig() *ExpiryWorkerConfig {
	return &ExpiryWorkerConfig{
		ScanInterval: time.Minute,
		BatchSize:    100,
	}
}

// ExpiryWorkerStats is a snapshot of the worker's counters
type ExpiryWorkerStats struct {
	IsRunning         bool      `json:"is_running"`
	TotalReleased     int64     `json:"total_released"`
	LastScanTime      time.Time `json:"last_scan_time"`
	LastReleasedCount int       `json:"last_released_count"`
}

// ExpiryWorker periodically reclaims reservations that outlived the hold
// TTL. It is the safety net for buyers who abandon checkout; it never
// touches confirmed slots.
type ExpiryWorker struct {
	reservations service.ReservationService
	config       *ExpiryWorkerConfig
	log          *logger.Logger

	mu                sync.Mutex
	running           bool
	cancel            context.CancelFunc
	done              chan struct{}
	totalReleased     int64
	lastScanTime      time.Time
	lastReleasedCount int
}

// NewExpiryWorker creates a new ExpiryWorker
func NewExpiryWorker(reservations service.ReservationService, log *logger.Logger, config *ExpiryWorkerConfig) *ExpiryWorker {
	if config == nil {
		config = DefaultExpiryWorkerConfig()
	}
	return &ExpiryWorker{
		reservations: reservations,
		config:       config,
		log:          log,
	}
}

// Start begins the scan loop. Calling Start on a running worker is a no-op.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	go w.run(ctx)
}

// Stop halts the scan loop and waits for the in-flight scan to finish
func (w *ExpiryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

func (w *ExpiryWorker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *ExpiryWorker) scan(ctx context.Context) {
	released, err := w.reservations.ReleaseExpired(ctx, w.config.BatchSize)
	if err != nil {
		w.log.WithContext(ctx).Error("expiry scan failed", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.totalReleased += int64(released)
	w.lastScanTime = time.Now()
	w.lastReleasedCount = released
	w.mu.Unlock()

	if released > 0 {
		w.log.WithContext(ctx).Info("expired reservations released",
			zap.Int("count", released),
		)
	}
}

// GetStats returns a snapshot of the worker's counters
func (w *ExpiryWorker) GetStats() *ExpiryWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &ExpiryWorkerStats{
		IsRunning:         w.running,
		TotalReleased:     w.totalReleased,
		LastScanTime:      w.lastScanTime,
		LastReleasedCount: w.lastReleasedCount,
	}
}
