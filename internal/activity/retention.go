package activity

import (
	"context"
	"time"

	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/logger"
	"github.com/craftfolio/backend/internal/models"
	"go.uber.org/zap"
)

// RetentionWindow is how long activity log entries are kept
const RetentionWindow = 90 * 24 * time.Hour

// RetentionSweeper periodically deletes activity log entries older than
// the retention window
type RetentionSweeper struct {
	ctx      context.Context
	cancel   context.CancelFunc
	interval time.Duration
}

// NewRetentionSweeper creates a sweeper running on the given interval
func NewRetentionSweeper(interval time.Duration) *RetentionSweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &RetentionSweeper{
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
	}
}

// Start begins the periodic sweep
func (s *RetentionSweeper) Start() {
	logger.Log.Info("Starting activity retention sweeper",
		zap.Duration("interval", s.interval))
	go s.run()
}

// Stop stops the sweeper
func (s *RetentionSweeper) Stop() {
	logger.Log.Info("Stopping activity retention sweeper")
	s.cancel()
}

func (s *RetentionSweeper) run() {
	// Run immediately on startup
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.ctx.Done():
			return
		}
	}
}

// sweep deletes entries past the retention window
func (s *RetentionSweeper) sweep() {
	cutoff := time.Now().UTC().Add(-RetentionWindow)

	res := database.DB.Where("created_at < ?", cutoff).Delete(&models.ActivityLogEntry{})
	if res.Error != nil {
		logger.Log.Error("Activity retention sweep failed", zap.Error(res.Error))
		return
	}

	if res.RowsAffected > 0 {
		logger.Log.Info("Activity retention sweep completed",
			zap.Int64("deleted", res.RowsAffected),
			zap.Time("cutoff", cutoff),
		)
	}
}
