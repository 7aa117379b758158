package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"snipercontrol/internal/models"
)

// Monitor is the recurring sweep that closes open positions when their
// take-profit or stop-loss thresholds are crossed. It owns its cron
// handle; Start and Stop are idempotent.
type Monitor struct {
	engine   *Engine
	interval time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewMonitor creates a trigger monitor sweeping at the given interval.
func NewMonitor(engine *Engine, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{engine: engine, interval: interval}
}

// Start schedules the recurring sweep. Calling Start on a running
// monitor is a no-op.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	c := cron.New()
	spec := fmt.Sprintf("@every %s", m.interval)
	if _, err := c.AddFunc(spec, func() {
		m.Sweep(context.Background(), 0)
	}); err != nil {
		return fmt.Errorf("failed to schedule position monitor: %w", err)
	}
	c.Start()

	m.cron = c
	m.running = true
	log.WithFields(log.Fields{
		"interval": m.interval.String(),
	}).Info("Position monitor started")
	return nil
}

// Stop cancels the recurring sweep. Safe to call when not running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.cron.Stop()
	m.cron = nil
	m.running = false
	log.Info("Position monitor stopped")
}

// IsRunning reports whether the sweep is scheduled.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Sweep evaluates every OPEN position with at least one threshold set,
// optionally scoped to one user (userID 0 means all users). Price
// failures skip the position for this sweep; close failures are logged
// and the sweep continues.
func (m *Monitor) Sweep(ctx context.Context, userID uint) {
	query := m.engine.db.Where("status = ?", models.PositionStatusOpen).
		Where("take_profit_percent IS NOT NULL OR stop_loss_percent IS NOT NULL")
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}

	var positions []models.Position
	if err := query.Find(&positions).Error; err != nil {
		log.WithFields(log.Fields{
			"error": err.Error(),
		}).Error("Failed to query open positions for sweep")
		return
	}

	for i := range positions {
		m.evaluate(ctx, &positions[i])
	}
}

// evaluate checks one position's thresholds. Take-profit is checked
// before stop-loss; only one branch fires per sweep.
func (m *Monitor) evaluate(ctx context.Context, position *models.Position) {
	price, _, err := m.engine.oracle.GetTokenPrice(position.TokenAddress)
	if err != nil || price.PriceNative <= 0 {
		log.WithFields(log.Fields{
			"position_id": position.ID,
			"token":       position.TokenAddress,
		}).Debug("Price unavailable, skipping position this sweep")
		return
	}

	pnlPercent := (price.PriceNative - position.EntryPrice) / position.EntryPrice * 100

	var reason string
	switch {
	case position.TakeProfitPercent != nil && pnlPercent >= *position.TakeProfitPercent:
		reason = models.CloseReasonTakeProfit
	case position.StopLossPercent != nil && pnlPercent <= -*position.StopLossPercent:
		reason = models.CloseReasonStopLoss
	default:
		return
	}

	log.WithFields(log.Fields{
		"position_id": position.ID,
		"user_id":     position.UserID,
		"pnl_percent": pnlPercent,
		"reason":      reason,
	}).Info("Threshold crossed, closing position")

	if _, err := m.engine.ClosePosition(ctx, position.ID, position.UserID, reason); err != nil {
		log.WithFields(log.Fields{
			"position_id": position.ID,
			"reason":      reason,
			"error":       err.Error(),
		}).Error("Triggered close failed, position remains open")
	}
}
