package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snipercontrol/internal/models"
)

const otherToken = "9yLYtg3CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsV"

func TestMonitorLifecycle(t *testing.T) {
	h := newTestEngine(t)
	m := NewMonitor(h.engine, time.Hour)

	assert.False(t, m.IsRunning())

	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning())

	// Start is idempotent
	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning())

	m.Stop()
	assert.False(t, m.IsRunning())

	// Stop is idempotent
	m.Stop()
	assert.False(t, m.IsRunning())

	// restartable after a stop
	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning())
	m.Stop()
}

func TestMonitorTakeProfit(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)
	position := openTestPosition(t, h, user.ID, wallet.ID, 1.0) // TP 50, SL 30
	h.oracle.setPrice(testToken, 1.6)                           // +60%

	m := NewMonitor(h.engine, time.Hour)
	m.Sweep(context.Background(), 0)

	var closed models.Position
	require.NoError(t, h.db.First(&closed, position.ID).Error)
	assert.Equal(t, models.PositionStatusClosed, closed.Status)
	require.NotNil(t, closed.CloseReason)
	assert.Equal(t, models.CloseReasonTakeProfit, *closed.CloseReason)
}

func TestMonitorStopLoss(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)
	position := openTestPosition(t, h, user.ID, wallet.ID, 1.0) // TP 50, SL 30
	h.oracle.setPrice(testToken, 0.6)                           // -40%

	m := NewMonitor(h.engine, time.Hour)
	m.Sweep(context.Background(), 0)

	var closed models.Position
	require.NoError(t, h.db.First(&closed, position.ID).Error)
	assert.Equal(t, models.PositionStatusClosed, closed.Status)
	require.NotNil(t, closed.CloseReason)
	assert.Equal(t, models.CloseReasonStopLoss, *closed.CloseReason)
}

func TestMonitorTakeProfitPrecedesStopLoss(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)

	// TP 50 and SL 50: a +50% move satisfies the take-profit branch and
	// must close as TAKE_PROFIT, never STOP_LOSS.
	trade := models.Trade{UserID: user.ID, WalletID: wallet.ID, TokenAddress: testToken, TradeType: models.TradeTypeBuy, AmountSol: 1.0, Status: models.TradeStatusSuccess}
	require.NoError(t, h.db.Create(&trade).Error)
	takeProfit, stopLoss := 50.0, 50.0
	position, err := h.engine.CreatePosition(PositionEntry{
		UserID: user.ID, WalletID: wallet.ID, TokenAddress: testToken,
		EntryPrice: 1.0, Amount: 100, AmountSol: 1.0,
		TakeProfitPercent: &takeProfit, StopLossPercent: &stopLoss,
		EntryTradeID: trade.ID,
	})
	require.NoError(t, err)

	h.oracle.setPrice(testToken, 1.5) // exactly +50%

	m := NewMonitor(h.engine, time.Hour)
	m.Sweep(context.Background(), 0)

	var closed models.Position
	require.NoError(t, h.db.First(&closed, position.ID).Error)
	require.NotNil(t, closed.CloseReason)
	assert.Equal(t, models.CloseReasonTakeProfit, *closed.CloseReason)
}

func TestMonitorBelowThresholdDoesNothing(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)
	position := openTestPosition(t, h, user.ID, wallet.ID, 1.0) // TP 50, SL 30
	h.oracle.setPrice(testToken, 1.2)                           // +20%, inside both bands

	m := NewMonitor(h.engine, time.Hour)
	m.Sweep(context.Background(), 0)

	var fresh models.Position
	require.NoError(t, h.db.First(&fresh, position.ID).Error)
	assert.Equal(t, models.PositionStatusOpen, fresh.Status)
	assert.Equal(t, 0, h.submitter.calls)
}

func TestMonitorSkipsOnOracleFailure(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)
	position := openTestPosition(t, h, user.ID, wallet.ID, 1.0)
	// no price for the token this sweep

	m := NewMonitor(h.engine, time.Hour)
	m.Sweep(context.Background(), 0)

	var fresh models.Position
	require.NoError(t, h.db.First(&fresh, position.ID).Error)
	assert.Equal(t, models.PositionStatusOpen, fresh.Status)
}

func TestMonitorContinuesAfterOneFailure(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)

	// First position's token has no price; the second must still close.
	blind := openTestPosition(t, h, user.ID, wallet.ID, 1.0)
	healthyTrade := models.Trade{UserID: user.ID, WalletID: wallet.ID, TokenAddress: otherToken, TradeType: models.TradeTypeBuy, AmountSol: 1.0, Status: models.TradeStatusSuccess}
	require.NoError(t, h.db.Create(&healthyTrade).Error)
	takeProfit, stopLoss := 50.0, 30.0
	healthy, err := h.engine.CreatePosition(PositionEntry{
		UserID: user.ID, WalletID: wallet.ID, TokenAddress: otherToken,
		EntryPrice: 1.0, Amount: 100, AmountSol: 1.0,
		TakeProfitPercent: &takeProfit, StopLossPercent: &stopLoss,
		EntryTradeID: healthyTrade.ID,
	})
	require.NoError(t, err)

	h.oracle.setPrice(otherToken, 2.0)

	m := NewMonitor(h.engine, time.Hour)
	m.Sweep(context.Background(), 0)

	var blindFresh, healthyFresh models.Position
	require.NoError(t, h.db.First(&blindFresh, blind.ID).Error)
	require.NoError(t, h.db.First(&healthyFresh, healthy.ID).Error)
	assert.Equal(t, models.PositionStatusOpen, blindFresh.Status)
	assert.Equal(t, models.PositionStatusClosed, healthyFresh.Status)
}

func TestMonitorUserScope(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)

	other := models.User{Email: "other@example.com"}
	require.NoError(t, h.db.Create(&other).Error)
	otherWallet := h.createWallet(t, other.ID)

	mine := openTestPosition(t, h, user.ID, wallet.ID, 1.0)
	theirs := openTestPosition(t, h, other.ID, otherWallet.ID, 1.0)

	h.oracle.setPrice(testToken, 2.0)

	m := NewMonitor(h.engine, time.Hour)
	m.Sweep(context.Background(), user.ID)

	var mineFresh, theirsFresh models.Position
	require.NoError(t, h.db.First(&mineFresh, mine.ID).Error)
	require.NoError(t, h.db.First(&theirsFresh, theirs.ID).Error)
	assert.Equal(t, models.PositionStatusClosed, mineFresh.Status)
	assert.Equal(t, models.PositionStatusOpen, theirsFresh.Status)
}
