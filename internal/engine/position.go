package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"snipercontrol/internal/models"
	scsolana "snipercontrol/pkg/solana"
)

const (
	// Thresholds applied when the user has no sniper config.
	DefaultTakeProfitPercent = 200.0
	DefaultStopLossPercent   = 30.0

	// Closing is urgent: wide slippage, maximum speed, MEV protection on.
	closeSlippageBps = 1000
)

// PositionEntry describes a freshly settled BUY used to open a position.
type PositionEntry struct {
	UserID            uint
	WalletID          uint
	TokenAddress      string
	EntryPrice        float64
	Amount            float64 // token quantity, base units
	AmountSol         float64 // base-currency amount committed
	TakeProfitPercent *float64
	StopLossPercent   *float64
	EntryTradeID      uint
}

// CreatePosition opens a position from a successful entry trade.
func (e *Engine) CreatePosition(entry PositionEntry) (*models.Position, error) {
	if entry.EntryPrice <= 0 {
		return nil, &ValidationError{Field: "entry_price", Message: "must be positive"}
	}
	if entry.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "must be positive"}
	}
	if entry.TakeProfitPercent != nil && (*entry.TakeProfitPercent < 0 || *entry.TakeProfitPercent > 10000) {
		return nil, &ValidationError{Field: "take_profit_percent", Message: "must be within [0, 10000]"}
	}
	if entry.StopLossPercent != nil && (*entry.StopLossPercent < 0 || *entry.StopLossPercent > 100) {
		return nil, &ValidationError{Field: "stop_loss_percent", Message: "must be within [0, 100]"}
	}

	takeProfit, stopLoss := entry.TakeProfitPercent, entry.StopLossPercent
	if takeProfit == nil || stopLoss == nil {
		configTP, configSL := e.thresholdsFromConfig(entry.UserID)
		if takeProfit == nil {
			takeProfit = configTP
		}
		if stopLoss == nil {
			stopLoss = configSL
		}
	}

	now := time.Now()
	position := models.Position{
		UserID:            entry.UserID,
		WalletID:          entry.WalletID,
		TokenAddress:      entry.TokenAddress,
		EntryPrice:        entry.EntryPrice,
		Amount:            entry.Amount,
		AmountSol:         entry.AmountSol,
		TakeProfitPercent: takeProfit,
		StopLossPercent:   stopLoss,
		Status:            models.PositionStatusOpen,
		EntryTradeID:      entry.EntryTradeID,
		EntryDate:         now,
	}
	if err := e.db.Create(&position).Error; err != nil {
		return nil, fmt.Errorf("failed to create position: %w", err)
	}

	log.WithFields(log.Fields{
		"position_id": position.ID,
		"user_id":     entry.UserID,
		"token":       entry.TokenAddress,
		"entry_price": entry.EntryPrice,
	}).Info("Position opened")

	return &position, nil
}

// thresholdsFromConfig reads the user's latest sniper config, falling
// back to the engine defaults.
func (e *Engine) thresholdsFromConfig(userID uint) (*float64, *float64) {
	takeProfit := DefaultTakeProfitPercent
	stopLoss := DefaultStopLossPercent

	var cfg models.SniperConfig
	err := e.db.Where("user_id = ?", userID).Order("updated_at DESC").First(&cfg).Error
	if err == nil {
		takeProfit = cfg.TakeProfitPercentage
		stopLoss = cfg.StopLossPercentage
	}
	return &takeProfit, &stopLoss
}

// openPositionForTrade opens a position for a confirmed BUY. The entry
// price comes from the oracle; with no usable price the position is
// skipped rather than recorded with a zero entry that poisons P/L math.
func (e *Engine) openPositionForTrade(trade *models.Trade, params TradeParams, amountTokens float64) (*models.Position, error) {
	price, cached, err := e.oracle.GetTokenPrice(params.TokenAddress)
	if err != nil {
		return nil, &OracleError{TokenAddress: params.TokenAddress, Err: err}
	}
	if price.PriceNative <= 0 {
		return nil, &OracleError{TokenAddress: params.TokenAddress, Err: errors.New("oracle returned zero price")}
	}
	if cached {
		log.WithFields(log.Fields{
			"token": params.TokenAddress,
		}).Warn("Using cached price for position entry")
	}

	return e.CreatePosition(PositionEntry{
		UserID:            params.UserID,
		WalletID:          params.WalletID,
		TokenAddress:      params.TokenAddress,
		EntryPrice:        price.PriceNative,
		Amount:            amountTokens,
		AmountSol:         params.AmountSol,
		TakeProfitPercent: params.TakeProfitPercent,
		StopLossPercent:   params.StopLossPercent,
		EntryTradeID:      trade.ID,
	})
}

// GetOpenPositions returns all OPEN positions for a user, newest first.
func (e *Engine) GetOpenPositions(userID uint) ([]models.Position, error) {
	var positions []models.Position
	err := e.db.Where("user_id = ? AND status = ?", userID, models.PositionStatusOpen).
		Order("entry_date DESC").
		Find(&positions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query open positions: %w", err)
	}
	return positions, nil
}

// UpdatePositionLevels replaces the take-profit/stop-loss thresholds on
// an OPEN position. Unset fields keep their prior values.
func (e *Engine) UpdatePositionLevels(positionID, userID uint, takeProfit, stopLoss *float64) (*models.Position, error) {
	if takeProfit == nil && stopLoss == nil {
		return nil, &ValidationError{Field: "levels", Message: "at least one of take_profit/stop_loss is required"}
	}
	if takeProfit != nil && (*takeProfit < 0 || *takeProfit > 10000) {
		return nil, &ValidationError{Field: "take_profit_percent", Message: "must be within [0, 10000]"}
	}
	if stopLoss != nil && (*stopLoss < 0 || *stopLoss > 100) {
		return nil, &ValidationError{Field: "stop_loss_percent", Message: "must be within [0, 100]"}
	}

	var position models.Position
	err := e.db.Where("id = ? AND user_id = ? AND status = ?", positionID, userID, models.PositionStatusOpen).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load position: %w", err)
	}

	updates := map[string]interface{}{}
	if takeProfit != nil {
		updates["take_profit_percent"] = *takeProfit
		position.TakeProfitPercent = takeProfit
	}
	if stopLoss != nil {
		updates["stop_loss_percent"] = *stopLoss
		position.StopLossPercent = stopLoss
	}
	if err := e.db.Model(&position).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update position levels: %w", err)
	}
	return &position, nil
}

// CloseResult pairs the closed position with its exit trade.
type CloseResult struct {
	Position *models.Position `json:"position"`
	Trade    *TradeResult     `json:"trade"`
}

// ClosePosition sells the position's holdings and transitions it to
// CLOSED in a single atomic update. Concurrent close attempts on the
// same position are serialized by a per-position lock plus a
// conditional status update, so exactly one exit trade is ever issued.
// If the exit trade fails the position stays OPEN.
func (e *Engine) ClosePosition(ctx context.Context, positionID, userID uint, reason string) (*CloseResult, error) {
	switch reason {
	case models.CloseReasonManual, models.CloseReasonTakeProfit, models.CloseReasonStopLoss, models.CloseReasonLiquidation:
	default:
		return nil, &ValidationError{Field: "reason", Message: fmt.Sprintf("unknown close reason %q", reason)}
	}

	lock := e.positionLock(positionID)
	lock.Lock()
	defer lock.Unlock()

	var position models.Position
	err := e.db.Where("id = ? AND user_id = ?", positionID, userID).First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load position: %w", err)
	}
	if position.Status != models.PositionStatusOpen {
		return nil, ErrNotFound
	}

	exitPrice := position.EntryPrice
	if price, _, err := e.oracle.GetTokenPrice(position.TokenAddress); err == nil && price.PriceNative > 0 {
		exitPrice = price.PriceNative
	} else {
		log.WithFields(log.Fields{
			"position_id": position.ID,
			"token":       position.TokenAddress,
		}).Warn("Price oracle unavailable, falling back to entry price")
	}

	tradeResult, err := e.ExecuteTrade(ctx, TradeParams{
		UserID:           userID,
		WalletID:         position.WalletID,
		TokenAddress:     position.TokenAddress,
		TradeType:        models.TradeTypeSell,
		AmountSol:        position.AmountSol,
		AmountTokens:     position.Amount,
		SlippageBps:      closeSlippageBps,
		Speed:            scsolana.SpeedUltra,
		MevProtection:    true,
		SkipPositionOpen: true,
	})
	if err != nil {
		return nil, err
	}
	if !tradeResult.Success {
		return nil, fmt.Errorf("exit trade failed: %s", tradeResult.Error)
	}

	pnlPercent := (exitPrice - position.EntryPrice) / position.EntryPrice * 100
	pnlSol := position.AmountSol * pnlPercent / 100
	now := time.Now()

	// Conditional update: the transition only succeeds if the position
	// is still OPEN.
	res := e.db.Model(&models.Position{}).
		Where("id = ? AND status = ?", positionID, models.PositionStatusOpen).
		Updates(map[string]interface{}{
			"status":        models.PositionStatusClosed,
			"exit_price":    exitPrice,
			"pnl_percent":   pnlPercent,
			"pnl_sol":       pnlSol,
			"close_reason":  reason,
			"exit_trade_id": tradeResult.TradeID,
			"exit_date":     now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to close position: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("position %d was closed concurrently", positionID)
	}

	position.Status = models.PositionStatusClosed
	position.ExitPrice = &exitPrice
	position.PnlPercent = &pnlPercent
	position.PnlSol = &pnlSol
	position.CloseReason = &reason
	position.ExitTradeID = &tradeResult.TradeID
	position.ExitDate = &now

	log.WithFields(log.Fields{
		"position_id": position.ID,
		"user_id":     userID,
		"reason":      reason,
		"pnl_percent": pnlPercent,
		"pnl_sol":     pnlSol,
	}).Info("Position closed")

	return &CloseResult{Position: &position, Trade: tradeResult}, nil
}

// PositionLiveData is a position composed with current market data.
// Purely derived; nothing is persisted.
type PositionLiveData struct {
	models.Position
	CurrentPrice         float64 `json:"current_price"`
	UnrealizedPnlPercent float64 `json:"unrealized_pnl_percent"`
	UnrealizedPnlSol     float64 `json:"unrealized_pnl_sol"`
	PriceChange24h       float64 `json:"price_change_24h"`
	LiquidityUsd         float64 `json:"liquidity_usd"`
}

// GetPositionWithLiveData returns a position with its unrealized P/L
// against the current oracle price.
func (e *Engine) GetPositionWithLiveData(positionID, userID uint) (*PositionLiveData, error) {
	var position models.Position
	err := e.db.Where("id = ? AND user_id = ?", positionID, userID).First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load position: %w", err)
	}

	price, _, err := e.oracle.GetTokenPrice(position.TokenAddress)
	if err != nil {
		return nil, &OracleError{TokenAddress: position.TokenAddress, Err: err}
	}

	pnlPercent := 0.0
	if position.EntryPrice > 0 {
		pnlPercent = (price.PriceNative - position.EntryPrice) / position.EntryPrice * 100
	}

	return &PositionLiveData{
		Position:             position,
		CurrentPrice:         price.PriceNative,
		UnrealizedPnlPercent: pnlPercent,
		UnrealizedPnlSol:     position.AmountSol * pnlPercent / 100,
		PriceChange24h:       price.PriceChange24h,
		LiquidityUsd:         price.LiquidityUsd,
	}, nil
}
