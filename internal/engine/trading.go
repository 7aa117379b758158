package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"snipercontrol/internal/models"
	scsolana "snipercontrol/pkg/solana"
)

// TradeParams describes one trade intent.
type TradeParams struct {
	UserID        uint
	WalletID      uint
	TokenAddress  string
	TradeType     string  // models.TradeTypeBuy or models.TradeTypeSell
	AmountSol     float64 // base-currency amount: gross for BUY, committed amount for SELL
	AmountTokens  float64 // SELL only: token quantity to swap, in base units
	SlippageBps   int
	Speed         string
	MevProtection bool

	// Numeric overrides on top of the speed preset, sourced from the
	// user's sniper config. Zero keeps the preset value.
	ComputeUnitPriceMicroLamports uint64
	ComputeUnitLimit              uint32
	JitoTipLamports               uint64

	// Routes submission through the private endpoint even when MEV
	// protection is off.
	UsePrivateRPC bool

	// BUY only: position thresholds; nil falls back to the user's
	// sniper config (or the engine defaults).
	TakeProfitPercent *float64
	StopLossPercent   *float64

	// Set by the close path so exits never open a new position.
	SkipPositionOpen bool
}

// TradeResult is what every trade attempt returns. Nothing throws past
// this boundary: failures are recorded on the trade row and reported
// through Success/Error.
type TradeResult struct {
	Success      bool    `json:"success"`
	TradeID      uint    `json:"trade_id"`
	Signature    string  `json:"signature,omitempty"`
	FeeCollected float64 `json:"fee_collected,omitempty"`
	AmountTokens float64 `json:"amount_tokens,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// tradeEvent is the message published after every terminal trade.
type tradeEvent struct {
	TradeID      uint    `json:"trade_id"`
	UserID       uint    `json:"user_id"`
	TokenAddress string  `json:"token_address"`
	TradeType    string  `json:"trade_type"`
	AmountSol    float64 `json:"amount_sol"`
	Status       string  `json:"status"`
	Signature    string  `json:"signature,omitempty"`
	Timestamp    int64   `json:"timestamp"`
}

func validateTradeParams(params TradeParams) error {
	if params.TokenAddress == "" {
		return &ValidationError{Field: "token_address", Message: "must not be empty"}
	}
	if params.TradeType != models.TradeTypeBuy && params.TradeType != models.TradeTypeSell {
		return &ValidationError{Field: "trade_type", Message: fmt.Sprintf("must be %s or %s", models.TradeTypeBuy, models.TradeTypeSell)}
	}
	if params.AmountSol <= 0 {
		return &ValidationError{Field: "amount_sol", Message: "must be positive"}
	}
	if params.TradeType == models.TradeTypeSell && params.AmountTokens <= 0 {
		return &ValidationError{Field: "amount_tokens", Message: "must be positive for SELL"}
	}
	if params.SlippageBps < 0 || params.SlippageBps > 10000 {
		return &ValidationError{Field: "slippage_bps", Message: "must be within [0, 10000]"}
	}
	return nil
}

// ExecuteTrade runs one trade end to end: ledger row, fee math,
// instruction build, submission, terminal status. A successful BUY also
// opens a position; position bookkeeping failures never fail the trade.
func (e *Engine) ExecuteTrade(ctx context.Context, params TradeParams) (*TradeResult, error) {
	if err := validateTradeParams(params); err != nil {
		return nil, err
	}

	trade := models.Trade{
		UserID:       params.UserID,
		WalletID:     params.WalletID,
		TokenAddress: params.TokenAddress,
		TradeType:    params.TradeType,
		AmountSol:    params.AmountSol,
		SlippageBps:  params.SlippageBps,
		Status:       models.TradeStatusPending,
	}
	if err := e.db.Create(&trade).Error; err != nil {
		return nil, fmt.Errorf("failed to create trade record: %w", err)
	}

	result, err := e.runTrade(ctx, &trade, params)
	if err != nil {
		e.failTrade(&trade, err)
		return &TradeResult{Success: false, TradeID: trade.ID, Error: err.Error()}, nil
	}
	return result, nil
}

// runTrade performs the fallible part of trade execution. Any returned
// error marks the trade FAILED.
func (e *Engine) runTrade(ctx context.Context, trade *models.Trade, params TradeParams) (*TradeResult, error) {
	signer, err := e.signers.GetSigner(params.WalletID, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load signer: %w", err)
	}

	feeSol := scsolana.PlatformFee(params.AmountSol, e.cfg.TransactionFeePercent)

	var netAmount uint64
	if params.TradeType == models.TradeTypeBuy {
		netAmount = scsolana.SolToLamports(params.AmountSol - feeSol)
	} else {
		netAmount = uint64(params.AmountTokens)
	}

	stats := scsolana.GetRecentPriorityFees(ctx, e.cfg.SolanaRPCURL)
	preset := scsolana.GetSpeedPreset(params.Speed, stats)
	if params.ComputeUnitPriceMicroLamports > 0 {
		preset.ComputeUnitPrice = params.ComputeUnitPriceMicroLamports
	}
	if params.ComputeUnitLimit > 0 {
		preset.ComputeUnitLimit = params.ComputeUnitLimit
	}
	if params.JitoTipLamports > 0 {
		preset.JitoTipLamports = params.JitoTipLamports
	}

	instructions, expectedOut, err := e.buildTradeInstructions(ctx, buildParams{
		Direction:           params.TradeType,
		TokenAddress:        params.TokenAddress,
		NetAmount:           netAmount,
		SlippageBps:         params.SlippageBps,
		Signer:              signer.PublicKey(),
		Preset:              preset,
		UseMevProtect:       params.MevProtection,
		PlatformFeeLamports: scsolana.SolToLamports(feeSol),
	})
	if err != nil {
		return nil, err
	}

	sig, err := e.submitter.SendAndConfirm(ctx, instructions, signer, scsolana.SubmitOptions{
		SkipPreflight: true,
		UsePrivateRPC: params.MevProtection || params.UsePrivateRPC,
	})
	if err != nil {
		return nil, err
	}

	cost := scsolana.EstimateTransactionCost(preset, params.MevProtection, preset.ComputeUnitLimit)
	amountTokens := float64(expectedOut)

	var pricePerToken float64
	if params.TradeType == models.TradeTypeBuy {
		if amountTokens > 0 {
			pricePerToken = (params.AmountSol - feeSol) / amountTokens
		}
	} else if params.AmountTokens > 0 {
		pricePerToken = float64(expectedOut) / scsolana.LamportsPerSol / params.AmountTokens
	}

	signature := sig.String()
	now := time.Now()
	updates := map[string]interface{}{
		"status":                models.TradeStatusSuccess,
		"transaction_signature": signature,
		"amount_tokens":         amountTokens,
		"price_per_token_sol":   pricePerToken,
		"transaction_fee_sol":   cost.TotalSol,
		"platform_fee_sol":      feeSol,
		"confirmed_at":          now,
	}
	if err := e.db.Model(trade).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to record trade success: %w", err)
	}

	e.incrementUserStats(params.UserID, params.AmountSol)
	e.publishTradeEvent(trade, params, signature)

	log.WithFields(log.Fields{
		"trade_id":  trade.ID,
		"user_id":   params.UserID,
		"token":     params.TokenAddress,
		"type":      params.TradeType,
		"signature": signature,
	}).Info("Trade confirmed")

	if params.TradeType == models.TradeTypeBuy && !params.SkipPositionOpen {
		if _, err := e.openPositionForTrade(trade, params, amountTokens); err != nil {
			log.WithFields(log.Fields{
				"trade_id": trade.ID,
				"error":    err.Error(),
			}).Warn("Trade succeeded but position was not created")
		}
	}

	return &TradeResult{
		Success:      true,
		TradeID:      trade.ID,
		Signature:    signature,
		FeeCollected: feeSol,
		AmountTokens: amountTokens,
	}, nil
}

func (e *Engine) failTrade(trade *models.Trade, cause error) {
	message := cause.Error()
	updates := map[string]interface{}{
		"status":        models.TradeStatusFailed,
		"error_message": message,
	}
	if err := e.db.Model(trade).Updates(updates).Error; err != nil {
		log.WithFields(log.Fields{
			"trade_id": trade.ID,
			"error":    err.Error(),
		}).Error("Failed to mark trade as failed")
	}
	log.WithFields(log.Fields{
		"trade_id": trade.ID,
		"error":    message,
	}).Warn("Trade failed")
}

// incrementUserStats bumps the owner's aggregate counters. Success only.
func (e *Engine) incrementUserStats(userID uint, amountSol float64) {
	err := e.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"total_trades":     gorm.Expr("total_trades + 1"),
		"total_volume_sol": gorm.Expr("total_volume_sol + ?", amountSol),
	}).Error
	if err != nil {
		log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("Failed to update user stats")
	}
}

// publishTradeEvent emits the trade to the event queue. Best-effort.
func (e *Engine) publishTradeEvent(trade *models.Trade, params TradeParams, signature string) {
	if e.events == nil {
		return
	}
	body, err := json.Marshal(tradeEvent{
		TradeID:      trade.ID,
		UserID:       params.UserID,
		TokenAddress: params.TokenAddress,
		TradeType:    params.TradeType,
		AmountSol:    params.AmountSol,
		Status:       models.TradeStatusSuccess,
		Signature:    signature,
		Timestamp:    time.Now().Unix(),
	})
	if err != nil {
		return
	}
	if err := e.events.Publish(body); err != nil {
		log.WithFields(log.Fields{
			"trade_id": trade.ID,
			"error":    err.Error(),
		}).Warn("Failed to publish trade event")
	}
}

// GetTradingHistory returns a user's trades, newest first.
func (e *Engine) GetTradingHistory(userID uint, limit, offset int) ([]models.Trade, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var total int64
	if err := e.db.Model(&models.Trade{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trades: %w", err)
	}

	var trades []models.Trade
	err := e.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&trades).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trades: %w", err)
	}
	return trades, total, nil
}

// GetTotalFeesCollected sums platform fees over all successful trades.
func (e *Engine) GetTotalFeesCollected() (float64, error) {
	var total float64
	err := e.db.Model(&models.Trade{}).
		Where("status = ?", models.TradeStatusSuccess).
		Select("COALESCE(SUM(platform_fee_sol), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum collected fees: %w", err)
	}
	return total, nil
}
