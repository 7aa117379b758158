package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"snipercontrol/internal/models"
	scsolana "snipercontrol/pkg/solana"
)

// LaunchMessage is the queue payload describing a newly detected token
// launch.
type LaunchMessage struct {
	TokenAddress        string  `json:"token_address"`
	TokenSymbol         string  `json:"token_symbol"`
	TokenName           string  `json:"token_name"`
	CreatorAddress      string  `json:"creator_address"`
	InitialLiquiditySol float64 `json:"initial_liquidity_sol"`
	Source              string  `json:"source"`
	Timestamp           int64   `json:"timestamp"`
}

// SniperEngine watches for token launches and fires auto-snipe buys for
// eligible user configs. It owns its log subscriptions; Start and Stop
// are idempotent.
type SniperEngine struct {
	engine     *Engine
	subscriber *scsolana.LogsSubscriber

	mu       sync.Mutex
	running  bool
	programs []string
}

func NewSniperEngine(engine *Engine) *SniperEngine {
	return &SniperEngine{
		engine:     engine,
		subscriber: scsolana.NewLogsSubscriber(engine.cfg.SolanaWSURL),
	}
}

// Start opens log subscriptions for the launch programs. No-op when
// already running.
func (s *SniperEngine) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.programs = []string{s.engine.cfg.PumpfunProgramID, s.engine.cfg.RaydiumAmmProgramID}
	for _, programID := range s.programs {
		s.subscriber.Subscribe(programID, s.handleProgramLogs)
	}
	s.running = true
	log.WithFields(log.Fields{
		"programs": s.programs,
	}).Info("Sniper engine started")
}

// Stop tears down the log subscriptions. Safe to call when not running.
func (s *SniperEngine) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	for _, programID := range s.programs {
		s.subscriber.Unsubscribe(programID)
	}
	s.programs = nil
	s.running = false
	log.Info("Sniper engine stopped")
}

// IsRunning reports whether the engine holds active subscriptions.
func (s *SniperEngine) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// handleProgramLogs receives raw program logs from the subscription.
// Extracting launch details from raw logs is not implemented; launches
// enter through the message queue instead.
func (s *SniperEngine) handleProgramLogs(signature string, logs []string) {
	log.WithFields(log.Fields{
		"signature": signature,
		"log_count": len(logs),
	}).Debug("Program logs received")
}

// HandleLaunchMessage consumes one launch message from the queue:
// records the launch and executes buys for every eligible auto-snipe
// config.
func (s *SniperEngine) HandleLaunchMessage(body []byte) error {
	var msg LaunchMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to decode launch message: %w", err)
	}
	if msg.TokenAddress == "" {
		return &ValidationError{Field: "token_address", Message: "must not be empty"}
	}

	launch := models.TokenLaunch{
		TokenAddress:        msg.TokenAddress,
		TokenSymbol:         msg.TokenSymbol,
		TokenName:           msg.TokenName,
		CreatorAddress:      msg.CreatorAddress,
		InitialLiquiditySol: msg.InitialLiquiditySol,
		Source:              msg.Source,
		LaunchTimestamp:     time.Unix(msg.Timestamp, 0),
	}
	if err := s.engine.db.Create(&launch).Error; err != nil {
		// Duplicate launches arrive when multiple sources report the
		// same token; sniping proceeds regardless.
		log.WithFields(log.Fields{
			"token": msg.TokenAddress,
			"error": err.Error(),
		}).Debug("Launch already recorded")
	}

	log.WithFields(log.Fields{
		"token":     msg.TokenAddress,
		"symbol":    msg.TokenSymbol,
		"liquidity": msg.InitialLiquiditySol,
		"source":    msg.Source,
	}).Info("Token launch detected")

	return s.snipeForEligibleConfigs(msg)
}

// snipeForEligibleConfigs fires a BUY for every active auto-snipe
// config whose liquidity floor the launch clears. One failed buy does
// not stop the rest.
func (s *SniperEngine) snipeForEligibleConfigs(msg LaunchMessage) error {
	var configs []models.SniperConfig
	err := s.engine.db.
		Where("is_active = ? AND auto_snipe_enabled = ?", true, true).
		Where("min_liquidity_sol <= ?", msg.InitialLiquiditySol).
		Find(&configs).Error
	if err != nil {
		return fmt.Errorf("failed to query sniper configs: %w", err)
	}

	for _, cfg := range configs {
		takeProfit := cfg.TakeProfitPercentage
		stopLoss := cfg.StopLossPercentage

		result, err := s.engine.ExecuteTrade(context.Background(), TradeParams{
			UserID:                        cfg.UserID,
			WalletID:                      cfg.WalletID,
			TokenAddress:                  msg.TokenAddress,
			TradeType:                     models.TradeTypeBuy,
			AmountSol:                     cfg.MaxBuyAmountSol,
			SlippageBps:                   cfg.SlippageBps,
			Speed:                         cfg.TransactionSpeed,
			MevProtection:                 cfg.MevProtection,
			ComputeUnitPriceMicroLamports: cfg.ComputeUnitPriceMicroLamports,
			ComputeUnitLimit:              cfg.ComputeUnitLimit,
			JitoTipLamports:               cfg.JitoTipLamports,
			UsePrivateRPC:                 cfg.UsePrivateRpc,
			TakeProfitPercent:             &takeProfit,
			StopLossPercent:               &stopLoss,
		})
		if err != nil {
			log.WithFields(log.Fields{
				"user_id": cfg.UserID,
				"token":   msg.TokenAddress,
				"error":   err.Error(),
			}).Error("Auto-snipe buy rejected")
			continue
		}
		if !result.Success {
			log.WithFields(log.Fields{
				"user_id":  cfg.UserID,
				"token":    msg.TokenAddress,
				"trade_id": result.TradeID,
				"error":    result.Error,
			}).Warn("Auto-snipe buy failed")
			continue
		}
		log.WithFields(log.Fields{
			"user_id":   cfg.UserID,
			"token":     msg.TokenAddress,
			"trade_id":  result.TradeID,
			"signature": result.Signature,
		}).Info("Auto-snipe buy executed")
	}
	return nil
}
