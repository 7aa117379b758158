package handlers

import (
	"snipercontrol/internal/engine"
	"snipercontrol/pkg/dexscreener"
)

// Package-level collaborators, wired once at startup.
var (
	tradeEngine  *engine.Engine
	monitor      *engine.Monitor
	sniperEngine *engine.SniperEngine
	walletSvc    *engine.WalletService
	oracle       *dexscreener.Client
)

// Init wires the handler package with its collaborators.
func Init(e *engine.Engine, m *engine.Monitor, s *engine.SniperEngine, w *engine.WalletService, o *dexscreener.Client) {
	tradeEngine = e
	monitor = m
	sniperEngine = s
	walletSvc = w
	oracle = o
}
