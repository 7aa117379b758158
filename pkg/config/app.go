package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// AppConfig holds engine settings read from the environment.
type AppConfig struct {
	Port                    string  `env:"PORT" envDefault:"8080"`
	SolanaRPCURL            string  `env:"SOLANA_RPC_URL" envDefault:"https://api.mainnet-beta.solana.com"`
	SolanaWSURL             string  `env:"SOLANA_WS_URL" envDefault:"wss://api.mainnet-beta.solana.com"`
	PrivateRPCURL           string  `env:"PRIVATE_RPC_URL"`
	FeeCollectionWallet     string  `env:"FEE_COLLECTION_WALLET"`
	TransactionFeePercent   float64 `env:"TRANSACTION_FEE_PERCENTAGE" envDefault:"1.0"`
	JitoTipAccount          string  `env:"JITO_TIP_ACCOUNT"`
	EncryptionKey           string  `env:"ENCRYPTION_KEY"`
	MonitorIntervalSeconds  int     `env:"POSITION_MONITOR_INTERVAL_SECONDS" envDefault:"30"`
	PumpfunProgramID        string  `env:"PUMPFUN_PROGRAM_ID" envDefault:"6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"`
	RaydiumAmmProgramID     string  `env:"RAYDIUM_AMM_PROGRAM_ID" envDefault:"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"`
	LaunchQueueName         string  `env:"LAUNCH_QUEUE_NAME" envDefault:"token_launches"`
	TradeEventQueueName     string  `env:"TRADE_EVENT_QUEUE_NAME" envDefault:"trade_events"`
	SubmitMaxRetries        int     `env:"SUBMIT_MAX_RETRIES" envDefault:"3"`
	SubmitRetryDelayMillis  int     `env:"SUBMIT_RETRY_DELAY_MS" envDefault:"1000"`
}

// LoadAppConfig parses the application config from the environment.
func LoadAppConfig() (*AppConfig, error) {
	cfg := AppConfig{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app config: %w", err)
	}
	return &cfg, nil
}
