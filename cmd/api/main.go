package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"snipercontrol/internal/engine"
	"snipercontrol/internal/handlers"
	"snipercontrol/internal/routes"
	"snipercontrol/pkg/config"
	"snipercontrol/pkg/dexscreener"
	scsolana "snipercontrol/pkg/solana"
)

func main() {
	// Load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	appCfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatal("Failed to load app config:", err)
	}

	// Initialize database
	config.InitDB()

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		config.ExecuteMigrations()
	}

	// Initialize RabbitMQ (optional, will log warning if not configured)
	var events engine.EventPublisher
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()

		publisher, err := config.NewPublisher()
		if err != nil {
			log.Fatal("Failed to create publisher:", err)
		}
		defer publisher.Close()
		events = engine.NewQueueEventPublisher(publisher, appCfg.TradeEventQueueName)
		log.Println("RabbitMQ initialized successfully")
	} else {
		log.Println("RabbitMQ not configured, skipping initialization")
	}

	// Wire the engine and its collaborators
	keyManager := scsolana.NewKeyManager(appCfg.EncryptionKey)
	walletSvc := engine.NewWalletService(config.DB, keyManager)
	oracle := dexscreener.NewClient()
	submitter := scsolana.NewSubmitter(
		appCfg.SolanaRPCURL,
		appCfg.PrivateRPCURL,
		appCfg.SubmitMaxRetries,
		time.Duration(appCfg.SubmitRetryDelayMillis)*time.Millisecond,
	)

	tradeEngine := engine.NewEngine(config.DB, appCfg, oracle, engine.NewJupiterSwapProvider(), submitter, walletSvc, events)
	monitor := engine.NewMonitor(tradeEngine, time.Duration(appCfg.MonitorIntervalSeconds)*time.Second)
	sniper := engine.NewSniperEngine(tradeEngine)

	handlers.Init(tradeEngine, monitor, sniper, walletSvc, oracle)

	// Set up router
	r := routes.SetupRouter()

	// Start server
	if err := r.Run(":" + appCfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
