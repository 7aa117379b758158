package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	logrus "github.com/sirupsen/logrus"

	"snipercontrol/internal/engine"
	"snipercontrol/pkg/config"
	"snipercontrol/pkg/dexscreener"
	scsolana "snipercontrol/pkg/solana"
)

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	appCfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatal("Failed to load app config:", err)
	}

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	publisher, err := config.NewPublisher()
	if err != nil {
		logrus.Fatal("Failed to create publisher: ", err)
	}
	defer publisher.Close()
	events := engine.NewQueueEventPublisher(publisher, appCfg.TradeEventQueueName)

	// Wire the engine
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

	// Start the position monitor
	monitor := engine.NewMonitor(tradeEngine, time.Duration(appCfg.MonitorIntervalSeconds)*time.Second)
	if err := monitor.Start(); err != nil {
		logrus.Fatal("Failed to start position monitor: ", err)
	}
	defer monitor.Stop()

	// Start the sniper engine
	sniper := engine.NewSniperEngine(tradeEngine)
	sniper.Start()
	defer sniper.Stop()

	// Consume token launch messages
	msgConsumer, err := config.NewConsumer(appCfg.LaunchQueueName)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	logrus.Info("Sniper worker started, waiting for launch messages...")

	go func() {
		if err := msgConsumer.Consume(sniper.HandleLaunchMessage); err != nil {
			logrus.Errorf("Consumer stopped: %v", err)
		}
	}()

	// Block until interrupted
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down sniper worker")
}
