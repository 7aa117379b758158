package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"snipercontrol/internal/models"
	"snipercontrol/pkg/config"
	"snipercontrol/pkg/dexscreener"
	scsolana "snipercontrol/pkg/solana"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A shared in-memory database only exists on one connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Trade{},
		&models.Position{},
		&models.SniperConfig{},
		&models.TokenLaunch{},
	))
	return db
}

// fakeOracle serves prices from a map; missing tokens fail the lookup.
type fakeOracle struct {
	mu     sync.Mutex
	prices map[string]float64
}

func (o *fakeOracle) setPrice(token string, price float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices[token] = price
}

func (o *fakeOracle) GetTokenPrice(tokenAddress string) (*dexscreener.TokenPrice, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	price, ok := o.prices[tokenAddress]
	if !ok {
		return nil, false, errors.New("no pairs found")
	}
	return &dexscreener.TokenPrice{
		Address:        tokenAddress,
		PriceNative:    price,
		PriceChange24h: 1.5,
		LiquidityUsd:   250000,
	}, false, nil
}

// fakeSwaps records the last requested amount and returns a canned
// expected output.
type fakeSwaps struct {
	mu         sync.Mutex
	err        error
	out        uint64
	lastAmount uint64
	lastInput  string
	lastOutput string
}

func (s *fakeSwaps) GetSwapInstruction(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int, userPublicKey solana.PublicKey) (*SwapQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.lastAmount = amount
	s.lastInput = inputMint
	s.lastOutput = outputMint
	ix := system.NewTransferInstruction(1, userPublicKey, userPublicKey).Build()
	return &SwapQuote{Instruction: ix, ExpectedOut: s.out}, nil
}

// fakeSubmitter succeeds with distinct signatures unless err is set. It
// records the instruction sequence and options of the latest send.
type fakeSubmitter struct {
	mu               sync.Mutex
	err              error
	calls            int
	lastInstructions []solana.Instruction
	lastOpts         scsolana.SubmitOptions
}

func (f *fakeSubmitter) SendAndConfirm(ctx context.Context, instructions []solana.Instruction, signer solana.PrivateKey, opts scsolana.SubmitOptions) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastInstructions = instructions
	f.lastOpts = opts
	if f.err != nil {
		return solana.Signature{}, f.err
	}
	var sig solana.Signature
	sig[0] = byte(f.calls)
	sig[1] = byte(f.calls >> 8)
	return sig, nil
}

// fakeSigners hands out one fixed key for any wallet.
type fakeSigners struct {
	key solana.PrivateKey
	err error
}

func (s *fakeSigners) GetSigner(walletID, userID uint) (solana.PrivateKey, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.key, nil
}

type testHarness struct {
	engine    *Engine
	db        *gorm.DB
	oracle    *fakeOracle
	swaps     *fakeSwaps
	submitter *fakeSubmitter
}

func newTestEngine(t *testing.T) *testHarness {
	t.Helper()

	db := newTestDB(t)
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	cfg := &config.AppConfig{
		SolanaRPCURL:           "http://127.0.0.1:1",
		FeeCollectionWallet:    solana.NewWallet().PublicKey().String(),
		JitoTipAccount:         solana.NewWallet().PublicKey().String(),
		TransactionFeePercent:  1.0,
		SubmitMaxRetries:       3,
		SubmitRetryDelayMillis: 1,
		MonitorIntervalSeconds: 30,
	}

	oracle := &fakeOracle{prices: map[string]float64{}}
	swaps := &fakeSwaps{out: 1_000_000}
	submitter := &fakeSubmitter{}
	signers := &fakeSigners{key: key}

	e := NewEngine(db, cfg, oracle, swaps, submitter, signers, nil)
	return &testHarness{engine: e, db: db, oracle: oracle, swaps: swaps, submitter: submitter}
}

func (h *testHarness) createUser(t *testing.T) *models.User {
	t.Helper()
	user := models.User{Email: "trader@example.com"}
	require.NoError(t, h.db.Create(&user).Error)
	return &user
}

func (h *testHarness) createWallet(t *testing.T, userID uint) *models.Wallet {
	t.Helper()
	wallet := models.Wallet{
		UserID:              userID,
		PublicKey:           solana.NewWallet().PublicKey().String(),
		EncryptedPrivateKey: "unused",
	}
	require.NoError(t, h.db.Create(&wallet).Error)
	return &wallet
}
