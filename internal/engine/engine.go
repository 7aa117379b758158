package engine

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"gorm.io/gorm"

	"snipercontrol/pkg/config"
	"snipercontrol/pkg/dexscreener"
	scsolana "snipercontrol/pkg/solana"
)

// PriceOracle returns best-available market data for a token. The bool
// result reports whether a cached value was served.
type PriceOracle interface {
	GetTokenPrice(tokenAddress string) (*dexscreener.TokenPrice, bool, error)
}

// SwapQuote is an executable swap leg plus the expected output amount
// in the output asset's base units.
type SwapQuote struct {
	Instruction solana.Instruction
	ExpectedOut uint64
}

// SwapProvider turns a swap request into an executable instruction.
type SwapProvider interface {
	GetSwapInstruction(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int, userPublicKey solana.PublicKey) (*SwapQuote, error)
}

// Submitter signs, submits, and confirms an instruction sequence.
type Submitter interface {
	SendAndConfirm(ctx context.Context, instructions []solana.Instruction, signer solana.PrivateKey, opts scsolana.SubmitOptions) (solana.Signature, error)
}

// SignerStore resolves the signing key for a wallet owned by a user.
type SignerStore interface {
	GetSigner(walletID, userID uint) (solana.PrivateKey, error)
}

// EventPublisher emits trade events to downstream consumers.
// Publishing is best-effort: failures are logged, never fatal.
type EventPublisher interface {
	Publish(body []byte) error
}

// Engine is the trade execution and position lifecycle core. All state
// lives in the database; the only in-memory state is the set of
// per-position close locks.
type Engine struct {
	db        *gorm.DB
	cfg       *config.AppConfig
	oracle    PriceOracle
	swaps     SwapProvider
	submitter Submitter
	signers   SignerStore
	events    EventPublisher

	positionLocks sync.Map // position ID -> *sync.Mutex
}

// NewEngine wires the engine with its collaborators. events may be nil
// when no message broker is configured.
func NewEngine(db *gorm.DB, cfg *config.AppConfig, oracle PriceOracle, swaps SwapProvider, submitter Submitter, signers SignerStore, events EventPublisher) *Engine {
	return &Engine{
		db:        db,
		cfg:       cfg,
		oracle:    oracle,
		swaps:     swaps,
		submitter: submitter,
		signers:   signers,
		events:    events,
	}
}

func (e *Engine) positionLock(positionID uint) *sync.Mutex {
	lock, _ := e.positionLocks.LoadOrStore(positionID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
