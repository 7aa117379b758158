package engine

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"

	"snipercontrol/internal/models"
	scsolana "snipercontrol/pkg/solana"
	"snipercontrol/pkg/utils"
)

// SolMint is the wrapped SOL mint address.
const SolMint = "So11111111111111111111111111111111111111112"

// jupiterSwapProvider implements SwapProvider against the Jupiter
// aggregator API.
type jupiterSwapProvider struct{}

// NewJupiterSwapProvider returns the default swap provider.
func NewJupiterSwapProvider() SwapProvider {
	return &jupiterSwapProvider{}
}

func (p *jupiterSwapProvider) GetSwapInstruction(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int, userPublicKey solana.PublicKey) (*SwapQuote, error) {
	quote, err := utils.GetSwapQuote(inputMint, outputMint, strconv.FormatUint(amount, 10), slippageBps)
	if err != nil {
		return nil, fmt.Errorf("failed to get swap quote: %w", err)
	}

	instructions, err := utils.GetSwapInstructions(quote, userPublicKey.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get swap instructions: %w", err)
	}

	ix, err := decodeInstruction(instructions.SwapInstruction)
	if err != nil {
		return nil, fmt.Errorf("failed to decode swap instruction: %w", err)
	}

	expectedOut, err := strconv.ParseUint(quote.OutAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse quote out amount %q: %w", quote.OutAmount, err)
	}

	return &SwapQuote{Instruction: ix, ExpectedOut: expectedOut}, nil
}

// decodeInstruction converts a Jupiter JSON instruction into a
// solana-go instruction.
func decodeInstruction(raw utils.SwapInstruction) (solana.Instruction, error) {
	programID, err := solana.PublicKeyFromBase58(raw.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program ID %q: %w", raw.ProgramID, err)
	}

	accounts := make(solana.AccountMetaSlice, 0, len(raw.Accounts))
	for _, acc := range raw.Accounts {
		pubkey, err := solana.PublicKeyFromBase58(acc.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("invalid account %q: %w", acc.Pubkey, err)
		}
		accounts = append(accounts, &solana.AccountMeta{
			PublicKey:  pubkey,
			IsSigner:   acc.IsSigner,
			IsWritable: acc.IsWritable,
		})
	}

	data, err := base64.StdEncoding.DecodeString(raw.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid instruction data: %w", err)
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// buildParams collects everything needed to assemble one trade's
// instruction sequence.
type buildParams struct {
	Direction           string
	TokenAddress        string
	NetAmount           uint64 // lamports for BUY, token base units for SELL
	SlippageBps         int
	Signer              solana.PublicKey
	Preset              scsolana.SpeedPreset
	UseMevProtect       bool
	PlatformFeeLamports uint64
}

// buildTradeInstructions assembles the full instruction sequence for a
// trade. Ordering matters: the compute budget directives must precede
// all value-moving instructions, the platform fee transfer is
// unconditional, and the tip goes last so it does not affect slippage
// accounting on the swap leg.
func (e *Engine) buildTradeInstructions(ctx context.Context, params buildParams) ([]solana.Instruction, uint64, error) {
	inputMint, outputMint := SolMint, params.TokenAddress
	if params.Direction == models.TradeTypeSell {
		inputMint, outputMint = params.TokenAddress, SolMint
	}

	quote, err := e.swaps.GetSwapInstruction(ctx, inputMint, outputMint, params.NetAmount, params.SlippageBps, params.Signer)
	if err != nil {
		return nil, 0, &SwapUnavailableError{TokenAddress: params.TokenAddress, Err: err}
	}

	feeWallet, err := solana.PublicKeyFromBase58(e.cfg.FeeCollectionWallet)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid fee collection wallet: %w", err)
	}

	instructions := []solana.Instruction{
		computebudget.NewSetComputeUnitLimitInstruction(params.Preset.ComputeUnitLimit).Build(),
		computebudget.NewSetComputeUnitPriceInstruction(params.Preset.ComputeUnitPrice).Build(),
		quote.Instruction,
		system.NewTransferInstruction(params.PlatformFeeLamports, params.Signer, feeWallet).Build(),
	}

	if params.UseMevProtect && e.cfg.JitoTipAccount != "" {
		tipAccount, err := solana.PublicKeyFromBase58(e.cfg.JitoTipAccount)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid Jito tip account: %w", err)
		}
		instructions = append(instructions,
			system.NewTransferInstruction(params.Preset.JitoTipLamports, params.Signer, tipAccount).Build())
	}

	return instructions, quote.ExpectedOut, nil
}
