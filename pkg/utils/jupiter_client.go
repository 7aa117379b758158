package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const jupiterBaseURL = "https://lite-api.jup.ag/swap/v1"

// JupiterQuoteResponse represents the response structure from Jupiter API
type JupiterQuoteResponse struct {
	InputMint            string      `json:"inputMint"`
	InAmount             string      `json:"inAmount"`
	OutputMint           string      `json:"outputMint"`
	OutAmount            string      `json:"outAmount"`
	OtherAmountThreshold string      `json:"otherAmountThreshold"`
	SwapMode             string      `json:"swapMode"`
	SlippageBps          int         `json:"slippageBps"`
	PlatformFee          any         `json:"platformFee"`
	PriceImpactPct       string      `json:"priceImpactPct"`
	RoutePlan            []RoutePlan `json:"routePlan"`
	ContextSlot          int         `json:"contextSlot"`
	TimeTaken            float64     `json:"timeTaken"`
	SwapUsdValue         string      `json:"swapUsdValue"`
}

// RoutePlan represents a route plan in the Jupiter response
type RoutePlan struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  int      `json:"percent"`
	Bps      int      `json:"bps"`
}

// SwapInfo represents swap information in a route plan
type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
}

// GetSwapQuote retrieves a swap quote from the Jupiter API
func GetSwapQuote(inputMint, outputMint, amount string, slippageBps int, restrictIntermediateTokens ...bool) (*JupiterQuoteResponse, error) {
	amountInt, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	if amountInt <= 0 {
		return nil, fmt.Errorf("swap amount must be positive, got %s", amount)
	}

	restrict := true
	if len(restrictIntermediateTokens) > 0 {
		restrict = restrictIntermediateTokens[0]
	}

	params := url.Values{}
	params.Add("inputMint", inputMint)
	params.Add("outputMint", outputMint)
	params.Add("amount", amount)
	params.Add("slippageBps", strconv.Itoa(slippageBps))
	params.Add("restrictIntermediateTokens", strconv.FormatBool(restrict))

	fullURL := fmt.Sprintf("%s/quote?%s", jupiterBaseURL, params.Encode())

	resp, err := http.Get(fullURL)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	var quoteResponse JupiterQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quoteResponse); err != nil {
		return nil, fmt.Errorf("failed to decode JSON response: %w", err)
	}

	return &quoteResponse, nil
}

// InstructionAccount mirrors an account meta in a Jupiter instruction
type InstructionAccount struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// SwapInstruction is a single instruction returned by the
// swap-instructions endpoint; Data is base64-encoded.
type SwapInstruction struct {
	ProgramID string               `json:"programId"`
	Accounts  []InstructionAccount `json:"accounts"`
	Data      string               `json:"data"`
}

// SwapInstructionsResponse represents the swap-instructions response
type SwapInstructionsResponse struct {
	TokenLedgerInstruction      *SwapInstruction  `json:"tokenLedgerInstruction"`
	ComputeBudgetInstructions   []SwapInstruction `json:"computeBudgetInstructions"`
	SetupInstructions           []SwapInstruction `json:"setupInstructions"`
	SwapInstruction             SwapInstruction   `json:"swapInstruction"`
	CleanupInstruction          *SwapInstruction  `json:"cleanupInstruction"`
	AddressLookupTableAddresses []string          `json:"addressLookupTableAddresses"`
}

type swapInstructionsRequest struct {
	QuoteResponse   *JupiterQuoteResponse `json:"quoteResponse"`
	UserPublicKey   string                `json:"userPublicKey"`
	WrapAndUnwrapSol bool                 `json:"wrapAndUnwrapSol"`
}

// GetSwapInstructions converts a quote into concrete transaction
// instructions for the given user wallet.
func GetSwapInstructions(quote *JupiterQuoteResponse, userPublicKey string) (*SwapInstructionsResponse, error) {
	reqBody := swapInstructionsRequest{
		QuoteResponse:    quote,
		UserPublicKey:    userPublicKey,
		WrapAndUnwrapSol: true,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	fullURL := fmt.Sprintf("%s/swap-instructions", jupiterBaseURL)
	resp, err := http.Post(fullURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	var result SwapInstructionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode JSON response: %w", err)
	}

	return &result, nil
}
