package engine

import (
	"context"
	"encoding/binary"
	"testing"

	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snipercontrol/internal/models"
	scsolana "snipercontrol/pkg/solana"
)

const testToken = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

func TestExecuteTradeValidation(t *testing.T) {
	h := newTestEngine(t)

	cases := []struct {
		name   string
		params TradeParams
	}{
		{"Empty Token", TradeParams{UserID: 1, WalletID: 1, TradeType: models.TradeTypeBuy, AmountSol: 1}},
		{"Bad Trade Type", TradeParams{UserID: 1, WalletID: 1, TokenAddress: testToken, TradeType: "SHORT", AmountSol: 1}},
		{"Zero Amount", TradeParams{UserID: 1, WalletID: 1, TokenAddress: testToken, TradeType: models.TradeTypeBuy, AmountSol: 0}},
		{"Negative Amount", TradeParams{UserID: 1, WalletID: 1, TokenAddress: testToken, TradeType: models.TradeTypeBuy, AmountSol: -1}},
		{"Sell Without Tokens", TradeParams{UserID: 1, WalletID: 1, TokenAddress: testToken, TradeType: models.TradeTypeSell, AmountSol: 1}},
		{"Slippage Out Of Range", TradeParams{UserID: 1, WalletID: 1, TokenAddress: testToken, TradeType: models.TradeTypeBuy, AmountSol: 1, SlippageBps: 20000}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.engine.ExecuteTrade(context.Background(), tc.params)
			require.Error(t, err)

			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	// Rejected intents never reach the ledger
	var count int64
	h.db.Model(&models.Trade{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestExecuteTradeBuy(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)
	h.oracle.setPrice(testToken, 0.5)

	result, err := h.engine.ExecuteTrade(context.Background(), TradeParams{
		UserID:       user.ID,
		WalletID:     wallet.ID,
		TokenAddress: testToken,
		TradeType:    models.TradeTypeBuy,
		AmountSol:    1.0,
		SlippageBps:  500,
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.NotEmpty(t, result.Signature)

	t.Run("Platform Fee Is One Percent", func(t *testing.T) {
		assert.Equal(t, 0.01, result.FeeCollected)
		// the swap leg is sized net of the platform fee
		assert.Equal(t, scsolana.SolToLamports(0.99), h.swaps.lastAmount)
	})

	t.Run("Swap Direction Is Sol To Token", func(t *testing.T) {
		assert.Equal(t, SolMint, h.swaps.lastInput)
		assert.Equal(t, testToken, h.swaps.lastOutput)
	})

	t.Run("Trade Row Reaches Terminal Success", func(t *testing.T) {
		var trade models.Trade
		require.NoError(t, h.db.First(&trade, result.TradeID).Error)
		assert.Equal(t, models.TradeStatusSuccess, trade.Status)
		assert.Equal(t, 0.01, trade.PlatformFeeSol)
		require.NotNil(t, trade.TransactionSignature)
		assert.Equal(t, result.Signature, *trade.TransactionSignature)
		assert.NotNil(t, trade.ConfirmedAt)
		assert.Nil(t, trade.ErrorMessage)
	})

	t.Run("User Stats Incremented", func(t *testing.T) {
		var fresh models.User
		require.NoError(t, h.db.First(&fresh, user.ID).Error)
		assert.Equal(t, 1, fresh.TotalTrades)
		assert.Equal(t, 1.0, fresh.TotalVolumeSol)
	})

	t.Run("Position Opened With Oracle Price", func(t *testing.T) {
		var position models.Position
		require.NoError(t, h.db.Where("entry_trade_id = ?", result.TradeID).First(&position).Error)
		assert.Equal(t, models.PositionStatusOpen, position.Status)
		assert.Equal(t, 0.5, position.EntryPrice)
		assert.Equal(t, result.AmountTokens, position.Amount)
		assert.Equal(t, 1.0, position.AmountSol)
		// defaults apply when the user has no sniper config
		require.NotNil(t, position.TakeProfitPercent)
		assert.Equal(t, DefaultTakeProfitPercent, *position.TakeProfitPercent)
		require.NotNil(t, position.StopLossPercent)
		assert.Equal(t, DefaultStopLossPercent, *position.StopLossPercent)
	})
}

func TestExecuteTradePresetOverrides(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)
	h.oracle.setPrice(testToken, 0.5)

	result, err := h.engine.ExecuteTrade(context.Background(), TradeParams{
		UserID:                        user.ID,
		WalletID:                      wallet.ID,
		TokenAddress:                  testToken,
		TradeType:                     models.TradeTypeBuy,
		AmountSol:                     1.0,
		Speed:                         scsolana.SpeedFast,
		MevProtection:                 true,
		ComputeUnitPriceMicroLamports: 777,
		ComputeUnitLimit:              123456,
		JitoTipLamports:               4242,
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	ixs := h.submitter.lastInstructions
	require.Len(t, ixs, 5, "limit, price, swap, fee transfer, tip")

	t.Run("Compute Budget Uses Configured Values", func(t *testing.T) {
		limitData, err := ixs[0].Data()
		require.NoError(t, err)
		assert.Equal(t, computebudget.Instruction_SetComputeUnitLimit, limitData[0])
		assert.Equal(t, uint32(123456), binary.LittleEndian.Uint32(limitData[1:5]))

		priceData, err := ixs[1].Data()
		require.NoError(t, err)
		assert.Equal(t, computebudget.Instruction_SetComputeUnitPrice, priceData[0])
		assert.Equal(t, uint64(777), binary.LittleEndian.Uint64(priceData[1:9]))
	})

	t.Run("Tip Transfer Uses Configured Lamports", func(t *testing.T) {
		tipData, err := ixs[4].Data()
		require.NoError(t, err)
		assert.Equal(t, uint64(4242), binary.LittleEndian.Uint64(tipData[4:12]))
	})

	t.Run("Private Endpoint Without Mev Protection", func(t *testing.T) {
		result, err := h.engine.ExecuteTrade(context.Background(), TradeParams{
			UserID:        user.ID,
			WalletID:      wallet.ID,
			TokenAddress:  testToken,
			TradeType:     models.TradeTypeBuy,
			AmountSol:     1.0,
			UsePrivateRPC: true,
		})
		require.NoError(t, err)
		require.True(t, result.Success)
		assert.True(t, h.submitter.lastOpts.UsePrivateRPC)
	})
}

func TestExecuteTradeRecordsPricePerToken(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)
	h.oracle.setPrice(testToken, 0.5)
	h.swaps.out = 1_000_000

	result, err := h.engine.ExecuteTrade(context.Background(), TradeParams{
		UserID:       user.ID,
		WalletID:     wallet.ID,
		TokenAddress: testToken,
		TradeType:    models.TradeTypeBuy,
		AmountSol:    1.0,
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	var trade models.Trade
	require.NoError(t, h.db.First(&trade, result.TradeID).Error)
	require.NotNil(t, trade.PricePerTokenSol)
	// net SOL (gross minus the 1% platform fee) over tokens received
	assert.InDelta(t, 0.99/1_000_000, *trade.PricePerTokenSol, 1e-12)
}

func TestExecuteTradeSubmissionFailure(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)
	h.oracle.setPrice(testToken, 0.5)
	h.submitter.err = &scsolana.SubmissionError{Attempts: 3, Err: assert.AnError}

	result, err := h.engine.ExecuteTrade(context.Background(), TradeParams{
		UserID:       user.ID,
		WalletID:     wallet.ID,
		TokenAddress: testToken,
		TradeType:    models.TradeTypeBuy,
		AmountSol:    1.0,
	})
	require.NoError(t, err, "submission failures are recorded, not thrown")
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)

	var trade models.Trade
	require.NoError(t, h.db.First(&trade, result.TradeID).Error)
	assert.Equal(t, models.TradeStatusFailed, trade.Status)
	require.NotNil(t, trade.ErrorMessage)
	assert.Nil(t, trade.TransactionSignature)

	var fresh models.User
	require.NoError(t, h.db.First(&fresh, user.ID).Error)
	assert.Equal(t, 0, fresh.TotalTrades, "failed trades never count toward stats")

	var positions int64
	h.db.Model(&models.Position{}).Count(&positions)
	assert.Equal(t, int64(0), positions)
}

func TestExecuteTradeSwapUnavailable(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)
	h.swaps.err = assert.AnError

	result, err := h.engine.ExecuteTrade(context.Background(), TradeParams{
		UserID:       user.ID,
		WalletID:     wallet.ID,
		TokenAddress: testToken,
		TradeType:    models.TradeTypeBuy,
		AmountSol:    1.0,
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "swap unavailable")
	assert.Equal(t, 0, h.submitter.calls, "nothing is submitted without a swap instruction")

	var trade models.Trade
	require.NoError(t, h.db.First(&trade, result.TradeID).Error)
	assert.Equal(t, models.TradeStatusFailed, trade.Status)
}

func TestExecuteTradeOracleFailureSkipsPosition(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)
	// no oracle price for the token

	result, err := h.engine.ExecuteTrade(context.Background(), TradeParams{
		UserID:       user.ID,
		WalletID:     wallet.ID,
		TokenAddress: testToken,
		TradeType:    models.TradeTypeBuy,
		AmountSol:    1.0,
	})
	require.NoError(t, err)
	assert.True(t, result.Success, "trade succeeds even when position bookkeeping cannot")

	var positions int64
	h.db.Model(&models.Position{}).Count(&positions)
	assert.Equal(t, int64(0), positions)
}

func TestGetTradingHistoryAndFees(t *testing.T) {
	h := newTestEngine(t)
	user := h.createUser(t)
	wallet := h.createWallet(t, user.ID)
	h.oracle.setPrice(testToken, 0.5)

	for i := 0; i < 3; i++ {
		result, err := h.engine.ExecuteTrade(context.Background(), TradeParams{
			UserID:       user.ID,
			WalletID:     wallet.ID,
			TokenAddress: testToken,
			TradeType:    models.TradeTypeBuy,
			AmountSol:    1.0,
		})
		require.NoError(t, err)
		require.True(t, result.Success)
	}

	trades, total, err := h.engine.GetTradingHistory(user.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, trades, 2)

	fees, err := h.engine.GetTotalFeesCollected()
	require.NoError(t, err)
	assert.InDelta(t, 0.03, fees, 1e-9)
}
