package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSpeedPreset(t *testing.T) {
	stats := PriorityFeeStats{
		Min:    100,
		Median: 500,
		P75:    800,
		P95:    2000,
		Max:    9000,
	}

	t.Run("Standard Uses Median With Floor", func(t *testing.T) {
		preset := GetSpeedPreset(SpeedStandard, stats)
		assert.Equal(t, uint64(1000), preset.ComputeUnitPrice, "median below floor should use floor")
		assert.Equal(t, uint32(200000), preset.ComputeUnitLimit)
		assert.Equal(t, uint64(10000), preset.JitoTipLamports)
	})

	t.Run("Fast Uses P75 With Floor", func(t *testing.T) {
		preset := GetSpeedPreset(SpeedFast, stats)
		assert.Equal(t, uint64(10000), preset.ComputeUnitPrice, "p75 below floor should use floor")
		assert.Equal(t, uint32(300000), preset.ComputeUnitLimit)
		assert.Equal(t, uint64(50000), preset.JitoTipLamports)
	})

	t.Run("Ultra Uses P95 With Floor", func(t *testing.T) {
		preset := GetSpeedPreset(SpeedUltra, stats)
		assert.Equal(t, uint64(50000), preset.ComputeUnitPrice, "p95 below floor should use floor")
		assert.Equal(t, uint32(400000), preset.ComputeUnitLimit)
		assert.Equal(t, uint64(100000), preset.JitoTipLamports)
	})

	t.Run("Observed Fees Above Floor Are Used", func(t *testing.T) {
		hot := PriorityFeeStats{Median: 20000, P75: 80000, P95: 300000}
		assert.Equal(t, uint64(20000), GetSpeedPreset(SpeedStandard, hot).ComputeUnitPrice)
		assert.Equal(t, uint64(80000), GetSpeedPreset(SpeedFast, hot).ComputeUnitPrice)
		assert.Equal(t, uint64(300000), GetSpeedPreset(SpeedUltra, hot).ComputeUnitPrice)
	})

	t.Run("Unknown Tier Falls Back To Standard", func(t *testing.T) {
		assert.Equal(t, GetSpeedPreset(SpeedStandard, stats), GetSpeedPreset("turbo", stats))
		assert.Equal(t, GetSpeedPreset(SpeedStandard, stats), GetSpeedPreset("", stats))
	})
}

func TestEstimateTransactionCost(t *testing.T) {
	preset := SpeedPreset{
		ComputeUnitPrice: 10000,
		ComputeUnitLimit: 200000,
		JitoTipLamports:  10000,
	}

	t.Run("Without MEV Protection", func(t *testing.T) {
		estimate := EstimateTransactionCost(preset, false, 0)
		assert.Equal(t, uint64(5000), estimate.BaseFeeLamports)
		// 10000 micro-lamports/CU * 200000 CU / 1e6 = 2000 lamports
		assert.Equal(t, uint64(2000), estimate.PriorityFeeLamports)
		assert.Equal(t, uint64(0), estimate.JitoTipLamports)
		assert.Equal(t, uint64(7000), estimate.TotalLamports)
	})

	t.Run("With MEV Protection", func(t *testing.T) {
		estimate := EstimateTransactionCost(preset, true, 0)
		assert.Equal(t, uint64(10000), estimate.JitoTipLamports)
		assert.Equal(t, uint64(17000), estimate.TotalLamports)
		assert.InDelta(t, 17000.0/float64(LamportsPerSol), estimate.TotalSol, 1e-12)
	})

	t.Run("Explicit Compute Unit Limit Overrides Preset", func(t *testing.T) {
		estimate := EstimateTransactionCost(preset, false, 400000)
		assert.Equal(t, uint64(4000), estimate.PriorityFeeLamports)
	})

	t.Run("Tier Costs Are Monotonic", func(t *testing.T) {
		stats := DefaultPriorityFeeStats()
		limit := uint32(200000)
		standard := EstimateTransactionCost(GetSpeedPreset(SpeedStandard, stats), true, limit)
		fast := EstimateTransactionCost(GetSpeedPreset(SpeedFast, stats), true, limit)
		ultra := EstimateTransactionCost(GetSpeedPreset(SpeedUltra, stats), true, limit)

		assert.GreaterOrEqual(t, fast.TotalLamports, standard.TotalLamports)
		assert.GreaterOrEqual(t, ultra.TotalLamports, fast.TotalLamports)
	})
}

func TestPlatformFee(t *testing.T) {
	assert.Equal(t, 0.01, PlatformFee(1.0, 1.0))
	assert.Equal(t, 0.025, PlatformFee(2.5, 1.0))
	assert.Equal(t, 0.05, PlatformFee(1.0, 5.0))
	assert.Equal(t, 0.0, PlatformFee(1.0, 0.0))
	// decimal arithmetic avoids float drift on awkward inputs
	assert.Equal(t, 0.003, PlatformFee(0.3, 1.0))
}

func TestDefaultPriorityFeeStats(t *testing.T) {
	stats := DefaultPriorityFeeStats()
	assert.Equal(t, uint64(1000), stats.Min)
	assert.Equal(t, uint64(5000), stats.Median)
	assert.Equal(t, uint64(10000), stats.P75)
	assert.Equal(t, uint64(50000), stats.P95)
	assert.Equal(t, uint64(100000), stats.Max)
}

func TestSolToLamports(t *testing.T) {
	assert.Equal(t, uint64(1500000000), SolToLamports(1.5))
	assert.Equal(t, uint64(0), SolToLamports(0))
	assert.Equal(t, uint64(10000000), SolToLamports(0.01))
}
