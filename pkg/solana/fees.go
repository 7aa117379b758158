package solana

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	LamportsPerSol  = 1_000_000_000
	BaseFeeLamports = 5000
)

// Transaction speed tiers
const (
	SpeedStandard = "standard"
	SpeedFast     = "fast"
	SpeedUltra    = "ultra"
)

// PriorityFeeStats holds recent prioritization fee observations in
// micro-lamports per compute unit.
type PriorityFeeStats struct {
	Min    uint64 `json:"min"`
	Median uint64 `json:"median"`
	P75    uint64 `json:"p75"`
	P95    uint64 `json:"p95"`
	Max    uint64 `json:"max"`
}

// DefaultPriorityFeeStats returns conservative fallback values used when
// the fee statistics endpoint is unavailable.
func DefaultPriorityFeeStats() PriorityFeeStats {
	return PriorityFeeStats{
		Min:    1000,
		Median: 5000,
		P75:    10000,
		P95:    50000,
		Max:    100000,
	}
}

type prioritizationFeeEntry struct {
	Slot              uint64 `json:"slot"`
	PrioritizationFee uint64 `json:"prioritizationFee"`
}

// GetRecentPriorityFees fetches recent prioritization fee observations and
// reduces them to percentiles. Falls back to fixed defaults on any failure.
func GetRecentPriorityFees(ctx context.Context, rpcURL string) PriorityFeeStats {
	var entries []prioritizationFeeEntry
	if err := callRPC(ctx, rpcURL, "getRecentPrioritizationFees", []interface{}{}, &entries); err != nil {
		log.Warnf("Failed to fetch recent priority fees, using defaults: %v", err)
		return DefaultPriorityFeeStats()
	}
	if len(entries) == 0 {
		return DefaultPriorityFeeStats()
	}

	fees := make([]uint64, 0, len(entries))
	for _, e := range entries {
		fees = append(fees, e.PrioritizationFee)
	}
	sort.Slice(fees, func(i, j int) bool { return fees[i] < fees[j] })

	return PriorityFeeStats{
		Min:    fees[0],
		Median: fees[len(fees)/2],
		P75:    fees[len(fees)*75/100],
		P95:    fees[len(fees)*95/100],
		Max:    fees[len(fees)-1],
	}
}

// SpeedPreset holds the compute budget settings for one speed tier.
type SpeedPreset struct {
	ComputeUnitPrice uint64 `json:"compute_unit_price"` // micro-lamports per compute unit
	ComputeUnitLimit uint32 `json:"compute_unit_limit"`
	JitoTipLamports  uint64 `json:"jito_tip_lamports"`
	Description      string `json:"description"`
}

// GetSpeedPreset maps a speed tier onto live fee statistics. Each tier uses
// a percentile with a floor; higher tiers request wider compute budgets to
// tolerate more complex instruction sets. Unknown tiers fall back to
// standard.
func GetSpeedPreset(speed string, stats PriorityFeeStats) SpeedPreset {
	switch speed {
	case SpeedFast:
		return SpeedPreset{
			ComputeUnitPrice: maxUint64(stats.P75, 10000),
			ComputeUnitLimit: 300000,
			JitoTipLamports:  50000,
			Description:      "High priority, moderate cost",
		}
	case SpeedUltra:
		return SpeedPreset{
			ComputeUnitPrice: maxUint64(stats.P95, 50000),
			ComputeUnitLimit: 400000,
			JitoTipLamports:  100000,
			Description:      "Maximum speed, highest cost",
		}
	default:
		return SpeedPreset{
			ComputeUnitPrice: maxUint64(stats.Median, 1000),
			ComputeUnitLimit: 200000,
			JitoTipLamports:  10000,
			Description:      "Normal speed, low cost",
		}
	}
}

// CostEstimate breaks down the expected cost of one transaction.
type CostEstimate struct {
	BaseFeeLamports     uint64  `json:"base_fee_lamports"`
	PriorityFeeLamports uint64  `json:"priority_fee_lamports"`
	JitoTipLamports     uint64  `json:"jito_tip_lamports"`
	TotalLamports       uint64  `json:"total_lamports"`
	TotalSol            float64 `json:"total_sol"`
}

// EstimateTransactionCost computes the total expected network cost for a
// transaction using the given preset. The tip is included only when MEV
// protection is requested.
func EstimateTransactionCost(preset SpeedPreset, useMevProtection bool, computeUnitLimit uint32) CostEstimate {
	if computeUnitLimit == 0 {
		computeUnitLimit = preset.ComputeUnitLimit
	}

	// priority fee = price (micro-lamports/CU) * limit (CU) / 1e6
	priorityFee := preset.ComputeUnitPrice * uint64(computeUnitLimit) / 1_000_000

	tip := uint64(0)
	if useMevProtection {
		tip = preset.JitoTipLamports
	}

	total := uint64(BaseFeeLamports) + priorityFee + tip
	return CostEstimate{
		BaseFeeLamports:     BaseFeeLamports,
		PriorityFeeLamports: priorityFee,
		JitoTipLamports:     tip,
		TotalLamports:       total,
		TotalSol:            float64(total) / LamportsPerSol,
	}
}

// PlatformFee computes the platform fee in SOL for a trade amount:
// amount * feePercentage / 100, independent of speed tier.
func PlatformFee(amountSol, feePercentage float64) float64 {
	fee := decimal.NewFromFloat(amountSol).
		Mul(decimal.NewFromFloat(feePercentage)).
		Div(decimal.NewFromInt(100))
	f, _ := fee.Float64()
	return f
}

// SolToLamports converts a SOL amount to lamports, truncating fractions.
func SolToLamports(amountSol float64) uint64 {
	lamports := decimal.NewFromFloat(amountSol).Mul(decimal.NewFromInt(LamportsPerSol))
	return uint64(lamports.IntPart())
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
