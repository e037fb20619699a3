package learn2earn

import (
	"github.com/shopspring/decimal"
)

// Precision used for fee-adjusted amounts
const amountPrecision = 6

// DeriveMaxParticipants computes how many completions the reward pool covers
func DeriveMaxParticipants(tokenAmount, tokenPerParticipant decimal.Decimal) int64 {
	if !tokenAmount.IsPositive() || !tokenPerParticipant.IsPositive() {
		return 0
	}
	return tokenAmount.Div(tokenPerParticipant).Floor().IntPart()
}

// AdjustForFee grosses a requested payout pool up so the pool is still fully
// covered after the distributor contract deducts its percentage fee from the
// deposit: adjusted = pool / (1 - fee/100). Fees at or above 100 percent have
// no finite gross-up, the pool comes back unchanged and funding rejects the
// config before ever calling this.
func AdjustForFee(pool decimal.Decimal, feePercent float64) decimal.Decimal {
	if feePercent <= 0 || feePercent >= 100 {
		return pool
	}
	divisor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(feePercent).Div(decimal.NewFromInt(100)))
	return pool.DivRound(divisor, amountPrecision)
}

// FeePortion is the part of the adjusted deposit the platform keeps
func FeePortion(pool decimal.Decimal, feePercent float64) decimal.Decimal {
	return AdjustForFee(pool, feePercent).Sub(pool)
}
