package learn2earn

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAdjustForFee(t *testing.T) {
	adjusted := AdjustForFee(decimal.NewFromInt(100), 5)
	assert.Equal(t, "105.263158", adjusted.StringFixed(6))

	portion := FeePortion(decimal.NewFromInt(100), 5)
	assert.Equal(t, "5.263158", portion.StringFixed(6))

	// The platform's cut of the adjusted deposit equals the fee percentage,
	// which is the whole point of grossing up
	cut := adjusted.Mul(decimal.NewFromInt(5)).Div(decimal.NewFromInt(100))
	assert.InDelta(t, 5.263158, cut.InexactFloat64(), 0.000001)
}

func TestAdjustForFeeZero(t *testing.T) {
	pool := decimal.RequireFromString("123.456")
	assert.True(t, pool.Equal(AdjustForFee(pool, 0)))
	assert.True(t, pool.Equal(AdjustForFee(pool, -1)))
}

func TestAdjustForFeeConfiscatory(t *testing.T) {
	// No finite deposit survives a fee of 100 percent or more, the pool comes
	// back unchanged instead of dividing by zero
	pool := decimal.NewFromInt(100)
	assert.True(t, pool.Equal(AdjustForFee(pool, 100)))
	assert.True(t, pool.Equal(AdjustForFee(pool, 150)))
}

func TestDeriveMaxParticipants(t *testing.T) {
	cases := []struct {
		amount   string
		per      string
		expected int64
	}{
		{"100", "7", 14},
		{"1000", "100", 10},
		{"100", "100", 1},
		{"5", "7", 0},
		{"0.9", "0.3", 3},
		{"0", "1", 0},
		{"1", "0", 0},
		{"-1", "1", 0},
	}

	for _, c := range cases {
		got := DeriveMaxParticipants(
			decimal.RequireFromString(c.amount),
			decimal.RequireFromString(c.per),
		)
		assert.Equal(t, c.expected, got, "%s / %s", c.amount, c.per)
	}
}

func TestClassifyFundingError(t *testing.T) {
	assert.Equal(t, FundFailureBalance, classifyFundingError("execution reverted: ERC20: transfer amount exceeds balance"))
	assert.Equal(t, FundFailureAllowance, classifyFundingError("execution reverted: ERC20: insufficient allowance"))
	assert.Equal(t, FundFailureFeeCoverage, classifyFundingError("insufficient funds for gas * price + value"))
	assert.Equal(t, FundFailureReverted, classifyFundingError("execution reverted"))
	assert.Equal(t, FundFailureChain, classifyFundingError("connection refused"))
}

func TestValidateFundRequest(t *testing.T) {
	valid := func() FundRequest {
		return FundRequest{
			Title:               "Intro to wallets",
			TokenAddress:        "0x0000000000000000000000000000000000000001",
			TokenAmount:         decimal.NewFromInt(100),
			TokenPerParticipant: decimal.NewFromInt(5),
		}
	}

	req := valid()
	assert.Nil(t, validateFundRequest(&req))

	req = valid()
	req.Title = "   "
	assert.ErrorIs(t, validateFundRequest(&req), ErrTitleRequired)

	req = valid()
	req.TokenAddress = ""
	assert.ErrorIs(t, validateFundRequest(&req), ErrTokenAddressRequired)

	req = valid()
	req.TokenAmount = decimal.Zero
	assert.ErrorIs(t, validateFundRequest(&req), ErrInvalidAmount)

	req = valid()
	req.TokenPerParticipant = decimal.NewFromInt(101)
	assert.ErrorIs(t, validateFundRequest(&req), ErrRewardExceedsPool)
}
