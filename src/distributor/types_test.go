package distributor

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToWei(t *testing.T) {
	wei := ToWei(decimal.RequireFromString("1.5"))
	assert.Equal(t, "1500000000000000000", wei.String())

	wei = ToWei(decimal.NewFromInt(0))
	assert.Equal(t, "0", wei.String())

	// Sub-wei precision is dropped, not rounded up
	wei = ToWei(decimal.RequireFromString("0.0000000000000000019"))
	assert.Equal(t, "1", wei.String())
}

func TestFromWeiRoundTrip(t *testing.T) {
	for _, raw := range []string{"0", "1", "12.5", "0.000000000000000001", "1000000"} {
		amount := decimal.RequireFromString(raw)
		assert.True(t, amount.Equal(FromWei(ToWei(amount))), raw)
	}
}

func TestToUnixSeconds(t *testing.T) {
	ts := time.Date(2024, 6, 1, 10, 30, 0, 999000000, time.UTC)
	assert.Equal(t, big.NewInt(ts.Unix()), ToUnixSeconds(ts))

	// Milliseconds are floored away
	assert.Equal(t, int64(0), ToUnixSeconds(time.UnixMilli(999).UTC()).Int64())
	assert.Equal(t, int64(1), ToUnixSeconds(time.UnixMilli(1999).UTC()).Int64())
}

func TestClassifyClaimError(t *testing.T) {
	assert.Equal(t, ClaimErrorAlreadyClaimed, ClassifyClaimError("execution reverted: Already claimed"))
	assert.Equal(t, ClaimErrorNotEligible, ClassifyClaimError("execution reverted: not eligible"))
	assert.Equal(t, ClaimErrorNotEligible, ClassifyClaimError("execution reverted: Invalid signature"))
	assert.Equal(t, ClaimErrorInvalidId, ClassifyClaimError("execution reverted: learn2earn does not exist"))
	assert.Equal(t, "", ClassifyClaimError("connection refused"))
}

func TestEmbeddedAbisParse(t *testing.T) {
	distributorAbi, err := parseDistributorAbi()
	assert.Nil(t, err)
	for _, method := range DistributorMethods {
		_, ok := distributorAbi.Methods[method]
		assert.True(t, ok, method)
	}

	event, ok := distributorAbi.Events[creationEventName]
	assert.True(t, ok)
	assert.NotEmpty(t, event.Inputs)

	erc20Abi, err := parseErc20Abi()
	assert.Nil(t, err)
	for _, method := range []string{"balanceOf", "allowance", "approve"} {
		_, ok := erc20Abi.Methods[method]
		assert.True(t, ok, method)
	}
}
