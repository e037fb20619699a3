package distributor

import (
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Token amounts cross the chain boundary scaled to 18 decimal places
const tokenDecimals = 18

// TxResult is the outcome of a state-changing call. Expected failure modes
// are flags, not errors, so calling UIs can branch without unwrapping.
type TxResult struct {
	Success         bool   `json:"success"`
	NotSupported    bool   `json:"notSupported,omitempty"`
	TransactionHash string `json:"transactionHash,omitempty"`
	BlockNumber     uint64 `json:"blockNumber,omitempty"`
	Message         string `json:"message,omitempty"`
}

// CreateResult additionally carries the contract's internal index for the new
// campaign. ContractId stays nil when the creation event could not be parsed,
// which is non-fatal.
type CreateResult struct {
	TxResult
	ContractId *int64 `json:"contractId,omitempty"`
}

// Claim failure classification
const (
	ClaimErrorAlreadyClaimed = "alreadyClaimed"
	ClaimErrorInvalidId      = "invalidId"
	ClaimErrorNotEligible    = "notEligible"
	ClaimErrorNotSupported   = "notSupported"
)

type ClaimResult struct {
	TxResult
	SpecificError string `json:"specificError,omitempty"`
}

// ApprovalResult reports whether the distributor already has a non-zero
// allowance from the operator wallet.
type ApprovalResult struct {
	Success      bool   `json:"success"`
	NotSupported bool   `json:"notSupported,omitempty"`
	Approved     bool   `json:"approved"`
	Message      string `json:"message,omitempty"`
}

// OnChainState mirrors the contract's public campaign accessor
type OnChainState struct {
	Id               string
	TokenAddress     string
	TokenAmount      decimal.Decimal
	StartTime        time.Time
	EndTime          time.Time
	MaxParticipants  int64
	ParticipantCount int64
	Active           bool
}

type StateResult struct {
	Success      bool   `json:"success"`
	NotSupported bool   `json:"notSupported,omitempty"`
	Message      string `json:"message,omitempty"`

	State OnChainState `json:"state"`
}

// ToWei scales a human token amount to the contract's 18-decimal integer
func ToWei(amount decimal.Decimal) *big.Int {
	return amount.Shift(tokenDecimals).Truncate(0).BigInt()
}

// FromWei converts an 18-decimal integer back to a human token amount
func FromWei(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -tokenDecimals)
}

// ToUnixSeconds floors a timestamp to whole UNIX seconds, the contract's unit
func ToUnixSeconds(t time.Time) *big.Int {
	return big.NewInt(t.UnixMilli() / 1000)
}

// ClassifyClaimError maps an execution failure onto the claim error taxonomy
func ClassifyClaimError(message string) string {
	lowered := strings.ToLower(message)
	switch {
	case strings.Contains(lowered, "already claimed"):
		return ClaimErrorAlreadyClaimed
	case strings.Contains(lowered, "not eligible"),
		strings.Contains(lowered, "invalid signature"),
		strings.Contains(lowered, "not authorized"):
		return ClaimErrorNotEligible
	case strings.Contains(lowered, "not found"),
		strings.Contains(lowered, "does not exist"):
		return ClaimErrorInvalidId
	default:
		return ""
	}
}
