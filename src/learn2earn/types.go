package learn2earn

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/gate33/learn2earn/src/utils/model"
)

// Participation tracker errors. Callers branch on these, so they are sentinels.
var (
	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrCampaignNotActive     = errors.New("campaign is not accepting participations")
	ErrCampaignFull          = errors.New("campaign participant cap reached")
	ErrAlreadyParticipated   = errors.New("wallet already registered for this campaign")
	ErrParticipationNotFound = errors.New("participation not found")
	ErrInvalidTransition     = errors.New("status transition not allowed")
	ErrCampaignNotOwned      = errors.New("campaign does not belong to this company")
	ErrDraftNotFound         = errors.New("draft not found")
	ErrInvalidAmount         = errors.New("amount must be a positive decimal")
	ErrRewardExceedsPool     = errors.New("per-participant reward exceeds the token pool")
	ErrTitleRequired         = errors.New("title is required")
	ErrTokenAddressRequired  = errors.New("token address is required")
)

// Claim authorization failure reasons, stable strings exposed over the API
const (
	ReasonNotQualified      = "notQualified"
	ReasonAlreadyClaimed    = "alreadyClaimed"
	ReasonInvalidContractId = "invalidContractId"
	ReasonCampaignNotFound  = "campaignNotFound"
	ReasonNotSupported      = "networkNotSupported"
	ReasonInvalidAmount     = "invalidAmount"
	ReasonSigningFailed     = "signingFailed"
)

// Funding failure kinds, derived from the error surfaced by the chain client
const (
	FundFailureValidation   = "validation"
	FundFailureNotSupported = "networkNotSupported"
	FundFailureBalance      = "insufficientBalance"
	FundFailureAllowance    = "insufficientAllowance"
	FundFailureFeeCoverage  = "insufficientFeeCoverage"
	FundFailureReverted     = "transactionReverted"
	FundFailureChain        = "chainError"
	FundFailureStore        = "storeError"
)

// FundRequest carries everything needed to take a campaign from draft to
// active. Amounts are whole-token units, scaling to wei happens downstream.
type FundRequest struct {
	DraftId             string
	CompanyId           string
	Title               string
	Description         string
	Network             string
	TokenAddress        string
	TokenSymbol         string
	TokenAmount         decimal.Decimal
	TokenPerParticipant decimal.Decimal
	StartDate           *int64 // unix seconds, defaults to now
	Tasks               []model.Task
}

type FundResult struct {
	Success         bool
	NotSupported    bool
	CampaignId      string
	FirebaseId      string
	ContractId      *int64
	TransactionHash string
	DepositAmount   decimal.Decimal
	MaxParticipants int64

	// Populated on failure
	FailureKind string
	Message     string
	Shortfall   *decimal.Decimal
}

type AuthorizeRequest struct {
	CampaignId    string
	WalletAddress string
	Amount        decimal.Decimal
}

type AuthorizeResult struct {
	Success    bool
	Signature  string
	ContractId int64

	// Populated on failure
	Reason  string
	Message string
}

type RegisterRequest struct {
	CampaignId    string
	WalletAddress string
	Answers       json.RawMessage
}
