package learn2earn

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gate33/learn2earn/src/distributor"
	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/logger"
	"github.com/gate33/learn2earn/src/utils/model"
	"github.com/gate33/learn2earn/src/utils/monitoring"
)

// Hardhat dev account key, holds nothing anywhere that matters. Substituted
// only when Claim.AllowUnsafeTestMode is set.
const devPlaceholderKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// ClaimService issues the signatures the distributor contract verifies before
// releasing tokens. The contract recovers the signer address from the
// signature, so the key configured here has to match the one registered
// on chain.
type ClaimService struct {
	Config *config.Config
	Log    *logrus.Entry

	db          *gorm.DB
	distributor *distributor.Client
	tracker     *Tracker
	monitor     monitoring.Monitor

	signerKey      *ecdsa.PrivateKey
	unsafeTestMode bool
}

func NewClaimService(config *config.Config) (self *ClaimService, err error) {
	self = new(ClaimService)
	self.Config = config
	self.Log = logger.NewSublogger("claim")
	self.unsafeTestMode = config.Claim.AllowUnsafeTestMode

	key := config.Claim.SignerPrivateKey
	if key == "" {
		if !self.unsafeTestMode {
			return nil, errors.New("claim signer private key is not configured")
		}
		key = devPlaceholderKey
		self.Log.Warn("UNSAFE TEST MODE: using the placeholder claim signer key")
	}

	self.signerKey, err = crypto.HexToECDSA(key)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse claim signer private key")
	}
	return
}

func (self *ClaimService) WithDb(db *gorm.DB) *ClaimService {
	self.db = db
	return self
}

func (self *ClaimService) WithDistributor(client *distributor.Client) *ClaimService {
	self.distributor = client
	return self
}

func (self *ClaimService) WithTracker(tracker *Tracker) *ClaimService {
	self.tracker = tracker
	return self
}

func (self *ClaimService) WithMonitor(monitor monitoring.Monitor) *ClaimService {
	self.monitor = monitor
	return self
}

// SignerAddress is what the distributor contract must have registered
func (self *ClaimService) SignerAddress() common.Address {
	return crypto.PubkeyToAddress(self.signerKey.PublicKey)
}

// Authorize checks eligibility and signs the claim tuple. The signature is
// deterministic for identical inputs, repeating a request is harmless.
func (self *ClaimService) Authorize(ctx context.Context, req AuthorizeRequest) (out AuthorizeResult) {
	if !req.Amount.IsPositive() {
		out.Reason = ReasonInvalidAmount
		out.Message = ErrInvalidAmount.Error()
		return
	}

	wallet := model.NormalizeWalletAddress(req.WalletAddress)
	if !common.IsHexAddress(wallet) {
		out.Reason = ReasonNotQualified
		out.Message = "wallet address is not a valid hex address"
		return
	}

	campaign, err := self.findCampaign(ctx, req.CampaignId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		out.Reason = ReasonCampaignNotFound
		out.Message = "no campaign matches " + req.CampaignId
		return
	}
	if err != nil {
		self.countDbError()
		out.Reason = ReasonCampaignNotFound
		out.Message = err.Error()
		return
	}

	if campaign.ContractId == nil || *campaign.ContractId < 0 {
		out.Reason = ReasonInvalidContractId
		out.Message = "campaign has no usable on-chain contract id"
		return
	}

	var participation model.Participation
	err = self.db.WithContext(ctx).
		Where("campaign_id = ? AND wallet_address = ? AND deleted = ?", campaign.Id, wallet, false).
		First(&participation).
		Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !self.unsafeTestMode {
			out.Reason = ReasonNotQualified
			out.Message = "wallet did not complete this campaign"
			return
		}
		self.Log.WithField("wallet", wallet).WithField("campaign", campaign.Id).
			Warn("UNSAFE TEST MODE: synthesizing eligibility without a participation record")
	case err != nil:
		self.countDbError()
		out.Reason = ReasonNotQualified
		out.Message = err.Error()
		return
	case participation.Claimed:
		out.Reason = ReasonAlreadyClaimed
		out.Message = "wallet already claimed its reward"
		return
	}

	digest := ClaimDigest(common.HexToAddress(wallet), *campaign.ContractId, distributor.ToWei(req.Amount))
	signature, err := crypto.Sign(digest, self.signerKey)
	if err != nil {
		if self.monitor != nil {
			self.monitor.GetReport().Learn2Earn.Errors.ClaimSignatureFailures.Inc()
		}
		out.Reason = ReasonSigningFailed
		out.Message = err.Error()
		return
	}

	// Contracts expect the legacy 27/28 recovery id
	signature[64] += 27

	if self.monitor != nil {
		self.monitor.GetReport().Learn2Earn.State.ClaimSignaturesIssued.Inc()
	}

	out.Success = true
	out.Signature = hexutil.Encode(signature)
	out.ContractId = *campaign.ContractId
	return
}

// Submit relays the on-chain claim through the operator wallet and records the
// payout against the participation. Wallets can also claim directly with the
// Authorize signature, this path exists for custodial flows.
func (self *ClaimService) Submit(ctx context.Context, campaignId, walletAddress string) (out distributor.ClaimResult) {
	campaign, err := self.findCampaign(ctx, campaignId)
	if err != nil {
		out.SpecificError = distributor.ClaimErrorInvalidId
		out.Message = err.Error()
		return
	}

	out = self.distributor.Claim(ctx, campaign.Network, campaign.FirebaseId)
	if !out.Success {
		if self.monitor != nil {
			self.monitor.GetReport().Learn2Earn.Errors.ClaimSubmissionFailures.Inc()
		}
		return
	}

	if self.monitor != nil {
		self.monitor.GetReport().Learn2Earn.State.ClaimsSubmitted.Inc()
	}

	err = self.tracker.MarkClaimed(ctx, campaign.Id, walletAddress, out.TransactionHash)
	if err != nil {
		// Chain state is already final, the syncer reconciles the counter
		self.Log.WithError(err).
			WithField("campaign", campaign.Id).
			WithField("wallet", walletAddress).
			Warn("Claim confirmed on chain but participation could not be marked")
	}
	return
}

// findCampaign resolves the external key first, then falls back to the store
// document id
func (self *ClaimService) findCampaign(ctx context.Context, id string) (campaign *model.Campaign, err error) {
	campaign = new(model.Campaign)
	err = self.db.WithContext(ctx).
		Where("firebase_id = ? AND deleted = ?", id, false).
		First(campaign).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = self.db.WithContext(ctx).
			Where("id = ? AND deleted = ?", id, false).
			First(campaign).
			Error
	}
	return
}

func (self *ClaimService) countDbError() {
	if self.monitor != nil {
		self.monitor.GetReport().Learn2Earn.Errors.GatewayDbErrors.Inc()
	}
}

// ClaimDigest reproduces the contract's signature check input:
// keccak256(abi.encodePacked(wallet, uint256 contractId, uint256 amountWei))
// wrapped in the personal-message envelope.
func ClaimDigest(wallet common.Address, contractId int64, amountWei *big.Int) []byte {
	packed := make([]byte, 0, 84)
	packed = append(packed, wallet.Bytes()...)
	packed = append(packed, common.LeftPadBytes(big.NewInt(contractId).Bytes(), 32)...)
	packed = append(packed, common.LeftPadBytes(amountWei.Bytes(), 32)...)
	return accounts.TextHash(crypto.Keccak256(packed))
}
