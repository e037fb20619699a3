package learn2earn

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/gate33/learn2earn/src/distributor"
	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/model"
)

func TestClaimTestSuite(t *testing.T) {
	suite.Run(t, new(ClaimTestSuite))
}

type ClaimTestSuite struct {
	suite.Suite
	ctx     context.Context
	cancel  context.CancelFunc
	config  *config.Config
	db      *gorm.DB
	service *ClaimService
}

const testWallet = "0x8626f6940E2eb28930eFb4CeF49B2d1F2C9C1199"

func (s *ClaimTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.config = config.Default()
	s.config.Claim.SignerPrivateKey = devPlaceholderKey

	var err error
	s.db, err = newTestDb()
	assert.Nil(s.T(), err)

	s.service, err = NewClaimService(s.config)
	assert.Nil(s.T(), err)
	s.service.WithDb(s.db)
}

func (s *ClaimTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *ClaimTestSuite) seedCampaign(contractId *int64) (campaign model.Campaign) {
	campaign = model.Campaign{
		Id:         "c-" + time.Now().Format("150405.000000000"),
		FirebaseId: "fb-" + time.Now().Format("150405.000000000"),
		ContractId: contractId,
		Status:     model.CampaignStatusActive,
		Network:    "polygon",
	}
	err := s.db.Create(&campaign).Error
	assert.Nil(s.T(), err)
	return
}

func (s *ClaimTestSuite) seedParticipation(campaignId string, claimed bool) {
	err := s.db.Create(&model.Participation{
		Id:            "p-" + time.Now().Format("150405.000000000"),
		CampaignId:    campaignId,
		WalletAddress: model.NormalizeWalletAddress(testWallet),
		Claimed:       claimed,
		Status:        model.ParticipationStatusRegistered,
	}).Error
	assert.Nil(s.T(), err)
}

func (s *ClaimTestSuite) TestMissingKeyIsFatal() {
	conf := config.Default()
	conf.Claim.SignerPrivateKey = ""
	conf.Claim.AllowUnsafeTestMode = false

	_, err := NewClaimService(conf)
	assert.NotNil(s.T(), err)
}

func (s *ClaimTestSuite) TestAuthorizeSignatureRecoversToSigner() {
	contractId := int64(7)
	campaign := s.seedCampaign(&contractId)
	s.seedParticipation(campaign.Id, false)

	amount := decimal.RequireFromString("12.5")
	out := s.service.Authorize(s.ctx, AuthorizeRequest{
		CampaignId:    campaign.FirebaseId,
		WalletAddress: testWallet,
		Amount:        amount,
	})
	assert.True(s.T(), out.Success, out.Message)
	assert.Equal(s.T(), contractId, out.ContractId)

	signature, err := hexutil.Decode(out.Signature)
	assert.Nil(s.T(), err)
	assert.Len(s.T(), signature, 65)
	assert.GreaterOrEqual(s.T(), signature[64], byte(27))

	signature[64] -= 27
	digest := ClaimDigest(
		common.HexToAddress(model.NormalizeWalletAddress(testWallet)),
		contractId,
		distributor.ToWei(amount),
	)
	pub, err := crypto.SigToPub(digest, signature)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), s.service.SignerAddress(), crypto.PubkeyToAddress(*pub))
}

func (s *ClaimTestSuite) TestAuthorizeIsDeterministic() {
	contractId := int64(11)
	campaign := s.seedCampaign(&contractId)
	s.seedParticipation(campaign.Id, false)

	req := AuthorizeRequest{
		CampaignId:    campaign.FirebaseId,
		WalletAddress: testWallet,
		Amount:        decimal.NewFromInt(3),
	}

	first := s.service.Authorize(s.ctx, req)
	second := s.service.Authorize(s.ctx, req)
	assert.True(s.T(), first.Success)
	assert.Equal(s.T(), first.Signature, second.Signature)
}

func (s *ClaimTestSuite) TestAuthorizeResolvesStoreIdToo() {
	contractId := int64(13)
	campaign := s.seedCampaign(&contractId)
	s.seedParticipation(campaign.Id, false)

	out := s.service.Authorize(s.ctx, AuthorizeRequest{
		CampaignId:    campaign.Id,
		WalletAddress: testWallet,
		Amount:        decimal.NewFromInt(1),
	})
	assert.True(s.T(), out.Success, out.Message)
}

func (s *ClaimTestSuite) TestAuthorizeNotQualified() {
	contractId := int64(17)
	campaign := s.seedCampaign(&contractId)

	out := s.service.Authorize(s.ctx, AuthorizeRequest{
		CampaignId:    campaign.FirebaseId,
		WalletAddress: testWallet,
		Amount:        decimal.NewFromInt(1),
	})
	assert.False(s.T(), out.Success)
	assert.Equal(s.T(), ReasonNotQualified, out.Reason)
}

func (s *ClaimTestSuite) TestAuthorizeAlreadyClaimed() {
	contractId := int64(19)
	campaign := s.seedCampaign(&contractId)
	s.seedParticipation(campaign.Id, true)

	out := s.service.Authorize(s.ctx, AuthorizeRequest{
		CampaignId:    campaign.FirebaseId,
		WalletAddress: testWallet,
		Amount:        decimal.NewFromInt(1),
	})
	assert.False(s.T(), out.Success)
	assert.Equal(s.T(), ReasonAlreadyClaimed, out.Reason)
}

func (s *ClaimTestSuite) TestAuthorizeInvalidContractId() {
	campaign := s.seedCampaign(nil)
	s.seedParticipation(campaign.Id, false)

	out := s.service.Authorize(s.ctx, AuthorizeRequest{
		CampaignId:    campaign.FirebaseId,
		WalletAddress: testWallet,
		Amount:        decimal.NewFromInt(1),
	})
	assert.False(s.T(), out.Success)
	assert.Equal(s.T(), ReasonInvalidContractId, out.Reason)
}

func (s *ClaimTestSuite) TestAuthorizeCampaignNotFound() {
	out := s.service.Authorize(s.ctx, AuthorizeRequest{
		CampaignId:    "does-not-exist",
		WalletAddress: testWallet,
		Amount:        decimal.NewFromInt(1),
	})
	assert.False(s.T(), out.Success)
	assert.Equal(s.T(), ReasonCampaignNotFound, out.Reason)
}

func (s *ClaimTestSuite) TestAuthorizeRejectsBadInput() {
	out := s.service.Authorize(s.ctx, AuthorizeRequest{
		CampaignId:    "irrelevant",
		WalletAddress: testWallet,
		Amount:        decimal.Zero,
	})
	assert.Equal(s.T(), ReasonInvalidAmount, out.Reason)

	out = s.service.Authorize(s.ctx, AuthorizeRequest{
		CampaignId:    "irrelevant",
		WalletAddress: "not-an-address",
		Amount:        decimal.NewFromInt(1),
	})
	assert.Equal(s.T(), ReasonNotQualified, out.Reason)
}
