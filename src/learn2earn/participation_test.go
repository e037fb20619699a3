package learn2earn

import (
	"context"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/model"
)

func TestTrackerTestSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}

type TrackerTestSuite struct {
	suite.Suite
	ctx     context.Context
	cancel  context.CancelFunc
	db      *gorm.DB
	tracker *Tracker
}

func (s *TrackerTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	var err error
	s.db, err = newTestDb()
	assert.Nil(s.T(), err)

	s.tracker = NewTracker(config.Default()).WithDb(s.db)
}

func (s *TrackerTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *TrackerTestSuite) seedCampaign(status string, maxParticipants, totalParticipants int64) (campaign model.Campaign) {
	campaign = model.Campaign{
		Id:                xid.New().String(),
		FirebaseId:        xid.New().String(),
		Status:            status,
		MaxParticipants:   maxParticipants,
		TotalParticipants: totalParticipants,
	}
	err := s.db.Create(&campaign).Error
	assert.Nil(s.T(), err)
	return
}

func (s *TrackerTestSuite) TestRegisterIncrementsCounter() {
	campaign := s.seedCampaign(model.CampaignStatusActive, 10, 0)

	id, err := s.tracker.Register(s.ctx, RegisterRequest{
		CampaignId:    campaign.Id,
		WalletAddress: "0xAbCd000000000000000000000000000000000001",
		Answers:       []byte(`{"q1": 2}`),
	})
	assert.Nil(s.T(), err)
	assert.NotEmpty(s.T(), id)

	var reloaded model.Campaign
	err = s.db.First(&reloaded, "id = ?", campaign.Id).Error
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), int64(1), reloaded.TotalParticipants)

	var participation model.Participation
	err = s.db.First(&participation, "id = ?", id).Error
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), "0xabcd000000000000000000000000000000000001", participation.WalletAddress)
	assert.Equal(s.T(), model.ParticipationStatusRegistered, participation.Status)
}

func (s *TrackerTestSuite) TestRegisterWithoutAnswers() {
	campaign := s.seedCampaign(model.CampaignStatusActive, 10, 0)

	// Answers are optional, the unset column persists as NULL
	id, err := s.tracker.Register(s.ctx, RegisterRequest{
		CampaignId:    campaign.Id,
		WalletAddress: "0xAbCd000000000000000000000000000000000009",
	})
	assert.Nil(s.T(), err)
	assert.NotEmpty(s.T(), id)

	var participation model.Participation
	err = s.db.First(&participation, "id = ?", id).Error
	assert.Nil(s.T(), err)
	assert.Empty(s.T(), participation.Answers.Bytes)
}

func (s *TrackerTestSuite) TestRegisterIsCaseInsensitive() {
	campaign := s.seedCampaign(model.CampaignStatusActive, 10, 0)

	_, err := s.tracker.Register(s.ctx, RegisterRequest{
		CampaignId:    campaign.Id,
		WalletAddress: "0xABCD000000000000000000000000000000000002",
	})
	assert.Nil(s.T(), err)

	// Same wallet, different checksum casing
	_, err = s.tracker.Register(s.ctx, RegisterRequest{
		CampaignId:    campaign.Id,
		WalletAddress: "0xabcd000000000000000000000000000000000002",
	})
	assert.ErrorIs(s.T(), err, ErrAlreadyParticipated)
}

func (s *TrackerTestSuite) TestRegisterAcceptsFirebaseId() {
	campaign := s.seedCampaign(model.CampaignStatusActive, 10, 0)

	_, err := s.tracker.Register(s.ctx, RegisterRequest{
		CampaignId:    campaign.FirebaseId,
		WalletAddress: "0xabcd000000000000000000000000000000000003",
	})
	assert.Nil(s.T(), err)
}

func (s *TrackerTestSuite) TestRegisterRejections() {
	_, err := s.tracker.Register(s.ctx, RegisterRequest{
		CampaignId:    "missing",
		WalletAddress: "0xabcd000000000000000000000000000000000004",
	})
	assert.ErrorIs(s.T(), err, ErrCampaignNotFound)

	paused := s.seedCampaign(model.CampaignStatusPaused, 10, 0)
	_, err = s.tracker.Register(s.ctx, RegisterRequest{
		CampaignId:    paused.Id,
		WalletAddress: "0xabcd000000000000000000000000000000000004",
	})
	assert.ErrorIs(s.T(), err, ErrCampaignNotActive)

	full := s.seedCampaign(model.CampaignStatusActive, 2, 2)
	_, err = s.tracker.Register(s.ctx, RegisterRequest{
		CampaignId:    full.Id,
		WalletAddress: "0xabcd000000000000000000000000000000000004",
	})
	assert.ErrorIs(s.T(), err, ErrCampaignFull)
}

func (s *TrackerTestSuite) TestMarkClaimed() {
	campaign := s.seedCampaign(model.CampaignStatusActive, 10, 0)
	wallet := "0xABCD000000000000000000000000000000000005"

	_, err := s.tracker.Register(s.ctx, RegisterRequest{
		CampaignId:    campaign.Id,
		WalletAddress: wallet,
	})
	assert.Nil(s.T(), err)

	err = s.tracker.MarkClaimed(s.ctx, campaign.Id, wallet, "0xdeadbeef")
	assert.Nil(s.T(), err)

	var participation model.Participation
	err = s.db.First(&participation, "campaign_id = ? AND wallet_address = ?",
		campaign.Id, model.NormalizeWalletAddress(wallet)).Error
	assert.Nil(s.T(), err)
	assert.True(s.T(), participation.Claimed)
	assert.Equal(s.T(), model.ParticipationStatusClaimed, participation.Status)
	assert.Equal(s.T(), "0xdeadbeef", participation.TransactionHash)

	err = s.tracker.MarkClaimed(s.ctx, campaign.Id, "0x0000000000000000000000000000000000000009", "0x1")
	assert.ErrorIs(s.T(), err, ErrParticipationNotFound)
}
