package sync

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/gate33/learn2earn/src/distributor"
	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/model"
)

// fakeChain serves canned per-contract states without touching a node
type fakeChain struct {
	states map[int64]distributor.StateResult
}

func (self *fakeChain) ReadOnChainState(ctx context.Context, network string, contractId int64) distributor.StateResult {
	out, ok := self.states[contractId]
	if !ok {
		return distributor.StateResult{Message: "no such campaign"}
	}
	return out
}

func TestDeriveStatus(t *testing.T) {
	now := time.Now().UTC()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name     string
		previous string
		state    distributor.OnChainState
		expected string
	}{
		{
			"active stays active",
			model.CampaignStatusActive,
			distributor.OnChainState{EndTime: future, MaxParticipants: 10, ParticipantCount: 3, Active: true},
			model.CampaignStatusActive,
		},
		{
			"end time passed completes",
			model.CampaignStatusActive,
			distributor.OnChainState{EndTime: past, MaxParticipants: 10, ParticipantCount: 3, Active: true},
			model.CampaignStatusCompleted,
		},
		{
			"cap reached completes",
			model.CampaignStatusActive,
			distributor.OnChainState{EndTime: future, MaxParticipants: 10, ParticipantCount: 10, Active: true},
			model.CampaignStatusCompleted,
		},
		{
			"inactive pauses",
			model.CampaignStatusActive,
			distributor.OnChainState{EndTime: future, MaxParticipants: 10, ParticipantCount: 3, Active: false},
			model.CampaignStatusPaused,
		},
		{
			"paused reactivates",
			model.CampaignStatusPaused,
			distributor.OnChainState{EndTime: future, MaxParticipants: 10, ParticipantCount: 3, Active: true},
			model.CampaignStatusActive,
		},
		{
			"completed is terminal",
			model.CampaignStatusCompleted,
			distributor.OnChainState{EndTime: future, MaxParticipants: 10, ParticipantCount: 3, Active: true},
			model.CampaignStatusCompleted,
		},
		{
			"end time wins over inactive",
			model.CampaignStatusPaused,
			distributor.OnChainState{EndTime: past, Active: false},
			model.CampaignStatusCompleted,
		},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, deriveStatus(c.previous, &c.state, now), c.name)
	}
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

type EngineTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	db     *gorm.DB
	chain  *fakeChain
	engine *Engine
}

func (s *EngineTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	var err error
	s.db, err = gorm.Open(
		sqlite.Open("file:"+xid.New().String()+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: gorm_logger.Default.LogMode(gorm_logger.Silent)},
	)
	assert.Nil(s.T(), err)
	assert.Nil(s.T(), s.db.AutoMigrate(&model.Campaign{}))

	s.chain = &fakeChain{states: make(map[int64]distributor.StateResult)}
	s.engine = NewEngine(config.Default()).
		WithDb(s.db).
		WithChainReader(s.chain)
}

func (s *EngineTestSuite) TearDownSuite() {
	s.engine.Stop()
	s.cancel()
}

func (s *EngineTestSuite) seedCampaign(status string, contractId *int64) (campaign model.Campaign) {
	campaign = model.Campaign{
		Id:         xid.New().String(),
		FirebaseId: xid.New().String(),
		ContractId: contractId,
		Network:    "polygon",
		Status:     status,
	}
	err := s.db.Create(&campaign).Error
	assert.Nil(s.T(), err)
	return
}

func (s *EngineTestSuite) setState(contractId int64, state distributor.OnChainState) {
	s.chain.states[contractId] = distributor.StateResult{Success: true, State: state}
}

func (s *EngineTestSuite) TestSyncOneUpdatesProjection() {
	contractId := int64(1)
	campaign := s.seedCampaign(model.CampaignStatusActive, &contractId)
	s.setState(contractId, distributor.OnChainState{
		EndTime:          time.Now().Add(time.Hour).UTC(),
		MaxParticipants:  10,
		ParticipantCount: 4,
		Active:           true,
	})

	out := s.engine.SyncOne(s.ctx, &campaign)
	assert.True(s.T(), out.Success, out.Message)
	assert.Equal(s.T(), model.CampaignStatusActive, out.NewStatus)
	assert.Equal(s.T(), int64(4), out.ParticipantCount)

	var reloaded model.Campaign
	assert.Nil(s.T(), s.db.First(&reloaded, "id = ?", campaign.Id).Error)
	assert.Equal(s.T(), int64(4), reloaded.TotalParticipants)
	assert.True(s.T(), reloaded.Active)
	assert.NotNil(s.T(), reloaded.LastSyncedAt)
	// No transition happened
	assert.Nil(s.T(), reloaded.StatusChangedAt)
}

func (s *EngineTestSuite) TestSyncOneIsIdempotent() {
	contractId := int64(2)
	campaign := s.seedCampaign(model.CampaignStatusActive, &contractId)
	s.setState(contractId, distributor.OnChainState{
		EndTime:          time.Now().Add(-time.Hour).UTC(),
		MaxParticipants:  10,
		ParticipantCount: 4,
		Active:           true,
	})

	first := s.engine.SyncOne(s.ctx, &campaign)
	assert.True(s.T(), first.Success)
	assert.Equal(s.T(), model.CampaignStatusActive, first.PreviousStatus)
	assert.Equal(s.T(), model.CampaignStatusCompleted, first.NewStatus)

	var reloaded model.Campaign
	assert.Nil(s.T(), s.db.First(&reloaded, "id = ?", campaign.Id).Error)
	assert.NotNil(s.T(), reloaded.StatusChangedAt)
	changedAt := *reloaded.StatusChangedAt

	second := s.engine.SyncOne(s.ctx, &reloaded)
	assert.True(s.T(), second.Success)
	assert.Equal(s.T(), model.CampaignStatusCompleted, second.PreviousStatus)
	assert.Equal(s.T(), model.CampaignStatusCompleted, second.NewStatus)

	// The transition timestamp is not restamped
	assert.Nil(s.T(), s.db.First(&reloaded, "id = ?", campaign.Id).Error)
	assert.Equal(s.T(), changedAt, *reloaded.StatusChangedAt)
}

func (s *EngineTestSuite) TestCompletedNeverReverts() {
	contractId := int64(3)
	campaign := s.seedCampaign(model.CampaignStatusCompleted, &contractId)
	s.setState(contractId, distributor.OnChainState{
		EndTime:          time.Now().Add(time.Hour).UTC(),
		MaxParticipants:  10,
		ParticipantCount: 1,
		Active:           true,
	})

	out := s.engine.SyncOne(s.ctx, &campaign)
	assert.True(s.T(), out.Success)
	assert.Equal(s.T(), model.CampaignStatusCompleted, out.NewStatus)
}

func (s *EngineTestSuite) TestSyncOneSkipsUnfunded() {
	campaign := s.seedCampaign(model.CampaignStatusActive, nil)

	out := s.engine.SyncOne(s.ctx, &campaign)
	assert.False(s.T(), out.Success)
	assert.NotEmpty(s.T(), out.Message)
	assert.Equal(s.T(), model.CampaignStatusActive, out.NewStatus)
}

func (s *EngineTestSuite) TestSyncAllIsolatesFailures() {
	healthyId := int64(40)
	brokenId := int64(41)
	healthy := s.seedCampaign(model.CampaignStatusActive, &healthyId)
	broken := s.seedCampaign(model.CampaignStatusActive, &brokenId)

	s.setState(healthyId, distributor.OnChainState{
		EndTime:          time.Now().Add(time.Hour).UTC(),
		MaxParticipants:  10,
		ParticipantCount: 2,
		Active:           true,
	})
	// brokenId has no canned state, the fake reports a read failure

	out, err := s.engine.SyncAll(s.ctx)
	assert.Nil(s.T(), err)
	assert.GreaterOrEqual(s.T(), out.Total, 2)
	assert.True(s.T(), out.Results[healthy.Id].Success)
	assert.False(s.T(), out.Results[broken.Id].Success)
	assert.GreaterOrEqual(s.T(), out.Failed, 1)
}

func (s *EngineTestSuite) TestSyncOneById() {
	contractId := int64(5)
	campaign := s.seedCampaign(model.CampaignStatusPaused, &contractId)
	s.setState(contractId, distributor.OnChainState{
		EndTime:          time.Now().Add(time.Hour).UTC(),
		MaxParticipants:  10,
		ParticipantCount: 2,
		Active:           true,
	})

	out, err := s.engine.SyncOneById(s.ctx, campaign.FirebaseId)
	assert.Nil(s.T(), err)
	assert.True(s.T(), out.Success)
	assert.Equal(s.T(), model.CampaignStatusActive, out.NewStatus)

	_, err = s.engine.SyncOneById(s.ctx, "missing")
	assert.NotNil(s.T(), err)
}
