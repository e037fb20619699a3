package learn2earn

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gate33/learn2earn/src/distributor"
	"github.com/gate33/learn2earn/src/registry"
	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/logger"
	"github.com/gate33/learn2earn/src/utils/model"
	"github.com/gate33/learn2earn/src/utils/monitoring"
)

// Manager owns the off-chain half of the campaign lifecycle: drafts, the
// funding handshake with the distributor contract and manual status
// transitions. Chain-derived fields are left to the syncer after funding.
type Manager struct {
	Config *config.Config
	Log    *logrus.Entry

	db          *gorm.DB
	distributor *distributor.Client
	registry    *registry.Registry
	monitor     monitoring.Monitor
}

func NewManager(config *config.Config) (self *Manager) {
	self = new(Manager)
	self.Config = config
	self.Log = logger.NewSublogger("manager")
	return
}

func (self *Manager) WithDb(db *gorm.DB) *Manager {
	self.db = db
	return self
}

func (self *Manager) WithDistributor(client *distributor.Client) *Manager {
	self.distributor = client
	return self
}

func (self *Manager) WithRegistry(registry *registry.Registry) *Manager {
	self.registry = registry
	return self
}

func (self *Manager) WithMonitor(monitor monitoring.Monitor) *Manager {
	self.monitor = monitor
	return self
}

// SaveDraft upserts the single pre-funding draft a company is allowed to keep
func (self *Manager) SaveDraft(ctx context.Context, companyId string, data json.RawMessage) (id string, err error) {
	var draft model.Draft
	err = self.db.WithContext(ctx).
		Where("company_id = ? AND deleted = ?", companyId, false).
		First(&draft).
		Error
	switch {
	case err == nil:
		err = draft.Data.Set([]byte(data))
		if err != nil {
			return
		}
		err = self.db.WithContext(ctx).
			Model(&model.Draft{}).
			Where("id = ?", draft.Id).
			Update("data", draft.Data).
			Error
		id = draft.Id
	case errors.Is(err, gorm.ErrRecordNotFound):
		draft = model.Draft{
			Id:        xid.New().String(),
			CompanyId: companyId,
		}
		err = draft.Data.Set([]byte(data))
		if err != nil {
			return
		}
		err = self.db.WithContext(ctx).Create(&draft).Error
		id = draft.Id
	}
	return
}

func (self *Manager) LoadDraft(ctx context.Context, companyId string) (draft *model.Draft, err error) {
	draft = new(model.Draft)
	err = self.db.WithContext(ctx).
		Where("company_id = ? AND deleted = ?", companyId, false).
		First(draft).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDraftNotFound
	}
	return
}

func (self *Manager) DeleteDraft(ctx context.Context, companyId string) (err error) {
	result := self.db.WithContext(ctx).
		Model(&model.Draft{}).
		Where("company_id = ? AND deleted = ?", companyId, false).
		Update("deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDraftNotFound
	}
	return
}

// Fund takes a campaign from authoring to active. The deposit is grossed up
// for the platform fee, approved if needed and sent to createLearn2Earn, and
// the campaign document is only written once the chain confirmed the deposit.
// On any failure the campaign simply stays in draft.
func (self *Manager) Fund(ctx context.Context, req FundRequest) (out FundResult) {
	err := validateFundRequest(&req)
	if err != nil {
		out.FailureKind = FundFailureValidation
		out.Message = err.Error()
		return
	}

	// A fee of 100 percent or more would consume the whole deposit
	if self.Config.Distributor.FeePercent >= 100 {
		out.FailureKind = FundFailureValidation
		out.Message = "distributor fee percent must be below 100"
		return
	}

	_, found, err := self.registry.Resolve(ctx, req.Network)
	if err != nil {
		out.FailureKind = FundFailureChain
		out.Message = err.Error()
		return
	}
	if !found {
		out.NotSupported = true
		out.FailureKind = FundFailureNotSupported
		out.Message = "no distributor contract configured for network " + req.Network
		return
	}

	maxParticipants := DeriveMaxParticipants(req.TokenAmount, req.TokenPerParticipant)
	deposit := AdjustForFee(req.TokenAmount, self.Config.Distributor.FeePercent)

	start := time.Now().UTC()
	if req.StartDate != nil {
		start = time.Unix(*req.StartDate, 0).UTC()
	}
	end := start.Add(model.CampaignDuration)

	// Balance preflight gives the caller a concrete shortfall instead of a
	// revert string
	balance, err := self.distributor.BalanceOf(ctx, req.Network, req.TokenAddress)
	if err != nil {
		self.countFundingFailure()
		out.FailureKind = FundFailureChain
		out.Message = err.Error()
		return
	}
	if balance.LessThan(deposit) {
		self.countFundingFailure()
		shortfall := deposit.Sub(balance)
		out.FailureKind = FundFailureBalance
		out.Shortfall = &shortfall
		out.Message = "operator balance does not cover the fee-adjusted deposit"
		return
	}

	approval := self.distributor.CheckApproval(ctx, req.Network, req.TokenAddress)
	if approval.NotSupported {
		out.NotSupported = true
		out.FailureKind = FundFailureNotSupported
		out.Message = approval.Message
		return
	}
	if !approval.Success {
		self.countFundingFailure()
		out.FailureKind = FundFailureChain
		out.Message = approval.Message
		return
	}
	if !approval.Approved {
		res := self.distributor.Approve(ctx, req.Network, req.TokenAddress)
		if !res.Success {
			self.countFundingFailure()
			out.FailureKind = FundFailureAllowance
			out.Message = res.Message
			return
		}
		self.Log.WithField("network", req.Network).WithField("token", req.TokenAddress).
			Info("Approved distributor token allowance")
	}

	firebaseId := xid.New().String()
	create := self.distributor.CreateCampaign(
		ctx,
		req.Network,
		firebaseId,
		req.TokenAddress,
		deposit,
		distributor.ToUnixSeconds(start),
		distributor.ToUnixSeconds(end),
		maxParticipants,
	)
	if create.NotSupported {
		out.NotSupported = true
		out.FailureKind = FundFailureNotSupported
		out.Message = create.Message
		return
	}
	if !create.Success {
		self.countFundingFailure()
		out.FailureKind = classifyFundingError(create.Message)
		out.Message = create.Message
		return
	}

	tasks, err := model.EncodeTasks(req.Tasks)
	if err != nil {
		out.FailureKind = FundFailureStore
		out.Message = err.Error()
		return
	}

	now := time.Now().UTC()
	campaign := model.Campaign{
		Id:                  xid.New().String(),
		FirebaseId:          firebaseId,
		ContractId:          create.ContractId,
		CompanyId:           req.CompanyId,
		Title:               strings.TrimSpace(req.Title),
		Description:         req.Description,
		TokenSymbol:         req.TokenSymbol,
		TokenAddress:        req.TokenAddress,
		TokenAmount:         req.TokenAmount,
		TokenPerParticipant: req.TokenPerParticipant,
		MaxParticipants:     maxParticipants,
		Network:             req.Network,
		StartDate:           start,
		EndDate:             end,
		Status:              model.CampaignStatusActive,
		Tasks:               tasks,
		TransactionHash:     create.TransactionHash,
		Active:              true,
		StatusChangedAt:     &now,
	}

	err = self.db.WithContext(ctx).Create(&campaign).Error
	if err != nil {
		// The deposit already left the operator wallet, this needs a human
		self.countFundingFailure()
		self.Log.WithError(err).
			WithField("firebase_id", firebaseId).
			WithField("tx", create.TransactionHash).
			Error("Campaign funded on chain but could not be persisted")
		out.FailureKind = FundFailureStore
		out.Message = "campaign funded in transaction " + create.TransactionHash + " but could not be saved: " + err.Error()
		return
	}

	if req.DraftId != "" {
		// Best effort, a stale draft is harmless
		err = self.db.WithContext(ctx).
			Model(&model.Draft{}).
			Where("id = ?", req.DraftId).
			Update("deleted", true).
			Error
		if err != nil {
			self.Log.WithError(err).WithField("draft_id", req.DraftId).Warn("Could not retire draft")
		}
	}

	if self.monitor != nil {
		self.monitor.GetReport().Learn2Earn.State.CampaignsFunded.Inc()
	}

	out.Success = true
	out.CampaignId = campaign.Id
	out.FirebaseId = firebaseId
	out.ContractId = create.ContractId
	out.TransactionHash = create.TransactionHash
	out.DepositAmount = deposit
	out.MaxParticipants = maxParticipants
	return
}

// Manual overrides available to operators. Completed is terminal, the chain
// sync can only ever confirm it.
var allowedTransitions = map[string]map[string]bool{
	model.CampaignStatusActive: {
		model.CampaignStatusPaused:    true,
		model.CampaignStatusCompleted: true,
	},
	model.CampaignStatusPaused: {
		model.CampaignStatusActive:    true,
		model.CampaignStatusCompleted: true,
	},
}

func (self *Manager) Transition(ctx context.Context, campaignId, companyId, to string) (err error) {
	var campaign model.Campaign
	err = self.db.WithContext(ctx).
		Where("id = ? AND deleted = ?", campaignId, false).
		First(&campaign).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCampaignNotFound
	}
	if err != nil {
		return
	}

	if companyId != "" && campaign.CompanyId != companyId {
		return ErrCampaignNotOwned
	}
	if !allowedTransitions[campaign.Status][to] {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", campaign.Status, to)
	}

	now := time.Now().UTC()
	return self.db.WithContext(ctx).
		Model(&model.Campaign{}).
		Where("id = ?", campaign.Id).
		Updates(map[string]interface{}{
			"status":            to,
			"status_changed_at": now,
		}).
		Error
}

func (self *Manager) GetCampaign(ctx context.Context, id string) (campaign *model.Campaign, err error) {
	campaign = new(model.Campaign)
	err = self.db.WithContext(ctx).
		Where("(id = ? OR firebase_id = ?) AND deleted = ?", id, id, false).
		First(campaign).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCampaignNotFound
	}
	return
}

func (self *Manager) ListCampaigns(ctx context.Context, companyId string) (campaigns []model.Campaign, err error) {
	query := self.db.WithContext(ctx).
		Where("deleted = ?", false).
		Order("created_at DESC")
	if companyId != "" {
		query = query.Where("company_id = ?", companyId)
	}
	err = query.Find(&campaigns).Error
	return
}

func (self *Manager) countFundingFailure() {
	if self.monitor != nil {
		self.monitor.GetReport().Learn2Earn.Errors.FundingFailures.Inc()
	}
}

func validateFundRequest(req *FundRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return ErrTitleRequired
	}
	if req.TokenAddress == "" {
		return ErrTokenAddressRequired
	}
	if !req.TokenAmount.IsPositive() || !req.TokenPerParticipant.IsPositive() {
		return ErrInvalidAmount
	}
	if req.TokenPerParticipant.GreaterThan(req.TokenAmount) {
		return ErrRewardExceedsPool
	}
	return nil
}

// classifyFundingError maps node revert strings onto stable failure kinds
func classifyFundingError(message string) string {
	lowered := strings.ToLower(message)
	switch {
	case strings.Contains(lowered, "exceeds balance"),
		strings.Contains(lowered, "insufficient balance"):
		return FundFailureBalance
	case strings.Contains(lowered, "insufficient allowance"),
		strings.Contains(lowered, "exceeds allowance"):
		return FundFailureAllowance
	case strings.Contains(lowered, "insufficient funds"):
		return FundFailureFeeCoverage
	case strings.Contains(lowered, "reverted"):
		return FundFailureReverted
	default:
		return FundFailureChain
	}
}
