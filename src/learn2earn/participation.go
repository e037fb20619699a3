package learn2earn

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/logger"
	"github.com/gate33/learn2earn/src/utils/model"
	"github.com/gate33/learn2earn/src/utils/monitoring"
)

// Tracker records which wallets completed which campaigns.
// One registration per wallet per campaign, addresses compared lower-cased.
type Tracker struct {
	Config *config.Config
	Log    *logrus.Entry

	db      *gorm.DB
	monitor monitoring.Monitor
}

func NewTracker(config *config.Config) (self *Tracker) {
	self = new(Tracker)
	self.Config = config
	self.Log = logger.NewSublogger("tracker")
	return
}

func (self *Tracker) WithDb(db *gorm.DB) *Tracker {
	self.db = db
	return self
}

func (self *Tracker) WithMonitor(monitor monitoring.Monitor) *Tracker {
	self.monitor = monitor
	return self
}

// Register stores a completion and bumps the campaign counter in the same
// transaction. The partial unique index on (campaign_id, wallet_address)
// backs up the duplicate check under concurrency.
func (self *Tracker) Register(ctx context.Context, req RegisterRequest) (participationId string, err error) {
	wallet := model.NormalizeWalletAddress(req.WalletAddress)

	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		var campaign model.Campaign
		err = tx.
			Where("(id = ? OR firebase_id = ?) AND deleted = ?", req.CampaignId, req.CampaignId, false).
			First(&campaign).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampaignNotFound
		}
		if err != nil {
			return
		}

		if campaign.Status != model.CampaignStatusActive {
			return ErrCampaignNotActive
		}
		if campaign.MaxParticipants > 0 && campaign.TotalParticipants >= campaign.MaxParticipants {
			return ErrCampaignFull
		}

		var existing int64
		err = tx.Model(&model.Participation{}).
			Where("campaign_id = ? AND wallet_address = ? AND deleted = ?", campaign.Id, wallet, false).
			Count(&existing).
			Error
		if err != nil {
			return
		}
		if existing > 0 {
			return ErrAlreadyParticipated
		}

		participation := model.Participation{
			Id:            xid.New().String(),
			CampaignId:    campaign.Id,
			WalletAddress: wallet,
			Status:        model.ParticipationStatusRegistered,
		}
		if len(req.Answers) > 0 {
			err = participation.Answers.Set([]byte(req.Answers))
			if err != nil {
				return
			}
		}

		err = tx.Create(&participation).Error
		if err != nil {
			return
		}
		participationId = participation.Id

		// The chain stays authoritative, this keeps the advisory cap check
		// close to reality between syncs
		return tx.Model(&model.Campaign{}).
			Where("id = ?", campaign.Id).
			Update("total_participants", gorm.Expr("total_participants + 1")).
			Error
	})

	if err != nil {
		if self.monitor != nil && !isRegistrationRejection(err) {
			self.monitor.GetReport().Learn2Earn.Errors.ParticipationFailures.Inc()
		}
		return "", err
	}

	if self.monitor != nil {
		self.monitor.GetReport().Learn2Earn.State.ParticipationsRegistered.Inc()
	}
	self.Log.WithField("campaign", req.CampaignId).WithField("wallet", wallet).
		Debug("Registered participation")
	return
}

// MarkClaimed flips the participation to claimed once the payout confirmed
func (self *Tracker) MarkClaimed(ctx context.Context, campaignId, walletAddress, transactionHash string) (err error) {
	wallet := model.NormalizeWalletAddress(walletAddress)

	result := self.db.WithContext(ctx).
		Model(&model.Participation{}).
		Where("campaign_id = ? AND wallet_address = ? AND deleted = ?", campaignId, wallet, false).
		Updates(map[string]interface{}{
			"claimed":          true,
			"status":           model.ParticipationStatusClaimed,
			"transaction_hash": transactionHash,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipationNotFound
	}
	return
}

// Rejections are expected outcomes, not tracker failures
func isRegistrationRejection(err error) bool {
	return errors.Is(err, ErrCampaignNotFound) ||
		errors.Is(err, ErrCampaignNotActive) ||
		errors.Is(err, ErrCampaignFull) ||
		errors.Is(err, ErrAlreadyParticipated)
}
