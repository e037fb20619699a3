package sync

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"gorm.io/gorm"

	"github.com/gate33/learn2earn/src/distributor"
	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/logger"
	"github.com/gate33/learn2earn/src/utils/model"
	"github.com/gate33/learn2earn/src/utils/monitoring"
	"github.com/gate33/learn2earn/src/utils/task"
)

// ChainReader is the slice of the distributor client the engine needs.
// Tests substitute a fake.
type ChainReader interface {
	ReadOnChainState(ctx context.Context, network string, contractId int64) distributor.StateResult
}

// Engine reconciles stored campaigns with the distributor contract.
// The chain is authoritative, the store is the projection.
type Engine struct {
	*task.Task
	Log *logrus.Entry

	db      *gorm.DB
	chain   ChainReader
	monitor monitoring.Monitor

	// Caps concurrent per-campaign chain reads across one SyncAll run
	limiter ratelimit.Limiter
}

func NewEngine(config *config.Config) (self *Engine) {
	self = new(Engine)
	self.Log = logger.NewSublogger("sync-engine")

	self.limiter = ratelimit.New(config.Syncer.ChainReadsPerSecond)

	self.Task = task.NewTask(config, "sync-engine").
		WithWorkerPool(config.Syncer.NumWorkers, config.Syncer.WorkerQueueSize).
		WithSubtaskFunc(self.waitForStop)

	return
}

// Keeps the worker pool open until the task is told to stop
func (self *Engine) waitForStop() (err error) {
	<-self.StopChannel
	return
}

func (self *Engine) WithDb(db *gorm.DB) *Engine {
	self.db = db
	return self
}

func (self *Engine) WithChainReader(chain ChainReader) *Engine {
	self.chain = chain
	return self
}

func (self *Engine) WithMonitor(monitor monitoring.Monitor) *Engine {
	self.monitor = monitor
	return self
}

// deriveStatus folds the on-chain snapshot into a lifecycle status.
// A stored completed is terminal and never reverts, regardless of what the
// chain reports afterwards.
func deriveStatus(previous string, state *distributor.OnChainState, now time.Time) string {
	if previous == model.CampaignStatusCompleted {
		return model.CampaignStatusCompleted
	}
	if !state.EndTime.IsZero() && state.EndTime.Before(now) {
		return model.CampaignStatusCompleted
	}
	if state.MaxParticipants > 0 && state.ParticipantCount >= state.MaxParticipants {
		return model.CampaignStatusCompleted
	}
	if !state.Active {
		return model.CampaignStatusPaused
	}
	return model.CampaignStatusActive
}

// SyncOne refreshes a single campaign from the chain. A campaign that cannot
// be synced (missing network, no contract id, unreachable chain) reports why
// and changes nothing.
func (self *Engine) SyncOne(ctx context.Context, campaign *model.Campaign) (out SyncResult) {
	out.CampaignId = campaign.Id
	out.PreviousStatus = campaign.Status
	out.NewStatus = campaign.Status

	switch {
	case campaign.Network == "":
		out.Message = "campaign has no network set"
		return
	case campaign.FirebaseId == "" && campaign.ContractId == nil:
		out.Message = "campaign was never funded on chain"
		return
	case campaign.ContractId == nil:
		out.Message = "campaign has no contract id, creation event was not recorded"
		return
	}

	self.limiter.Take()
	res := self.chain.ReadOnChainState(ctx, campaign.Network, *campaign.ContractId)
	if !res.Success {
		if self.monitor != nil {
			self.monitor.GetReport().Learn2Earn.Errors.SyncerChainReadFailures.Inc()
		}
		out.Message = res.Message
		if res.NotSupported {
			out.Message = "network " + campaign.Network + " is not supported"
		}
		return
	}

	now := time.Now().UTC()
	status := deriveStatus(campaign.Status, &res.State, now)

	updates := map[string]interface{}{
		"total_participants": res.State.ParticipantCount,
		"active":             res.State.Active,
		"last_synced_at":     now,
	}
	// Chain values win over whatever funding recorded
	if res.State.TokenAddress != "" {
		updates["token_address"] = res.State.TokenAddress
	}
	if res.State.TokenAmount.IsPositive() {
		updates["token_amount"] = res.State.TokenAmount
	}
	if status != campaign.Status {
		updates["status"] = status
		updates["status_changed_at"] = now
	}

	err := self.db.WithContext(ctx).
		Model(&model.Campaign{}).
		Where("id = ?", campaign.Id).
		Updates(updates).
		Error
	if err != nil {
		if self.monitor != nil {
			self.monitor.GetReport().Learn2Earn.Errors.SyncerStoreFailures.Inc()
		}
		out.Message = err.Error()
		return
	}

	if status != campaign.Status {
		self.Log.WithField("campaign", campaign.Id).
			WithField("from", campaign.Status).
			WithField("to", status).
			Info("Campaign status changed")
		if self.monitor != nil {
			self.monitor.GetReport().Learn2Earn.State.SyncerStatusTransitions.Inc()
		}
	}

	if self.monitor != nil {
		self.monitor.GetReport().Learn2Earn.State.SyncerCampaignsSynced.Inc()
	}

	out.Success = true
	out.NewStatus = status
	out.ParticipantCount = res.State.ParticipantCount
	out.Active = res.State.Active
	return
}

// SyncOneById loads and syncs a single campaign by store id or external key
func (self *Engine) SyncOneById(ctx context.Context, id string) (out SyncResult, err error) {
	var campaign model.Campaign
	err = self.db.WithContext(ctx).
		Where("(id = ? OR firebase_id = ?) AND deleted = ?", id, id, false).
		First(&campaign).
		Error
	if err != nil {
		return
	}
	out = self.SyncOne(ctx, &campaign)
	return
}

// SyncAll reconciles every funded campaign. Completed campaigns are included,
// their participant counts still move while claims come in. Failures are
// isolated per campaign, one bad row never aborts the run.
func (self *Engine) SyncAll(ctx context.Context) (out SyncAllResult, err error) {
	var campaigns []model.Campaign
	err = self.db.WithContext(ctx).
		Where("status IN ? AND deleted = ?",
			[]string{
				model.CampaignStatusActive,
				model.CampaignStatusPaused,
				model.CampaignStatusCompleted,
			},
			false).
		Find(&campaigns).
		Error
	if err != nil {
		return
	}

	out.Total = len(campaigns)
	out.Results = make(map[string]SyncResult, len(campaigns))

	var mtx sync.Mutex
	var wg sync.WaitGroup

	for i := range campaigns {
		campaign := campaigns[i]
		wg.Add(1)

		err = self.SubmitToWorker(func() {
			defer wg.Done()
			result := self.SyncOne(ctx, &campaign)

			mtx.Lock()
			defer mtx.Unlock()
			out.Results[campaign.Id] = result
			if result.Success {
				out.Synchronized += 1
			} else {
				out.Failed += 1
				if self.monitor != nil {
					self.monitor.GetReport().Learn2Earn.Errors.SyncerCampaignFailures.Inc()
				}
			}
		})
		if err != nil {
			// Queue is saturated, count the campaign as failed and move on
			wg.Done()
			mtx.Lock()
			out.Results[campaign.Id] = SyncResult{
				CampaignId:     campaign.Id,
				PreviousStatus: campaign.Status,
				NewStatus:      campaign.Status,
				Message:        err.Error(),
			}
			out.Failed += 1
			mtx.Unlock()
			err = nil
		}
	}

	wg.Wait()

	if self.monitor != nil {
		self.monitor.GetReport().Learn2Earn.State.SyncerLastRunTotal.Store(int64(out.Total))
		self.monitor.GetReport().Learn2Earn.State.SyncerLastRunFailed.Store(int64(out.Failed))
	}

	self.Log.WithField("total", out.Total).
		WithField("synchronized", out.Synchronized).
		WithField("failed", out.Failed).
		Info("Reconciliation run finished")
	return
}
