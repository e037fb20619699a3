package sync

import (
	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"

	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/logger"
	"github.com/gate33/learn2earn/src/utils/task"
)

// Scheduler triggers full reconciliation runs server-side. Campaign state
// moves on a clock whether or not anyone has a dashboard open.
type Scheduler struct {
	*task.Task
	Log *logrus.Entry

	engine *Engine
	cron   *cron.Cron
}

func NewScheduler(config *config.Config) (self *Scheduler) {
	self = new(Scheduler)
	self.Log = logger.NewSublogger("sync-scheduler")
	self.cron = cron.New()

	self.Task = task.NewTask(config, "sync-scheduler").
		WithWorkerPool(1, 1).
		WithOnBeforeStart(self.schedule).
		WithOnStop(self.cron.Stop).
		WithSubtaskFunc(self.waitForStop)

	return
}

func (self *Scheduler) WithEngine(engine *Engine) *Scheduler {
	self.engine = engine
	return self
}

func (self *Scheduler) schedule() (err error) {
	err = self.cron.AddFunc(self.Config.Syncer.Schedule, self.runOnce)
	if err != nil {
		return
	}
	self.cron.Start()
	self.Log.WithField("schedule", self.Config.Syncer.Schedule).Info("Scheduled reconciliation runs")

	if self.Config.Syncer.SyncOnStartup {
		// Runs on the pool so startup is not held back by slow chains
		err = self.SubmitToWorker(self.runOnce)
	}
	return
}

// Keeps the task alive between cron firings
func (self *Scheduler) waitForStop() (err error) {
	<-self.StopChannel
	return
}

func (self *Scheduler) runOnce() {
	_, err := self.engine.SyncAll(self.Ctx)
	if err != nil {
		self.Log.WithError(err).Error("Scheduled reconciliation run failed")
	}
}
