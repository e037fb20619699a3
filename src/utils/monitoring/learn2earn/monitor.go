package monitor_learn2earn

import (
	"math"
	"time"

	"github.com/gate33/learn2earn/src/utils/monitoring/report"
	"github.com/gate33/learn2earn/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Sync pace
	CampaignsSynced *deque.Deque[int64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:        &report.RunReport{},
		Learn2Earn: &report.Learn2EarnReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorSyncPace)
	return
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize

	self.CampaignsSynced = deque.New[int64](self.historySize)

	return self
}

func (self *Monitor) Clear() {
	self.CampaignsSynced.Clear()
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Measure reconciliation pace
func (self *Monitor) monitorSyncPace() (err error) {
	loaded := self.Report.Learn2Earn.State.SyncerCampaignsSynced.Load()
	if loaded == 0 {
		// Neglect the first 0
		return
	}

	self.CampaignsSynced.PushBack(loaded)
	if self.CampaignsSynced.Len() > self.historySize {
		self.CampaignsSynced.PopFront()
	}
	value := float64(self.CampaignsSynced.Back()-self.CampaignsSynced.Front()) / float64(self.CampaignsSynced.Len())

	self.Report.Learn2Earn.State.AverageCampaignsSyncedPerMinute.Store(round(value))
	return
}
