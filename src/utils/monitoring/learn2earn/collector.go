package monitor_learn2earn

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Errors
	SyncerCampaignFailures  *prometheus.Desc
	SyncerChainReadFailures *prometheus.Desc
	SyncerStoreFailures     *prometheus.Desc
	RegistryLookupMisses    *prometheus.Desc
	ClaimSignatureFailures  *prometheus.Desc
	ClaimSubmissionFailures *prometheus.Desc
	FundingFailures         *prometheus.Desc
	ParticipationFailures   *prometheus.Desc
	GatewayDbErrors         *prometheus.Desc

	// State
	SyncerCampaignsSynced           *prometheus.Desc
	SyncerStatusTransitions         *prometheus.Desc
	SyncerLastRunTotal              *prometheus.Desc
	SyncerLastRunFailed             *prometheus.Desc
	AverageCampaignsSyncedPerMinute *prometheus.Desc
	ClaimSignaturesIssued           *prometheus.Desc
	ClaimsSubmitted                 *prometheus.Desc
	ParticipationsRegistered        *prometheus.Desc
	CampaignsFunded                 *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, nil),

		// Errors
		SyncerCampaignFailures:  prometheus.NewDesc("syncer_campaign_failures", "", nil, nil),
		SyncerChainReadFailures: prometheus.NewDesc("syncer_chain_read_failures", "", nil, nil),
		SyncerStoreFailures:     prometheus.NewDesc("syncer_store_failures", "", nil, nil),
		RegistryLookupMisses:    prometheus.NewDesc("registry_lookup_misses", "", nil, nil),
		ClaimSignatureFailures:  prometheus.NewDesc("claim_signature_failures", "", nil, nil),
		ClaimSubmissionFailures: prometheus.NewDesc("claim_submission_failures", "", nil, nil),
		FundingFailures:         prometheus.NewDesc("funding_failures", "", nil, nil),
		ParticipationFailures:   prometheus.NewDesc("participation_failures", "", nil, nil),
		GatewayDbErrors:         prometheus.NewDesc("gateway_db_errors", "", nil, nil),

		// State
		SyncerCampaignsSynced:           prometheus.NewDesc("syncer_campaigns_synced", "", nil, nil),
		SyncerStatusTransitions:         prometheus.NewDesc("syncer_status_transitions", "", nil, nil),
		SyncerLastRunTotal:              prometheus.NewDesc("syncer_last_run_total", "", nil, nil),
		SyncerLastRunFailed:             prometheus.NewDesc("syncer_last_run_failed", "", nil, nil),
		AverageCampaignsSyncedPerMinute: prometheus.NewDesc("average_campaigns_synced_per_minute", "", nil, nil),
		ClaimSignaturesIssued:           prometheus.NewDesc("claim_signatures_issued", "", nil, nil),
		ClaimsSubmitted:                 prometheus.NewDesc("claims_submitted", "", nil, nil),
		ParticipationsRegistered:        prometheus.NewDesc("participations_registered", "", nil, nil),
		CampaignsFunded:                 prometheus.NewDesc("campaigns_funded", "", nil, nil),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Run
	ch <- self.UpForSeconds

	// Errors
	ch <- self.SyncerCampaignFailures
	ch <- self.SyncerChainReadFailures
	ch <- self.SyncerStoreFailures
	ch <- self.RegistryLookupMisses
	ch <- self.ClaimSignatureFailures
	ch <- self.ClaimSubmissionFailures
	ch <- self.FundingFailures
	ch <- self.ParticipationFailures
	ch <- self.GatewayDbErrors

	// State
	ch <- self.SyncerCampaignsSynced
	ch <- self.SyncerStatusTransitions
	ch <- self.SyncerLastRunTotal
	ch <- self.SyncerLastRunFailed
	ch <- self.AverageCampaignsSyncedPerMinute
	ch <- self.ClaimSignaturesIssued
	ch <- self.ClaimsSubmitted
	ch <- self.ParticipationsRegistered
	ch <- self.CampaignsFunded
}

func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	run := self.monitor.Report.Run
	l2e := self.monitor.Report.Learn2Earn

	uptime := time.Now().Unix() - run.State.StartTimestamp.Load()
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.CounterValue, float64(uptime))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.SyncerCampaignFailures, prometheus.CounterValue, float64(l2e.Errors.SyncerCampaignFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncerChainReadFailures, prometheus.CounterValue, float64(l2e.Errors.SyncerChainReadFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncerStoreFailures, prometheus.CounterValue, float64(l2e.Errors.SyncerStoreFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.RegistryLookupMisses, prometheus.CounterValue, float64(l2e.Errors.RegistryLookupMisses.Load()))
	ch <- prometheus.MustNewConstMetric(self.ClaimSignatureFailures, prometheus.CounterValue, float64(l2e.Errors.ClaimSignatureFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ClaimSubmissionFailures, prometheus.CounterValue, float64(l2e.Errors.ClaimSubmissionFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.FundingFailures, prometheus.CounterValue, float64(l2e.Errors.FundingFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ParticipationFailures, prometheus.CounterValue, float64(l2e.Errors.ParticipationFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.GatewayDbErrors, prometheus.CounterValue, float64(l2e.Errors.GatewayDbErrors.Load()))

	// State
	ch <- prometheus.MustNewConstMetric(self.SyncerCampaignsSynced, prometheus.CounterValue, float64(l2e.State.SyncerCampaignsSynced.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncerStatusTransitions, prometheus.CounterValue, float64(l2e.State.SyncerStatusTransitions.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncerLastRunTotal, prometheus.GaugeValue, float64(l2e.State.SyncerLastRunTotal.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncerLastRunFailed, prometheus.GaugeValue, float64(l2e.State.SyncerLastRunFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.AverageCampaignsSyncedPerMinute, prometheus.GaugeValue, l2e.State.AverageCampaignsSyncedPerMinute.Load())
	ch <- prometheus.MustNewConstMetric(self.ClaimSignaturesIssued, prometheus.CounterValue, float64(l2e.State.ClaimSignaturesIssued.Load()))
	ch <- prometheus.MustNewConstMetric(self.ClaimsSubmitted, prometheus.CounterValue, float64(l2e.State.ClaimsSubmitted.Load()))
	ch <- prometheus.MustNewConstMetric(self.ParticipationsRegistered, prometheus.CounterValue, float64(l2e.State.ParticipationsRegistered.Load()))
	ch <- prometheus.MustNewConstMetric(self.CampaignsFunded, prometheus.CounterValue, float64(l2e.State.CampaignsFunded.Load()))
}
