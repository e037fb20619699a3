package report

import "go.uber.org/atomic"

type Learn2EarnErrors struct {
	SyncerCampaignFailures  atomic.Uint64 `json:"syncer_campaign_failures"`
	SyncerChainReadFailures atomic.Uint64 `json:"syncer_chain_read_failures"`
	SyncerStoreFailures     atomic.Uint64 `json:"syncer_store_failures"`
	RegistryLookupMisses    atomic.Uint64 `json:"registry_lookup_misses"`
	ClaimSignatureFailures  atomic.Uint64 `json:"claim_signature_failures"`
	ClaimSubmissionFailures atomic.Uint64 `json:"claim_submission_failures"`
	FundingFailures         atomic.Uint64 `json:"funding_failures"`
	ParticipationFailures   atomic.Uint64 `json:"participation_failures"`
	GatewayDbErrors         atomic.Uint64 `json:"gateway_db_errors"`
}

type Learn2EarnState struct {
	SyncerCampaignsSynced           atomic.Int64   `json:"syncer_campaigns_synced"`
	SyncerStatusTransitions         atomic.Int64   `json:"syncer_status_transitions"`
	SyncerLastRunTotal              atomic.Int64   `json:"syncer_last_run_total"`
	SyncerLastRunFailed             atomic.Int64   `json:"syncer_last_run_failed"`
	AverageCampaignsSyncedPerMinute atomic.Float64 `json:"average_campaigns_synced_per_minute"`
	ClaimSignaturesIssued           atomic.Int64   `json:"claim_signatures_issued"`
	ClaimsSubmitted                 atomic.Int64   `json:"claims_submitted"`
	ParticipationsRegistered        atomic.Int64   `json:"participations_registered"`
	CampaignsFunded                 atomic.Int64   `json:"campaigns_funded"`
}

type Learn2EarnReport struct {
	State  Learn2EarnState  `json:"state"`
	Errors Learn2EarnErrors `json:"errors"`
}
