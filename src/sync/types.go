package sync

// SyncResult describes one campaign's reconciliation pass.
// Success false means the chain or the store could not be consulted, the
// campaign keeps its previous state and the run moves on.
type SyncResult struct {
	CampaignId string `json:"campaign_id"`
	Success    bool   `json:"success"`

	PreviousStatus   string `json:"previous_status"`
	NewStatus        string `json:"new_status"`
	ParticipantCount int64  `json:"participant_count"`
	Active           bool   `json:"active"`

	// Populated when Success is false or the campaign was skipped
	Message string `json:"message,omitempty"`
}

// SyncAllResult aggregates one full reconciliation run
type SyncAllResult struct {
	Total        int                   `json:"total"`
	Synchronized int                   `json:"synchronized"`
	Failed       int                   `json:"failed"`
	Results      map[string]SyncResult `json:"results"`
}
