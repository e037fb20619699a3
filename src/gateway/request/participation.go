package request

import "encoding/json"

type RegisterParticipation struct {
	CampaignId    string          `json:"campaignId" binding:"required"`
	WalletAddress string          `json:"walletAddress" binding:"required"`
	Answers       json.RawMessage `json:"answers"`
}

type SubmitClaim struct {
	CampaignId    string `json:"campaignId" binding:"required"`
	WalletAddress string `json:"walletAddress" binding:"required"`
}
