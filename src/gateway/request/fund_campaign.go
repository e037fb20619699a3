package request

import "github.com/gate33/learn2earn/src/utils/model"

type FundCampaign struct {
	DraftId   string `json:"draftId"`
	CompanyId string `json:"companyId" binding:"required"`

	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Network     string `json:"network" binding:"required"`

	TokenAddress        string `json:"tokenAddress" binding:"required"`
	TokenSymbol         string `json:"tokenSymbol"`
	TokenAmount         string `json:"tokenAmount" binding:"required"`
	TokenPerParticipant string `json:"tokenPerParticipant" binding:"required"`

	// Unix seconds, omitted means the campaign starts now
	StartDate *int64 `json:"startDate"`

	Tasks []model.Task `json:"tasks"`
}

type TransitionCampaign struct {
	CompanyId string `json:"companyId"`
	Status    string `json:"status" binding:"required"`
}
