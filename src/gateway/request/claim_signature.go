package request

// ClaimSignature is accepted both as query parameters (GET) and as a JSON
// body (POST), the two forms are interchangeable.
type ClaimSignature struct {
	// Campaign external key, preferred lookup
	FirebaseId string `form:"firebaseId" json:"firebaseId"`

	// Store document id fallback
	ContractId string `form:"contractId" json:"contractId"`

	Address string `form:"address" json:"address" binding:"required"`
	Amount  string `form:"amount" json:"amount" binding:"required"`
}

// CampaignId returns whichever campaign identifier the caller supplied
func (self *ClaimSignature) CampaignId() string {
	if self.FirebaseId != "" {
		return self.FirebaseId
	}
	return self.ContractId
}
