package model

import (
	"strings"
	"time"

	"github.com/jackc/pgtype"
)

const TableParticipation = "participations"

// Participation statuses
const (
	ParticipationStatusRegistered = "registered"
	ParticipationStatusClaimed    = "claimed"
)

// Participation is one wallet's registration against one campaign.
// At most one non-deleted row exists per (campaign, wallet) pair.
type Participation struct {
	Id         string `gorm:"primaryKey" json:"id"`
	CampaignId string `json:"campaign_id"`

	// Always stored lower-cased, see NormalizeWalletAddress
	WalletAddress string `json:"wallet_address"`

	Answers pgtype.JSONB `gorm:"type:jsonb" json:"answers"`

	Claimed         bool   `json:"claimed"`
	Status          string `json:"status"`
	TransactionHash string `json:"transaction_hash"`

	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Participation) TableName() string {
	return TableParticipation
}

// NormalizeWalletAddress makes hex addresses comparable regardless of the
// checksum casing the wallet happened to send.
func NormalizeWalletAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
