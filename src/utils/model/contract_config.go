package model

import (
	"time"

	"github.com/jackc/pgtype"
)

const TableContractConfig = "contract_configs"
const TablePlatformSettings = "platform_settings"

// ContractConfig maps one network to its deployed distributor and token
// contracts. One of the two persisted sources the registry merges.
type ContractConfig struct {
	Network         string    `gorm:"primaryKey" json:"network"`
	ContractAddress string    `json:"contract_address"`
	TokenAddress    string    `json:"token_address"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (ContractConfig) TableName() string {
	return TableContractConfig
}

// PlatformSettings is the single aggregate settings document. Its contracts
// column holds the same network -> addresses mapping as contract_configs and
// is consulted as the fallback source.
type PlatformSettings struct {
	// Id always equals one
	Id int16 `gorm:"primaryKey" json:"id"`

	Contracts pgtype.JSONB `gorm:"type:jsonb" json:"contracts"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (PlatformSettings) TableName() string {
	return TablePlatformSettings
}
