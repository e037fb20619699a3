package model

import (
	"encoding/json"
	"time"

	"github.com/jackc/pgtype"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const TableCampaign = "campaigns"
const TableDraft = "drafts"

// Campaign lifecycle statuses
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
	CampaignStatusPaused    = "paused"
)

// Campaigns live for exactly one year on chain, the creator only picks the start
const CampaignDuration = 365 * 24 * time.Hour

// Campaign is the off-chain projection of one Learn2Earn opportunity.
// The chain stays authoritative for the derived fields (participant counts,
// active flag), the syncer is their only writer after funding.
type Campaign struct {
	// Store document id
	Id string `gorm:"primaryKey" json:"id"`

	// External key passed into createLearn2Earn, recorded inside the contract
	FirebaseId string `json:"firebase_id"`

	// The contract's internal sequence index, set once creation is confirmed
	ContractId *int64 `json:"contract_id"`

	CompanyId   string `json:"company_id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	TokenSymbol         string          `json:"token_symbol"`
	TokenAddress        string          `json:"token_address"`
	TokenAmount         decimal.Decimal `gorm:"type:numeric" json:"token_amount"`
	TokenPerParticipant decimal.Decimal `gorm:"type:numeric" json:"token_per_participant"`
	MaxParticipants     int64           `json:"max_participants"`
	TotalParticipants   int64           `json:"total_participants"`

	Network   string    `json:"network"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	Status string       `json:"status"`
	Tasks  pgtype.JSONB `gorm:"type:jsonb" json:"tasks"`

	ContractAddress string `json:"contract_address"`
	TransactionHash string `json:"transaction_hash"`

	// Cached on-chain active flag
	Active bool `json:"active"`

	Deleted bool `json:"deleted"`

	LastSyncedAt    *time.Time `json:"last_synced_at"`
	StatusChangedAt *time.Time `json:"status_changed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Campaign) TableName() string {
	return TableCampaign
}

// Draft is a pre-funding snapshot of the authoring fields, one per company
type Draft struct {
	Id        string       `gorm:"primaryKey" json:"id"`
	CompanyId string       `json:"company_id"`
	Data      pgtype.JSONB `gorm:"type:jsonb" json:"data"`
	Deleted   bool         `json:"deleted"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Draft) TableName() string {
	return TableDraft
}

// Task kinds
const (
	TaskKindContent  = "content"
	TaskKindQuestion = "question"
)

// Task is one unit of campaign content: either educational material or a quiz
// question. Stored inside the campaign's tasks JSONB column.
type Task struct {
	Id   string `json:"id"`
	Kind string `json:"kind"`

	// Content task
	Text            string `json:"text,omitempty"`
	LinkUrl         string `json:"link_url,omitempty"`
	LinkTitle       string `json:"link_title,omitempty"`
	LinkDescription string `json:"link_description,omitempty"`

	// Question task
	Question      string   `json:"question,omitempty"`
	Options       []string `json:"options,omitempty"`
	CorrectOption *int     `json:"correct_option,omitempty"`
}

var (
	ErrMalformedTasks       = errors.New("campaign tasks are malformed")
	ErrTaskOptionOutOfRange = errors.New("question task correct option is out of range")
	ErrUnknownTaskKind      = errors.New("unknown task kind")
)

// ParseTasks is the strict parse-on-read boundary for the tasks column.
// Malformed documents fail loudly instead of degrading to zero values.
func ParseTasks(raw pgtype.JSONB) (tasks []Task, err error) {
	if raw.Status != pgtype.Present {
		return nil, nil
	}

	err = json.Unmarshal(raw.Bytes, &tasks)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedTasks, err.Error())
	}

	for _, t := range tasks {
		switch t.Kind {
		case TaskKindContent:
			// free text or a single external link, nothing to validate
		case TaskKindQuestion:
			if t.CorrectOption == nil || *t.CorrectOption < 0 || *t.CorrectOption >= len(t.Options) {
				return nil, errors.Wrapf(ErrTaskOptionOutOfRange, "task %s", t.Id)
			}
		default:
			return nil, errors.Wrapf(ErrUnknownTaskKind, "task %s kind %s", t.Id, t.Kind)
		}
	}
	return
}

// EncodeTasks serializes a task list into the JSONB column representation
func EncodeTasks(tasks []Task) (raw pgtype.JSONB, err error) {
	buf, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	err = raw.Set(buf)
	return
}
