package model

import (
	"github.com/jackc/pgtype"
	"gorm.io/gorm"
)

// ensureJSONB makes an unset column encode as SQL NULL.
// pgtype refuses to encode the Undefined status, so every model with a jsonb
// column normalizes it before hitting the driver.
func ensureJSONB(raw *pgtype.JSONB) {
	if raw.Status == pgtype.Undefined {
		raw.Status = pgtype.Null
	}
}

func (self *Campaign) BeforeSave(tx *gorm.DB) (err error) {
	ensureJSONB(&self.Tasks)
	return
}

func (self *Draft) BeforeSave(tx *gorm.DB) (err error) {
	ensureJSONB(&self.Data)
	return
}

func (self *Participation) BeforeSave(tx *gorm.DB) (err error) {
	ensureJSONB(&self.Answers)
	return
}

func (self *PlatformSettings) BeforeSave(tx *gorm.DB) (err error) {
	ensureJSONB(&self.Contracts)
	return
}
