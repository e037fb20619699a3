package learn2earn

import (
	"github.com/glebarez/sqlite"
	"github.com/rs/xid"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/gate33/learn2earn/src/utils/model"
)

// Each suite gets its own named in-memory database, shared cache keeps it
// visible across the pool's connections
func newTestDb() (db *gorm.DB, err error) {
	db, err = gorm.Open(
		sqlite.Open("file:"+xid.New().String()+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: gorm_logger.Default.LogMode(gorm_logger.Silent)},
	)
	if err != nil {
		return
	}

	err = db.AutoMigrate(
		&model.Campaign{},
		&model.Draft{},
		&model.Participation{},
		&model.ContractConfig{},
		&model.PlatformSettings{},
	)
	return
}
