package registry

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/model"
)

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

type RegistryTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	config *config.Config
	db     *gorm.DB
}

func (s *RegistryTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.config = config.Default()
}

func (s *RegistryTestSuite) TearDownSuite() {
	s.cancel()
}

// Fresh database per test, each one mutates the sources
func (s *RegistryTestSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(
		sqlite.Open("file:"+xid.New().String()+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: gorm_logger.Default.LogMode(gorm_logger.Silent)},
	)
	assert.Nil(s.T(), err)
	assert.Nil(s.T(), s.db.AutoMigrate(&model.ContractConfig{}, &model.PlatformSettings{}))
}

func (s *RegistryTestSuite) seedSettings(contracts string) {
	settings := model.PlatformSettings{Id: 1}
	assert.Nil(s.T(), settings.Contracts.Set([]byte(contracts)))
	assert.Nil(s.T(), s.db.Create(&settings).Error)
}

func (s *RegistryTestSuite) seedConfig(network, contract, token string) {
	assert.Nil(s.T(), s.db.Create(&model.ContractConfig{
		Network:         network,
		ContractAddress: contract,
		TokenAddress:    token,
	}).Error)
}

func (s *RegistryTestSuite) TestResolveCanonicalAndAlias() {
	s.seedConfig("polygon", "0xc0ffee", "0x70ce")
	registry := NewRegistry(s.config).WithDb(s.db)

	entry, found, err := registry.Resolve(s.ctx, "polygon")
	assert.Nil(s.T(), err)
	assert.True(s.T(), found)
	assert.Equal(s.T(), "0xc0ffee", entry.ContractAddress)

	// Old configs keep saying matic
	entry, found, err = registry.Resolve(s.ctx, "MATIC")
	assert.Nil(s.T(), err)
	assert.True(s.T(), found)
	assert.Equal(s.T(), "0xc0ffee", entry.ContractAddress)
}

func (s *RegistryTestSuite) TestResolveCanonicalFindsAliasRow() {
	// The row itself is stored under the alias
	s.seedConfig("matic", "0xc0ffee", "0x70ce")
	registry := NewRegistry(s.config).WithDb(s.db)

	_, found, err := registry.Resolve(s.ctx, "polygon")
	assert.Nil(s.T(), err)
	assert.True(s.T(), found)
}

func (s *RegistryTestSuite) TestMissingNetworkIsNotAnError() {
	registry := NewRegistry(s.config).WithDb(s.db)

	_, found, err := registry.Resolve(s.ctx, "soyuz")
	assert.Nil(s.T(), err)
	assert.False(s.T(), found)
}

func (s *RegistryTestSuite) TestConfigRowsOverrideSettings() {
	s.seedSettings(`{"ethereum": {"contractAddress": "0x01d", "tokenAddress": "0x02"}}`)
	s.seedConfig("ethereum", "0x0new", "0x02")
	registry := NewRegistry(s.config).WithDb(s.db)

	entry, found, err := registry.Resolve(s.ctx, "ethereum")
	assert.Nil(s.T(), err)
	assert.True(s.T(), found)
	assert.Equal(s.T(), "0x0new", entry.ContractAddress)
}

func (s *RegistryTestSuite) TestSettingsServeAsFallback() {
	s.seedSettings(`{"bsc": {"contractAddress": "0xbb", "tokenAddress": "0xcc"}}`)
	registry := NewRegistry(s.config).WithDb(s.db)

	entry, found, err := registry.Resolve(s.ctx, "bnb")
	assert.Nil(s.T(), err)
	assert.True(s.T(), found)
	assert.Equal(s.T(), "0xbb", entry.ContractAddress)
	assert.Equal(s.T(), "0xcc", entry.TokenAddress)
}

func (s *RegistryTestSuite) TestCacheAndReset() {
	s.seedConfig("avalanche", "0x01", "0x02")
	registry := NewRegistry(s.config).WithDb(s.db)

	_, found, err := registry.Resolve(s.ctx, "avax")
	assert.Nil(s.T(), err)
	assert.True(s.T(), found)

	// The mapping is cached wholesale, a new row stays invisible
	s.seedConfig("base", "0x03", "0x04")
	_, found, err = registry.Resolve(s.ctx, "base")
	assert.Nil(s.T(), err)
	assert.False(s.T(), found)

	registry.Reset()

	_, found, err = registry.Resolve(s.ctx, "base")
	assert.Nil(s.T(), err)
	assert.True(s.T(), found)
}

func (s *RegistryTestSuite) TestCacheExpires() {
	s.seedConfig("optimism", "0x01", "0x02")

	conf := config.Default()
	conf.Registry.CacheTtl = 10 * time.Millisecond
	registry := NewRegistry(conf).WithDb(s.db)

	_, found, err := registry.Resolve(s.ctx, "op")
	assert.Nil(s.T(), err)
	assert.True(s.T(), found)

	s.seedConfig("base", "0x03", "0x04")
	time.Sleep(20 * time.Millisecond)

	_, found, err = registry.Resolve(s.ctx, "base")
	assert.Nil(s.T(), err)
	assert.True(s.T(), found)
}
