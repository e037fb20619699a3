package config

import (
	"time"

	"github.com/spf13/viper"
)

type Registry struct {
	// How long the merged network -> contract mapping is served from cache
	CacheTtl time.Duration

	// How often expired entries are purged from the cache
	CacheCleanupInterval time.Duration
}

func setRegistryDefaults() {
	viper.SetDefault("Registry.CacheTtl", "5m")
	viper.SetDefault("Registry.CacheCleanupInterval", "10m")
}
