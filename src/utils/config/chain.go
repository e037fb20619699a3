package config

import (
	"time"

	"github.com/spf13/viper"
)

type Chain struct {
	// Overrides for the built-in JSON-RPC endpoints, keyed by network name
	RpcUrls map[string]string

	// Explorer API keys, keyed by network name
	ExplorerApiKeys map[string]string

	// Upper bound for a single JSON-RPC call
	CallTimeout time.Duration
}

func setChainDefaults() {
	viper.SetDefault("Chain.CallTimeout", "30s")
}
