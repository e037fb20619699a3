package config

import (
	"time"

	"github.com/spf13/viper"
)

type Gateway struct {
	// REST API address, serves the claim-signature and admin endpoints
	RESTListenAddress string

	// Max time for handling a single request
	ServerRequestTimeout time.Duration

	// Bearer token required on admin endpoints. Empty disables them.
	AdminApiToken string
}

func setGatewayDefaults() {
	viper.SetDefault("Gateway.RESTListenAddress", "0.0.0.0:4000")
	viper.SetDefault("Gateway.ServerRequestTimeout", "30s")
}
