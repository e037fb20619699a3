package config

import (
	"time"

	"github.com/spf13/viper"
)

type Distributor struct {
	// Private key of the operator wallet that funds campaigns and submits claims
	OperatorPrivateKey string

	// Platform fee deducted by the distributor contract from every deposit, in percent
	FeePercent float64

	// How long to poll for a transaction receipt before giving up
	ConfirmationTimeout time.Duration

	// Max time between receipt polling attempts
	ConfirmationMaxInterval time.Duration
}

func setDistributorDefaults() {
	viper.SetDefault("Distributor.FeePercent", "5")
	viper.SetDefault("Distributor.ConfirmationTimeout", "3m")
	viper.SetDefault("Distributor.ConfirmationMaxInterval", "10s")
}
