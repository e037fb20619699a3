package config

import (
	"github.com/spf13/viper"
)

type Monitoring struct {
	// REST API address. API used for metrics, reports, profiling.
	RESTListenAddress string

	// Number of samples used to compute the sync pace
	MaxHistorySize int
}

func setMonitoringDefaults() {
	viper.SetDefault("Monitoring.RESTListenAddress", "0.0.0.0:7777")
	viper.SetDefault("Monitoring.MaxHistorySize", "30")
}
