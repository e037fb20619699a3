package config

import (
	"github.com/spf13/viper"
)

type Syncer struct {
	// Cron spec for the scheduled full reconciliation
	Schedule string

	// Whether a full reconciliation runs right after the serve command starts
	SyncOnStartup bool

	// Number of workers reconciling campaigns in parallel
	NumWorkers int

	// Max campaigns waiting in the worker queue
	WorkerQueueSize int

	// Max on-chain reads per second across all workers
	ChainReadsPerSecond int
}

func setSyncerDefaults() {
	viper.SetDefault("Syncer.Schedule", "@midnight")
	viper.SetDefault("Syncer.SyncOnStartup", "true")
	viper.SetDefault("Syncer.NumWorkers", "5")
	viper.SetDefault("Syncer.WorkerQueueSize", "100")
	viper.SetDefault("Syncer.ChainReadsPerSecond", "10")
}
