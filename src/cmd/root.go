package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gate33/learn2earn/src/utils/build_info"
	"github.com/gate33/learn2earn/src/utils/common"
	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/logger"
)

var (
	RootCmd = &cobra.Command{
		Use:   "learn2earn",
		Short: "Learn2Earn campaign service, keeps reward campaigns in sync with the distributor contracts",

		// All child commands will use this
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			// Setup a context that gets cancelled upon SIGINT
			ctx, cancel = context.WithCancel(context.Background())

			signalChannel = make(chan os.Signal, 1)
			signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)
			go func() {
				select {
				case <-signalChannel:
					cancel()
				case <-ctx.Done():
				}
			}()

			// Load configuration
			conf, err = config.Load(cfgFile)
			if err != nil {
				return
			}
			ctx = common.SetConfig(ctx, conf)

			// Setup logging
			err = logger.Init(conf)
			if err != nil {
				return
			}
			return
		},

		PersistentPostRunE: func(cmd *cobra.Command, args []string) (err error) {
			signal.Stop(signalChannel)
			cancel()
			return
		},
		SilenceErrors: true,
	}

	// Configuration
	conf    *config.Config
	cfgFile string

	// Context setup
	ctx           context.Context
	cancel        context.CancelFunc
	signalChannel chan os.Signal
)

func init() {
	RootCmd.Version = build_info.Version + " (" + build_info.BuildDate + ")"
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file path")
}
