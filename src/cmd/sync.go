package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gate33/learn2earn/src/distributor"
	"github.com/gate33/learn2earn/src/registry"
	"github.com/gate33/learn2earn/src/sync"
	"github.com/gate33/learn2earn/src/utils/model"
)

var syncCampaignId string

func init() {
	syncCmd.Flags().StringVar(&syncCampaignId, "id", "", "sync only this campaign (store id or firebase id)")
	RootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass against the distributor contracts and exit",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		db, err := model.NewConnection(ctx, conf, "sync")
		if err != nil {
			return
		}

		contracts := registry.NewRegistry(conf).
			WithDb(db)

		client, err := distributor.NewClient(conf)
		if err != nil {
			return
		}
		client.WithRegistry(contracts)

		engine := sync.NewEngine(conf).
			WithDb(db).
			WithChainReader(client)

		err = engine.Start()
		if err != nil {
			return
		}
		defer engine.StopWait()

		var out interface{}
		if syncCampaignId != "" {
			out, err = engine.SyncOneById(ctx, syncCampaignId)
		} else {
			out, err = engine.SyncAll(ctx)
		}
		if err != nil {
			return
		}

		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return
		}
		fmt.Println(string(encoded))
		return
	},
}
