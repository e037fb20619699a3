package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gate33/learn2earn/src/distributor"
	"github.com/gate33/learn2earn/src/registry"
	"github.com/gate33/learn2earn/src/utils/eth"
	"github.com/gate33/learn2earn/src/utils/model"
)

func init() {
	RootCmd.AddCommand(checkContractCmd)
}

// Ops tool: checks that the deployed distributor on the given network still
// exposes every method this service calls. Catches contract upgrades that
// would otherwise surface as runtime revert noise.
var checkContractCmd = &cobra.Command{
	Use:   "check-contract <network>",
	Short: "Verify the deployed distributor contract exposes the expected interface",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		network, err := eth.ParseNetwork(args[0])
		if err != nil {
			return
		}

		db, err := model.NewConnection(ctx, conf, "check-contract")
		if err != nil {
			return
		}

		contracts := registry.NewRegistry(conf).
			WithDb(db)

		entry, found, err := contracts.Resolve(ctx, network.String())
		if err != nil {
			return
		}
		if !found {
			return errors.Errorf("no distributor contract configured for network %s", network)
		}

		contractAbi, err := eth.GetContractABI(
			entry.ContractAddress,
			conf.Chain.ExplorerApiKeys[network.String()],
			network,
		)
		if err != nil {
			return
		}

		var missing []string
		for _, method := range distributor.DistributorMethods {
			if _, ok := contractAbi.Methods[method]; !ok {
				missing = append(missing, method)
			}
		}

		if len(missing) > 0 {
			return errors.Errorf("contract %s on %s is missing methods: %v",
				entry.ContractAddress, network, missing)
		}

		fmt.Printf("contract %s on %s exposes all %d expected methods\n",
			entry.ContractAddress, network, len(distributor.DistributorMethods))
		return
	},
}
