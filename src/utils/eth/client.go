package eth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

type (
	RawABIResponse struct {
		Status  *string `json:"status"`
		Message *string `json:"message"`
		Result  *string `json:"result"`
	}
)

type Network string

const (
	Ethereum  Network = "ethereum"
	Polygon   Network = "polygon"
	Bsc       Network = "bsc"
	Avalanche Network = "avalanche"
	Optimism  Network = "optimism"
	Base      Network = "base"
)

var ErrNetworkUnknown = errors.New("ETH network unknown")

// ParseNetwork accepts only canonical network names.
// Alias resolution (matic -> polygon etc.) happens in the registry.
func ParseNetwork(s string) (network Network, err error) {
	switch Network(strings.ToLower(strings.TrimSpace(s))) {
	case Ethereum:
		network = Ethereum
	case Polygon:
		network = Polygon
	case Bsc:
		network = Bsc
	case Avalanche:
		network = Avalanche
	case Optimism:
		network = Optimism
	case Base:
		network = Base
	default:
		err = ErrNetworkUnknown
	}
	return
}

func (network Network) RpcProviderUrl() (rpcProviderUrl string, err error) {
	switch network {
	case Ethereum:
		rpcProviderUrl = "https://ethereum-rpc.publicnode.com"
		return
	case Polygon:
		rpcProviderUrl = "https://polygon-rpc.com"
		return
	case Bsc:
		rpcProviderUrl = "https://bsc-rpc.publicnode.com"
		return
	case Avalanche:
		rpcProviderUrl = "https://api.avax.network/ext/bc/C/rpc"
		return
	case Optimism:
		rpcProviderUrl = "https://mainnet.optimism.io"
		return
	case Base:
		rpcProviderUrl = "https://mainnet.base.org"
		return
	}

	err = ErrNetworkUnknown
	return
}

func (network Network) Api() (apiUrl string, err error) {
	switch network {
	case Ethereum:
		apiUrl = "https://api.etherscan.io/api"
		return
	case Polygon:
		apiUrl = "https://api.polygonscan.com/api"
		return
	case Bsc:
		apiUrl = "https://api.bscscan.com/api"
		return
	case Avalanche:
		apiUrl = "https://api.snowtrace.io/api"
		return
	case Optimism:
		apiUrl = "https://api-optimistic.etherscan.io/api"
		return
	case Base:
		apiUrl = "https://api.basescan.org/api"
		return
	}

	err = ErrNetworkUnknown
	return
}

func (network Network) String() string {
	return string(network)
}

// ERC-20 default, none of the supported reward tokens deviate
func (network Network) Decimals() int32 {
	return 18
}

func GetEthClient(log *logrus.Entry, network Network, rpcOverrides map[string]string) (client *ethclient.Client, err error) {
	rpcProviderUrl, ok := rpcOverrides[network.String()]
	if !ok {
		rpcProviderUrl, err = network.RpcProviderUrl()
		if err != nil {
			log.WithError(err).Error("ETH network unknown")
			return
		}
	}

	client, err = ethclient.Dial(rpcProviderUrl)
	if err != nil {
		log.WithError(err).Error("Cannot get ETH client")
		return
	}

	return
}

func GetContractRawABI(address string, apiKey string, network Network) (rawABIResponse *RawABIResponse, err error) {
	apiUrl, err := network.Api()
	if err != nil {
		return nil, err
	}
	client := resty.New()
	rawABIResponse = &RawABIResponse{}
	resp, err := client.R().
		SetQueryParams(map[string]string{
			"module":  "contract",
			"action":  "getabi",
			"address": address,
			"apikey":  apiKey,
		}).
		SetResult(rawABIResponse).
		Get(apiUrl)

	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("get contract raw abi was not successful: %s", resp)
	}

	if *rawABIResponse.Status != "1" {
		return nil, fmt.Errorf("get contract raw abi failed: %s", *rawABIResponse.Result)
	}

	return rawABIResponse, nil
}

func GetContractABI(contractAddress, apiKey string, network Network) (*abi.ABI, error) {
	rawABIResponse, err := GetContractRawABI(contractAddress, apiKey, network)
	if err != nil {
		return nil, err
	}

	contractABI, err := abi.JSON(strings.NewReader(*rawABIResponse.Result))
	if err != nil {
		return nil, err
	}
	return &contractABI, nil
}

func GetTransactionLog(receipt *types.Receipt, contractABI *abi.ABI, name string) (eventMap map[string]interface{}, err error) {
	for _, vLog := range receipt.Logs {
		event, err := contractABI.EventByID(vLog.Topics[0])
		if err != nil {
			continue
		}

		if event.Name == name {
			eventMap := make(map[string]interface{})
			eventMap["name"] = event.Name

			indexed := make([]abi.Argument, 0)
			for _, input := range event.Inputs {
				if input.Indexed {
					indexed = append(indexed, input)
				}
			}
			err := abi.ParseTopicsIntoMap(eventMap, indexed, vLog.Topics[1:])
			if err != nil {
				return nil, err
			}

			if len(vLog.Data) > 0 {
				err = contractABI.UnpackIntoMap(eventMap, event.Name, vLog.Data)
				if err != nil {
					return nil, err
				}
			}
			return eventMap, nil
		}
	}

	err = errors.New("desired transaction log not found")
	return
}
