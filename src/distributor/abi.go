package distributor

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Event emitted by the distributor upon campaign creation, parsed to recover
// the contract's internal sequence index
const creationEventName = "Learn2EarnCreated"

const distributorAbiJson = `[
	{
		"type": "function",
		"name": "createLearn2Earn",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "firebaseId", "type": "string"},
			{"name": "tokenAddress", "type": "address"},
			{"name": "tokenAmount", "type": "uint256"},
			{"name": "startTime", "type": "uint256"},
			{"name": "endTime", "type": "uint256"},
			{"name": "maxParticipants", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "claimTokens",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "firebaseId", "type": "string"}],
		"outputs": []
	},
	{
		"type": "function",
		"name": "learn2earns",
		"stateMutability": "view",
		"inputs": [{"name": "", "type": "uint256"}],
		"outputs": [
			{"name": "id", "type": "string"},
			{"name": "tokenAddress", "type": "address"},
			{"name": "tokenAmount", "type": "uint256"},
			{"name": "startTime", "type": "uint256"},
			{"name": "endTime", "type": "uint256"},
			{"name": "maxParticipants", "type": "uint256"},
			{"name": "participantCount", "type": "uint256"},
			{"name": "active", "type": "bool"}
		]
	},
	{
		"type": "function",
		"name": "hasClaimed",
		"stateMutability": "view",
		"inputs": [
			{"name": "learn2earnId", "type": "uint256"},
			{"name": "user", "type": "address"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"type": "function",
		"name": "getTokenPerParticipant",
		"stateMutability": "view",
		"inputs": [{"name": "learn2earnId", "type": "uint256"}],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"type": "event",
		"name": "Learn2EarnCreated",
		"inputs": [
			{"name": "learn2earnId", "type": "uint256", "indexed": true},
			{"name": "firebaseId", "type": "string", "indexed": false},
			{"name": "tokenAddress", "type": "address", "indexed": true},
			{"name": "tokenAmount", "type": "uint256", "indexed": false}
		],
		"anonymous": false
	}
]`

const erc20AbiJson = `[
	{
		"type": "function",
		"name": "balanceOf",
		"stateMutability": "view",
		"inputs": [{"name": "owner", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"type": "function",
		"name": "allowance",
		"stateMutability": "view",
		"inputs": [
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"}
		],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"type": "function",
		"name": "approve",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "spender", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	}
]`

func parseDistributorAbi() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(distributorAbiJson))
}

func parseErc20Abi() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(erc20AbiJson))
}

// DistributorMethods lists the entrypoints a deployed distributor must expose,
// checked by the check-contract command against the explorer ABI.
var DistributorMethods = []string{
	"createLearn2Earn",
	"claimTokens",
	"learn2earns",
	"hasClaimed",
	"getTokenPerParticipant",
}
