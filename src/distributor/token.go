package distributor

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Unbounded allowance, approved once per token so funding never re-prompts
var maxAllowance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// BalanceOf reads the operator wallet's balance of the given ERC20 token
func (self *Client) BalanceOf(ctx context.Context, network string, tokenAddress string) (balance decimal.Decimal, err error) {
	_, client, resolveErr := self.resolveOrError(ctx, network)
	if resolveErr != nil {
		err = resolveErr
		return
	}

	owner, err := self.OperatorAddress()
	if err != nil {
		return
	}

	values, err := self.call(ctx, client, common.HexToAddress(tokenAddress), &self.erc20Abi, "balanceOf", owner)
	if err != nil {
		return
	}
	wei, ok := values[0].(*big.Int)
	if !ok {
		err = errors.New("malformed balanceOf output")
		return
	}
	balance = FromWei(wei)
	return
}

// CheckApproval reports whether the distributor holds a non-zero allowance
// from the operator wallet for the given token.
func (self *Client) CheckApproval(ctx context.Context, network string, tokenAddress string) (out ApprovalResult) {
	entry, client, err := self.resolveOrError(ctx, network)
	if err != nil {
		if errors.Is(err, errNetworkNotSupported) {
			out.NotSupported = true
		}
		out.Message = err.Error()
		return
	}

	owner, err := self.OperatorAddress()
	if err != nil {
		out.Message = err.Error()
		return
	}

	values, err := self.call(ctx, client, common.HexToAddress(tokenAddress), &self.erc20Abi, "allowance", owner, common.HexToAddress(entry.ContractAddress))
	if err != nil {
		out.Message = err.Error()
		return
	}

	allowance, ok := values[0].(*big.Int)
	if !ok {
		out.Message = "malformed allowance output"
		return
	}

	out.Success = true
	out.Approved = allowance.Sign() > 0
	return
}

// Approve grants the distributor an unbounded allowance for the given token
func (self *Client) Approve(ctx context.Context, network string, tokenAddress string) (out TxResult) {
	entry, client, ok := self.resolve(ctx, network, &out)
	if !ok {
		return
	}

	data, err := self.erc20Abi.Pack("approve", common.HexToAddress(entry.ContractAddress), maxAllowance)
	if err != nil {
		out.Message = err.Error()
		return
	}

	receipt, err := self.submit(ctx, client, common.HexToAddress(tokenAddress), data)
	if err != nil {
		out.Message = err.Error()
		return
	}

	out.Success = true
	out.TransactionHash = receipt.TxHash.Hex()
	out.BlockNumber = receipt.BlockNumber.Uint64()
	return
}
