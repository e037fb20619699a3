package distributor

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"time"

	"github.com/gate33/learn2earn/src/registry"
	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/eth"
	"github.com/gate33/learn2earn/src/utils/logger"
	"github.com/gate33/learn2earn/src/utils/task"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Client wraps the on-chain Learn2Earn escrow contract. Reads go through a
// provider without a signer, writes are signed with the operator key.
type Client struct {
	Config *config.Config
	Log    *logrus.Entry

	registry *registry.Registry

	distributorAbi abi.ABI
	erc20Abi       abi.ABI

	operatorKey *ecdsa.PrivateKey

	// One dialed client per network, reused across calls
	mtx     sync.Mutex
	clients map[eth.Network]*ethclient.Client
}

func NewClient(config *config.Config) (self *Client, err error) {
	self = new(Client)
	self.Config = config
	self.Log = logger.NewSublogger("distributor")
	self.clients = make(map[eth.Network]*ethclient.Client)

	self.distributorAbi, err = parseDistributorAbi()
	if err != nil {
		return
	}

	self.erc20Abi, err = parseErc20Abi()
	if err != nil {
		return
	}

	if config.Distributor.OperatorPrivateKey != "" {
		self.operatorKey, err = crypto.HexToECDSA(config.Distributor.OperatorPrivateKey)
		if err != nil {
			err = errors.Wrap(err, "malformed operator private key")
			return
		}
	}

	return
}

func (self *Client) WithRegistry(registry *registry.Registry) *Client {
	self.registry = registry
	return self
}

// OperatorAddress derives the wallet the client signs transactions with
func (self *Client) OperatorAddress() (address common.Address, err error) {
	if self.operatorKey == nil {
		err = errors.New("operator private key is not configured")
		return
	}
	address = crypto.PubkeyToAddress(self.operatorKey.PublicKey)
	return
}

// CreateCampaign submits the funded campaign creation and waits for one
// confirmation. The creation event is parsed best-effort to recover the
// contract's internal index.
func (self *Client) CreateCampaign(
	ctx context.Context,
	network string,
	firebaseId string,
	tokenAddress string,
	amount decimal.Decimal,
	start, end *big.Int,
	maxParticipants int64,
) (out CreateResult) {
	entry, client, ok := self.resolve(ctx, network, &out.TxResult)
	if !ok {
		return
	}

	data, err := self.distributorAbi.Pack(
		"createLearn2Earn",
		firebaseId,
		common.HexToAddress(tokenAddress),
		ToWei(amount),
		start,
		end,
		big.NewInt(maxParticipants),
	)
	if err != nil {
		out.Message = err.Error()
		return
	}

	receipt, err := self.submit(ctx, client, common.HexToAddress(entry.ContractAddress), data)
	if err != nil {
		out.Message = err.Error()
		return
	}

	out.Success = true
	out.TransactionHash = receipt.TxHash.Hex()
	out.BlockNumber = receipt.BlockNumber.Uint64()

	// Non-fatal, the syncer can backfill the id later
	eventMap, err := eth.GetTransactionLog(receipt, &self.distributorAbi, creationEventName)
	if err != nil {
		self.Log.WithError(err).WithField("firebase_id", firebaseId).
			Warn("Could not parse creation event, contract id stays unset")
		return
	}
	if id, ok := eventMap["learn2earnId"].(*big.Int); ok {
		contractId := id.Int64()
		out.ContractId = &contractId
	}

	return
}

// Claim invokes the on-chain claim entrypoint for the campaign's external key
func (self *Client) Claim(ctx context.Context, network string, campaignFirebaseId string) (out ClaimResult) {
	if campaignFirebaseId == "" {
		out.SpecificError = ClaimErrorInvalidId
		out.Message = "campaign has no usable firebase id"
		return
	}

	entry, client, ok := self.resolve(ctx, network, &out.TxResult)
	if !ok {
		out.SpecificError = ClaimErrorNotSupported
		return
	}

	data, err := self.distributorAbi.Pack("claimTokens", campaignFirebaseId)
	if err != nil {
		out.Message = err.Error()
		return
	}

	receipt, err := self.submit(ctx, client, common.HexToAddress(entry.ContractAddress), data)
	if err != nil {
		out.Message = err.Error()
		out.SpecificError = ClassifyClaimError(err.Error())
		return
	}

	out.Success = true
	out.TransactionHash = receipt.TxHash.Hex()
	out.BlockNumber = receipt.BlockNumber.Uint64()
	return
}

// ReadOnChainState queries the contract's public campaign accessor.
// No signer is involved.
func (self *Client) ReadOnChainState(ctx context.Context, network string, contractId int64) (out StateResult) {
	entry, client, ok := self.resolveRead(ctx, network, &out)
	if !ok {
		return
	}

	values, err := self.call(ctx, client, common.HexToAddress(entry.ContractAddress), &self.distributorAbi, "learn2earns", big.NewInt(contractId))
	if err != nil {
		out.Message = err.Error()
		return
	}
	if len(values) != 8 {
		out.Message = "unexpected learn2earns output shape"
		return
	}

	id, _ := values[0].(string)
	tokenAddress, _ := values[1].(common.Address)
	tokenAmount, _ := values[2].(*big.Int)
	startTime, _ := values[3].(*big.Int)
	endTime, _ := values[4].(*big.Int)
	maxParticipants, _ := values[5].(*big.Int)
	participantCount, _ := values[6].(*big.Int)
	active, _ := values[7].(bool)

	if tokenAmount == nil || startTime == nil || endTime == nil || maxParticipants == nil || participantCount == nil {
		out.Message = "malformed learn2earns output"
		return
	}

	out.State = OnChainState{
		Id:               id,
		TokenAddress:     tokenAddress.Hex(),
		TokenAmount:      FromWei(tokenAmount),
		StartTime:        timeFromUnix(startTime),
		EndTime:          timeFromUnix(endTime),
		MaxParticipants:  maxParticipants.Int64(),
		ParticipantCount: participantCount.Int64(),
		Active:           active,
	}
	out.Success = true
	return
}

// HasClaimed asks the contract whether a wallet already claimed its reward
func (self *Client) HasClaimed(ctx context.Context, network string, contractId int64, user string) (claimed bool, err error) {
	entry, client, resolveErr := self.resolveOrError(ctx, network)
	if resolveErr != nil {
		err = resolveErr
		return
	}

	values, err := self.call(ctx, client, common.HexToAddress(entry.ContractAddress), &self.distributorAbi, "hasClaimed", big.NewInt(contractId), common.HexToAddress(user))
	if err != nil {
		return
	}
	claimed, _ = values[0].(bool)
	return
}

// GetTokenPerParticipant reads the fixed reward the contract pays per completion
func (self *Client) GetTokenPerParticipant(ctx context.Context, network string, contractId int64) (amount decimal.Decimal, err error) {
	entry, client, resolveErr := self.resolveOrError(ctx, network)
	if resolveErr != nil {
		err = resolveErr
		return
	}

	values, err := self.call(ctx, client, common.HexToAddress(entry.ContractAddress), &self.distributorAbi, "getTokenPerParticipant", big.NewInt(contractId))
	if err != nil {
		return
	}
	wei, ok := values[0].(*big.Int)
	if !ok {
		err = errors.New("malformed getTokenPerParticipant output")
		return
	}
	amount = FromWei(wei)
	return
}

var errNetworkNotSupported = errors.New("network is not supported")

func (self *Client) resolve(ctx context.Context, network string, out *TxResult) (entry registry.Entry, client *ethclient.Client, ok bool) {
	entry, found, err := self.registry.Resolve(ctx, network)
	if err != nil {
		out.Message = err.Error()
		return
	}
	if !found {
		out.NotSupported = true
		out.Message = errNetworkNotSupported.Error()
		return
	}

	client, err = self.client(network)
	if err != nil {
		out.Message = err.Error()
		return
	}

	ok = true
	return
}

func (self *Client) resolveRead(ctx context.Context, network string, out *StateResult) (entry registry.Entry, client *ethclient.Client, ok bool) {
	entry, found, err := self.registry.Resolve(ctx, network)
	if err != nil {
		out.Message = err.Error()
		return
	}
	if !found {
		out.NotSupported = true
		out.Message = errNetworkNotSupported.Error()
		return
	}

	client, err = self.client(network)
	if err != nil {
		out.Message = err.Error()
		return
	}

	ok = true
	return
}

func (self *Client) resolveOrError(ctx context.Context, network string) (entry registry.Entry, client *ethclient.Client, err error) {
	entry, found, err := self.registry.Resolve(ctx, network)
	if err != nil {
		return
	}
	if !found {
		err = errNetworkNotSupported
		return
	}
	client, err = self.client(network)
	return
}

func (self *Client) client(name string) (client *ethclient.Client, err error) {
	network, err := eth.ParseNetwork(name)
	if err != nil {
		return
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()

	client, ok := self.clients[network]
	if ok {
		return
	}

	client, err = eth.GetEthClient(self.Log, network, self.Config.Chain.RpcUrls)
	if err != nil {
		return
	}
	self.clients[network] = client
	return
}

func (self *Client) call(ctx context.Context, client *ethclient.Client, to common.Address, contractAbi *abi.ABI, method string, args ...interface{}) (values []interface{}, err error) {
	callCtx, cancel := context.WithTimeout(ctx, self.Config.Chain.CallTimeout)
	defer cancel()

	data, err := contractAbi.Pack(method, args...)
	if err != nil {
		return
	}

	raw, err := client.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return
	}

	return contractAbi.Unpack(method, raw)
}

// submit signs and sends one transaction, then polls for its receipt until it
// is mined or the confirmation timeout elapses. Gas estimation runs first so
// reverts surface with their reason before anything is sent.
func (self *Client) submit(ctx context.Context, client *ethclient.Client, to common.Address, data []byte) (receipt *types.Receipt, err error) {
	if self.operatorKey == nil {
		err = errors.New("operator private key is not configured")
		return
	}

	fromAddress := crypto.PubkeyToAddress(self.operatorKey.PublicKey)

	nonce, err := client.PendingNonceAt(ctx, fromAddress)
	if err != nil {
		err = errors.Wrap(err, "failed to get nonce")
		return
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to get gas price")
		return
	}

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From: fromAddress,
		To:   &to,
		Data: data,
	})
	if err != nil {
		err = errors.Wrap(err, "gas estimation failed")
		return
	}

	chainId, err := client.NetworkID(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to get chain id")
		return
	}

	tx := types.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, data)
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(chainId), self.operatorKey)
	if err != nil {
		err = errors.Wrap(err, "failed to sign transaction")
		return
	}

	err = client.SendTransaction(ctx, signedTx)
	if err != nil {
		err = errors.Wrap(err, "failed to send transaction")
		return
	}

	receipt, err = self.waitMined(ctx, client, signedTx.Hash())
	if err != nil {
		return
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		err = errors.Errorf("transaction %s reverted", receipt.TxHash.Hex())
		return
	}

	return
}

// waitMined polls for the receipt with backoff. This is waiting for one
// confirmation, not retrying a failed operation.
func (self *Client) waitMined(ctx context.Context, client *ethclient.Client, hash common.Hash) (receipt *types.Receipt, err error) {
	err = task.NewRetry().
		WithContext(ctx).
		WithMaxElapsedTime(self.Config.Distributor.ConfirmationTimeout).
		WithMaxInterval(self.Config.Distributor.ConfirmationMaxInterval).
		Run(func() error {
			var e error
			receipt, e = client.TransactionReceipt(ctx, hash)
			return e
		})
	if err != nil {
		err = errors.Wrapf(err, "transaction %s was not mined in time", hash.Hex())
	}
	return
}

func timeFromUnix(seconds *big.Int) time.Time {
	return time.Unix(seconds.Int64(), 0).UTC()
}
