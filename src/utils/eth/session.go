package eth

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/warp-contracts/publisher/src/utils/config"
	"github.com/warp-contracts/publisher/src/utils/logger"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Node access needed by the session
type Backend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Connected account and network.
// Valid only as long as the session that produced it stays connected to the same account.
type ChainIdentity struct {
	Address common.Address
	ChainID *big.Int

	generation uint64
}

func (self ChainIdentity) IsZero() bool {
	return self.generation == 0
}

// Connection to the chain on behalf of one wallet
type Session struct {
	config *config.Chain
	log    *logrus.Entry

	mtx        sync.RWMutex
	backend    Backend
	client     *ethclient.Client
	wallet     Wallet
	signer     *Signer
	chainID    *big.Int
	generation uint64
}

func NewSession(config *config.Chain) (self *Session) {
	self = new(Session)
	self.config = config
	self.log = logger.NewSublogger("eth-session")
	return
}

// Node used instead of dialing RpcUrl
func (self *Session) WithBackend(backend Backend) *Session {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.backend = backend
	return self
}

func (self *Session) WithWallet(wallet Wallet) *Session {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.wallet = wallet
	return self
}

// Unlocks the wallet and checks the network. Each successful call invalidates identities returned earlier.
func (self *Session) Connect(ctx context.Context) (identity ChainIdentity, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	if self.wallet == nil {
		err = fmt.Errorf("%w: no wallet configured", ErrWalletUnavailable)
		return
	}

	if self.backend == nil {
		self.client, err = ethclient.DialContext(ctx, self.config.RpcUrl)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrWalletUnavailable, err)
			return
		}
		self.backend = self.client
	}

	chainID, err := self.backend.ChainID(ctx)
	if err != nil {
		err = fmt.Errorf("%w: failed to get chain id: %w", ErrWalletUnavailable, err)
		return
	}
	if self.config.ChainId != 0 && chainID.Cmp(big.NewInt(self.config.ChainId)) != 0 {
		err = fmt.Errorf("%w: node is on chain %s, expected %d", ErrWalletUnavailable, chainID, self.config.ChainId)
		return
	}

	signer, err := self.wallet.Open(ctx)
	if err != nil {
		return
	}

	self.signer = signer
	self.chainID = chainID
	self.generation++

	self.log.WithField("address", signer.Address.Hex()).WithField("chain_id", chainID).Info("Connected")

	identity = ChainIdentity{
		Address:    signer.Address,
		ChainID:    new(big.Int).Set(chainID),
		generation: self.generation,
	}
	return
}

// Forgets the signer. Identities obtained earlier become invalid.
func (self *Session) Disconnect() {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	self.signer = nil
	self.generation++

	if self.client != nil {
		self.client.Close()
		self.client = nil
		self.backend = nil
	}
}

// Replaces the wallet. The next Connect uses it, identities obtained earlier become invalid.
func (self *Session) SwitchWallet(wallet Wallet) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	self.wallet = wallet
	self.signer = nil
	self.generation++
}

func (self *Session) checkIdentity(identity ChainIdentity) error {
	if self.signer == nil || identity.generation == 0 || identity.generation != self.generation || identity.Address != self.signer.Address {
		return ErrSessionExpired
	}
	return nil
}

func parseAddress(name, value string) (address common.Address, err error) {
	if !common.IsHexAddress(value) {
		err = fmt.Errorf("%w: %s: %q", ErrInvalidAddress, name, value)
		return
	}
	address = common.HexToAddress(value)
	if address == (common.Address{}) {
		err = fmt.Errorf("%w: %s is the zero address", ErrInvalidAddress, name)
	}
	return
}

// Builds contract handles bound to the identity's signer. Doesn't touch the network.
func (self *Session) GetContracts(identity ChainIdentity) (contracts *Contracts, err error) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	err = self.checkIdentity(identity)
	if err != nil {
		return
	}

	nftAddress, err := parseAddress("nft", self.config.NftAddress)
	if err != nil {
		return
	}

	marketplaceAddress, err := parseAddress("marketplace", self.config.MarketplaceAddress)
	if err != nil {
		return
	}

	opts, err := self.signer.TransactOpts(context.Background(), self.chainID)
	if err != nil {
		return
	}
	opts.GasLimit = self.config.GasLimit

	contracts = &Contracts{
		Identity:    identity,
		NFT:         NewNftContract(nftAddress, self.backend, opts),
		Marketplace: NewMarketplaceContract(marketplaceAddress, self.backend, opts),
	}
	return
}

func (self *Session) getBackend() (Backend, error) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	if self.backend == nil {
		return nil, fmt.Errorf("%w: not connected", ErrWalletUnavailable)
	}
	return self.backend, nil
}

// Balance of the identity's account in ETH
func (self *Session) Balance(ctx context.Context, identity ChainIdentity) (balance decimal.Decimal, err error) {
	self.mtx.RLock()
	err = self.checkIdentity(identity)
	self.mtx.RUnlock()
	if err != nil {
		return
	}

	backend, err := self.getBackend()
	if err != nil {
		return
	}

	wei, err := backend.BalanceAt(ctx, identity.Address, nil)
	if err != nil {
		return
	}

	return WeiToEther(wei), nil
}

// True if the balance is below the configured warning threshold
func (self *Session) IsBalanceLow(balance decimal.Decimal) bool {
	if self.config.LowBalanceWarning == "" {
		return false
	}
	threshold, err := decimal.NewFromString(self.config.LowBalanceWarning)
	if err != nil {
		self.log.WithError(err).Warn("Invalid low balance threshold")
		return false
	}
	return balance.LessThan(threshold)
}
