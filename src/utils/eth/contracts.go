package eth

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ERC-721 contract with a public mint
type NFT interface {
	Address() common.Address
	Mint(ctx context.Context, uri string) (*types.Transaction, error)
	TokenCount(ctx context.Context) (*big.Int, error)
	SetApprovalForAll(ctx context.Context, operator common.Address, approved bool) (*types.Transaction, error)
	IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error)

	// Id of the token minted to the given account in this receipt
	MintedTokenID(receipt *types.Receipt, to common.Address) (*big.Int, error)
}

// Marketplace contract that lists approved tokens for a fixed price
type Marketplace interface {
	Address() common.Address
	MakeItem(ctx context.Context, nft common.Address, tokenID, price *big.Int) (*types.Transaction, error)
	ItemCount(ctx context.Context) (*big.Int, error)

	// Id of the marketplace item created in this receipt
	ListedItemID(receipt *types.Receipt) (*big.Int, error)
}

// Contract handles bound to one signer
type Contracts struct {
	Identity    ChainIdentity
	NFT         NFT
	Marketplace Marketplace
}

type boundContract struct {
	address  common.Address
	abi      *abi.ABI
	contract *bind.BoundContract
	opts     *bind.TransactOpts
}

func newBoundContract(address common.Address, contractABI *abi.ABI, backend bind.ContractBackend, opts *bind.TransactOpts) boundContract {
	return boundContract{
		address:  address,
		abi:      contractABI,
		contract: bind.NewBoundContract(address, *contractABI, backend, backend, backend),
		opts:     opts,
	}
}

func (self *boundContract) Address() common.Address {
	return self.address
}

func (self *boundContract) transact(ctx context.Context, method string, params ...interface{}) (*types.Transaction, error) {
	opts := *self.opts
	opts.Context = ctx
	return self.contract.Transact(&opts, method, params...)
}

func (self *boundContract) call(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	err := self.contract.Call(&bind.CallOpts{Context: ctx, From: self.opts.From}, &out, method, params...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no output from %s", method)
	}
	return out, nil
}

func (self *boundContract) callBigInt(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	out, err := self.call(ctx, method, params...)
	if err != nil {
		return nil, err
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected output type of %s: %T", method, out[0])
	}
	return value, nil
}

type NftContract struct {
	boundContract
}

func NewNftContract(address common.Address, backend bind.ContractBackend, opts *bind.TransactOpts) *NftContract {
	return &NftContract{boundContract: newBoundContract(address, NftABI, backend, opts)}
}

func (self *NftContract) Mint(ctx context.Context, uri string) (*types.Transaction, error) {
	return self.transact(ctx, "mint", uri)
}

func (self *NftContract) TokenCount(ctx context.Context) (*big.Int, error) {
	return self.callBigInt(ctx, "tokenCount")
}

func (self *NftContract) SetApprovalForAll(ctx context.Context, operator common.Address, approved bool) (*types.Transaction, error) {
	return self.transact(ctx, "setApprovalForAll", operator, approved)
}

func (self *NftContract) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	out, err := self.call(ctx, "isApprovedForAll", owner, operator)
	if err != nil {
		return false, err
	}
	approved, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected output type of isApprovedForAll: %T", out[0])
	}
	return approved, nil
}

func (self *NftContract) MintedTokenID(receipt *types.Receipt, to common.Address) (*big.Int, error) {
	return MintedTokenID(receipt, self.address, to)
}

type MarketplaceContract struct {
	boundContract
}

func NewMarketplaceContract(address common.Address, backend bind.ContractBackend, opts *bind.TransactOpts) *MarketplaceContract {
	return &MarketplaceContract{boundContract: newBoundContract(address, MarketplaceABI, backend, opts)}
}

func (self *MarketplaceContract) MakeItem(ctx context.Context, nft common.Address, tokenID, price *big.Int) (*types.Transaction, error) {
	return self.transact(ctx, "makeItem", nft, tokenID, price)
}

func (self *MarketplaceContract) ItemCount(ctx context.Context) (*big.Int, error) {
	return self.callBigInt(ctx, "itemCount")
}

func (self *MarketplaceContract) ListedItemID(receipt *types.Receipt) (*big.Int, error) {
	return ListedItemID(receipt, self.address)
}

// Finds the Transfer from the zero address to the given account
func MintedTokenID(receipt *types.Receipt, nft, to common.Address) (*big.Int, error) {
	events, err := GetTransactionLogs(receipt, NftABI, nft, "Transfer")
	if err != nil {
		return nil, err
	}

	for _, event := range events {
		from, _ := event["from"].(common.Address)
		recipient, _ := event["to"].(common.Address)
		tokenID, ok := event["tokenId"].(*big.Int)
		if !ok || from != (common.Address{}) || recipient != to {
			continue
		}
		return tokenID, nil
	}

	return nil, ErrEventNotFound
}

func ListedItemID(receipt *types.Receipt, marketplace common.Address) (*big.Int, error) {
	events, err := GetTransactionLogs(receipt, MarketplaceABI, marketplace, "Offered")
	if err != nil {
		return nil, err
	}

	for _, event := range events {
		if itemID, ok := event["itemId"].(*big.Int); ok {
			return itemID, nil
		}
	}

	return nil, ErrEventNotFound
}
