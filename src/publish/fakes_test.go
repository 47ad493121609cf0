package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"sync"

	"github.com/warp-contracts/publisher/src/utils/eth"
	"github.com/warp-contracts/publisher/src/utils/ipfs"
	"github.com/warp-contracts/publisher/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	nftAddress         = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	marketplaceAddress = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	signerAddress      = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

// Nonces identify the kind of transaction
const (
	mintNonce uint64 = iota + 1
	approveNonce
	listNonce
)

// Ordered log of remote calls, shared by all fakes
type callLog struct {
	mtx   sync.Mutex
	calls []string
}

func (self *callLog) add(call string) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.calls = append(self.calls, call)
}

func (self *callLog) all() []string {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return append([]string(nil), self.calls...)
}

func (self *callLog) count(call string) (n int) {
	for _, c := range self.all() {
		if c == call {
			n++
		}
	}
	return
}

// Content addressed store. Returns a fixed identifier if set, otherwise one derived from the content.
type fakeStore struct {
	log      *callLog
	cid      ipfs.ContentID
	err      error
	onUpload func(ctx context.Context)
	mtx      sync.Mutex
	uploaded []Metadata
}

func (self *fakeStore) UploadJSON(ctx context.Context, v any) (ipfs.ContentID, error) {
	self.log.add("upload")
	if self.onUpload != nil {
		self.onUpload(ctx)
	}
	if self.err != nil {
		return "", self.err
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	self.mtx.Lock()
	self.uploaded = append(self.uploaded, v.(Metadata))
	self.mtx.Unlock()

	if self.cid != "" {
		return self.cid, nil
	}
	hash := sha256.Sum256(payload)
	return ipfs.ContentID("Qm" + hex.EncodeToString(hash[:])), nil
}

func (self *fakeStore) GatewayURI(cid ipfs.ContentID) string {
	return ipfs.GatewayURI("ipfs.infura.io", cid)
}

type fakeNFT struct {
	log *callLog

	tokenID       *big.Int
	counter       *big.Int
	noEvent       bool
	mintErr       error
	approveErr    error
	approved      bool
	mintedURIs    []string
	approvalCalls []common.Address
}

func (self *fakeNFT) Address() common.Address {
	return nftAddress
}

func (self *fakeNFT) Mint(ctx context.Context, uri string) (*types.Transaction, error) {
	self.log.add("mint")
	if self.mintErr != nil {
		return nil, self.mintErr
	}
	self.mintedURIs = append(self.mintedURIs, uri)
	return types.NewTx(&types.LegacyTx{Nonce: mintNonce}), nil
}

func (self *fakeNFT) TokenCount(ctx context.Context) (*big.Int, error) {
	self.log.add("tokenCount")
	if self.counter == nil {
		return nil, errors.New("call failed")
	}
	return self.counter, nil
}

func (self *fakeNFT) SetApprovalForAll(ctx context.Context, operator common.Address, approved bool) (*types.Transaction, error) {
	self.log.add("approve")
	if self.approveErr != nil {
		return nil, self.approveErr
	}
	self.approvalCalls = append(self.approvalCalls, operator)
	return types.NewTx(&types.LegacyTx{Nonce: approveNonce}), nil
}

func (self *fakeNFT) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	self.log.add("isApprovedForAll")
	return self.approved, nil
}

func (self *fakeNFT) MintedTokenID(receipt *types.Receipt, to common.Address) (*big.Int, error) {
	if self.noEvent || to != signerAddress {
		return nil, eth.ErrEventNotFound
	}
	return self.tokenID, nil
}

type listing struct {
	nft     common.Address
	tokenID *big.Int
	price   *big.Int
}

type fakeMarketplace struct {
	log *callLog

	itemID   *big.Int
	listErr  error
	listings []listing
}

func (self *fakeMarketplace) Address() common.Address {
	return marketplaceAddress
}

func (self *fakeMarketplace) MakeItem(ctx context.Context, nft common.Address, tokenID, price *big.Int) (*types.Transaction, error) {
	self.log.add("makeItem")
	if self.listErr != nil {
		return nil, self.listErr
	}
	self.listings = append(self.listings, listing{nft: nft, tokenID: tokenID, price: price})
	return types.NewTx(&types.LegacyTx{Nonce: listNonce}), nil
}

func (self *fakeMarketplace) ItemCount(ctx context.Context) (*big.Int, error) {
	return self.itemID, nil
}

func (self *fakeMarketplace) ListedItemID(receipt *types.Receipt) (*big.Int, error) {
	if self.itemID == nil {
		return nil, eth.ErrEventNotFound
	}
	return self.itemID, nil
}

// Confirms every transaction unless an error is set for its nonce
type fakeChain struct {
	log *callLog

	contracts   *eth.Contracts
	contractErr error
	waitErr     map[uint64]error
	confirmed   map[uint64]int

	// Errors of transactions looked up by hash
	minedErr map[common.Hash]error
}

func (self *fakeChain) GetContracts(identity eth.ChainIdentity) (*eth.Contracts, error) {
	if self.contractErr != nil {
		return nil, self.contractErr
	}
	contracts := *self.contracts
	contracts.Identity = identity
	return &contracts, nil
}

func (self *fakeChain) WaitConfirmed(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	self.log.add("wait")
	if err := self.waitErr[tx.Nonce()]; err != nil {
		return nil, err
	}
	self.confirmed[tx.Nonce()]++
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash(), BlockNumber: big.NewInt(1)}, nil
}

func (self *fakeChain) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	self.log.add("waitMined")
	if err := self.minedErr[hash]; err != nil {
		return nil, err
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash, BlockNumber: big.NewInt(1)}, nil
}

// Hash of the transaction sent by fakeNFT.Mint
func mintTxHash() common.Hash {
	return types.NewTx(&types.LegacyTx{Nonce: mintNonce}).Hash()
}

// Journal whose saves can be made to fail
type failingJournal struct {
	*MemoryJournal
	err error
}

func (self *failingJournal) Save(ctx context.Context, record *model.Publication) error {
	if self.err != nil {
		return self.err
	}
	return self.MemoryJournal.Save(ctx, record)
}
