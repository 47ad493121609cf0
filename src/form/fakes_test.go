package form

import (
	"context"
	"io"
	"math/big"
	"sync"

	"github.com/warp-contracts/publisher/src/publish"
	"github.com/warp-contracts/publisher/src/utils/eth"
	"github.com/warp-contracts/publisher/src/utils/ipfs"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type fakeStore struct {
	mtx      sync.Mutex
	cid      ipfs.ContentID
	err      error
	uploaded map[string][]byte
}

func (self *fakeStore) UploadFile(ctx context.Context, name string, reader io.Reader) (ipfs.ContentID, error) {
	if self.err != nil {
		return "", self.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()
	if self.uploaded == nil {
		self.uploaded = make(map[string][]byte)
	}
	self.uploaded[name] = data
	return self.cid, nil
}

type fakePublisher struct {
	mtx     sync.Mutex
	err     error
	drafts  []publish.DraftAsset
	resumed []string

	// Blocks Publish until closed
	release chan struct{}
	started chan struct{}
}

func (self *fakePublisher) Publish(ctx context.Context, identity eth.ChainIdentity, draft publish.DraftAsset) (*publish.ListingHandle, error) {
	if self.started != nil {
		close(self.started)
	}
	if self.release != nil {
		<-self.release
	}

	self.mtx.Lock()
	self.drafts = append(self.drafts, draft)
	self.mtx.Unlock()

	if self.err != nil {
		return nil, self.err
	}
	return listing("pub1", draft.Price), nil
}

func (self *fakePublisher) ResumeByID(ctx context.Context, identity eth.ChainIdentity, id string) (*publish.ListingHandle, error) {
	self.mtx.Lock()
	self.resumed = append(self.resumed, id)
	self.mtx.Unlock()

	if self.err != nil {
		return nil, self.err
	}
	return listing(id, decimal.RequireFromString("0.5")), nil
}

func listing(id string, price decimal.Decimal) *publish.ListingHandle {
	return &publish.ListingHandle{
		PublicationID: id,
		NFTContract:   common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		TokenID:       big.NewInt(7),
		Price:         price,
		PriceWei:      big.NewInt(500000000000000000),
		ItemID:        big.NewInt(1),
		ContentID:     "cidABC",
		MetadataURI:   "https://ipfs.io/ipfs/cidABC",
		TxHashes: map[publish.Stage]common.Hash{
			publish.StageList: common.HexToHash("0x03"),
		},
	}
}
