package publish

import (
	"math/big"

	"github.com/warp-contracts/publisher/src/utils/ipfs"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Confirmed mint
type TokenHandle struct {
	Contract common.Address
	TokenID  *big.Int
}

// Token listed on the marketplace.
// Only produced after confirmed mint, approval and listing transactions.
type ListingHandle struct {
	PublicationID string

	NFTContract common.Address
	TokenID     *big.Int

	// Price in ETH and in wei
	Price    decimal.Decimal
	PriceWei *big.Int

	// Marketplace item id, nil if the Offered event wasn't found
	ItemID *big.Int

	ContentID   ipfs.ContentID
	MetadataURI string

	TxHashes map[Stage]common.Hash
}

func (self *ListingHandle) Token() TokenHandle {
	return TokenHandle{Contract: self.NFTContract, TokenID: self.TokenID}
}

// Durable progress of a publication. Steps already done are skipped when resuming.
type ResumePoint struct {
	ContentID ipfs.ContentID
	TokenID   *big.Int
	Approved  bool

	// Mint that was sent but whose token isn't known yet. The token is looked up in its receipt instead of minting again.
	MintTx common.Hash
}

func (self ResumePoint) IsZero() bool {
	return self.ContentID == "" && self.TokenID == nil && !self.Approved && self.MintTx == (common.Hash{})
}
