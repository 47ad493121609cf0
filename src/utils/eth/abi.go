package eth

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Subset of the NFT contract (ERC-721 with a public mint) used by the publisher
const NftABIJSON = `[
	{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"_tokenURI","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"tokenCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"setApprovalForAll","stateMutability":"nonpayable","inputs":[{"name":"operator","type":"address"},{"name":"approved","type":"bool"}],"outputs":[]},
	{"type":"function","name":"isApprovedForAll","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"operator","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":true,"name":"tokenId","type":"uint256"}]},
	{"type":"event","name":"ApprovalForAll","anonymous":false,"inputs":[{"indexed":true,"name":"owner","type":"address"},{"indexed":true,"name":"operator","type":"address"},{"indexed":false,"name":"approved","type":"bool"}]}
]`

// Subset of the marketplace contract used by the publisher
const MarketplaceABIJSON = `[
	{"type":"function","name":"makeItem","stateMutability":"nonpayable","inputs":[{"name":"_nft","type":"address"},{"name":"_tokenId","type":"uint256"},{"name":"_price","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"itemCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"feePercent","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"Offered","anonymous":false,"inputs":[{"indexed":false,"name":"itemId","type":"uint256"},{"indexed":true,"name":"nft","type":"address"},{"indexed":false,"name":"tokenId","type":"uint256"},{"indexed":false,"name":"price","type":"uint256"},{"indexed":true,"name":"seller","type":"address"}]}
]`

var (
	NftABI         = mustParseABI(NftABIJSON)
	MarketplaceABI = mustParseABI(MarketplaceABIJSON)
)

func mustParseABI(raw string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return &parsed
}
