package config

import (
	"time"

	"github.com/spf13/viper"
)

type Chain struct {
	// JSON-RPC endpoint of the node
	RpcUrl string

	// Chain id used for signing. 0 means it's taken from the node
	ChainId int64

	// Deployed contracts
	NftAddress         string
	MarketplaceAddress string

	// Hex encoded private key of the signer. Takes precedence over the keystore
	PrivateKey string

	// Path to a keystore file, passphrase is asked for upon connecting
	KeystorePath string

	// Max time to wait for a transaction receipt. After that the transaction's state is unknown
	ConfirmationTimeout time.Duration

	// Max time between receipt polls
	ConfirmationPollInterval time.Duration

	// Number of blocks that need to be built on top of the receipt's block, 0 or 1 means the receipt is enough
	Confirmations uint64

	// Gas limit for contract writes, 0 means estimate
	GasLimit uint64

	// Balance (in ETH) below which a warning is logged upon connecting
	LowBalanceWarning string
}

func setChainDefaults(v *viper.Viper) {
	v.SetDefault("Chain.RpcUrl", "http://127.0.0.1:8545")
	v.SetDefault("Chain.ChainId", "0")
	v.SetDefault("Chain.ConfirmationTimeout", "5m")
	v.SetDefault("Chain.ConfirmationPollInterval", "5s")
	v.SetDefault("Chain.Confirmations", "1")
	v.SetDefault("Chain.GasLimit", "0")
	v.SetDefault("Chain.LowBalanceWarning", "0.01")
}
