package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/warp-contracts/publisher/src/utils/config"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Source of the signing account
type Wallet interface {
	// Unlocks the account. May ask the user for access.
	Open(ctx context.Context) (*Signer, error)
}

// Unlocked account
type Signer struct {
	Address common.Address
	key     *ecdsa.PrivateKey
}

func NewSigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{
		Address: crypto.PubkeyToAddress(key.PublicKey),
		key:     key,
	}
}

func (self *Signer) TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(self.key, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// Account from a hex encoded private key
type PrivateKeyWallet struct {
	hexKey string
}

func NewPrivateKeyWallet(hexKey string) *PrivateKeyWallet {
	return &PrivateKeyWallet{hexKey: hexKey}
}

func (self *PrivateKeyWallet) Open(ctx context.Context) (*Signer, error) {
	hexKey := strings.TrimPrefix(strings.TrimSpace(self.hexKey), "0x")
	if hexKey == "" {
		return nil, fmt.Errorf("%w: private key not set", ErrWalletUnavailable)
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWalletUnavailable, err)
	}

	return NewSigner(key), nil
}

// Asks for the keystore passphrase. Returning ErrUserRejected or an empty passphrase declines access.
type PassphrasePrompt func(ctx context.Context, path string) (string, error)

// Account from an encrypted go-ethereum keystore file
type KeystoreWallet struct {
	path   string
	prompt PassphrasePrompt
}

func NewKeystoreWallet(path string, prompt PassphrasePrompt) *KeystoreWallet {
	return &KeystoreWallet{path: path, prompt: prompt}
}

func (self *KeystoreWallet) Open(ctx context.Context) (*Signer, error) {
	keyJSON, err := os.ReadFile(self.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWalletUnavailable, err)
	}

	if self.prompt == nil {
		return nil, fmt.Errorf("%w: no passphrase prompt", ErrUserRejected)
	}

	passphrase, err := self.prompt(ctx, self.path)
	if err != nil {
		if errors.Is(err, ErrUserRejected) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUserRejected, err)
	}
	if passphrase == "" {
		return nil, fmt.Errorf("%w: empty passphrase", ErrUserRejected)
	}

	key, err := keystore.DecryptKey(keyJSON, passphrase)
	if err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return nil, fmt.Errorf("%w: %w", ErrUserRejected, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrWalletUnavailable, err)
	}

	return NewSigner(key.PrivateKey), nil
}

// Picks the wallet from configuration.
// Without any configured account the returned wallet fails with ErrWalletUnavailable.
func NewWallet(config *config.Chain, prompt PassphrasePrompt) Wallet {
	if config.PrivateKey == "" && config.KeystorePath != "" {
		return NewKeystoreWallet(config.KeystorePath, prompt)
	}
	return NewPrivateKeyWallet(config.PrivateKey)
}
