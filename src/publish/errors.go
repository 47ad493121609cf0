package publish

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/warp-contracts/publisher/src/utils/eth"
	"github.com/warp-contracts/publisher/src/utils/ipfs"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// Transaction was rejected by the node or reverted
	ErrTransactionFailed = errors.New("transaction failed")

	// Mint got confirmed but neither the event nor the counter revealed the token id
	ErrTokenIdUnknown = errors.New("token id unknown")

	// Mint was sent but it's not known whether it got mined. Resuming could mint a second token.
	ErrMintUnresolved = errors.New("mint outcome unknown, check the transaction before publishing again")

	ErrNotFound       = errors.New("publication not found")
	ErrAlreadyListed  = errors.New("publication already listed")
	ErrSignerMismatch = errors.New("publication belongs to another signer")
	ErrStopping       = errors.New("publisher is stopping")
)

// Publication stopped at the given stage.
// Everything that became durable before the failure is carried along, so the publication can be resumed.
type Failure struct {
	PublicationID string
	Stage         Stage
	Cause         error

	ContentID ipfs.ContentID
	TokenID   *big.Int
	Approved  bool

	// Last transaction sent, empty if the failure happened before sending
	TxHash common.Hash
}

func (self *Failure) Error() string {
	if self.TokenID != nil {
		return fmt.Sprintf("%s failed (token %s): %v", self.Stage, self.TokenID, self.Cause)
	}
	return fmt.Sprintf("%s failed: %v", self.Stage, self.Cause)
}

func (self *Failure) Unwrap() error {
	return self.Cause
}

// Transaction was sent but its result isn't known. It may still get mined.
func (self *Failure) Unknown() bool {
	return errors.Is(self.Cause, eth.ErrConfirmationTimeout)
}

// Nothing durable happened on chain, publishing from scratch is safe
func (self *Failure) Retryable() bool {
	return self.TokenID == nil && !self.Unknown() && !errors.Is(self.Cause, ErrTokenIdUnknown)
}

func (self *Failure) ResumePoint() ResumePoint {
	point := ResumePoint{
		ContentID: self.ContentID,
		TokenID:   self.TokenID,
		Approved:  self.Approved,
	}
	if self.Stage == StageMint && self.TokenID == nil {
		point.MintTx = self.TxHash
	}
	return point
}

// Text shown to the user
func (self *Failure) Message() string {
	if self.Unknown() {
		switch self.Stage {
		case StageMint:
			return fmt.Sprintf("minting is still pending (tx %s), check it before trying again", self.TxHash.Hex())
		case StageApprove:
			return fmt.Sprintf("approval of your token #%s is still pending (tx %s), resume once it's confirmed", self.TokenID, self.TxHash.Hex())
		case StageList:
			return fmt.Sprintf("listing of your token #%s is still pending (tx %s), check it before resuming", self.TokenID, self.TxHash.Hex())
		}
	}

	switch self.Stage {
	case StageSession:
		return fmt.Sprintf("wallet session failed, reconnect and try again: %v", self.Cause)
	case StageUpload:
		return fmt.Sprintf("upload failed, nothing on chain yet: %v", self.Cause)
	case StageMint:
		if errors.Is(self.Cause, ErrTokenIdUnknown) {
			return fmt.Sprintf("minting succeeded (tx %s) but the token id couldn't be read: %v", self.TxHash.Hex(), self.Cause)
		}
		return fmt.Sprintf("minting failed, nothing on chain yet: %v", self.Cause)
	case StageApprove:
		return fmt.Sprintf("approval failed, your token #%s is minted but not approved for sale: %v", self.TokenID, self.Cause)
	case StageList:
		return fmt.Sprintf("listing failed, your token #%s is minted and approved but unlisted: %v", self.TokenID, self.Cause)
	default:
		return self.Error()
	}
}

// Submission errors and reverts both mean the transaction had no effect
func transactionFailed(err error) error {
	if errors.Is(err, eth.ErrConfirmationTimeout) || errors.Is(err, ErrTransactionFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
}
