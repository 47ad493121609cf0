package eth

import (
	"context"
	"errors"
	"fmt"

	"github.com/warp-contracts/publisher/src/utils/task"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	errNotDeepEnough = errors.New("not enough confirmations yet")
	errWaitTimedOut  = errors.New("no receipt in time")
)

// Waits until the transaction is mined (and buried under the configured number of blocks).
// Gives up after ConfirmationTimeout, the transaction's fate is unknown then.
func (self *Session) WaitConfirmed(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return self.WaitMined(ctx, tx.Hash())
}

// Same as WaitConfirmed, for a transaction known only by its hash
func (self *Session) WaitMined(ctx context.Context, hash common.Hash) (receipt *types.Receipt, err error) {
	backend, err := self.getBackend()
	if err != nil {
		return
	}

	if self.config.ConfirmationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, self.config.ConfirmationTimeout, errWaitTimedOut)
		defer cancel()
	}

	log := self.log.WithField("tx", hash.Hex())
	log.Debug("Waiting for confirmation")

	err = task.NewRetry().
		WithContext(ctx).
		WithInitialInterval(self.config.ConfirmationPollInterval / 5).
		WithMaxInterval(self.config.ConfirmationPollInterval).
		WithMaxElapsedTime(0).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			if !errors.Is(err, ethereum.NotFound) && !errors.Is(err, errNotDeepEnough) && ctx.Err() == nil {
				log.WithError(err).Warn("Failed to get receipt, retrying")
			}
			return err
		}).
		Run(func() (err error) {
			r, err := backend.TransactionReceipt(ctx, hash)
			if err != nil {
				return
			}

			if self.config.Confirmations > 1 && r.BlockNumber != nil {
				head, err := backend.BlockNumber(ctx)
				if err != nil {
					return err
				}
				if head+1 < r.BlockNumber.Uint64()+self.config.Confirmations {
					return errNotDeepEnough
				}
			}

			receipt = r
			return nil
		})
	if err != nil {
		if ctx.Err() != nil {
			// Either way the transaction may still get mined
			cause := context.Cause(ctx)
			if errors.Is(cause, errWaitTimedOut) {
				return nil, fmt.Errorf("%w: %s: no receipt after %s", ErrConfirmationTimeout, hash.Hex(), self.config.ConfirmationTimeout)
			}
			return nil, fmt.Errorf("%w: %s: wait interrupted: %w", ErrConfirmationTimeout, hash.Hex(), cause)
		}
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ErrTransactionReverted, hash.Hex())
	}

	log.WithField("block", receipt.BlockNumber).Debug("Confirmed")
	return receipt, nil
}
