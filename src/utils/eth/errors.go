package eth

import "errors"

var (
	// No wallet is configured or the node behind it can't be reached
	ErrWalletUnavailable = errors.New("wallet unavailable")

	// Account access was declined
	ErrUserRejected = errors.New("user rejected account access")

	// Configured contract address is malformed
	ErrInvalidAddress = errors.New("invalid address")

	// Identity comes from a session that was disconnected or switched accounts
	ErrSessionExpired = errors.New("chain identity is no longer valid")

	// Transaction was mined but reverted
	ErrTransactionReverted = errors.New("transaction reverted")

	// Receipt didn't appear in time. The transaction may still be mined later.
	ErrConfirmationTimeout = errors.New("confirmation timeout")

	ErrEventNotFound = errors.New("desired transaction log not found")
	ErrTooPrecise    = errors.New("amount has more decimals than the smallest unit allows")
	ErrNotPositive   = errors.New("amount must be positive")
)
