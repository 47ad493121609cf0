package eth

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals of the chain's native currency
const EtherDecimals = 18

// Converts an amount of ETH into wei. Fractions of wei are rejected.
func EtherToWei(ether decimal.Decimal) (*big.Int, error) {
	if !ether.IsPositive() {
		return nil, ErrNotPositive
	}
	wei := ether.Shift(EtherDecimals)
	if !wei.IsInteger() {
		return nil, ErrTooPrecise
	}
	return wei.BigInt(), nil
}

func WeiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals)
}
