package revshare

import "math/big"

// BpsDenominator is the fixed-point base for all share fractions: one basis
// point is 1/10000.
const BpsDenominator = 10_000

var (
	bpsDenom = big.NewInt(BpsDenominator)
	bpsHalf  = big.NewInt(BpsDenominator / 2)
)

// ComputeShare returns the portion of amount corresponding to bps under the
// given rounding mode. Out-of-range bps yields zero. The result is clamped to
// [min(0, amount), max(0, amount)], so for a non-negative amount it always
// holds that 0 <= share <= amount.
func ComputeShare(amount *big.Int, bps uint32, mode RoundingMode) *big.Int {
	if amount == nil || bps > BpsDenominator {
		return big.NewInt(0)
	}
	raw := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(bps)))
	if mode == RoundingHalfUp {
		if raw.Sign() >= 0 {
			raw.Add(raw, bpsHalf)
		} else {
			raw.Sub(raw, bpsHalf)
		}
	}
	// Quo truncates toward zero, which for the half-up adjustment above
	// lands ties away from zero.
	share := raw.Quo(raw, bpsDenom)

	lo, hi := big.NewInt(0), big.NewInt(0)
	if amount.Sign() < 0 {
		lo = amount
	} else {
		hi = amount
	}
	if share.Cmp(lo) < 0 {
		return new(big.Int).Set(lo)
	}
	if share.Cmp(hi) > 0 {
		return new(big.Int).Set(hi)
	}
	return share
}

// DistributionAmount computes a single holder's payout from supplied balance
// figures:
//
//	distributable = totalRevenue * shareBps / 10000
//	payout        = holderBalance * distributable / totalSupply
//
// Division truncates toward zero, so the ledger never over-distributes.
// Balance figures are trusted inputs supplied by the caller.
func DistributionAmount(totalRevenue, totalSupply, holderBalance *big.Int, shareBps uint32) (*big.Int, error) {
	if totalSupply == nil || totalSupply.Sign() == 0 {
		return nil, ErrInvalidAmount
	}
	if totalRevenue == nil || totalRevenue.Sign() == 0 || holderBalance == nil || holderBalance.Sign() == 0 {
		return big.NewInt(0), nil
	}
	distributable := new(big.Int).Mul(totalRevenue, new(big.Int).SetUint64(uint64(shareBps)))
	distributable.Quo(distributable, bpsDenom)
	payout := new(big.Int).Mul(holderBalance, distributable)
	payout.Quo(payout, totalSupply)
	return payout, nil
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
