package tournament

import (
	sdkmath "cosmossdk.io/math"

	"onchaintournament/internal/state"
	"onchaintournament/internal/types"
)

// Shares is the breakdown of one payment across the distribution table.
type Shares struct {
	Jackpot  sdkmath.Int
	DAO      sdkmath.Int
	Staking  sdkmath.Int
	Retained sdkmath.Int
}

// Total returns the sum of all four parts. It always equals the split amount.
func (s Shares) Total() sdkmath.Int {
	return s.Jackpot.Add(s.DAO).Add(s.Staking).Add(s.Retained)
}

// Split computes floor(amount*bps/10000) for each destination. The rounding
// remainder stays in Retained.
func Split(amount sdkmath.Int, table state.DistributionTable) (Shares, error) {
	if amount.IsNil() || amount.IsNegative() {
		return Shares{}, types.ErrInvalidAmount.Wrap("split amount must be >= 0")
	}
	if err := table.ValidateShares(); err != nil {
		return Shares{}, types.ErrInvalidState.Wrap(err.Error())
	}
	jackpot, err := bpsOf(amount, table.JackpotBps)
	if err != nil {
		return Shares{}, err
	}
	dao, err := bpsOf(amount, table.DAOBps)
	if err != nil {
		return Shares{}, err
	}
	staking, err := bpsOf(amount, table.StakingBps)
	if err != nil {
		return Shares{}, err
	}
	return Shares{
		Jackpot:  jackpot,
		DAO:      dao,
		Staking:  staking,
		Retained: amount.Sub(jackpot).Sub(dao).Sub(staking),
	}, nil
}

func bpsOf(amount sdkmath.Int, bps uint32) (sdkmath.Int, error) {
	if bps == 0 || amount.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	prod, err := amount.SafeMul(sdkmath.NewIntFromUint64(uint64(bps)))
	if err != nil {
		return sdkmath.Int{}, types.ErrInvalidAmount.Wrapf("share of %s overflows", amount)
	}
	return prod.Quo(sdkmath.NewIntFromUint64(uint64(state.BpsDenominator))), nil
}
