package tournament

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"onchaintournament/internal/state"
	"onchaintournament/internal/types"
)

func ether(n int64) sdkmath.Int {
	return sdkmath.NewInt(n).Mul(sdkmath.NewInt(1_000_000_000_000_000_000))
}

func mustInt(t *testing.T, s string) sdkmath.Int {
	t.Helper()
	v, ok := sdkmath.NewIntFromString(s)
	require.True(t, ok, "bad int %q", s)
	return v
}

func TestSplit_DefaultTable(t *testing.T) {
	// 5 ether at 50/150/100 bps.
	shares, err := Split(ether(5), state.DefaultDistributionTable())
	require.NoError(t, err)
	require.Equal(t, "25000000000000000", shares.Jackpot.String())
	require.Equal(t, "75000000000000000", shares.DAO.String())
	require.Equal(t, "50000000000000000", shares.Staking.String())
	require.Equal(t, "4850000000000000000", shares.Retained.String())
	require.True(t, shares.Total().Equal(ether(5)))
}

func TestSplit_RemainderStaysRetained(t *testing.T) {
	shares, err := Split(sdkmath.NewInt(199), state.DefaultDistributionTable())
	require.NoError(t, err)
	// floor(199*50/10000)=0, floor(199*150/10000)=2, floor(199*100/10000)=1
	require.Equal(t, int64(0), shares.Jackpot.Int64())
	require.Equal(t, int64(2), shares.DAO.Int64())
	require.Equal(t, int64(1), shares.Staking.Int64())
	require.Equal(t, int64(196), shares.Retained.Int64())
}

func TestSplit_Zero(t *testing.T) {
	shares, err := Split(sdkmath.ZeroInt(), state.DefaultDistributionTable())
	require.NoError(t, err)
	require.True(t, shares.Total().IsZero())
}

func TestSplit_Rejects(t *testing.T) {
	_, err := Split(sdkmath.NewInt(-1), state.DefaultDistributionTable())
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	_, err = Split(sdkmath.Int{}, state.DefaultDistributionTable())
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	bad := state.DistributionTable{JackpotBps: 6000, DAOBps: 4000, StakingBps: 1}
	_, err = Split(sdkmath.NewInt(100), bad)
	require.ErrorIs(t, err, types.ErrInvalidState)
}

func TestSplit_FullTable(t *testing.T) {
	table := state.DistributionTable{JackpotBps: 5000, DAOBps: 3000, StakingBps: 2000}
	shares, err := Split(sdkmath.NewInt(10001), table)
	require.NoError(t, err)
	require.Equal(t, int64(5000), shares.Jackpot.Int64())
	require.Equal(t, int64(3000), shares.DAO.Int64())
	require.Equal(t, int64(2000), shares.Staking.Int64())
	require.Equal(t, int64(1), shares.Retained.Int64())
}

func FuzzSplit_Conserves(f *testing.F) {
	f.Add(uint64(5_000_000_000), uint32(50), uint32(150), uint32(100))
	f.Add(uint64(1), uint32(0), uint32(0), uint32(0))
	f.Add(uint64(9999), uint32(3333), uint32(3333), uint32(3334))
	f.Fuzz(func(t *testing.T, amount uint64, j, d, s uint32) {
		table := state.DistributionTable{
			JackpotBps: j % (state.BpsDenominator + 1),
			DAOBps:     d % (state.BpsDenominator + 1),
			StakingBps: s % (state.BpsDenominator + 1),
		}
		amt := sdkmath.NewIntFromUint64(amount).Mul(sdkmath.NewInt(1_000_000_007))
		shares, err := Split(amt, table)
		if table.ValidateShares() != nil {
			require.ErrorIs(t, err, types.ErrInvalidState)
			return
		}
		require.NoError(t, err)
		require.True(t, shares.Total().Equal(amt))
		require.False(t, shares.Retained.IsNegative())
		for _, part := range []sdkmath.Int{shares.Jackpot, shares.DAO, shares.Staking} {
			require.False(t, part.IsNegative())
			require.True(t, part.LTE(amt))
		}
	})
}
