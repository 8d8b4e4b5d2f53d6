package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"onchaintournament/internal/state"
	"onchaintournament/internal/types"
)

func TestLedger_CreateAndMint(t *testing.T) {
	st := state.NewState()
	l := NewLedger(state.ManagerAddress)

	addr, err := l.Create(st, 1)
	require.NoError(t, err)
	require.Equal(t, state.DeriveAddress(state.ManagerAddress, 1), addr)

	_, err = l.Create(st, 1)
	require.ErrorIs(t, err, types.ErrDependencyFailure)

	require.NoError(t, l.Mint(st, addr, "alice", 3))
	require.NoError(t, l.Mint(st, addr, "alice", 2))
	require.NoError(t, l.Mint(st, addr, "bob", 1))
	require.Equal(t, uint64(5), Holding(st, addr, "alice"))
	require.Equal(t, uint64(1), Holding(st, addr, "bob"))
	require.Equal(t, uint64(6), st.Registries[addr].TotalSupply)
}

func TestLedger_MintRejects(t *testing.T) {
	st := state.NewState()
	l := NewLedger(state.ManagerAddress)
	addr, err := l.Create(st, 9)
	require.NoError(t, err)

	require.ErrorIs(t, l.Mint(st, "missing", "alice", 1), types.ErrDependencyFailure)
	require.ErrorIs(t, l.Mint(st, addr, "", 1), types.ErrInvalidRequest)
	require.ErrorIs(t, l.Mint(st, addr, "alice", 0), types.ErrInvalidRequest)

	st.Registries[addr].TotalSupply = ^uint64(0)
	require.ErrorIs(t, l.Mint(st, addr, "alice", 1), types.ErrDependencyFailure)

	require.Zero(t, Holding(st, "missing", "alice"))
}
