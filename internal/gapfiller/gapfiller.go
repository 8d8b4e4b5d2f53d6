// Package gapfiller implements the funded reserve that tops up tournaments
// which close below their minimum ticket count.
package gapfiller

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"onchaintournament/internal/state"
	"onchaintournament/internal/types"
)

// Deploy creates a gap filler administered by admin that accepts fill requests
// from manager only.
func Deploy(st *state.State, admin, manager string) (*state.GapFiller, []types.Event, error) {
	if st == nil {
		return nil, nil, fmt.Errorf("state is nil")
	}
	if admin == "" {
		return nil, nil, types.ErrInvalidRequest.Wrap("missing admin")
	}
	if manager == "" {
		return nil, nil, types.ErrInvalidRequest.Wrap("missing manager")
	}
	nonce := st.NextGapFillerNonce
	addr := state.DeriveAddress(state.GapFillerFactoryAddress, nonce)
	if _, ok := st.GapFillers[addr]; ok {
		return nil, nil, types.ErrInvalidState.Wrapf("gap filler %s already deployed", addr)
	}
	st.NextGapFillerNonce++

	g := &state.GapFiller{Address: addr, Admin: admin, Manager: manager}
	st.GapFillers[addr] = g
	return g, []types.Event{types.NewEvent(types.EventTypeGapFillerDeployed,
		"gapFiller", addr,
		"admin", admin,
		"manager", manager,
	)}, nil
}

func lookup(st *state.State, addr string) *state.GapFiller {
	if st == nil || addr == "" {
		return nil
	}
	return st.GapFillers[addr]
}

// RequestFill moves amount from the gap filler reserve to caller. Only the
// gap filler's stored manager, holding the contract-caller role, may call it.
func RequestFill(st *state.State, caller, addr string, tournamentID uint64, amount sdkmath.Int) ([]types.Event, error) {
	g := lookup(st, addr)
	if g == nil {
		return nil, types.ErrDependencyFailure.Wrapf("gap filler %q not deployed", addr)
	}
	if caller == "" || caller != g.Manager {
		return nil, types.ErrAccessDenied.Wrapf("caller %q is not the manager of gap filler %s", caller, addr)
	}
	if !st.HasRole(caller, state.RoleContractCaller) {
		return nil, types.ErrAccessDenied.Wrapf("caller %q lacks role %s", caller, state.RoleContractCaller)
	}
	if amount.IsNil() || !amount.IsPositive() {
		return nil, types.ErrInvalidAmount.Wrap("fill amount must be > 0")
	}
	reserve := st.Balance(g.Address)
	if reserve.LT(amount) {
		return nil, types.ErrDependencyFailure.Wrapf("gap filler reserve too low: have=%s need=%s", reserve, amount)
	}
	if err := st.Transfer(g.Address, caller, amount); err != nil {
		return nil, types.ErrDependencyFailure.Wrap(err.Error())
	}
	return []types.Event{types.NewEvent(types.EventTypeGapFilled,
		"gapFiller", g.Address,
		"tournamentId", fmt.Sprintf("%d", tournamentID),
		"amount", amount.String(),
	)}, nil
}

// Withdraw pays amount from the reserve to the gap filler administrator.
func Withdraw(st *state.State, caller, addr string, amount sdkmath.Int) ([]types.Event, error) {
	g := lookup(st, addr)
	if g == nil {
		return nil, types.ErrInvalidRequest.Wrapf("gap filler %q not deployed", addr)
	}
	if caller == "" || caller != g.Admin {
		return nil, types.ErrAccessDenied.Wrapf("caller %q is not the admin of gap filler %s", caller, addr)
	}
	if amount.IsNil() || !amount.IsPositive() {
		return nil, types.ErrInvalidAmount.Wrap("withdraw amount must be > 0")
	}
	reserve := st.Balance(g.Address)
	if reserve.LT(amount) {
		return nil, types.ErrInvalidAmount.Wrapf("withdraw exceeds reserve: have=%s want=%s", reserve, amount)
	}
	if err := st.Transfer(g.Address, caller, amount); err != nil {
		return nil, err
	}
	return []types.Event{types.NewEvent(types.EventTypeGapFillerWithdrawn,
		"gapFiller", g.Address,
		"to", caller,
		"amount", amount.String(),
	)}, nil
}

// Reserve returns the gap filler's held balance.
func Reserve(st *state.State, addr string) sdkmath.Int {
	if st == nil {
		return sdkmath.ZeroInt()
	}
	return st.Balance(addr)
}
