package state

import (
	sdkmath "cosmossdk.io/math"

	"onchaintournament/internal/types"
)

func (s *State) Balance(addr string) sdkmath.Int {
	bal, ok := s.Accounts[addr]
	if !ok || bal.IsNil() {
		return sdkmath.ZeroInt()
	}
	return bal
}

func (s *State) Credit(addr string, amount sdkmath.Int) error {
	if addr == "" {
		return types.ErrTransferFailure.Wrap("missing recipient")
	}
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrInvalidAmount.Wrap("negative credit")
	}
	sum, err := s.Balance(addr).SafeAdd(amount)
	if err != nil {
		return types.ErrTransferFailure.Wrapf("balance overflow: have=%s add=%s", s.Balance(addr), amount)
	}
	s.Accounts[addr] = sum
	return nil
}

func (s *State) Debit(addr string, amount sdkmath.Int) error {
	if addr == "" {
		return types.ErrTransferFailure.Wrap("missing sender")
	}
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrInvalidAmount.Wrap("negative debit")
	}
	bal := s.Balance(addr)
	if bal.LT(amount) {
		return types.ErrTransferFailure.Wrapf("insufficient funds: have=%s need=%s", bal, amount)
	}
	s.Accounts[addr] = bal.Sub(amount)
	return nil
}

// Transfer moves amount from one account to another. Callers rely on the
// enclosing staged execution for rollback when a later step fails.
func (s *State) Transfer(from, to string, amount sdkmath.Int) error {
	if to == "" {
		return types.ErrTransferFailure.Wrap("missing recipient")
	}
	if err := s.Debit(from, amount); err != nil {
		return err
	}
	return s.Credit(to, amount)
}
