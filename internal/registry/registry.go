// Package registry implements the ticket registry collaborator: one
// proof-of-purchase ledger per tournament, addressed deterministically from
// the issuing manager.
package registry

import (
	"onchaintournament/internal/state"
	"onchaintournament/internal/types"
)

// Registry is the surface the tournament manager depends on.
type Registry interface {
	// Create allocates the registry for a tournament and returns its address.
	Create(st *state.State, tournamentID uint64) (string, error)
	// Mint records quantity units for holder in the registry at address.
	Mint(st *state.State, address, holder string, quantity uint64) error
}

// Ledger stores registries inside the chain state.
type Ledger struct {
	issuer string
}

var _ Registry = (*Ledger)(nil)

// NewLedger returns a Ledger whose registry addresses derive from issuer.
func NewLedger(issuer string) *Ledger {
	return &Ledger{issuer: issuer}
}

func (l *Ledger) Create(st *state.State, tournamentID uint64) (string, error) {
	if st == nil {
		return "", types.ErrDependencyFailure.Wrap("state is nil")
	}
	if tournamentID == 0 {
		return "", types.ErrInvalidRequest.Wrap("tournament id must be > 0")
	}
	addr := state.DeriveAddress(l.issuer, tournamentID)
	if _, ok := st.Registries[addr]; ok {
		return "", types.ErrDependencyFailure.Wrapf("registry %s already exists", addr)
	}
	st.Registries[addr] = &state.TicketRegistry{
		Address:      addr,
		TournamentID: tournamentID,
		Holdings:     map[string]uint64{},
	}
	return addr, nil
}

func (l *Ledger) Mint(st *state.State, address, holder string, quantity uint64) error {
	if st == nil {
		return types.ErrDependencyFailure.Wrap("state is nil")
	}
	if holder == "" {
		return types.ErrInvalidRequest.Wrap("missing holder")
	}
	if quantity == 0 {
		return types.ErrInvalidRequest.Wrap("quantity must be > 0")
	}
	r := st.Registries[address]
	if r == nil {
		return types.ErrDependencyFailure.Wrapf("registry %s not found", address)
	}
	if r.TotalSupply > ^uint64(0)-quantity {
		return types.ErrDependencyFailure.Wrap("registry supply overflows uint64")
	}
	r.TotalSupply += quantity
	r.Holdings[holder] += quantity
	return nil
}

// Holding returns the units recorded for holder, or 0 when the registry is
// unknown.
func Holding(st *state.State, address, holder string) uint64 {
	if st == nil {
		return 0
	}
	r := st.Registries[address]
	if r == nil {
		return 0
	}
	return r.Holdings[holder]
}
