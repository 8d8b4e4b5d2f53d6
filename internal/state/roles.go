package state

import (
	"sort"

	"onchaintournament/internal/types"
)

type Role string

const (
	RoleAdmin             Role = "admin"
	RoleTournamentStarter Role = "tournament_starter"
	RoleRewardDistributor Role = "reward_distributor"
	RoleContractCaller    Role = "contract_caller"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTournamentStarter, RoleRewardDistributor, RoleContractCaller:
		return true
	default:
		return false
	}
}

func (s *State) HasRole(addr string, role Role) bool {
	if addr == "" {
		return false
	}
	for _, r := range s.Roles[addr] {
		if r == role {
			return true
		}
	}
	return false
}

// GrantRole adds role to addr and reports whether the set changed.
func (s *State) GrantRole(addr string, role Role) bool {
	if s.HasRole(addr, role) {
		return false
	}
	roles := append(append([]Role(nil), s.Roles[addr]...), role)
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	s.Roles[addr] = roles
	return true
}

// RevokeRole removes role from addr and reports whether the set changed.
func (s *State) RevokeRole(addr string, role Role) bool {
	cur := s.Roles[addr]
	out := make([]Role, 0, len(cur))
	for _, r := range cur {
		if r != role {
			out = append(out, r)
		}
	}
	if len(out) == len(cur) {
		return false
	}
	if len(out) == 0 {
		delete(s.Roles, addr)
	} else {
		s.Roles[addr] = out
	}
	return true
}

func (s *State) RolesOf(addr string) []Role {
	return append([]Role(nil), s.Roles[addr]...)
}

// RequireRole fails with ErrAccessDenied unless addr holds role.
func (s *State) RequireRole(addr string, role Role) error {
	if !s.HasRole(addr, role) {
		return types.ErrAccessDenied.Wrapf("%q lacks role %s", addr, role)
	}
	return nil
}
