package state

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Genesis is the app_state document accepted at InitChain.
type Genesis struct {
	Admin        string                 `json:"admin"`
	Balances     map[string]sdkmath.Int `json:"balances,omitempty"`
	AccountKeys  map[string][]byte      `json:"accountKeys,omitempty"`
	Roles        map[string][]Role      `json:"roles,omitempty"`
	Distribution *DistributionTable     `json:"distribution,omitempty"`
}

func DecodeGenesis(b []byte) (Genesis, error) {
	var g Genesis
	if len(b) == 0 {
		return g, nil
	}
	if err := json.Unmarshal(b, &g); err != nil {
		return Genesis{}, fmt.Errorf("decode genesis: %w", err)
	}
	return g, nil
}

// Validate checks the document before a chain is started from it. The admin
// and every role holder must come with a signing key, and no key may be seeded
// for a module account.
func (g Genesis) Validate() error {
	if g.Admin == "" {
		return fmt.Errorf("genesis admin is required")
	}
	if err := g.requireKey(g.Admin); err != nil {
		return err
	}
	for addr := range g.Roles {
		if err := g.requireKey(addr); err != nil {
			return err
		}
	}
	for addr := range g.AccountKeys {
		if isModuleAddress(addr) {
			return fmt.Errorf("genesis accountKeys: %q is a module account", addr)
		}
	}
	return nil
}

func (g Genesis) requireKey(addr string) error {
	if len(g.AccountKeys[addr]) != ed25519.PublicKeySize {
		return fmt.Errorf("genesis accountKeys: missing %d-byte key for %q", ed25519.PublicKeySize, addr)
	}
	return nil
}

// Apply seeds st from the genesis document. The manager module account always
// receives the contract-caller role so it can draw on gap fillers.
func (g Genesis) Apply(st *State) error {
	if st == nil {
		return fmt.Errorf("state is nil")
	}
	if g.Admin != "" {
		st.GrantRole(g.Admin, RoleAdmin)
	}
	for addr, bal := range g.Balances {
		if err := st.Credit(addr, bal); err != nil {
			return fmt.Errorf("genesis balance %q: %w", addr, err)
		}
	}
	for addr, pub := range g.AccountKeys {
		st.AccountKeys[addr] = append([]byte(nil), pub...)
	}
	for addr, roles := range g.Roles {
		for _, r := range roles {
			if !r.Valid() {
				return fmt.Errorf("genesis role %q for %q: unknown role", r, addr)
			}
			st.GrantRole(addr, r)
		}
	}
	if g.Distribution != nil {
		if err := g.Distribution.ValidateShares(); err != nil {
			return fmt.Errorf("genesis distribution: %w", err)
		}
		st.Manager.Distribution = *g.Distribution
	}
	st.GrantRole(ManagerAddress, RoleContractCaller)
	return nil
}
