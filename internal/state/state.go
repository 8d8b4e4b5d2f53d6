package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"

	sdkmath "cosmossdk.io/math"
)

type State struct {
	Height int64 `json:"height"`
	// Time is the unix second timestamp of the block currently being executed.
	Time int64 `json:"time"`

	Accounts    map[string]sdkmath.Int `json:"accounts"`
	AccountKeys map[string][]byte      `json:"accountKeys,omitempty"` // addr -> ed25519 pubkey (32 bytes)
	NonceMax    map[string]uint64      `json:"nonceMax,omitempty"`    // signer -> last accepted tx.nonce
	Roles       map[string][]Role      `json:"roles,omitempty"`       // addr -> sorted role set

	Manager          ManagerConfig          `json:"manager"`
	NextTournamentID uint64                 `json:"nextTournamentId"`
	Tournaments      map[uint64]*Tournament `json:"tournaments"`

	NextGapFillerNonce uint64                     `json:"nextGapFillerNonce"`
	GapFillers         map[string]*GapFiller      `json:"gapFillers,omitempty"`
	Registries         map[string]*TicketRegistry `json:"registries,omitempty"`
}

func NewState() *State {
	st := &State{
		Manager: ManagerConfig{Distribution: DefaultDistributionTable()},
	}
	st.normalize()
	return st
}

// Unmarshal decodes a JSON snapshot produced by Marshal.
func Unmarshal(b []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	st.normalize()
	return &st, nil
}

func (s *State) Marshal() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("state is nil")
	}
	b, err := s.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode state clone: %w", err)
	}
	return Unmarshal(b)
}

// normalize fills in maps and amounts that are absent from older snapshots.
func (s *State) normalize() {
	if s.Accounts == nil {
		s.Accounts = map[string]sdkmath.Int{}
	}
	for k, v := range s.Accounts {
		if v.IsNil() {
			s.Accounts[k] = sdkmath.ZeroInt()
		}
	}
	if s.AccountKeys == nil {
		s.AccountKeys = map[string][]byte{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[string]uint64{}
	}
	if s.Roles == nil {
		s.Roles = map[string][]Role{}
	}
	if s.Tournaments == nil {
		s.Tournaments = map[uint64]*Tournament{}
	}
	for _, t := range s.Tournaments {
		t.normalize()
	}
	if s.NextTournamentID == 0 {
		s.NextTournamentID = 1
	}
	if s.NextGapFillerNonce == 0 {
		s.NextGapFillerNonce = 1
	}
	if s.GapFillers == nil {
		s.GapFillers = map[string]*GapFiller{}
	}
	if s.Registries == nil {
		s.Registries = map[string]*TicketRegistry{}
	}
	for _, r := range s.Registries {
		if r.Holdings == nil {
			r.Holdings = map[string]uint64{}
		}
	}
}

func (s *State) AppHash() []byte {
	// Maps are flattened into sorted slices so the hash only depends on content.
	type accountKV struct {
		Addr    string      `json:"addr"`
		Balance sdkmath.Int `json:"balance"`
	}
	type accountKeyKV struct {
		Addr   string `json:"addr"`
		PubKey []byte `json:"pubKey"`
	}
	type nonceKV struct {
		Signer string `json:"signer"`
		Nonce  uint64 `json:"nonce"`
	}
	type roleKV struct {
		Addr  string `json:"addr"`
		Roles []Role `json:"roles"`
	}

	accounts := make([]accountKV, 0, len(s.Accounts))
	for k, v := range s.Accounts {
		accounts = append(accounts, accountKV{Addr: k, Balance: v})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Addr < accounts[j].Addr })

	accountKeys := make([]accountKeyKV, 0, len(s.AccountKeys))
	for k, v := range s.AccountKeys {
		accountKeys = append(accountKeys, accountKeyKV{Addr: k, PubKey: v})
	}
	sort.Slice(accountKeys, func(i, j int) bool { return accountKeys[i].Addr < accountKeys[j].Addr })

	nonces := make([]nonceKV, 0, len(s.NonceMax))
	for k, v := range s.NonceMax {
		nonces = append(nonces, nonceKV{Signer: k, Nonce: v})
	}
	sort.Slice(nonces, func(i, j int) bool { return nonces[i].Signer < nonces[j].Signer })

	roles := make([]roleKV, 0, len(s.Roles))
	for k, v := range s.Roles {
		if len(v) == 0 {
			continue
		}
		roles = append(roles, roleKV{Addr: k, Roles: v})
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Addr < roles[j].Addr })

	tournaments := make([]*Tournament, 0, len(s.Tournaments))
	for _, t := range s.Tournaments {
		tournaments = append(tournaments, t)
	}
	sort.Slice(tournaments, func(i, j int) bool { return tournaments[i].ID < tournaments[j].ID })

	gapFillers := make([]*GapFiller, 0, len(s.GapFillers))
	for _, g := range s.GapFillers {
		gapFillers = append(gapFillers, g)
	}
	sort.Slice(gapFillers, func(i, j int) bool { return gapFillers[i].Address < gapFillers[j].Address })

	registries := make([]*TicketRegistry, 0, len(s.Registries))
	for _, r := range s.Registries {
		registries = append(registries, r)
	}
	sort.Slice(registries, func(i, j int) bool { return registries[i].Address < registries[j].Address })

	normalized := struct {
		Height             int64             `json:"height"`
		Time               int64             `json:"time"`
		Accounts           []accountKV       `json:"accounts"`
		AccountKeys        []accountKeyKV    `json:"accountKeys,omitempty"`
		NonceMax           []nonceKV         `json:"nonceMax,omitempty"`
		Roles              []roleKV          `json:"roles,omitempty"`
		Manager            ManagerConfig     `json:"manager"`
		NextTournamentID   uint64            `json:"nextTournamentId"`
		Tournaments        []*Tournament     `json:"tournaments"`
		NextGapFillerNonce uint64            `json:"nextGapFillerNonce"`
		GapFillers         []*GapFiller      `json:"gapFillers,omitempty"`
		Registries         []*TicketRegistry `json:"registries,omitempty"`
	}{
		Height:             s.Height,
		Time:               s.Time,
		Accounts:           accounts,
		AccountKeys:        accountKeys,
		NonceMax:           nonces,
		Roles:              roles,
		Manager:            s.Manager,
		NextTournamentID:   s.NextTournamentID,
		Tournaments:        tournaments,
		NextGapFillerNonce: s.NextGapFillerNonce,
		GapFillers:         gapFillers,
		Registries:         registries,
	}

	b, _ := json.Marshal(normalized)
	sum := sha256.Sum256(b)
	return sum[:]
}
