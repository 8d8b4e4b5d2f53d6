// Package tournament implements the tournament manager: ticket sales with
// automatic fee splitting, closure with gap filling, and reward payouts.
//
// Every operation mutates the supplied state in place and assumes the caller
// executes it against a staged copy, discarding the copy on error.
package tournament

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"onchaintournament/internal/gapfiller"
	"onchaintournament/internal/registry"
	"onchaintournament/internal/state"
	"onchaintournament/internal/types"
)

type Manager struct {
	address  string
	registry registry.Registry
}

// NewManager returns a manager holding funds at address and issuing ticket
// registries through reg.
func NewManager(address string, reg registry.Registry) *Manager {
	if address == "" {
		panic("tournament manager: address is empty")
	}
	if reg == nil {
		panic("tournament manager: registry is nil")
	}
	return &Manager{address: address, registry: reg}
}

func (m *Manager) Address() string { return m.address }

func (m *Manager) StartTournament(st *state.State, caller string, now int64, ticketPrice sdkmath.Int, minTickets uint64, endDate int64) (uint64, []types.Event, error) {
	if err := st.RequireRole(caller, state.RoleTournamentStarter); err != nil {
		return 0, nil, err
	}
	if ticketPrice.IsNil() || !ticketPrice.IsPositive() {
		return 0, nil, types.ErrInvalidAmount.Wrap("ticketPrice must be > 0")
	}
	if minTickets == 0 {
		return 0, nil, types.ErrInvalidRequest.Wrap("minTickets must be > 0")
	}
	if endDate <= now {
		return 0, nil, types.ErrInvalidRequest.Wrapf("endDate %d is not after now %d", endDate, now)
	}

	id := st.NextTournamentID
	if id == ^uint64(0) {
		return 0, nil, types.ErrInvalidState.Wrap("tournament id space exhausted")
	}
	regAddr, err := m.registry.Create(st, id)
	if err != nil {
		return 0, nil, err
	}
	st.NextTournamentID++

	st.Tournaments[id] = &state.Tournament{
		ID:                    id,
		Starter:               caller,
		TicketPrice:           ticketPrice,
		MinTickets:            minTickets,
		EndDate:               endDate,
		TotalCollected:        sdkmath.ZeroInt(),
		TicketRegistryAddress: regAddr,
		GapFilledAmount:       sdkmath.ZeroInt(),
		RewardsPaid:           sdkmath.ZeroInt(),
	}

	return id, []types.Event{
		types.NewEvent(types.EventTypeTournamentStarted,
			"tournamentId", u64(id),
			"ticketPrice", ticketPrice.String(),
			"minTickets", u64(minTickets),
			"endDate", fmt.Sprintf("%d", endDate),
			"ticketRegistry", regAddr,
		),
		types.NewEvent(types.EventTypeRegistryCreated,
			"tournamentId", u64(id),
			"address", regAddr,
		),
	}, nil
}

func (m *Manager) BuyTickets(st *state.State, buyer string, now int64, id uint64, quantity uint64, payment sdkmath.Int) ([]types.Event, error) {
	if buyer == "" {
		return nil, types.ErrInvalidRequest.Wrap("missing buyer")
	}
	t, err := get(st, id)
	if err != nil {
		return nil, err
	}
	if t.Ended {
		return nil, types.ErrInvalidState.Wrapf("tournament %d has ended", id)
	}
	if now >= t.EndDate {
		return nil, types.ErrInvalidState.Wrapf("tournament %d sales closed at %d", id, t.EndDate)
	}
	if quantity == 0 {
		return nil, types.ErrInvalidRequest.Wrap("quantity must be > 0")
	}
	cost, err := t.TicketPrice.SafeMul(sdkmath.NewIntFromUint64(quantity))
	if err != nil {
		return nil, types.ErrInvalidAmount.Wrap("ticket cost overflows")
	}
	if payment.IsNil() || !payment.Equal(cost) {
		return nil, types.ErrInvalidAmount.Wrapf("payment must equal %s (quantity %d x price %s)", cost, quantity, t.TicketPrice)
	}
	if t.TicketsSold > ^uint64(0)-quantity {
		return nil, types.ErrInvalidAmount.Wrap("ticketsSold overflows uint64")
	}

	if err := st.Transfer(buyer, m.address, payment); err != nil {
		return nil, err
	}
	shares, events, err := m.distribute(st, id, payment)
	if err != nil {
		return nil, err
	}
	t.TotalCollected = t.TotalCollected.Add(shares.Retained)
	t.TicketsSold += quantity

	if err := m.registry.Mint(st, t.TicketRegistryAddress, buyer, quantity); err != nil {
		return nil, err
	}

	events = append(events,
		types.NewEvent(types.EventTypeRegistryMinted,
			"tournamentId", u64(id),
			"address", t.TicketRegistryAddress,
			"holder", buyer,
			"quantity", u64(quantity),
		),
		types.NewEvent(types.EventTypeTicketsPurchased,
			"tournamentId", u64(id),
			"buyer", buyer,
			"quantity", u64(quantity),
			"payment", payment.String(),
			"ticketsSold", u64(t.TicketsSold),
			"totalCollected", t.TotalCollected.String(),
		),
	)
	return events, nil
}

// EndTournament closes a tournament. When real sales fell short of
// minTickets, the configured gap filler pays for the missing tickets and that
// payment is split like a purchase. Synthetic tickets are not minted in the
// ticket registry.
func (m *Manager) EndTournament(st *state.State, caller string, now int64, id uint64) ([]types.Event, error) {
	if err := st.RequireRole(caller, state.RoleTournamentStarter); err != nil {
		return nil, err
	}
	t, err := get(st, id)
	if err != nil {
		return nil, err
	}
	if t.Ended {
		return nil, types.ErrInvalidState.Wrapf("tournament %d already ended", id)
	}
	if now < t.EndDate {
		return nil, types.ErrInvalidState.Wrapf("tournament %d ends at %d (now %d)", id, t.EndDate, now)
	}

	var events []types.Event
	if t.TicketsSold < t.MinTickets {
		shortfall := t.MinTickets - t.TicketsSold
		amount, err := t.TicketPrice.SafeMul(sdkmath.NewIntFromUint64(shortfall))
		if err != nil {
			return nil, types.ErrInvalidAmount.Wrap("gap fill amount overflows")
		}
		if st.Manager.GapFiller == "" {
			return nil, types.ErrDependencyFailure.Wrap("no gap filler configured")
		}
		fillEvents, err := gapfiller.RequestFill(st, m.address, st.Manager.GapFiller, id, amount)
		if err != nil {
			return nil, err
		}
		events = append(events, fillEvents...)

		shares, splitEvents, err := m.distribute(st, id, amount)
		if err != nil {
			return nil, err
		}
		events = append(events, splitEvents...)

		t.TotalCollected = t.TotalCollected.Add(shares.Retained)
		t.GapFilledTickets = shortfall
		t.GapFilledAmount = amount
		t.TicketsSold = t.MinTickets
	}
	t.Ended = true

	events = append(events, types.NewEvent(types.EventTypeTournamentEnded,
		"tournamentId", u64(id),
		"ticketsSold", u64(t.TicketsSold),
		"gapFilledTickets", u64(t.GapFilledTickets),
		"totalCollected", t.TotalCollected.String(),
	))
	return events, nil
}

func (m *Manager) DistributeRewards(st *state.State, caller string, id uint64, winners []string, amounts []sdkmath.Int) ([]types.Event, error) {
	if err := st.RequireRole(caller, state.RoleRewardDistributor); err != nil {
		return nil, err
	}
	t, err := get(st, id)
	if err != nil {
		return nil, err
	}
	if !t.Ended {
		return nil, types.ErrInvalidState.Wrapf("tournament %d has not ended", id)
	}
	if len(winners) != len(amounts) {
		return nil, types.ErrInvalidRequest.Wrapf("winners/amounts length mismatch: %d vs %d", len(winners), len(amounts))
	}
	if len(winners) == 0 {
		return nil, types.ErrInvalidRequest.Wrap("no winners")
	}

	total := sdkmath.ZeroInt()
	for i, amt := range amounts {
		if winners[i] == "" {
			return nil, types.ErrInvalidRequest.Wrapf("winner %d: missing address", i)
		}
		if amt.IsNil() || !amt.IsPositive() {
			return nil, types.ErrInvalidAmount.Wrapf("winner %d: amount must be > 0", i)
		}
		total, err = total.SafeAdd(amt)
		if err != nil {
			return nil, types.ErrInvalidAmount.Wrap("reward total overflows")
		}
	}
	if total.GT(t.TotalCollected) {
		return nil, types.ErrInvalidAmount.Wrapf("rewards %s exceed collected %s", total, t.TotalCollected)
	}

	events := make([]types.Event, 0, len(winners)+1)
	for i, winner := range winners {
		amt := amounts[i]
		if err := st.Transfer(m.address, winner, amt); err != nil {
			return nil, types.ErrTransferFailure.Wrapf("winner %d (%s): %v", i, winner, err)
		}
		t.TotalCollected = t.TotalCollected.Sub(amt)
		t.RewardsPaid = t.RewardsPaid.Add(amt)
		events = append(events, types.NewEvent(types.EventTypeRewardPaid,
			"tournamentId", u64(id),
			"winner", winner,
			"amount", amt.String(),
		))
	}
	events = append(events, types.NewEvent(types.EventTypeRewardsDistributed,
		"tournamentId", u64(id),
		"winners", fmt.Sprintf("%d", len(winners)),
		"total", total.String(),
		"totalCollected", t.TotalCollected.String(),
	))
	return events, nil
}

// Withdraw pays amount from the manager's overall balance to the calling
// administrator. The balance is not scoped to any tournament, so funds still
// owed as rewards can be withdrawn.
func (m *Manager) Withdraw(st *state.State, caller string, amount sdkmath.Int) ([]types.Event, error) {
	if err := st.RequireRole(caller, state.RoleAdmin); err != nil {
		return nil, err
	}
	if amount.IsNil() || !amount.IsPositive() {
		return nil, types.ErrInvalidAmount.Wrap("withdraw amount must be > 0")
	}
	bal := st.Balance(m.address)
	if amount.GT(bal) {
		return nil, types.ErrInvalidAmount.Wrapf("withdraw exceeds balance: have=%s want=%s", bal, amount)
	}
	if err := st.Transfer(m.address, caller, amount); err != nil {
		return nil, err
	}
	return []types.Event{types.NewEvent(types.EventTypeManagerWithdrawn,
		"to", caller,
		"amount", amount.String(),
		"remaining", st.Balance(m.address).String(),
	)}, nil
}

func (m *Manager) SetAddresses(st *state.State, caller, jackpot, dao, staking string) ([]types.Event, error) {
	if err := st.RequireRole(caller, state.RoleAdmin); err != nil {
		return nil, err
	}
	if jackpot == "" || dao == "" || staking == "" {
		return nil, types.ErrInvalidRequest.Wrap("jackpot, dao and staking addresses are required")
	}
	d := &st.Manager.Distribution
	d.Jackpot, d.DAO, d.Staking = jackpot, dao, staking
	return []types.Event{types.NewEvent(types.EventTypeAddressesSet,
		"jackpot", jackpot,
		"dao", dao,
		"staking", staking,
	)}, nil
}

// SetShares replaces the basis-point shares of the distribution table.
func (m *Manager) SetShares(st *state.State, caller string, jackpotBps, daoBps, stakingBps uint32) ([]types.Event, error) {
	if err := st.RequireRole(caller, state.RoleAdmin); err != nil {
		return nil, err
	}
	next := st.Manager.Distribution
	next.JackpotBps, next.DAOBps, next.StakingBps = jackpotBps, daoBps, stakingBps
	if err := next.ValidateShares(); err != nil {
		return nil, types.ErrInvalidRequest.Wrap(err.Error())
	}
	st.Manager.Distribution = next
	return []types.Event{types.NewEvent(types.EventTypeSharesSet,
		"jackpotBps", fmt.Sprintf("%d", jackpotBps),
		"daoBps", fmt.Sprintf("%d", daoBps),
		"stakingBps", fmt.Sprintf("%d", stakingBps),
	)}, nil
}

func (m *Manager) SetGapFiller(st *state.State, caller, addr string) ([]types.Event, error) {
	if err := st.RequireRole(caller, state.RoleAdmin); err != nil {
		return nil, err
	}
	if addr == "" {
		return nil, types.ErrInvalidRequest.Wrap("missing gap filler address")
	}
	st.Manager.GapFiller = addr
	return []types.Event{types.NewEvent(types.EventTypeGapFillerSet, "gapFiller", addr)}, nil
}

// distribute splits amount, which must already sit in the manager account,
// and pays the three destination shares out of it.
func (m *Manager) distribute(st *state.State, id uint64, amount sdkmath.Int) (Shares, []types.Event, error) {
	table := st.Manager.Distribution
	shares, err := Split(amount, table)
	if err != nil {
		return Shares{}, nil, err
	}
	for _, out := range []struct {
		name string
		to   string
		amt  sdkmath.Int
	}{
		{"jackpot", table.Jackpot, shares.Jackpot},
		{"dao", table.DAO, shares.DAO},
		{"staking", table.Staking, shares.Staking},
	} {
		if out.to == "" {
			return Shares{}, nil, types.ErrTransferFailure.Wrapf("%s address not set", out.name)
		}
		if err := st.Transfer(m.address, out.to, out.amt); err != nil {
			return Shares{}, nil, types.ErrTransferFailure.Wrapf("%s share: %v", out.name, err)
		}
	}
	return shares, []types.Event{types.NewEvent(types.EventTypeFundsSplit,
		"tournamentId", u64(id),
		"amount", amount.String(),
		"jackpot", shares.Jackpot.String(),
		"dao", shares.DAO.String(),
		"staking", shares.Staking.String(),
		"retained", shares.Retained.String(),
	)}, nil
}

// Get returns the tournament with id, or ErrTournamentNotFound.
func Get(st *state.State, id uint64) (*state.Tournament, error) {
	return get(st, id)
}

func get(st *state.State, id uint64) (*state.Tournament, error) {
	if st == nil {
		return nil, fmt.Errorf("state is nil")
	}
	t := st.Tournaments[id]
	if t == nil {
		return nil, types.ErrTournamentNotFound.Wrapf("tournament %d not found", id)
	}
	return t, nil
}

func u64(v uint64) string { return fmt.Sprintf("%d", v) }
