package tournament

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"onchaintournament/internal/gapfiller"
	"onchaintournament/internal/registry"
	"onchaintournament/internal/state"
	"onchaintournament/internal/types"
)

const (
	admin       = "admin"
	starter     = "starter"
	distributor = "distributor"
	alice       = "alice"
	bob         = "bob"

	jackpotAddr = "jackpot"
	daoAddr     = "dao"
	stakingAddr = "staking"

	now     int64 = 1_700_000_000
	endDate int64 = now + 3600
)

type fixture struct {
	st *state.State
	m  *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := state.NewState()
	g := state.Genesis{
		Admin: admin,
		Balances: map[string]sdkmath.Int{
			alice: ether(50),
			bob:   ether(50),
		},
		Roles: map[string][]state.Role{
			starter:     {state.RoleTournamentStarter},
			distributor: {state.RoleRewardDistributor},
		},
	}
	require.NoError(t, g.Apply(st))

	m := NewManager(state.ManagerAddress, registry.NewLedger(state.ManagerAddress))
	_, err := m.SetAddresses(st, admin, jackpotAddr, daoAddr, stakingAddr)
	require.NoError(t, err)
	return &fixture{st: st, m: m}
}

func (f *fixture) start(t *testing.T, price sdkmath.Int, minTickets uint64) uint64 {
	t.Helper()
	id, _, err := f.m.StartTournament(f.st, starter, now, price, minTickets, endDate)
	require.NoError(t, err)
	return id
}

func (f *fixture) deployGapFiller(t *testing.T, reserve sdkmath.Int) string {
	t.Helper()
	g, _, err := gapfiller.Deploy(f.st, admin, state.ManagerAddress)
	require.NoError(t, err)
	if reserve.IsPositive() {
		require.NoError(t, f.st.Credit(g.Address, reserve))
	}
	_, err = f.m.SetGapFiller(f.st, admin, g.Address)
	require.NoError(t, err)
	return g.Address
}

func TestStartTournament_AllocatesSequentialIDs(t *testing.T) {
	f := newFixture(t)

	id1 := f.start(t, ether(1), 10)
	id2 := f.start(t, ether(2), 5)
	require.Equal(t, uint64(1), id1)
	require.Equal(t, uint64(2), id2)

	tour, err := Get(f.st, id1)
	require.NoError(t, err)
	require.Equal(t, starter, tour.Starter)
	require.Equal(t, uint64(10), tour.MinTickets)
	require.False(t, tour.Ended)
	require.True(t, tour.TotalCollected.IsZero())
	require.NotEmpty(t, tour.TicketRegistryAddress)
	require.NotEqual(t, tour.TicketRegistryAddress, f.st.Tournaments[id2].TicketRegistryAddress)
	require.Contains(t, f.st.Registries, tour.TicketRegistryAddress)
}

func TestStartTournament_Rejects(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.m.StartTournament(f.st, alice, now, ether(1), 10, endDate)
	require.ErrorIs(t, err, types.ErrAccessDenied)

	_, _, err = f.m.StartTournament(f.st, starter, now, sdkmath.ZeroInt(), 10, endDate)
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	_, _, err = f.m.StartTournament(f.st, starter, now, ether(1), 0, endDate)
	require.ErrorIs(t, err, types.ErrInvalidRequest)

	_, _, err = f.m.StartTournament(f.st, starter, now, ether(1), 10, now)
	require.ErrorIs(t, err, types.ErrInvalidRequest)

	require.Empty(t, f.st.Tournaments)
	require.Equal(t, uint64(1), f.st.NextTournamentID)
}

func TestBuyTickets_SplitsPayment(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, ether(1), 10)

	events, err := f.m.BuyTickets(f.st, alice, now, id, 5, ether(5))
	require.NoError(t, err)

	tour := f.st.Tournaments[id]
	require.Equal(t, uint64(5), tour.TicketsSold)
	require.Equal(t, "4850000000000000000", tour.TotalCollected.String())
	require.Equal(t, "25000000000000000", f.st.Balance(jackpotAddr).String())
	require.Equal(t, "75000000000000000", f.st.Balance(daoAddr).String())
	require.Equal(t, "50000000000000000", f.st.Balance(stakingAddr).String())
	require.True(t, f.st.Balance(state.ManagerAddress).Equal(tour.TotalCollected))
	require.True(t, f.st.Balance(alice).Equal(ether(45)))
	require.Equal(t, uint64(5), registry.Holding(f.st, tour.TicketRegistryAddress, alice))

	var seen []string
	for _, ev := range events {
		seen = append(seen, ev.Type)
	}
	require.Contains(t, seen, types.EventTypeFundsSplit)
	require.Contains(t, seen, types.EventTypeTicketsPurchased)
}

func TestBuyTickets_Rejects(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, ether(1), 10)
	before := f.st.AppHash()

	_, err := f.m.BuyTickets(f.st, alice, now, 99, 1, ether(1))
	require.ErrorIs(t, err, types.ErrTournamentNotFound)

	_, err = f.m.BuyTickets(f.st, alice, now, id, 2, ether(1))
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	_, err = f.m.BuyTickets(f.st, alice, now, id, 1, ether(2))
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	_, err = f.m.BuyTickets(f.st, alice, now, id, 0, sdkmath.ZeroInt())
	require.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = f.m.BuyTickets(f.st, alice, endDate, id, 1, ether(1))
	require.ErrorIs(t, err, types.ErrInvalidState)

	_, err = f.m.BuyTickets(f.st, "pauper", now, id, 1, ether(1))
	require.ErrorIs(t, err, types.ErrTransferFailure)

	require.Equal(t, before, f.st.AppHash())
}

func TestBuyTickets_UnsetDestination(t *testing.T) {
	st := state.NewState()
	require.NoError(t, state.Genesis{Admin: admin, Balances: map[string]sdkmath.Int{alice: ether(1)}, Roles: map[string][]state.Role{starter: {state.RoleTournamentStarter}}}.Apply(st))
	m := NewManager(state.ManagerAddress, registry.NewLedger(state.ManagerAddress))

	id, _, err := m.StartTournament(st, starter, now, ether(1), 1, endDate)
	require.NoError(t, err)
	_, err = m.BuyTickets(st, alice, now, id, 1, ether(1))
	require.ErrorIs(t, err, types.ErrTransferFailure)
}

func TestBuyTickets_AfterEnd(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, ether(1), 1)
	_, err := f.m.BuyTickets(f.st, alice, now, id, 1, ether(1))
	require.NoError(t, err)
	_, err = f.m.EndTournament(f.st, starter, endDate, id)
	require.NoError(t, err)

	_, err = f.m.BuyTickets(f.st, bob, now, id, 1, ether(1))
	require.ErrorIs(t, err, types.ErrInvalidState)
}

func TestEndTournament_GapFill(t *testing.T) {
	f := newFixture(t)
	gf := f.deployGapFiller(t, ether(100))
	id := f.start(t, ether(1), 10)

	events, err := f.m.EndTournament(f.st, starter, endDate+1, id)
	require.NoError(t, err)

	tour := f.st.Tournaments[id]
	require.True(t, tour.Ended)
	require.Equal(t, uint64(10), tour.TicketsSold)
	require.Equal(t, uint64(10), tour.GapFilledTickets)
	require.True(t, tour.GapFilledAmount.Equal(ether(10)))
	require.Equal(t, "9700000000000000000", tour.TotalCollected.String())
	require.True(t, f.st.Balance(gf).Equal(ether(90)))
	require.Equal(t, "50000000000000000", f.st.Balance(jackpotAddr).String())

	// Synthetic tickets are not minted.
	require.Equal(t, uint64(0), f.st.Registries[tour.TicketRegistryAddress].TotalSupply)

	var sawFill bool
	for _, ev := range events {
		if ev.Type == types.EventTypeGapFilled {
			sawFill = true
			require.Equal(t, ether(10).String(), ev.Attrs["amount"])
		}
	}
	require.True(t, sawFill)

	// A second close is rejected and does not draw on the gap filler again.
	_, err = f.m.EndTournament(f.st, starter, endDate+2, id)
	require.ErrorIs(t, err, types.ErrInvalidState)
	require.True(t, f.st.Balance(gf).Equal(ether(90)))
}

func TestEndTournament_PartialSales(t *testing.T) {
	f := newFixture(t)
	gf := f.deployGapFiller(t, ether(100))
	id := f.start(t, ether(1), 10)
	_, err := f.m.BuyTickets(f.st, alice, now, id, 4, ether(4))
	require.NoError(t, err)

	_, err = f.m.EndTournament(f.st, starter, endDate, id)
	require.NoError(t, err)

	tour := f.st.Tournaments[id]
	require.Equal(t, uint64(10), tour.TicketsSold)
	require.Equal(t, uint64(6), tour.GapFilledTickets)
	require.True(t, f.st.Balance(gf).Equal(ether(94)))
	require.Equal(t, "9700000000000000000", tour.TotalCollected.String())
}

func TestEndTournament_NoFillWhenMinimumMet(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, ether(1), 2)
	_, err := f.m.BuyTickets(f.st, alice, now, id, 3, ether(3))
	require.NoError(t, err)

	// No gap filler configured; none is needed.
	_, err = f.m.EndTournament(f.st, starter, endDate, id)
	require.NoError(t, err)
	require.Equal(t, uint64(3), f.st.Tournaments[id].TicketsSold)
	require.Zero(t, f.st.Tournaments[id].GapFilledTickets)
}

func TestEndTournament_Rejects(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, ether(1), 10)

	_, err := f.m.EndTournament(f.st, alice, endDate, id)
	require.ErrorIs(t, err, types.ErrAccessDenied)

	_, err = f.m.EndTournament(f.st, starter, endDate, 42)
	require.ErrorIs(t, err, types.ErrTournamentNotFound)

	_, err = f.m.EndTournament(f.st, starter, endDate-1, id)
	require.ErrorIs(t, err, types.ErrInvalidState)

	// Undersold without a gap filler.
	_, err = f.m.EndTournament(f.st, starter, endDate, id)
	require.ErrorIs(t, err, types.ErrDependencyFailure)

	// Gap filler with too small a reserve.
	f.deployGapFiller(t, ether(3))
	before := f.st.AppHash()
	_, err = f.m.EndTournament(f.st, starter, endDate, id)
	require.ErrorIs(t, err, types.ErrDependencyFailure)
	require.False(t, f.st.Tournaments[id].Ended)
	require.Equal(t, before, f.st.AppHash())
}

func TestEndTournament_ForeignGapFillerManager(t *testing.T) {
	f := newFixture(t)
	g, _, err := gapfiller.Deploy(f.st, admin, "someone-else")
	require.NoError(t, err)
	require.NoError(t, f.st.Credit(g.Address, ether(100)))
	_, err = f.m.SetGapFiller(f.st, admin, g.Address)
	require.NoError(t, err)
	id := f.start(t, ether(1), 1)

	_, err = f.m.EndTournament(f.st, starter, endDate, id)
	require.ErrorIs(t, err, types.ErrAccessDenied)
}

func TestDistributeRewards(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, ether(1), 1)
	_, err := f.m.BuyTickets(f.st, alice, now, id, 1, ether(1))
	require.NoError(t, err)
	_, err = f.m.EndTournament(f.st, starter, endDate, id)
	require.NoError(t, err)

	bobBefore := f.st.Balance(bob)
	amt := mustInt(t, "970000000000000000")
	events, err := f.m.DistributeRewards(f.st, distributor, id, []string{bob}, []sdkmath.Int{amt})
	require.NoError(t, err)
	require.Len(t, events, 2)

	require.True(t, f.st.Balance(bob).Sub(bobBefore).Equal(amt))
	tour := f.st.Tournaments[id]
	require.True(t, tour.TotalCollected.IsZero())
	require.True(t, tour.RewardsPaid.Equal(amt))
}

func TestDistributeRewards_Rejects(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, ether(1), 1)
	_, err := f.m.BuyTickets(f.st, alice, now, id, 2, ether(2))
	require.NoError(t, err)

	one := []sdkmath.Int{ether(1)}
	_, err = f.m.DistributeRewards(f.st, distributor, id, []string{bob}, one)
	require.ErrorIs(t, err, types.ErrInvalidState, "not ended")

	_, err = f.m.EndTournament(f.st, starter, endDate, id)
	require.NoError(t, err)
	before := f.st.AppHash()

	_, err = f.m.DistributeRewards(f.st, alice, id, []string{bob}, one)
	require.ErrorIs(t, err, types.ErrAccessDenied)

	_, err = f.m.DistributeRewards(f.st, distributor, 7, []string{bob}, one)
	require.ErrorIs(t, err, types.ErrTournamentNotFound)

	_, err = f.m.DistributeRewards(f.st, distributor, id, []string{bob, alice}, one)
	require.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = f.m.DistributeRewards(f.st, distributor, id, nil, nil)
	require.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = f.m.DistributeRewards(f.st, distributor, id, []string{bob}, []sdkmath.Int{sdkmath.ZeroInt()})
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	// 1.94 collected; 1 + 1 exceeds it.
	_, err = f.m.DistributeRewards(f.st, distributor, id, []string{bob, alice}, []sdkmath.Int{ether(1), ether(1)})
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	require.Equal(t, before, f.st.AppHash())
}

func TestDistributeRewards_AfterWithdrawFails(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, ether(1), 1)
	_, err := f.m.BuyTickets(f.st, alice, now, id, 1, ether(1))
	require.NoError(t, err)
	_, err = f.m.EndTournament(f.st, starter, endDate, id)
	require.NoError(t, err)

	// Withdraw is not scoped to a tournament and may drain earmarked funds.
	_, err = f.m.Withdraw(f.st, admin, f.st.Balance(state.ManagerAddress))
	require.NoError(t, err)

	_, err = f.m.DistributeRewards(f.st, distributor, id, []string{bob}, []sdkmath.Int{sdkmath.NewInt(1)})
	require.ErrorIs(t, err, types.ErrTransferFailure)
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, ether(1), 1)
	_, err := f.m.BuyTickets(f.st, alice, now, id, 1, ether(1))
	require.NoError(t, err)
	bal := f.st.Balance(state.ManagerAddress)

	_, err = f.m.Withdraw(f.st, alice, sdkmath.NewInt(1))
	require.ErrorIs(t, err, types.ErrAccessDenied)

	_, err = f.m.Withdraw(f.st, admin, bal.AddRaw(1))
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	_, err = f.m.Withdraw(f.st, admin, sdkmath.ZeroInt())
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	_, err = f.m.Withdraw(f.st, admin, sdkmath.NewInt(100))
	require.NoError(t, err)
	require.Equal(t, int64(100), f.st.Balance(admin).Int64())
	require.True(t, f.st.Balance(state.ManagerAddress).Equal(bal.SubRaw(100)))
}

func TestSetters(t *testing.T) {
	f := newFixture(t)

	_, err := f.m.SetAddresses(f.st, alice, "a", "b", "c")
	require.ErrorIs(t, err, types.ErrAccessDenied)
	_, err = f.m.SetAddresses(f.st, admin, "a", "", "c")
	require.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = f.m.SetGapFiller(f.st, alice, "gf")
	require.ErrorIs(t, err, types.ErrAccessDenied)
	_, err = f.m.SetGapFiller(f.st, admin, "")
	require.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = f.m.SetShares(f.st, admin, 5000, 5000, 1)
	require.ErrorIs(t, err, types.ErrInvalidRequest)
	_, err = f.m.SetShares(f.st, alice, 1, 1, 1)
	require.ErrorIs(t, err, types.ErrAccessDenied)

	_, err = f.m.SetShares(f.st, admin, 100, 200, 300)
	require.NoError(t, err)
	_, err = f.m.SetAddresses(f.st, admin, "j2", "d2", "s2")
	require.NoError(t, err)

	// The table is read at purchase time.
	id := f.start(t, sdkmath.NewInt(10_000), 1)
	_, err = f.m.BuyTickets(f.st, alice, now, id, 1, sdkmath.NewInt(10_000))
	require.NoError(t, err)
	require.Equal(t, int64(100), f.st.Balance("j2").Int64())
	require.Equal(t, int64(200), f.st.Balance("d2").Int64())
	require.Equal(t, int64(300), f.st.Balance("s2").Int64())
	require.Equal(t, int64(9400), f.st.Tournaments[id].TotalCollected.Int64())
}

func TestScenarios(t *testing.T) {
	t.Run("buy five at price one", func(t *testing.T) {
		f := newFixture(t)
		id := f.start(t, ether(1), 10)
		_, err := f.m.BuyTickets(f.st, alice, now, id, 5, ether(5))
		require.NoError(t, err)

		tour := f.st.Tournaments[id]
		require.Equal(t, uint64(5), tour.TicketsSold)
		require.Equal(t, "25000000000000000", f.st.Balance(jackpotAddr).String())
		require.Equal(t, "75000000000000000", f.st.Balance(daoAddr).String())
		require.Equal(t, "50000000000000000", f.st.Balance(stakingAddr).String())
		require.Equal(t, "4850000000000000000", tour.TotalCollected.String())
	})

	t.Run("gap fill from a funded reserve", func(t *testing.T) {
		f := newFixture(t)
		f.deployGapFiller(t, ether(100))
		id := f.start(t, ether(1), 10)

		_, err := f.m.EndTournament(f.st, starter, endDate+60, id)
		require.NoError(t, err)
		require.True(t, f.st.Tournaments[id].Ended)
		require.Equal(t, uint64(10), f.st.Tournaments[id].TicketsSold)
	})

	t.Run("single winner takes the pot", func(t *testing.T) {
		f := newFixture(t)
		id := f.start(t, ether(1), 1)
		_, err := f.m.BuyTickets(f.st, alice, now, id, 1, ether(1))
		require.NoError(t, err)
		_, err = f.m.EndTournament(f.st, starter, endDate+60, id)
		require.NoError(t, err)

		before := f.st.Balance(bob)
		_, err = f.m.DistributeRewards(f.st, distributor, id, []string{bob}, []sdkmath.Int{mustInt(t, "970000000000000000")})
		require.NoError(t, err)
		require.Equal(t, "970000000000000000", f.st.Balance(bob).Sub(before).String())
		require.True(t, f.st.Tournaments[id].TotalCollected.IsZero())
	})
}
