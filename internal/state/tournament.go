package state

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

const BpsDenominator uint32 = 10000

// Default distribution shares, in basis points of every ticket payment.
const (
	DefaultJackpotBps uint32 = 50
	DefaultDAOBps     uint32 = 150
	DefaultStakingBps uint32 = 100
)

// DistributionTable routes a fixed share of every ticket payment to three
// destination accounts. Whatever is left stays with the manager.
type DistributionTable struct {
	Jackpot string `json:"jackpot,omitempty"`
	DAO     string `json:"dao,omitempty"`
	Staking string `json:"staking,omitempty"`

	JackpotBps uint32 `json:"jackpotBps"`
	DAOBps     uint32 `json:"daoBps"`
	StakingBps uint32 `json:"stakingBps"`
}

func DefaultDistributionTable() DistributionTable {
	return DistributionTable{
		JackpotBps: DefaultJackpotBps,
		DAOBps:     DefaultDAOBps,
		StakingBps: DefaultStakingBps,
	}
}

type ManagerConfig struct {
	Distribution DistributionTable `json:"distribution"`
	// GapFiller is the address of the gap filler consulted at closure. Empty
	// means none is configured.
	GapFiller string `json:"gapFiller,omitempty"`
}

type Tournament struct {
	ID          uint64      `json:"id"`
	Starter     string      `json:"starter"`
	TicketPrice sdkmath.Int `json:"ticketPrice"`
	MinTickets  uint64      `json:"minTickets"`
	EndDate     int64       `json:"endDate"` // unix seconds

	TicketsSold    uint64      `json:"ticketsSold"`
	Ended          bool        `json:"ended"`
	TotalCollected sdkmath.Int `json:"totalCollected"`

	TicketRegistryAddress string `json:"ticketRegistryAddress"`

	// Synthetic tickets and funds supplied by the gap filler at closure.
	GapFilledTickets uint64      `json:"gapFilledTickets,omitempty"`
	GapFilledAmount  sdkmath.Int `json:"gapFilledAmount"`

	RewardsPaid sdkmath.Int `json:"rewardsPaid"`
}

func (t *Tournament) normalize() {
	if t.TicketPrice.IsNil() {
		t.TicketPrice = sdkmath.ZeroInt()
	}
	if t.TotalCollected.IsNil() {
		t.TotalCollected = sdkmath.ZeroInt()
	}
	if t.GapFilledAmount.IsNil() {
		t.GapFilledAmount = sdkmath.ZeroInt()
	}
	if t.RewardsPaid.IsNil() {
		t.RewardsPaid = sdkmath.ZeroInt()
	}
}

// ---- Gap filler ----

// GapFiller is a funded reserve. Its balance lives in Accounts under Address;
// only Manager may request fills from it.
type GapFiller struct {
	Address string `json:"address"`
	Admin   string `json:"admin"`
	Manager string `json:"manager"`
}

// ---- Ticket registry ----

// TicketRegistry records proof-of-purchase units for a single tournament.
type TicketRegistry struct {
	Address      string            `json:"address"`
	TournamentID uint64            `json:"tournamentId"`
	TotalSupply  uint64            `json:"totalSupply"`
	Holdings     map[string]uint64 `json:"holdings"`
}

// ValidateShares checks that the three shares fit inside one payment.
func (d DistributionTable) ValidateShares() error {
	total := uint64(d.JackpotBps) + uint64(d.DAOBps) + uint64(d.StakingBps)
	if total > uint64(BpsDenominator) {
		return fmt.Errorf("shares exceed %d bps: %d", BpsDenominator, total)
	}
	return nil
}
