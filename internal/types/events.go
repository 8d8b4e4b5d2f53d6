package types

const (
	EventTypeBankMinted   = "BankMinted"
	EventTypeBankSent     = "BankSent"
	EventTypeAccountKey   = "AccountRegistered"
	EventTypeRoleGranted  = "RoleGranted"
	EventTypeRoleRevoked  = "RoleRevoked"
	EventTypeAddressesSet = "AddressesSet"
	EventTypeSharesSet    = "SharesSet"
	EventTypeGapFillerSet = "GapFillerSet"

	EventTypeTournamentStarted  = "TournamentStarted"
	EventTypeTicketsPurchased   = "TicketsPurchased"
	EventTypeFundsSplit         = "FundsSplit"
	EventTypeGapFilled          = "GapFilled"
	EventTypeTournamentEnded    = "TournamentEnded"
	EventTypeRewardPaid         = "RewardPaid"
	EventTypeRewardsDistributed = "RewardsDistributed"
	EventTypeManagerWithdrawn   = "ManagerWithdrawn"

	EventTypeGapFillerDeployed  = "GapFillerDeployed"
	EventTypeGapFillerWithdrawn = "GapFillerWithdrawn"

	EventTypeRegistryCreated = "TicketRegistryCreated"
	EventTypeRegistryMinted  = "TicketsMinted"
)

// Event is a typed ABCI-agnostic event emitted by the ledger components. The app
// layer converts it to an abci.Event.
type Event struct {
	Type  string
	Attrs map[string]string
}

// NewEvent builds an Event from alternating key/value pairs.
func NewEvent(typ string, kv ...string) Event {
	attrs := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs[kv[i]] = kv[i+1]
	}
	return Event{Type: typ, Attrs: attrs}
}
