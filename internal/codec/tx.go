package codec

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Tx types routed by the app.
const (
	TypeBankMint            = "bank/mint"
	TypeBankSend            = "bank/send"
	TypeAuthRegisterAccount = "auth/register_account"

	TypeRoleGrant  = "role/grant"
	TypeRoleRevoke = "role/revoke"

	TypeTournamentStart      = "tournament/start"
	TypeTournamentBuyTickets = "tournament/buy_tickets"
	TypeTournamentEnd        = "tournament/end"
	TypeTournamentDistribute = "tournament/distribute_rewards"

	TypeManagerWithdraw     = "manager/withdraw"
	TypeManagerSetAddresses = "manager/set_addresses"
	TypeManagerSetShares    = "manager/set_shares"
	TypeManagerSetGapFiller = "manager/set_gap_filler"

	TypeGapFillerDeploy      = "gapfiller/deploy"
	TypeGapFillerRequestFill = "gapfiller/request_fill"
	TypeGapFillerWithdraw    = "gapfiller/withdraw"
)

var knownTypes = map[string]struct{}{
	TypeBankMint: {}, TypeBankSend: {}, TypeAuthRegisterAccount: {},
	TypeRoleGrant: {}, TypeRoleRevoke: {},
	TypeTournamentStart: {}, TypeTournamentBuyTickets: {}, TypeTournamentEnd: {}, TypeTournamentDistribute: {},
	TypeManagerWithdraw: {}, TypeManagerSetAddresses: {}, TypeManagerSetShares: {}, TypeManagerSetGapFiller: {},
	TypeGapFillerDeploy: {}, TypeGapFillerRequestFill: {}, TypeGapFillerWithdraw: {},
}

// IsKnownType reports whether typ is routed by the app.
func IsKnownType(typ string) bool {
	_, ok := knownTypes[typ]
	return ok
}

// TxEnvelope is the transaction container.
//
// CometBFT transactions are opaque bytes; the ledger uses JSON-encoded
// envelopes. Signed envelopes carry:
//   - Nonce: decimal u64, must increase per signer.
//   - Signer: account address of the caller.
//   - Sig: Ed25519 signature over (type, nonce, signer, sha256(value)).
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// ---- Bank ----

type BankMintTx struct {
	To     string      `json:"to"`
	Amount sdkmath.Int `json:"amount"`
}

type BankSendTx struct {
	To     string      `json:"to"`
	Amount sdkmath.Int `json:"amount"`
}

// ---- Auth ----

type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
}

// ---- Roles ----

type RoleGrantTx struct {
	Account string `json:"account"`
	Role    string `json:"role"`
}

type RoleRevokeTx struct {
	Account string `json:"account"`
	Role    string `json:"role"`
}

// ---- Tournament ----

type TournamentStartTx struct {
	TicketPrice sdkmath.Int `json:"ticketPrice"`
	MinTickets  uint64      `json:"minTickets"`
	EndDate     int64       `json:"endDate"` // unix seconds
}

type TournamentBuyTicketsTx struct {
	TournamentID uint64 `json:"tournamentId"`
	Quantity     uint64 `json:"quantity"`
	// Payment is the value attached to the purchase; it must equal
	// quantity x ticketPrice exactly.
	Payment sdkmath.Int `json:"payment"`
}

type TournamentEndTx struct {
	TournamentID uint64 `json:"tournamentId"`
}

type TournamentDistributeTx struct {
	TournamentID uint64        `json:"tournamentId"`
	Winners      []string      `json:"winners"`
	Amounts      []sdkmath.Int `json:"amounts"`
}

// ---- Manager administration ----

type ManagerWithdrawTx struct {
	Amount sdkmath.Int `json:"amount"`
}

type ManagerSetAddressesTx struct {
	Jackpot string `json:"jackpot"`
	DAO     string `json:"dao"`
	Staking string `json:"staking"`
}

type ManagerSetSharesTx struct {
	JackpotBps uint32 `json:"jackpotBps"`
	DAOBps     uint32 `json:"daoBps"`
	StakingBps uint32 `json:"stakingBps"`
}

type ManagerSetGapFillerTx struct {
	GapFiller string `json:"gapFiller"`
}

// ---- Gap filler ----

type GapFillerDeployTx struct {
	// Manager is the only identity allowed to request fills. Defaults to the
	// tournament manager account when empty.
	Manager string `json:"manager,omitempty"`
}

type GapFillerRequestFillTx struct {
	GapFiller    string      `json:"gapFiller"`
	TournamentID uint64      `json:"tournamentId"`
	Amount       sdkmath.Int `json:"amount"`
}

type GapFillerWithdrawTx struct {
	GapFiller string      `json:"gapFiller"`
	Amount    sdkmath.Int `json:"amount"`
}
