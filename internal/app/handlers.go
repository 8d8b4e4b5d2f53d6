package app

import (
	"encoding/json"

	sdkmath "cosmossdk.io/math"

	"onchaintournament/internal/codec"
	"onchaintournament/internal/gapfiller"
	"onchaintournament/internal/state"
	"onchaintournament/internal/types"
)

// execute authenticates env and applies it to st. The caller identity of every
// operation is the envelope signer.
func (a *TournamentApp) execute(st *state.State, env codec.TxEnvelope) ([]types.Event, error) {
	if env.Type == codec.TypeAuthRegisterAccount {
		var msg codec.AuthRegisterAccountTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := requireRegisterAccountAuth(st, env, msg); err != nil {
			return nil, err
		}
		if err := consumeNonce(st, env); err != nil {
			return nil, err
		}
		st.AccountKeys[msg.Account] = append([]byte(nil), msg.PubKey...)
		return []types.Event{types.NewEvent(types.EventTypeAccountKey, "account", msg.Account)}, nil
	}

	if err := requireAccountAuth(st, env); err != nil {
		return nil, err
	}
	if err := consumeNonce(st, env); err != nil {
		return nil, err
	}
	caller := env.Signer

	switch env.Type {
	case codec.TypeBankMint:
		var msg codec.BankMintTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := st.RequireRole(caller, state.RoleAdmin); err != nil {
			return nil, err
		}
		if msg.To == "" {
			return nil, types.ErrInvalidRequest.Wrap("missing to")
		}
		if err := requirePositive(msg.Amount, "amount"); err != nil {
			return nil, err
		}
		if err := st.Credit(msg.To, msg.Amount); err != nil {
			return nil, err
		}
		return []types.Event{types.NewEvent(types.EventTypeBankMinted, "to", msg.To, "amount", msg.Amount.String())}, nil

	case codec.TypeBankSend:
		var msg codec.BankSendTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := requirePositive(msg.Amount, "amount"); err != nil {
			return nil, err
		}
		if err := st.Transfer(caller, msg.To, msg.Amount); err != nil {
			return nil, err
		}
		return []types.Event{types.NewEvent(types.EventTypeBankSent,
			"from", caller,
			"to", msg.To,
			"amount", msg.Amount.String(),
		)}, nil

	case codec.TypeRoleGrant:
		var msg codec.RoleGrantTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		role, err := parseRoleTx(st, caller, msg.Account, msg.Role)
		if err != nil {
			return nil, err
		}
		if !st.GrantRole(msg.Account, role) {
			return nil, types.ErrInvalidState.Wrapf("%q already has role %s", msg.Account, role)
		}
		return []types.Event{types.NewEvent(types.EventTypeRoleGranted, "account", msg.Account, "role", string(role))}, nil

	case codec.TypeRoleRevoke:
		var msg codec.RoleRevokeTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		role, err := parseRoleTx(st, caller, msg.Account, msg.Role)
		if err != nil {
			return nil, err
		}
		if role == state.RoleAdmin && msg.Account == caller {
			return nil, types.ErrInvalidRequest.Wrap("administrators cannot revoke their own admin role")
		}
		if !st.RevokeRole(msg.Account, role) {
			return nil, types.ErrInvalidState.Wrapf("%q does not have role %s", msg.Account, role)
		}
		return []types.Event{types.NewEvent(types.EventTypeRoleRevoked, "account", msg.Account, "role", string(role))}, nil

	case codec.TypeTournamentStart:
		var msg codec.TournamentStartTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		_, events, err := a.manager.StartTournament(st, caller, st.Time, msg.TicketPrice, msg.MinTickets, msg.EndDate)
		return events, err

	case codec.TypeTournamentBuyTickets:
		var msg codec.TournamentBuyTicketsTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.manager.BuyTickets(st, caller, st.Time, msg.TournamentID, msg.Quantity, msg.Payment)

	case codec.TypeTournamentEnd:
		var msg codec.TournamentEndTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.manager.EndTournament(st, caller, st.Time, msg.TournamentID)

	case codec.TypeTournamentDistribute:
		var msg codec.TournamentDistributeTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.manager.DistributeRewards(st, caller, msg.TournamentID, msg.Winners, msg.Amounts)

	case codec.TypeManagerWithdraw:
		var msg codec.ManagerWithdrawTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.manager.Withdraw(st, caller, msg.Amount)

	case codec.TypeManagerSetAddresses:
		var msg codec.ManagerSetAddressesTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.manager.SetAddresses(st, caller, msg.Jackpot, msg.DAO, msg.Staking)

	case codec.TypeManagerSetShares:
		var msg codec.ManagerSetSharesTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.manager.SetShares(st, caller, msg.JackpotBps, msg.DAOBps, msg.StakingBps)

	case codec.TypeManagerSetGapFiller:
		var msg codec.ManagerSetGapFillerTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.manager.SetGapFiller(st, caller, msg.GapFiller)

	case codec.TypeGapFillerDeploy:
		var msg codec.GapFillerDeployTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		mgr := msg.Manager
		if mgr == "" {
			mgr = a.manager.Address()
		}
		_, events, err := gapfiller.Deploy(st, caller, mgr)
		return events, err

	case codec.TypeGapFillerRequestFill:
		var msg codec.GapFillerRequestFillTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return gapfiller.RequestFill(st, caller, msg.GapFiller, msg.TournamentID, msg.Amount)

	case codec.TypeGapFillerWithdraw:
		var msg codec.GapFillerWithdrawTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return gapfiller.Withdraw(st, caller, msg.GapFiller, msg.Amount)

	default:
		return nil, types.ErrInvalidRequest.Wrapf("unknown tx type: %s", env.Type)
	}
}

func decodeValue(env codec.TxEnvelope, v any) error {
	if err := json.Unmarshal(env.Value, v); err != nil {
		return types.ErrInvalidRequest.Wrapf("bad %s value: %v", env.Type, err)
	}
	return nil
}

func requirePositive(amt sdkmath.Int, field string) error {
	if amt.IsNil() || !amt.IsPositive() {
		return types.ErrInvalidAmount.Wrapf("%s must be > 0", field)
	}
	return nil
}

func parseRoleTx(st *state.State, caller, account, raw string) (state.Role, error) {
	if err := st.RequireRole(caller, state.RoleAdmin); err != nil {
		return "", err
	}
	if account == "" {
		return "", types.ErrInvalidRequest.Wrap("missing account")
	}
	role := state.Role(raw)
	if !role.Valid() {
		return "", types.ErrInvalidRequest.Wrapf("unknown role %q", raw)
	}
	return role, nil
}
