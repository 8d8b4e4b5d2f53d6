package app

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"onchaintournament/internal/gapfiller"
	"onchaintournament/internal/registry"
	"onchaintournament/internal/state"
	"onchaintournament/internal/tournament"
	"onchaintournament/internal/types"
)

// Query paths:
//   - /tournament/<id>
//   - /tournaments
//   - /account/<addr>
//   - /roles/<addr>
//   - /config
//   - /gapfiller/<addr>
//   - /registry/<addr>[/<holder>]
func (a *TournamentApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, err := a.query(a.st, strings.TrimSpace(req.Path))
	if err != nil {
		space, code, msg := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Code: code, Codespace: space, Log: msg, Height: a.st.Height}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return &abci.QueryResponse{Code: 1, Log: "encode response: " + err.Error(), Height: a.st.Height}, nil
	}
	return &abci.QueryResponse{Code: abci.CodeTypeOK, Value: b, Height: a.st.Height}, nil
}

func (a *TournamentApp) query(st *state.State, path string) (any, error) {
	switch {
	case path == "/tournaments":
		ids := make([]uint64, 0, len(st.Tournaments))
		for id := range st.Tournaments {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		return ids, nil

	case strings.HasPrefix(path, "/tournament/"):
		raw := strings.TrimPrefix(path, "/tournament/")
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, types.ErrInvalidRequest.Wrapf("invalid tournament id %q", raw)
		}
		return tournament.Get(st, id)

	case strings.HasPrefix(path, "/account/"):
		addr := strings.TrimPrefix(path, "/account/")
		return map[string]any{
			"addr":       addr,
			"balance":    st.Balance(addr),
			"registered": len(st.AccountKeys[addr]) != 0,
			"nonce":      st.NonceMax[addr],
		}, nil

	case strings.HasPrefix(path, "/roles/"):
		addr := strings.TrimPrefix(path, "/roles/")
		return map[string]any{"addr": addr, "roles": st.RolesOf(addr)}, nil

	case path == "/config":
		return map[string]any{
			"manager":      a.manager.Address(),
			"distribution": st.Manager.Distribution,
			"gapFiller":    st.Manager.GapFiller,
			"balance":      st.Balance(a.manager.Address()),
		}, nil

	case strings.HasPrefix(path, "/gapfiller/"):
		addr := strings.TrimPrefix(path, "/gapfiller/")
		g := st.GapFillers[addr]
		if g == nil {
			return nil, types.ErrInvalidRequest.Wrapf("gap filler %q not deployed", addr)
		}
		return map[string]any{
			"address": g.Address,
			"admin":   g.Admin,
			"manager": g.Manager,
			"reserve": gapfiller.Reserve(st, g.Address),
		}, nil

	case strings.HasPrefix(path, "/registry/"):
		parts := strings.SplitN(strings.TrimPrefix(path, "/registry/"), "/", 2)
		r := st.Registries[parts[0]]
		if r == nil {
			return nil, types.ErrInvalidRequest.Wrapf("registry %q not found", parts[0])
		}
		if len(parts) == 2 {
			return map[string]any{
				"registry": r.Address,
				"holder":   parts[1],
				"units":    registry.Holding(st, r.Address, parts[1]),
			}, nil
		}
		return r, nil

	default:
		return nil, types.ErrInvalidRequest.Wrapf("unknown query path %q", path)
	}
}
