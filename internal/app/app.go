package app

import (
	"context"
	"sort"
	"strconv"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"

	"onchaintournament/internal/codec"
	"onchaintournament/internal/metrics"
	"onchaintournament/internal/registry"
	"onchaintournament/internal/state"
	"onchaintournament/internal/store"
	"onchaintournament/internal/tournament"
	"onchaintournament/internal/types"
)

const (
	AppVersion uint64 = 1
)

type TournamentApp struct {
	*abci.BaseApplication

	logger  log.Logger
	store   *store.Store
	manager *tournament.Manager

	mu       sync.Mutex
	st       *state.State
	lastHash []byte
}

// New opens the ledger under home and restores the last committed state.
func New(home string, logger log.Logger, keepRecent int64) (*TournamentApp, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	db, err := store.Open(home, keepRecent)
	if err != nil {
		return nil, err
	}
	st, err := db.Load()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a := &TournamentApp{
		BaseApplication: abci.NewBaseApplication(),
		logger:          logger.With("module", "tournament"),
		store:           db,
		manager:         tournament.NewManager(state.ManagerAddress, registry.NewLedger(state.ManagerAddress)),
		st:              st,
		lastHash:        st.AppHash(),
	}
	a.logger.Info("state loaded", "height", st.Height, "tournaments", len(st.Tournaments))
	return a, nil
}

func (a *TournamentApp) Close() error {
	return a.store.Close()
}

func (a *TournamentApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "tournament ledger",
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

// CheckTx rejects malformed envelopes and bad signatures. Nonces are only
// consumed at delivery.
func (a *TournamentApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	env, err := codec.DecodeTxEnvelope(req.Tx)
	if err != nil {
		return checkTxErr(types.ErrInvalidRequest.Wrap(err.Error())), nil
	}
	if env.Type == codec.TypeAuthRegisterAccount {
		return &abci.CheckTxResponse{Code: abci.CodeTypeOK}, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := requireAccountAuth(a.st, env); err != nil {
		return checkTxErr(err), nil
	}
	return &abci.CheckTxResponse{Code: abci.CodeTypeOK}, nil
}

func checkTxErr(err error) *abci.CheckTxResponse {
	space, code, msg := errorsmod.ABCIInfo(err, false)
	return &abci.CheckTxResponse{Code: code, Codespace: space, Log: msg}
}

func (a *TournamentApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	g, err := state.DecodeGenesis(req.AppStateBytes)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	st := state.NewState()
	if err := g.Apply(st); err != nil {
		return nil, err
	}
	a.st = st
	a.lastHash = st.AppHash()
	a.logger.Info("genesis applied", "chain_id", req.ChainId, "admin", g.Admin, "accounts", len(st.Accounts))
	return &abci.InitChainResponse{AppHash: a.lastHash}, nil
}

func (a *TournamentApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := req.Time.Unix()
	a.st.Height = req.Height
	a.st.Time = now

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		txResults = append(txResults, a.deliverTx(txBytes, req.Height, now))
	}

	a.lastHash = a.st.AppHash()
	metrics.SetBlockHeight(req.Height)
	metrics.SetManagerBalance(a.st.Balance(state.ManagerAddress))
	a.logger.Debug("block finalized", "height", req.Height, "txs", len(req.Txs))

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.lastHash,
	}, nil
}

func (a *TournamentApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Returning an error halts the node loudly instead of diverging silently.
	if err := a.store.Save(a.st); err != nil {
		a.logger.Error("commit failed", "height", a.st.Height, "err", err)
		return nil, err
	}
	return &abci.CommitResponse{}, nil
}

// deliverTx executes one tx against a staged copy of state. The copy replaces
// the live state only if the tx succeeds.
func (a *TournamentApp) deliverTx(txBytes []byte, height int64, nowUnix int64) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return a.txErr("", types.ErrInvalidRequest.Wrap(err.Error()))
	}

	stage, err := a.st.Clone()
	if err != nil {
		return a.txErr(env.Type, types.ErrInvalidState.Wrap(err.Error()))
	}
	stage.Height = height
	stage.Time = nowUnix

	events, err := a.execute(stage, env)
	if err != nil {
		return a.txErr(env.Type, err)
	}
	a.st = stage

	metrics.RecordTx(txLabel(env.Type), abci.CodeTypeOK)
	a.observe(env, events)
	return okEvents(events)
}

func (a *TournamentApp) txErr(txType string, err error) *abci.ExecTxResult {
	space, code, msg := errorsmod.ABCIInfo(err, false)
	metrics.RecordTx(txLabel(txType), code)
	a.logger.Debug("tx rejected", "type", txType, "codespace", space, "code", code, "err", msg)
	return &abci.ExecTxResult{Code: code, Codespace: space, Log: msg}
}

// txLabel bounds the metric label set to routed tx types.
func txLabel(txType string) string {
	if !codec.IsKnownType(txType) {
		return "unknown"
	}
	return txType
}

// observe logs lifecycle transitions and feeds the domain counters.
func (a *TournamentApp) observe(env codec.TxEnvelope, events []types.Event) {
	for _, ev := range events {
		switch ev.Type {
		case types.EventTypeTournamentStarted:
			a.logger.Info("tournament started", "id", ev.Attrs["tournamentId"], "price", ev.Attrs["ticketPrice"], "min_tickets", ev.Attrs["minTickets"])
		case types.EventTypeTicketsPurchased:
			if n, err := strconv.ParseUint(ev.Attrs["quantity"], 10, 64); err == nil {
				metrics.RecordTicketsSold(n)
			}
		case types.EventTypeGapFilled:
			metrics.RecordGapFill()
			a.logger.Info("gap filled", "id", ev.Attrs["tournamentId"], "gap_filler", ev.Attrs["gapFiller"], "amount", ev.Attrs["amount"])
		case types.EventTypeTournamentEnded:
			a.logger.Info("tournament ended", "id", ev.Attrs["tournamentId"], "tickets_sold", ev.Attrs["ticketsSold"], "collected", ev.Attrs["totalCollected"])
		case types.EventTypeRewardPaid:
			metrics.RecordRewardsPaid(1)
		case types.EventTypeRewardsDistributed:
			a.logger.Info("rewards distributed", "id", ev.Attrs["tournamentId"], "winners", ev.Attrs["winners"], "total", ev.Attrs["total"])
		case types.EventTypeManagerWithdrawn, types.EventTypeGapFillerWithdrawn:
			a.logger.Info("withdrawal", "type", env.Type, "to", ev.Attrs["to"], "amount", ev.Attrs["amount"])
		}
	}
}

func okEvents(events []types.Event) *abci.ExecTxResult {
	out := make([]abci.Event, 0, len(events))
	for _, e := range events {
		ev := abci.Event{Type: e.Type}
		keys := make([]string, 0, len(e.Attrs))
		for k := range e.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: e.Attrs[k], Index: true})
		}
		out = append(out, ev)
	}
	return &abci.ExecTxResult{
		Code:   abci.CodeTypeOK,
		Events: out,
	}
}
