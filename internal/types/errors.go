package types

import errorsmod "cosmossdk.io/errors"

// Codespace is the ABCI codespace used for every tournament ledger error.
const Codespace = "tournament"

// Sentinel errors. Every rejected tx maps to exactly one of these.
var (
	ErrInvalidRequest     = errorsmod.Register(Codespace, 1, "invalid request")
	ErrAccessDenied       = errorsmod.Register(Codespace, 2, "access denied")
	ErrInvalidState       = errorsmod.Register(Codespace, 3, "invalid state")
	ErrInvalidAmount      = errorsmod.Register(Codespace, 4, "invalid amount")
	ErrTransferFailure    = errorsmod.Register(Codespace, 5, "transfer failure")
	ErrDependencyFailure  = errorsmod.Register(Codespace, 6, "dependency failure")
	ErrTournamentNotFound = errorsmod.Register(Codespace, 7, "tournament not found")
	ErrUnauthenticated    = errorsmod.Register(Codespace, 8, "unauthenticated")
)
