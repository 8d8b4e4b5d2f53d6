package app

import (
	"bytes"
	"crypto/ed25519"
	"strconv"

	"onchaintournament/internal/codec"
	"onchaintournament/internal/state"
	"onchaintournament/internal/types"
)

func requireSignedEnvelope(env codec.TxEnvelope) error {
	if env.Nonce == "" {
		return types.ErrUnauthenticated.Wrap("missing tx.nonce")
	}
	if env.Signer == "" {
		return types.ErrUnauthenticated.Wrap("missing tx.signer")
	}
	if len(env.Sig) == 0 {
		return types.ErrUnauthenticated.Wrap("missing tx.sig")
	}
	if len(env.Sig) != ed25519.SignatureSize {
		return types.ErrUnauthenticated.Wrapf("invalid tx.sig length: got %d want %d", len(env.Sig), ed25519.SignatureSize)
	}
	return nil
}

func verifySig(pub []byte, env codec.TxEnvelope) error {
	msg := codec.SignBytes(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, env.Sig) {
		return types.ErrUnauthenticated.Wrap("invalid signature")
	}
	return nil
}

// requireAccountAuth checks that env is signed by the registered key of its
// signer. It does not consume the nonce.
func requireAccountAuth(st *state.State, env codec.TxEnvelope) error {
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if st.IsContractAddress(env.Signer) {
		return types.ErrAccessDenied.Wrapf("account %q is a contract and cannot sign", env.Signer)
	}
	pub := st.AccountKeys[env.Signer]
	if len(pub) != ed25519.PublicKeySize {
		return types.ErrUnauthenticated.Wrapf("account %q missing pubKey (auth/register_account required)", env.Signer)
	}
	return verifySig(pub, env)
}

// requireRegisterAccountAuth checks a self-signed key registration. An
// account may re-submit its own key but never replace a different one.
func requireRegisterAccountAuth(st *state.State, env codec.TxEnvelope, msg codec.AuthRegisterAccountTx) error {
	if msg.Account == "" {
		return types.ErrInvalidRequest.Wrap("missing account")
	}
	if len(msg.PubKey) != ed25519.PublicKeySize {
		return types.ErrInvalidRequest.Wrapf("pubKey must be %d bytes", ed25519.PublicKeySize)
	}
	if st.IsContractAddress(msg.Account) {
		return types.ErrAccessDenied.Wrapf("account %q is a contract and cannot register a key", msg.Account)
	}
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if env.Signer != msg.Account {
		return types.ErrUnauthenticated.Wrapf("tx signer mismatch: signer=%q want=%q", env.Signer, msg.Account)
	}
	if err := verifySig(msg.PubKey, env); err != nil {
		return err
	}
	if cur := st.AccountKeys[msg.Account]; len(cur) != 0 && !bytes.Equal(cur, msg.PubKey) {
		return types.ErrAccessDenied.Wrapf("account %q already registered with a different key", msg.Account)
	}
	return nil
}

// consumeNonce enforces strictly increasing nonces per signer.
func consumeNonce(st *state.State, env codec.TxEnvelope) error {
	n, err := strconv.ParseUint(env.Nonce, 10, 64)
	if err != nil {
		return types.ErrUnauthenticated.Wrapf("invalid tx.nonce %q", env.Nonce)
	}
	if last, ok := st.NonceMax[env.Signer]; ok && n <= last {
		return types.ErrUnauthenticated.Wrapf("replayed tx.nonce: got %d, last accepted %d", n, last)
	}
	st.NonceMax[env.Signer] = n
	return nil
}
