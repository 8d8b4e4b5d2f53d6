package codec

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

const TxAuthDomain = "tournament/tx/v1"

// SignBytes returns the message an account signs for a ledger tx: the
// "tournament/tx/v1" domain, the tx type, the decimal nonce and the signer
// address, each terminated by a zero byte, followed by sha256 of the raw value
// JSON.
func SignBytes(typ string, value []byte, nonce string, signer string) []byte {
	sum := sha256.Sum256(value)
	fields := [...]string{TxAuthDomain, typ, nonce, signer}

	n := sha256.Size
	for _, f := range fields {
		n += len(f) + 1
	}
	out := make([]byte, 0, n)
	for _, f := range fields {
		out = append(out, f...)
		out = append(out, 0)
	}
	return append(out, sum[:]...)
}

// KeyFromSeed derives a deterministic ed25519 key pair from an arbitrary seed
// string. Intended for devnets and tests.
func KeyFromSeed(seed string) (ed25519.PublicKey, ed25519.PrivateKey) {
	sum := sha256.Sum256([]byte(seed))
	priv := ed25519.NewKeyFromSeed(sum[:])
	return priv.Public().(ed25519.PublicKey), priv
}

// NewSignedTx encodes value and returns the signed envelope bytes.
func NewSignedTx(typ string, value any, nonce string, signer string, priv ed25519.PrivateKey) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s value: %w", typ, err)
	}
	env := TxEnvelope{
		Type:   typ,
		Value:  raw,
		Nonce:  nonce,
		Signer: signer,
		Sig:    ed25519.Sign(priv, SignBytes(typ, raw, nonce, signer)),
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return b, nil
}
