package codec

import (
	"crypto/ed25519"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyFromSeed_Deterministic(t *testing.T) {
	pub1, _ := KeyFromSeed("alice")
	pub2, _ := KeyFromSeed("alice")
	pub3, _ := KeyFromSeed("bob")
	require.Equal(t, pub1, pub2)
	require.NotEqual(t, pub1, pub3)
}

func TestNewSignedTx_Verifies(t *testing.T) {
	pub, priv := KeyFromSeed("alice")

	b, err := NewSignedTx(TypeTournamentEnd, TournamentEndTx{TournamentID: 4}, "1", "alice", priv)
	require.NoError(t, err)

	env, err := DecodeTxEnvelope(b)
	require.NoError(t, err)
	require.Equal(t, "alice", env.Signer)
	require.True(t, ed25519.Verify(pub, SignBytes(env.Type, env.Value, env.Nonce, env.Signer), env.Sig))

	// Any field change invalidates the signature.
	require.False(t, ed25519.Verify(pub, SignBytes(env.Type, env.Value, "2", env.Signer), env.Sig))
	require.False(t, ed25519.Verify(pub, SignBytes(TypeTournamentStart, env.Value, env.Nonce, env.Signer), env.Sig))
}

func TestSignBytes_FieldSeparation(t *testing.T) {
	a := SignBytes("ab", []byte("{}"), "1", "c")
	b := SignBytes("a", []byte("{}"), "1", "bc")
	require.NotEqual(t, a, b)
}

func TestSignBytes_Layout(t *testing.T) {
	value := []byte(`{"to":"bob","amount":"1"}`)
	sum := sha256.Sum256(value)
	want := append([]byte("tournament/tx/v1\x00bank/send\x007\x00alice\x00"), sum[:]...)
	require.Equal(t, want, SignBytes(TypeBankSend, value, "7", "alice"))
}
