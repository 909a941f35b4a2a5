package oracle_test

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ark-network/raffle/pkg/oracle"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

func TestFulfillmentSignature(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	otherKey, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	words := []*big.Int{big.NewInt(7), big.NewInt(11)}
	signature, err := oracle.SignFulfillment(key, 1, words)
	require.NoError(t, err)

	err = oracle.VerifyFulfillment(key.PubKey(), 1, words, signature)
	require.NoError(t, err)

	forged, err := oracle.SignFulfillment(otherKey, 1, words)
	require.NoError(t, err)

	fixtures := []struct {
		name      string
		requestId uint64
		words     []*big.Int
		signature []byte
	}{
		{"other request", 2, words, signature},
		{"other words", 1, []*big.Int{big.NewInt(2), big.NewInt(11)}, signature},
		{"fewer words", 1, words[:1], signature},
		{"other key", 1, words, forged},
		{"missing signature", 1, words, nil},
		{"malformed signature", 1, words, []byte{0x30, 0x01}},
	}
	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			err := oracle.VerifyFulfillment(key.PubKey(), f.requestId, f.words, f.signature)
			require.ErrorIs(t, err, oracle.ErrInvalidSignature)
		})
	}
}

func TestFulfillmentDigest(t *testing.T) {
	digest, err := oracle.FulfillmentDigest(1, []*big.Int{big.NewInt(7)})
	require.NoError(t, err)
	require.Len(t, digest, 32)

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	for _, word := range []*big.Int{nil, big.NewInt(-1), tooBig} {
		_, err := oracle.FulfillmentDigest(1, []*big.Int{word})
		require.Error(t, err)
	}
}

func TestParsePrivKey(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	encoded := hex.EncodeToString(key.Serialize())

	for _, k := range []string{encoded, "0x" + encoded} {
		parsed, err := oracle.ParsePrivKey(k)
		require.NoError(t, err)
		require.Equal(t, oracle.Address(key.PubKey()), oracle.Address(parsed.PubKey()))
	}

	for _, k := range []string{"", "0101", "zz"} {
		_, err := oracle.ParsePrivKey(k)
		require.Error(t, err)
	}
}
