// Package oracle holds the signature scheme used by randomness oracles to
// authenticate the random words they deliver to the raffle.
package oracle

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const (
	fulfillmentTag = "raffle/fulfillment"
	wordLen        = 32
)

var ErrInvalidSignature = errors.New("invalid fulfillment signature")

// FulfillmentDigest commits to a request id and the ordered list of its
// random words. Words must fit in 256 bits.
func FulfillmentDigest(requestId uint64, words []*big.Int) ([]byte, error) {
	tag := sha256.Sum256([]byte(fulfillmentTag))

	buf := make([]byte, 0, len(tag)+8+4+len(words)*wordLen)
	buf = append(buf, tag[:]...)
	buf = binary.BigEndian.AppendUint64(buf, requestId)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(words)))
	for i, word := range words {
		if word == nil || word.Sign() < 0 || word.BitLen() > wordLen*8 {
			return nil, fmt.Errorf("random word %d is not a 256-bit unsigned integer", i)
		}
		buf = append(buf, word.FillBytes(make([]byte, wordLen))...)
	}

	digest := sha256.Sum256(buf)
	return digest[:], nil
}

// SignFulfillment returns the DER signature of the fulfillment digest.
func SignFulfillment(
	key *secp256k1.PrivateKey, requestId uint64, words []*big.Int,
) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("missing oracle key")
	}
	digest, err := FulfillmentDigest(requestId, words)
	if err != nil {
		return nil, err
	}
	return ecdsa.Sign(key, digest).Serialize(), nil
}

func VerifyFulfillment(
	pubkey *secp256k1.PublicKey, requestId uint64, words []*big.Int, signature []byte,
) error {
	if pubkey == nil {
		return fmt.Errorf("%w: missing oracle public key", ErrInvalidSignature)
	}
	if len(signature) <= 0 {
		return fmt.Errorf("%w: missing signature", ErrInvalidSignature)
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}
	digest, err := FulfillmentDigest(requestId, words)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}
	if !sig.Verify(digest, pubkey) {
		return fmt.Errorf("%w: not signed by the oracle key", ErrInvalidSignature)
	}
	return nil
}

// Address derives the identity of an oracle from its public key.
func Address(pubkey *secp256k1.PublicKey) string {
	hash := sha256.Sum256(pubkey.SerializeUncompressed()[1:])
	return "0x" + hex.EncodeToString(hash[12:])
}

// ParsePrivKey parses a hex encoded 32-byte oracle key, with or without the
// 0x prefix.
func ParsePrivKey(key string) (*secp256k1.PrivateKey, error) {
	buf, err := hex.DecodeString(strings.TrimPrefix(key, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid oracle key: %s", err)
	}
	if len(buf) != secp256k1.PrivKeyBytesLen {
		return nil, fmt.Errorf(
			"invalid oracle key length, expected %d bytes", secp256k1.PrivKeyBytesLen,
		)
	}
	return secp256k1.PrivKeyFromBytes(buf), nil
}
