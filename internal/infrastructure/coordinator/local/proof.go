package localcoordinator

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Proof lets anyone holding the oracle public key check that the random words
// of a request were derived from the oracle signature over the request seed.
type Proof struct {
	RequestId uint64
	Seed      []byte
	Signature []byte
}

func (p Proof) String() string {
	return fmt.Sprintf(
		"request %d seed %s signature %s",
		p.RequestId, hex.EncodeToString(p.Seed), hex.EncodeToString(p.Signature),
	)
}

// VerifyProof checks the proof signature and that words are the ones derived
// from it.
func VerifyProof(pubkey *secp256k1.PublicKey, proof Proof, words []*big.Int) error {
	sig, err := ecdsa.ParseDERSignature(proof.Signature)
	if err != nil {
		return fmt.Errorf("invalid proof signature: %s", err)
	}
	if !sig.Verify(proof.Seed, pubkey) {
		return fmt.Errorf("proof signature does not match the oracle key")
	}

	expected := deriveWords(proof.Signature, uint32(len(words)))
	for i, word := range words {
		if word == nil || word.Cmp(expected[i]) != 0 {
			return fmt.Errorf("random word %d does not match the proof", i)
		}
	}
	return nil
}

func requestSeed(keyHash string, requestId uint64, preSeed []byte) []byte {
	buf := make([]byte, 0, len(keyHash)+8+len(preSeed))
	buf = append(buf, []byte(keyHash)...)
	buf = binary.BigEndian.AppendUint64(buf, requestId)
	buf = append(buf, preSeed...)
	seed := sha256.Sum256(buf)
	return seed[:]
}

func deriveWords(signature []byte, numWords uint32) []*big.Int {
	words := make([]*big.Int, 0, numWords)
	for i := uint32(0); i < numWords; i++ {
		buf := binary.BigEndian.AppendUint32(append([]byte{}, signature...), i)
		hash := sha256.Sum256(buf)
		words = append(words, new(big.Int).SetBytes(hash[:]))
	}
	return words
}
