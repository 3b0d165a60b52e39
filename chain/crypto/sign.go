// Package crypto wraps secp256k1 signing and verification for both
// transactions and off-chain staking authorizations. All signature
// production and validation for the core goes through here.
package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"aichain-core/chain/types"
)

var (
	// ErrInvalidSignatureLength is returned when a signature is not the
	// expected 65-byte r||s||v (or 64-byte r||s for staking messages).
	ErrInvalidSignatureLength = errors.New("crypto: invalid signature length")
	// ErrHighS is returned when a signature's S value exceeds the
	// secp256k1 curve order's half, which this package never produces and
	// never accepts.
	ErrHighS = errors.New("crypto: signature has high S value")
	// ErrRecoveryFailed is returned when the public key cannot be
	// recovered from a signature and message hash.
	ErrRecoveryFailed = errors.New("crypto: public key recovery failed")
)

// secp256k1HalfOrder is floor(N/2), the boundary for low-S normalization.
var secp256k1HalfOrder = new(big.Int).Rsh(gethcrypto.S256().Params().N, 1)

// GenerateKey produces a new secp256k1 private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return gethcrypto.GenerateKey()
}

// PublicKeyToAddress derives the 20-byte address from a private key's
// public half: Keccak256 of the uncompressed public key (minus its 0x04
// prefix byte), last 20 bytes.
func PublicKeyToAddress(priv *ecdsa.PrivateKey) types.Address {
	uncompressed := gethcrypto.FromECDSAPub(&priv.PublicKey)
	return types.PublicKeyToAddress(uncompressed)
}

// SignTransaction signs a transaction hash and fills in V, R, S using the
// EIP-155-style scheme: v = recovery_id + 2*chain_id + 35. The signature
// is always normalized to low-S.
func SignTransaction(tx *types.Transaction, priv *ecdsa.PrivateKey) error {
	hash := tx.Hash()
	sig, err := gethcrypto.Sign(hash[:], priv)
	if err != nil {
		return fmt.Errorf("crypto: sign transaction: %w", err)
	}
	if len(sig) != 65 {
		return ErrInvalidSignatureLength
	}

	r, s, recoveryID := sig[:32], sig[32:64], sig[64]
	normalizeLowS(r, s, &recoveryID)

	var rArr, sArr [32]byte
	copy(rArr[:], r)
	copy(sArr[:], s)

	tx.R = rArr
	tx.S = sArr
	tx.V = uint64(recoveryID) + 2*tx.ChainID + 35
	return nil
}

// VerifyTransaction checks that tx carries a valid low-S signature over
// its signing message from the address it claims to be From, and that V
// encodes the transaction's own ChainID.
func VerifyTransaction(tx *types.Transaction) error {
	if isHighS(tx.S[:]) {
		return ErrHighS
	}
	recoveryID, err := recoveryIDFromV(tx.V, tx.ChainID)
	if err != nil {
		return err
	}

	hash := tx.Hash()
	sig := make([]byte, 65)
	copy(sig[0:32], tx.R[:])
	copy(sig[32:64], tx.S[:])
	sig[64] = recoveryID

	pubBytes, err := gethcrypto.Ecrecover(hash[:], sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecoveryFailed, err)
	}
	recovered := types.PublicKeyToAddress(pubBytes)
	if recovered != tx.From {
		return fmt.Errorf("crypto: signature does not match From address %s", tx.From.Hex())
	}
	return nil
}

// SignStakingMessage signs an arbitrary UTF-8 message (a staking or
// delegation authorization string built by the caller) and returns a flat
// 64-byte r||s signature. Staking messages carry no chain ID and are not
// EIP-155 encoded; the recovery id is dropped and is not part of the wire
// signature.
func SignStakingMessage(message string, priv *ecdsa.PrivateKey) ([]byte, error) {
	hash := types.Keccak256([]byte(message))
	sig, err := gethcrypto.Sign(hash, priv)
	if err != nil {
		return nil, fmt.Errorf("crypto: sign staking message: %w", err)
	}
	r, s, recoveryID := sig[:32], sig[32:64], sig[64]
	normalizeLowS(r, s, &recoveryID)

	out := make([]byte, 64)
	copy(out[0:32], r)
	copy(out[32:64], s)
	return out, nil
}

// VerifyStakingMessage checks that sig (64-byte r||s, as produced by
// SignStakingMessage) is a valid low-S signature of message by signer. It
// tries both recovery ids since the flat encoding drops that bit.
func VerifyStakingMessage(message string, sig []byte, signer types.Address) error {
	if len(sig) != 64 {
		return ErrInvalidSignatureLength
	}
	if isHighS(sig[32:64]) {
		return ErrHighS
	}
	hash := types.Keccak256([]byte(message))

	full := make([]byte, 65)
	copy(full, sig)
	for recoveryID := byte(0); recoveryID < 2; recoveryID++ {
		full[64] = recoveryID
		pubBytes, err := gethcrypto.Ecrecover(hash, full)
		if err != nil {
			continue
		}
		if types.PublicKeyToAddress(pubBytes) == signer {
			return nil
		}
	}
	return fmt.Errorf("crypto: staking signature does not match signer %s", signer.Hex())
}

// normalizeLowS flips (s, recoveryID) to the curve's low-S representative
// when s is in the upper half of the order, per the canonical-signature
// requirement.
func normalizeLowS(r, s []byte, recoveryID *byte) {
	sInt := new(big.Int).SetBytes(s)
	if sInt.Cmp(secp256k1HalfOrder) > 0 {
		sInt.Sub(gethcrypto.S256().Params().N, sInt)
		sBytes := sInt.FillBytes(make([]byte, 32))
		copy(s, sBytes)
		*recoveryID ^= 1
	}
}

func isHighS(s []byte) bool {
	sInt := new(big.Int).SetBytes(s)
	return sInt.Cmp(secp256k1HalfOrder) > 0
}

// recoveryIDFromV recovers the 0/1 recovery id from an EIP-155-style v,
// validating that v was derived from the given chain id.
func recoveryIDFromV(v, chainID uint64) (byte, error) {
	base := 2*chainID + 35
	if v < base || v > base+1 {
		return 0, fmt.Errorf("crypto: v=%d does not match chain id %d", v, chainID)
	}
	return byte(v - base), nil
}
