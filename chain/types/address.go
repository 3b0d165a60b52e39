// Package types holds the data model shared by every core subsystem:
// addresses, hashes, monetary amounts, node/miner/validator records,
// transactions and receipts.
package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	AddressLength = 20
	HashLength    = 32
)

// Address is a 20-byte network identifier. All comparisons are
// case-insensitive; values are always stored and rendered as lower-case hex
// with a 0x prefix.
type Address [AddressLength]byte

// Hash is a 32-byte digest.
type Hash [HashLength]byte

var ZeroAddress = Address{}
var ZeroHash = Hash{}

func BytesToAddress(b []byte) Address {
	var addr Address
	if len(b) > AddressLength {
		copy(addr[:], b[len(b)-AddressLength:])
	} else {
		copy(addr[AddressLength-len(b):], b)
	}
	return addr
}

func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		copy(h[:], b[len(b)-HashLength:])
	} else {
		copy(h[HashLength-len(b):], b)
	}
	return h
}

func (addr Address) Hex() string              { return "0x" + hex.EncodeToString(addr[:]) }
func (addr Address) String() string           { return addr.Hex() }
func (addr Address) Bytes() []byte            { return addr[:] }
func (addr Address) Equal(other Address) bool { return bytes.Equal(addr[:], other[:]) }
func (addr Address) IsZero() bool             { return addr.Equal(ZeroAddress) }

func (h Hash) Hex() string              { return "0x" + hex.EncodeToString(h[:]) }
func (h Hash) String() string           { return h.Hex() }
func (h Hash) Bytes() []byte            { return h[:] }
func (h Hash) Equal(other Hash) bool    { return bytes.Equal(h[:], other[:]) }
func (h Hash) IsZero() bool             { return h.Equal(ZeroHash) }

// MarshalJSON/UnmarshalJSON let Address round-trip through the same
// lower-case hex form used everywhere else (RPC params, Merkle leaves).
func (addr Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + addr.Hex() + `"`), nil
}

func (addr *Address) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := HexToAddress(s)
	if err != nil {
		return err
	}
	*addr = parsed
	return nil
}

// HexToAddress parses a 0x-prefixed 40-hex-digit address. It rejects the
// empty string, a missing 0x prefix, wrong length, non-hex characters, and
// embedded control characters — the address validation boundary named in
// the testable properties.
func HexToAddress(s string) (Address, error) {
	if s == "" {
		return ZeroAddress, errors.New("empty address string")
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return ZeroAddress, fmt.Errorf("address must have 0x prefix: %q", s)
	}
	hexPart := s[2:]
	if len(hexPart) != AddressLength*2 {
		return ZeroAddress, fmt.Errorf("invalid address length: expected %d hex chars, got %d", AddressLength*2, len(hexPart))
	}
	for _, r := range hexPart {
		if r < 0x20 {
			return ZeroAddress, errors.New("address contains control characters")
		}
	}
	raw, err := hex.DecodeString(hexPart)
	if err != nil {
		return ZeroAddress, fmt.Errorf("invalid hex string: %w", err)
	}
	return BytesToAddress(raw), nil
}

// NormalizeAddress lower-cases a hex address string for use as a map key,
// validating it in the process.
func NormalizeAddress(s string) (string, error) {
	addr, err := HexToAddress(s)
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}

func HexToHash(s string) (Hash, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if len(s) != HashLength*2 {
		return ZeroHash, fmt.Errorf("invalid hash length: expected %d, got %d", HashLength*2, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return ZeroHash, fmt.Errorf("invalid hex string: %w", err)
	}
	return BytesToHash(raw), nil
}

// PublicKeyToAddress derives an address from an uncompressed secp256k1
// public key (65 bytes, leading 0x04 prefix): the last 20 bytes of the
// Keccak256 hash of the 64 coordinate bytes.
func PublicKeyToAddress(uncompressedPubKey []byte) Address {
	body := uncompressedPubKey
	if len(body) == 65 && body[0] == 0x04 {
		body = body[1:]
	}
	hash := Keccak256(body)
	return BytesToAddress(hash[12:])
}

// Keccak256 computes the Ethereum-style Keccak256 hash over the
// concatenation of all arguments.
func Keccak256(data ...[]byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	for _, d := range data {
		hasher.Write(d)
	}
	return hasher.Sum(nil)
}

func Keccak256Hash(data ...[]byte) Hash {
	return BytesToHash(Keccak256(data...))
}

// SHA256 computes the SHA-256 hash used for Merkle leaves and nodes.
func SHA256(data ...[]byte) []byte {
	hasher := sha256.New()
	for _, d := range data {
		hasher.Write(d)
	}
	return hasher.Sum(nil)
}

func ParseAddress(s string) (Address, error) { return HexToAddress(s) }
func ParseHash(s string) (Hash, error)        { return HexToHash(s) }
