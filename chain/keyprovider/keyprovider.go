// Package keyprovider defines the secret-key provider interface the core
// consumes as an external collaborator: the core never manages key
// custody itself, only asks a provider to sign on its behalf. InMemory is
// a provider implementation for tests and reference deployments.
package keyprovider

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"aichain-core/chain/coreerr"
	"aichain-core/chain/types"
)

// Provider is the interface the core's signing paths depend on. A
// production deployment backs this with an HSM or KMS; InMemory backs it
// with process memory for tests and local nodes.
type Provider interface {
	// GenerateKey creates a new secp256k1 key under keyID.
	GenerateKey(ctx context.Context, keyID string) (types.Address, error)

	// Address returns the address associated with keyID.
	Address(ctx context.Context, keyID string) (types.Address, error)

	// Sign produces a raw secp256k1 signature (r||s||v, 65 bytes) over
	// hash using the key stored under keyID.
	Sign(ctx context.Context, keyID string, hash []byte) ([]byte, error)

	// Health reports whether the provider is reachable and usable.
	Health(ctx context.Context) error
}

// InMemory is a Provider backed by an in-process key map. Never use it to
// hold mainnet validator keys; it exists for tests, local devnets, and as
// the default when no external provider is configured.
type InMemory struct {
	mu   sync.RWMutex
	keys map[string]*ecdsa.PrivateKey
}

func NewInMemory() *InMemory {
	return &InMemory{keys: make(map[string]*ecdsa.PrivateKey)}
}

func (p *InMemory) GenerateKey(_ context.Context, keyID string) (types.Address, error) {
	priv, err := ethcrypto.GenerateKey()
	if err != nil {
		return types.Address{}, fmt.Errorf("keyprovider: generate key: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.keys[keyID]; exists {
		return types.Address{}, coreerr.InvalidInput("keyID", "already exists")
	}
	p.keys[keyID] = priv

	return addressOf(priv), nil
}

// Import registers an existing private key under keyID, for test fixtures
// that need deterministic addresses.
func (p *InMemory) Import(keyID string, priv *ecdsa.PrivateKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys[keyID] = priv
}

func (p *InMemory) Address(_ context.Context, keyID string) (types.Address, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	priv, ok := p.keys[keyID]
	if !ok {
		return types.Address{}, coreerr.InvalidInput("keyID", "not found")
	}
	return addressOf(priv), nil
}

func (p *InMemory) Sign(_ context.Context, keyID string, hash []byte) ([]byte, error) {
	p.mu.RLock()
	priv, ok := p.keys[keyID]
	p.mu.RUnlock()
	if !ok {
		return nil, coreerr.InvalidInput("keyID", "not found")
	}

	sig, err := ethcrypto.Sign(hash, priv)
	if err != nil {
		return nil, fmt.Errorf("keyprovider: sign: %w", err)
	}
	return sig, nil
}

func (p *InMemory) Health(_ context.Context) error {
	return nil
}

func addressOf(priv *ecdsa.PrivateKey) types.Address {
	uncompressed := ethcrypto.FromECDSAPub(&priv.PublicKey)
	return types.PublicKeyToAddress(uncompressed)
}
