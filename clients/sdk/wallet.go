// Package sdk is the external-facing client library for talking to an
// aichain-core node: building and signing transactions, checking
// balances, and claiming epoch rewards from a Merkle claim root.
package sdk

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"aichain-core/chain/config"
	"aichain-core/chain/crypto"
	"aichain-core/chain/rpc"
	"aichain-core/chain/types"
)

// Wallet binds a private key to an RPC client, mirroring what a CLI or
// external service needs to submit signed transactions and reward claims.
type Wallet struct {
	address    types.Address
	privateKey *ecdsa.PrivateKey
	client     *rpc.Client
	chainID    uint64
}

// NewWallet generates a fresh key pair bound to client.
func NewWallet(client *rpc.Client, chainID uint64) (*Wallet, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("sdk: generate key: %w", err)
	}
	return &Wallet{
		address:    crypto.PublicKeyToAddress(priv),
		privateKey: priv,
		client:     client,
		chainID:    chainID,
	}, nil
}

// LoadWallet wraps an existing private key.
func LoadWallet(priv *ecdsa.PrivateKey, client *rpc.Client, chainID uint64) *Wallet {
	return &Wallet{
		address:    crypto.PublicKeyToAddress(priv),
		privateKey: priv,
		client:     client,
		chainID:    chainID,
	}
}

// ImportPrivateKeyHex loads a wallet from a hex-encoded secp256k1 key,
// with or without the 0x prefix.
func ImportPrivateKeyHex(hexKey string, client *rpc.Client, chainID uint64) (*Wallet, error) {
	hexKey = strings.TrimPrefix(hexKey, "0x")
	priv, err := gethHexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("sdk: invalid private key: %w", err)
	}
	return LoadWallet(priv, client, chainID), nil
}

func (w *Wallet) Address() types.Address { return w.address }

// Balance returns the wallet's current balance in smallest units.
func (w *Wallet) Balance(ctx context.Context) (types.Amount, error) {
	raw, err := w.client.GetBalance(ctx, w.address.Hex(), "latest")
	if err != nil {
		return types.Amount{}, err
	}
	wei, ok := new(big.Int).SetString(strings.TrimPrefix(raw, "0x"), 16)
	if !ok {
		return types.Amount{}, fmt.Errorf("sdk: malformed balance %q", raw)
	}
	return types.AmountFromWei(wei), nil
}

// Nonce returns the next valid nonce for the wallet's address.
func (w *Wallet) Nonce(ctx context.Context) (uint64, error) {
	return w.client.GetTransactionCount(ctx, w.address.Hex())
}

// BuildTransaction constructs and signs a transaction, filling in the
// nonce from the node if the caller passes 0.
func (w *Wallet) BuildTransaction(ctx context.Context, to *types.Address, value types.Amount, gasPrice, gasLimit uint64, data []byte, nonce uint64) (*types.Transaction, error) {
	if nonce == 0 {
		n, err := w.Nonce(ctx)
		if err != nil {
			return nil, fmt.Errorf("sdk: fetch nonce: %w", err)
		}
		nonce = n
	}

	tx := &types.Transaction{
		ChainID:  w.chainID,
		Nonce:    nonce,
		From:     w.address,
		To:       to,
		Value:    value.Wei(),
		GasPrice: gasPrice,
		GasLimit: gasLimit,
		Data:     data,
	}
	if err := crypto.SignTransaction(tx, w.privateKey); err != nil {
		return nil, fmt.Errorf("sdk: sign transaction: %w", err)
	}
	return tx, nil
}

// SendTransaction builds, signs, and submits a transaction, returning its
// hash.
func (w *Wallet) SendTransaction(ctx context.Context, to types.Address, value types.Amount, data []byte) (types.Hash, error) {
	tx, err := w.BuildTransaction(ctx, &to, value, 0, 21000, data, 0)
	if err != nil {
		return types.ZeroHash, err
	}
	rawHex := fmt.Sprintf("0x%x", tx.RawEncode())
	txHashHex, err := w.client.SendRawTransaction(ctx, rawHex)
	if err != nil {
		return types.ZeroHash, err
	}
	return types.HexToHash(txHashHex)
}

// Transfer sends a plain value transfer to addr.
func (w *Wallet) Transfer(ctx context.Context, to types.Address, amount types.Amount) (types.Hash, error) {
	return w.SendTransaction(ctx, to, amount, nil)
}

// SignStakingMessage signs an off-chain staking/registration message
// (stake delegation, subnet registration) with this wallet's key.
func (w *Wallet) SignStakingMessage(message string) ([]byte, error) {
	return crypto.SignStakingMessage(message, w.privateKey)
}

// ClaimEpochReward submits a reward claim for epoch against the node's
// Merkle claim tree. amount must match the leaf the proof was built
// against exactly; the node recomputes the root and rejects any mismatch.
func (w *Wallet) ClaimEpochReward(ctx context.Context, epoch uint64, amount types.Amount, proof [][]byte) (types.Hash, error) {
	proofHex := make([]string, len(proof))
	for i, p := range proof {
		proofHex[i] = fmt.Sprintf("0x%x", p)
	}
	params := []any{epoch, w.address.Hex(), amount.String(), proofHex}
	raw, err := w.client.Call(ctx, "tokenomics_claimReward", params)
	if err != nil {
		return types.ZeroHash, err
	}
	var txHashHex string
	if err := jsonUnmarshalString(raw, &txHashHex); err != nil {
		return types.ZeroHash, fmt.Errorf("sdk: decode claim response: %w", err)
	}
	return types.HexToHash(txHashHex)
}

// DefaultRPCClient builds an rpc.Client with the library's default
// resilience settings pointed at url.
func DefaultRPCClient(url string) *rpc.Client {
	cfg := config.DefaultRpcConfig()
	cfg.URL = url
	return rpc.NewClient(cfg)
}
