package rpc

import (
	"context"
	"encoding/json"
	"fmt"
)

// BlockNumber calls eth_blockNumber and returns the current block height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	raw, err := c.Call(ctx, "eth_blockNumber", nil)
	if err != nil {
		return 0, err
	}
	var hexStr string
	if err := json.Unmarshal(raw, &hexStr); err != nil {
		return 0, fmt.Errorf("rpc: decode block number: %w", err)
	}
	var n uint64
	if _, err := fmt.Sscanf(hexStr, "0x%x", &n); err != nil {
		return 0, fmt.Errorf("rpc: parse block number %q: %w", hexStr, err)
	}
	return n, nil
}

// GetBalance calls eth_getBalance for addr at the given block tag
// ("latest" if empty).
func (c *Client) GetBalance(ctx context.Context, addr string, blockTag string) (string, error) {
	if blockTag == "" {
		blockTag = "latest"
	}
	raw, err := c.Call(ctx, "eth_getBalance", []any{addr, blockTag})
	if err != nil {
		return "", err
	}
	var balance string
	if err := json.Unmarshal(raw, &balance); err != nil {
		return "", fmt.Errorf("rpc: decode balance: %w", err)
	}
	return balance, nil
}

// GetTransactionCount calls eth_getTransactionCount, returning the next
// valid nonce for addr.
func (c *Client) GetTransactionCount(ctx context.Context, addr string) (uint64, error) {
	raw, err := c.Call(ctx, "eth_getTransactionCount", []any{addr, "latest"})
	if err != nil {
		return 0, err
	}
	var hexStr string
	if err := json.Unmarshal(raw, &hexStr); err != nil {
		return 0, fmt.Errorf("rpc: decode nonce: %w", err)
	}
	var n uint64
	if _, err := fmt.Sscanf(hexStr, "0x%x", &n); err != nil {
		return 0, fmt.Errorf("rpc: parse nonce %q: %w", hexStr, err)
	}
	return n, nil
}

// SendRawTransaction submits a hex-encoded signed transaction (0x-prefixed
// per the raw encoding in the data model) and returns its hash.
func (c *Client) SendRawTransaction(ctx context.Context, rawHex string) (string, error) {
	raw, err := c.Call(ctx, "eth_sendRawTransaction", []any{rawHex})
	if err != nil {
		return "", err
	}
	var txHash string
	if err := json.Unmarshal(raw, &txHash); err != nil {
		return "", fmt.Errorf("rpc: decode tx hash: %w", err)
	}
	return txHash, nil
}

// GetTransactionReceipt calls eth_getTransactionReceipt.
func (c *Client) GetTransactionReceipt(ctx context.Context, txHash string) (json.RawMessage, error) {
	return c.Call(ctx, "eth_getTransactionReceipt", []any{txHash})
}

// GetValidators calls the host's staking_getValidators method.
func (c *Client) GetValidators(ctx context.Context) (json.RawMessage, error) {
	return c.Call(ctx, "staking_getValidators", nil)
}
