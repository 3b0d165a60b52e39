package rpc

import (
	"context"
	"encoding/json"
	"testing"
)

func TestBlockNumberParsesHex(t *testing.T) {
	srv := jsonRPCServer(t, func(method string) (json.RawMessage, *wireError) {
		if method != "eth_blockNumber" {
			t.Fatalf("unexpected method %s", method)
		}
		return json.RawMessage(`"0x2a"`), nil
	})
	defer srv.Close()

	c := NewClient(testRpcConfig(srv.URL))
	n, err := c.BlockNumber(context.Background())
	if err != nil {
		t.Fatalf("block number: %v", err)
	}
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}

func TestGetBalanceDefaultsToLatest(t *testing.T) {
	srv := jsonRPCServer(t, func(method string) (json.RawMessage, *wireError) {
		return json.RawMessage(`"0x64"`), nil
	})
	defer srv.Close()

	c := NewClient(testRpcConfig(srv.URL))
	bal, err := c.GetBalance(context.Background(), "0xabc", "")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if bal != "0x64" {
		t.Errorf("expected 0x64, got %s", bal)
	}
}

func TestGetTransactionCountParsesHex(t *testing.T) {
	srv := jsonRPCServer(t, func(method string) (json.RawMessage, *wireError) {
		return json.RawMessage(`"0x7"`), nil
	})
	defer srv.Close()

	c := NewClient(testRpcConfig(srv.URL))
	n, err := c.GetTransactionCount(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("get tx count: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7, got %d", n)
	}
}

func TestSendRawTransactionReturnsHash(t *testing.T) {
	srv := jsonRPCServer(t, func(method string) (json.RawMessage, *wireError) {
		return json.RawMessage(`"0xdeadbeef"`), nil
	})
	defer srv.Close()

	c := NewClient(testRpcConfig(srv.URL))
	hash, err := c.SendRawTransaction(context.Background(), "0x1234")
	if err != nil {
		t.Fatalf("send raw transaction: %v", err)
	}
	if hash != "0xdeadbeef" {
		t.Errorf("expected 0xdeadbeef, got %s", hash)
	}
}
