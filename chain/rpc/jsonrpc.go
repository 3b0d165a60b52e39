// Package rpc implements the resilient JSON-RPC client every outbound
// call into the host chain node goes through: a bounded HTTP connection
// pool, a per-host circuit breaker, exponential backoff retry, a
// background health-check loop, and EWMA latency metrics.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"aichain-core/chain/coreerr"
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int    `json:"id"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wireError      `json:"error,omitempty"`
	ID      int             `json:"id"`
}

type wireError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// doJSONRPC sends a single JSON-RPC request over HTTP POST and decodes
// the envelope, translating a populated error field into a structured
// *coreerr.Error. Transport-level failures are wrapped as ConnectionError
// so callers can distinguish them from RPC-semantic errors.
func doJSONRPC(ctx context.Context, httpClient *http.Client, url, method string, params any, id int) (json.RawMessage, error) {
	req := Request{JSONRPC: "2.0", Method: method, Params: params, ID: id}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("rpc: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, coreerr.ConnectionError(url, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, coreerr.ConnectionError(url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, coreerr.ConnectionError(url, err)
	}

	var rpcResp Response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, coreerr.ConnectionError(url, fmt.Errorf("decode response: %w", err))
	}

	if rpcResp.Error != nil {
		return nil, coreerr.ParseRPCError(coreerr.RPCCode(rpcResp.Error.Code), rpcResp.Error.Message, rpcResp.Error.Data)
	}

	return rpcResp.Result, nil
}

// BatchItem is one entry of a batched JSON-RPC call.
type BatchItem struct {
	Method string
	Params any
}

// BatchResult preserves per-index error structure: a failed item never
// masks the results of its neighbors.
type BatchResult struct {
	Result json.RawMessage
	Err    error
}

func doJSONRPCBatch(ctx context.Context, httpClient *http.Client, url string, items []BatchItem) ([]BatchResult, error) {
	reqs := make([]Request, len(items))
	for i, item := range items {
		reqs[i] = Request{JSONRPC: "2.0", Method: item.Method, Params: item.Params, ID: i}
	}

	body, err := json.Marshal(reqs)
	if err != nil {
		return nil, fmt.Errorf("rpc: marshal batch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, coreerr.ConnectionError(url, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, coreerr.ConnectionError(url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, coreerr.ConnectionError(url, err)
	}

	var rpcResps []Response
	if err := json.Unmarshal(respBody, &rpcResps); err != nil {
		return nil, coreerr.ConnectionError(url, fmt.Errorf("decode batch response: %w", err))
	}

	byID := make(map[int]Response, len(rpcResps))
	for _, r := range rpcResps {
		byID[r.ID] = r
	}

	out := make([]BatchResult, len(items))
	for i := range items {
		r, ok := byID[i]
		if !ok {
			out[i] = BatchResult{Err: coreerr.New(coreerr.KindInternalError, "missing batch response for index")}
			continue
		}
		if r.Error != nil {
			out[i] = BatchResult{Err: coreerr.ParseRPCError(coreerr.RPCCode(r.Error.Code), r.Error.Message, r.Error.Data)}
			continue
		}
		out[i] = BatchResult{Result: r.Result}
	}
	return out, nil
}
