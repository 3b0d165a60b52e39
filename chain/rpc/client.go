package rpc

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"aichain-core/chain/config"
	"aichain-core/chain/coreerr"
)

// Client is the resilient RPC client every outbound call into the host
// chain node goes through. It owns an HTTP connection pool with bounded
// concurrency, a per-host circuit breaker, and a background health-check
// loop.
type Client struct {
	cfg    config.RpcConfig
	http   *http.Client
	sem    chan struct{}
	cb     *CircuitBreaker
	metrics *Metrics

	stopHealth chan struct{}
	healthOnce sync.Once
}

func NewClient(cfg config.RpcConfig) *Client {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxConnections,
		MaxIdleConnsPerHost: cfg.MaxConnections,
		MaxConnsPerHost:     cfg.MaxConnections,
	}

	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.TimeoutMs) * time.Millisecond,
		},
		sem: make(chan struct{}, cfg.MaxConnections),
		cb: NewCircuitBreaker(
			cfg.FailureThreshold,
			time.Duration(cfg.RecoveryTimeoutMs)*time.Millisecond,
			cfg.HalfOpenMaxCalls,
		),
		metrics:    NewMetrics(),
		stopHealth: make(chan struct{}),
	}
	return c
}

// Call performs a single JSON-RPC call with retry, circuit breaking, and
// latency metrics.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	start := time.Now()
	c.metrics.IncTotal()

	result, err := c.callWithRetry(ctx, method, params)

	c.metrics.ObserveLatency(time.Since(start))
	if err != nil {
		c.metrics.IncFailed()
		c.metrics.SetLastError(time.Now())
	} else {
		c.metrics.IncSuccessful()
	}
	return result, err
}

func (c *Client) callWithRetry(ctx context.Context, method string, params any) (json.RawMessage, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.IncRetried()
			delay := backoffDelay(c.cfg, attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.cb.Allow(); err != nil {
			return nil, err
		}

		c.sem <- struct{}{}
		result, err := doJSONRPC(ctx, c.http, c.cfg.URL, method, params, 1)
		<-c.sem

		if err == nil {
			c.cb.RecordSuccess()
			return result, nil
		}

		c.cb.RecordFailure()
		lastErr = err

		if e, ok := err.(*coreerr.Error); ok {
			if e.Kind == coreerr.KindCircuitOpen {
				return nil, err
			}
			if !e.Retryable() {
				return nil, err
			}
		}
	}

	return nil, lastErr
}

// backoffDelay computes delay = min(initial * base^(attempt-1), max) +
// jitter in [-20%, +20%], where attempt is 1 for the first retry.
func backoffDelay(cfg config.RpcConfig, attempt int) time.Duration {
	base := float64(cfg.InitialDelayMs) * math.Pow(cfg.BackoffBase, float64(attempt-1))
	if base > float64(cfg.MaxDelayMs) {
		base = float64(cfg.MaxDelayMs)
	}

	jitterFrac := (rand.Float64()*0.4 - 0.2) // [-0.2, +0.2]
	withJitter := base * (1 + jitterFrac)
	if withJitter < 0 {
		withJitter = 0
	}
	return time.Duration(withJitter) * time.Millisecond
}

// Batch sends a batch of JSON-RPC requests as a single array, preserving
// per-index error structure. The batch timeout is 2x the single-call
// timeout.
func (c *Client) Batch(ctx context.Context, items []BatchItem) ([]BatchResult, error) {
	batchCtx, cancel := context.WithTimeout(ctx, 2*time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	c.metrics.IncBatched()

	if err := c.cb.Allow(); err != nil {
		return nil, err
	}

	c.sem <- struct{}{}
	results, err := doJSONRPCBatch(batchCtx, c.http, c.cfg.URL, items)
	<-c.sem

	if err != nil {
		c.cb.RecordFailure()
		return nil, err
	}
	c.cb.RecordSuccess()
	return results, nil
}

// StartHealthCheck launches the background loop that pings
// eth_blockNumber at the configured interval, feeding failures into the
// circuit breaker exactly like real calls. Call Stop to shut it down.
func (c *Client) StartHealthCheck(ctx context.Context) {
	interval := time.Duration(c.cfg.HealthCheckIntervalMs) * time.Millisecond
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				checkCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
				_, _ = c.Call(checkCtx, "eth_blockNumber", nil)
				cancel()
			case <-c.stopHealth:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop shuts down the background health-check loop.
func (c *Client) Stop() {
	c.healthOnce.Do(func() { close(c.stopHealth) })
}

// CircuitState returns the current breaker state, for diagnostics.
func (c *Client) CircuitState() string { return c.cb.State() }

// Metrics returns the client's observation-only metrics snapshot.
func (c *Client) Metrics() MetricsSnapshot { return c.metrics.Snapshot() }
