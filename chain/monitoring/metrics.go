// Package monitoring exposes the core's observation-only metrics over
// Prometheus. Nothing here feeds back into consensus; it is a read-only
// window into the tokenomics pipeline and RPC client for host dashboards.
package monitoring

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves a Prometheus scrape endpoint plus a lightweight
// health endpoint.
type MetricsServer struct {
	listenAddr  string
	metricsPath string
	healthPath  string
	registry    *prometheus.Registry

	epochsProcessed prometheus.Counter
	epochDuration   prometheus.Histogram
	emissionAmount  prometheus.Gauge
	mintedAmount    prometheus.Gauge
	burnedTotal     prometheus.Counter
	burnedByReason  *prometheus.CounterVec
	currentSupply   prometheus.Gauge
	poolBalance     prometheus.Gauge
	poolBySource    *prometheus.GaugeVec
	claimsSubmitted prometheus.Counter
	claimsRejected  *prometheus.CounterVec
	nodesByTier     *prometheus.GaugeVec

	rpcTotal     prometheus.Counter
	rpcFailed    prometheus.Counter
	rpcRetried   prometheus.Counter
	rpcLatencyMs prometheus.Gauge
	circuitState *prometheus.GaugeVec

	server *http.Server
	mu     sync.Mutex
}

// Config holds the metrics server's listen configuration.
type Config struct {
	ListenAddr  string
	MetricsPath string
	HealthPath  string
}

func DefaultConfig() Config {
	return Config{ListenAddr: ":9400", MetricsPath: "/metrics", HealthPath: "/health"}
}

func NewMetricsServer(cfg Config) *MetricsServer {
	ms := &MetricsServer{
		listenAddr:  cfg.ListenAddr,
		metricsPath: cfg.MetricsPath,
		healthPath:  cfg.HealthPath,
		registry:    prometheus.NewRegistry(),
	}
	ms.initMetrics()
	return ms
}

func (ms *MetricsServer) initMetrics() {
	ms.epochsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aichain_epochs_processed_total",
		Help: "Total epochs processed by the tokenomics pipeline.",
	})
	ms.epochDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aichain_epoch_duration_seconds",
		Help:    "Wall-clock time to process one epoch end to end.",
		Buckets: prometheus.DefBuckets,
	})
	ms.emissionAmount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aichain_epoch_emission_tokens",
		Help: "Emission amount computed for the most recent epoch, in whole tokens.",
	})
	ms.mintedAmount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aichain_epoch_minted_tokens",
		Help: "Mint-funded portion of the most recent epoch's emission.",
	})
	ms.burnedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aichain_burned_tokens_total",
		Help: "Cumulative tokens burned across all epochs.",
	})
	ms.burnedByReason = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aichain_burned_tokens_by_reason_total",
		Help: "Cumulative tokens burned, broken out by reason.",
	}, []string{"reason"})
	ms.currentSupply = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aichain_current_supply_tokens",
		Help: "Current circulating supply, in whole tokens.",
	})
	ms.poolBalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aichain_recycling_pool_balance_tokens",
		Help: "Current recycling pool balance.",
	})
	ms.poolBySource = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aichain_recycling_pool_by_source_tokens",
		Help: "Recycling pool lifetime credits, broken out by source.",
	}, []string{"source"})
	ms.claimsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aichain_claims_submitted_total",
		Help: "Total successful reward claims.",
	})
	ms.claimsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aichain_claims_rejected_total",
		Help: "Rejected reward claims, broken out by reason.",
	}, []string{"reason"})
	ms.nodesByTier = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aichain_nodes_by_tier",
		Help: "Registered node count, broken out by tier.",
	}, []string{"tier"})

	ms.rpcTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aichain_rpc_calls_total",
		Help: "Total outbound RPC calls.",
	})
	ms.rpcFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aichain_rpc_calls_failed_total",
		Help: "Failed outbound RPC calls.",
	})
	ms.rpcRetried = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aichain_rpc_calls_retried_total",
		Help: "Retried outbound RPC calls.",
	})
	ms.rpcLatencyMs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aichain_rpc_ewma_latency_ms",
		Help: "Rolling EWMA RPC response time in milliseconds.",
	})
	ms.circuitState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aichain_rpc_circuit_state",
		Help: "Circuit breaker state per host (0=closed, 1=half_open, 2=open).",
	}, []string{"host"})

	for _, c := range []prometheus.Collector{
		ms.epochsProcessed, ms.epochDuration, ms.emissionAmount, ms.mintedAmount,
		ms.burnedTotal, ms.burnedByReason, ms.currentSupply, ms.poolBalance,
		ms.poolBySource, ms.claimsSubmitted, ms.claimsRejected, ms.nodesByTier,
		ms.rpcTotal, ms.rpcFailed, ms.rpcRetried, ms.rpcLatencyMs, ms.circuitState,
	} {
		ms.registry.MustRegister(c)
	}
}

// RecordEpoch updates the tokenomics gauges after one epoch completes.
// Amounts are in whole tokens, matching types.Amount's decimal rendering.
func (ms *MetricsServer) RecordEpoch(duration time.Duration, emissionTokens, mintedTokens, burnedTokens, supplyTokens, poolBalanceTokens float64) {
	ms.epochsProcessed.Inc()
	ms.epochDuration.Observe(duration.Seconds())
	ms.emissionAmount.Set(emissionTokens)
	ms.mintedAmount.Set(mintedTokens)
	ms.burnedTotal.Add(burnedTokens)
	ms.currentSupply.Set(supplyTokens)
	ms.poolBalance.Set(poolBalanceTokens)
}

func (ms *MetricsServer) RecordBurn(reason string, tokens float64) {
	ms.burnedByReason.WithLabelValues(reason).Add(tokens)
}

func (ms *MetricsServer) RecordPoolSource(source string, tokens float64) {
	ms.poolBySource.WithLabelValues(source).Set(tokens)
}

func (ms *MetricsServer) RecordClaimAccepted() { ms.claimsSubmitted.Inc() }

func (ms *MetricsServer) RecordClaimRejected(reason string) {
	ms.claimsRejected.WithLabelValues(reason).Inc()
}

func (ms *MetricsServer) RecordNodeTierCounts(counts map[string]int) {
	for tier, n := range counts {
		ms.nodesByTier.WithLabelValues(tier).Set(float64(n))
	}
}

// RecordRPC updates the RPC client gauges from an rpc.MetricsSnapshot-shaped
// sample; the caller decides the sampling cadence.
func (ms *MetricsServer) RecordRPC(total, failed, retried uint64, ewmaLatencyMs float64) {
	ms.rpcTotal.Add(float64(total))
	ms.rpcFailed.Add(float64(failed))
	ms.rpcRetried.Add(float64(retried))
	ms.rpcLatencyMs.Set(ewmaLatencyMs)
}

func circuitStateValue(state string) float64 {
	switch state {
	case "closed":
		return 0
	case "half_open":
		return 1
	case "open":
		return 2
	default:
		return -1
	}
}

// RecordCircuitState records the breaker state for host.
func (ms *MetricsServer) RecordCircuitState(host, state string) {
	ms.circuitState.WithLabelValues(host).Set(circuitStateValue(state))
}

func (ms *MetricsServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

// setupServer builds the router serving /metrics and the health endpoint.
func (ms *MetricsServer) setupServer() *http.Server {
	router := mux.NewRouter()
	router.Path(ms.metricsPath).Handler(promhttp.HandlerFor(ms.registry, promhttp.HandlerOpts{}))
	router.Path(ms.healthPath).HandlerFunc(ms.healthHandler)
	return &http.Server{Addr: ms.listenAddr, Handler: router}
}

// Start launches the HTTP server in the background. Errors after shutdown
// are logged, not returned, matching a fire-and-forget sidecar listener.
func (ms *MetricsServer) Start() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.server = ms.setupServer()
	go func() {
		if err := ms.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("monitoring: server error: %v\n", err)
		}
	}()
	return nil
}

func (ms *MetricsServer) Stop() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.server == nil {
		return nil
	}
	return ms.server.Close()
}
