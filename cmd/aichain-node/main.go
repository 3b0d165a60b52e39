package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"aichain-core/chain/claimstore"
	"aichain-core/chain/config"
	"aichain-core/chain/monitoring"
	"aichain-core/chain/nodetier"
	"aichain-core/chain/rootsubnet"
	"aichain-core/chain/rpcserver"
	"aichain-core/chain/scoring"
	"aichain-core/chain/tokenomics"
	"aichain-core/chain/types"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "aichain-node",
	Short: "aichain tokenomics and scoring core",
	Long:  "Runs the deterministic tokenomics, scoring, and reward-claim core for an aichain deployment",
	Run:   runNode,
}

var (
	configFile   string
	dataDir      string
	rpcPort      int
	metricsPort  int
	epochSeconds int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "JSON config file (defaults applied when empty)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "data directory for epoch persistence")
	rootCmd.PersistentFlags().IntVar(&rpcPort, "rpc-port", 8645, "JSON-RPC server port")
	rootCmd.PersistentFlags().IntVar(&metricsPort, "metrics-port", 9400, "Prometheus metrics port")
	rootCmd.PersistentFlags().IntVar(&epochSeconds, "epoch-seconds", 60, "seconds between epoch ticks")

	viper.BindPFlags(rootCmd.PersistentFlags())
}

// node wires the tokenomics pipeline, node/scoring registries, persistence,
// RPC surface, and metrics into one runnable unit.
type node struct {
	cfg config.Config

	emission    *tokenomics.EmissionController
	pool        *tokenomics.RecyclingPool
	burn        *tokenomics.BurnManager
	distributor *tokenomics.Distributor
	claims      *tokenomics.ClaimManager
	integration *tokenomics.Integration

	tiers   *nodetier.Registry
	scores  *scoring.Manager
	subnets *rootsubnet.RootSubnet

	store   *claimstore.Store
	metrics *monitoring.MetricsServer
	rpc     *rpcserver.Server

	mu         sync.Mutex
	epoch      uint64
	lastResult tokenomics.EpochTokenomics
}

func newNode(cfg config.Config, dataDir string, metricsCfg monitoring.Config) (*node, error) {
	store, err := claimstore.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open claim store: %w", err)
	}

	pool := tokenomics.NewRecyclingPool()
	burn := tokenomics.NewBurnManager()
	n := &node{
		cfg:         cfg,
		emission:    tokenomics.NewEmissionController(cfg.Tokenomics),
		pool:        pool,
		burn:        burn,
		distributor: tokenomics.NewDistributor(cfg.Distribution, pool),
		claims:      tokenomics.NewClaimManager(),
		tiers:       nodetier.NewRegistry(cfg.NodeTier),
		scores:      scoring.NewManager(cfg.Scoring),
		subnets: rootsubnet.New(rootsubnet.Config{
			MaxSubnets:       256,
			MaxRootValidators: 64,
			MinStakeForRoot:  types.NewAmount(cfg.NodeTier.ValidatorMinStake),
			RegistrationBurn: types.NewAmount(10),
		}),
		store:   store,
		metrics: monitoring.NewMetricsServer(metricsCfg),
		rpc:     rpcserver.New(),
	}
	n.integration = tokenomics.NewIntegration(n.emission, n.pool, n.burn, n.distributor, n.claims)
	n.registerRPCMethods()
	return n, nil
}

// runEpoch advances the pipeline by one epoch using the current registry
// snapshots as inputs, persists the result, and updates metrics.
func (n *node) runEpoch() error {
	n.mu.Lock()
	n.epoch++
	epoch := n.epoch
	n.mu.Unlock()

	minerScores := n.scores.MinerScores()
	validatorStakes := make(map[string]types.Amount)
	for _, v := range n.tiers.Validators() {
		validatorStakes[v.Address] = v.Stake
	}

	tasks := uint64(len(minerScores))
	utilityBPS, err := tokenomics.CalculateUtility(n.cfg.Tokenomics, tasks, 5000, 8000)
	if err != nil {
		return fmt.Errorf("calculate utility: %w", err)
	}

	start := time.Now()
	result, err := n.integration.RunEpoch(utilityBPS, tokenomics.EpochInputs{
		Epoch:            epoch,
		Tasks:            tasks,
		DifficultyBPS:    5000,
		ParticipationBPS: 8000,
		QualityBPS:       9000,
		MinerScores:      minerScores,
		ValidatorStakes:  validatorStakes,
	})
	if err != nil {
		return fmt.Errorf("run epoch %d: %w", epoch, err)
	}
	duration := time.Since(start)

	n.mu.Lock()
	n.lastResult = result
	n.mu.Unlock()

	if err := n.store.WriteEpoch(result); err != nil {
		log.Printf("aichain-node: failed to persist epoch %d: %v", epoch, err)
	}

	n.scores.ApplyDecay()

	supply := amountToFloat(n.emission.CurrentSupply())
	emissionTokens := amountToFloat(result.EmissionAmount)
	mintedTokens := amountToFloat(result.FromMint)
	burnedTokens := amountToFloat(result.BurnedAmount)
	poolBalance := amountToFloat(n.pool.Balance())
	n.metrics.RecordEpoch(duration, emissionTokens, mintedTokens, burnedTokens, supply, poolBalance)

	tierCounts := map[string]int{
		types.LightNode.String():      0,
		types.FullNode.String():       0,
		types.Validator.String():      0,
		types.SuperValidator.String(): 0,
	}
	for _, info := range n.tiers.NodesAtLeast(types.LightNode) {
		tierCounts[info.Tier.String()]++
	}
	n.metrics.RecordNodeTierCounts(tierCounts)

	log.Printf("aichain-node: epoch %d done in %s: emission=%s minted=%s burned=%s claim_root=%s",
		epoch, duration, result.EmissionAmount, result.FromMint, result.BurnedAmount, result.ClaimRoot.Hex())
	return nil
}

// registerRPCMethods installs the node's JSON-RPC surface: claim
// submission, epoch lookups, and node registration. The eth_* methods an
// SDK client uses for balances and nonces are not served here.
func (n *node) registerRPCMethods() {
	n.rpc.Register("tokenomics_getEpoch", func(params json.RawMessage) (any, error) {
		var args []uint64
		if err := json.Unmarshal(params, &args); err != nil || len(args) != 1 {
			return nil, fmt.Errorf("expected [epoch]")
		}
		rec, err := n.store.ReadEpoch(args[0])
		if err != nil {
			return nil, err
		}
		return rec, nil
	})

	n.rpc.Register("tokenomics_claimReward", func(params json.RawMessage) (any, error) {
		var args []json.RawMessage
		if err := json.Unmarshal(params, &args); err != nil || len(args) != 4 {
			return nil, fmt.Errorf("expected [epoch, address, amount, proof]")
		}
		var epoch uint64
		var addr, amountStr string
		var proofHex []string
		if err := json.Unmarshal(args[0], &epoch); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(args[1], &addr); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(args[2], &amountStr); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(args[3], &proofHex); err != nil {
			return nil, err
		}

		weiAmount, ok := new(big.Int).SetString(amountStr, 10)
		if !ok {
			n.metrics.RecordClaimRejected("bad_amount")
			return nil, fmt.Errorf("malformed amount %q", amountStr)
		}
		amount := types.AmountFromWei(weiAmount)

		proof := make([][]byte, len(proofHex))
		for i, p := range proofHex {
			b, err := hex.DecodeString(strings.TrimPrefix(p, "0x"))
			if err != nil {
				n.metrics.RecordClaimRejected("bad_proof")
				return nil, err
			}
			proof[i] = b
		}

		if err := n.claims.ClaimReward(epoch, addr, amount, proof); err != nil {
			n.metrics.RecordClaimRejected("verification_failed")
			return nil, err
		}
		n.metrics.RecordClaimAccepted()
		return types.Keccak256Hash([]byte(fmt.Sprintf("claim:%d:%s:%s", epoch, addr, amountStr))).Hex(), nil
	})

	n.rpc.Register("nodetier_register", func(params json.RawMessage) (any, error) {
		var args []json.RawMessage
		if err := json.Unmarshal(params, &args); err != nil || len(args) != 2 {
			return nil, fmt.Errorf("expected [address, stakeWei]")
		}
		var addr, stakeStr string
		if err := json.Unmarshal(args[0], &addr); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(args[1], &stakeStr); err != nil {
			return nil, err
		}
		wei, ok := new(big.Int).SetString(stakeStr, 10)
		if !ok {
			return nil, fmt.Errorf("malformed stake %q", stakeStr)
		}
		info, err := n.tiers.Register(addr, types.AmountFromWei(wei), n.epoch)
		if err != nil {
			return nil, err
		}
		return info, nil
	})
}

// amountToFloat renders an Amount as a whole-token float64 for metrics
// display only; never used on a consensus path.
func amountToFloat(a types.Amount) float64 {
	f := new(big.Float).SetInt(a.ToWholeTokens())
	v, _ := f.Float64()
	return v
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runNode(cmd *cobra.Command, args []string) {
	fmt.Printf("Starting aichain-node v%s (build %s, commit %s)\n", Version, BuildTime, Commit)

	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("aichain-node: failed to load config: %v", err)
	}
	cfg.Rpc.URL = fmt.Sprintf("http://127.0.0.1:%d", rpcPort)

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("aichain-node: failed to create data dir: %v", err)
	}

	n, err := newNode(cfg, dataDir+"/claims.db", monitoring.Config{
		ListenAddr:  fmt.Sprintf(":%d", metricsPort),
		MetricsPath: "/metrics",
		HealthPath:  "/health",
	})
	if err != nil {
		log.Fatalf("aichain-node: failed to initialize: %v", err)
	}
	defer n.store.Close()

	if err := n.metrics.Start(); err != nil {
		log.Fatalf("aichain-node: failed to start metrics server: %v", err)
	}
	defer n.metrics.Stop()

	rpcAddr := fmt.Sprintf(":%d", rpcPort)
	go func() {
		log.Printf("aichain-node: JSON-RPC listening on %s", rpcAddr)
		if err := http.ListenAndServe(rpcAddr, n.rpc.Handler()); err != nil {
			log.Printf("aichain-node: RPC server error: %v", err)
		}
	}()

	ticker := time.NewTicker(time.Duration(epochSeconds) * time.Second)
	defer ticker.Stop()

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := n.runEpoch(); err != nil {
					log.Printf("aichain-node: epoch error: %v", err)
				}
			case <-stop:
				return
			}
		}
	}()

	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Printf("Epoch interval: %ds\n", epochSeconds)
	fmt.Println("aichain-node is running")

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	close(stop)
	fmt.Println("aichain-node shutting down")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
