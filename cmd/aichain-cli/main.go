// Command aichain-cli is the operator-facing tool for key management,
// address and balance lookups, node registration, reward claims, and
// staking message signing against a running aichain-node.
package main

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"aichain-core/chain/crypto"
	"aichain-core/chain/types"
	"aichain-core/clients/sdk"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	rpcURL     string
	keyFile    string
	chainID    uint64
)

var rootCmd = &cobra.Command{
	Use:   "aichain-cli",
	Short: "Operator CLI for an aichain deployment",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc", "http://127.0.0.1:8645", "node RPC endpoint")
	rootCmd.PersistentFlags().StringVar(&keyFile, "key-file", "./validator.key", "hex-encoded secp256k1 private key file")
	rootCmd.PersistentFlags().Uint64Var(&chainID, "chain-id", 1337, "chain id used when signing transactions")

	rootCmd.AddCommand(generateKeyCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(signStakeCmd)
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(registerNodeCmd)
}

var generateKeyCmd = &cobra.Command{
	Use:   "generate-key",
	Short: "Generate a new secp256k1 key and write it to --key-file",
	Run: func(cmd *cobra.Command, args []string) {
		priv, err := crypto.GenerateKey()
		if err != nil {
			fail("generate key: %v", err)
		}
		raw := privateKeyToHex(priv)
		if err := os.WriteFile(keyFile, []byte(raw), 0o600); err != nil {
			fail("write key file: %v", err)
		}
		addr := crypto.PublicKeyToAddress(priv)
		fmt.Printf("address: %s\n", addr.Hex())
		fmt.Printf("key written to %s\n", keyFile)
	},
}

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address for --key-file",
	Run: func(cmd *cobra.Command, args []string) {
		w := loadWallet()
		fmt.Println(w.Address().Hex())
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the current balance for --key-file",
	Run: func(cmd *cobra.Command, args []string) {
		w := loadWallet()
		bal, err := w.Balance(context.Background())
		if err != nil {
			fail("get balance: %v", err)
		}
		fmt.Println(bal.String())
	},
}

var signStakeCmd = &cobra.Command{
	Use:   "sign-stake [message]",
	Short: "Sign an off-chain staking/registration message",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w := loadWallet()
		sig, err := w.SignStakingMessage(args[0])
		if err != nil {
			fail("sign message: %v", err)
		}
		fmt.Println("0x" + hex.EncodeToString(sig))
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim [epoch] [amount-wei] [proof-hex...]",
	Short: "Submit a reward claim for an epoch's Merkle root",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		epoch, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			fail("invalid epoch: %v", err)
		}
		wei, ok := new(big.Int).SetString(args[1], 10)
		if !ok {
			fail("invalid amount: %s", args[1])
		}
		proof := make([][]byte, 0, len(args)-2)
		for _, p := range args[2:] {
			b, err := hex.DecodeString(strings.TrimPrefix(p, "0x"))
			if err != nil {
				fail("invalid proof entry %q: %v", p, err)
			}
			proof = append(proof, b)
		}

		w := loadWallet()
		txHash, err := w.ClaimEpochReward(context.Background(), epoch, types.AmountFromWei(wei), proof)
		if err != nil {
			fail("claim reward: %v", err)
		}
		fmt.Println(txHash.Hex())
	},
}

var registerNodeCmd = &cobra.Command{
	Use:   "register-node [stake-wei]",
	Short: "Register this wallet's address in the node tier registry",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w := loadWallet()
		client := sdk.DefaultRPCClient(rpcURL)
		raw, err := client.Call(context.Background(), "nodetier_register", []any{w.Address().Hex(), args[0]})
		if err != nil {
			fail("register node: %v", err)
		}
		var pretty map[string]any
		json.Unmarshal(raw, &pretty)
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
	},
}

func loadWallet() *sdk.Wallet {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		fail("read key file: %v", err)
	}
	client := sdk.DefaultRPCClient(rpcURL)
	w, err := sdk.ImportPrivateKeyHex(strings.TrimSpace(string(data)), client, chainID)
	if err != nil {
		fail("load wallet: %v", err)
	}
	return w
}

func privateKeyToHex(priv *ecdsa.PrivateKey) string {
	return hex.EncodeToString(gethcrypto.FromECDSA(priv))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "aichain-cli: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fail("%v", err)
	}
}
