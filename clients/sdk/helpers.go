package sdk

import (
	"crypto/ecdsa"
	"encoding/json"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// gethHexToECDSA decodes a hex secp256k1 private key via go-ethereum's
// parser, keeping key import consistent with how chain/crypto signs.
func gethHexToECDSA(hexKey string) (*ecdsa.PrivateKey, error) {
	return gethcrypto.HexToECDSA(hexKey)
}

func jsonUnmarshalString(raw json.RawMessage, out *string) error {
	return json.Unmarshal(raw, out)
}
