package types

import (
	"encoding/binary"
	"math/big"

	"github.com/holiman/uint256"
)

// Transaction is the canonical transaction shape the core signs and
// verifies. Fields and their signing-message byte layout are fixed by
// spec (§3 "Transaction") — any deviation breaks cross-node verification.
type Transaction struct {
	ChainID  uint64   `json:"chainId"`
	Nonce    uint64   `json:"nonce"`
	From     Address  `json:"from"`
	To       *Address `json:"to"` // nil means contract creation
	Value    *big.Int `json:"value"`
	GasPrice uint64   `json:"gasPrice"`
	GasLimit uint64   `json:"gasLimit"`
	Data     []byte   `json:"data"`

	// Populated once signed.
	V uint64 `json:"v"`
	R [32]byte `json:"r"`
	S [32]byte `json:"s"`
}

// SigningMessage builds the canonical pre-hash byte sequence:
// nonce(8 BE) || from(20) || to(20) || value(16 BE) || gas_price(8 BE) ||
// gas_limit(8 BE) || data. chain_id does not appear in this message; it
// only participates in deriving v (see crypto.SignTransaction).
func (tx *Transaction) SigningMessage() []byte {
	buf := make([]byte, 0, 8+20+20+16+8+8+len(tx.Data))

	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], tx.Nonce)
	buf = append(buf, nonceBuf[:]...)

	buf = append(buf, tx.From.Bytes()...)

	if tx.To != nil {
		buf = append(buf, tx.To.Bytes()...)
	} else {
		buf = append(buf, ZeroAddress.Bytes()...)
	}

	valueBuf := make([]byte, 16)
	if tx.Value != nil {
		v := new(uint256.Int)
		v.SetFromBig(tx.Value)
		vb := v.Bytes32()
		copy(valueBuf, vb[16:32])
	}
	buf = append(buf, valueBuf...)

	var gasPriceBuf [8]byte
	binary.BigEndian.PutUint64(gasPriceBuf[:], tx.GasPrice)
	buf = append(buf, gasPriceBuf[:]...)

	var gasLimitBuf [8]byte
	binary.BigEndian.PutUint64(gasLimitBuf[:], tx.GasLimit)
	buf = append(buf, gasLimitBuf[:]...)

	buf = append(buf, tx.Data...)
	return buf
}

// Hash returns Keccak256(SigningMessage()), the value that gets signed.
func (tx *Transaction) Hash() Hash {
	return Keccak256Hash(tx.SigningMessage())
}

// RawEncode produces the wire format described in §6 "Raw transaction
// encoding": SigningMessage() || v(1 byte) || r(32) || s(32), hex-encoded
// with a 0x prefix by the caller.
func (tx *Transaction) RawEncode() []byte {
	out := tx.SigningMessage()
	out = append(out, byte(tx.V))
	out = append(out, tx.R[:]...)
	out = append(out, tx.S[:]...)
	return out
}
