package types

import (
	"fmt"
	"math/big"
	"strings"
)

// TokenDecimals is the number of decimals the native token uses; all
// Amount values are integers in the token's smallest unit.
const TokenDecimals = 18

// WeiPerToken is 10^18, the conversion factor between whole tokens and the
// smallest unit.
var WeiPerToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(TokenDecimals), nil)

// Amount is a non-negative integer quantity of the native token in its
// smallest unit. It is a thin wrapper so call sites don't need to reason
// about big.Int nil-safety at every boundary.
type Amount struct {
	v *big.Int
}

// NewAmount wraps an int64 number of whole tokens.
func NewAmount(wholeTokens int64) Amount {
	return Amount{v: new(big.Int).Mul(big.NewInt(wholeTokens), WeiPerToken)}
}

// AmountFromWei wraps a raw smallest-unit integer.
func AmountFromWei(wei *big.Int) Amount {
	if wei == nil {
		return Amount{v: big.NewInt(0)}
	}
	return Amount{v: new(big.Int).Set(wei)}
}

// ZeroAmount is the additive identity.
func ZeroAmount() Amount { return Amount{v: big.NewInt(0)} }

func (a Amount) Wei() *big.Int {
	if a.v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.v)
}

func (a Amount) IsNegative() bool { return a.Wei().Sign() < 0 }
func (a Amount) IsZero() bool     { return a.Wei().Sign() == 0 }

func (a Amount) Add(b Amount) Amount { return Amount{v: new(big.Int).Add(a.Wei(), b.Wei())} }
func (a Amount) Sub(b Amount) Amount { return Amount{v: new(big.Int).Sub(a.Wei(), b.Wei())} }
func (a Amount) Cmp(b Amount) int    { return a.Wei().Cmp(b.Wei()) }

func (a Amount) String() string { return a.Wei().String() }

// ToWholeTokens renders the amount as whole-token units, truncating the
// fractional remainder — used only for display, never for consensus math.
func (a Amount) ToWholeTokens() *big.Int {
	return new(big.Int).Div(a.Wei(), WeiPerToken)
}

// WholeTokens is a readable alias for NewAmount, used at config
// boundaries where amounts are specified in whole tokens.
func WholeTokens(n int64) Amount { return NewAmount(n) }

// ToMDT renders the amount as an exact base-10 decimal string in
// whole-token units: integer part, then a '.' and up to TokenDecimals
// fractional digits with no trailing zeros. Unlike ToWholeTokens, it
// loses no precision — FromMDT is its exact inverse.
func (a Amount) ToMDT() string {
	wei := a.Wei()
	neg := wei.Sign() < 0
	abs := new(big.Int).Abs(wei)

	intPart, frac := new(big.Int), new(big.Int)
	intPart.QuoRem(abs, WeiPerToken, frac)

	fracStr := frac.String()
	fracStr = strings.Repeat("0", TokenDecimals-len(fracStr)) + fracStr
	fracStr = strings.TrimRight(fracStr, "0")

	out := intPart.String()
	if fracStr != "" {
		out += "." + fracStr
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FromMDT parses a decimal whole-token string back into exact wei. It is
// the inverse of ToMDT: FromMDT(ToMDT(wei)) == wei for every wei value,
// since both directions operate on integers and never pass through a
// floating-point representation.
func FromMDT(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("empty mdt string")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	if hasFrac {
		if len(fracPart) > TokenDecimals {
			return Amount{}, fmt.Errorf("mdt string has more than %d fractional digits: %q", TokenDecimals, s)
		}
		fracPart += strings.Repeat("0", TokenDecimals-len(fracPart))
	} else {
		fracPart = strings.Repeat("0", TokenDecimals)
	}

	intVal, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid integer part in mdt string: %q", s)
	}
	fracVal, ok := new(big.Int).SetString(fracPart, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid fractional part in mdt string: %q", s)
	}

	wei := new(big.Int).Mul(intVal, WeiPerToken)
	wei.Add(wei, fracVal)
	if neg {
		wei.Neg(wei)
	}
	return AmountFromWei(wei), nil
}
