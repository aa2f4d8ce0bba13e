// Package fixedpoint provides checked wide-integer arithmetic for the
// bonding-curve engine. Every curve quantity (reserves, accrued fees, fee
// components) is a Uint128: a 128-bit unsigned integer that refuses to wrap
// silently. There is no float anywhere in this package.
package fixedpoint

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// Rounding selects the direction mul_div rounds a non-exact quotient.
type Rounding int

const (
	// Floor truncates toward zero (protocol-favoring on buy outputs).
	Floor Rounding = iota
	// Ceil rounds away from zero (protocol-favoring on divisor growth).
	Ceil
)

var (
	// ErrOverflow is returned by any checked operation whose result does
	// not fit in 128 bits.
	ErrOverflow = errors.New("fixedpoint: checked operation overflowed")
	// ErrDivisionByZero is returned by MulDiv when the divisor is zero.
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")
	// ErrNegative is returned when a checked subtraction would go negative.
	ErrNegative = errors.New("fixedpoint: subtraction underflow")
)

// maxUint128 is 2^128 - 1, the ceiling every Uint128 value is checked against.
var maxUint128 = func() *uint256.Int {
	v := uint256.NewInt(1)
	v.Lsh(v, 128)
	return v.Sub(v, uint256.NewInt(1))
}()

// Uint128 is a checked 128-bit unsigned integer. The zero value is 0.
// Internally it is stored in a 256-bit register, so Add and Mul detect a
// result above 2^128-1 before it is narrowed.
type Uint128 struct {
	v uint256.Int
}

// Zero is the additive identity.
var Zero = Uint128{}

// FromUint64 builds a Uint128 from a machine word. It always fits.
func FromUint64(x uint64) Uint128 {
	var u Uint128
	u.v.SetUint64(x)
	return u
}

// FromString parses a base-10 string into a Uint128. Wire formats (JSON
// request bodies, the HTTP surface) carry amounts as decimal strings rather
// than numbers, since a 128-bit value routinely exceeds float64's 53 bits of
// exact integer precision.
func FromString(s string) (Uint128, error) {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Uint128{}, errors.New("fixedpoint: invalid decimal string")
	}
	return FromBigInt(x)
}

// FromBigInt builds a Uint128 from an arbitrary-precision integer, failing
// if it is negative or exceeds 2^128-1.
func FromBigInt(x *big.Int) (Uint128, error) {
	if x.Sign() < 0 {
		return Uint128{}, ErrNegative
	}
	v, overflow := uint256.FromBig(x)
	if overflow || v.Cmp(maxUint128) > 0 {
		return Uint128{}, ErrOverflow
	}
	return Uint128{v: *v}, nil
}

// Big returns the value as an arbitrary-precision integer, for persistence
// and presentation.
func (u Uint128) Big() *big.Int {
	return u.v.ToBig()
}

// String renders the decimal representation.
func (u Uint128) String() string {
	return u.v.Dec()
}

// IsZero reports whether the value is 0.
func (u Uint128) IsZero() bool {
	return u.v.IsZero()
}

// Cmp compares two values: -1, 0, or 1.
func (u Uint128) Cmp(other Uint128) int {
	return u.v.Cmp(&other.v)
}

// Hi64 and Lo64 split the value into its high and low 64-bit words, in the
// fixed two-word wire format the repository layer persists reserves in.
// This is the encode half of the width-preserving round trip §6 requires:
// a 128-bit reserve packed as two uint64 columns never silently truncates,
// unlike packing it into a single float64 or a narrower integer would.
func (u Uint128) Hi64() uint64 {
	shifted := new(uint256.Int).Rsh(&u.v, 64)
	return shifted.Uint64()
}

// Lo64 returns the low 64 bits.
func (u Uint128) Lo64() uint64 {
	mask := new(uint256.Int).SetAllOne()
	mask.Rsh(mask, 192) // 2^64 - 1
	lo := new(uint256.Int).And(&u.v, mask)
	return lo.Uint64()
}

// FromWords reconstructs a Uint128 from the hi/lo words produced by Hi64
// and Lo64, using a checked left-shift rather than a raw bit-or so that a
// corrupt hi word (one that would push the value past 2^128-1) is caught
// instead of silently truncated.
func FromWords(hi, lo uint64) (Uint128, error) {
	shifted, err := CheckedShl(FromUint64(hi), 64)
	if err != nil {
		return Uint128{}, err
	}
	return CheckedAdd(shifted, FromUint64(lo))
}

// CheckedAdd returns a+b, failing with ErrOverflow if the sum exceeds
// 2^128-1.
func CheckedAdd(a, b Uint128) (Uint128, error) {
	sum, overflow := new(uint256.Int).AddOverflow(&a.v, &b.v)
	if overflow || sum.Cmp(maxUint128) > 0 {
		return Uint128{}, ErrOverflow
	}
	return Uint128{v: *sum}, nil
}

// CheckedSub returns a-b, failing with ErrNegative if b > a.
func CheckedSub(a, b Uint128) (Uint128, error) {
	if a.Cmp(b) < 0 {
		return Uint128{}, ErrNegative
	}
	diff, _ := new(uint256.Int).SubOverflow(&a.v, &b.v)
	return Uint128{v: *diff}, nil
}

// CheckedMul returns a*b, failing with ErrOverflow if the product exceeds
// 2^128-1.
func CheckedMul(a, b Uint128) (Uint128, error) {
	prod, overflow := new(uint256.Int).MulOverflow(&a.v, &b.v)
	if overflow || prod.Cmp(maxUint128) > 0 {
		return Uint128{}, ErrOverflow
	}
	return Uint128{v: *prod}, nil
}

// CheckedShl returns v<<n, failing with ErrOverflow if n exceeds the 192
// bound required to keep the 256-bit scratch register from wrapping, or if
// the shifted result no longer fits in 128 bits.
func CheckedShl(v Uint128, n uint) (Uint128, error) {
	if n > 192 {
		return Uint128{}, ErrOverflow
	}
	if v.v.BitLen()+int(n) > 128 {
		return Uint128{}, ErrOverflow
	}
	shifted := new(uint256.Int).Lsh(&v.v, n)
	return Uint128{v: *shifted}, nil
}

// MulDiv computes floor_or_ceil((a*b)/d) without ever losing precision to
// a 128-bit intermediate overflow. a*b is evaluated in math/big's
// arbitrary-precision scratch space, divided, rounded per `rounding`, and
// the quotient is checked back into the 128-bit domain before it is
// returned. This is the only division
// the curve math and fee engine use.
func MulDiv(a, b, d Uint128, rounding Rounding) (Uint128, error) {
	if d.IsZero() {
		return Uint128{}, ErrDivisionByZero
	}
	num := new(big.Int).Mul(a.Big(), b.Big())
	den := d.Big()
	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rounding == Ceil && rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return FromBigInt(quo)
}
