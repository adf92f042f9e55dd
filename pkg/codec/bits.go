package codec

import (
	"bytes"
	"math/big"
	"strings"

	"github.com/icza/bitio"
)

// Bits is a literal bit-string made of '0' and '1'.
type Bits string

// BytesToBits converts data to its bit-string, 8 bits per byte, MSB first.
func BytesToBits(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(data) * 8)

	r := bitio.NewReader(bytes.NewReader(data))
	for i := 0; i < len(data)*8; i++ {
		bit, err := r.ReadBool()
		if err != nil {
			// bytes.Reader only fails at EOF, which the loop bound excludes
			break
		}
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// BitsToBytes packs a bit-string whose length is a multiple of 8 into bytes,
// MSB first. Leading zero bits are kept.
func BitsToBytes(bits string) ([]byte, error) {
	if !CheckBitstring(bits) {
		return nil, newErr("encode", KindInvalidArgument, "", "not a bit-string")
	}
	if len(bits)%8 != 0 {
		e := newErr("encode", KindAlignment, "", "total length %d bits is not divisible by 8", len(bits))
		e.Value = len(bits)
		return nil, e
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(bits)/8))
	w := bitio.NewWriter(buf)
	for i := 0; i < len(bits); i++ {
		if err := w.WriteBool(bits[i] == '1'); err != nil {
			return nil, &Error{Op: "encode", Kind: KindInvalidArgument, Detail: "bit writer failed", Cause: err}
		}
	}
	if err := w.Close(); err != nil {
		return nil, &Error{Op: "encode", Kind: KindInvalidArgument, Detail: "bit writer failed", Cause: err}
	}
	return buf.Bytes(), nil
}

// CheckBitstring reports whether s consists only of '0' and '1'.
// The empty string is a valid (zero-length) bit-string.
func CheckBitstring(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}

func zeros(n int) string {
	return strings.Repeat("0", n)
}

var bigOne = big.NewInt(1)

// intRange returns the inclusive bounds accepted for a width-w integer.
// The lower bound is -(2^(w-1)) + 1 unless full is set.
func intRange(w int, full bool) (lo, hi *big.Int) {
	hi = new(big.Int).Lsh(bigOne, uint(w))
	hi.Sub(hi, bigOne)

	lo = new(big.Int).Lsh(bigOne, uint(w-1))
	lo.Neg(lo)
	if !full {
		lo.Add(lo, bigOne)
	}
	return lo, hi
}

// encodeInt renders v as exactly w bits. Non-negative values are unsigned
// binary padded with '0'; negative values are w-bit two's complement.
func encodeInt(v *big.Int, w int) string {
	if v.Sign() >= 0 {
		s := v.Text(2)
		return zeros(w-len(s)) + s
	}
	// 2^w + v, with v >= -(2^(w-1)), always needs exactly w bits
	u := new(big.Int).Lsh(bigOne, uint(w))
	u.Add(u, v)
	s := u.Text(2)
	return strings.Repeat("1", w-len(s)) + s
}

// encodeLegacyInt renders v as exactly w bits the way earlier releases did:
// a negative value is its magnitude in binary, left-padded with '1'. The
// result is not two's complement (-1 and -3 both give 1111 at w=4), so it
// only round-trips through FieldInt for non-negative values.
func encodeLegacyInt(v *big.Int, w int) string {
	if v.Sign() >= 0 {
		return encodeInt(v, w)
	}
	s := new(big.Int).Abs(v).Text(2)
	return strings.Repeat("1", w-len(s)) + s
}

// decodeUint reads bits as an unsigned big-endian integer.
func decodeUint(bits string) *big.Int {
	v := new(big.Int)
	if bits == "" {
		return v
	}
	v.SetString(bits, 2)
	return v
}

// decodeInt reads bits as a two's-complement integer.
func decodeInt(bits string) *big.Int {
	v := decodeUint(bits)
	if len(bits) > 0 && bits[0] == '1' {
		m := new(big.Int).Lsh(bigOne, uint(len(bits)))
		v.Sub(v, m)
	}
	return v
}
