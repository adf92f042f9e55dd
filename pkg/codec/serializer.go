package codec

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/zap"
)

// Value is one entry of the value store.
type Value struct {
	Name string
	Bits string
}

// Uint reads the bits as an unsigned big-endian integer. Empty bits are 0.
func (v Value) Uint() *big.Int {
	return decodeUint(v.Bits)
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithLogger sets the logger that receives diagnostics for failed operations.
func WithLogger(l *zap.Logger) Option {
	return func(s *Serializer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFullSignedRange switches integers to standard two's complement: the
// accepted range becomes -(2^(w-1)) through 2^w-1 and negative values are
// stored as w-bit two's complement, so FieldInt reads them back.
//
// Without it a serializer produces the same bytes as earlier releases: the
// smallest accepted negative value is -(2^(w-1)) + 1 and a negative value is
// stored as its magnitude left-padded with '1'.
func WithFullSignedRange() Option {
	return func(s *Serializer) {
		s.fullRange = true
	}
}

// Serializer packs named bit fields into byte-aligned packets and unpacks
// them again. It owns a Format and an ordered value store.
//
// A Serializer is not safe for concurrent use.
type Serializer struct {
	format    Format
	values    []Value
	index     map[string]int // name -> position in values
	fullRange bool
	log       *zap.Logger
}

// New validates format and returns a Serializer whose fields are all zero.
func New(format Format, opts ...Option) (*Serializer, error) {
	s := &Serializer{log: Logger()}
	for _, opt := range opts {
		opt(s)
	}

	if err := ValidateFormat(format); err != nil {
		s.log.Warn("invalid format", zap.Stringer("format", format), zap.Error(err))
		return nil, err
	}

	s.format = format.Clone()
	s.RefreshFields()
	return s, nil
}

// UpdateFormat replaces the format. Stored values are left untouched; call
// RefreshFields to rebuild them for the new layout.
func (s *Serializer) UpdateFormat(format Format) error {
	if err := ValidateFormat(format); err != nil {
		return s.fail(err)
	}
	s.format = format.Clone()
	return nil
}

// RefreshFields clears the value store and refills it with zero bits for
// every field of the current format.
func (s *Serializer) RefreshFields() {
	s.values = make([]Value, len(s.format))
	s.index = make(map[string]int, len(s.format))
	for i, fld := range s.format {
		s.values[i] = Value{Name: fld.Name, Bits: zeros(fld.Width)}
		s.index[fld.Name] = i
	}
}

// Format returns a copy of the current format.
func (s *Serializer) Format() Format {
	return s.format.Clone()
}

// Data returns a copy of the value store in order.
func (s *Serializer) Data() []Value {
	out := make([]Value, len(s.values))
	copy(out, s.values)
	return out
}

// Len returns the number of stored bits.
func (s *Serializer) Len() int {
	n := 0
	for _, v := range s.values {
		n += len(v.Bits)
	}
	return n
}

// SetField stores value in the named field. Accepted values are Go integers
// and *big.Int, []byte, Bits, and string (a literal bit-string). On failure
// the value store is unchanged.
func (s *Serializer) SetField(name string, value any) error {
	fld, err := s.lookup(name)
	if err != nil {
		return s.fail(err)
	}

	switch v := value.(type) {
	case Bits:
		err = s.setBits(fld, string(v))
	case string:
		err = s.setBits(fld, v)
	case []byte:
		err = s.setBytes(fld, v)
	case *big.Int:
		if v == nil {
			err = newErr("set", KindInvalidArgument, name, "nil *big.Int")
			break
		}
		err = s.setInt(fld, v)
	case int:
		err = s.setInt(fld, big.NewInt(int64(v)))
	case int8:
		err = s.setInt(fld, big.NewInt(int64(v)))
	case int16:
		err = s.setInt(fld, big.NewInt(int64(v)))
	case int32:
		err = s.setInt(fld, big.NewInt(int64(v)))
	case int64:
		err = s.setInt(fld, big.NewInt(v))
	case uint:
		err = s.setInt(fld, new(big.Int).SetUint64(uint64(v)))
	case uint8:
		err = s.setInt(fld, new(big.Int).SetUint64(uint64(v)))
	case uint16:
		err = s.setInt(fld, new(big.Int).SetUint64(uint64(v)))
	case uint32:
		err = s.setInt(fld, new(big.Int).SetUint64(uint64(v)))
	case uint64:
		err = s.setInt(fld, new(big.Int).SetUint64(v))
	default:
		e := newErr("set", KindInvalidArgument, name, "unsupported value type %T", value)
		e.Value = value
		err = e
	}

	if err != nil {
		return s.fail(err)
	}
	return nil
}

// SetInt stores an integer in a fixed-width field.
func (s *Serializer) SetInt(name string, v int64) error {
	return s.SetField(name, v)
}

// SetBits stores a literal bit-string.
func (s *Serializer) SetBits(name string, bits string) error {
	return s.SetField(name, Bits(bits))
}

// SetBytes stores raw bytes, MSB first.
func (s *Serializer) SetBytes(name string, data []byte) error {
	return s.SetField(name, data)
}

func (s *Serializer) lookup(name string) (Field, error) {
	i := s.format.Index(name)
	if i < 0 {
		return Field{}, unknownField("set", name)
	}
	return s.format[i], nil
}

func (s *Serializer) setInt(fld Field, v *big.Int) error {
	if fld.IsVariable() {
		return newErr("set", KindType, fld.Name, "integer values need a fixed width; use bits or bytes")
	}

	lo, hi := intRange(fld.Width, s.fullRange)
	if v.Cmp(lo) < 0 || v.Cmp(hi) > 0 {
		e := newErr("set", KindOutOfRange, fld.Name, "%s does not fit in %d bits [%s, %s]", v, fld.Width, lo, hi)
		e.Value = new(big.Int).Set(v)
		return e
	}

	if s.fullRange {
		s.store(fld.Name, encodeInt(v, fld.Width))
	} else {
		s.store(fld.Name, encodeLegacyInt(v, fld.Width))
	}
	return nil
}

func (s *Serializer) setBits(fld Field, bits string) error {
	if !CheckBitstring(bits) {
		e := newErr("set", KindInvalidArgument, fld.Name, "value must be a bit-string")
		e.Value = bits
		return e
	}
	if !fld.IsVariable() && len(bits) != fld.Width {
		e := newErr("set", KindLengthMismatch, fld.Name, "bit-string has %d bits, field has %d", len(bits), fld.Width)
		e.Value = len(bits)
		return e
	}

	s.store(fld.Name, bits)
	return nil
}

func (s *Serializer) setBytes(fld Field, data []byte) error {
	if !fld.IsVariable() && len(data)*8 != fld.Width {
		e := newErr("set", KindLengthMismatch, fld.Name, "%d bytes is %d bits, field has %d", len(data), len(data)*8, fld.Width)
		e.Value = len(data)
		return e
	}

	s.store(fld.Name, BytesToBits(data))
	return nil
}

// store writes bits for name, inserting a missing entry at its format
// position so the value store stays in format order.
func (s *Serializer) store(name, bits string) {
	if i, ok := s.index[name]; ok {
		s.values[i].Bits = bits
		return
	}

	pos := s.format.Index(name)
	at := len(s.values)
	for i, v := range s.values {
		if p := s.format.Index(v.Name); p > pos {
			at = i
			break
		}
	}

	s.values = append(s.values, Value{})
	copy(s.values[at+1:], s.values[at:])
	s.values[at] = Value{Name: name, Bits: bits}
	s.reindex()
}

func (s *Serializer) reindex() {
	s.index = make(map[string]int, len(s.values))
	for i, v := range s.values {
		s.index[v.Name] = i
	}
}

func (s *Serializer) clear() {
	s.values = s.values[:0]
	s.index = make(map[string]int, len(s.format))
}

// Field returns the stored bit-string of a field.
func (s *Serializer) Field(name string) (string, error) {
	i, ok := s.index[name]
	if !ok {
		return "", s.fail(unknownField("get", name))
	}
	return s.values[i].Bits, nil
}

// FieldUint reads a field as an unsigned integer.
func (s *Serializer) FieldUint(name string) (*big.Int, error) {
	bits, err := s.Field(name)
	if err != nil {
		return nil, err
	}
	return decodeUint(bits), nil
}

// FieldInt reads a field as a two's-complement integer. Negative values
// read back only when they were set with WithFullSignedRange.
func (s *Serializer) FieldInt(name string) (*big.Int, error) {
	bits, err := s.Field(name)
	if err != nil {
		return nil, err
	}
	return decodeInt(bits), nil
}

// FieldBytes returns a field's bits packed into bytes. The field must hold
// a multiple of 8 bits.
func (s *Serializer) FieldBytes(name string) ([]byte, error) {
	bits, err := s.Field(name)
	if err != nil {
		return nil, err
	}
	if len(bits)%8 != 0 {
		return nil, s.fail(newErr("get", KindAlignment, name, "%d bits is not a whole number of bytes", len(bits)))
	}
	out, err := BitsToBytes(bits)
	if err != nil {
		return nil, s.fail(err)
	}
	return out, nil
}

// ToBytes concatenates the stored fields in format order and packs them
// into bytes. The total bit length must be a multiple of 8, and every
// fixed-width field must hold exactly its width.
func (s *Serializer) ToBytes() ([]byte, error) {
	var sb strings.Builder
	sb.Grow(s.Len())

	for _, fld := range s.format {
		i, ok := s.index[fld.Name]
		if !ok {
			// an unset variable field contributes no bits
			if fld.IsVariable() {
				continue
			}
			return nil, s.fail(newErr("encode", KindLengthMismatch, fld.Name,
				"no stored value for a %d-bit field; refresh fields after a failed decode", fld.Width))
		}
		bits := s.values[i].Bits
		if !fld.IsVariable() && len(bits) != fld.Width {
			return nil, s.fail(newErr("encode", KindLengthMismatch, fld.Name,
				"stored value has %d bits, field has %d; refresh fields after changing the format", len(bits), fld.Width))
		}
		sb.WriteString(bits)
	}

	out, err := BitsToBytes(sb.String())
	if err != nil {
		return nil, s.fail(err)
	}
	return out, nil
}

// FromBytes replaces the value store with the fields read from packet,
// starting at byte offset index. If the packet is too short the value
// store is left empty.
func (s *Serializer) FromBytes(packet []byte, index int) error {
	if index < 0 {
		e := newErr("decode", KindInvalidArgument, "", "negative index %d", index)
		e.Value = index
		return s.fail(e)
	}

	s.clear()

	if index > len(packet) {
		return s.fail(outOfBounds("", index*8, len(packet)*8))
	}

	bits := BytesToBits(packet)
	cursor := index * 8

	for _, fld := range s.format {
		n := fld.Width
		if fld.LengthFrom != "" {
			var err error
			if n, err = s.prefixLength(fld, len(bits)-cursor); err != nil {
				s.clear()
				return s.fail(err)
			}
		}

		if cursor+n > len(bits) {
			s.clear()
			return s.fail(outOfBounds(fld.Name, cursor+n, len(bits)))
		}

		s.values = append(s.values, Value{Name: fld.Name, Bits: bits[cursor : cursor+n]})
		s.index[fld.Name] = len(s.values) - 1
		cursor += n
	}

	return nil
}

// prefixLength returns the bit length of a length-prefixed field.
func (s *Serializer) prefixLength(fld Field, remaining int) (int, error) {
	i, ok := s.index[fld.LengthFrom]
	if !ok {
		return 0, newErr("decode", KindFormat, fld.Name, "length prefix %q not decoded", fld.LengthFrom)
	}
	n := decodeUint(s.values[i].Bits)
	if !n.IsInt64() || n.Int64() > int64(remaining/8) {
		e := newErr("decode", KindOutOfBounds, fld.Name, "length prefix %s bytes exceeds the %d bits left", n, remaining)
		e.Value = n
		return 0, e
	}
	return int(n.Int64()) * 8, nil
}

// String lists the stored fields as name=bits in order.
func (s *Serializer) String() string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = fmt.Sprintf("%s=%s", v.Name, v.Bits)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (s *Serializer) fail(err error) error {
	var e *Error
	if errors.As(err, &e) {
		s.log.Warn("codec operation failed",
			zap.String("op", e.Op),
			zap.String("kind", string(e.Kind)),
			zap.String("field", e.Field),
			zap.Error(err))
	} else {
		s.log.Warn("codec operation failed", zap.Error(err))
	}
	return err
}
