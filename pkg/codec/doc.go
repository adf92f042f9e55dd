// Package codec packs named bit fields into byte-aligned packets and unpacks
// them again.
//
// A Format is an ordered list of fields, each with a width in bits. A
// Serializer owns one Format and a value store holding the current bits of
// every field. Encoding concatenates the fields in format order, MSB first,
// and requires the total to be a whole number of bytes. Decoding walks the
// format from a byte offset and slices each field out of the packet.
//
// # Field Widths
//
// A positive width is fixed: the stored value always has exactly that many
// bits. Width 0 (Variable) means the length is not part of the format. A
// variable field accepts bit-strings and bytes of any length, but no
// integers, since an integer has no implied width.
//
// On decode a variable field consumes zero bits unless it names a length
// prefix:
//
//	format := codec.Format{
//	    {Name: "kind", Width: 8},
//	    {Name: "size", Width: 8},
//	    {Name: "body", Width: codec.Variable, LengthFrom: "size"},
//	}
//
// Here "body" is read as size*8 bits.
//
// # Values
//
// SetField accepts:
//   - Go integers and *big.Int, range-checked against the width
//   - []byte, converted MSB first, 8 bits per byte
//   - Bits or string, a literal bit-string of '0' and '1'
//
// Non-negative integers are stored as unsigned binary padded with '0'.
// By default the accepted range for a width w is -(2^(w-1))+1 through 2^w-1
// and a negative integer is stored as its magnitude left-padded with '1',
// which keeps packets byte-identical with earlier releases (-5 in 8 bits is
// 0xfd). WithFullSignedRange selects two's complement instead: -(2^(w-1)) is
// admitted and -5 in 8 bits is 0xfb.
//
// # Usage
//
//	s, err := codec.New(codec.Format{
//	    {Name: "type", Width: 4},
//	    {Name: "len", Width: 4},
//	    {Name: "payload", Width: 8},
//	})
//	if err != nil {
//	    return err
//	}
//
//	_ = s.SetField("type", 5)
//	_ = s.SetField("len", 3)
//	_ = s.SetField("payload", []byte{0xAB})
//
//	packet, err := s.ToBytes() // 0x53 0xAB
//
//	// Later, on the receiving side
//	if err := s.FromBytes(packet, 0); err != nil {
//	    return err
//	}
//	payload, _ := s.Field("payload") // "10101011"
//
// # Error Handling
//
// Every failure is an *Error carrying a Kind. Use errors.Is with the
// exported sentinels (ErrFormat, ErrOutOfRange, ErrAlignment, ...) to branch
// on the kind. A failed operation leaves the value store as it was, with one
// exception: FromBytes empties the store when the packet is too short, so a
// partially decoded record is never visible.
//
// Failures are also logged at Warn level through the serializer's zap
// logger, which is a no-op unless WithLogger or SetLogger is used.
//
// # Thread Safety
//
// Serializer has no internal locking. Callers sharing one instance between
// goroutines must serialize access themselves. The package-level helpers
// (ValidateFormat, BytesToBits, BitsToBytes, CheckBitstring) are pure and
// safe for concurrent use.
package codec
