package codec

import (
	"fmt"
	"strings"
)

// Variable is the declared width of a field whose length is not fixed by
// the format. Such a field holds any number of bits.
const Variable = 0

// Field declares one named slot of a record.
type Field struct {
	Name  string
	Width int // bits; Variable (0) means undefined length

	// LengthFrom names an earlier fixed-width field whose unsigned value is
	// the byte length of this field on the wire. Only valid on Variable
	// fields. Without it a Variable field decodes as zero bits.
	LengthFrom string
}

// IsVariable reports whether the field has no fixed width.
func (f Field) IsVariable() bool {
	return f.Width == Variable
}

// Format is an ordered field layout. Order is the on-wire order.
type Format []Field

// Bits returns the sum of the fixed widths.
func (f Format) Bits() int {
	n := 0
	for _, fld := range f {
		n += fld.Width
	}
	return n
}

// Index returns the position of the named field, or -1.
func (f Format) Index(name string) int {
	for i, fld := range f {
		if fld.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the field names in order.
func (f Format) Names() []string {
	names := make([]string, len(f))
	for i, fld := range f {
		names[i] = fld.Name
	}
	return names
}

// Clone returns a copy that shares nothing with f.
func (f Format) Clone() Format {
	if f == nil {
		return nil
	}
	out := make(Format, len(f))
	copy(out, f)
	return out
}

// String renders the format as "name:width" pairs.
func (f Format) String() string {
	parts := make([]string, len(f))
	for i, fld := range f {
		if fld.LengthFrom != "" {
			parts[i] = fmt.Sprintf("%s:%d<%s", fld.Name, fld.Width, fld.LengthFrom)
		} else {
			parts[i] = fmt.Sprintf("%s:%d", fld.Name, fld.Width)
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ValidateFormat checks that a format is usable: it has at least one field,
// no negative width, unique non-empty names, and every LengthFrom points at
// an earlier fixed-width field from a Variable field.
func ValidateFormat(format Format) error {
	if len(format) == 0 {
		return formatErr("", "format is empty")
	}

	seen := make(map[string]int, len(format))
	for i, fld := range format {
		if fld.Name == "" {
			return formatErr("", "field #%d has an empty name", i)
		}
		if _, dup := seen[fld.Name]; dup {
			return formatErr(fld.Name, "duplicate field name")
		}
		if fld.Width < 0 {
			e := formatErr(fld.Name, "negative width %d", fld.Width)
			e.Value = fld.Width
			return e
		}
		if fld.LengthFrom != "" {
			if !fld.IsVariable() {
				return formatErr(fld.Name, "length_from is only allowed on variable-width fields")
			}
			j, ok := seen[fld.LengthFrom]
			if !ok {
				return formatErr(fld.Name, "length_from %q must name an earlier field", fld.LengthFrom)
			}
			if format[j].IsVariable() {
				return formatErr(fld.Name, "length_from %q must name a fixed-width field", fld.LengthFrom)
			}
		}
		seen[fld.Name] = i
	}

	return nil
}
