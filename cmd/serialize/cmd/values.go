package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"
	"text/tabwriter"

	"github.com/LeDuy-Vu/serialize-this/pkg/codec"
)

// parseAssignment splits name=value and converts the value:
//
//	42, -3     integer
//	0b0101     literal bit-string
//	0xcafe     raw bytes
func parseAssignment(arg string) (string, interface{}, error) {
	name, raw, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("expected name=value, got %q", arg)
	}

	value, err := parseValue(raw)
	if err != nil {
		return "", nil, fmt.Errorf("field %q: %w", name, err)
	}
	return name, value, nil
}

func parseValue(raw string) (interface{}, error) {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "0b"):
		return codec.Bits(raw[2:]), nil
	case strings.HasPrefix(lower, "0x"):
		b, err := hex.DecodeString(raw[2:])
		if err != nil {
			return nil, fmt.Errorf("invalid hex %q: %w", raw, err)
		}
		return b, nil
	default:
		n, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("%q is not an integer, 0b bit-string or 0x hex", raw)
		}
		return n, nil
	}
}

// parsePacket decodes a hex packet with an optional 0x prefix
func parsePacket(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("packet must be hex encoded: %w", err)
	}
	return b, nil
}

// printFields writes one aligned line per decoded field
func printFields(w io.Writer, values []codec.Value) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tBITS\tUINT")
	for _, v := range values {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Name, v.Bits, v.Uint())
	}
	return tw.Flush()
}
