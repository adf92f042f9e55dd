//go:build bench
// +build bench

package codec

import (
	"bytes"
	"testing"
)

func benchFormat(n int) Format {
	format := make(Format, 0, n)
	for i := 0; i < n; i++ {
		format = append(format, Field{Name: string(rune('a'+i%26)) + string(rune('0'+i/26)), Width: 8})
	}
	return format
}

func BenchmarkSerializer_ToBytes(b *testing.B) {
	benchmarks := []struct {
		name   string
		fields int
	}{
		{name: "small", fields: 4},
		{name: "medium", fields: 64},
		{name: "large", fields: 250},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			s, err := New(benchFormat(bm.fields))
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := s.ToBytes(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSerializer_FromBytes(b *testing.B) {
	benchmarks := []struct {
		name   string
		fields int
	}{
		{name: "small", fields: 4},
		{name: "medium", fields: 64},
		{name: "large", fields: 250},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			s, err := New(benchFormat(bm.fields))
			if err != nil {
				b.Fatal(err)
			}
			packet := bytes.Repeat([]byte{0xA5}, bm.fields)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := s.FromBytes(packet, 0); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSerializer_SetField(b *testing.B) {
	s, err := New(Format{{Name: "n", Width: 32}})
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.SetField("n", i&0xFFFF); err != nil {
			b.Fatal(err)
		}
	}
}
