package api

import (
	"time"

	"github.com/LeDuy-Vu/serialize-this/pkg/config"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// EncodeRequest carries field values for a format. A value is a JSON
// number (integer), a string of 0/1 characters, or {"hex": "..."} for raw
// bytes. Fields left out stay zero.
type EncodeRequest struct {
	Values  map[string]interface{} `json:"values"`
	Archive bool                   `json:"archive,omitempty"`
}

// EncodeResponse is the encoded packet in hex, plus its archive ID when it
// was stored.
type EncodeResponse struct {
	Packet string `json:"packet"`
	ID     string `json:"id,omitempty"`
}

// DecodeRequest is a hex packet and the byte offset to start decoding at.
type DecodeRequest struct {
	Packet string `json:"packet"`
	Index  int    `json:"index,omitempty"`
}

// FieldValue is one decoded field. Uint is a decimal string so values
// wider than 53 bits survive JSON.
type FieldValue struct {
	Name string `json:"name"`
	Bits string `json:"bits"`
	Uint string `json:"uint"`
}

// FormatInfo describes a catalogue entry
type FormatInfo struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Bits        int               `json:"bits"`
	Variable    bool              `json:"variable"`
	Fields      []config.FieldDef `json:"fields"`
}

// PacketInfo is an archived packet, decoded with its format when the
// format is still in the catalogue.
type PacketInfo struct {
	ID        string       `json:"id"`
	Format    string       `json:"format"`
	Packet    string       `json:"packet"`
	CreatedAt time.Time    `json:"created_at"`
	Fields    []FieldValue `json:"fields,omitempty"`
}
