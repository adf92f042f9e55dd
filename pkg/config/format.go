package config

import (
	"fmt"
	"strconv"

	"github.com/LeDuy-Vu/serialize-this/pkg/codec"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendPebble = "pebble"
	BackendBolt   = "bolt"
)

// FormatDef is a named packet layout in the catalogue
type FormatDef struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Fields      FieldList `yaml:"fields"`
}

// FieldDef is one field of a FormatDef
type FieldDef struct {
	Name       string `yaml:"name"`
	Width      int    `yaml:"width"`
	LengthFrom string `yaml:"length_from,omitempty"`
}

// FieldList keeps fields in declaration order. In YAML it is either a
// sequence of FieldDef mappings or a mapping shorthand:
//
//	fields:
//	  type: 4
//	  len: 4
//	  payload: {width: 0, length_from: len}
type FieldList []FieldDef

// Codec converts the definition to a codec.Format
func (d FormatDef) Codec() codec.Format {
	f := make(codec.Format, len(d.Fields))
	for i, fd := range d.Fields {
		f[i] = codec.Field{Name: fd.Name, Width: fd.Width, LengthFrom: fd.LengthFrom}
	}
	return f
}

// UnmarshalYAML implements yaml.Unmarshaler
func (l *FieldList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var defs []FieldDef
		if err := node.Decode(&defs); err != nil {
			return err
		}
		*l = defs
		return nil

	case yaml.MappingNode:
		defs := make([]FieldDef, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			def, err := fieldFromNode(key.Value, val)
			if err != nil {
				return err
			}
			defs = append(defs, def)
		}
		*l = defs
		return nil

	default:
		return fmt.Errorf("line %d: fields must be a sequence or a mapping", node.Line)
	}
}

func fieldFromNode(name string, val *yaml.Node) (FieldDef, error) {
	switch val.Kind {
	case yaml.ScalarNode:
		width, err := strconv.Atoi(val.Value)
		if err != nil {
			return FieldDef{}, fmt.Errorf("line %d: width of %q must be an integer", val.Line, name)
		}
		return FieldDef{Name: name, Width: width}, nil

	case yaml.MappingNode:
		var def FieldDef
		if err := val.Decode(&def); err != nil {
			return FieldDef{}, err
		}
		def.Name = name
		return def, nil

	default:
		return FieldDef{}, fmt.Errorf("line %d: field %q must be a width or a mapping", val.Line, name)
	}
}
