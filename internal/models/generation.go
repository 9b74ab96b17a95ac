package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/allcarbonfree/carbonpath/internal/constants"
	"gopkg.in/yaml.v3"
)

// GenerationKind classifies what a technology does to the electricity mix.
type GenerationKind int

const (
	// NoGeneration technologies do not generate electricity.
	NoGeneration GenerationKind = iota

	// FossilGeneration technologies draw on fossil generation.
	FossilGeneration

	// CarbonFreeGeneration technologies add to a carbon-free generation bucket.
	CarbonFreeGeneration
)

// GenerationType is the electric generation type of a technology.
// Source is set only for CarbonFreeGeneration and names the bucket
// (one of constants.CarbonFreeTypes).
type GenerationType struct {
	Kind   GenerationKind
	Source string
}

// NoGenerationType is the zero value: does not generate electricity.
var NoGenerationType = GenerationType{Kind: NoGeneration}

// FossilType marks a technology as a fossil generation consumer.
var FossilType = GenerationType{Kind: FossilGeneration}

// CarbonFree returns the generation type for a carbon-free source.
func CarbonFree(source string) GenerationType {
	return GenerationType{Kind: CarbonFreeGeneration, Source: source}
}

// ParseGenerationType parses a catalog spelling of a generation type.
// Empty, "none" and "null" mean no generation.
func ParseGenerationType(s string) (GenerationType, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "none", "null":
		return NoGenerationType, nil
	case "fossil":
		return FossilType, nil
	}
	if constants.IsCarbonFree(v) {
		return CarbonFree(v), nil
	}
	return GenerationType{}, fmt.Errorf("unknown electric generation type %q", s)
}

// String returns the catalog spelling ("" for no generation).
func (g GenerationType) String() string {
	switch g.Kind {
	case FossilGeneration:
		return "fossil"
	case CarbonFreeGeneration:
		return g.Source
	default:
		return ""
	}
}

// LongName returns the display name of the generation type.
func (g GenerationType) LongName() string {
	return constants.GenerationLongName(g.String())
}

// IsFossilList reports whether the technology runs in the fossil pass
// of a simulated year (fossil consumers and non-generating measures).
func (g GenerationType) IsFossilList() bool {
	return g.Kind != CarbonFreeGeneration
}

// MarshalJSON encodes the type as its catalog spelling, null for none.
func (g GenerationType) MarshalJSON() ([]byte, error) {
	if g.Kind == NoGeneration {
		return []byte("null"), nil
	}
	return json.Marshal(g.String())
}

// UnmarshalJSON decodes a catalog spelling or null.
func (g *GenerationType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = NoGenerationType
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("electric generation type: %w", err)
	}
	parsed, err := ParseGenerationType(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// MarshalYAML encodes the type as its catalog spelling.
func (g GenerationType) MarshalYAML() (interface{}, error) {
	if g.Kind == NoGeneration {
		return nil, nil
	}
	return g.String(), nil
}

// UnmarshalYAML decodes a catalog spelling; a YAML null means no generation.
func (g *GenerationType) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*g = NoGenerationType
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("electric generation type: %w", err)
	}
	parsed, err := ParseGenerationType(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
