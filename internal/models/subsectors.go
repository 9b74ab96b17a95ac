package models

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// SubsectorList is the set of subsectors a technology can abate.
//
// Catalog records spell it several ways: a list, a list nested one level,
// or a string holding the JSON encoding of either. All spellings decode to
// a flat list. Malformed input decodes to an empty list rather than failing
// the whole catalog.
type SubsectorList []string

// UnmarshalYAML accepts a sequence, nested sequence or JSON string.
func (l *SubsectorList) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		*l = nil
		return nil
	}
	*l = flattenSubsectors(raw)
	return nil
}

// UnmarshalJSON accepts an array, nested array or JSON-encoded string.
func (l *SubsectorList) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}
	*l = flattenSubsectors(raw)
	return nil
}

// MarshalJSON always encodes a plain array.
func (l SubsectorList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func flattenSubsectors(raw interface{}) SubsectorList {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		var inner interface{}
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			// A bare name is a single subsector.
			return SubsectorList{s}
		}
		if _, isString := inner.(string); isString {
			return SubsectorList{inner.(string)}
		}
		return flattenSubsectors(inner)
	case []interface{}:
		var out SubsectorList
		for _, item := range v {
			switch x := item.(type) {
			case string:
				out = append(out, x)
			case []interface{}:
				for _, y := range x {
					if s, ok := y.(string); ok {
						out = append(out, s)
					}
				}
			}
		}
		return out
	default:
		return nil
	}
}
