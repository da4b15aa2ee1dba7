package models

import (
	"encoding/json"
	"errors"

	"gopkg.in/yaml.v3"
)

var errBadFlag = errors.New("flag must be a boolean or a string")

// Flag is a value that older clients sent as a boolean and newer ones as a
// string ("si", "no", ...). Both forms are stored as given.
type Flag struct {
	b     bool
	s     string
	isStr bool
}

// BoolFlag returns a boolean Flag.
func BoolFlag(b bool) Flag { return Flag{b: b} }

// StringFlag returns a string Flag.
func StringFlag(s string) Flag { return Flag{s: s, isStr: true} }

// Value returns the flag as a bool or a string.
func (f Flag) Value() any {
	if f.isStr {
		return f.s
	}
	return f.b
}

func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value())
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*f = BoolFlag(t)
	case string:
		*f = StringFlag(t)
	default:
		return errBadFlag
	}
	return nil
}

func (f *Flag) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return errBadFlag
	}
	if n.Tag == "!!bool" {
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		*f = BoolFlag(b)
		return nil
	}
	*f = StringFlag(n.Value)
	return nil
}
