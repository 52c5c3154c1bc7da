package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// OptFloat is a float field that may be left unset, in which case the value
// is inherited from the next configuration layer up. The zero value is unset.
type OptFloat struct {
	value float64
	set   bool
}

// Float returns a set OptFloat.
func Float(v float64) OptFloat {
	return OptFloat{value: v, set: true}
}

// IsSet reports whether the field carries an explicit value.
func (o OptFloat) IsSet() bool { return o.set }

// Or returns the value, or fallback when unset.
func (o OptFloat) Or(fallback float64) float64 {
	if o.set {
		return o.value
	}
	return fallback
}

// UnmarshalYAML accepts a plain number, or one of the legacy inherit markers
// ("", "inherit", "-1", -1) which leave the field unset.
func (o *OptFloat) UnmarshalYAML(node *yaml.Node) error {
	*o = OptFloat{}

	if node.Tag == "!!null" {
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if isInheritMarker(raw) {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid number %q", node.Line, node.Value)
	}
	if v == -1 {
		return nil
	}
	o.value = v
	o.set = true
	return nil
}

// OptString is a string field with the same inherit semantics as OptFloat.
type OptString struct {
	value string
	set   bool
}

// String returns a set OptString.
func String(v string) OptString {
	return OptString{value: v, set: true}
}

// IsSet reports whether the field carries an explicit value.
func (o OptString) IsSet() bool { return o.set }

// Or returns the value, or fallback when unset.
func (o OptString) Or(fallback string) string {
	if o.set {
		return o.value
	}
	return fallback
}

func (o *OptString) UnmarshalYAML(node *yaml.Node) error {
	*o = OptString{}

	if node.Tag == "!!null" {
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if isInheritMarker(raw) {
		return nil
	}
	o.value = raw
	o.set = true
	return nil
}

// TriState is a three-valued scenario toggle: inherit from the layer above,
// or explicitly enable/disable at this layer. The zero value is inherit.
type TriState uint8

const (
	TriInherit TriState = iota
	TriEnable
	TriDisable
)

// Resolve returns the explicit value, or fallback when inheriting.
func (t TriState) Resolve(fallback bool) bool {
	switch t {
	case TriEnable:
		return true
	case TriDisable:
		return false
	default:
		return fallback
	}
}

// UnmarshalYAML accepts "enable"/"disable", booleans, and the inherit markers.
func (t *TriState) UnmarshalYAML(node *yaml.Node) error {
	*t = TriInherit

	if node.Tag == "!!null" {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(node.Value)) {
	case "", "inherit", "-1":
		return nil
	case "enable", "true", "on":
		*t = TriEnable
	case "disable", "false", "off":
		*t = TriDisable
	default:
		return fmt.Errorf("line %d: invalid scenario toggle %q", node.Line, node.Value)
	}
	return nil
}

func (t TriState) String() string {
	switch t {
	case TriEnable:
		return "enable"
	case TriDisable:
		return "disable"
	default:
		return "inherit"
	}
}

// isInheritMarker matches the legacy sentinel values the original
// configuration format used to mean "fall through to the layer above".
func isInheritMarker(s string) bool {
	switch strings.ToLower(s) {
	case "", "inherit", "-1":
		return true
	}
	return false
}
