package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FlexBool is a rule switch such as always_active. It accepts YAML booleans,
// numbers (non-zero is true) and the strings accepted by strconv.ParseBool
// plus yes/no and on/off.
type FlexBool bool

// UnmarshalYAML implements the yaml.Unmarshaler interface for FlexBool.
func (fb *FlexBool) UnmarshalYAML(value *yaml.Node) error {
	var (
		b   bool
		err error
	)
	switch value.Tag {
	case "!!bool":
		err = value.Decode(&b)
	case "!!str":
		b, err = parseSwitch(value.Value)
	case "!!int", "!!float":
		var f float64
		f, err = strconv.ParseFloat(value.Value, 64)
		b = f != 0
	default:
		err = fmt.Errorf("expected a boolean, number or string, got %s", value.Tag)
	}
	if err != nil {
		return fmt.Errorf("line %d: invalid rule switch %q: %w", value.Line, value.Value, err)
	}
	*fb = FlexBool(b)
	return nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}
