package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Options is a small helper to fetch typed values from free-form maps. It is
// used for backend-specific settings whose shape varies by storage kind
// (e.g. max_open_conns for database/sql backends, schema for SQL Server).
// Absent keys and values of an unexpected type yield the provided default.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. YAML decodes integers as int and
// JSON as float64; both are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}

// Duration returns the duration parsed from a string value ("30s", "1m") for
// key, or def when missing or malformed.
func (o Options) Duration(key string, def time.Duration) time.Duration {
	if s := o.String(key, ""); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object.
// Non-string values are ignored.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// UnmarshalYAML decodes a missing or null "options" node to an empty,
// non-nil map.
func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	var tmp map[string]any
	if err := node.Decode(&tmp); err != nil {
		return err
	}
	if tmp == nil {
		tmp = map[string]any{}
	}
	*o = Options(tmp)
	return nil
}
