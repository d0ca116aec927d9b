// Package values converts loosely typed config values into the concrete
// types the settings service reads. TOML decoding yields int64 and []any,
// in-memory seeds yield int and []string; both are accepted.
package values

// Lookup returns the raw value stored under a dot-notation key.
type Lookup func(key string) (any, bool)

// Typed provides the typed getters of driven.ConfigStore on top of a Lookup.
// Stores embed it and bind Lookup to their own Get method.
type Typed struct {
	Lookup Lookup
}

// GetString returns the value as a string, or "" if missing or not a string.
func (t Typed) GetString(key string) string {
	v, _ := t.Lookup(key)
	return String(v)
}

// GetInt returns the value as an int, or 0.
func (t Typed) GetInt(key string) int {
	v, _ := t.Lookup(key)
	return Int(v)
}

// GetFloat returns the value as a float64, or 0.
func (t Typed) GetFloat(key string) float64 {
	v, _ := t.Lookup(key)
	return Float(v)
}

// GetBool returns the value as a bool, or false.
func (t Typed) GetBool(key string) bool {
	v, _ := t.Lookup(key)
	return Bool(v)
}

// GetStringSlice returns the value as []string, or nil.
func (t Typed) GetStringSlice(key string) []string {
	v, _ := t.Lookup(key)
	return Strings(v)
}

// String converts v to a string.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int converts v to an int. Floats are truncated.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Float converts v to a float64. Integers are widened.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// Bool converts v to a bool.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

// Strings converts v to a []string. Non-string elements of []any are dropped.
func Strings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
