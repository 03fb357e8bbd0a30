package tenant

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
)

// Kind tells which member of the Value union is set.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a scalar setting: a string, a number or a boolean.
// The zero Value is invalid and means "absent".
type Value struct {
	kind Kind
	s    string
	n    float64
	b    bool
}

func StringValue(s string) Value { return Value{kind: KindString, s: s} }

func NumberValue(n float64) Value { return Value{kind: KindNumber, n: n} }

func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// String formats any kind for display.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// Any returns the underlying Go value, or nil for the zero Value.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return v.n
	case KindBool:
		return v.b
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	val, ok := valueOf(raw)
	if !ok {
		return fmt.Errorf("tenant: unsupported setting value %s", data)
	}
	*v = val
	return nil
}

// valueOf converts decoded JSON or YAML scalars; anything else is rejected.
func valueOf(raw any) (Value, bool) {
	switch x := raw.(type) {
	case string:
		return StringValue(x), true
	case bool:
		return BoolValue(x), true
	case float64:
		return NumberValue(x), true
	case float32:
		return NumberValue(float64(x)), true
	case int:
		return NumberValue(float64(x)), true
	case int64:
		return NumberValue(float64(x)), true
	case uint64:
		return NumberValue(float64(x)), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, false
		}
		return NumberValue(f), true
	}
	return Value{}, false
}

// Settings is a tenant's flat key/value configuration.
type Settings map[string]Value

// DefaultSettings are applied to every newly created tenant.
func DefaultSettings() Settings {
	return Settings{
		"theme":       StringValue("default"),
		"timezone":    StringValue("UTC"),
		"currency":    StringValue("USD"),
		"locale":      StringValue("en"),
		"date_format": StringValue("2006-01-02"),
		"time_format": StringValue("15:04"),
	}
}

// ParseSettings decodes the JSON object form. Malformed input yields empty
// settings and non-scalar members are dropped.
func ParseSettings(raw string) Settings {
	if raw == "" {
		return Settings{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Settings{}
	}
	return SettingsFromMap(m)
}

// SettingsFromMap keeps only scalar members of m.
func SettingsFromMap(m map[string]any) Settings {
	s := make(Settings, len(m))
	for k, raw := range m {
		if v, ok := valueOf(raw); ok {
			s[k] = v
		}
	}
	return s
}

// Encode produces the JSON object form; nil settings encode as "{}".
func (s Settings) Encode() (string, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]Value(s))
	if err != nil {
		return "", fmt.Errorf("tenant: encode settings: %w", err)
	}
	return string(b), nil
}

// Get returns the value for key, or def when absent.
func (s Settings) Get(key string, def Value) Value {
	if v, ok := s[key]; ok && v.IsValid() {
		return v
	}
	return def
}

func (s Settings) GetString(key, def string) string {
	if v, ok := s[key].AsString(); ok {
		return v
	}
	return def
}

func (s Settings) GetNumber(key string, def float64) float64 {
	if v, ok := s[key].AsNumber(); ok {
		return v
	}
	return def
}

func (s Settings) GetBool(key string, def bool) bool {
	if v, ok := s[key].AsBool(); ok {
		return v
	}
	return def
}

func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// Merge returns a new map with over applied on top of s.
func (s Settings) Merge(over Settings) Settings {
	out := make(Settings, len(s)+len(over))
	maps.Copy(out, s)
	maps.Copy(out, over)
	return out
}
