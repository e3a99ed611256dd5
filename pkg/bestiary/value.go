package bestiary

import (
	"math"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Field is a single key/value pair from a record mapping.
type Field struct {
	Key   string
	Value any
}

// Fields is an order-preserving associative container. The monster database
// relies on the insertion order of its JSON objects (AC components, speeds,
// spell levels, ...) and that order must survive into the rendered output,
// so record mappings are never stored as Go maps.
type Fields []Field

// Get returns the value for key and whether it was present.
func (f Fields) Get(key string) (any, bool) {
	for _, item := range f {
		if item.Key == key {
			return item.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for _, item := range f {
		keys = append(keys, item.Key)
	}
	return keys
}

// Set appends the pair, or replaces the value if key is already present.
func (f Fields) Set(key string, value any) Fields {
	for i, item := range f {
		if item.Key == key {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Key: key, Value: value})
}

// fieldsFrom converts a decoded yaml.MapSlice into Fields.
// Non-string keys never occur in the monster database; they are stringified
// defensively via FormatScalar so a malformed corpus cannot panic the run.
func fieldsFrom(v any) (Fields, bool) {
	if fields, ok := v.(Fields); ok {
		return fields, true
	}
	ms, ok := v.(yaml.MapSlice)
	if !ok {
		return nil, false
	}
	fields := make(Fields, 0, len(ms))
	for _, item := range ms {
		key, ok := item.Key.(string)
		if !ok {
			key = FormatScalar(item.Key)
		}
		fields = append(fields, Field{Key: key, Value: item.Value})
	}
	return fields, true
}

// Scalar is a raw record scalar kept in its source form. Values like a
// challenge rating of "1/2", an experience total, or a spell resistance of
// "17 vs. good" all render exactly as stored.
type Scalar struct {
	raw any
	set bool
}

// NewScalar wraps a decoded scalar value.
func NewScalar(v any) Scalar {
	return Scalar{raw: v, set: true}
}

// IsSet reports whether the scalar was present in the record.
func (s Scalar) IsSet() bool {
	return s.set
}

// Raw returns the underlying decoded value.
func (s Scalar) Raw() any {
	return s.raw
}

// Int returns the scalar as an int when it holds an integer value.
func (s Scalar) Int() (int, bool) {
	if !s.set {
		return 0, false
	}
	return AsInt(s.raw)
}

// String renders the scalar the way the output document expects it.
func (s Scalar) String() string {
	if !s.set {
		return ""
	}
	return FormatScalar(s.raw)
}

// FormatScalar renders a decoded scalar value as document text.
// Integral floats keep one decimal place ("3.0") because that is how they
// appear in the source database.
func FormatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case string:
		return val
	case bool:
		if val {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return strconv.FormatFloat(val, 'f', 1, 64)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return ""
	}
}

// AsInt coerces the numeric types the YAML decoder produces into an int.
func AsInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case uint64:
		return int(val), true
	case float64:
		if val == math.Trunc(val) {
			return int(val), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// IsNumeric reports whether a decoded value is a number.
func IsNumeric(v any) bool {
	switch v.(type) {
	case int, int64, uint64, float64:
		return true
	default:
		return false
	}
}

// Bonus is an initiative bonus: either a single modifier or one modifier
// per form for creatures with multiple shapes.
type Bonus struct {
	values []int
	multi  bool
}

// SingleBonus returns a Bonus holding one modifier.
func SingleBonus(v int) Bonus {
	return Bonus{values: []int{v}}
}

// MultiBonus returns a Bonus holding one modifier per form.
func MultiBonus(vs []int) Bonus {
	return Bonus{values: vs, multi: true}
}

// IsMulti reports whether the bonus carries one value per form.
func (b Bonus) IsMulti() bool {
	return b.multi
}

// Values returns the modifiers in record order.
func (b Bonus) Values() []int {
	return b.values
}
