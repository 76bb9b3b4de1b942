package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Identifier wraps an entity's original identifier as decoded from input.
// Two identifiers are equal when their keys are equal: same kind and same canonical text
type Identifier struct {
	value any
	key   string
}

// NewIdentifier returns false when value is nil or a blank string
func NewIdentifier(value any) (Identifier, bool) {
	key, ok := canonicalKey(value)
	if !ok {
		return Identifier{}, false
	}
	return Identifier{value: value, key: key}, true
}

func canonicalKey(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return "s:" + v, true
	case bool:
		return "b:" + strconv.FormatBool(v), true
	case float64:
		return "n:" + canonicalFloat(v), true
	case float32:
		return "n:" + canonicalFloat(float64(v)), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return "n:" + canonicalFloat(f), true
		}
		return "n:" + v.String(), true
	case int:
		return "n:" + strconv.FormatInt(int64(v), 10), true
	case int8:
		return "n:" + strconv.FormatInt(int64(v), 10), true
	case int16:
		return "n:" + strconv.FormatInt(int64(v), 10), true
	case int32:
		return "n:" + strconv.FormatInt(int64(v), 10), true
	case int64:
		return "n:" + strconv.FormatInt(v, 10), true
	case uint:
		return "n:" + strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return "n:" + strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return "n:" + strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return "n:" + strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return "n:" + strconv.FormatUint(v, 10), true
	default:
		return fmt.Sprintf("%T:%v", v, v), true
	}
}

// Integral floats print as integers so that 1 and 1.0 share a key
func canonicalFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (id Identifier) Key() string {
	return id.key
}

func (id Identifier) Value() any {
	return id.value
}

// String renders the identifier without its kind prefix
func (id Identifier) String() string {
	if id.key == "" {
		return ""
	}
	_, text, _ := strings.Cut(id.key, ":")
	return text
}

func (id Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

func (id *Identifier) UnmarshalJSON(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	identifier, ok := NewIdentifier(value)
	if !ok {
		*id = Identifier{}
		return nil
	}
	*id = identifier
	return nil
}
