package parkmedia

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
)

// Payload is an ordered mapping from string keys to values.
//
// Values are strings, booleans, numbers (int64 or float64 after decoding),
// nil, []any or nested *Payload. Keys are unique within one level and keep
// the position of their first insertion.
type Payload struct {
	keys   []string
	values map[string]any
}

// Pair is a key/value entry used to build a Payload in order.
type Pair struct {
	Key   string
	Value any
}

// NewPayload creates an empty payload, optionally seeded with pairs
func NewPayload(pairs ...Pair) *Payload {
	p := &Payload{values: make(map[string]any, len(pairs))}
	for _, kv := range pairs {
		p.Set(kv.Key, kv.Value)
	}
	return p
}

// Set stores value under key. Overwriting an existing key keeps its position.
func (p *Payload) Set(key string, value any) *Payload {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

// Get returns the value stored under key
func (p *Payload) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// GetString returns the value under key formatted as a string.
func (p *Payload) GetString(key string) (string, bool) {
	v, ok := p.Get(key)
	if !ok || v == nil {
		return "", false
	}
	return scalarString(v), true
}

// Delete removes key and returns its previous value.
func (p *Payload) Delete(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	if !ok {
		return nil, false
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Keys returns the keys in insertion order.
func (p *Payload) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Each calls fn for every entry in order.
func (p *Payload) Each(fn func(key string, value any)) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		fn(k, p.values[k])
	}
}

// Clone returns a deep copy. Nested payloads and slices are copied too.
func (p *Payload) Clone() *Payload {
	if p == nil {
		return nil
	}
	out := NewPayload()
	p.Each(func(k string, v any) {
		out.Set(k, cloneValue(v))
	})
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Payload:
		return t.Clone()
	case []any:
		cp := make([]any, len(t))
		for i := range t {
			cp[i] = cloneValue(t[i])
		}
		return cp
	default:
		return v
	}
}

// Equal reports whether two payloads have the same keys in the same order
// with equal values.
func (p *Payload) Equal(other *Payload) bool {
	if p.Len() != other.Len() {
		return false
	}
	if p.Len() == 0 {
		return true
	}
	for i, k := range p.keys {
		if other.keys[i] != k {
			return false
		}
		if !valuesEqual(p.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	switch at := a.(type) {
	case *Payload:
		bt, ok := b.(*Payload)
		return ok && at.Equal(bt)
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !valuesEqual(at[i], bt[i]) {
				return false
			}
		}
		return true
	default:
		if x, ok := numberValue(a); ok {
			y, ok := numberValue(b)
			return ok && x != nil && y != nil && x.Cmp(y) == 0
		}
		return reflect.DeepEqual(a, b)
	}
}

// numberValue returns the exact value of any Go numeric kind, so that 2,
// uint(2) and 2.0 compare equal. NaN is numeric but has no value (nil).
func numberValue(v any) (*big.Float, bool) {
	f := new(big.Float)
	switch n := v.(type) {
	case int:
		return f.SetInt64(int64(n)), true
	case int8:
		return f.SetInt64(int64(n)), true
	case int16:
		return f.SetInt64(int64(n)), true
	case int32:
		return f.SetInt64(int64(n)), true
	case int64:
		return f.SetInt64(n), true
	case uint:
		return f.SetUint64(uint64(n)), true
	case uint8:
		return f.SetUint64(uint64(n)), true
	case uint16:
		return f.SetUint64(uint64(n)), true
	case uint32:
		return f.SetUint64(uint64(n)), true
	case uint64:
		return f.SetUint64(n), true
	case float32:
		return floatValue(float64(n)), true
	case float64:
		return floatValue(n), true
	}
	return nil, false
}

func floatValue(n float64) *big.Float {
	if math.IsNaN(n) {
		return nil
	}
	return new(big.Float).SetFloat64(n)
}

// ToMap converts the payload into plain nested maps. Order is lost.
func (p *Payload) ToMap() map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p.keys))
	p.Each(func(k string, v any) {
		out[k] = plainValue(v)
	})
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Payload:
		return t.ToMap()
	case []any:
		cp := make([]any, len(t))
		for i := range t {
			cp[i] = plainValue(t[i])
		}
		return cp
	default:
		return v
	}
}

// PayloadFromMap builds a payload from a plain map. Keys of nested maps are
// taken in the map's iteration order, so callers that care about order
// should build the payload with Set instead.
func PayloadFromMap(m map[string]any) *Payload {
	p := NewPayload()
	for k, v := range m {
		p.Set(k, fromPlain(v))
	}
	return p
}

func fromPlain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return PayloadFromMap(t)
	case []any:
		cp := make([]any, len(t))
		for i := range t {
			cp[i] = fromPlain(t[i])
		}
		return cp
	default:
		return v
	}
}

// MarshalJSON writes the payload as a JSON object preserving key order.
func (p *Payload) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving key order.
func (p *Payload) UnmarshalJSON(data []byte) error {
	v, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	decoded, ok := v.(*Payload)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*p = *decoded
	return nil
}

// String renders the payload as compact JSON.
func (p *Payload) String() string {
	b, err := p.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid payload: %v>", err)
	}
	return string(b)
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case json.Number:
		return t.String()
	case float64:
		return formatFloat(t)
	default:
		return fmt.Sprint(v)
	}
}
