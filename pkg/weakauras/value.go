package weakauras

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the variants of a LuaValue.
type Kind int

const (
	// KindNil is the absent value.
	KindNil Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindNumber is a float64; NaN and the infinities round-trip.
	KindNumber
	// KindString is a byte string.
	KindString
	// KindArray is a sequence with implicit indices 1..n, no holes.
	KindArray
	// KindTable is a pure hash with string keys.
	KindTable
	// KindMixed is a table with both an array part and a hash part.
	KindMixed
)

// LuaValue is a tagged tree of Lua values. The zero value is nil.
//
// Values are cheap to copy; the slice and map payloads are shared between
// copies, so mutations through AsTable reach every copy. Use Clone for an
// independent tree.
type LuaValue struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []LuaValue
	tbl  map[string]LuaValue
}

// Nil returns the nil value.
func Nil() LuaValue { return LuaValue{} }

// Bool returns a boolean value.
func Bool(b bool) LuaValue { return LuaValue{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(f float64) LuaValue { return LuaValue{kind: KindNumber, n: f} }

// String returns a string value.
func String(s string) LuaValue { return LuaValue{kind: KindString, s: s} }

// Array returns an array value over elems. The slice is taken over, not
// copied.
func Array(elems ...LuaValue) LuaValue {
	return LuaValue{kind: KindArray, arr: elems}
}

// ArrayOf returns an array value over an existing slice.
func ArrayOf(elems []LuaValue) LuaValue {
	return LuaValue{kind: KindArray, arr: elems}
}

// Table returns a hash value over m. A nil map is replaced by an empty
// one so the result is always mutable through AsTable.
func Table(m map[string]LuaValue) LuaValue {
	if m == nil {
		m = make(map[string]LuaValue)
	}
	return LuaValue{kind: KindTable, tbl: m}
}

// Mixed returns a value with both an array part and a hash part.
func Mixed(array []LuaValue, hash map[string]LuaValue) LuaValue {
	if hash == nil {
		hash = make(map[string]LuaValue)
	}
	return LuaValue{kind: KindMixed, arr: array, tbl: hash}
}

// Kind returns the variant of v.
func (v LuaValue) Kind() Kind { return v.kind }

// IsNil reports whether v is the nil value.
func (v LuaValue) IsNil() bool { return v.kind == KindNil }

// AsBool returns the boolean payload.
func (v LuaValue) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsNumber returns the numeric payload.
func (v LuaValue) AsNumber() (float64, bool) {
	return v.n, v.kind == KindNumber
}

// AsString returns the string payload.
func (v LuaValue) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsTable returns the hash part of a table or mixed value. Mutations of
// the returned map are visible through v and every copy of it.
func (v LuaValue) AsTable() (map[string]LuaValue, bool) {
	if v.kind == KindTable || v.kind == KindMixed {
		return v.tbl, true
	}
	return nil, false
}

// AsArray returns the array part of an array or mixed value.
func (v LuaValue) AsArray() ([]LuaValue, bool) {
	if v.kind == KindArray || v.kind == KindMixed {
		return v.arr, true
	}
	return nil, false
}

// Field looks up a key in the hash part.
func (v LuaValue) Field(name string) (LuaValue, bool) {
	if t, ok := v.AsTable(); ok {
		f, ok := t[name]
		return f, ok
	}
	return LuaValue{}, false
}

// StringField looks up a key in the hash part and returns its string
// payload, if both exist.
func (v LuaValue) StringField(name string) (string, bool) {
	f, ok := v.Field(name)
	if !ok {
		return "", false
	}
	return f.AsString()
}

// SetField stores a key in the hash part. It reports false when v has no
// hash part.
func (v LuaValue) SetField(name string, value LuaValue) bool {
	t, ok := v.AsTable()
	if !ok {
		return false
	}
	t[name] = value
	return true
}

// Equal reports structural equality. NaN compares equal to NaN so a NaN
// field does not register as a change on every re-import; map iteration
// order is irrelevant.
func (v LuaValue) Equal(other LuaValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		if math.IsNaN(v.n) && math.IsNaN(other.n) {
			return true
		}
		return v.n == other.n
	case KindString:
		return v.s == other.s
	case KindArray:
		return equalSlices(v.arr, other.arr)
	case KindTable:
		return equalMaps(v.tbl, other.tbl)
	default:
		return equalSlices(v.arr, other.arr) && equalMaps(v.tbl, other.tbl)
	}
}

func equalSlices(a, b []LuaValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func equalMaps(a, b map[string]LuaValue) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !av.Equal(bv) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy sharing no slices or maps with v.
func (v LuaValue) Clone() LuaValue {
	switch v.kind {
	case KindArray, KindMixed:
		out := v
		out.arr = cloneSlice(v.arr)
		out.tbl = cloneMap(v.tbl)
		return out
	case KindTable:
		out := v
		out.tbl = cloneMap(v.tbl)
		return out
	default:
		return v
	}
}

func cloneSlice(src []LuaValue) []LuaValue {
	if src == nil {
		return nil
	}
	out := make([]LuaValue, len(src))
	for i := range src {
		out[i] = src[i].Clone()
	}
	return out
}

func cloneMap(src map[string]LuaValue) map[string]LuaValue {
	if src == nil {
		return nil
	}
	out := make(map[string]LuaValue, len(src))
	for k, val := range src {
		out[k] = val.Clone()
	}
	return out
}

// String renders a compact debug form. Serialization for the game file
// goes through Serialize, not here.
func (v LuaValue) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		var parts []string
		for _, e := range v.arr {
			parts = append(parts, e.String())
		}
		keys := make([]string, 0, len(v.tbl))
		for k := range v.tbl {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+" = "+v.tbl[k].String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
}
