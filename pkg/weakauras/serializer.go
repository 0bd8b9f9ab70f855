package weakauras

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
	nan    = math.NaN()
)

// Serialize renders a value as the Lua text the game's own writer
// produces, indented to the given nesting level. Output is fully
// deterministic: hash keys emit in lexicographic order, array elements
// by index. Array elements always use implicit indices with a trailing
// "-- [i]" comment; an explicit ["1"] key would make the game reject the
// file.
func Serialize(v LuaValue, indent int) string {
	var b strings.Builder
	writeValue(&b, v, indent)
	return b.String()
}

func writeValue(b *strings.Builder, v LuaValue, indent int) {
	switch v.Kind() {
	case KindNil:
		b.WriteString("nil")
	case KindBool:
		val, _ := v.AsBool()
		if val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindNumber:
		n, _ := v.AsNumber()
		b.WriteString(formatLuaNumber(n))
	case KindString:
		s, _ := v.AsString()
		b.WriteByte('"')
		b.WriteString(escapeLuaString(s))
		b.WriteByte('"')
	case KindArray:
		arr, _ := v.AsArray()
		b.WriteString("{\n")
		writeArrayPart(b, arr, indent)
		writeIndent(b, indent)
		b.WriteByte('}')
	case KindTable:
		tbl, _ := v.AsTable()
		b.WriteString("{\n")
		writeHashPart(b, tbl, indent)
		writeIndent(b, indent)
		b.WriteByte('}')
	case KindMixed:
		arr, _ := v.AsArray()
		tbl, _ := v.AsTable()
		b.WriteString("{\n")
		writeArrayPart(b, arr, indent)
		writeHashPart(b, tbl, indent)
		writeIndent(b, indent)
		b.WriteByte('}')
	}
}

func writeArrayPart(b *strings.Builder, arr []LuaValue, indent int) {
	for i, elem := range arr {
		writeIndent(b, indent+1)
		writeValue(b, elem, indent+1)
		b.WriteString(", -- [")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("]\n")
	}
}

func writeHashPart(b *strings.Builder, tbl map[string]LuaValue, indent int) {
	keys := make([]string, 0, len(tbl))
	for k := range tbl {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeIndent(b, indent+1)
		b.WriteString("[\"")
		b.WriteString(escapeLuaString(k))
		b.WriteString("\"] = ")
		writeValue(b, tbl[k], indent+1)
		b.WriteString(",\n")
	}
}

func writeIndent(b *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		b.WriteByte('\t')
	}
}

// formatLuaNumber renders a number the way the game writer does:
// integers in signed decimal, the special values as (0/0), math.huge and
// -math.huge, and everything else as the shortest decimal that parses
// back to the same float.
func formatLuaNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "(0/0)"
	case math.IsInf(n, 1):
		return "math.huge"
	case math.IsInf(n, -1):
		return "-math.huge"
	case math.Trunc(n) == n && math.Abs(n) < 1<<63:
		return strconv.FormatInt(int64(n), 10)
	default:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
}

var luaEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\"", "\\\"",
	"\n", "\\n",
	"\r", "\\r",
	"\t", "\\t",
)

// escapeLuaString escapes the five characters that must not appear raw
// inside a double-quoted Lua string.
func escapeLuaString(s string) string {
	return luaEscaper.Replace(s)
}
