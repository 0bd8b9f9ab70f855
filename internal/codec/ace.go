package codec

import (
	"math"
	"strconv"
	"strings"
)

// The version 0/1 payload serialization is a ^-tagged text format. A
// stream is "^1" followed by one value, closed by "^^". Tags:
//
//	^S<str>        string, ~-escaped
//	^N<repr>       number in plain decimal form
//	^F<m>^f<e>     non-integral number as mantissa and binary exponent
//	^B ^b ^Z       true, false, nil
//	^T … ^t        table: alternating key and value entries
//
// Strings escape control bytes and the ^, ~ and DEL characters with a
// two-byte ~-sequence so the payload never contains a raw ^ outside tags.

// serializeAce renders a value tree in the text payload format.
func serializeAce(v Value) string {
	var b strings.Builder
	b.WriteString("^1")
	writeAceValue(&b, v)
	b.WriteString("^^")
	return b.String()
}

func writeAceValue(b *strings.Builder, v Value) {
	switch t := v.(type) {
	case nil, Null:
		b.WriteString("^Z")
	case Boolean:
		if t {
			b.WriteString("^B")
		} else {
			b.WriteString("^b")
		}
	case Number:
		writeAceNumber(b, float64(t))
	case String:
		b.WriteString("^S")
		b.WriteString(aceEscape(string(t)))
	case Array:
		b.WriteString("^T")
		for i, elem := range t {
			writeAceNumber(b, float64(i+1))
			writeAceValue(b, elem)
		}
		b.WriteString("^t")
	case Map:
		b.WriteString("^T")
		for _, pair := range t {
			writeAceValue(b, pair.Key)
			writeAceValue(b, pair.Value)
		}
		b.WriteString("^t")
	}
}

func writeAceNumber(b *strings.Builder, f float64) {
	switch {
	case math.IsNaN(f):
		b.WriteString("^N1.#IND")
	case math.IsInf(f, 1):
		b.WriteString("^N1.#INF")
	case math.IsInf(f, -1):
		b.WriteString("^N-1.#INF")
	case math.Trunc(f) == f && math.Abs(f) < 1<<53:
		b.WriteString("^N")
		b.WriteString(strconv.FormatInt(int64(f), 10))
	default:
		// Mantissa/exponent form survives tostring/tonumber round-trip
		// losses that a plain decimal rendering would suffer.
		frac, exp := math.Frexp(f)
		b.WriteString("^F")
		b.WriteString(strconv.FormatInt(int64(frac*(1<<53)), 10))
		b.WriteString("^f")
		b.WriteString(strconv.Itoa(exp - 53))
	}
}

func aceEscape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 30:
			b.WriteString("~z")
		case c <= 31:
			b.WriteByte('~')
			b.WriteByte(c + 64)
		case c == 94:
			b.WriteString("~}")
		case c == 126:
			b.WriteString("~|")
		case c == 127:
			b.WriteString("~{")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func aceUnescape(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '~' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", errorf("dangling escape in serialized string")
		}
		switch e := s[i]; {
		case e == 'z':
			b.WriteByte(30)
		case e == '{':
			b.WriteByte(127)
		case e == '|':
			b.WriteByte(126)
		case e == '}':
			b.WriteByte(94)
		case e >= 64 && e <= 95:
			b.WriteByte(e - 64)
		default:
			return "", errorf("invalid escape ~%c in serialized string", e)
		}
	}
	return b.String(), nil
}

// aceToken is one ^-introduced unit of the stream.
type aceToken struct {
	tag  byte
	data string
}

type aceReader struct {
	tokens []aceToken
	pos    int
}

// deserializeAce parses a complete text payload back into a value tree.
func deserializeAce(s string) (Value, error) {
	tokens, err := aceTokenize(s)
	if err != nil {
		return nil, err
	}
	r := &aceReader{tokens: tokens}

	head, err := r.next()
	if err != nil {
		return nil, err
	}
	if head.tag != '1' {
		return nil, errorf("unsupported serialization version %q", head.tag)
	}

	v, err := r.readValue()
	if err != nil {
		return nil, err
	}

	tail, err := r.next()
	if err != nil {
		return nil, err
	}
	if tail.tag != '^' {
		return nil, errorf("missing stream terminator")
	}
	return v, nil
}

func aceTokenize(s string) ([]aceToken, error) {
	var tokens []aceToken
	i := 0
	for i < len(s) {
		if s[i] != '^' {
			return nil, errorf("unexpected byte %q outside tag", s[i])
		}
		if i+1 >= len(s) {
			return nil, errorf("truncated stream")
		}
		tag := s[i+1]
		end := strings.IndexByte(s[i+2:], '^')
		if end < 0 {
			end = len(s) - i - 2
		}
		tokens = append(tokens, aceToken{tag: tag, data: s[i+2 : i+2+end]})
		i += 2 + end
	}
	return tokens, nil
}

func (r *aceReader) next() (aceToken, error) {
	if r.pos >= len(r.tokens) {
		return aceToken{}, errorf("truncated stream")
	}
	t := r.tokens[r.pos]
	r.pos++
	return t, nil
}

func (r *aceReader) peek() (aceToken, bool) {
	if r.pos >= len(r.tokens) {
		return aceToken{}, false
	}
	return r.tokens[r.pos], true
}

func (r *aceReader) readValue() (Value, error) {
	t, err := r.next()
	if err != nil {
		return nil, err
	}
	switch t.tag {
	case 'S':
		s, err := aceUnescape(t.data)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case 'N':
		f, err := parseAceNumber(t.data)
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	case 'F':
		m, err := strconv.ParseInt(t.data, 10, 64)
		if err != nil {
			return nil, errorf("invalid mantissa %q", t.data)
		}
		et, err := r.next()
		if err != nil {
			return nil, err
		}
		if et.tag != 'f' {
			return nil, errorf("mantissa without exponent")
		}
		e, err := strconv.Atoi(et.data)
		if err != nil {
			return nil, errorf("invalid exponent %q", et.data)
		}
		return Number(float64(m) * math.Pow(2, float64(e))), nil
	case 'B':
		return Boolean(true), nil
	case 'b':
		return Boolean(false), nil
	case 'Z':
		return Null{}, nil
	case 'T':
		return r.readTable()
	default:
		return nil, errorf("unknown tag ^%c", t.tag)
	}
}

func (r *aceReader) readTable() (Value, error) {
	m := Map{}
	for {
		t, ok := r.peek()
		if !ok {
			return nil, errorf("unterminated table")
		}
		if t.tag == 't' {
			r.pos++
			return m, nil
		}
		key, err := r.readValue()
		if err != nil {
			return nil, err
		}
		val, err := r.readValue()
		if err != nil {
			return nil, err
		}
		m = append(m, Pair{Key: key, Value: val})
	}
}

func parseAceNumber(s string) (float64, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	switch s {
	case "1.#INF", "inf", "Inf":
		return math.Inf(1), nil
	case "-1.#INF", "-inf", "-Inf":
		return math.Inf(-1), nil
	case "1.#IND", "-1.#IND", "1.#QNAN", "-1.#QNAN", "nan", "-nan":
		return math.NaN(), nil
	}
	return 0, errorf("invalid number %q", s)
}
