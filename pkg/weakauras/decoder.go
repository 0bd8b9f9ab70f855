package weakauras

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/gitrdm/wamerge/internal/codec"
)

// DefaultMaxDecompressed bounds the inflated size of an import string's
// payload. Untrusted strings may be compressed bombs; anything real fits
// comfortably under 10 MiB.
const DefaultMaxDecompressed = 10 << 20

// WeakAura is one decoded import string: the root aura body, the flat
// list of descendant bodies, and the metadata lifted out of them.
type WeakAura struct {
	// ID is the display name, the primary key in the displays map.
	ID string
	// UID is the opaque 11-character identifier, when present.
	UID string
	// RegionType is the aura's region kind; "group" and "dynamicgroup"
	// mark containers.
	RegionType string
	// IsGroup reports whether this aura controls children.
	IsGroup bool
	// Children holds the direct child IDs.
	Children []string
	// Data is the root aura body.
	Data LuaValue
	// ChildData holds every descendant body, flat, in wire order.
	ChildData []LuaValue
	// OriginalString is the import string as received, kept for audit.
	OriginalString string
	// EncodingVersion is the detected wire encoding (0, 1 or 2+).
	EncodingVersion uint8
}

// DecodeResult is one entry of a batch decode; exactly one of Aura and
// Err is set.
type DecodeResult struct {
	Aura *WeakAura
	Err  error
}

// Decoder turns import strings into WeakAura values.
type Decoder struct {
	log             *zap.Logger
	maxDecompressed int
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithDecoderLogger routes decode diagnostics to log.
func WithDecoderLogger(log *zap.Logger) DecoderOption {
	return func(d *Decoder) { d.log = log }
}

// WithMaxDecompressed overrides the decompressed-size bound.
func WithMaxDecompressed(n int) DecoderOption {
	return func(d *Decoder) { d.maxDecompressed = n }
}

// NewDecoder returns a Decoder with the default 10 MiB decompression
// bound and no logging.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		log:             zap.NewNop(),
		maxDecompressed: DefaultMaxDecompressed,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectVersion returns the encoding version an import string's prefix
// announces: "!WA:N!" is version N, a bare "!" is 1, no prefix is 0.
func DetectVersion(s string) uint8 {
	return codec.DetectVersion(strings.TrimSpace(s))
}

// Decode decodes a single import string.
func (d *Decoder) Decode(importString string) (*WeakAura, error) {
	trimmed := strings.TrimSpace(importString)

	raw, err := codec.Decode(trimmed, d.maxDecompressed)
	if err != nil {
		return nil, &DeserializationError{Msg: err.Error()}
	}

	data := convertCodecValue(raw)
	auraData, childData := d.extractAuraData(data)

	aura := &WeakAura{
		Data:            auraData,
		ChildData:       childData,
		OriginalString:  importString,
		EncodingVersion: codec.DetectVersion(trimmed),
	}
	d.extractMetadata(aura)
	return aura, nil
}

// DecodeMultiple splits free-form text into import-string candidates and
// decodes each independently. A candidate either starts with '!' or is a
// long run of payload-alphabet characters. Per-entry failures come back
// as per-entry results; one bad string does not poison the batch.
func (d *Decoder) DecodeMultiple(input string) []DecodeResult {
	var results []DecodeResult
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "!") && !looksLikeImportString(line) {
			continue
		}
		aura, err := d.Decode(line)
		results = append(results, DecodeResult{Aura: aura, Err: err})
	}
	return results
}

// looksLikeImportString is the heuristic for prefix-less version 0
// strings: longer than 50 characters, and made entirely of ASCII
// letters, digits and the characters !:+/=().
func looksLikeImportString(s string) bool {
	if len(s) <= 50 {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || (!unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("!:+/=()", r)) {
			return false
		}
	}
	return true
}

// extractAuraData unwraps the transmission envelope {m, d, c, v, s}.
// Legacy payloads carry no envelope; the whole value is the body.
func (d *Decoder) extractAuraData(data LuaValue) (LuaValue, []LuaValue) {
	table, ok := data.AsTable()
	if !ok {
		d.log.Warn("decoded payload is not a table, using as-is")
		return data, nil
	}

	_, wrapped := table["d"]
	auraData := data
	if wrapped {
		auraData = table["d"]
	}

	var childData []LuaValue
	if c, ok := data.Field("c"); ok {
		if arr, ok := c.AsArray(); ok {
			childData = arr
		}
	}

	d.log.Debug("extracted aura data from transmission envelope",
		zap.Bool("wrapped", wrapped),
		zap.Int("children", len(childData)))
	return auraData, childData
}

// extractMetadata fills the id/uid/region fields and the group flag. A
// group is anything with a grouping region type, a non-empty
// controlledChildren list, or — for import strings where the parent body
// does not carry controlledChildren yet — a non-empty descendant list,
// in which case children are inferred from the descendants' own ids.
func (d *Decoder) extractMetadata(aura *WeakAura) {
	aura.ID = "unknown"

	if table, ok := aura.Data.AsTable(); ok {
		if id, ok := aura.Data.StringField("id"); ok {
			aura.ID = id
		}
		if uid, ok := aura.Data.StringField("uid"); ok {
			aura.UID = uid
		}
		if rt, ok := aura.Data.StringField("regionType"); ok {
			aura.RegionType = rt
			if rt == "group" || rt == "dynamicgroup" {
				aura.IsGroup = true
			}
		}
		if cc, ok := table["controlledChildren"]; ok {
			if arr, ok := cc.AsArray(); ok {
				for _, child := range arr {
					if id, ok := child.AsString(); ok {
						aura.Children = append(aura.Children, id)
					}
				}
				if len(aura.Children) > 0 {
					aura.IsGroup = true
				}
			}
		}
	} else {
		d.log.Warn("aura body is not a table, metadata extraction skipped")
	}

	if len(aura.Children) == 0 && len(aura.ChildData) > 0 {
		d.log.Debug("no controlledChildren on root, inferring from descendants",
			zap.Int("descendants", len(aura.ChildData)))
		for _, child := range aura.ChildData {
			if id, ok := child.StringField("id"); ok {
				aura.Children = append(aura.Children, id)
			}
		}
		aura.IsGroup = true
	}

	d.log.Debug("extracted metadata",
		zap.String("id", aura.ID),
		zap.Bool("isGroup", aura.IsGroup),
		zap.Int("children", len(aura.Children)))
}

// convertCodecValue translates the codec's wire tree into the value
// model, applying the shape-resolution rules. Older payloads deliver
// numeric keys as strings; those re-classify as array indices. Boolean
// keys stringify.
func convertCodecValue(v codec.Value) LuaValue {
	switch t := v.(type) {
	case nil, codec.Null:
		return Nil()
	case codec.Boolean:
		return Bool(bool(t))
	case codec.Number:
		return Number(float64(t))
	case codec.String:
		return String(string(t))
	case codec.Array:
		elems := make([]LuaValue, len(t))
		for i, e := range t {
			elems[i] = convertCodecValue(e)
		}
		return ArrayOf(elems)
	case codec.Map:
		var numeric []numericEntry
		hash := make(map[string]LuaValue)
		for _, pair := range t {
			value := convertCodecValue(pair.Value)
			switch k := pair.Key.(type) {
			case codec.Number:
				n := float64(k)
				if n > 0 && n == float64(int64(n)) {
					numeric = append(numeric, numericEntry{index: int64(n), value: value})
				} else {
					hash[formatNumberKey(n)] = value
				}
			case codec.String:
				if n, err := strconv.ParseInt(string(k), 10, 64); err == nil && n > 0 {
					numeric = append(numeric, numericEntry{index: n, value: value})
				} else {
					hash[string(k)] = value
				}
			case codec.Boolean:
				hash[strconv.FormatBool(bool(k))] = value
			default:
				// Table-valued keys have no sensible projection; drop.
			}
		}
		return resolveTableShape(nil, numeric, hash)
	default:
		return Nil()
	}
}

// ValidationResult summarizes a decode attempt for display.
type ValidationResult struct {
	IsValid    bool
	Format     string
	AuraID     string
	IsGroup    bool
	ChildCount int
	Err        string
}

// Validate decodes an import string and reports what it contains without
// keeping the result.
func (d *Decoder) Validate(importString string) ValidationResult {
	aura, err := d.Decode(importString)
	if err != nil {
		return ValidationResult{Err: err.Error()}
	}
	return ValidationResult{
		IsValid:    true,
		Format:     fmt.Sprintf("encoding v%d", aura.EncodingVersion),
		AuraID:     aura.ID,
		IsGroup:    aura.IsGroup,
		ChildCount: len(aura.ChildData),
	}
}

// Summary renders the result as a one-line string.
func (r ValidationResult) Summary() string {
	if !r.IsValid {
		if r.Err != "" {
			return r.Err
		}
		return "Invalid"
	}
	parts := []string{}
	if r.AuraID != "" {
		parts = append(parts, "ID: "+r.AuraID)
	}
	if r.Format != "" {
		parts = append(parts, r.Format)
	}
	if r.IsGroup {
		parts = append(parts, fmt.Sprintf("Group with %d children", r.ChildCount))
	}
	return strings.Join(parts, " | ")
}
