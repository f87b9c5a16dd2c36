package cart

import (
	"strconv"
	"strings"
)

const (
	// SectionName is the only section read or written.
	SectionName = "Main"
	// MapSize bounds MapX and MapY: both are stored modulo MapSize (10 bits).
	MapSize = 1024
	// MaxNameBytes is the longest PlayerName, in bytes, that is kept.
	MaxNameBytes = 1023
	// MiscCount is the number of free 16-bit values.
	MiscCount = 4
	// SwitchCount is the number of boolean switches.
	SwitchCount = 8
)

// fieldNames lists the on-disk keys in the order Encode writes them.
var fieldNames = []string{
	"MapX", "MapY",
	"Misc0", "Misc1", "Misc2", "Misc3",
	"PlayerName",
	"Switch0", "Switch1", "Switch2", "Switch3",
	"Switch4", "Switch5", "Switch6", "Switch7",
}

// Record is the in-memory Sharecart save state.
//
// The zero value is the default record. Record is comparable, so two
// records can be checked with ==.
type Record struct {
	MapX       uint16            `json:"map_x" yaml:"map_x"`             // 0-1023
	MapY       uint16            `json:"map_y" yaml:"map_y"`             // 0-1023
	Misc       [MiscCount]uint16 `json:"misc" yaml:"misc"`               // full range
	PlayerName string            `json:"player_name" yaml:"player_name"` // <= 1023 bytes, single line
	Switch     [SwitchCount]bool `json:"switch" yaml:"switch"`
}

// Codec converts between the wire text and Record values
type Codec struct {
	parser *sectionParser
}

// NewCodec creates a new cart codec instance
func NewCodec() *Codec {
	return &Codec{parser: newSectionParser()}
}

var defaultCodec = NewCodec()

// Decode parses text with the default codec. See (*Codec).Decode.
func Decode(text string) (Record, error) {
	return defaultCodec.Decode(text)
}

// Encode renders r with the default codec. See (*Codec).Encode.
func Encode(r Record) string {
	return defaultCodec.Encode(r)
}

// Decode parses cart text into a normalized Record.
//
// The only error is a *ParseError (matching ErrSyntax) when the text cannot
// be tokenized into sections at all. A missing [Main] section is not an
// error and yields the default record. Bad field values fall back to that
// field's default without affecting the other fields.
func (c *Codec) Decode(text string) (Record, error) {
	sections, err := c.parser.parse(text)
	if err != nil {
		return Record{}, &ParseError{Err: err}
	}

	var r Record
	for _, kv := range sections.lookup(SectionName) {
		r.set(kv.key, kv.value)
	}
	return r, nil
}

// Encode renders r as a single [Main] section.
//
// Encode never fails: coordinates are reduced modulo MapSize and the player
// name is sanitized so the output always satisfies the wire format.
func (c *Codec) Encode(r Record) string {
	var b strings.Builder
	// about 170 bytes of keys and punctuation before any name
	b.Grow(200 + len(r.PlayerName))

	b.WriteString("[" + SectionName + "]\n")
	writeField(&b, "MapX", formatUint16(r.MapX%MapSize))
	writeField(&b, "MapY", formatUint16(r.MapY%MapSize))
	for i, v := range r.Misc {
		writeField(&b, "Misc"+strconv.Itoa(i), formatUint16(v))
	}
	writeField(&b, "PlayerName", encodeName(r.PlayerName))
	for i, on := range r.Switch {
		writeField(&b, "Switch"+strconv.Itoa(i), encodeSwitch(on))
	}

	return b.String()
}

// With returns a copy of r with the field named key set from value, using
// the same rule Decode applies to that key. Key matching ignores case. The
// boolean is false, and r is returned unchanged, when key names no field.
func (r Record) With(key, value string) (Record, bool) {
	ok := r.set(key, value)
	return r, ok
}

// Fields returns the on-disk key names in encode order.
func Fields() []string {
	out := make([]string, len(fieldNames))
	copy(out, fieldNames)
	return out
}

// set applies the decode rule for key. Keys are matched case-insensitively.
func (r *Record) set(key, value string) bool {
	key = strings.ToLower(key)
	switch key {
	case "mapx":
		r.MapX = orZero(parseUint16(value)) % MapSize
		return true
	case "mapy":
		r.MapY = orZero(parseUint16(value)) % MapSize
		return true
	case "playername":
		r.PlayerName = decodeName(value)
		return true
	}

	if i, ok := indexedKey(key, "misc", MiscCount); ok {
		r.Misc[i] = orZero(parseUint16(value))
		return true
	}
	if i, ok := indexedKey(key, "switch", SwitchCount); ok {
		r.Switch[i] = decodeSwitch(value)
		return true
	}
	return false
}

// indexedKey matches keys of the form <prefix><digit> with digit < n.
func indexedKey(key, prefix string, n int) (int, bool) {
	rest, found := strings.CutPrefix(key, prefix)
	if !found || len(rest) != 1 {
		return 0, false
	}
	i := int(rest[0]) - '0'
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

func writeField(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteByte('\n')
}
