package cart

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// parseUint16 parses a decimal u16. A single leading '+' is accepted.
func parseUint16(s string) (uint16, bool) {
	s = strings.TrimPrefix(s, "+")
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

func orZero(n uint16, ok bool) uint16 {
	if !ok {
		return 0
	}
	return n
}

func formatUint16(n uint16) string {
	return strconv.FormatUint(uint64(n), 10)
}

func decodeSwitch(value string) bool {
	return strings.EqualFold(value, "true")
}

func encodeSwitch(on bool) string {
	if on {
		return "TRUE"
	}
	return "FALSE"
}

// decodeName truncates to MaxNameBytes first, then repairs and filters.
func decodeName(raw string) string {
	return keepName(repairUTF8(truncateBytes([]byte(raw), MaxNameBytes)))
}

// encodeName drops line breaks first, then truncates, repairs and filters.
func encodeName(name string) string {
	b := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		if c := name[i]; c != '\r' && c != '\n' {
			b = append(b, c)
		}
	}
	return keepName(repairUTF8(truncateBytes(b, MaxNameBytes)))
}

func truncateBytes(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// repairUTF8 decodes b rune by rune. Every byte that does not start a valid
// sequence, including a cut-off trailing sequence, becomes utf8.RuneError
// (U+FFFD).
func repairUTF8(b []byte) []rune {
	out := make([]rune, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		out = append(out, r)
		b = b[size:]
	}
	return out
}

// keepName drops replacement characters and line breaks.
func keepName(runes []rune) string {
	var sb strings.Builder
	sb.Grow(len(runes))
	for _, r := range runes {
		switch r {
		case utf8.RuneError, '\r', '\n':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
