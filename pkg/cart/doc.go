// Package cart provides Sharecart1000 record serialization and deserialization.
//
// A Sharecart is a tiny save state shared by every participating game. It is
// stored as a single INI-style section in a file named o_o.ini, and this
// package converts between that text and an in-memory Record. Both
// directions normalize: whatever text comes in, Decode produces a Record
// within the format's limits, and whatever Record goes out, Encode produces
// text any other Sharecart implementation can read.
//
// # Record Format
//
// Records are written as one [Main] section with fifteen keys in a fixed
// order and fixed casing, one per line, separated by '\n' only:
//
//	[Main]
//	MapX=0
//	MapY=0
//	Misc0=0
//	Misc1=0
//	Misc2=0
//	Misc3=0
//	PlayerName=
//	Switch0=FALSE
//	...
//	Switch7=FALSE
//
// Fields:
//   - MapX, MapY: 10-bit coordinates (0-1023)
//   - Misc0..Misc3: unsigned 16-bit values, full range
//   - PlayerName: at most 1023 bytes of UTF-8 on a single line
//   - Switch0..Switch7: booleans, written as TRUE or FALSE
//
// # Decoding Rules
//
// Decoding is best-effort per field:
//   - MapX/MapY parse as an unsigned 16-bit integer (0 on failure) and are
//     then reduced modulo 1024
//   - Misc values parse as an unsigned 16-bit integer, 0 on failure
//   - PlayerName keeps the first 1023 bytes, repairs any broken UTF-8 into
//     U+FFFD, then drops every U+FFFD, '\r' and '\n'
//   - A switch is true only when its value is "true" in any letter case
//
// The section name and key names are matched case-insensitively, so "main",
// "mapx" and "SWITCH0" are all accepted. Unknown keys and other sections are
// ignored. A missing [Main] section yields the default (zero) Record.
//
// # Encoding Rules
//
// Encoding is total. Coordinates are written modulo 1024, and the player name
// has '\r' and '\n' removed before being cut to 1023 bytes, so a multi-byte
// character split by the cut is dropped rather than written half-way.
//
// # Usage
//
// Basic encoding and decoding:
//
//	codec := cart.NewCodec()
//
//	// Decode the contents of o_o.ini
//	record, err := codec.Decode(text)
//	if err != nil {
//	    return err // not INI at all
//	}
//
//	record.Switch[3] = true
//
//	// Encode for writing back
//	text = codec.Encode(record)
//
// # Error Handling
//
// Decode returns an error only when the text cannot be split into sections
// and keys at all (for example an unclosed "[Main" header or a line with no
// '='). That error is a *ParseError and matches ErrSyntax with errors.Is.
// Everything else falls back to defaults locally: one bad field never
// affects the others.
//
// # Canonical Form
//
// A Record is canonical when Decode(Encode(r)) == r. Every Record produced
// by Decode is canonical unless its PlayerName starts or ends with white
// space (as defined by unicode.IsSpace): the section parser trims values,
// so such names come back trimmed. Names may hold any other text, including
// a leading backtick or """, which are read as literal characters rather
// than as quote marks.
//
// # Thread Safety
//
// Codec instances hold no mutable state and are safe for concurrent use.
// Record is a plain value type.
package cart
