package cart

import (
	"strings"
	"unicode"

	"gopkg.in/ini.v1"
)

// sectionParser tokenizes cart text into named sections of key/value pairs.
type sectionParser struct {
	options ini.LoadOptions
}

func newSectionParser() *sectionParser {
	return &sectionParser{
		options: ini.LoadOptions{
			// Section names and key names are matched in lower case.
			InsensitiveSections: true,
			InsensitiveKeys:     true,

			// Player names are free text: keep '#', ';', trailing '\' and
			// surrounding quotes as part of the value.
			IgnoreInlineComment:     true,
			IgnoreContinuation:      true,
			PreserveSurroundedQuote: true,

			KeyValueDelimiters: "=",
		},
	}
}

type keyValue struct {
	key   string
	value string
}

type sections struct {
	file *ini.File
}

func (p *sectionParser) parse(text string) (*sections, error) {
	f, err := ini.LoadSources(p.options, []byte(quoteLiteralValues(text)))
	if err != nil {
		return nil, err
	}
	return &sections{file: f}, nil
}

// lookup returns the pairs of the named section, or nil when it is absent.
// Repeated keys have already been collapsed by the parser, last value wins.
func (s *sections) lookup(name string) []keyValue {
	sec, err := s.file.GetSection(name)
	if err != nil {
		return nil
	}

	keys := sec.Keys()
	out := make([]keyValue, 0, len(keys))
	for _, k := range keys {
		// Value, not String: String expands %(name)s references.
		out = append(out, keyValue{key: k.Name(), value: k.Value()})
	}
	return out
}

// quoteLiteralValues wraps values that begin with a backtick or """ in """
// so the parser reads them as literal text instead of as an opening quote.
// The parser cuts a """ value at the last """ on the line, which is the one
// added here, so the original value comes back byte for byte. Values are
// trimmed first, matching what the parser does to unquoted values.
func quoteLiteralValues(text string) string {
	if !strings.Contains(text, "`") && !strings.Contains(text, `"""`) {
		return text
	}

	lines := strings.SplitAfter(text, "\n")
	for i, line := range lines {
		if quoted, ok := quoteLiteralValue(line); ok {
			lines[i] = quoted
		}
	}
	return strings.Join(lines, "")
}

func quoteLiteralValue(line string) (string, bool) {
	body := strings.TrimLeftFunc(line, unicode.IsSpace)
	if body == "" || strings.ContainsRune("[#;\"`", rune(body[0])) {
		return "", false
	}

	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return "", false
	}

	value := strings.TrimSpace(line[eq+1:])
	if !strings.HasPrefix(value, "`") && !strings.HasPrefix(value, `"""`) {
		return "", false
	}

	quoted := line[:eq+1] + `"""` + value + `"""`
	if strings.HasSuffix(line, "\n") {
		quoted += "\n"
	}
	return quoted, true
}
