package candid

import (
	"strconv"
	"unicode/utf8"
)

// Hash computes the field ID of a textual label.
func Hash(name string) uint32 {
	var h uint32
	for _, b := range []byte(name) {
		h = h*223 + uint32(b)
	}
	return h
}

var keywords = map[string]struct{}{
	"blob":            {},
	"bool":            {},
	"composite_query": {},
	"empty":           {},
	"false":           {},
	"float32":         {},
	"float64":         {},
	"func":            {},
	"import":          {},
	"int":             {},
	"int8":            {},
	"int16":           {},
	"int32":           {},
	"int64":           {},
	"nat":             {},
	"nat8":            {},
	"nat16":           {},
	"nat32":           {},
	"nat64":           {},
	"null":            {},
	"oneway":          {},
	"opt":             {},
	"principal":       {},
	"query":           {},
	"record":          {},
	"reserved":        {},
	"service":         {},
	"text":            {},
	"true":            {},
	"type":            {},
	"variant":         {},
	"vec":             {},
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// quoteName renders a label or method name, quoting it when it's not a plain identifier.
func quoteName(s string) string {
	if _, kw := keywords[s]; !kw && isIdentifier(s) {
		return s
	}
	return quoteText(s)
}

func quoteText(s string) string {
	return quoteBytes([]byte(s), false)
}

// quoteBytes renders a text literal. With blob set every non-printable ASCII byte is hex escaped,
// otherwise valid UTF-8 sequences are kept as is.
func quoteBytes(b []byte, blob bool) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 0, len(b)+2)
	buf = append(buf, '"')
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == '"' || c == '\\':
			buf = append(buf, '\\', c)
			i++
			continue
		case c >= 0x20 && c < 0x7f:
			buf = append(buf, c)
			i++
			continue
		}
		if !blob {
			switch c {
			case '\n':
				buf = append(buf, '\\', 'n')
				i++
				continue
			case '\r':
				buf = append(buf, '\\', 'r')
				i++
				continue
			case '\t':
				buf = append(buf, '\\', 't')
				i++
				continue
			}
			r, size := utf8.DecodeRune(b[i:])
			if r != utf8.RuneError || size > 1 {
				if r < 0x80 {
					buf = append(buf, `\u{`...)
					buf = strconv.AppendUint(buf, uint64(r), 16)
					buf = append(buf, '}')
				} else {
					buf = append(buf, b[i:i+size]...)
				}
				i += size
				continue
			}
		}
		buf = append(buf, '\\', hexDigits[c>>4], hexDigits[c&0x0f])
		i++
	}
	buf = append(buf, '"')
	return string(buf)
}
