package candid

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind byte

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenNumber
	tokenText
	tokenLParen
	tokenRParen
	tokenLBrace
	tokenRBrace
	tokenComma
	tokenSemi
	tokenEqual
	tokenColon
	tokenDot
	tokenArrow
)

var tokenNames = map[tokenKind]string{
	tokenEOF:    "end of input",
	tokenIdent:  "identifier",
	tokenNumber: "number",
	tokenText:   "text",
	tokenLParen: "'('",
	tokenRParen: "')'",
	tokenLBrace: "'{'",
	tokenRBrace: "'}'",
	tokenComma:  "','",
	tokenSemi:   "';'",
	tokenEqual:  "'='",
	tokenColon:  "':'",
	tokenDot:    "'.'",
	tokenArrow:  "'->'",
}

var punctuation = map[byte]tokenKind{
	'(': tokenLParen, ')': tokenRParen, '{': tokenLBrace, '}': tokenRBrace,
	',': tokenComma, ';': tokenSemi, '=': tokenEqual, ':': tokenColon, '.': tokenDot,
}

func (k tokenKind) String() string {
	return tokenNames[k]
}

// token is a lexical unit. For text tokens value holds the unescaped bytes, for numbers the
// literal as written.
type token struct {
	kind  tokenKind
	value string
	pos   Position
}

func (t token) describe() string {
	switch t.kind {
	case tokenIdent, tokenNumber:
		return fmt.Sprintf("%s %q", t.kind, t.value)
	case tokenText:
		return "text literal"
	default:
		return t.kind.String()
	}
}

type lexer struct {
	source string
	src    string
	offset int
	line   int
	column int
}

// tokenize splits the whole source into tokens, the last token is always tokenEOF.
func tokenize(source, src string) ([]token, error) {
	l := &lexer{source: source, src: src, line: 1, column: 1}
	var tokens []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
		if t.kind == tokenEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) errorf(pos Position, format string, args ...any) error {
	return &ParseError{Source: l.source, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) pos() Position {
	return Position{Line: l.line, Column: l.column}
}

func (l *lexer) peekByte(n int) byte {
	if l.offset+n < len(l.src) {
		return l.src[l.offset+n]
	}
	return 0
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.offset < len(l.src); i++ {
		if l.src[l.offset] == '\n' {
			l.line++
			l.column = 1
		} else if l.src[l.offset]&0xc0 != 0x80 { // count runes, not continuation bytes
			l.column++
		}
		l.offset++
	}
}

func (l *lexer) skipSpaceAndComments() error {
	for l.offset < len(l.src) {
		c := l.src[l.offset]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance(1)
		case c == '/' && l.peekByte(1) == '/':
			for l.offset < len(l.src) && l.src[l.offset] != '\n' {
				l.advance(1)
			}
		case c == '/' && l.peekByte(1) == '*':
			start := l.pos()
			l.advance(2)
			depth := 1
			for depth > 0 {
				if l.offset >= len(l.src) {
					return l.errorf(start, "unterminated comment")
				}
				switch {
				case l.src[l.offset] == '/' && l.peekByte(1) == '*':
					depth++
					l.advance(2)
				case l.src[l.offset] == '*' && l.peekByte(1) == '/':
					depth--
					l.advance(2)
				default:
					l.advance(1)
				}
			}
		default:
			return nil
		}
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (l *lexer) next() (token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token{}, err
	}
	pos := l.pos()
	if l.offset >= len(l.src) {
		return token{kind: tokenEOF, pos: pos}, nil
	}
	c := l.src[l.offset]
	switch {
	case c == '-' && l.peekByte(1) == '>':
		l.advance(2)
		return token{kind: tokenArrow, value: "->", pos: pos}, nil
	case (c == '-' || c == '+') && isDigit(l.peekByte(1)), isDigit(c):
		return l.number(pos)
	case c == '"':
		return l.text(pos)
	case isIdentStart(c):
		start := l.offset
		for l.offset < len(l.src) && (isIdentStart(l.src[l.offset]) || isDigit(l.src[l.offset])) {
			l.advance(1)
		}
		return token{kind: tokenIdent, value: l.src[start:l.offset], pos: pos}, nil
	}
	if k, ok := punctuation[c]; ok {
		l.advance(1)
		return token{kind: k, value: string(c), pos: pos}, nil
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
	return token{}, l.errorf(pos, "unexpected character %q", r)
}

func (l *lexer) number(pos Position) (token, error) {
	start := l.offset
	if c := l.src[l.offset]; c == '-' || c == '+' {
		l.advance(1)
	}
	if l.src[l.offset] == '0' && (l.peekByte(1) == 'x' || l.peekByte(1) == 'X') {
		l.advance(2)
		digits := 0
		for l.offset < len(l.src) && (isHexDigit(l.src[l.offset]) || l.src[l.offset] == '_') {
			if l.src[l.offset] != '_' {
				digits++
			}
			l.advance(1)
		}
		if digits == 0 {
			return token{}, l.errorf(pos, "invalid hexadecimal number %q", l.src[start:l.offset])
		}
		return token{kind: tokenNumber, value: l.src[start:l.offset], pos: pos}, nil
	}
	l.digits()
	// Fractional digits are optional, "5." is a float.
	if l.peekByte(0) == '.' {
		l.advance(1)
		l.digits()
	}
	if c := l.peekByte(0); c == 'e' || c == 'E' {
		n := 1
		if s := l.peekByte(1); s == '-' || s == '+' {
			n = 2
		}
		if isDigit(l.peekByte(n)) {
			l.advance(n)
			l.digits()
		}
	}
	if l.offset < len(l.src) && isIdentStart(l.src[l.offset]) {
		return token{}, l.errorf(pos, "invalid number %q", l.src[start:l.offset+1])
	}
	return token{kind: tokenNumber, value: l.src[start:l.offset], pos: pos}, nil
}

func (l *lexer) digits() {
	for l.offset < len(l.src) && (isDigit(l.src[l.offset]) || l.src[l.offset] == '_') {
		l.advance(1)
	}
}

func (l *lexer) text(pos Position) (token, error) {
	l.advance(1) // opening quote
	var sb strings.Builder
	for {
		if l.offset >= len(l.src) {
			return token{}, l.errorf(pos, "unterminated text literal")
		}
		c := l.src[l.offset]
		switch c {
		case '"':
			l.advance(1)
			return token{kind: tokenText, value: sb.String(), pos: pos}, nil
		case '\\':
			if err := l.escape(&sb); err != nil {
				return token{}, err
			}
		default:
			sb.WriteByte(c)
			l.advance(1)
		}
	}
}

func (l *lexer) escape(sb *strings.Builder) error {
	pos := l.pos()
	c := l.peekByte(1)
	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case '\\', '"', '\'':
		sb.WriteByte(c)
	case 'u':
		if l.peekByte(2) != '{' {
			return l.errorf(pos, "invalid unicode escape")
		}
		end := strings.IndexByte(l.src[l.offset:], '}')
		if end < 0 {
			return l.errorf(pos, "unterminated unicode escape")
		}
		hex := strings.ReplaceAll(l.src[l.offset+3:l.offset+end], "_", "")
		cp, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || cp > utf8.MaxRune || (cp >= 0xd800 && cp <= 0xdfff) {
			return l.errorf(pos, "invalid unicode escape %q", l.src[l.offset:l.offset+end+1])
		}
		sb.WriteRune(rune(cp))
		l.advance(end + 1)
		return nil
	default:
		if isHexDigit(c) && isHexDigit(l.peekByte(2)) {
			b, err := strconv.ParseUint(l.src[l.offset+1:l.offset+3], 16, 8)
			if err != nil {
				return l.errorf(pos, "invalid byte escape")
			}
			sb.WriteByte(byte(b))
			l.advance(3)
			return nil
		}
		return l.errorf(pos, "unknown escape sequence")
	}
	l.advance(2)
	return nil
}
