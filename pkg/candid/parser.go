package candid

import (
	"fmt"
)

type parser struct {
	source string
	tokens []token
	i      int
}

func newParser(source, src string) (*parser, error) {
	tokens, err := tokenize(source, src)
	if err != nil {
		return nil, err
	}
	return &parser{source: source, tokens: tokens}, nil
}

func (p *parser) peek() token {
	return p.tokens[p.i]
}

func (p *parser) peekN(n int) token {
	if p.i+n < len(p.tokens) {
		return p.tokens[p.i+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) next() token {
	t := p.tokens[p.i]
	if t.kind != tokenEOF {
		p.i++
	}
	return t
}

func (p *parser) is(kind tokenKind) bool {
	return p.peek().kind == kind
}

func (p *parser) isKeyword(kw string) bool {
	t := p.peek()
	return t.kind == tokenIdent && t.value == kw
}

// accept consumes the next token if it has the given kind.
func (p *parser) accept(kind tokenKind) bool {
	if p.is(kind) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.peek()
	if t.kind != kind {
		return t, p.errorAt(t, "expected %s, found %s", kind, t.describe())
	}
	return p.next(), nil
}

func (p *parser) expectKeyword(kw string) error {
	t := p.peek()
	if t.kind != tokenIdent || t.value != kw {
		return p.errorAt(t, "expected %q, found %s", kw, t.describe())
	}
	p.next()
	return nil
}

func (p *parser) expectEOF() error {
	if t := p.peek(); t.kind != tokenEOF {
		return p.errorAt(t, "unexpected %s after the end of input", t.describe())
	}
	return nil
}

func (p *parser) errorAt(t token, format string, args ...any) error {
	return &ParseError{Source: p.source, Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

// sequence parses `open item (sep item)* sep? close`, the opening token is already consumed.
func (p *parser) sequence(sep, closing tokenKind, item func() error) error {
	for !p.accept(closing) {
		if err := item(); err != nil {
			return err
		}
		if p.accept(closing) {
			return nil
		}
		if _, err := p.expect(sep); err != nil {
			return err
		}
	}
	return nil
}
