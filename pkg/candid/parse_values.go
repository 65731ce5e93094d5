package candid

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseArgs parses a parenthesized, comma separated list of values, e.g. `(42, "text", opt true)`.
func ParseArgs(source, src string) (Args, error) {
	p, err := newParser(source, src)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLParen); err != nil {
		return nil, err
	}
	args := make(Args, 0)
	err = p.sequence(tokenComma, tokenRParen, func() error {
		v, err := p.annotatedValue()
		if err != nil {
			return err
		}
		args = append(args, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return args, nil
}

// ParseValue parses a single, possibly annotated, value.
func ParseValue(source, src string) (Value, error) {
	p, err := newParser(source, src)
	if err != nil {
		return nil, err
	}
	v, err := p.annotatedValue()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return v, nil
}

// annotatedValue parses `value` or `value : type`.
func (p *parser) annotatedValue() (Value, error) {
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	if !p.is(tokenColon) {
		return v, nil
	}
	colon := p.next()
	t, err := p.dataType()
	if err != nil {
		return nil, err
	}
	r, err := Annotate(v, t, nil)
	if err != nil {
		return nil, p.errorAt(colon, "%v", err)
	}
	return r, nil
}

func (p *parser) value() (Value, error) {
	t := p.peek()
	switch t.kind {
	case tokenLParen:
		p.next()
		v, err := p.annotatedValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return v, nil
	case tokenNumber:
		p.next()
		return p.number(t)
	case tokenText:
		p.next()
		if !utf8.ValidString(t.value) {
			return nil, p.errorAt(t, "text literal is not valid UTF-8")
		}
		return Text(t.value), nil
	case tokenIdent:
		return p.keywordValue()
	default:
		return nil, p.errorAt(t, "expected value, found %s", t.describe())
	}
}

func (p *parser) number(t token) (Value, error) {
	s := t.value
	isHex := strings.Contains(s, "0x") || strings.Contains(s, "0X")
	if !isHex && strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
		if err != nil {
			return nil, p.errorAt(t, "invalid float %q", s)
		}
		return Float64(f), nil
	}
	n, ok := parseInteger(s)
	if !ok {
		return nil, p.errorAt(t, "invalid number %q", s)
	}
	return Number(n.String()), nil
}

func (p *parser) keywordValue() (Value, error) {
	t := p.next()
	switch t.value {
	case "null":
		return Null{}, nil
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	case "opt":
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		return Opt{Value: v}, nil
	case "vec":
		return p.vecValue()
	case "blob":
		s, err := p.expect(tokenText)
		if err != nil {
			return nil, err
		}
		return Blob([]byte(s.value)), nil
	case "record":
		return p.recordValue()
	case "variant":
		return p.variantValue()
	case "principal":
		return p.principal()
	case "service":
		pr, err := p.principal()
		if err != nil {
			return nil, err
		}
		return Service{Principal: pr}, nil
	case "func":
		pr, err := p.principal()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenDot); err != nil {
			return nil, err
		}
		m := p.next()
		if m.kind != tokenIdent && m.kind != tokenText {
			return nil, p.errorAt(m, "expected method name, found %s", m.describe())
		}
		return Func{Principal: pr, Method: m.value}, nil
	default:
		return nil, p.errorAt(t, "unexpected identifier %q, expected value", t.value)
	}
}

func (p *parser) principal() (Principal, error) {
	t, err := p.expect(tokenText)
	if err != nil {
		return nil, err
	}
	pr, err := PrincipalFromText(t.value)
	if err != nil {
		return nil, p.errorAt(t, "%v", err)
	}
	return pr, nil
}

func (p *parser) vecValue() (Value, error) {
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	vec := make(Vec, 0)
	err := p.sequence(tokenSemi, tokenRBrace, func() error {
		v, err := p.annotatedValue()
		if err != nil {
			return err
		}
		vec = append(vec, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vec, nil
}

func (p *parser) recordValue() (Value, error) {
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	var (
		record = make(Record, 0)
		nextID uint32
		seen   = make(map[uint32]struct{})
	)
	err := p.sequence(tokenSemi, tokenRBrace, func() error {
		start := p.peek()
		f := Field{ID: nextID}
		if p.isLabel() && p.peekN(1).kind == tokenEqual {
			id, name, err := p.label()
			if err != nil {
				return err
			}
			p.next() // =
			f.ID, f.Name = id, name
		}
		v, err := p.annotatedValue()
		if err != nil {
			return err
		}
		f.Value = v
		if _, dup := seen[f.ID]; dup {
			return p.errorAt(start, "duplicate record field id %d", f.ID)
		}
		seen[f.ID] = struct{}{}
		record = append(record, f)
		nextID = f.ID + 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (p *parser) variantValue() (Value, error) {
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	id, name, err := p.label()
	if err != nil {
		return nil, err
	}
	f := Field{ID: id, Name: name, Value: Null{}}
	if p.accept(tokenEqual) {
		v, err := p.annotatedValue()
		if err != nil {
			return nil, err
		}
		f.Value = v
	}
	p.accept(tokenSemi)
	if _, err := p.expect(tokenRBrace); err != nil {
		return nil, err
	}
	return Variant{Field: f}, nil
}
