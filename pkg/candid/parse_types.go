package candid

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// Program is a parsed interface description: named type definitions and an optional service.
type Program struct {
	Types []TypeDefinition
	Actor *ActorDefinition
}

// TypeDefinition is `type Name = Type;`.
type TypeDefinition struct {
	Name string
	Type Type
	Pos  Position
}

// ActorDefinition is the main service of an interface description. Init holds the arguments
// of a service class. Type is a ServiceType or a VarType.
type ActorDefinition struct {
	Name string
	Init []Type
	Type Type
	Pos  Position
}

// ParseProgram parses the textual interface description src. The source name is used in errors.
func ParseProgram(source, src string) (*Program, error) {
	p, err := newParser(source, src)
	if err != nil {
		return nil, err
	}
	return p.program()
}

// ParseType parses a single data type.
func ParseType(source, src string) (Type, error) {
	p, err := newParser(source, src)
	if err != nil {
		return nil, err
	}
	t, err := p.dataType()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *parser) program() (*Program, error) {
	prog := new(Program)
	for {
		t := p.peek()
		switch {
		case t.kind == tokenEOF:
			return prog, nil
		case p.isKeyword("type"):
			def, err := p.typeDefinition()
			if err != nil {
				return nil, err
			}
			prog.Types = append(prog.Types, def)
		case p.isKeyword("import"):
			return nil, p.errorAt(t, "imports are not supported")
		case p.isKeyword("service"):
			actor, err := p.actorDefinition()
			if err != nil {
				return nil, err
			}
			prog.Actor = actor
			if err := p.expectEOF(); err != nil {
				return nil, err
			}
			return prog, nil
		default:
			return nil, p.errorAt(t, "expected type definition or service, found %s", t.describe())
		}
	}
}

func (p *parser) typeDefinition() (TypeDefinition, error) {
	pos := p.next().pos // type
	name, err := p.typeName()
	if err != nil {
		return TypeDefinition{}, err
	}
	if _, err := p.expect(tokenEqual); err != nil {
		return TypeDefinition{}, err
	}
	t, err := p.dataType()
	if err != nil {
		return TypeDefinition{}, err
	}
	if _, err := p.expect(tokenSemi); err != nil {
		return TypeDefinition{}, err
	}
	return TypeDefinition{Name: name, Type: t, Pos: pos}, nil
}

func (p *parser) typeName() (string, error) {
	t, err := p.expect(tokenIdent)
	if err != nil {
		return "", err
	}
	if _, kw := keywords[t.value]; kw {
		return "", p.errorAt(t, "keyword %q can't be used as a type name", t.value)
	}
	return t.value, nil
}

func (p *parser) actorDefinition() (*ActorDefinition, error) {
	actor := &ActorDefinition{Pos: p.next().pos} // service
	if p.is(tokenIdent) {
		name, err := p.typeName()
		if err != nil {
			return nil, err
		}
		actor.Name = name
	}
	if _, err := p.expect(tokenColon); err != nil {
		return nil, err
	}
	if p.is(tokenLParen) {
		init, err := p.tupleType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenArrow); err != nil {
			return nil, err
		}
		actor.Init = init
	}
	if p.is(tokenLBrace) {
		st, err := p.actorType()
		if err != nil {
			return nil, err
		}
		actor.Type = st
	} else {
		name, err := p.typeName()
		if err != nil {
			return nil, err
		}
		actor.Type = VarType(name)
	}
	p.accept(tokenSemi)
	return actor, nil
}

func (p *parser) dataType() (Type, error) {
	t := p.peek()
	if t.kind != tokenIdent {
		return nil, p.errorAt(t, "expected type, found %s", t.describe())
	}
	p.next()
	switch t.value {
	case "opt":
		inner, err := p.dataType()
		if err != nil {
			return nil, err
		}
		return OptType{Inner: inner}, nil
	case "vec":
		inner, err := p.dataType()
		if err != nil {
			return nil, err
		}
		return VecType{Inner: inner}, nil
	case "blob":
		return VecType{Inner: Nat8Type}, nil
	case "record":
		fields, err := p.fieldTypes(true)
		if err != nil {
			return nil, err
		}
		return RecordType{Fields: fields}, nil
	case "variant":
		fields, err := p.fieldTypes(false)
		if err != nil {
			return nil, err
		}
		return VariantType{Fields: fields}, nil
	case "func":
		return p.funcType()
	case "service":
		return p.actorType()
	}
	if prim, ok := PrimitiveFromName(t.value); ok {
		return prim, nil
	}
	if _, kw := keywords[t.value]; kw {
		return nil, p.errorAt(t, "unexpected keyword %q, expected type", t.value)
	}
	return VarType(t.value), nil
}

func (p *parser) isLabel() bool {
	switch p.peek().kind {
	case tokenIdent, tokenNumber, tokenText:
		return true
	default:
		return false
	}
}

// label parses a field label: a name, a quoted name or a field number.
func (p *parser) label() (uint32, string, error) {
	t := p.next()
	switch t.kind {
	case tokenIdent, tokenText:
		return Hash(t.value), t.value, nil
	case tokenNumber:
		n, ok := parseInteger(t.value)
		if !ok || n.Sign() < 0 || !n.IsUint64() || n.Uint64() > math.MaxUint32 {
			return 0, "", p.errorAt(t, "invalid field id %q", t.value)
		}
		return uint32(n.Uint64()), "", nil
	default:
		return 0, "", p.errorAt(t, "expected field label, found %s", t.describe())
	}
}

func (p *parser) fieldTypes(record bool) ([]FieldType, error) {
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	var (
		fields []FieldType
		nextID uint32
	)
	err := p.sequence(tokenSemi, tokenRBrace, func() error {
		f := FieldType{ID: nextID}
		switch {
		case p.isLabel() && p.peekN(1).kind == tokenColon:
			id, name, err := p.label()
			if err != nil {
				return err
			}
			p.next() // colon
			t, err := p.dataType()
			if err != nil {
				return err
			}
			f = FieldType{ID: id, Name: name, Type: t}
		case record:
			t, err := p.dataType()
			if err != nil {
				return err
			}
			f.Type = t
		default:
			id, name, err := p.label()
			if err != nil {
				return err
			}
			f = FieldType{ID: id, Name: name, Type: NullType}
		}
		fields = append(fields, f)
		nextID = f.ID + 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortFields(fields)
	return fields, nil
}

func (p *parser) tupleType() ([]Type, error) {
	if _, err := p.expect(tokenLParen); err != nil {
		return nil, err
	}
	types := make([]Type, 0)
	err := p.sequence(tokenComma, tokenRParen, func() error {
		if k := p.peek().kind; (k == tokenIdent || k == tokenText) && p.peekN(1).kind == tokenColon {
			p.next()
			p.next()
		}
		t, err := p.dataType()
		if err != nil {
			return err
		}
		types = append(types, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (p *parser) funcType() (FuncType, error) {
	args, err := p.tupleType()
	if err != nil {
		return FuncType{}, err
	}
	if _, err := p.expect(tokenArrow); err != nil {
		return FuncType{}, err
	}
	rets, err := p.tupleType()
	if err != nil {
		return FuncType{}, err
	}
	ft := FuncType{Args: args, Rets: rets}
	for {
		switch {
		case p.isKeyword("query"):
			ft.Modes = append(ft.Modes, ModeQuery)
		case p.isKeyword("oneway"):
			ft.Modes = append(ft.Modes, ModeOneway)
		case p.isKeyword("composite_query"):
			ft.Modes = append(ft.Modes, ModeCompositeQuery)
		default:
			return ft, nil
		}
		p.next()
	}
}

func (p *parser) actorType() (ServiceType, error) {
	if _, err := p.expect(tokenLBrace); err != nil {
		return ServiceType{}, err
	}
	var methods []Method
	err := p.sequence(tokenSemi, tokenRBrace, func() error {
		t := p.next()
		if t.kind != tokenIdent && t.kind != tokenText {
			return p.errorAt(t, "expected method name, found %s", t.describe())
		}
		if _, err := p.expect(tokenColon); err != nil {
			return err
		}
		var (
			mt  Type
			err error
		)
		if p.is(tokenLParen) {
			mt, err = p.funcType()
		} else {
			mt, err = p.dataType()
		}
		if err != nil {
			return err
		}
		methods = append(methods, Method{Name: t.value, Type: mt})
		return nil
	})
	if err != nil {
		return ServiceType{}, err
	}
	sort.SliceStable(methods, func(i, j int) bool { return methods[i].Name < methods[j].Name })
	return ServiceType{Methods: methods}, nil
}

// parseInteger parses a decimal or hexadecimal integer literal with optional sign and underscores.
func parseInteger(s string) (*big.Int, bool) {
	s = strings.ReplaceAll(s, "_", "")
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	if s == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, false
	}
	if neg {
		n.Neg(n)
	}
	return n, true
}
