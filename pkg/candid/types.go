package candid

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Type is implemented by all Candid type descriptors.
type Type interface {
	String() string
	candidTypeMarker()
}

// Primitive is a type without inner structure. Its value is the negated binary opcode.
type Primitive byte

func (Primitive) candidTypeMarker() {}

const (
	NullType Primitive = iota + 1
	BoolType
	NatType
	IntType
	Nat8Type
	Nat16Type
	Nat32Type
	Nat64Type
	Int8Type
	Int16Type
	Int32Type
	Int64Type
	Float32Type
	Float64Type
	TextType
	ReservedType
	EmptyType
	PrincipalType Primitive = 24
)

var primitiveNames = map[Primitive]string{
	NullType:      "null",
	BoolType:      "bool",
	NatType:       "nat",
	IntType:       "int",
	Nat8Type:      "nat8",
	Nat16Type:     "nat16",
	Nat32Type:     "nat32",
	Nat64Type:     "nat64",
	Int8Type:      "int8",
	Int16Type:     "int16",
	Int32Type:     "int32",
	Int64Type:     "int64",
	Float32Type:   "float32",
	Float64Type:   "float64",
	TextType:      "text",
	ReservedType:  "reserved",
	EmptyType:     "empty",
	PrincipalType: "principal",
}

var primitivesByName = func() map[string]Primitive {
	r := make(map[string]Primitive, len(primitiveNames))
	for p, n := range primitiveNames {
		r[n] = p
	}
	return r
}()

// PrimitiveFromName returns the primitive type with the given keyword.
func PrimitiveFromName(name string) (Primitive, bool) {
	p, ok := primitivesByName[name]
	return p, ok
}

// PrimitiveFromOpcode returns the primitive type for a binary type opcode.
func PrimitiveFromOpcode(op int64) (Primitive, error) {
	if op >= 0 || op < -int64(PrincipalType) {
		return 0, errors.Errorf("invalid primitive type opcode %d", op)
	}
	p := Primitive(-op)
	if _, ok := primitiveNames[p]; !ok {
		return 0, errors.Errorf("invalid primitive type opcode %d", op)
	}
	return p, nil
}

func (p Primitive) String() string {
	if n, ok := primitiveNames[p]; ok {
		return n
	}
	return fmt.Sprintf("primitive(%d)", byte(p))
}

// Opcode returns the binary type opcode of the primitive.
func (p Primitive) Opcode() int64 {
	return -int64(p)
}

// IsNumeric reports whether the primitive is one of the integer or float types.
func (p Primitive) IsNumeric() bool {
	return p >= NatType && p <= Float64Type
}

// OptType is `opt Inner`.
type OptType struct {
	Inner Type
}

func (OptType) candidTypeMarker() {}

func (t OptType) String() string {
	return "opt " + t.Inner.String()
}

// VecType is `vec Inner`.
type VecType struct {
	Inner Type
}

func (VecType) candidTypeMarker() {}

func (t VecType) String() string {
	if t.Inner == Nat8Type {
		return "blob"
	}
	return "vec " + t.Inner.String()
}

// FieldType describes a record or variant field. Name is empty if the field was declared by number.
type FieldType struct {
	ID   uint32
	Name string
	Type Type
}

func (f FieldType) label() string {
	if f.Name != "" {
		return quoteName(f.Name)
	}
	return strconv.FormatUint(uint64(f.ID), 10)
}

// RecordType is `record { ... }`. Fields are sorted by ID.
type RecordType struct {
	Fields []FieldType
}

func (RecordType) candidTypeMarker() {}

// IsTuple reports whether the record fields are unnamed and numbered from zero.
func (t RecordType) IsTuple() bool {
	return isTupleFields(t.Fields)
}

func isTupleFields(fields []FieldType) bool {
	if len(fields) == 0 {
		return false
	}
	for i, f := range fields {
		if f.Name != "" || f.ID != uint32(i) {
			return false
		}
	}
	return true
}

// Field returns the field with the given ID.
func (t RecordType) Field(id uint32) (FieldType, int, bool) {
	return findField(t.Fields, id)
}

func (t RecordType) String() string {
	if len(t.Fields) == 0 {
		return "record {}"
	}
	parts := make([]string, len(t.Fields))
	tuple := t.IsTuple()
	for i, f := range t.Fields {
		if tuple {
			parts[i] = f.Type.String()
			continue
		}
		parts[i] = f.label() + " : " + f.Type.String()
	}
	return "record { " + strings.Join(parts, "; ") + " }"
}

// VariantType is `variant { ... }`. Fields are sorted by ID.
type VariantType struct {
	Fields []FieldType
}

func (VariantType) candidTypeMarker() {}

// Field returns the field with the given ID and its position.
func (t VariantType) Field(id uint32) (FieldType, int, bool) {
	return findField(t.Fields, id)
}

func (t VariantType) String() string {
	if len(t.Fields) == 0 {
		return "variant {}"
	}
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		if f.Type == NullType {
			parts[i] = f.label()
			continue
		}
		parts[i] = f.label() + " : " + f.Type.String()
	}
	return "variant { " + strings.Join(parts, "; ") + " }"
}

func findField(fields []FieldType, id uint32) (FieldType, int, bool) {
	i := sort.Search(len(fields), func(i int) bool { return fields[i].ID >= id })
	if i < len(fields) && fields[i].ID == id {
		return fields[i], i, true
	}
	return FieldType{}, 0, false
}

func sortFields(fields []FieldType) {
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].ID < fields[j].ID })
}

// FuncMode is a method annotation.
type FuncMode byte

const (
	ModeQuery FuncMode = iota + 1
	ModeOneway
	ModeCompositeQuery
)

func (m FuncMode) String() string {
	switch m {
	case ModeQuery:
		return "query"
	case ModeOneway:
		return "oneway"
	case ModeCompositeQuery:
		return "composite_query"
	default:
		return fmt.Sprintf("mode(%d)", byte(m))
	}
}

// FuncType is `func (Args) -> (Rets) Modes`.
type FuncType struct {
	Args  []Type
	Rets  []Type
	Modes []FuncMode
}

func (FuncType) candidTypeMarker() {}

// Signature returns the function type without the leading `func` keyword.
func (t FuncType) Signature() string {
	var sb strings.Builder
	sb.WriteString(tupleString(t.Args))
	sb.WriteString(" -> ")
	sb.WriteString(tupleString(t.Rets))
	for _, m := range t.Modes {
		sb.WriteByte(' ')
		sb.WriteString(m.String())
	}
	return sb.String()
}

func (t FuncType) String() string {
	return "func " + t.Signature()
}

func tupleString(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Method is a named service method. Type is either a FuncType or a VarType referring to one.
type Method struct {
	Name string
	Type Type
}

// ServiceType is `service { ... }`. Methods are sorted by name.
type ServiceType struct {
	Methods []Method
}

func (ServiceType) candidTypeMarker() {}

// Method returns the method with the given name.
func (t ServiceType) Method(name string) (Method, bool) {
	i := sort.Search(len(t.Methods), func(i int) bool { return t.Methods[i].Name >= name })
	if i < len(t.Methods) && t.Methods[i].Name == name {
		return t.Methods[i], true
	}
	return Method{}, false
}

func (t ServiceType) String() string {
	if len(t.Methods) == 0 {
		return "service {}"
	}
	parts := make([]string, len(t.Methods))
	for i, m := range t.Methods {
		ts := m.Type.String()
		if ft, ok := m.Type.(FuncType); ok {
			ts = ft.Signature()
		}
		parts[i] = quoteName(m.Name) + " : " + ts
	}
	return "service { " + strings.Join(parts, "; ") + " }"
}

// VarType is a reference to a named type of a TypeEnv.
type VarType string

func (VarType) candidTypeMarker() {}

func (t VarType) String() string {
	return string(t)
}
