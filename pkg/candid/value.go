package candid

import (
	"math/big"
)

// Value is a single Candid value.
type Value interface {
	String() string
	candidValueMarker()
}

// Args is an ordered list of values, the arguments or results of a method call.
type Args []Value

type Null struct{}

type Bool bool

// Number is an integer literal whose type is not known yet. It holds a canonical decimal
// representation with an optional minus sign.
type Number string

type Nat struct {
	V *big.Int
}

type Int struct {
	V *big.Int
}

type (
	Nat8    uint8
	Nat16   uint16
	Nat32   uint32
	Nat64   uint64
	Int8    int8
	Int16   int16
	Int32   int32
	Int64   int64
	Float32 float32
	Float64 float64
	Text    string
)

type Reserved struct{}

// None is an absent optional value.
type None struct{}

type Opt struct {
	Value Value
}

type Vec []Value

// Field is a record or variant field. Name is empty when the label is not known.
type Field struct {
	ID    uint32
	Name  string
	Value Value
}

type Record []Field

// Variant holds the selected field. Index is the field position in the variant type,
// it is set when the value was checked against or decoded with a type.
type Variant struct {
	Field Field
	Index uint64
}

type Principal []byte

// Service is a reference to a service.
type Service struct {
	Principal Principal
}

// Func is a reference to a service method.
type Func struct {
	Principal Principal
	Method    string
}

func (Null) candidValueMarker()      {}
func (Bool) candidValueMarker()      {}
func (Number) candidValueMarker()    {}
func (Nat) candidValueMarker()       {}
func (Int) candidValueMarker()       {}
func (Nat8) candidValueMarker()      {}
func (Nat16) candidValueMarker()     {}
func (Nat32) candidValueMarker()     {}
func (Nat64) candidValueMarker()     {}
func (Int8) candidValueMarker()      {}
func (Int16) candidValueMarker()     {}
func (Int32) candidValueMarker()     {}
func (Int64) candidValueMarker()     {}
func (Float32) candidValueMarker()   {}
func (Float64) candidValueMarker()   {}
func (Text) candidValueMarker()      {}
func (Reserved) candidValueMarker()  {}
func (None) candidValueMarker()      {}
func (Opt) candidValueMarker()       {}
func (Vec) candidValueMarker()       {}
func (Record) candidValueMarker()    {}
func (Variant) candidValueMarker()   {}
func (Principal) candidValueMarker() {}
func (Service) candidValueMarker()   {}
func (Func) candidValueMarker()      {}

func NewNat(v uint64) Nat {
	return Nat{V: new(big.Int).SetUint64(v)}
}

func NewInt(v int64) Int {
	return Int{V: big.NewInt(v)}
}

// Blob builds a `vec nat8` value.
func Blob(b []byte) Vec {
	r := make(Vec, len(b))
	for i, x := range b {
		r[i] = Nat8(x)
	}
	return r
}

// Bytes returns the content of a `vec nat8` value.
func (v Vec) Bytes() ([]byte, bool) {
	r := make([]byte, len(v))
	for i, x := range v {
		b, ok := x.(Nat8)
		if !ok {
			return nil, false
		}
		r[i] = byte(b)
	}
	return r, true
}

// Field returns the record field with the given ID.
func (r Record) Field(id uint32) (Field, bool) {
	for _, f := range r {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByName returns the record field labeled with the given name.
func (r Record) FieldByName(name string) (Field, bool) {
	return r.Field(Hash(name))
}

func (v Null) String() string      { return renderFlat(v) }
func (v Bool) String() string      { return renderFlat(v) }
func (v Number) String() string    { return renderFlat(v) }
func (v Nat) String() string       { return renderFlat(v) }
func (v Int) String() string       { return renderFlat(v) }
func (v Nat8) String() string      { return renderFlat(v) }
func (v Nat16) String() string     { return renderFlat(v) }
func (v Nat32) String() string     { return renderFlat(v) }
func (v Nat64) String() string     { return renderFlat(v) }
func (v Int8) String() string      { return renderFlat(v) }
func (v Int16) String() string     { return renderFlat(v) }
func (v Int32) String() string     { return renderFlat(v) }
func (v Int64) String() string     { return renderFlat(v) }
func (v Float32) String() string   { return renderFlat(v) }
func (v Float64) String() string   { return renderFlat(v) }
func (v Text) String() string      { return renderFlat(v) }
func (v Reserved) String() string  { return renderFlat(v) }
func (v None) String() string      { return renderFlat(v) }
func (v Opt) String() string       { return renderFlat(v) }
func (v Vec) String() string       { return renderFlat(v) }
func (v Record) String() string    { return renderFlat(v) }
func (v Variant) String() string   { return renderFlat(v) }
func (v Principal) String() string { return principalToText(v) }
func (v Service) String() string   { return renderFlat(v) }
func (v Func) String() string      { return renderFlat(v) }
