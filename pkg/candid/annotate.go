package candid

import (
	"math/big"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"golang.org/x/exp/constraints"
)

// AnnotateArgs checks the values against the types and converts them to the typed representation.
// Untyped number literals get their concrete numeric type, optional record fields are filled in
// and variant indexes are set.
func AnnotateArgs(args Args, types []Type, env *TypeEnv) (Args, error) {
	if len(args) != len(types) {
		return nil, newTypeError("wrong number of arguments: expected %d, got %d", len(types), len(args))
	}
	r := make(Args, len(args))
	for i := range args {
		v, err := Annotate(args[i], types[i], env)
		if err != nil {
			return nil, newTypeError("argument %d: %v", i+1, err)
		}
		r[i] = v
	}
	return r, nil
}

// Annotate checks a single value against the type, see AnnotateArgs.
func Annotate(v Value, t Type, env *TypeEnv) (Value, error) {
	rt, err := env.Trace(t)
	if err != nil {
		return nil, newTypeError("%v", err)
	}
	switch tt := rt.(type) {
	case Primitive:
		return annotatePrimitive(v, tt)
	case OptType:
		return annotateOpt(v, tt, env)
	case VecType:
		vec, ok := v.(Vec)
		if !ok {
			return nil, mismatch(v, t)
		}
		r := make(Vec, len(vec))
		for i, x := range vec {
			a, err := Annotate(x, tt.Inner, env)
			if err != nil {
				return nil, err
			}
			r[i] = a
		}
		return r, nil
	case RecordType:
		rec, ok := v.(Record)
		if !ok {
			return nil, mismatch(v, t)
		}
		return annotateRecord(rec, tt, env)
	case VariantType:
		vr, ok := v.(Variant)
		if !ok {
			return nil, mismatch(v, t)
		}
		f, idx, ok := tt.Field(vr.Field.ID)
		if !ok {
			return nil, newTypeError("variant field %d not found in type %s", vr.Field.ID, t)
		}
		a, err := Annotate(vr.Field.Value, f.Type, env)
		if err != nil {
			return nil, newTypeError("variant field %s: %v", f.label(), err)
		}
		return Variant{Field: Field{ID: f.ID, Name: f.Name, Value: a}, Index: uint64(idx)}, nil
	case FuncType:
		if fv, ok := v.(Func); ok {
			return fv, nil
		}
		return nil, mismatch(v, t)
	case ServiceType:
		if sv, ok := v.(Service); ok {
			return sv, nil
		}
		return nil, mismatch(v, t)
	default:
		return nil, newTypeError("unsupported type %s", t)
	}
}

func mismatch(v Value, t Type) error {
	return newTypeError("type mismatch: %s cannot be of type %s", v, t)
}

func annotateOpt(v Value, t OptType, env *TypeEnv) (Value, error) {
	switch x := v.(type) {
	case None:
		return x, nil
	case Null:
		return None{}, nil
	case Opt:
		inner, err := Annotate(x.Value, t.Inner, env)
		if err != nil {
			return nil, err
		}
		return Opt{Value: inner}, nil
	default:
		// A bare value is accepted where an optional one is expected.
		inner, err := Annotate(v, t.Inner, env)
		if err != nil {
			return nil, mismatch(v, t)
		}
		return Opt{Value: inner}, nil
	}
}

func annotateRecord(rec Record, t RecordType, env *TypeEnv) (Value, error) {
	for _, f := range rec {
		if _, _, ok := t.Field(f.ID); !ok {
			return nil, newTypeError("record field %s not found in type %s", fieldLabel(f), t)
		}
	}
	r := make(Record, 0, len(t.Fields))
	for _, ft := range t.Fields {
		f, ok := rec.Field(ft.ID)
		if !ok {
			dv, ok := defaultValue(ft.Type, env)
			if !ok {
				return nil, newTypeError("record field %s is missing", ft.label())
			}
			r = append(r, Field{ID: ft.ID, Name: ft.Name, Value: dv})
			continue
		}
		a, err := Annotate(f.Value, ft.Type, env)
		if err != nil {
			return nil, newTypeError("record field %s: %v", ft.label(), err)
		}
		r = append(r, Field{ID: ft.ID, Name: ft.Name, Value: a})
	}
	return r, nil
}

// defaultValue returns the value of an omitted record field.
func defaultValue(t Type, env *TypeEnv) (Value, bool) {
	rt, err := env.Trace(t)
	if err != nil {
		return nil, false
	}
	switch tt := rt.(type) {
	case OptType:
		return None{}, true
	case Primitive:
		switch tt {
		case NullType:
			return Null{}, true
		case ReservedType:
			return Reserved{}, true
		}
	}
	return nil, false
}

func fieldLabel(f Field) string {
	if f.Name != "" {
		return quoteName(f.Name)
	}
	return strconv.FormatUint(uint64(f.ID), 10)
}

func annotatePrimitive(v Value, p Primitive) (Value, error) {
	switch p {
	case ReservedType:
		return Reserved{}, nil
	case EmptyType:
		return nil, newTypeError("no value can be of type empty")
	case NullType:
		switch v.(type) {
		case Null, None:
			return Null{}, nil
		}
	case BoolType:
		if b, ok := v.(Bool); ok {
			return b, nil
		}
	case TextType:
		if s, ok := v.(Text); ok {
			return s, nil
		}
	case PrincipalType:
		if pr, ok := v.(Principal); ok {
			return pr, nil
		}
	default:
		if p.IsNumeric() {
			return annotateNumber(v, p)
		}
	}
	return nil, mismatch(v, p)
}

// widening lists the numeric types a typed integer can be converted to without loss.
var widening = map[Primitive][]Primitive{
	NatType:   {IntType},
	Nat8Type:  {Nat16Type, Nat32Type, Nat64Type, NatType, Int16Type, Int32Type, Int64Type, IntType},
	Nat16Type: {Nat32Type, Nat64Type, NatType, Int32Type, Int64Type, IntType},
	Nat32Type: {Nat64Type, NatType, Int64Type, IntType},
	Nat64Type: {NatType, IntType},
	Int8Type:  {Int16Type, Int32Type, Int64Type, IntType},
	Int16Type: {Int32Type, Int64Type, IntType},
	Int32Type: {Int64Type, IntType},
	Int64Type: {IntType},
}

func canWiden(from, to Primitive) bool {
	if from == to {
		return true
	}
	for _, p := range widening[from] {
		if p == to {
			return true
		}
	}
	return false
}

func annotateNumber(v Value, p Primitive) (Value, error) {
	switch x := v.(type) {
	case Number:
		if p == Float32Type || p == Float64Type {
			f, err := strconv.ParseFloat(string(x), 64)
			if err != nil {
				return nil, mismatch(v, p)
			}
			return floatValue(f, p), nil
		}
		n, ok := new(big.Int).SetString(string(x), 10)
		if !ok {
			return nil, mismatch(v, p)
		}
		r, err := IntegerValue(n, p)
		if err != nil {
			return nil, newTypeError("number %s: %v", string(x), err)
		}
		return r, nil
	case Float32:
		if p == Float32Type || p == Float64Type {
			return floatValue(float64(x), p), nil
		}
	case Float64:
		// Float literals are parsed as float64, so narrowing to float32 is allowed here.
		if p == Float32Type || p == Float64Type {
			return floatValue(float64(x), p), nil
		}
	default:
		from, n, ok := integerOf(v)
		if !ok || !canWiden(from, p) {
			return nil, mismatch(v, p)
		}
		return IntegerValue(n, p)
	}
	return nil, mismatch(v, p)
}

func floatValue(f float64, p Primitive) Value {
	if p == Float32Type {
		return Float32(float32(f))
	}
	return Float64(f)
}

func bigFromInteger[T constraints.Integer](v T) *big.Int {
	if v < 0 {
		return big.NewInt(int64(v))
	}
	return new(big.Int).SetUint64(uint64(v))
}

// integerOf returns the type and the value of a typed integer.
func integerOf(v Value) (Primitive, *big.Int, bool) {
	switch x := v.(type) {
	case Nat:
		return NatType, x.V, true
	case Int:
		return IntType, x.V, true
	case Nat8:
		return Nat8Type, bigFromInteger(x), true
	case Nat16:
		return Nat16Type, bigFromInteger(x), true
	case Nat32:
		return Nat32Type, bigFromInteger(x), true
	case Nat64:
		return Nat64Type, bigFromInteger(x), true
	case Int8:
		return Int8Type, bigFromInteger(x), true
	case Int16:
		return Int16Type, bigFromInteger(x), true
	case Int32:
		return Int32Type, bigFromInteger(x), true
	case Int64:
		return Int64Type, bigFromInteger(x), true
	default:
		return 0, nil, false
	}
}

// IntegerValue builds the value of the integer type p, failing if n is out of the type range.
func IntegerValue(n *big.Int, p Primitive) (Value, error) {
	switch p {
	case NatType:
		if n.Sign() < 0 {
			return nil, newTypeError("negative value for type nat")
		}
		return Nat{V: new(big.Int).Set(n)}, nil
	case IntType:
		return Int{V: new(big.Int).Set(n)}, nil
	}
	switch p {
	case Nat64Type:
		if n.IsUint64() {
			return Nat64(n.Uint64()), nil
		}
		return nil, newTypeError("value out of range for type %s", p)
	case Int64Type:
		if n.IsInt64() {
			return Int64(n.Int64()), nil
		}
		return nil, newTypeError("value out of range for type %s", p)
	}
	if !n.IsInt64() {
		return nil, newTypeError("value out of range for type %s", p)
	}
	var (
		x   = n.Int64()
		r   Value
		err error
	)
	switch p {
	case Nat8Type:
		var c uint8
		c, err = safecast.Convert[uint8](x)
		r = Nat8(c)
	case Nat16Type:
		var c uint16
		c, err = safecast.Convert[uint16](x)
		r = Nat16(c)
	case Nat32Type:
		var c uint32
		c, err = safecast.Convert[uint32](x)
		r = Nat32(c)
	case Int8Type:
		var c int8
		c, err = safecast.Convert[int8](x)
		r = Int8(c)
	case Int16Type:
		var c int16
		c, err = safecast.Convert[int16](x)
		r = Int16(c)
	case Int32Type:
		var c int32
		c, err = safecast.Convert[int32](x)
		r = Int32(c)
	default:
		return nil, newTypeError("type %s is not an integer type", p)
	}
	if err != nil {
		return nil, newTypeError("value out of range for type %s", p)
	}
	return r, nil
}
