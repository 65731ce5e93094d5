package candid

import (
	"github.com/pkg/errors"
)

// InferType returns the type a value is encoded with when no type is given.
// Integer literals are int, an empty vector is `vec null` and a variant has only the selected field.
func InferType(v Value) (Type, error) {
	switch x := v.(type) {
	case Null:
		return NullType, nil
	case Bool:
		return BoolType, nil
	case Number, Int:
		return IntType, nil
	case Nat:
		return NatType, nil
	case Nat8:
		return Nat8Type, nil
	case Nat16:
		return Nat16Type, nil
	case Nat32:
		return Nat32Type, nil
	case Nat64:
		return Nat64Type, nil
	case Int8:
		return Int8Type, nil
	case Int16:
		return Int16Type, nil
	case Int32:
		return Int32Type, nil
	case Int64:
		return Int64Type, nil
	case Float32:
		return Float32Type, nil
	case Float64:
		return Float64Type, nil
	case Text:
		return TextType, nil
	case Reserved:
		return ReservedType, nil
	case Principal:
		return PrincipalType, nil
	case None:
		return OptType{Inner: NullType}, nil
	case Opt:
		inner, err := InferType(x.Value)
		if err != nil {
			return nil, err
		}
		return OptType{Inner: inner}, nil
	case Vec:
		if len(x) == 0 {
			return VecType{Inner: NullType}, nil
		}
		inner, err := InferType(x[0])
		if err != nil {
			return nil, err
		}
		return VecType{Inner: inner}, nil
	case Record:
		fields := make([]FieldType, len(x))
		for i, f := range x {
			t, err := InferType(f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = FieldType{ID: f.ID, Name: f.Name, Type: t}
		}
		sortFields(fields)
		return RecordType{Fields: fields}, nil
	case Variant:
		t, err := InferType(x.Field.Value)
		if err != nil {
			return nil, err
		}
		return VariantType{Fields: []FieldType{{ID: x.Field.ID, Name: x.Field.Name, Type: t}}}, nil
	case Service:
		return ServiceType{}, nil
	case Func:
		return FuncType{}, nil
	default:
		return nil, errors.Errorf("can't infer type of %T", v)
	}
}

// InferArgs infers the types of the arguments and converts the values to them.
func InferArgs(args Args) (Args, []Type, error) {
	types := make([]Type, len(args))
	for i, v := range args {
		t, err := InferType(v)
		if err != nil {
			return nil, nil, err
		}
		types[i] = t
	}
	typed, err := AnnotateArgs(args, types, nil)
	if err != nil {
		return nil, nil, err
	}
	return typed, types, nil
}
