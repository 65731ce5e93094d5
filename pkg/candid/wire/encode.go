package wire

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/icpkit/idlbridge/pkg/candid"
	"github.com/icpkit/idlbridge/pkg/libs/serializer"
)

// Magic is the prefix of every serialized message.
var Magic = []byte("DIDL")

// Encode serializes the arguments with the types inferred from the values.
func Encode(args candid.Args) ([]byte, error) {
	typed, types, err := candid.InferArgs(args)
	if err != nil {
		return nil, errors.Wrap(err, "failed to infer argument types")
	}
	return encode(typed, types, nil)
}

// EncodeWithTypes checks the arguments against the types and serializes them.
// Type names are resolved in env.
func EncodeWithTypes(args candid.Args, types []candid.Type, env *candid.TypeEnv) ([]byte, error) {
	typed, err := candid.AnnotateArgs(args, types, env)
	if err != nil {
		return nil, err
	}
	return encode(typed, types, env)
}

func encode(args candid.Args, types []candid.Type, env *candid.TypeEnv) ([]byte, error) {
	tt := newTypeTable(env)
	refs, err := tt.refs(types)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build type table")
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	s := serializer.New(buf)
	if err := s.Bytes(Magic); err != nil {
		return nil, err
	}
	if err := tt.write(s); err != nil {
		return nil, err
	}
	if err := writeRefs(s, refs); err != nil {
		return nil, err
	}
	e := &encoder{s: s, env: env}
	for i, v := range args {
		if err := e.value(v, types[i]); err != nil {
			return nil, errors.Wrapf(err, "failed to serialize argument %d", i+1)
		}
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

type encoder struct {
	s     *serializer.Serializer
	env   *candid.TypeEnv
	depth int
}

func unexpected(v candid.Value, t candid.Type) error {
	return errors.Errorf("unexpected value %s of type %s", v, t)
}

func (e *encoder) value(v candid.Value, t candid.Type) error {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > MaxDepth {
		return errors.Errorf("value nesting exceeds %d levels", MaxDepth)
	}
	rt, err := e.env.Trace(t)
	if err != nil {
		return err
	}
	switch ct := rt.(type) {
	case candid.Primitive:
		return e.primitive(v, ct)
	case candid.OptType:
		switch x := v.(type) {
		case candid.None:
			return e.s.Byte(0)
		case candid.Opt:
			if err := e.s.Byte(1); err != nil {
				return err
			}
			return e.value(x.Value, ct.Inner)
		}
	case candid.VecType:
		if vec, ok := v.(candid.Vec); ok {
			if err := e.s.Uleb128(uint64(len(vec))); err != nil {
				return err
			}
			for _, x := range vec {
				if err := e.value(x, ct.Inner); err != nil {
					return err
				}
			}
			return nil
		}
	case candid.RecordType:
		if rec, ok := v.(candid.Record); ok {
			for _, ft := range ct.Fields {
				f, ok := rec.Field(ft.ID)
				if !ok {
					return errors.Errorf("record field %d is missing", ft.ID)
				}
				if err := e.value(f.Value, ft.Type); err != nil {
					return err
				}
			}
			return nil
		}
	case candid.VariantType:
		if vr, ok := v.(candid.Variant); ok {
			ft, idx, ok := ct.Field(vr.Field.ID)
			if !ok {
				return errors.Errorf("variant field %d not found", vr.Field.ID)
			}
			if err := e.s.Uleb128(uint64(idx)); err != nil {
				return err
			}
			return e.value(vr.Field.Value, ft.Type)
		}
	case candid.FuncType:
		if fv, ok := v.(candid.Func); ok {
			if err := e.s.Byte(1); err != nil {
				return err
			}
			if err := e.principal(fv.Principal); err != nil {
				return err
			}
			return e.s.StringWithUlebLen(fv.Method)
		}
	case candid.ServiceType:
		if sv, ok := v.(candid.Service); ok {
			return e.principal(sv.Principal)
		}
	}
	return unexpected(v, t)
}

func (e *encoder) principal(p candid.Principal) error {
	if err := e.s.Byte(1); err != nil {
		return err
	}
	return e.s.BytesWithUlebLen(p)
}

func (e *encoder) primitive(v candid.Value, p candid.Primitive) error {
	switch x := v.(type) {
	case candid.Null:
		if p == candid.NullType {
			return nil
		}
	case candid.Reserved:
		if p == candid.ReservedType {
			return nil
		}
	case candid.Bool:
		if p == candid.BoolType {
			return e.s.Bool(bool(x))
		}
	case candid.Nat:
		if p == candid.NatType {
			return e.s.BigUleb128(x.V)
		}
	case candid.Int:
		if p == candid.IntType {
			return e.s.BigSleb128(x.V)
		}
	case candid.Nat8:
		if p == candid.Nat8Type {
			return e.s.Byte(byte(x))
		}
	case candid.Nat16:
		if p == candid.Nat16Type {
			return e.s.Uint16(uint16(x))
		}
	case candid.Nat32:
		if p == candid.Nat32Type {
			return e.s.Uint32(uint32(x))
		}
	case candid.Nat64:
		if p == candid.Nat64Type {
			return e.s.Uint64(uint64(x))
		}
	case candid.Int8:
		if p == candid.Int8Type {
			return e.s.Byte(byte(x))
		}
	case candid.Int16:
		if p == candid.Int16Type {
			return e.s.Uint16(uint16(x))
		}
	case candid.Int32:
		if p == candid.Int32Type {
			return e.s.Uint32(uint32(x))
		}
	case candid.Int64:
		if p == candid.Int64Type {
			return e.s.Uint64(uint64(x))
		}
	case candid.Float32:
		if p == candid.Float32Type {
			return e.s.Float32(float32(x))
		}
	case candid.Float64:
		if p == candid.Float64Type {
			return e.s.Float64(float64(x))
		}
	case candid.Text:
		if p == candid.TextType {
			if !utf8.ValidString(string(x)) {
				return errors.New("text is not valid UTF-8")
			}
			return e.s.StringWithUlebLen(string(x))
		}
	case candid.Principal:
		if p == candid.PrincipalType {
			return e.principal(x)
		}
	}
	return unexpected(v, p)
}
