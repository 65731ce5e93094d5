package wire

import (
	"bytes"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/icpkit/idlbridge/pkg/candid"
	"github.com/icpkit/idlbridge/pkg/libs/deserializer"
)

const (
	// MaxDepth limits the nesting of encoded and decoded values.
	MaxDepth = 256
	// maxZeroSizedElements bounds vectors of elements that take no bytes, e.g. `vec null`.
	maxZeroSizedElements = 1 << 20
)

// message is a decoded message: the values with their wire types. Types refer to the
// entries of the type table which are bound in env.
type message struct {
	env   *candid.TypeEnv
	types []candid.Type
	args  candid.Args
}

// Decode deserializes a message using only the types it carries. Record and variant
// fields of the result have no names.
func Decode(blob []byte) (candid.Args, error) {
	m, err := decodeMessage(blob)
	if err != nil {
		return nil, err
	}
	return m.args, nil
}

// DecodeWithTypes deserializes a message and converts its values to the expected types,
// which are resolved in env.
func DecodeWithTypes(blob []byte, types []candid.Type, env *candid.TypeEnv) (candid.Args, error) {
	m, err := decodeMessage(blob)
	if err != nil {
		return nil, err
	}
	c := &coercer{wire: m.env, expected: env}
	return c.args(m.args, m.types, types)
}

func decodeMessage(blob []byte) (*message, error) {
	if !bytes.HasPrefix(blob, Magic) {
		return nil, errors.New("invalid message: missing DIDL magic number")
	}
	d := &decoder{d: deserializer.NewDeserializer(blob[len(Magic):])}
	if err := d.table(); err != nil {
		return nil, errors.Wrap(err, "invalid type table")
	}
	types, err := d.argTypes()
	if err != nil {
		return nil, errors.Wrap(err, "invalid argument types")
	}
	args := make(candid.Args, len(types))
	for i, t := range types {
		v, err := d.value(t)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode argument %d", i+1)
		}
		args[i] = v
	}
	if n := d.d.Len(); n > 0 {
		return nil, errors.Errorf("%d unexpected trailing bytes", n)
	}
	return &message{env: d.env, types: types, args: args}, nil
}

type decoder struct {
	d     *deserializer.Deserializer
	env   *candid.TypeEnv
	size  int
	depth int
}

func tableName(i int) string {
	return fmt.Sprintf("table%d", i)
}

func (d *decoder) length() (int, error) {
	n, err := d.d.Uleb128()
	if err != nil {
		return 0, err
	}
	if n > uint64(d.d.Len()) {
		return 0, errors.Errorf("length %d exceeds the message size", n)
	}
	return int(n), nil
}

func (d *decoder) typeRef() (candid.Type, error) {
	ref, err := d.d.Sleb128()
	if err != nil {
		return nil, err
	}
	if ref >= 0 {
		if ref >= int64(d.size) {
			return nil, errors.Errorf("type index %d out of range", ref)
		}
		return candid.VarType(tableName(int(ref))), nil
	}
	return candid.PrimitiveFromOpcode(ref)
}

func (d *decoder) typeRefs() ([]candid.Type, error) {
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	types := make([]candid.Type, n)
	for i := range types {
		if types[i], err = d.typeRef(); err != nil {
			return nil, err
		}
	}
	return types, nil
}

func (d *decoder) table() error {
	n, err := d.length()
	if err != nil {
		return err
	}
	d.size = n
	d.env = candid.NewTypeEnv()
	for i := 0; i < n; i++ {
		t, err := d.entry()
		if err != nil {
			return errors.Wrapf(err, "entry %d", i)
		}
		if err := d.env.Define(tableName(i), t); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		t, _ := d.env.Find(tableName(i))
		st, ok := t.(candid.ServiceType)
		if !ok {
			continue
		}
		for _, m := range st.Methods {
			if _, err := d.env.AsFunc(m.Type); err != nil {
				return errors.Wrapf(err, "entry %d: method %q", i, m.Name)
			}
		}
	}
	return nil
}

func (d *decoder) entry() (candid.Type, error) {
	op, err := d.d.Sleb128()
	if err != nil {
		return nil, err
	}
	switch op {
	case opOpt:
		inner, err := d.typeRef()
		if err != nil {
			return nil, err
		}
		return candid.OptType{Inner: inner}, nil
	case opVec:
		inner, err := d.typeRef()
		if err != nil {
			return nil, err
		}
		return candid.VecType{Inner: inner}, nil
	case opRecord:
		fields, err := d.fields()
		if err != nil {
			return nil, err
		}
		return candid.RecordType{Fields: fields}, nil
	case opVariant:
		fields, err := d.fields()
		if err != nil {
			return nil, err
		}
		return candid.VariantType{Fields: fields}, nil
	case opFunc:
		return d.function()
	case opService:
		return d.service()
	default:
		return nil, errors.Errorf("invalid type opcode %d", op)
	}
}

func (d *decoder) fields() ([]candid.FieldType, error) {
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	fields := make([]candid.FieldType, n)
	for i := range fields {
		id, err := d.d.Uleb128()
		if err != nil {
			return nil, err
		}
		if id > math.MaxUint32 {
			return nil, errors.Errorf("field id %d out of range", id)
		}
		if i > 0 && uint32(id) <= fields[i-1].ID {
			return nil, errors.Errorf("field id %d is not in increasing order", id)
		}
		t, err := d.typeRef()
		if err != nil {
			return nil, err
		}
		fields[i] = candid.FieldType{ID: uint32(id), Type: t}
	}
	return fields, nil
}

func (d *decoder) function() (candid.Type, error) {
	args, err := d.typeRefs()
	if err != nil {
		return nil, err
	}
	rets, err := d.typeRefs()
	if err != nil {
		return nil, err
	}
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	ft := candid.FuncType{Args: args, Rets: rets}
	for i := 0; i < n; i++ {
		b, err := d.d.Byte()
		if err != nil {
			return nil, err
		}
		switch b {
		case 1:
			ft.Modes = append(ft.Modes, candid.ModeQuery)
		case 2:
			ft.Modes = append(ft.Modes, candid.ModeOneway)
		case 3:
			ft.Modes = append(ft.Modes, candid.ModeCompositeQuery)
		default:
			return nil, errors.Errorf("invalid function annotation %d", b)
		}
	}
	return ft, nil
}

func (d *decoder) service() (candid.Type, error) {
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	methods := make([]candid.Method, n)
	for i := range methods {
		name, err := d.text()
		if err != nil {
			return nil, err
		}
		if i > 0 && name <= methods[i-1].Name {
			return nil, errors.Errorf("method %q is not in increasing order", name)
		}
		t, err := d.typeRef()
		if err != nil {
			return nil, err
		}
		methods[i] = candid.Method{Name: name, Type: t}
	}
	return candid.ServiceType{Methods: methods}, nil
}

func (d *decoder) argTypes() ([]candid.Type, error) {
	return d.typeRefs()
}

func (d *decoder) text() (string, error) {
	b, err := d.d.BytesWithUlebLen()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("text is not valid UTF-8")
	}
	return string(b), nil
}

func (d *decoder) principal() (candid.Principal, error) {
	flag, err := d.d.Byte()
	if err != nil {
		return nil, err
	}
	if flag != 1 {
		return nil, errors.Errorf("unsupported opaque reference %d", flag)
	}
	b, err := d.d.BytesWithUlebLen()
	if err != nil {
		return nil, err
	}
	if len(b) > candid.MaxPrincipalLength {
		return nil, errors.Errorf("principal length %d exceeds %d bytes", len(b), candid.MaxPrincipalLength)
	}
	return candid.Principal(bytes.Clone(b)), nil
}

// zeroSized reports whether values of the type may be encoded with no bytes.
func (d *decoder) zeroSized(t candid.Type, seen map[candid.VarType]bool) bool {
	if v, ok := t.(candid.VarType); ok {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	rt, err := d.env.Trace(t)
	if err != nil {
		return false
	}
	switch ct := rt.(type) {
	case candid.Primitive:
		return ct == candid.NullType || ct == candid.ReservedType
	case candid.RecordType:
		for _, f := range ct.Fields {
			if !d.zeroSized(f.Type, seen) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (d *decoder) value(t candid.Type) (candid.Value, error) {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > MaxDepth {
		return nil, errors.Errorf("value nesting exceeds %d levels", MaxDepth)
	}
	rt, err := d.env.Trace(t)
	if err != nil {
		return nil, err
	}
	switch ct := rt.(type) {
	case candid.Primitive:
		return d.primitive(ct)
	case candid.OptType:
		flag, err := d.d.Byte()
		if err != nil {
			return nil, err
		}
		switch flag {
		case 0:
			return candid.None{}, nil
		case 1:
			v, err := d.value(ct.Inner)
			if err != nil {
				return nil, err
			}
			return candid.Opt{Value: v}, nil
		default:
			return nil, errors.Errorf("invalid opt tag %d", flag)
		}
	case candid.VecType:
		n, err := d.d.Uleb128()
		if err != nil {
			return nil, err
		}
		limit := uint64(d.d.Len())
		if d.zeroSized(ct.Inner, make(map[candid.VarType]bool)) {
			limit = maxZeroSizedElements
		}
		if n > limit {
			return nil, errors.Errorf("vector length %d exceeds the message size", n)
		}
		vec := make(candid.Vec, n)
		for i := range vec {
			if vec[i], err = d.value(ct.Inner); err != nil {
				return nil, err
			}
		}
		return vec, nil
	case candid.RecordType:
		rec := make(candid.Record, len(ct.Fields))
		for i, f := range ct.Fields {
			v, err := d.value(f.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "record field %d", f.ID)
			}
			rec[i] = candid.Field{ID: f.ID, Value: v}
		}
		return rec, nil
	case candid.VariantType:
		idx, err := d.d.Uleb128()
		if err != nil {
			return nil, err
		}
		if idx >= uint64(len(ct.Fields)) {
			return nil, errors.Errorf("variant index %d out of range", idx)
		}
		f := ct.Fields[idx]
		v, err := d.value(f.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "variant field %d", f.ID)
		}
		return candid.Variant{Field: candid.Field{ID: f.ID, Value: v}, Index: idx}, nil
	case candid.FuncType:
		flag, err := d.d.Byte()
		if err != nil {
			return nil, err
		}
		if flag != 1 {
			return nil, errors.Errorf("unsupported opaque reference %d", flag)
		}
		p, err := d.principal()
		if err != nil {
			return nil, err
		}
		m, err := d.text()
		if err != nil {
			return nil, err
		}
		return candid.Func{Principal: p, Method: m}, nil
	case candid.ServiceType:
		p, err := d.principal()
		if err != nil {
			return nil, err
		}
		return candid.Service{Principal: p}, nil
	default:
		return nil, errors.Errorf("unsupported type %s", t)
	}
}

func (d *decoder) primitive(p candid.Primitive) (candid.Value, error) {
	switch p {
	case candid.NullType:
		return candid.Null{}, nil
	case candid.ReservedType:
		return candid.Reserved{}, nil
	case candid.EmptyType:
		return nil, errors.New("cannot decode a value of type empty")
	case candid.BoolType:
		b, err := d.d.Byte()
		if err != nil {
			return nil, err
		}
		if b > 1 {
			return nil, errors.Errorf("invalid bool value %d", b)
		}
		return candid.Bool(b == 1), nil
	case candid.NatType:
		n, err := d.d.BigUleb128()
		if err != nil {
			return nil, err
		}
		return candid.Nat{V: n}, nil
	case candid.IntType:
		n, err := d.d.BigSleb128()
		if err != nil {
			return nil, err
		}
		return candid.Int{V: n}, nil
	case candid.Nat8Type:
		b, err := d.d.Byte()
		return candid.Nat8(b), err
	case candid.Nat16Type:
		v, err := d.d.Uint16()
		return candid.Nat16(v), err
	case candid.Nat32Type:
		v, err := d.d.Uint32()
		return candid.Nat32(v), err
	case candid.Nat64Type:
		v, err := d.d.Uint64()
		return candid.Nat64(v), err
	case candid.Int8Type:
		b, err := d.d.Byte()
		return candid.Int8(int8(b)), err
	case candid.Int16Type:
		v, err := d.d.Uint16()
		return candid.Int16(int16(v)), err
	case candid.Int32Type:
		v, err := d.d.Uint32()
		return candid.Int32(int32(v)), err
	case candid.Int64Type:
		v, err := d.d.Uint64()
		return candid.Int64(int64(v)), err
	case candid.Float32Type:
		v, err := d.d.Float32()
		return candid.Float32(v), err
	case candid.Float64Type:
		v, err := d.d.Float64()
		return candid.Float64(v), err
	case candid.TextType:
		s, err := d.text()
		if err != nil {
			return nil, err
		}
		return candid.Text(s), nil
	case candid.PrincipalType:
		pr, err := d.principal()
		if err != nil {
			return nil, err
		}
		return pr, nil
	default:
		return nil, errors.Errorf("unsupported primitive type %s", p)
	}
}
