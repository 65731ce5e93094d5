package wire

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/icpkit/idlbridge/pkg/candid"
)

// coercer converts decoded values from their wire types to expected types following the
// subtyping rules: extra record fields and arguments are ignored, absent optional ones
// become null and values that don't fit an optional type are replaced by null.
type coercer struct {
	wire     *candid.TypeEnv
	expected *candid.TypeEnv
}

func (c *coercer) args(values candid.Args, wireTypes, expected []candid.Type) (candid.Args, error) {
	r := make(candid.Args, len(expected))
	for i, et := range expected {
		if i >= len(values) {
			v, ok := c.absent(et)
			if !ok {
				return nil, errors.Errorf("missing argument %d of type %s", i+1, et)
			}
			r[i] = v
			continue
		}
		v, err := c.value(values[i], wireTypes[i], et)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i+1)
		}
		r[i] = v
	}
	return r, nil
}

// absent returns the value of an optional field or argument missing on the wire.
func (c *coercer) absent(t candid.Type) (candid.Value, bool) {
	rt, err := c.expected.Trace(t)
	if err != nil {
		return nil, false
	}
	switch ct := rt.(type) {
	case candid.OptType:
		return candid.None{}, true
	case candid.Primitive:
		switch ct {
		case candid.NullType:
			return candid.Null{}, true
		case candid.ReservedType:
			return candid.Reserved{}, true
		}
	}
	return nil, false
}

func mismatch(wt, et candid.Type) error {
	return errors.Errorf("type mismatch: wire type %s is not a subtype of %s", wt, et)
}

func (c *coercer) value(v candid.Value, wt, et candid.Type) (candid.Value, error) {
	rw, err := c.wire.Trace(wt)
	if err != nil {
		return nil, err
	}
	re, err := c.expected.Trace(et)
	if err != nil {
		return nil, err
	}
	switch ct := re.(type) {
	case candid.Primitive:
		return c.primitive(v, rw, ct)
	case candid.OptType:
		return c.opt(v, rw, ct), nil
	case candid.VecType:
		wv, ok := rw.(candid.VecType)
		vec, isVec := v.(candid.Vec)
		if !ok || !isVec {
			return nil, mismatch(wt, et)
		}
		r := make(candid.Vec, len(vec))
		for i, x := range vec {
			if r[i], err = c.value(x, wv.Inner, ct.Inner); err != nil {
				return nil, err
			}
		}
		return r, nil
	case candid.RecordType:
		wr, ok := rw.(candid.RecordType)
		rec, isRec := v.(candid.Record)
		if !ok || !isRec {
			return nil, mismatch(wt, et)
		}
		return c.record(rec, wr, ct)
	case candid.VariantType:
		wv, ok := rw.(candid.VariantType)
		vr, isVariant := v.(candid.Variant)
		if !ok || !isVariant {
			return nil, mismatch(wt, et)
		}
		f, idx, ok := ct.Field(vr.Field.ID)
		if !ok {
			return nil, errors.Errorf("variant field %d not found in type %s", vr.Field.ID, et)
		}
		wf, _, _ := wv.Field(vr.Field.ID)
		fv, err := c.value(vr.Field.Value, wf.Type, f.Type)
		if err != nil {
			return nil, err
		}
		return candid.Variant{Field: candid.Field{ID: f.ID, Name: f.Name, Value: fv}, Index: uint64(idx)}, nil
	case candid.FuncType:
		if _, ok := rw.(candid.FuncType); ok {
			return v, nil
		}
	case candid.ServiceType:
		if _, ok := rw.(candid.ServiceType); ok {
			return v, nil
		}
	}
	return nil, mismatch(wt, et)
}

func (c *coercer) primitive(v candid.Value, wt candid.Type, p candid.Primitive) (candid.Value, error) {
	if p == candid.ReservedType {
		return candid.Reserved{}, nil
	}
	wp, ok := wt.(candid.Primitive)
	if !ok {
		return nil, mismatch(wt, p)
	}
	if wp == p {
		return v, nil
	}
	if wp == candid.NatType && p == candid.IntType {
		n, ok := v.(candid.Nat)
		if !ok {
			return nil, mismatch(wt, p)
		}
		return candid.Int{V: new(big.Int).Set(n.V)}, nil
	}
	return nil, mismatch(wt, p)
}

// opt never fails: a value that can't be converted becomes null.
func (c *coercer) opt(v candid.Value, wt candid.Type, et candid.OptType) candid.Value {
	switch x := v.(type) {
	case candid.Null, candid.None, candid.Reserved:
		return candid.None{}
	case candid.Opt:
		wo, ok := wt.(candid.OptType)
		if !ok {
			return candid.None{}
		}
		inner, err := c.value(x.Value, wo.Inner, et.Inner)
		if err != nil {
			return candid.None{}
		}
		return candid.Opt{Value: inner}
	}
	inner, err := c.expected.Trace(et.Inner)
	if err != nil {
		return candid.None{}
	}
	if _, nested := inner.(candid.OptType); nested {
		return candid.None{}
	}
	if p, ok := inner.(candid.Primitive); ok && (p == candid.NullType || p == candid.ReservedType) {
		return candid.None{}
	}
	r, err := c.value(v, wt, et.Inner)
	if err != nil {
		return candid.None{}
	}
	return candid.Opt{Value: r}
}

func (c *coercer) record(rec candid.Record, wt, et candid.RecordType) (candid.Value, error) {
	r := make(candid.Record, 0, len(et.Fields))
	for _, ft := range et.Fields {
		f, ok := rec.Field(ft.ID)
		if !ok {
			v, ok := c.absent(ft.Type)
			if !ok {
				return nil, errors.Errorf("record field %d of type %s is missing", ft.ID, ft.Type)
			}
			r = append(r, candid.Field{ID: ft.ID, Name: ft.Name, Value: v})
			continue
		}
		wf, _, _ := wt.Field(ft.ID)
		v, err := c.value(f.Value, wf.Type, ft.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "record field %d", ft.ID)
		}
		r = append(r, candid.Field{ID: ft.ID, Name: ft.Name, Value: v})
	}
	return r, nil
}
