package wire

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/icpkit/idlbridge/pkg/candid"
	"github.com/icpkit/idlbridge/pkg/libs/serializer"
)

// Type table opcodes of the compound types.
const (
	opOpt     int64 = -18
	opVec     int64 = -19
	opRecord  int64 = -20
	opVariant int64 = -21
	opFunc    int64 = -22
	opService int64 = -23
)

var modeCodes = map[candid.FuncMode]byte{
	candid.ModeQuery:          1,
	candid.ModeOneway:         2,
	candid.ModeCompositeQuery: 3,
}

// typeTable collects the compound types of a message. Structural types are shared by their
// serialized entry, named types are reserved before their definition is serialized so
// recursive types refer to themselves.
type typeTable struct {
	env     *candid.TypeEnv
	entries [][]byte
	index   map[string]int64
	named   map[candid.VarType]int64
}

func newTypeTable(env *candid.TypeEnv) *typeTable {
	return &typeTable{env: env, index: make(map[string]int64), named: make(map[candid.VarType]int64)}
}

// ref returns the opcode of a primitive type or the table index of a compound one.
func (tt *typeTable) ref(t candid.Type) (int64, error) {
	if v, ok := t.(candid.VarType); ok {
		return tt.namedRef(v)
	}
	if p, ok := t.(candid.Primitive); ok {
		return p.Opcode(), nil
	}
	idx := tt.reserve()
	entry, err := tt.entry(t)
	if err != nil {
		return 0, err
	}
	// Children of a type that is already in the table resolve to existing entries,
	// so nothing but the reserved slot was added.
	if j, ok := tt.index[string(entry)]; ok && len(tt.entries) == int(idx)+1 {
		tt.entries = tt.entries[:idx]
		return j, nil
	}
	tt.entries[idx] = entry
	tt.index[string(entry)] = idx
	return idx, nil
}

func (tt *typeTable) namedRef(v candid.VarType) (int64, error) {
	if idx, ok := tt.named[v]; ok {
		return idx, nil
	}
	rt, err := tt.env.Trace(v)
	if err != nil {
		return 0, err
	}
	if p, ok := rt.(candid.Primitive); ok {
		tt.named[v] = p.Opcode()
		return p.Opcode(), nil
	}
	idx := tt.reserve()
	tt.named[v] = idx
	entry, err := tt.entry(rt)
	if err != nil {
		return 0, err
	}
	tt.entries[idx] = entry
	return idx, nil
}

func (tt *typeTable) reserve() int64 {
	tt.entries = append(tt.entries, nil)
	return int64(len(tt.entries) - 1)
}

func (tt *typeTable) entry(t candid.Type) ([]byte, error) {
	var buf bytes.Buffer
	s := serializer.New(&buf)
	switch ct := t.(type) {
	case candid.OptType:
		if err := tt.inner(s, opOpt, ct.Inner); err != nil {
			return nil, err
		}
	case candid.VecType:
		if err := tt.inner(s, opVec, ct.Inner); err != nil {
			return nil, err
		}
	case candid.RecordType:
		if err := tt.fields(s, opRecord, ct.Fields); err != nil {
			return nil, err
		}
	case candid.VariantType:
		if err := tt.fields(s, opVariant, ct.Fields); err != nil {
			return nil, err
		}
	case candid.FuncType:
		if err := tt.function(s, ct); err != nil {
			return nil, err
		}
	case candid.ServiceType:
		if err := tt.service(s, ct); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unsupported type %s", t)
	}
	return buf.Bytes(), nil
}

func (tt *typeTable) inner(s *serializer.Serializer, op int64, inner candid.Type) error {
	ref, err := tt.ref(inner)
	if err != nil {
		return err
	}
	if err := s.Sleb128(op); err != nil {
		return err
	}
	return s.Sleb128(ref)
}

func (tt *typeTable) fields(s *serializer.Serializer, op int64, fields []candid.FieldType) error {
	refs, err := tt.refs(fieldTypes(fields))
	if err != nil {
		return err
	}
	if err := s.Sleb128(op); err != nil {
		return err
	}
	if err := s.Uleb128(uint64(len(fields))); err != nil {
		return err
	}
	for i, f := range fields {
		if err := s.Uleb128(uint64(f.ID)); err != nil {
			return err
		}
		if err := s.Sleb128(refs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (tt *typeTable) function(s *serializer.Serializer, ft candid.FuncType) error {
	args, err := tt.refs(ft.Args)
	if err != nil {
		return err
	}
	rets, err := tt.refs(ft.Rets)
	if err != nil {
		return err
	}
	if err := s.Sleb128(opFunc); err != nil {
		return err
	}
	if err := writeRefs(s, args); err != nil {
		return err
	}
	if err := writeRefs(s, rets); err != nil {
		return err
	}
	if err := s.Uleb128(uint64(len(ft.Modes))); err != nil {
		return err
	}
	for _, m := range ft.Modes {
		if err := s.Byte(modeCodes[m]); err != nil {
			return err
		}
	}
	return nil
}

func (tt *typeTable) service(s *serializer.Serializer, st candid.ServiceType) error {
	types := make([]candid.Type, len(st.Methods))
	for i, m := range st.Methods {
		types[i] = m.Type
	}
	refs, err := tt.refs(types)
	if err != nil {
		return err
	}
	if err := s.Sleb128(opService); err != nil {
		return err
	}
	if err := s.Uleb128(uint64(len(st.Methods))); err != nil {
		return err
	}
	for i, m := range st.Methods {
		if err := s.StringWithUlebLen(m.Name); err != nil {
			return err
		}
		if err := s.Sleb128(refs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (tt *typeTable) refs(types []candid.Type) ([]int64, error) {
	refs := make([]int64, len(types))
	for i, t := range types {
		r, err := tt.ref(t)
		if err != nil {
			return nil, err
		}
		refs[i] = r
	}
	return refs, nil
}

func (tt *typeTable) write(s *serializer.Serializer) error {
	if err := s.Uleb128(uint64(len(tt.entries))); err != nil {
		return err
	}
	for _, e := range tt.entries {
		if err := s.Bytes(e); err != nil {
			return err
		}
	}
	return nil
}

func writeRefs(s *serializer.Serializer, refs []int64) error {
	if err := s.Uleb128(uint64(len(refs))); err != nil {
		return err
	}
	for _, r := range refs {
		if err := s.Sleb128(r); err != nil {
			return err
		}
	}
	return nil
}

func fieldTypes(fields []candid.FieldType) []candid.Type {
	r := make([]candid.Type, len(fields))
	for i, f := range fields {
		r[i] = f.Type
	}
	return r
}
