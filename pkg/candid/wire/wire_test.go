package wire

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icpkit/idlbridge/pkg/candid"
)

func parseArgs(t *testing.T, src string) candid.Args {
	args, err := candid.ParseArgs("test", src)
	require.NoError(t, err)
	return args
}

func parseTypes(t *testing.T, srcs ...string) []candid.Type {
	types := make([]candid.Type, len(srcs))
	for i, src := range srcs {
		typ, err := candid.ParseType("test", src)
		require.NoError(t, err)
		types[i] = typ
	}
	return types
}

func fromHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	require.NoError(t, err)
	return b
}

func TestEncode(t *testing.T) {
	for i, test := range []struct {
		src      string
		expected string
	}{
		{`()`, "4449444c 00 00"},
		{`(42)`, "4449444c 00 01 7c 2a"},
		{`(-1)`, "4449444c 00 01 7c 7f"},
		{`(5 : nat)`, "4449444c 00 01 7d 05"},
		{`(true)`, "4449444c 00 01 7e 01"},
		{`(null)`, "4449444c 00 01 7f"},
		{`("hi")`, "4449444c 00 01 71 02 6869"},
		{`(42 : nat8)`, "4449444c 00 01 7b 2a"},
		{`(-2 : int16)`, "4449444c 00 01 76 feff"},
		{`(1 : nat32)`, "4449444c 00 01 79 01000000"},
		{`(1.0 : float32)`, "4449444c 00 01 73 0000803f"},
		{`(principal "aaaaa-aa")`, "4449444c 00 01 68 01 00"},
		{`(opt "a")`, "4449444c 01 6e 71 01 00 01 01 61"},
		{`(vec { 1 : nat16; 2 : nat16 })`, "4449444c 01 6d 7a 01 00 02 0100 0200"},
		{`(blob "\01\02")`, "4449444c 01 6d 7b 01 00 02 0102"},
		{`(record { b = "x"; a = 1 })`, "4449444c 01 6c 02 61 7c 62 71 01 00 01 01 78"},
		{`(variant { ok = 1 : nat8 })`, "4449444c 01 6b 01 9cc201 7b 01 00 00 01"},
		{`(vec {})`, "4449444c 01 6d 7f 01 00 00"},
		{`(null, opt (1 : nat8))`, "4449444c 01 6e 7b 02 7f 00 01 01"},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			blob, err := Encode(parseArgs(t, test.src))
			require.NoError(t, err)
			assert.Equal(t, strings.ReplaceAll(test.expected, " ", ""), hex.EncodeToString(blob))
		})
	}
}

const listInterface = `type List = opt record { head : int; tail : List };`

func listEnv(t *testing.T) *candid.TypeEnv {
	prog, err := candid.ParseProgram("list.did", listInterface)
	require.NoError(t, err)
	env, _, err := candid.CheckProgram(prog)
	require.NoError(t, err)
	return env
}

func TestEncodeRecursiveType(t *testing.T) {
	env := listEnv(t)
	blob, err := EncodeWithTypes(parseArgs(t, `(opt record { head = 1; tail = null })`), []candid.Type{candid.VarType("List")}, env)
	require.NoError(t, err)
	assert.Equal(t, "4449444c026e016c02a0d2aca8047c90eddae704000100010100", hex.EncodeToString(blob))

	args, err := DecodeWithTypes(blob, []candid.Type{candid.VarType("List")}, env)
	require.NoError(t, err)
	assert.Equal(t, `(opt record { head = 1; tail = null })`, args.String())
}

func TestEncodeWithTypes(t *testing.T) {
	for i, test := range []struct {
		src      string
		types    []string
		expected string
	}{
		{`(42)`, []string{"nat8"}, "4449444c 00 01 7b 2a"},
		{`(42)`, []string{"nat"}, "4449444c 00 01 7d 2a"},
		{`(1 : nat8)`, []string{"nat16"}, "4449444c 00 01 7a 0100"},
		{`(null)`, []string{"opt nat"}, "4449444c 01 6e 7d 01 00 00"},
		{`("x")`, []string{"reserved"}, "4449444c 00 01 70"},
		{`(record {})`, []string{"record { a : opt nat }"}, "4449444c 02 6c 01 61 01 6e 7d 01 00 00"},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			blob, err := EncodeWithTypes(parseArgs(t, test.src), parseTypes(t, test.types...), nil)
			require.NoError(t, err)
			assert.Equal(t, strings.ReplaceAll(test.expected, " ", ""), hex.EncodeToString(blob))
		})
	}
}

func TestEncodeWithTypesErrors(t *testing.T) {
	for i, test := range []struct {
		src   string
		types []string
	}{
		{`(256)`, []string{"nat8"}},
		{`("x")`, []string{"nat"}},
		{`(1, 2)`, []string{"nat"}},
		{`()`, []string{"nat"}},
		{`(record {})`, []string{"record { a : nat }"}},
		{`(1)`, []string{"Missing"}},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			_, err := EncodeWithTypes(parseArgs(t, test.src), parseTypes(t, test.types...), nil)
			assert.Error(t, err)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for i, src := range []string{
		`()`,
		`(42, "x", true, null, -7, 1.5)`,
		`(opt (3 : nat16), vec { 1; 2 }, blob "\01\ff")`,
		`(principal "2vxsx-fae", service "aaaaa-aa", func "aaaaa-aa".m)`,
		`(record { 1; "a" }, variant { 0 = true })`,
		`(18446744073709551615 : nat64, -9223372036854775808 : int64, 340282366920938463463374607431768211456)`,
		`(vec { vec { "a" }; vec {} })`,
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			blob, err := Encode(parseArgs(t, src))
			require.NoError(t, err)
			args, err := Decode(blob)
			require.NoError(t, err)
			assert.Equal(t, src, args.String())
		})
	}
}

func TestDecodeUnnamedFields(t *testing.T) {
	args, err := Decode(fromHex(t, "4449444c 01 6c 02 61 7c 62 71 01 00 01 01 78"))
	require.NoError(t, err)
	assert.Equal(t, `(record { 97 = 1; 98 = "x" })`, args.String())

	args, err = Decode(fromHex(t, "4449444c016b019cc2017b01000001"))
	require.NoError(t, err)
	assert.Equal(t, `(variant { 24860 = 1 : nat8 })`, args.String())
}

func TestDecodeWithTypes(t *testing.T) {
	for i, test := range []struct {
		src      string
		types    []string
		expected string
	}{
		{`(record { a = 1 : nat; b = "x"; c = true })`, []string{"record { a : int; b : text; d : opt nat }"},
			`(record { a = 1; b = "x"; d = null })`},
		{`(1, 2)`, []string{"int"}, `(1)`},
		{`()`, []string{"opt nat", "null", "reserved"}, `(null, null, null)`},
		{`(opt "x")`, []string{"opt nat"}, `(null)`},
		{`(5 : nat)`, []string{"opt nat"}, `(opt 5)`},
		{`(5 : nat)`, []string{"int"}, `(5)`},
		{`(null)`, []string{"opt opt nat"}, `(null)`},
		{`(opt opt (1 : nat8))`, []string{"opt opt nat8"}, `(opt opt (1 : nat8))`},
		{`(variant { ok = "x" })`, []string{"variant { ok : text; err : text }"}, `(variant { ok = "x" })`},
		{`(vec { record { x = 1 : nat8; y = 2 : nat8 } })`, []string{"vec record { x : nat8 }"}, `(vec { record { x = 1 : nat8 } })`},
		{`(7)`, []string{"reserved"}, `(null)`},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			blob, err := Encode(parseArgs(t, test.src))
			require.NoError(t, err)
			args, err := DecodeWithTypes(blob, parseTypes(t, test.types...), nil)
			require.NoError(t, err)
			assert.Equal(t, test.expected, args.String())
		})
	}
}

func TestDecodeWithTypesRestoresNames(t *testing.T) {
	blob, err := Encode(parseArgs(t, `(record { name = "Bob"; age = 30 : nat8 }, vec { true })`))
	require.NoError(t, err)
	args, err := DecodeWithTypes(blob, parseTypes(t, "record { name : text; age : nat8 }", "vec bool"), nil)
	require.NoError(t, err)
	expected := candid.Args{
		candid.Record{
			{ID: candid.Hash("age"), Name: "age", Value: candid.Nat8(30)},
			{ID: candid.Hash("name"), Name: "name", Value: candid.Text("Bob")},
		},
		candid.Vec{candid.Bool(true)},
	}
	if diff := deep.Equal(expected, args); diff != nil {
		t.Error(diff)
	}
}

func TestDecodeWithTypesVariantIndex(t *testing.T) {
	blob, err := Encode(parseArgs(t, `(variant { err = "x" })`))
	require.NoError(t, err)
	args, err := DecodeWithTypes(blob, parseTypes(t, "variant { ok : text; err : text }"), nil)
	require.NoError(t, err)
	vr, ok := args[0].(candid.Variant)
	require.True(t, ok)
	assert.Equal(t, uint64(1), vr.Index)
	assert.Equal(t, "err", vr.Field.Name)
}

func TestDecodeWithTypesErrors(t *testing.T) {
	for i, test := range []struct {
		src   string
		types []string
	}{
		{`()`, []string{"nat"}},
		{`(-1)`, []string{"nat"}},
		{`("x")`, []string{"int"}},
		{`(record { a = 1 })`, []string{"record { b : int }"}},
		{`(variant { c = 1 })`, []string{"variant { a; b }"}},
		{`(vec { 1 })`, []string{"record {}"}},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			blob, err := Encode(parseArgs(t, test.src))
			require.NoError(t, err)
			_, err = DecodeWithTypes(blob, parseTypes(t, test.types...), nil)
			assert.Error(t, err)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	for i, test := range []struct {
		blob string
		err  string
	}{
		{"", "missing DIDL magic number"},
		{"4449444d0000", "missing DIDL magic number"},
		{"4449444c", "invalid type table"},
		{"4449444c00017e02", "invalid bool value 2"},
		{"4449444c00017c2a00", "1 unexpected trailing bytes"},
		{"4449444c00017102fffe", "not valid UTF-8"},
		{"4449444c000105", "type index 5 out of range"},
		{"4449444c00016e", "invalid primitive type opcode -18"},
		{"4449444c017c", "invalid type opcode -4"},
		{"4449444c016c026171007101000000", "not in increasing order"},
		{"4449444c016d7c0100ffffff0f", "exceeds the message size"},
		{"4449444c016c0100000100", "nesting exceeds"},
		{"4449444c0001680000", "unsupported opaque reference 0"},
		{"4449444c000168011e" + strings.Repeat("00", 30), "exceeds 29 bytes"},
		{"4449444c00016f", "cannot decode a value of type empty"},
		{"4449444c016e7c010002", "invalid opt tag 2"},
		{"4449444c016b017c7c010001", "variant index 1 out of range"},
		{"4449444c00017d80", "not enough bytes"},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			_, err := Decode(fromHex(t, test.blob))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.err)
		})
	}
}

func nestedOpt(depth int, inner candid.Type) candid.Type {
	t := inner
	for i := 0; i < depth; i++ {
		t = candid.OptType{Inner: t}
	}
	return t
}

func TestTypeTableDeepNesting(t *testing.T) {
	const depth = 5000
	nested := nestedOpt(depth, candid.NatType)
	tt := newTypeTable(nil)
	refs, err := tt.refs([]candid.Type{nested, nested, nestedOpt(depth/2, candid.NatType)})
	require.NoError(t, err)
	assert.Len(t, tt.entries, depth)
	assert.Equal(t, []int64{0, 0, depth / 2}, refs)

	blob, err := EncodeWithTypes(candid.Args{candid.Null{}}, []candid.Type{nested}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, blob[len(blob)-1:])
}

func TestTypeTableSharesEntries(t *testing.T) {
	for i, test := range []struct {
		types   []string
		entries int
	}{
		{[]string{"record { a : vec nat; b : vec nat }"}, 2},
		{[]string{"vec nat", "vec nat", "vec int"}, 2},
		{[]string{"opt opt nat", "opt nat"}, 2},
		{[]string{"variant { a : record {}; b : record {} }"}, 2},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			tt := newTypeTable(nil)
			_, err := tt.refs(parseTypes(t, test.types...))
			require.NoError(t, err)
			assert.Len(t, tt.entries, test.entries)
		})
	}
}

func TestEncodeDepthLimit(t *testing.T) {
	var v candid.Value = candid.Null{}
	for i := 0; i < MaxDepth+1; i++ {
		v = candid.Opt{Value: v}
	}
	_, err := encode(candid.Args{v}, []candid.Type{nestedOpt(MaxDepth+1, candid.NullType)}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting exceeds 256 levels")

	v = candid.Null{}
	for i := 0; i < MaxDepth-1; i++ {
		v = candid.Opt{Value: v}
	}
	_, err = encode(candid.Args{v}, []candid.Type{nestedOpt(MaxDepth-1, candid.NullType)}, nil)
	require.NoError(t, err)
}

func TestEncodeInvalidText(t *testing.T) {
	_, err := Encode(candid.Args{candid.Text("h\xffi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")

	_, err = EncodeWithTypes(candid.Args{candid.Text("h\xffi")}, []candid.Type{candid.TextType}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")
}
