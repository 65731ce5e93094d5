package candid

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	for i, test := range []struct {
		src      string
		expected string
	}{
		{`()`, `()`},
		{`(42, "x", true, null)`, `(42, "x", true, null)`},
		{`(-5)`, `(-5)`},
		{`(0x2a, 1_000)`, `(42, 1000)`},
		{`(1.5, 1e3)`, `(1.5, 1000.0)`},
		{`(5., -2.)`, `(5.0, -2.0)`},
		{`(5.e2 : float32)`, `(500.0 : float32)`},
		{`(42 : nat8)`, `(42 : nat8)`},
		{`(opt (7 : nat16))`, `(opt (7 : nat16))`},
		{`(vec { 1; 2; 3 })`, `(vec { 1; 2; 3 })`},
		{`(vec { 1; 2; })`, `(vec { 1; 2 })`},
		{`(vec {})`, `(vec {})`},
		{`(blob "\00ab")`, `(blob "\00ab")`},
		{`(record { name = "x"; age = 1 })`, `(record { name = "x"; age = 1 })`},
		{`(record { 1; "two" })`, `(record { 1; "two" })`},
		{`(record { 5 = true; 6 })`, `(record { 5 = true; 6 = 6 })`},
		{`(record { "quoted name" = 1 })`, `(record { "quoted name" = 1 })`},
		{`(variant { ok })`, `(variant { ok })`},
		{`(variant { err = "boom" })`, `(variant { err = "boom" })`},
		{`(principal "aaaaa-aa")`, `(principal "aaaaa-aa")`},
		{`(service "aaaaa-aa", func "aaaaa-aa".greet)`, `(service "aaaaa-aa", func "aaaaa-aa".greet)`},
		{`("a", )`, `("a")`},
		{"( /* c /* nested */ */ 1 // end\n )", `(1)`},
		{`(3.0 : float32)`, `(3.0 : float32)`},
		{`(5 : float64)`, `(5.0)`},
		{`(null : opt nat)`, `(null)`},
		{`(1 : opt nat8)`, `(opt (1 : nat8))`},
		{`("tab\there \u{1F600}")`, "(\"tab\\there \U0001F600\")"},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			args, err := ParseArgs("test", test.src)
			require.NoError(t, err)
			assert.Equal(t, test.expected, args.String())
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	for i, test := range []struct {
		src string
		pos Position
		msg string
	}{
		{`(1, 2`, Position{1, 6}, "expected"},
		{`1`, Position{1, 1}, "expected"},
		{`(1, ]`, Position{1, 5}, "unexpected character"},
		{"(1,\n  ?)", Position{2, 3}, "unexpected character"},
		{`(300 : nat8)`, Position{1, 6}, "out of range"},
		{`(-1 : nat)`, Position{1, 5}, "negative"},
		{`("unterminated)`, Position{1, 2}, "unterminated"},
		{`(record { a = 1; a = 2 })`, Position{1, 18}, "duplicate"},
		{`(principal "bad")`, Position{1, 12}, "invalid principal"},
		{`(1) 2`, Position{1, 5}, "after the end of input"},
		{`(foo)`, Position{1, 2}, "unexpected identifier"},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			_, err := ParseArgs("args", test.src)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "args", pe.Source)
			assert.Equal(t, test.pos, pe.Pos)
			assert.Contains(t, pe.Msg, test.msg)
		})
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue("value", `"hello"`)
	require.NoError(t, err)
	assert.Equal(t, Text("hello"), v)

	v, err = ParseValue("value", `42`)
	require.NoError(t, err)
	assert.Equal(t, Number("42"), v)

	v, err = ParseValue("value", `opt vec { true }`)
	require.NoError(t, err)
	assert.Equal(t, Opt{Value: Vec{Bool(true)}}, v)

	_, err = ParseValue("value", `1 2`)
	require.Error(t, err)
}

func TestParseType(t *testing.T) {
	for i, test := range []struct {
		src      string
		expected string
	}{
		{`nat`, `nat`},
		{`blob`, `blob`},
		{`vec nat8`, `blob`},
		{`opt vec text`, `opt vec text`},
		{`record { nat; text }`, `record { nat; text }`},
		{`record { name : text; age : nat8 }`, `record { age : nat8; name : text }`},
		{`variant { b : nat; a }`, `variant { a; b : nat }`},
		{`func (nat) -> (text) query`, `func (nat) -> (text) query`},
		{`func (x : nat, y : text) -> ()`, `func (nat, text) -> ()`},
		{`service { b : () -> (); a : (nat) -> () oneway }`, `service { a : (nat) -> () oneway; b : () -> () }`},
		{`record { "type" : nat }`, `record { "type" : nat }`},
		{`MyType`, `MyType`},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			typ, err := ParseType("type", test.src)
			require.NoError(t, err)
			assert.Equal(t, test.expected, typ.String())
		})
	}
}

func TestParseProgramImport(t *testing.T) {
	_, err := ParseProgram("a.did", `import "b.did";`)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "a.did (1:1): imports are not supported", err.Error())
}
