package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/icpkit/idlbridge/pkg/bridge"
)

const counterInterface = `
type Count = nat;
service : {
  get : () -> (Count) query;
  set : (Count) -> ();
  rename : (text) -> (record { old : text; new : text });
}
`

func testFs(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/counter.did", []byte(counterInterface), 0644))
	return fs
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	opts, err := parseOptions(args)
	require.NoError(t, err)
	out := new(bytes.Buffer)
	err = run(opts, testFs(t), strings.NewReader(stdin), out, zap.NewNop())
	return out.String(), err
}

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"-c", "a.did", "--method", "get", "-o", "idl", "--log-level", "debug", "decode", "4449444c0000"})
	require.NoError(t, err)
	assert.Equal(t, "a.did", opts.candid)
	assert.Equal(t, "get", opts.method)
	assert.Equal(t, "idl", opts.inputType)
	assert.Equal(t, "idl", opts.outputType)
	assert.Equal(t, zapcore.DebugLevel, opts.logging.Level)
	assert.Equal(t, "decode", opts.command)
	assert.Equal(t, []string{"4449444c0000"}, opts.args)

	_, err = parseOptions([]string{"--unknown"})
	assert.Error(t, err)
	_, err = parseOptions([]string{"--log-type", "xml"})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	for i, test := range []struct {
		stdin    string
		args     []string
		expected string
	}{
		{"", []string{"encode", "()"}, "4449444c0000\n"},
		{"(true)\n", []string{"encode"}, "4449444c00017e01\n"},
		{"", []string{"encode"}, "4449444c0000\n"},
		{"", []string{"-c", "/counter.did", "-m", "rename", "encode", ""}, "4449444c00017100\n"},
		{"", []string{"-c", "/counter.did", "-m", "set", "encode", "42"}, "4449444c00017d2a\n"},
		{"", []string{"-c", "/counter.did", "-m", "rename", "encode", "new", "name"}, "4449444c000171086e6577206e616d65\n"},
		{"", []string{"-t", "raw", "encode", "4449444C0000"}, "4449444c0000\n"},
		{"", []string{"-o", "idl", "decode", "4449444c00017d2a"}, "(42)\n"},
		{"0x4449444c00017e01\n", []string{"-o", "idl", "decode"}, "(true)\n"},
		{"", []string{"-o", "raw", "decode", "4449444C0000"}, "4449444c0000\n"},
		{"", []string{"-c", "/counter.did", "-m", "get", "-o", "idl", "decode", "4449444c00017d2a"}, "(42)\n"},
		{"", []string{"-c", "/missing.did", "-m", "set", "encode", "(42)"}, "4449444c00017c2a\n"},
		{"", []string{"check", "/counter.did"}, "type Count = nat;\nget : () -> (Count) query\nrename : (text) -> (record { new : text; old : text })\nset : (Count) -> ()\n"},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			out, err := runCommand(t, test.stdin, test.args...)
			require.NoError(t, err)
			assert.Equal(t, test.expected, out)
		})
	}
}

func TestRunErrors(t *testing.T) {
	for i, test := range []struct {
		args []string
		kind bridge.ErrorKind
	}{
		{[]string{"launch"}, bridge.Undefined},
		{[]string{"check"}, bridge.Undefined},
		{[]string{"check", "/missing.did"}, bridge.Undefined},
		{[]string{"decode", "xyz"}, bridge.InvalidArgument},
		{[]string{"-o", "idl", "decode", "4449444c00017e02"}, bridge.InvalidData},
		{[]string{"-t", "pp", "encode", "()"}, bridge.Unknown},
		{[]string{"-c", "/counter.did", "-m", "set", "encode", `"x"`}, bridge.InvalidData},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			_, err := runCommand(t, "", test.args...)
			require.Error(t, err)
			assert.Equal(t, test.kind, bridge.GetErrorKind(err))
		})
	}
}
