package bridge

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testInterfacePath = "/greeter.did"

const testInterface = `
type Name = text;
type Person = record { name : Name; age : nat8 };
service : {
  greet : (Name) -> (text) query;
  add : (nat) -> (nat);
  person : (Person) -> (Person);
  pair : (text, nat) -> ();
}
`

func strPtr(s string) *string {
	return &s
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func testFs(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testInterfacePath, []byte(testInterface), 0644))
	return fs
}

func testSignature(t *testing.T, method string) *Signature {
	sig, ok := NewLoader(testFs(t), nil).BestEffortSignature(testInterfacePath, method)
	require.True(t, ok)
	return sig
}
