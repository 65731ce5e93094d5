package bridge

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icpkit/idlbridge/pkg/candid"
)

func TestLoaderCheckFile(t *testing.T) {
	fs := testFs(t)
	require.NoError(t, afero.WriteFile(fs, "/broken.did", []byte("service : {"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/unbound.did", []byte("type A = B;"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/types.did", []byte("type A = nat;"), 0644))
	l := NewLoader(fs, nil)

	env, actor, err := l.CheckFile(testInterfacePath)
	require.NoError(t, err)
	require.NotNil(t, actor)
	assert.Len(t, actor.Methods, 4)
	assert.Equal(t, []string{"Name", "Person"}, env.Names())

	env, actor, err = l.CheckFile("/types.did")
	require.NoError(t, err)
	assert.Nil(t, actor)
	assert.Equal(t, 1, env.Len())

	_, _, err = l.CheckFile("/missing.did")
	assert.ErrorContains(t, err, `failed to read interface file "/missing.did"`)

	_, _, err = l.CheckFile("/broken.did")
	var pe *candid.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "/broken.did", pe.Source)

	_, _, err = l.CheckFile("/unbound.did")
	var te *candid.TypeError
	require.True(t, errors.As(err, &te))
	assert.ErrorContains(t, err, `type error in "/unbound.did"`)
}

func TestLoaderBestEffortSignature(t *testing.T) {
	fs := testFs(t)
	require.NoError(t, afero.WriteFile(fs, "/types.did", []byte("type A = nat;"), 0644))
	logger, logs := observedLogger()
	l := NewLoader(fs, logger)

	sig, ok := l.BestEffortSignature(testInterfacePath, "greet")
	require.True(t, ok)
	assert.Equal(t, "greet", sig.Name)
	assert.Equal(t, "greet : (Name) -> (text) query", sig.String())
	require.Len(t, sig.Args(), 1)
	require.Len(t, sig.Rets(), 1)
	assert.Equal(t, 0, logs.Len())

	for _, test := range []struct {
		path   string
		method string
	}{
		{testInterfacePath, "missing"},
		{"/missing.did", "greet"},
		{"/types.did", "greet"},
	} {
		_, ok := l.BestEffortSignature(test.path, test.method)
		assert.False(t, ok)
	}
	assert.Equal(t, 3, logs.FilterMessageSnippet("No type information").Len())

	_, ok = l.BestEffortSignature("", "greet")
	assert.False(t, ok)
	assert.Equal(t, 3, logs.Len())
}
