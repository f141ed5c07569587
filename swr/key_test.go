package swr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedForIdentity(ctx interface{}, args ...any) (string, error) { return "", nil }

func TestFunctionIdentityIsStable(t *testing.T) {
	id1 := functionIdentity(namedForIdentity)
	id2 := functionIdentity(namedForIdentity)
	assert.Equal(t, id1, id2)
	assert.Contains(t, id1, "namedForIdentity")
}

func TestBuildFixedKeyIncludesKeyParts(t *testing.T) {
	a := buildFixedKey("fn", []string{"v1", "users"})
	b := buildFixedKey("fn", []string{"v2", "users"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, "fn-v1,users", a)
}

func TestInvocationKeyIsDeterministic(t *testing.T) {
	type query struct {
		ID    int
		Attrs map[string]string
	}
	// Maps hash structurally, so logically equal arguments built in any
	// order produce the same key.
	k1, err := buildInvocationKey("fixed", []any{query{ID: 1, Attrs: map[string]string{"a": "1", "b": "2"}}})
	require.NoError(t, err)
	k2, err := buildInvocationKey("fixed", []any{query{ID: 1, Attrs: map[string]string{"b": "2", "a": "1"}}})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	k3, err := buildInvocationKey("fixed", []any{query{ID: 2, Attrs: map[string]string{"a": "1", "b": "2"}}})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}

func TestInvocationKeyDistinguishesArgCounts(t *testing.T) {
	k0, err := buildInvocationKey("fixed", nil)
	require.NoError(t, err)
	k1, err := buildInvocationKey("fixed", []any{"a"})
	require.NoError(t, err)
	assert.NotEqual(t, k0, k1)
}
