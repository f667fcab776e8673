package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectHashDeterminism(t *testing.T) {
	snap := IRObject{"id": IRString("a"), "qty": IRInt(5)}

	h1, err := ObjectHash(snap)
	require.NoError(t, err)
	h2, err := ObjectHash(IRObject{"qty": IRInt(5), "id": IRString("a")})
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "key order must not affect the hash")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")

	h3, err := ObjectHash(IRObject{"id": IRString("a"), "qty": IRInt(7)})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestSetHashDomainSeparation(t *testing.T) {
	obj := IRObject{"id": IRString("a")}
	objHash, err := ObjectHash(obj)
	require.NoError(t, err)

	setHash, err := SetHash("Component", []string{objHash})
	require.NoError(t, err)
	assert.NotEqual(t, objHash, setHash)

	other, err := SetHash("Location", []string{objHash})
	require.NoError(t, err)
	assert.NotEqual(t, setHash, other, "set type is part of the content")
}

func TestRevisionID(t *testing.T) {
	body := []byte(`{"a":1}`)

	r1 := RevisionID(1, "", body)
	assert.True(t, strings.HasPrefix(r1, "1-"))
	assert.Len(t, r1, len("1-")+32)

	assert.Equal(t, r1, RevisionID(1, "", body))
	assert.NotEqual(t, r1, RevisionID(2, r1, body))
	assert.NotEqual(t, r1, RevisionID(1, "", []byte(`{"a":2}`)))
}
