package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("reg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "reg-"))
	assert.Len(t, got, len("reg-")+21)

	other := MustGenerate("reg")
	assert.NotEqual(t, got, other)
}

func TestReferenceCode(t *testing.T) {
	code, err := ReferenceCode()
	require.NoError(t, err)
	assert.Len(t, code, referenceLength)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(referenceAlphabet, r), "unexpected rune %q", r)
	}
}

func TestRunID(t *testing.T) {
	_, err := uuid.Parse(RunID())
	assert.NoError(t, err)
}
