package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrawPlaintextMatchesWireFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		p, err := DrawPlaintext()
		assert.NoError(t, err)
		assert.True(t, Pattern.MatchString(p.String()), "got %q", p.String())
		assert.Len(t, p.Prefix, prefixLen)
		assert.Len(t, p.Core, coreLen)
	}
}

func TestDrawPlaintextIsNotConstant(t *testing.T) {
	first, err := DrawPlaintext()
	assert.NoError(t, err)

	distinct := false

	for i := 0; i < 20; i++ {
		next, err := DrawPlaintext()
		assert.NoError(t, err)

		if next.String() != first.String() {
			distinct = true
			break
		}
	}

	assert.True(t, distinct, "20 draws were all identical")
}

func TestDrawSaltLength(t *testing.T) {
	salt, err := DrawSalt()
	assert.NoError(t, err)
	assert.Len(t, salt, saltLen)
}

func TestHashIsDeterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")

	h1 := Hash("pepper", "ABCD-EFGH1234", salt)
	h2 := Hash("pepper", "ABCD-EFGH1234", salt)

	assert.Equal(t, h1, h2)
}

func TestHashChangesWithAnyInput(t *testing.T) {
	salt := []byte("0123456789abcdef")
	base := Hash("pepper", "ABCD-EFGH1234", salt)

	assert.NotEqual(t, base, Hash("other-pepper", "ABCD-EFGH1234", salt))
	assert.NotEqual(t, base, Hash("pepper", "WXYZ-EFGH1234", salt))
	assert.NotEqual(t, base, Hash("pepper", "ABCD-EFGH1234", []byte("fedcba9876543210")))
}

func TestVerify(t *testing.T) {
	salt := []byte("0123456789abcdef")
	hash := Hash("pepper", "ABCD-EFGH1234", salt)

	assert.True(t, Verify("pepper", "ABCD-EFGH1234", salt, hash))
	assert.False(t, Verify("pepper", "ABCD-EFGH1235", salt, hash))
	assert.False(t, Verify("wrong-pepper", "ABCD-EFGH1234", salt, hash))
}

func TestParseFull(t *testing.T) {
	prefix, core, ok := ParseFull("ABCD-EFGH1234")
	assert.True(t, ok)
	assert.Equal(t, "ABCD", prefix)
	assert.Equal(t, "EFGH1234", core)

	_, _, ok = ParseFull("not-a-token")
	assert.False(t, ok)

	_, _, ok = ParseFull("ABCD-EFGH123")
	assert.False(t, ok)

	_, _, ok = ParseFull("abcd-efgh1234")
	assert.False(t, ok)
}
