package crypto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	ident := Identity{PlayerID: "p1", Name: "Alice"}

	token, err := m.Generate(ident, testNow)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, ident, got)
}

func TestVerifyExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate(Identity{PlayerID: "p1", Name: "Alice"}, testNow.Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	signer := NewJWTManager("secret-one", time.Hour)
	verifier := NewJWTManager("secret-two", time.Hour)

	token, err := signer.Generate(Identity{PlayerID: "p1", Name: "Alice"}, time.Now())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidTokenSignature)
}

func TestVerifyMalformedToken(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	tests := []struct {
		desc  string
		token string
	}{
		{desc: "garbage", token: "not-a-token"},
		{desc: "empty", token: ""},
		{desc: "truncated", token: "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, ErrCorruptedToken)
		})
	}
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	// alg "none" with an empty signature; header/claims are valid JSON.
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJwaWQiOiJwMSIsIm5hbWUiOiJBbGljZSJ9."
	_, err := m.Verify(unsigned)
	assert.Error(t, err)
}
