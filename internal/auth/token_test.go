package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("secret", 10)

	token, expiresAt, err := tm.GenerateToken("ops", []Scope{ScopeRead})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Operator)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, []Scope{ScopeRead}, claims.Scopes)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	issued := time.Now().Add(-time.Hour)
	tm.now = func() time.Time { return issued }
	token, _, err := tm.GenerateToken("ops", nil)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestGenerateTokenRequiresOperator(t *testing.T) {
	_, _, err := NewTokenManager("secret", 1).GenerateToken("", nil)
	assert.Error(t, err)
}

func TestParseScopes(t *testing.T) {
	scopes, err := ParseScopes("tickets:read, panel:write,")
	require.NoError(t, err)
	assert.Equal(t, []Scope{ScopeRead, ScopeWrite}, scopes)

	_, err = ParseScopes("tickets:delete")
	assert.Error(t, err)

	p := &Principal{Scopes: scopes}
	assert.True(t, p.Has(ScopeWrite))
	assert.False(t, (&Principal{}).Has(ScopeRead))
}
