package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	tok, err := tokens.Issue(42, RoleManager)
	require.NoError(t, err)

	id, role, err := tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, RoleManager, role)
}

func TestParseRejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	tok, err := tokens.Issue(1, RoleCustomer)
	require.NoError(t, err)

	_, _, err = NewTokens("other", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewTokens("secret", -time.Minute).Issue(1, RoleCustomer)
	require.NoError(t, err)
	_, _, err = tokens.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = tokens.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
