package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/studyhub/internal/apperr"
)

func TestIssueAndVerify(t *testing.T) {
	v := NewVerifier("secret")
	token, err := v.Issue("user-1", time.Hour)
	require.NoError(t, err)

	id, err := v.UserID(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestUserID_WrongSecret(t *testing.T) {
	token, err := NewVerifier("one").Issue("user-1", time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier("two").UserID(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUserID_Expired(t *testing.T) {
	v := NewVerifier("secret")
	token, err := v.Issue("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = v.UserID(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUserID_ClaimFallbacks(t *testing.T) {
	v := NewVerifier("secret")
	for _, claim := range []string{"id", "userId", "_id", "sub"} {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{claim: "u-" + claim})
		signed, err := tok.SignedString([]byte("secret"))
		require.NoError(t, err)

		id, err := v.UserID(signed)
		require.NoError(t, err, "claim %s", claim)
		assert.Equal(t, "u-"+claim, id)
	}
}

func TestUserID_NoUserClaim(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@b.c"})
	signed, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewVerifier("secret").UserID(signed)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUserID_RejectsOtherAlgorithms(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"id": "u1"})
	signed, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewVerifier("secret").UserID(signed)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = BearerToken("Basic dGVzdDp0ZXN0")
	assert.False(t, ok)

	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
}
