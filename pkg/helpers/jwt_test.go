package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueThenVerify(t *testing.T) {
	m := NewJWTManager("test-secret-key", time.Hour)
	id := Identity{UserID: "user-123", Email: "alice@x.com", Name: "Alice"}

	token, exp, err := m.Issue(id, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Identity())
}

func TestVerify_ExpiredAfterTTL(t *testing.T) {
	now := time.Now()
	m := NewJWTManager("test-secret-key", time.Hour).WithClock(func() time.Time { return now })

	token, _, err := m.Issue(Identity{UserID: "user-123"}, 30*time.Minute)
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.NoError(t, err)

	now = now.Add(31 * time.Minute)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Failures(t *testing.T) {
	m := NewJWTManager("secret-key-1", time.Hour)
	other := NewJWTManager("secret-key-2", time.Hour)
	foreign, _, err := other.Issue(Identity{UserID: "u"}, 0)
	require.NoError(t, err)

	good, _, err := m.Issue(Identity{UserID: "u"}, 0)
	require.NoError(t, err)
	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, _, err := m.Issue(Identity{}, 0)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrTokenMissing},
		{"garbage", "not-a-valid-token", ErrTokenMalformed},
		{"wrong signature", foreign, ErrTokenMalformed},
		{"tampered payload", tampered, ErrTokenMalformed},
		{"alg none", unsigned, ErrTokenMalformed},
		{"missing user id", noSubject, ErrTokenMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
