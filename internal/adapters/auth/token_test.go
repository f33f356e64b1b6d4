package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubevents/internal/domain"
)

func newTestSessions(t *testing.T, now *time.Time) *jwtSessions {
	t.Helper()
	s, err := NewJWTSessions("test-secret", 900*time.Second)
	require.NoError(t, err)
	js := s.(*jwtSessions)
	js.now = func() time.Time { return *now }
	return js
}

func TestNewJWTSessions_requires_secret(t *testing.T) {
	_, err := NewJWTSessions("", time.Minute)
	require.Error(t, err)
}

func TestJWTSessions_Issue_claims(t *testing.T) {
	now := time.Date(2025, 11, 7, 12, 0, 0, 0, time.UTC)
	s := newTestSessions(t, &now)

	token, exp, err := s.Issue(domain.AdminSubject)
	require.NoError(t, err)
	assert.Equal(t, now.Add(900*time.Second), exp)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, domain.AdminSubject, claims.Subject)
	assert.Equal(t, TokenIssuer, claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{TokenAudience}, claims.Audience)
	assert.Len(t, claims.ID, 16)
	assert.Equal(t, int64(900), claims.ExpiresAt.Unix()-claims.IssuedAt.Unix())
}

func TestJWTSessions_Verify_valid(t *testing.T) {
	now := time.Date(2025, 11, 7, 12, 0, 0, 0, time.UTC)
	s := newTestSessions(t, &now)

	token, _, err := s.Issue(domain.AdminSubject)
	require.NoError(t, err)

	now = now.Add(899 * time.Second)
	sess, ok := s.Verify(token)
	require.True(t, ok)
	assert.Equal(t, domain.AdminSubject, sess.Subject)
	assert.Equal(t, TokenIssuer, sess.Issuer)
}

func TestJWTSessions_Verify_expired(t *testing.T) {
	now := time.Date(2025, 11, 7, 12, 0, 0, 0, time.UTC)
	s := newTestSessions(t, &now)

	token, _, err := s.Issue(domain.AdminSubject)
	require.NoError(t, err)

	now = now.Add(901 * time.Second)
	sess, ok := s.Verify(token)
	assert.False(t, ok)
	assert.Nil(t, sess)
}

func TestJWTSessions_Verify_tampered_payload(t *testing.T) {
	now := time.Date(2025, 11, 7, 12, 0, 0, 0, time.UTC)
	s := newTestSessions(t, &now)

	token, _, err := s.Issue(domain.AdminSubject)
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// every position except the last, whose low bits may be padding
	for i := 0; i < len(parts[1])-1; i++ {
		b := []byte(parts[1])
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		tampered := parts[0] + "." + string(b) + "." + parts[2]
		_, ok := s.Verify(tampered)
		assert.False(t, ok, "tampered byte %d accepted", i)
	}
}

func TestJWTSessions_Verify_rejects_wrong_binding(t *testing.T) {
	now := time.Now()
	s := newTestSessions(t, &now)

	sign := func(claims jwt.RegisteredClaims, secret string, method jwt.SigningMethod) string {
		tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return tok
	}
	base := jwt.RegisteredClaims{
		Subject:   domain.AdminSubject,
		Issuer:    TokenIssuer,
		Audience:  jwt.ClaimStrings{TokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}

	wrongIssuer := base
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := base
	wrongAudience.Audience = jwt.ClaimStrings{"other"}
	noExpiry := base
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", sign(base, "other-secret", jwt.SigningMethodHS256)},
		{"wrong issuer", sign(wrongIssuer, "test-secret", jwt.SigningMethodHS256)},
		{"wrong audience", sign(wrongAudience, "test-secret", jwt.SigningMethodHS256)},
		{"no expiry", sign(noExpiry, "test-secret", jwt.SigningMethodHS256)},
		{"other algorithm", sign(base, "test-secret", jwt.SigningMethodHS512)},
		{"empty", ""},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := s.Verify(tt.token)
			assert.False(t, ok)
		})
	}

	_, ok := s.Verify(sign(base, "test-secret", jwt.SigningMethodHS256))
	assert.True(t, ok)
}
