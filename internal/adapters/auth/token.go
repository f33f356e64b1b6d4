package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	nanoid "github.com/matoous/go-nanoid/v2"

	"clubevents/internal/domain"
)

// Issuer and audience tags bound into every admin session token.
const (
	TokenIssuer   = "birdingatuva-admin"
	TokenAudience = "birdingatuva-events"
)

// DefaultSessionTTL is the lifetime of an admin session token.
const DefaultSessionTTL = 15 * time.Minute

const tokenIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type jwtSessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// JWTSessions issues and verifies HS256 admin session tokens.
type JWTSessions interface {
	domain.SessionIssuer
	domain.SessionVerifier
}

// NewJWTSessions returns an issuer/verifier signing with secret. A zero ttl means DefaultSessionTTL.
func NewJWTSessions(secret string, ttl time.Duration) (JWTSessions, error) {
	if secret == "" {
		return nil, errors.New("session signing secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &jwtSessions{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (s *jwtSessions) Issue(subject string) (string, time.Time, error) {
	jti, err := nanoid.Generate(tokenIDAlphabet, 16)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token id: %w", err)
	}
	now := s.now().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		ID:        jti,
		Subject:   subject,
		Issuer:    TokenIssuer,
		Audience:  jwt.ClaimStrings{TokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

func (s *jwtSessions) Verify(token string) (*domain.AdminSession, bool) {
	if token == "" {
		return nil, false
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, false
	}
	sess := &domain.AdminSession{
		ID:        claims.ID,
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		Audience:  TokenAudience,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	return sess, true
}
