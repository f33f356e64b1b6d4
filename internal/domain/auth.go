package domain

import (
	"context"
	"time"
)

// AdminSubject is the only identity that can hold an admin session.
const AdminSubject = "admin"

// AdminSession is a verified, unexpired admin session token payload.
type AdminSession struct {
	ID        string
	Subject   string
	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// CredentialVerifier checks a plaintext password against the stored admin hash.
type CredentialVerifier interface {
	Verify(password string) error
}

// SessionIssuer issues signed session tokens.
type SessionIssuer interface {
	Issue(subject string) (token string, expiresAt time.Time, err error)
}

// SessionVerifier validates a session token. It never returns an error:
// any failure yields ok == false.
type SessionVerifier interface {
	Verify(token string) (session *AdminSession, ok bool)
}

// AuthService defines admin login and session probing.
type AuthService interface {
	Login(ctx context.Context, password string) (token string, expiresAt time.Time, err error)
	Session(ctx context.Context, token string) (*AdminSession, error)
}
