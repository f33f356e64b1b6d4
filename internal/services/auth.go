package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clubevents/internal/domain"
	"clubevents/internal/metrics"
)

// SessionManager issues and verifies admin session tokens.
type SessionManager interface {
	domain.SessionIssuer
	domain.SessionVerifier
}

type authService struct {
	verifier domain.CredentialVerifier
	sessions SessionManager
	metrics  *metrics.Metrics
}

// NewAuthService creates an AuthService from the admin credential verifier and session manager.
func NewAuthService(verifier domain.CredentialVerifier, sessions SessionManager, m *metrics.Metrics) domain.AuthService {
	return &authService{
		verifier: verifier,
		sessions: sessions,
		metrics:  m,
	}
}

func (s *authService) Login(ctx context.Context, password string) (string, time.Time, error) {
	if password == "" {
		s.metrics.LoginAttempt("invalid")
		return "", time.Time{}, domain.ErrInvalidCredentials
	}
	if err := s.verifier.Verify(password); err != nil {
		s.metrics.LoginAttempt("invalid")
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return "", time.Time{}, domain.ErrInvalidCredentials
		}
		return "", time.Time{}, fmt.Errorf("verify password: %w", err)
	}
	token, expiresAt, err := s.sessions.Issue(domain.AdminSubject)
	if err != nil {
		s.metrics.LoginAttempt("error")
		return "", time.Time{}, fmt.Errorf("issue session: %w", err)
	}
	s.metrics.LoginAttempt("success")
	return token, expiresAt, nil
}

func (s *authService) Session(ctx context.Context, token string) (*domain.AdminSession, error) {
	return verifySession(s.sessions, token)
}

// verifySession returns the admin session for token or ErrUnauthorized.
func verifySession(v domain.SessionVerifier, token string) (*domain.AdminSession, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	session, ok := v.Verify(token)
	if !ok || session.Subject != domain.AdminSubject {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}
