package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kivu-cash/kivu_cash/internal/config"
)

// ErrInvalidCredentials indicates the panel password did not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service issues and verifies panel sessions. A session is born at login
// and identified by a fresh UUID carried inside an HS256 token; the
// session identifier keys the per-session withdrawal history.
type Service struct {
	secret       []byte
	passwordHash []byte
	ttl          time.Duration
}

// NewService builds the session service from configuration.
func NewService(cfg config.Config) *Service {
	return &Service{
		secret:       []byte(cfg.SessionSecret),
		passwordHash: cfg.PanelPasswordHash,
		ttl:          cfg.SessionTTL,
	}
}

// Session is an issued panel session.
type Session struct {
	ID        string
	Token     string
	ExpiresIn int64
}

// Login verifies the panel password and issues a new session.
func (s *Service) Login(password string) (Session, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		SessionID: uuid.NewString(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	token, err := signToken(claims, s.secret)
	if err != nil {
		return Session{}, err
	}
	return Session{ID: claims.SessionID, Token: token, ExpiresIn: int64(s.ttl.Seconds())}, nil
}

// Verify validates a bearer token and returns the session identifier.
func (s *Service) Verify(token string) (string, error) {
	claims, err := verifyToken(token, s.secret, time.Now())
	if err != nil {
		return "", err
	}
	return claims.SessionID, nil
}
