package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/gema-site-api/internal/models"
)

// Session is the authenticated identity carried by a request.
type Session struct {
	Email     string
	Name      string
	Role      string
	ExpiresAt time.Time
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SessionService issues and verifies signed session tokens.
type SessionService interface {
	Issue(session Session) (string, time.Time, error)
	Parse(token string) (*Session, error)
}

type sessionService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewSessionService constructs an HS256 session service.
func NewSessionService(secret string, ttl time.Duration, issuer string) SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &sessionService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

func (s *sessionService) Issue(session Session) (string, time.Time, error) {
	email := models.NormalizeEmail(session.Email)
	if email == "" {
		return "", time.Time{}, fmt.Errorf("session email is required")
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	claims := sessionClaims{
		Email: email,
		Name:  strings.TrimSpace(session.Name),
		Role:  session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *sessionService) Parse(token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidSession
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	email := claims.Email
	if email == "" {
		email = claims.Subject
	}
	if models.NormalizeEmail(email) == "" {
		return nil, ErrInvalidSession
	}

	session := &Session{
		Email: models.NormalizeEmail(email),
		Name:  claims.Name,
		Role:  claims.Role,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
