package auth

import (
	"errors"
	"time"

	"github.com/biashara/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid session token")
	ErrExpiredToken     = errors.New("session token has expired")
	ErrTokenNotYetValid = errors.New("session token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid session claims")
	ErrMissingUserID    = errors.New("missing user ID in session claims")
	ErrMissingOrgID     = errors.New("missing organization ID in session claims")
)

// SessionClaims are the claims carried by the identity provider's session
// tokens. The subject is the provider's user ID; org claims describe the
// organization the user is acting in.
type SessionClaims struct {
	jwt.RegisteredClaims
	OrgID   string `json:"org_id"`
	OrgName string `json:"org_name"`
	OrgSlug string `json:"org_slug,omitempty"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
}

// SessionIdentity is the verified view of a session handed to the tenant
// resolver. IDs here are the identity provider's, not this system's.
type SessionIdentity struct {
	ExternalUserID string
	ExternalOrgID  string
	OrgName        string
	OrgSlug        string
	Name           string
	Email          string
}

// SessionVerifier validates identity-provider session tokens. This service
// never issues tokens; authentication lives entirely with the provider.
type SessionVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewSessionVerifier creates a new session verifier
func NewSessionVerifier(cfg config.SessionConfig) *SessionVerifier {
	return &SessionVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		leeway: cfg.Leeway,
	}
}

// Verify validates a session token and returns the identity it asserts
func (s *SessionVerifier) Verify(tokenString string) (*SessionIdentity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithLeeway(s.leeway),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.Subject == "" {
		return nil, ErrMissingUserID
	}
	if claims.OrgID == "" {
		return nil, ErrMissingOrgID
	}

	return &SessionIdentity{
		ExternalUserID: claims.Subject,
		ExternalOrgID:  claims.OrgID,
		OrgName:        claims.OrgName,
		OrgSlug:        claims.OrgSlug,
		Name:           claims.Name,
		Email:          claims.Email,
	}, nil
}
