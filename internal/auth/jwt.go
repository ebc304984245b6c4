// Package auth issues and validates portal session tokens. Login is a mock
// gate by design: there are no credentials, only a portal choice, but the
// session itself is a real signed token so the API can enforce roles.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Portal names carried in session claims.
const (
	PortalVendor   = "vendor"
	PortalSecurity = "security"
	PortalManager  = "manager"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrUnknownPortal = errors.New("unknown portal")
)

// ValidPortal reports whether p is one of the three portals.
func ValidPortal(p string) bool {
	return p == PortalVendor || p == PortalSecurity || p == PortalManager
}

type Claims struct {
	Portal   string `json:"portal"`
	MemberID string `json:"member_id,omitempty"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret []byte
	expiry time.Duration
}

func NewJWTService(secret string, expiry time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// GenerateToken mints a session for a portal; memberID is set when a
// security analyst identifies themselves at login.
func (s *JWTService) GenerateToken(portal, memberID string) (string, error) {
	if !ValidPortal(portal) {
		return "", ErrUnknownPortal
	}
	now := time.Now()
	claims := Claims{
		Portal:   portal,
		MemberID: memberID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "appsec-portal",
			Subject:   portal,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
