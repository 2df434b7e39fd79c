// README: JWT issuing and validation (HS256). Token issuance beyond this
// manager (login, refresh) lives outside the engine.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"ridedispatch/internal/modules/user"
)

var (
	ErrInvalidSigningAlgo = errors.New("unexpected signing method")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims is the canonical token payload: subject is the user ID, role drives
// actor resolution in the lifecycle.
type Claims struct {
	Role user.Role `json:"role"`
	jwtlib.RegisteredClaims
}

var _ jwtlib.Claims = (*Claims)(nil)

// Manager handles JWT creation and validation.
type Manager struct {
	secret    []byte
	accessTTL time.Duration
}

func NewManager(secret string, accessTTL time.Duration) (*Manager, error) {
	s := strings.TrimSpace(secret)
	if s == "" {
		return nil, fmt.Errorf("auth: empty jwt secret")
	}
	return &Manager{secret: []byte(s), accessTTL: accessTTL}, nil
}

// Issue returns a signed access token for a user.
func (m *Manager) Issue(userID string, role user.Role) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	tkn := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return tkn.SignedString(m.secret)
}

// Parse verifies signature and standard claims.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	parser := jwtlib.NewParser(jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwtlib.Token) (any, error) {
		if t.Method != jwtlib.SigningMethodHS256 {
			return nil, ErrInvalidSigningAlgo
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
