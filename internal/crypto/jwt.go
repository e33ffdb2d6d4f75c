package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSigningAlg     = errors.New("invalid signing algorithm")
	ErrExpiredToken          = errors.New("expired token")
	ErrInvalidTokenSignature = errors.New("invalid token signature")
	ErrCorruptedToken        = errors.New("corrupted token")
)

// Identity is the guest identity minted when a player creates or joins a
// room. There are no accounts; the signed cookie is the whole identity.
type Identity struct {
	PlayerID string
	Name     string
}

// jwtCustomClaims is an unexported struct used for claims.
// Fields must be exported for JSON serialization.
type jwtCustomClaims struct {
	PlayerID string `json:"pid"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey []byte
	maxAge    time.Duration
}

func NewJWTManager(secretKey string, maxAge time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secretKey),
		maxAge:    maxAge,
	}
}

func (m *JWTManager) Generate(id Identity, now time.Time) (string, error) {
	claims := jwtCustomClaims{
		PlayerID: id.PlayerID,
		Name:     id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("token generation failed: %w", err)
	}

	return signedToken, nil
}

func (m *JWTManager) Verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningAlg
		}
		return m.secretKey, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSigningAlg):
			return Identity{}, ErrInvalidSigningAlg
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrExpiredToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return Identity{}, ErrInvalidTokenSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Identity{}, ErrCorruptedToken
		default:
			return Identity{}, fmt.Errorf("token verification failed: %w", err)
		}
	}

	if claims, ok := token.Claims.(*jwtCustomClaims); ok && token.Valid {
		return Identity{PlayerID: claims.PlayerID, Name: claims.Name}, nil
	}

	return Identity{}, ErrCorruptedToken
}
