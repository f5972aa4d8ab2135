// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// privateKey and publicKey are used for signing and verifying JWT tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenExpire is the token lifetime; zero means tokens carry no exp claim.
	tokenExpire time.Duration
)

// ErrInvalidToken is returned for tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// Init generates a fresh ed25519 key pair at runtime and sets the token expiration.
func Init(expire time.Duration) error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	tokenExpire = expire
	return nil
}

// InitFromPath reads ed25519 private/public keys from file and sets the token expiration.
func InitFromPath(privatePath, publicPath string, expire time.Duration) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return fmt.Errorf("malformed ed25519 key files")
	}

	privateKey = ed25519.PrivateKey(privateKeyData)
	publicKey = ed25519.PublicKey(publicKeyData)
	tokenExpire = expire
	return nil
}

// CreateJWT creates a signed JWT token with "sub" = playerID.
func CreateJWT(playerID int) (string, error) {
	if privateKey == nil {
		return "", fmt.Errorf("auth keys not initialised")
	}
	claims := jwt.MapClaims{
		"sub": strconv.Itoa(playerID),
		"iat": time.Now().Unix(),
	}
	if tokenExpire > 0 {
		claims["exp"] = time.Now().Add(tokenExpire).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateJWT verifies a JWT string and returns the player id in its "sub" claim.
func AuthenticateJWT(tokenString string) (int, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return 0, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return 0, ErrInvalidToken
	}

	sub, err := t.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, fmt.Errorf("missing sub in jwt: %w", ErrInvalidToken)
	}
	playerID, err := strconv.Atoi(sub)
	if err != nil || playerID <= 0 {
		return 0, fmt.Errorf("malformed player id %q: %w", sub, ErrInvalidToken)
	}
	return playerID, nil
}
