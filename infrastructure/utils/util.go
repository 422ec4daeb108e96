package utils

import (
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/Marc02130/tiktaik-sub000/infrastructure/logger"
)

// GetCurrentTime is the production clock: UTC wall time. Components that
// need determinism take a clock function and default to this one.
func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// GenerateToken signs an HS256 token over the given claims. Used by tests
// and local tooling; production tokens come from the auth service.
func GenerateToken(payload map[string]interface{}, secretKey string) (string, error) {
	var claims jwt.MapClaims = payload
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}
