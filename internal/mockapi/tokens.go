package mockapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	accessTokenLifetime  = time.Hour
	refreshTokenLifetime = 24 * time.Hour
)

// generateToken signs a token carrying the user identity, the same
// claim layout the real API issues.
func generateToken(secret []byte, userID int, username, tokenType string, lifetime time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"username":   username,
		"token_type": tokenType,
		"exp":        time.Now().Add(lifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// parseToken validates a bearer token and returns the username it was
// issued for.
func parseToken(secret []byte, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return "", fmt.Errorf("token missing username claim")
	}
	return username, nil
}
