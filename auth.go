package dispatch

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserIDAttribute is the request attribute set by authentication middleware.
const UserIDAttribute = "user_id"

// JWTAuth is middleware that validates JWT bearer tokens from the
// Authorization header. It expects the header format: "Authorization: Bearer <token>"
//
// If the token is valid, the user ID is added to the request attributes.
// If the token is invalid or missing, the chain is cut short with a
// 401 Unauthorized response.
//
// A JWTAuth is safe for concurrent use, so one instance can be registered in
// a Container and tuned with a configurator that runs on every request:
//
//	dispatch.ServiceWith("auth", dispatch.ConfigureAs(func(a *dispatch.JWTAuth) error {
//	    a.SetSecret(os.Getenv("JWT_SECRET"))
//	    return nil
//	}))
//
// The zero value rejects every token until a secret is set.
type JWTAuth struct {
	mu     sync.RWMutex
	secret string
}

// RequireAuth creates JWT middleware using secret.
//
// Usage:
//
//	auth := dispatch.RequireAuth("your-secret-key")
//	handler := dispatch.Chain(myHandler, auth)
func RequireAuth(secret string) *JWTAuth {
	return &JWTAuth{secret: secret}
}

// SetSecret replaces the signing secret used to validate tokens.
func (a *JWTAuth) SetSecret(secret string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.secret = secret
}

// Secret returns the signing secret used to validate tokens.
func (a *JWTAuth) Secret() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.secret
}

// Process implements Middleware.
func (a *JWTAuth) Process(ctx context.Context, r Request, next Handler) (Response, error) {
	authHeader := r.Header("Authorization")
	if authHeader == "" {
		return unauthorized("missing authorization header")
	}

	// Expected format: "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return unauthorized("invalid authorization format")
	}

	secret := a.Secret()
	if secret == "" {
		return unauthorized("invalid token")
	}

	userID, err := ValidateJWT(parts[1], secret)
	if err != nil {
		return unauthorized("invalid token")
	}

	return next.Handle(ctx, r.WithAttribute(UserIDAttribute, userID))
}

func unauthorized(message string) (Response, error) {
	return JSON(http.StatusUnauthorized, map[string]string{
		"error": message,
	})
}

// GenerateJWT creates a signed JWT token for the given user ID.
// The token includes standard claims (subject, issued at, expiration).
//
// Example:
//
//	token, err := dispatch.GenerateJWT("user123", "secret", 24*time.Hour)
func GenerateJWT(userID string, secret string, expiration time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWT parses and validates a JWT token string.
// It verifies the signature, expiration, and returns the user ID from the
// "sub" claim.
func ValidateJWT(tokenString string, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	userID, ok := claims["sub"].(string)
	if !ok {
		return "", errors.New("missing user ID in token")
	}

	return userID, nil
}

// UserID returns the user ID stored by authentication middleware.
//
// Example:
//
//	func MyHandler(ctx context.Context, r dispatch.Request) (dispatch.Response, error) {
//	    userID, ok := dispatch.UserID(r)
//	    if !ok {
//	        return dispatch.Text(500, "user not found"), nil
//	    }
//	    // Use userID...
//	}
func UserID(r Request) (string, bool) {
	return r.AttributeString(UserIDAttribute)
}
