package dispatch

import (
	"context"
	"maps"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost defines the computational cost of the bcrypt algorithm.
const bcryptCost = 12

// HashPassword generates a bcrypt hash of the given password.
// The resulting hash is safe to store in a database.
//
// Example:
//
//	hash, err := dispatch.HashPassword("user_password123")
//	if err != nil {
//	    return err
//	}
//	// Store hash in database
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies that a plaintext password matches a bcrypt hash.
// Returns nil if the password is correct, or an error if incorrect.
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// BasicAuth is middleware checking HTTP basic credentials against bcrypt
// hashes keyed by user name. Accepted requests carry the user name in the
// UserIDAttribute; rejected ones get a 401 challenge and never reach the rest
// of the chain.
//
// A BasicAuth is safe for concurrent use; AddUser may be called from a
// configurator while requests are in flight.
type BasicAuth struct {
	Realm string

	mu    sync.RWMutex
	users map[string]string
}

// NewBasicAuth creates basic auth middleware for users, a map of user name to
// password hash as produced by HashPassword. The map is copied.
func NewBasicAuth(realm string, users map[string]string) *BasicAuth {
	a := &BasicAuth{Realm: realm, users: make(map[string]string, len(users))}
	maps.Copy(a.users, users)
	return a
}

// AddUser registers a user with an already hashed password.
func (a *BasicAuth) AddUser(name, hash string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.users == nil {
		a.users = make(map[string]string)
	}
	a.users[name] = hash
}

func (a *BasicAuth) hash(name string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	hash, ok := a.users[name]
	return hash, ok
}

// Process implements Middleware.
func (a *BasicAuth) Process(ctx context.Context, r Request, next Handler) (Response, error) {
	if raw := r.HTTP(); raw != nil {
		if name, password, ok := raw.BasicAuth(); ok {
			if hash, known := a.hash(name); known && CheckPassword(password, hash) == nil {
				return next.Handle(ctx, r.WithAttribute(UserIDAttribute, name))
			}
		}
	}

	resp, err := unauthorized("invalid credentials")
	if err != nil {
		return resp, err
	}
	return resp.WithHeader("WWW-Authenticate", `Basic realm="`+a.Realm+`"`), nil
}
