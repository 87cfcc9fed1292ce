package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthClaims represents JWT claims
type AuthClaims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// User represents a system user
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Organization string
	Roles        []string
	Active       bool
	CreatedAt    time.Time
}

// UserStore abstracts user account storage so the auth layer does not
// depend on a process-global map.
type UserStore interface {
	Create(user *User) error
	FindByEmail(email string) (*User, error)
	FindByID(id string) (*User, error)
}

// ErrUserNotFound is returned by UserStore lookups for unknown accounts.
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned when registering an email that is already taken.
var ErrUserExists = errors.New("user already exists")

// InMemoryUserStore is the default UserStore backed by a mutex-guarded map.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by email
}

// NewInMemoryUserStore creates an empty in-memory user store.
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]*User)}
}

// Create adds a user, failing if the email is already registered.
func (s *InMemoryUserStore) Create(user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, exists := s.users[key]; exists {
		return ErrUserExists
	}
	s.users[key] = user
	return nil
}

// FindByEmail looks up a user by email (case-insensitive).
func (s *InMemoryUserStore) FindByEmail(email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, exists := s.users[strings.ToLower(email)]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// FindByID looks up a user by ID.
func (s *InMemoryUserStore) FindByID(id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

// AuthManager handles authentication and authorization
type AuthManager struct {
	jwtSecret   string
	store       UserStore
	tokenExpiry time.Duration
}

// NewAuthManager creates a new authentication manager backed by the given store
func NewAuthManager(jwtSecret string, tokenExpiry time.Duration, store UserStore) *AuthManager {
	return &AuthManager{
		jwtSecret:   jwtSecret,
		store:       store,
		tokenExpiry: tokenExpiry,
	}
}

// HashPassword hashes a password using bcrypt
func (am *AuthManager) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func (am *AuthManager) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RegisterUser creates a new user account
func (am *AuthManager) RegisterUser(email, password, fullName, organization string) (*User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := am.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		FullName:     fullName,
		PasswordHash: hash,
		Organization: organization,
		Roles:        []string{"user"},
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := am.store.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// AuthenticateUser authenticates a user with email and password
func (am *AuthManager) AuthenticateUser(email, password string) (*User, error) {
	user, err := am.store.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !user.Active {
		return nil, fmt.Errorf("user is inactive")
	}
	if !am.VerifyPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

// GenerateJWT generates a JWT token for a user
func (am *AuthManager) GenerateJWT(user *User) (string, error) {
	now := time.Now()
	claims := AuthClaims{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(am.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "maizeyield",
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(am.jwtSecret))
}

// ValidateJWT validates a JWT token
func (am *AuthManager) ValidateJWT(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(am.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AuthClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// GetTokenExpiry returns the token expiry duration
func (am *AuthManager) GetTokenExpiry() time.Duration {
	return am.tokenExpiry
}

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware requires a valid Bearer token on the wrapped routes
func (am *AuthManager) AuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			claims, err := am.ValidateJWT(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			user, err := am.store.FindByID(claims.UserID)
			if err != nil || !user.Active {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext gets the user from request context
func GetUserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}
