// Package auth protects pkg/web's REST and websocket surface with
// username+password login issuing a signed JWT, backed by an in-memory
// user store with bcrypt-hashed passwords.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Service handles authentication and authorization.
type Service struct {
	config    *Config
	jwtSecret []byte
	users     map[string]*User
	sessions  map[string]*Session
}

// Config holds authentication configuration.
type Config struct {
	JWTSecret      string
	TokenExpiry    time.Duration
	PasswordMinLen int
}

// User represents an account permitted to use the live-tail dashboard.
type User struct {
	Username     string
	PasswordHash string
	FullName     string
	Role         Role
	Enabled      bool
	LastLogin    time.Time
}

// Session represents an active, token-backed login.
type Session struct {
	Token     string
	Username  string
	Role      Role
	CreatedAt time.Time
	ExpiresAt time.Time
	IP        string
}

// Role represents a user's access level.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleViewer  Role = "viewer"
)

// Claims is the JWT claim set issued on successful login.
type Claims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user account disabled")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrPermissionDenied   = errors.New("permission denied")
)

// NewService creates an authentication service with an empty user store;
// callers register accounts with RegisterUser before serving logins.
func NewService(config *Config) *Service {
	return &Service{
		config:    config,
		jwtSecret: []byte(config.JWTSecret),
		users:     make(map[string]*User),
		sessions:  make(map[string]*Session),
	}
}

// Authenticate verifies username/password and issues a session on success.
func (s *Service) Authenticate(username, password, ip string) (*Session, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !user.Enabled {
		return nil, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	user.LastLogin = time.Now()
	return s.createSession(user, ip)
}

func (s *Service) createSession(user *User, ip string) (*Session, error) {
	expiresAt := time.Now().Add(s.config.TokenExpiry)

	claims := &Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("auth: signing token: %w", err)
	}

	session := &Session{
		Token:     tokenString,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		IP:        ip,
	}
	s.sessions[tokenString] = session
	return session, nil
}

// ValidateToken validates a JWT and returns its session.
func (s *Service) ValidateToken(tokenString string) (*Session, error) {
	if session, ok := s.sessions[tokenString]; ok {
		if time.Now().After(session.ExpiresAt) {
			delete(s.sessions, tokenString)
			return nil, ErrTokenExpired
		}
		return session, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	session := &Session{
		Token:     tokenString,
		Username:  claims.Username,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	s.sessions[tokenString] = session
	return session, nil
}

// CheckPermission reports whether session's role may perform permission.
func (s *Service) CheckPermission(session *Session, permission string) error {
	if session.Role == RoleAdmin {
		return nil
	}
	for _, p := range rolePermissions[session.Role] {
		if p == permission {
			return nil
		}
	}
	return ErrPermissionDenied
}

// rolePermissions lists what a non-admin role may do against the live-tail
// dashboard: view decoded messages and the running configuration, but not
// change it or manage accounts.
var rolePermissions = map[Role][]string{
	RoleViewer: {
		"view_messages",
		"view_config",
	},
}

// Logout removes token's cached session. The JWT itself stays valid until
// it expires: a later ValidateToken re-derives the session from its
// signature and claims.
func (s *Service) Logout(token string) {
	delete(s.sessions, token)
}

// RegisterUser adds a new account to the in-memory store.
func (s *Service) RegisterUser(user *User) error {
	if _, exists := s.users[user.Username]; exists {
		return fmt.Errorf("auth: user %q already exists", user.Username)
	}
	s.users[user.Username] = user
	return nil
}

// HashPassword generates a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateAPIKey generates a random, URL-safe API key.
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
