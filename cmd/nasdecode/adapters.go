package main

import (
	"time"

	"github.com/protei/nasdecode/pkg/auth"
	"github.com/protei/nasdecode/pkg/config"
	"github.com/protei/nasdecode/pkg/storage"
	"github.com/protei/nasdecode/pkg/web"
)

// authAdapter narrows pkg/auth.Service to web.AuthService, translating
// *auth.Session into the plainer *web.Session the web layer expects.
type authAdapter struct {
	svc *auth.Service
}

func newAuthAdapter(jwtSecret string, tokenExpiry time.Duration, users []config.UserConfig) *authAdapter {
	svc := auth.NewService(&auth.Config{
		JWTSecret:      jwtSecret,
		TokenExpiry:    tokenExpiry,
		PasswordMinLen: 8,
	})
	for _, u := range users {
		role := auth.RoleViewer
		if u.Role == string(auth.RoleAdmin) {
			role = auth.RoleAdmin
		}
		svc.RegisterUser(&auth.User{
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			Role:         role,
			Enabled:      true,
		})
	}
	return &authAdapter{svc: svc}
}

func (a *authAdapter) Authenticate(username, password, ip string) (*web.Session, error) {
	session, err := a.svc.Authenticate(username, password, ip)
	if err != nil {
		return nil, err
	}
	return toWebSession(session), nil
}

func (a *authAdapter) ValidateToken(token string) (*web.Session, error) {
	session, err := a.svc.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return toWebSession(session), nil
}

func (a *authAdapter) Logout(token string) {
	a.svc.Logout(token)
}

func toWebSession(s *auth.Session) *web.Session {
	return &web.Session{
		Token:    s.Token,
		Username: s.Username,
		Role:     string(s.Role),
	}
}

// storeAdapter narrows pkg/storage.DB to web.MessageStore.
type storeAdapter struct {
	db *storage.DB
}

func (a storeAdapter) RecentMessages(limit int) ([]storage.StoredMessage, error) {
	return a.db.RecentMessages(limit)
}
