package service

import (
	"time"

	"appusers/internal/core/auth"
	"appusers/internal/domain"
	"appusers/pkg/utils"
)

// AuthService implements the login / lockout state machine. An account
// is either unlocked or locked; the lock is re-evaluated lazily on the
// next login attempt, never by a background timer.
type AuthService struct {
	users       domain.UserRepository
	jwter       *auth.JWTer
	maxFailed   int
	lockTimeout time.Duration
	now         func() time.Time
}

func NewAuthService(users domain.UserRepository, jwter *auth.JWTer, maxFailed int, lockTimeout time.Duration) *AuthService {
	return &AuthService{
		users:       users,
		jwter:       jwter,
		maxFailed:   maxFailed,
		lockTimeout: lockTimeout,
		now:         time.Now,
	}
}

type LoginResult struct {
	Token  string
	UserID int64
}

// Login validates credentials and issues an access token. Every
// failure path reports the same unauthorized error so callers learn
// nothing about whether the username exists or the account is locked.
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	u, err := s.users.FindByUsername(username)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	now := s.now()

	if u.Locked {
		// Lazy unlock once the timeout has elapsed since the last
		// failure. A lock with no failure timestamp was set by an
		// admin and only an admin can lift it.
		if u.LastFailedLogin != nil && now.After(u.LastFailedLogin.Add(s.lockTimeout)) {
			if err := s.users.ResetLoginFailures(u.UserID); err != nil {
				return nil, err
			}
			u.Locked = false
			u.FailedLogins = 0
			u.LastFailedLogin = nil
		} else {
			return nil, domain.Unauthorized("invalid credentials")
		}
	}

	if !utils.CheckPassword(password, u.PasswordHash) {
		if _, err := s.users.RecordLoginFailure(u.UserID, now, s.maxFailed); err != nil {
			return nil, err
		}
		return nil, domain.Unauthorized("invalid credentials")
	}

	if u.FailedLogins > 0 || u.LastFailedLogin != nil {
		if err := s.users.ResetLoginFailures(u.UserID); err != nil {
			return nil, err
		}
	}

	token, err := s.jwter.Issue(u.UserID)
	if err != nil {
		return nil, domain.Internal("issue token", err)
	}
	return &LoginResult{Token: token, UserID: u.UserID}, nil
}

// ResolveToken maps a bearer token to the live user record. The store
// is the source of truth for the admin and lock flags; the token only
// carries identity.
func (s *AuthService) ResolveToken(tokenStr string) (*domain.User, error) {
	claims, err := s.jwter.Parse(tokenStr)
	if err != nil {
		return nil, domain.Unauthorized("invalid token")
	}
	uid, err := claims.UserID()
	if err != nil {
		return nil, domain.Unauthorized("invalid token")
	}
	u, err := s.users.FindByID(uid)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.Unauthorized("invalid token")
		}
		return nil, err
	}
	return u, nil
}
