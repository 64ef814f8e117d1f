package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/models"
)

// ErrNoSession is returned when a request carries no valid session.
var ErrNoSession = errors.New("not authenticated")

// Config is the authentication configuration.
type Config struct {
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	CookieName    string        `mapstructure:"cookie_name"`
	SecureCookies bool          `mapstructure:"secure_cookies"`
	AdminToken    string        `mapstructure:"admin_token"`
}

// Sessions issues and resolves database-backed login sessions.
type Sessions struct {
	db  *database.DB
	cfg Config
	now func() time.Time
}

// NewSessions creates a session manager.
func NewSessions(db *database.DB, cfg Config) *Sessions {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "session_token"
	}
	return &Sessions{db: db, cfg: cfg, now: time.Now}
}

// Start creates a session for userID and sets the session cookie.
func (s *Sessions) Start(ctx context.Context, w http.ResponseWriter, r *http.Request, userID int64) error {
	token := uuid.NewString()
	expires := s.now().Add(s.cfg.SessionTTL)
	if err := database.CreateSession(ctx, s.db, token, userID, expires); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Current resolves the request's session cookie to an active user.
func (s *Sessions) Current(r *http.Request) (*models.User, error) {
	cookie, err := r.Cookie(s.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	sess, err := database.GetSession(r.Context(), s.db, cookie.Value)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	if sess.Expired(s.now()) {
		return nil, ErrNoSession
	}

	user, err := database.GetActiveUserByID(r.Context(), s.db, sess.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return user, nil
}

// End deletes the request's session and expires the cookie.
func (s *Sessions) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(s.cfg.CookieName)
	if err == nil && cookie.Value != "" {
		if err := database.DeleteSession(ctx, s.db, cookie.Value); err != nil {
			return err
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// IsAdmin reports whether the request carries the configured admin bearer
// token. Admin access is disabled when no token is configured.
func (s *Sessions) IsAdmin(r *http.Request) bool {
	if s.cfg.AdminToken == "" {
		return false
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.cfg.AdminToken)) == 1
}
