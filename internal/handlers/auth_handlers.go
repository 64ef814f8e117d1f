package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/James9446/patricia-james-sub001/internal/auth"
	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/models"
	"github.com/James9446/patricia-james-sub001/internal/rsvp"
)

type contextKey int

const userContextKey contextKey = iota

// CurrentUser returns the logged-in user stored by LoadUser, or nil.
func CurrentUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(userContextKey).(*models.User)
	return u
}

func withUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// LoadUser resolves the session cookie, if any, and stores the user in the
// request context. Requests without a valid session pass through anonymously.
func LoadUser(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.Current(r)
			switch {
			case err == nil:
				r = r.WithContext(withUser(r.Context(), user))
			case !errors.Is(err, auth.ErrNoSession):
				slog.Default().WarnContext(r.Context(), "failed to resolve session", "err", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects requests that LoadUser did not authenticate.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			writeError(w, r, errUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests without the admin bearer token.
func RequireAdmin(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				writeError(w, r, errUnauthorized)
				return
			}
			if !sessions.IsAdmin(r) {
				writeError(w, r, forbidden("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register attaches credentials to an invited guest and logs them in.
func Register(db *database.DB, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		name := models.NormalizeName(req.Name)
		if name == "" {
			writeError(w, r, badRequest("name is required"))
			return
		}
		email, err := auth.NormalizeEmail(req.Email)
		if err != nil {
			writeError(w, r, err)
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := r.Context()
		var user *models.User
		err = db.TransactionContext(ctx, func(tx *database.Tx) error {
			matches, err := database.FindActiveUsersByName(ctx, tx, name)
			if err != nil {
				return err
			}
			var candidates []*models.User
			for _, m := range matches {
				if !m.IsRegistered() {
					candidates = append(candidates, m)
				}
			}
			switch {
			case len(matches) == 0:
				return rsvp.ErrGuestNotFound
			case len(candidates) == 0:
				return conflict("this guest is already registered")
			case len(candidates) > 1:
				return rsvp.ErrAmbiguousGuest
			}

			if _, err := database.GetUserByEmail(ctx, tx, email); err == nil {
				return conflict("email is already registered")
			} else if !errors.Is(err, database.ErrNotFound) {
				return err
			}
			if err := database.RegisterUser(ctx, tx, candidates[0].ID, email, hash); err != nil {
				if database.IsUniqueViolation(err) {
					return conflict("email is already registered")
				}
				return err
			}
			user, err = database.GetUserByID(ctx, tx, candidates[0].ID)
			return err
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := sessions.Start(ctx, w, r, user.ID); err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusCreated, user)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and starts a session.
func Login(db *database.DB, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		email, err := auth.NormalizeEmail(req.Email)
		if err != nil || req.Password == "" {
			writeError(w, r, auth.ErrInvalidCredentials)
			return
		}

		user, err := database.GetUserByEmail(r.Context(), db, email)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				err = auth.ErrInvalidCredentials
			}
			writeError(w, r, err)
			return
		}
		if !user.IsRegistered() || user.PasswordHash == nil {
			writeError(w, r, auth.ErrInvalidCredentials)
			return
		}
		if err := auth.VerifyPassword(*user.PasswordHash, req.Password); err != nil {
			writeError(w, r, err)
			return
		}

		if err := sessions.Start(r.Context(), w, r, user.ID); err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, user)
	}
}

// Logout ends the current session. It succeeds without a session too.
func Logout(sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.End(r.Context(), w, r); err != nil {
			writeError(w, r, err)
			return
		}
		writeMessage(w, http.StatusOK, "logged out")
	}
}

// Me returns the logged-in user.
func Me(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, CurrentUser(r.Context()))
}
