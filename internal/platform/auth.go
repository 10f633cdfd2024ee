package platform

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/pkg/logger"
)

// LoginRedirect is where unauthenticated dashboard visitors are sent
const LoginRedirect = "/?login=required"

type ctxKey struct{}

// HashToken returns the hex sha256 of a raw cookie token; only hashes are stored
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SessionFromContext returns the session attached by the middleware
func SessionFromContext(ctx context.Context) (*contracts.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*contracts.Session)
	return s, ok
}

// WithSession attaches a session to ctx
func WithSession(ctx context.Context, s *contracts.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// Authenticator resolves the session cookie of a request
type Authenticator struct {
	repo   contracts.SessionRepository
	cookie string
	now    func() time.Time
	logger *logger.Logger
}

// NewAuthenticator creates an Authenticator reading cookieName
func NewAuthenticator(repo contracts.SessionRepository, cookieName string, log *logger.Logger) *Authenticator {
	return &Authenticator{
		repo:   repo,
		cookie: cookieName,
		now:    time.Now,
		logger: log.WithComponent("platform-auth"),
	}
}

// Resolve returns the active session for r, or ErrNotFound
func (a *Authenticator) Resolve(r *http.Request) (*contracts.Session, error) {
	c, err := r.Cookie(a.cookie)
	if err != nil || c.Value == "" {
		return nil, contracts.ErrNotFound
	}

	s, err := a.repo.FindActive(r.Context(), HashToken(c.Value))
	if err != nil {
		return nil, err
	}
	// app and db clocks may disagree
	if s.Expired(a.now()) {
		return nil, contracts.ErrNotFound
	}
	return s, nil
}

// RequireAPI answers 401 JSON when there is no valid session
func (a *Authenticator) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := a.Resolve(r)
		if err != nil {
			a.logFailure(err)
			w.Header().Set("Cache-Control", "no-store")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"authentication required"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// RequirePage redirects to the login prompt when there is no valid session
func (a *Authenticator) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := a.Resolve(r)
		if err != nil {
			a.logFailure(err)
			w.Header().Set("Cache-Control", "private, no-store")
			http.Redirect(w, r, LoginRedirect, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (a *Authenticator) logFailure(err error) {
	if errors.Is(err, contracts.ErrNotFound) {
		return
	}
	a.logger.WithError(err).Error("Session lookup failed")
}
