// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/system/tokens"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName = "influencerhub-session"

	isAuthKey     = "is_authenticated"
	operatorIDKey = "operator_id"
	operatorName  = "operator_name"
	operatorEmail = "operator_email"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-operator helper                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we cache in the session & inject into r.Context().
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	// Via is "session" or "token".
	Via string `json:"via"`
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the operator & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithUser returns ctx carrying u, as LoadSessionUser does.
func WithUser(ctx context.Context, u *SessionUser) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the bearer-token verifier.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	tokens *tokens.Service
	log    *zap.Logger
}

// NewSessionManager builds the cookie store. In production (secure=true)
// cookies are Secure + SameSite=None; over plain http in development use
// secure=false so browsers accept them. tokens may be nil to disable bearer
// authentication.
func NewSessionManager(sessionKey, sessionName, domain string, maxAge time.Duration, secure bool, tok *tokens.Service, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if sessionName == "" {
		sessionName = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", sessionName),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Bool("bearer_tokens", tok != nil))

	return &SessionManager{store: store, name: sessionName, tokens: tok, log: logger}, nil
}

// Tokens returns the bearer-token service, or nil.
func (m *SessionManager) Tokens() *tokens.Service { return m.tokens }

// GetSession returns the request's session. A cookie that no longer decodes
// (rotated key, tampering) yields a fresh session and a warning, not an error.
func (m *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			m.log.Warn("session cookie invalid, using fresh session", zap.Error(err))
			return sess, nil
		}
		return sess, err
	}
	return sess, nil
}

// SignIn marks the session authenticated for op.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, op models.Operator) error {
	sess, err := m.GetSession(r)
	if err != nil {
		m.log.Error("session store error during sign-in, using fresh session", zap.Error(err))
	}
	sess.Values[isAuthKey] = true
	sess.Values[operatorIDKey] = op.ID
	sess.Values[operatorName] = op.Name
	sess.Values[operatorEmail] = op.Email
	return sess.Save(r, w)
}

// SignOut clears the session and expires the cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.GetSession(r)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the operator into context when the request carries
// a valid bearer token or an authenticated session cookie. A bearer header
// that fails to verify is not an anonymous request: it is rejected with 401.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := bearer(r); ok && m.tokens != nil {
			claims, err := m.tokens.Parse(raw)
			if err != nil {
				m.log.Debug("bearer token rejected", zap.Error(err))
				writeUnauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &SessionUser{
				ID:    claims.Subject,
				Name:  claims.Name,
				Email: claims.Email,
				Via:   "token",
			})))
			return
		}

		sess, err := m.GetSession(r)
		if err != nil {
			m.log.Error("session store error", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			r = r.WithContext(WithUser(r.Context(), &SessionUser{
				ID:    getString(sess, operatorIDKey),
				Name:  getString(sess, operatorName),
				Email: getString(sess, operatorEmail),
				Via:   "session",
			}))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn answers 401 JSON unless LoadSessionUser found an operator.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		writeUnauthorized(w, "unauthorized")
	})
}

// helpers

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(tok), true
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("WWW-Authenticate", `Bearer realm="influencerhub"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
