package http

import (
	"net/http"
	"time"

	"kuchikomi/pkg/jwt"
	"kuchikomi/pkg/logger"
	"kuchikomi/services/board/internal/entity"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookieName = "kuchikomi_session"
	SessionTTL        = 10 * 365 * 24 * time.Hour

	sessionKey = "session"
)

// sessionPayload is the signed cookie body. Previous is only honoured
// while the session acts as the advertiser account.
type sessionPayload struct {
	Identity entity.Identity  `json:"id"`
	Previous *entity.Identity `json:"prev,omitempty"`
	Flashes  []entity.Flash   `json:"fl,omitempty"`
}

type SessionStore struct {
	tokens       *jwt.Service
	secure       bool
	advertiserID int64
	logger       *logger.Logger
}

func NewSessionStore(tokens *jwt.Service, secure bool, advertiserID int64, logger *logger.Logger) *SessionStore {
	return &SessionStore{
		tokens:       tokens,
		secure:       secure,
		advertiserID: advertiserID,
		logger:       logger,
	}
}

// Load decodes the session cookie. A missing, tampered or expired cookie
// yields an empty session.
func (s *SessionStore) Load(r *http.Request) *entity.Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return entity.NewSession(entity.Identity{}, nil, nil)
	}

	var payload sessionPayload
	if err := s.tokens.Verify(cookie.Value, &payload); err != nil {
		s.logger.Warn("Discarding invalid session cookie: %v", err)
		return entity.NewSession(entity.Identity{}, nil, nil)
	}

	var state entity.SessionState = entity.NormalSession{}
	if payload.Previous != nil && payload.Identity.UserID == s.advertiserID {
		state = entity.ImpersonatingSession{Previous: *payload.Previous}
	}
	return entity.NewSession(payload.Identity, state, payload.Flashes)
}

// Save writes the cookie when the session changed during the request.
func (s *SessionStore) Save(w http.ResponseWriter, session *entity.Session) {
	if !session.Dirty() {
		return
	}

	payload := sessionPayload{Identity: session.Identity(), Flashes: session.Flashes()}
	if previous, ok := session.Impersonating(); ok {
		payload.Previous = &previous
	}

	token, err := s.tokens.Sign(payload)
	if err != nil {
		s.logger.Error("Failed to sign session: %v", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		Expires:  time.Now().Add(SessionTTL),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionWriter saves the session right before the first byte of the
// response goes out, so headers still accept the cookie.
type sessionWriter struct {
	gin.ResponseWriter
	commit    func()
	committed bool
}

func (w *sessionWriter) flush() {
	if w.committed {
		return
	}
	w.committed = true
	w.commit()
}

func (w *sessionWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.flush()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(data []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(data)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.flush()
	return w.ResponseWriter.WriteString(s)
}

func currentSession(c *gin.Context) *entity.Session {
	if value, ok := c.Get(sessionKey); ok {
		if session, ok := value.(*entity.Session); ok {
			return session
		}
	}
	session := entity.NewSession(entity.Identity{}, nil, nil)
	c.Set(sessionKey, session)
	return session
}

// currentIdentity is the identity bound by IdentityMiddleware, or the zero
// identity when none could be bound.
func currentIdentity(c *gin.Context) entity.Identity {
	if value, ok := c.Get("user"); ok {
		if identity, ok := value.(entity.Identity); ok {
			return identity
		}
	}
	return entity.Identity{}
}
