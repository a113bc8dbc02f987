package http

import (
	"errors"

	"kuchikomi/pkg/logger"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/usecase"

	"github.com/gin-gonic/gin"
)

// IdentityMiddleware loads the session, binds it to a user (creating a
// pseudo-user when needed) and writes the session cookie back with the
// response. Uptime probes are never bound.
func IdentityMiddleware(sessions *SessionStore, identityUseCase usecase.IdentityUseCase, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Load(c.Request)
		writer := &sessionWriter{ResponseWriter: c.Writer}
		writer.commit = func() { sessions.Save(writer.ResponseWriter, session) }
		c.Writer = writer
		c.Set(sessionKey, session)

		if !identityUseCase.IsUptimeProbe(c.Request.URL.Path, c.Request.UserAgent()) {
			bindIdentity(c, session, identityUseCase, log)
		}

		c.Next()
		writer.flush()
	}
}

func bindIdentity(c *gin.Context, session *entity.Session, identityUseCase usecase.IdentityUseCase, log *logger.Logger) {
	identity, err := identityUseCase.Resolve(c.Request.Context(), session, c.Request.UserAgent())
	if err != nil {
		log.Error("Failed to resolve session identity: %v", err)
		if errors.Is(err, entity.ErrNoIdentity) {
			session.AddFlash(flashError, msgUserCreateFailed)
		} else {
			session.AddFlash(flashError, msgUserLoadFailed)
		}
		return
	}

	c.Set("user", identity)
	c.Set("user_id", identity.UserID)
}
