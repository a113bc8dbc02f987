package http

import (
	"context"
	"net/http"
	"time"

	"kuchikomi/pkg/logger"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 3 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *logger.Logger
}

func NewHealthHandler(db Pinger, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Health godoc
// @Summary      Liveness probe
// @Description  OK when the database answers a ping
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string "OK"
// @Failure      500  {string}  string "ERROR"
// @Router       /health [get]
// @Router       /uptimerobot [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("Health check failed: %v", err)
		c.String(http.StatusInternalServerError, "ERROR")
		return
	}
	c.String(http.StatusOK, "OK")
}
