package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskboard/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleMe(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleGetTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleHealth(c *gin.Context)
	HandleNoRoute(c *gin.Context)
	HandleRecovery(c *gin.Context, recovered any)
}

type handlerImpl struct {
	logger zerolog.Logger
	auth   services.AuthService
	tokens services.TokenService
	tasks  services.TaskService
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	tokenService services.TokenService,
	taskService services.TaskService,
) Handler {
	return &handlerImpl{
		logger: logger,
		auth:   authService,
		tokens: tokenService,
		tasks:  taskService,
	}
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *handlerImpl) HandleNoRoute(c *gin.Context) {
	abort(c, newStatusTextError(http.StatusNotFound))
}

// HandleRecovery is the last resort for panics raised by any handler.
// The client only ever sees a generic 500.
func (h *handlerImpl) HandleRecovery(c *gin.Context, recovered any) {
	h.logger.Error().
		Interface("panic", recovered).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("recovered from panic")
	abort(c, newStatusTextError(http.StatusInternalServerError))
}
