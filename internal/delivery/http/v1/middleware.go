package v1

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-taskboard/internal/services"
)

const userIDCtxKey = "user_id"

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(header, bearerPrefix) {
		h.logger.Error().Msg("bearer authorization header required")
		abort(c, newUnauthorizedError(errNoToken.Error()))
		return
	}

	accessToken := strings.TrimSpace(header[len(bearerPrefix):])
	if accessToken == "" {
		h.logger.Error().Msg("empty bearer token")
		abort(c, newUnauthorizedError(errNoToken.Error()))
		return
	}

	userID, err := h.tokens.Parse(accessToken)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse token")
		switch {
		case errors.Is(err, services.ErrTokenMissingUserID):
			abort(c, newUnauthorizedError(services.ErrTokenMissingUserID.Error()))
		default:
			abort(c, newUnauthorizedError(services.ErrTokenInvalid.Error()))
		}
		return
	}

	c.Set(userIDCtxKey, userID)
	c.Next()
}

func getStringFromContext(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok && str != ""
}
