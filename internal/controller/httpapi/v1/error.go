package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/signage-toolkit/gateway/internal/repository/codes"
	"github.com/signage-toolkit/gateway/internal/repository/kvstore"
	"github.com/signage-toolkit/gateway/internal/repository/sessions"
	"github.com/signage-toolkit/gateway/internal/usecase/pairing"
	"github.com/signage-toolkit/gateway/internal/usecase/relay"
)

type response struct {
	Error string `json:"error"`
}

// ErrorResponse maps domain errors onto HTTP statuses.
func ErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, codes.ErrNotFound), errors.Is(err, sessions.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, response{"not found"})
	case errors.Is(err, codes.ErrExpired):
		c.AbortWithStatusJSON(http.StatusGone, response{"code expired"})
	case errors.Is(err, codes.ErrAlreadyConsumed):
		c.AbortWithStatusJSON(http.StatusConflict, response{"code already claimed"})
	case errors.Is(err, pairing.ErrDisplayNoLongerAvailable):
		c.AbortWithStatusJSON(http.StatusGone, response{"display no longer available"})
	case errors.Is(err, relay.ErrTargetOffline):
		c.AbortWithStatusJSON(http.StatusConflict, response{"display offline"})
	case errors.Is(err, kvstore.ErrTimeout), errors.Is(err, kvstore.ErrUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, response{"store unavailable, try again"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, response{"internal error"})
	}
}
