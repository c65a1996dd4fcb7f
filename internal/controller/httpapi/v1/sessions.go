package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/internal/entity/dto/v1"
	"github.com/signage-toolkit/gateway/pkg/logger"
)

// SessionsFeature is the slice of the pairing usecase the session routes use.
type SessionsFeature interface {
	ListSessions(ctx context.Context, controllerPrincipalID string) ([]entity.Session, error)
	Unpair(ctx context.Context, controllerPrincipalID, displayID string) error
	Revoke(ctx context.Context, displayID string) error
}

type sessionRoutes struct {
	p SessionsFeature
	l logger.Interface
}

// NewSessionRoutes -.
func NewSessionRoutes(handler *gin.RouterGroup, p SessionsFeature, l logger.Interface) {
	r := &sessionRoutes{p, l}

	h := handler.Group("/sessions")
	{
		h.GET("", r.list)
		h.DELETE("/:displayID", r.unpair)
	}
}

// NewAdminRoutes -.
func NewAdminRoutes(handler *gin.RouterGroup, p SessionsFeature, l logger.Interface) {
	r := &sessionRoutes{p, l}

	handler.POST("/displays/:displayID/revoke", r.revoke)
}

func (r *sessionRoutes) list(c *gin.Context) {
	bound, err := r.p.ListSessions(c.Request.Context(), Principal(c))
	if err != nil {
		r.l.Error(err, "http - v1 - list sessions")
		ErrorResponse(c, err)

		return
	}

	out := make([]dto.Session, 0, len(bound))
	for i := range bound {
		out = append(out, dto.FromSession(bound[i]))
	}

	c.JSON(http.StatusOK, out)
}

func (r *sessionRoutes) unpair(c *gin.Context) {
	if err := r.p.Unpair(c.Request.Context(), Principal(c), c.Param("displayID")); err != nil {
		r.l.Error(err, "http - v1 - unpair")
		ErrorResponse(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (r *sessionRoutes) revoke(c *gin.Context) {
	if err := r.p.Revoke(c.Request.Context(), c.Param("displayID")); err != nil {
		r.l.Error(err, "http - v1 - revoke display")
		ErrorResponse(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}
