package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/signage-toolkit/gateway/internal/entity/dto/v1"
)

type versionRoute struct {
	version   string
	processID string
}

// NewVersionRoute -.
func NewVersionRoute(version, processID string) gin.HandlerFunc {
	r := &versionRoute{version, processID}

	return r.handle
}

func (r *versionRoute) handle(c *gin.Context) {
	c.JSON(http.StatusOK, dto.Version{
		Version:   r.version,
		ProcessID: r.processID,
	})
}
