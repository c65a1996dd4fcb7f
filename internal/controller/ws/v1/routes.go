package wsv1

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/signage-toolkit/gateway/pkg/logger"
)

// RegisterRoutes mounts the realtime endpoints. The display endpoint is
// deliberately unauthenticated; everything a display can do before pairing is
// announce and show a code.
func RegisterRoutes(
	handler *gin.Engine,
	log logger.Interface,
	p PairingService,
	conns ConnectionRegistrar,
	auth Authenticator,
	limiter ClaimLimiter,
	upgrader *websocket.Upgrader,
) {
	display := &displayRoutes{
		p:        p,
		conns:    conns,
		upgrader: upgrader,
		log:      log,
	}

	controller := &controllerRoutes{
		p:        p,
		conns:    conns,
		auth:     auth,
		limiter:  limiter,
		upgrader: upgrader,
		log:      log,
	}

	handler.GET("/ws/v1/display", display.serve)
	handler.GET("/ws/v1/control", controller.serve)
}
