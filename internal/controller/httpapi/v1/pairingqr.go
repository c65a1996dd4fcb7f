package v1

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/signage-toolkit/gateway/internal/repository/codes"
	"github.com/signage-toolkit/gateway/pkg/logger"
)

const _qrSize = 256

type pairingRoutes struct {
	claimURLBase string
	codeLength   int
	l            logger.Interface
}

// NewPairingRoutes mounts the QR rendering of a pairing code so displays can
// show a scannable claim link next to the typable code.
func NewPairingRoutes(handler *gin.RouterGroup, claimURLBase string, codeLength int, l logger.Interface) {
	r := &pairingRoutes{claimURLBase, codeLength, l}

	handler.GET("/pairing/:code/qr", r.qr)
}

func (r *pairingRoutes) qr(c *gin.Context) {
	code := c.Param("code")
	if !codes.IsValid(code, r.codeLength) {
		ErrorResponse(c, codes.ErrNotFound)

		return
	}

	// The QR is rendered without consulting the registry: it must work the
	// moment the code is on screen, and resolving it here would leak whether
	// a code exists to unauthenticated callers.
	link := r.claimURLBase + "?code=" + url.QueryEscape(code)

	png, err := qrcode.Encode(link, qrcode.Medium, _qrSize)
	if err != nil {
		r.l.Error(err, "http - v1 - pairing qr")
		ErrorResponse(c, err)

		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
