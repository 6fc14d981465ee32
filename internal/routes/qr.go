package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"visitor-registration/internal/config"
)

// QR encoding of an arbitrary URL, used by the admin page to produce the
// registration-desk poster. Pure URL -> PNG, no relationship to visitor data.
func QRRoute(r *gin.RouterGroup) {

	r.GET("/qr.png", func(c *gin.Context) {
		url := c.Query("url")
		if url == "" {
			AbortWithError(c, fmt.Errorf("%w: url", ErrMissingParameter))
			return
		}

		png, err := qrcode.Encode(url, qrcode.Medium, config.QR_IMAGE_SIZE)
		if err != nil {
			AbortWithError(c, fmt.Errorf("failed to encode QR code: %w", err))
			return
		}

		c.Data(http.StatusOK, "image/png", png)
	})
}
