package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"visitor-registration/internal/badge"
)

// Self-checkout: the confirmation QR from registration points here. One
// scan verifies the badge, burns its nonce, and checks the visitor out.
func CheckoutRoute(r *gin.RouterGroup) {

	r.GET("/:token", func(c *gin.Context) {
		engine, ok := getEngine(c)
		if !ok {
			return
		}

		claim, err := badge.DecodeBadgeJWT(c.Request.Context(), c.Param("token"))
		if err != nil {
			slog.Debug("Invalid badge token", "error", err)
			AbortWithError(c, err)
			return
		}

		done, err := engine.Checkout(c.Request.Context(), claim.VisitorID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !done {
			// Already departed, e.g. the desk checked them out first.
			AbortWithError(c, ErrCheckoutConflict)
			return
		}

		slog.Info("Self-checkout via badge", "id", claim.VisitorID)
		HTML(c, http.StatusOK, "goodbye", gin.H{
			"Name": claim.Name,
		})
	})
}
