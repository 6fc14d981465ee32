package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"visitor-registration/internal/config"
)

// The HTML shell: four pages mirroring the front-desk tablet tabs. All
// business rules live behind the /api endpoints; these handlers only render.
func PageRoutes(r *gin.Engine) {

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/register")
	})

	r.GET("/register", func(c *gin.Context) {
		HTML(c, http.StatusOK, "register", nil)
	})

	r.GET("/checkout", func(c *gin.Context) {
		HTML(c, http.StatusOK, "checkout", nil)
	})

	r.GET("/dashboard", func(c *gin.Context) {
		HTML(c, http.StatusOK, "dashboard", nil)
	})

	r.GET("/admin", func(c *gin.Context) {
		HTML(c, http.StatusOK, "admin", gin.H{
			"SupportURL": config.Cfg.SupportURL,
		})
	})
}
