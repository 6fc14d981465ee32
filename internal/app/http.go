package app

import (
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"

	"visitor-registration/internal/config"
	"visitor-registration/internal/routes"
	"visitor-registration/internal/utils"
)

func securityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")

	// Disable caching; the dashboard must never show a stale cached page
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Next()
}

// Middleware to check if the IP is allowed.
func IPAccessControl(allowedCIDRs []string) gin.HandlerFunc {
	// Parse allowed CIDRs
	var parsedCIDRs []*net.IPNet

	// Allow local networks in debug mode
	if os.Getenv("GIN_MODE") != "release" {
		localhostCIDRs := []string{"127.0.0.1/8", "::1/128"}
		allowedCIDRs = append(allowedCIDRs, localhostCIDRs...)
	}

	for _, cidr := range allowedCIDRs {
		_, net, err := net.ParseCIDR(cidr)
		if err != nil {
			slog.Warn("Invalid CIDR", "cidr", cidr)
			continue
		}
		slog.Debug("Allowed CIDR", "cidr", cidr)
		parsedCIDRs = append(parsedCIDRs, net)
	}

	return func(c *gin.Context) {
		clientIP := net.ParseIP(c.ClientIP())
		if clientIP == nil {
			// Should not happen
			slog.Warn("Invalid client IP", "ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		for _, cidr := range parsedCIDRs {
			if cidr.Contains(clientIP) {
				c.Next()
				return
			}
		}
		slog.Warn("IP not allowed", "ip", clientIP)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}

// templateRenderer binds every page template to the shared base layout.
func templateRenderer() multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	pages := []string{"register", "checkout", "dashboard", "admin", "goodbye", "error"}
	for _, page := range pages {
		r.AddFromFiles(page,
			"web/templates/base.html.tmpl",
			"web/templates/"+page+".html.tmpl",
		)
	}
	return r
}

func HTTPServer() *gin.Engine {
	r := gin.Default()

	r.Static("/assets/", "./web/assets/")

	r.HTMLRender = templateRenderer()

	if config.Cfg.AllowedNetworks != "" {
		slog.Debug("Enabling IP access control", "allowed_networks", config.Cfg.AllowedNetworks)
		var allowedCIDRs []string

		for cidr := range strings.SplitSeq(config.Cfg.AllowedNetworks, ",") {
			// Remove spaces and ignore empty sets
			if cidr := strings.TrimSpace(cidr); cidr != "" {
				allowedCIDRs = append(allowedCIDRs, cidr)
			}
		}

		r.Use(IPAccessControl(allowedCIDRs))
	}
	r.Use(securityHeaders)

	// Resolve the base URL once per request for templates and links.
	// Trailing slash is dropped so templates can always append /path.
	r.Use(func(c *gin.Context) {
		c.Set("BaseURL", strings.TrimSuffix(utils.GetBaseURL(c, config.Cfg.BaseURL), "/"))
		c.Next()
	})

	r.Use(routes.ErrorHandler())

	return r
}

// RegisterRoutes wires all HTTP endpoints onto the engine.
func RegisterRoutes(r *gin.Engine) {
	routes.Health(&r.RouterGroup)

	api := r.Group("/api")
	routes.StatsRoute(api)
	routes.QRRoute(api)

	visitors_rg := api.Group("/visitors")
	routes.VisitorRoutes(visitors_rg)

	checkout_rg := r.Group("/checkout")
	routes.CheckoutRoute(checkout_rg)

	routes.PageRoutes(r)
}
