package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"visitor-registration/internal/badge"
	"visitor-registration/internal/storage"
	"visitor-registration/internal/utils"
	"visitor-registration/internal/visitors"
)

// getEngine pulls the lifecycle engine injected by the server middleware.
func getEngine(c *gin.Context) (*visitors.Engine, bool) {
	iface, exists := c.Get("Engine")
	if !exists {
		AbortWithError(c, ErrStorageProviderNotFound)
		return nil, false
	}
	engine, ok := iface.(*visitors.Engine)
	if !ok {
		AbortWithError(c, ErrInvalidStorageProvider)
		return nil, false
	}
	return engine, true
}

func visitorJSON(v storage.Visitor) gin.H {
	var checkedOut any
	if v.CheckedOutAt != nil {
		checkedOut = v.CheckedOutAt.Format(time.RFC3339)
	}
	return gin.H{
		"id":             v.ID,
		"name":           v.Name,
		"email":          v.Email,
		"phone":          v.Phone,
		"company":        v.Company,
		"host":           v.Host,
		"reason":         v.Reason,
		"checked_in_at":  v.CheckedInAt.Format(time.RFC3339),
		"checked_out_at": checkedOut,
		"status":         v.Status,
	}
}

func visitorsJSON(records []storage.Visitor) []gin.H {
	out := make([]gin.H, 0, len(records))
	for _, v := range records {
		out = append(out, visitorJSON(v))
	}
	return out
}

type registerRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Company string `json:"company" form:"company"`
	Host    string `json:"host" form:"host"`
	Reason  string `json:"reason" form:"reason"`
}

type checkoutRequest struct {
	// Name carried along from the search result, used for the farewell
	// message. Never re-fetched: the record may already read departed by
	// the time it is displayed.
	Name string `json:"name" form:"name"`
}

func VisitorRoutes(r *gin.RouterGroup) {

	// Register a new visitor (check-in form submission)
	r.POST("", func(c *gin.Context) {
		engine, ok := getEngine(c)
		if !ok {
			return
		}

		var req registerRequest
		if err := c.ShouldBind(&req); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
			return
		}

		result, err := engine.Register(c.Request.Context(), visitors.Registration{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Company: req.Company,
			Host:    req.Host,
			Reason:  req.Reason,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}

		// Single-use self-checkout badge, rendered as a QR on the
		// confirmation page.
		token, err := badge.GenerateJWT(badge.NewBadgeClaim(result.ID, result.Name))
		if err != nil {
			slog.Error("Failed to generate badge token", "error", err, "id", result.ID)
			AbortWithError(c, ErrInternalServer)
			return
		}
		checkoutURL := utils.UrlFor(c, "/checkout/"+token)

		// Best effort: tell the host their visitor has arrived.
		notifyHost(c, req.Host, result.Name, req.Company)

		c.JSON(http.StatusCreated, gin.H{
			"success":      true,
			"id":           result.ID,
			"name":         result.Name,
			"checkout_url": checkoutURL,
		})
	})

	// All currently present visitors, most recent check-in first
	r.GET("", func(c *gin.Context) {
		engine, ok := getEngine(c)
		if !ok {
			return
		}

		present, err := engine.History(c.Request.Context(), visitors.FilterPresent)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count":    len(present),
			"visitors": visitorsJSON(present),
		})
	})

	// Search present visitors for checkout
	r.GET("/search", func(c *gin.Context) {
		engine, ok := getEngine(c)
		if !ok {
			return
		}

		matches, err := engine.Search(c.Request.Context(), c.Query("q"))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		// Zero matches is a valid outcome, not an error.
		c.JSON(http.StatusOK, gin.H{
			"count":    len(matches),
			"visitors": visitorsJSON(matches),
		})
	})

	// Staff-side checkout of a visitor found via search
	r.POST("/:id/checkout", func(c *gin.Context) {
		engine, ok := getEngine(c)
		if !ok {
			return
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: id", ErrInvalidParameter))
			return
		}

		var req checkoutRequest
		c.ShouldBind(&req) // name is optional

		ok, err = engine.Checkout(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !ok {
			AbortWithError(c, ErrCheckoutConflict)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"id":      id,
			"name":    req.Name,
		})
	})

	// Full visitor log with optional status filter
	r.GET("/history", func(c *gin.Context) {
		engine, ok := getEngine(c)
		if !ok {
			return
		}

		filter := visitors.ParseStatusFilter(c.Query("status"))
		records, err := engine.History(c.Request.Context(), filter)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count":    len(records),
			"status":   filter,
			"visitors": visitorsJSON(records),
		})
	})

	// CSV export of the (filtered) visitor log
	r.GET("/export.csv", func(c *gin.Context) {
		engine, ok := getEngine(c)
		if !ok {
			return
		}

		filter := visitors.ParseStatusFilter(c.Query("status"))
		records, err := engine.History(c.Request.Context(), filter)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		excel := c.Query("excel") != ""
		filename := fmt.Sprintf("visitors_export_%s.csv", time.Now().Format("20060102_150405"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Header("Content-Type", "text/csv")

		if err := visitors.WriteCSV(c.Writer, records, excel); err != nil {
			slog.Error("CSV export failed", "error", err)
		}
	})

	// Bulk purge of departed visitors. Irreversible; the dashboard asks the
	// operator for confirmation before calling this.
	r.DELETE("/departed", func(c *gin.Context) {
		engine, ok := getEngine(c)
		if !ok {
			return
		}

		count, err := engine.PurgeDeparted(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"deleted": count,
		})
	})
}

// StatsRoute exposes the dashboard aggregates.
func StatsRoute(r *gin.RouterGroup) {
	r.GET("/stats", func(c *gin.Context) {
		engine, ok := getEngine(c)
		if !ok {
			return
		}

		counts, err := engine.CountVisitors(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total":    counts.Total,
			"active":   counts.Active,
			"departed": counts.Departed,
		})
	})
}
