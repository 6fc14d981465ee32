package routes

import (
	"fmt"
	"html"
	"log/slog"

	"github.com/gin-gonic/gin"

	"visitor-registration/internal/email"
	"visitor-registration/internal/hosts"
)

// notifyHost emails the visited person that their visitor has arrived.
// Strictly best effort: a missing directory entry or SMTP failure is logged
// and never fails the registration.
func notifyHost(c *gin.Context, hostName, visitorName, company string) {
	dirIface, exists := c.Get("Hosts")
	if !exists {
		return
	}
	dir, ok := dirIface.(*hosts.Directory)
	if !ok || dir == nil {
		return
	}

	mailerIface, exists := c.Get("Mailer")
	if !exists {
		return
	}
	mailer, ok := mailerIface.(*email.Client)
	if !ok || mailer == nil {
		return
	}

	host, found := dir.Find(hostName)
	if !found {
		slog.Debug("Host not in directory, skipping notification", "host", hostName)
		return
	}

	msg := &email.Message{
		To:      []string{host.Email},
		Subject: fmt.Sprintf("Your visitor %s has arrived", visitorName),
		HTML: fmt.Sprintf(
			`<p>Hi %s,</p><p><strong>%s</strong> (%s) has just checked in at the front desk and is waiting for you.</p>`,
			html.EscapeString(host.Name),
			html.EscapeString(visitorName),
			html.EscapeString(company),
		),
	}

	// Delivery happens off the request path; registration never waits on SMTP.
	go func() {
		if err := mailer.Send(msg); err != nil {
			slog.Warn("Failed to send host notification", "error", err, "host", host.Name)
		}
	}()
}
