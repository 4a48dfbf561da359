package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"

	"court_transfer_app_go/db"
	"court_transfer_app_go/metrics"
	"court_transfer_app_go/models"
	"court_transfer_app_go/services"

	"github.com/labstack/echo/v4"
)

// ContextKeyAuditActor lets a handler name the actor when no authenticated
// user is present (login records the registration number it was given)
const ContextKeyAuditActor = "audit_actor"

const (
	auditStarted   = "Action started"
	auditCompleted = "Action successfully completed"
	auditFailed    = "There was an error during the action"
	// genericFailure is all a caller learns about an internal fault
	genericFailure = "An unexpected error occurred. Please try again later."
)

// AuditActor returns the identifier recorded for the current caller
func AuditActor(c echo.Context) string {
	if user := GetCurrentUser(c); user != nil {
		return strconv.Itoa(user.RegistrationNumber)
	}
	if actor, ok := c.Get(ContextKeyAuditActor).(string); ok && actor != "" {
		return actor
	}
	return models.AnonymousActor
}

// AuditIP returns the caller address, naming loopback explicitly
func AuditIP(c echo.Context) string {
	ip := c.RealIP()
	if ip == "::1" || ip == "127.0.0.1" {
		return "Localhost"
	}
	return ip
}

// Audited records the start and the outcome of one operation. Client errors
// are recorded as rejections and passed through. Any other error or a panic
// is recorded with its detail and the caller receives a generic 500.
func Audited(component, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			auditor := services.NewAuditLogger(db.DB)
			ctx := context.WithoutCancel(c.Request().Context())

			record := func(level, message, failure string) {
				// Record surfaces its own failures through the process log
				_ = auditor.Record(ctx, services.AuditEntry{
					Level:     level,
					Actor:     AuditActor(c),
					Component: component,
					Action:    action,
					Message:   message,
					Failure:   failure,
					IPAddress: AuditIP(c),
				})
			}
			outcome := func(name string) {
				metrics.WorkflowOperations.WithLabelValues(component, action, name).Inc()
			}

			record(models.LogLevelInfo, auditStarted, "")

			defer func() {
				if r := recover(); r != nil {
					record(models.LogLevelError, auditFailed, fmt.Sprintf("panic: %v\n%s", r, debug.Stack()))
					outcome("failed")
					err = echo.NewHTTPError(http.StatusInternalServerError, genericFailure)
				}
			}()

			err = next(c)
			if err == nil {
				record(models.LogLevelInfo, auditCompleted, "")
				outcome("completed")
				return nil
			}

			var he *echo.HTTPError
			if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
				record(models.LogLevelInfo, fmt.Sprintf("Action rejected: %v", he.Message), "")
				outcome("rejected")
				return err
			}

			record(models.LogLevelError, auditFailed, err.Error())
			outcome("failed")
			return echo.NewHTTPError(http.StatusInternalServerError, genericFailure)
		}
	}
}
