package middleware

import (
	"errors"
	"net/http"
	"strings"

	"court_transfer_app_go/db"
	"court_transfer_app_go/logging"
	"court_transfer_app_go/models"
	"court_transfer_app_go/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// ContextKeyUser is the context key for the authenticated user
	ContextKeyUser = "user"
	// ContextKeyClaims is the context key for the validated token claims
	ContextKeyClaims = "claims"
)

func unauthorized(c echo.Context, message string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="court-transfer"`)
	return echo.NewHTTPError(http.StatusUnauthorized, message)
}

// RequireAuth validates the bearer token and loads the identity it names
func RequireAuth(issuer *services.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				return unauthorized(c, "Missing bearer token")
			}

			claims, err := issuer.ParseToken(strings.TrimSpace(raw))
			if err != nil {
				return unauthorized(c, "Invalid or expired token")
			}

			user, err := services.GetUserByID(db.DB.WithContext(c.Request().Context()), claims.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return unauthorized(c, "Invalid or expired token")
				}
				return err
			}
			if user.RegistrationNumber != claims.RegistrationNumber {
				return unauthorized(c, "Invalid or expired token")
			}

			c.Set(ContextKeyUser, user)
			c.Set(ContextKeyClaims, claims)
			return next(c)
		}
	}
}

// RequirePermission admits callers holding at least one of the named permissions
func RequirePermission(names ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil {
				return unauthorized(c, "Not authenticated")
			}

			ok, err := services.Authorize(db.DB.WithContext(c.Request().Context()), user.ID, names...)
			if err != nil {
				return err
			}
			if !ok {
				logging.L().Info("permission denied",
					zap.Int("registration_number", user.RegistrationNumber),
					zap.Strings("required", names),
					zap.String("path", c.Path()),
				)
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

// HasAnyPermission reports whether the current user holds one of names
func HasAnyPermission(c echo.Context, names ...string) (bool, error) {
	user := GetCurrentUser(c)
	if user == nil {
		return false, nil
	}
	return services.Authorize(db.DB.WithContext(c.Request().Context()), user.ID, names...)
}

// GetCurrentUser retrieves the current user from context
func GetCurrentUser(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetClaims retrieves the validated token claims from context
func GetClaims(c echo.Context) *services.Claims {
	claims, ok := c.Get(ContextKeyClaims).(*services.Claims)
	if !ok {
		return nil
	}
	return claims
}
