package handlers

import (
	"github.com/gofiber/fiber/v2"

	"medicatalog/internal/auth"
	"medicatalog/internal/domain"
	applog "medicatalog/internal/log"
	"medicatalog/internal/services"
)

// Identify attaches the current user to the context, from a bearer token
// when one is sent, else from the session cookie.
func Identify(svc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := auth.BearerToken(c.Get(fiber.HeaderAuthorization)); tok != "" {
			u, err := svc.TokenUser(c.UserContext(), tok)
			if err != nil {
				applog.Security(c, "auth.token.invalid", nil)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
			}
			c.Locals("user", u)
			return c.Next()
		}
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := svc.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// RequireStaff guards the back-office API: ADMIN or EMPLOYE.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		if !auth.HasAnyRole(u.Role, domain.RoleAdmin, domain.RoleEmployee) {
			applog.Security(c, "access.denied.admin", map[string]any{"role": u.Role})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
		}
		return c.Next()
	}
}

// RequireAdmin restricts a route to ADMIN.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil || u.Role != domain.RoleAdmin {
			applog.Security(c, "access.denied.admin", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		return c.Next()
	}
}
