package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"medicatalog/internal/domain"
)

// Language picks the display language: ?lang=, then the lang cookie, then
// fallback. A valid ?lang= is remembered in the cookie.
func Language(fallback domain.Language, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := fallback
		if l, err := domain.ParseLanguage(c.Cookies("lang")); err == nil {
			lang = l
		}
		if q := c.Query("lang"); q != "" {
			if l, err := domain.ParseLanguage(q); err == nil {
				lang = l
				c.Cookie(&fiber.Cookie{
					Name: "lang", Value: string(l), Path: "/",
					Expires:  time.Now().Add(365 * 24 * time.Hour),
					SameSite: fiber.CookieSameSiteLaxMode, Secure: secure,
				})
			}
		}
		c.Locals("lang", string(lang))
		return c.Next()
	}
}

func Lang(c *fiber.Ctx) domain.Language {
	if s, ok := c.Locals("lang").(string); ok {
		if l, err := domain.ParseLanguage(s); err == nil {
			return l
		}
	}
	return domain.BaseLanguage
}
