package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"medicatalog/internal/domain"
	"medicatalog/internal/log"
	"medicatalog/internal/services"
	"medicatalog/internal/validate"
)

type AuthHandler struct {
	Auth     *services.AuthService
	Sessions *Sessions
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx) error {
	c.Status(fiber.StatusUnauthorized)
	return render(c, "login", fiber.Map{"Err": "Invalid email or password"})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return h.loginFailed(c)
	}
	if !validate.Password(pass) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return h.loginFailed(c)
	}

	_, err := h.Auth.Login(c.UserContext(), sid, email, pass)
	if err != nil {
		if !errors.Is(err, services.ErrBadCreds) {
			log.Error(c, "auth.login.error", err, nil)
		}
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return h.loginFailed(c)
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	_ = h.Auth.Logout(c.UserContext(), sid)
	h.Sessions.expire(c)
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}

// POST /api/v1/auth/login
func (h *AuthHandler) APILogin(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	email, ok := validate.Email(body.Email)
	if !ok || !validate.Password(body.Password) {
		log.Security(c, "auth.login.fail", map[string]any{"email": body.Email, "reason": "bad_format", "api": true})
		return writeError(c, services.ErrBadCreds)
	}
	tok, u, err := h.Auth.IssueToken(c.UserContext(), email, body.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "api": true})
		return writeError(c, err)
	}
	log.Audit(c, "auth.token.issued", map[string]any{"email": email})
	return c.JSON(fiber.Map{
		"token": tok,
		"user":  fiber.Map{"id": u.ID, "email": u.Email, "role": u.Role},
	})
}

// POST /api/v1/auth/register
func (h *AuthHandler) APIRegister(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	email, ok := validate.Email(body.Email)
	if !ok {
		return writeError(c, domain.Invalid("email", "enter a valid email address"))
	}
	if !validate.Password(body.Password) {
		return writeError(c, domain.Invalid("password", "8 to 64 characters with lower and upper case, a digit and a symbol"))
	}
	name, ok := validate.ContactName(body.Name)
	if !ok {
		return writeError(c, domain.Invalid("name", "required, at most 80 characters"))
	}
	tok, u, err := h.Auth.Register(c.UserContext(), email, body.Password, name)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			log.Security(c, "auth.register.duplicate", map[string]any{"email": email})
		}
		return writeError(c, err)
	}
	log.Audit(c, "auth.register", map[string]any{"email": email, "user": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": tok,
		"user":  fiber.Map{"id": u.ID, "email": u.Email, "role": u.Role},
	})
}
