package handler

import (
	"strings"

	"community/internal/appers"
	"community/internal/auth"

	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// SessionMiddleware разбирает client principal и кладёт read-only
// сессию в Locals. Ошибки разбора эквивалентны анонимной сессии.
func (h *HandlerImpl) SessionMiddleware(c *fiber.Ctx) error {
	s := auth.ParsePrincipal(c.Get(auth.PrincipalHeader), h.conf.Auth.AdminRole)
	c.Locals(sessionKey, s)
	return c.Next()
}

func sessionFrom(c *fiber.Ctx) auth.Session {
	if s, ok := c.Locals(sessionKey).(auth.Session); ok {
		return s
	}
	return auth.Anonymous()
}

// RequireAuth пропускает только аутентифицированные запросы
func (h *HandlerImpl) RequireAuth(c *fiber.Ctx) error {
	if !sessionFrom(c).IsAuthenticated {
		return appers.SanitizeError(c, appers.ErrUnauthenticated)
	}
	return c.Next()
}

// RequireAdmin пропускает только администраторов
func (h *HandlerImpl) RequireAdmin(c *fiber.Ctx) error {
	s := sessionFrom(c)
	if !s.IsAuthenticated {
		return appers.SanitizeError(c, appers.ErrUnauthenticated)
	}
	if !s.IsAdmin {
		return appers.SanitizeError(c, appers.ErrForbidden)
	}
	return c.Next()
}

// AuthBootstrap godoc
// @Summary     Auth bootstrap: куда отправить посетителя
// @Description Читает сессию из client principal и выбирает цель редиректа: админ - на админский дашборд, участник - на returnUrl или дефолтный путь. Неаутентифицированному возвращаются login URL-ы по провайдерам.
// @Produce     json
// @Param       returnUrl  query  string false "Относительный или абсолютный адрес возврата"
// @Success     200
// @tags        Auth
// @Router      /api/auth/bootstrap [get]
func (h *HandlerImpl) AuthBootstrap(c *fiber.Ctx) error {
	s := sessionFrom(c)
	policy := auth.RedirectPolicy{
		AdminPath:  h.conf.Auth.AdminPath,
		MemberPath: h.conf.Auth.MemberPath,
	}

	origin := h.conf.Auth.Origin
	if origin == "" {
		origin = c.Protocol() + "://" + c.Hostname()
	}

	res := policy.Resolve(s, c.Query("returnUrl"))
	if res.State == auth.StateRedirecting {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"state":    res.State,
			"location": auth.BuildAbsoluteRedirect(origin, res.Location),
		})
	}

	// idle: рендерим варианты входа по включенным провайдерам
	logins := fiber.Map{}
	for _, p := range strings.Split(h.conf.Auth.Providers, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		target := c.Query("returnUrl")
		if target == "" {
			target = h.conf.Auth.MemberPath
		}
		logins[p] = auth.BuildLoginURL(auth.IdentityProvider(p), origin, target)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"state":  res.State,
		"logins": logins,
		"logout": auth.BuildLogoutURL(origin, "/"),
	})
}
