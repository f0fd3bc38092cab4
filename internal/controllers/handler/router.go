package handler

import (
	"community/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Router struct {
	handler Handler
	mw      Middleware
	app     *fiber.App
	conf    *config.Config
	logger  *zap.SugaredLogger
}

// Middleware - сессионные и авторизационные прослойки поверх handler-а
type Middleware interface {
	SessionMiddleware(c *fiber.Ctx) error
	RequireAuth(c *fiber.Ctx) error
	RequireAdmin(c *fiber.Ctx) error
}

func NewRouter(handler Handler, mw Middleware, app *fiber.App, conf *config.Config, logger *zap.SugaredLogger) *Router {
	return &Router{
		logger:  logger,
		app:     app,
		conf:    conf,
		handler: handler,
		mw:      mw,
	}
}

func (r *Router) RegisterRouter() {
	r.app.Get("/health", r.handler.HealthCheck)
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	r.app.Use(
		recover.New(recover.Config{
			EnableStackTrace: true,
		}),
		logger.New(),
	)

	r.app.Use("/community/swagger/*", swagger.New(swagger.Config{
		DeepLinking: false,
		URL:         "/community/swagger/doc.json",
	}))

	// Сессия читается на каждом запросе к API; отсутствие principal-а
	// не ошибка, дальше решают RequireAuth/RequireAdmin
	api := r.app.Group("/api", r.mw.SessionMiddleware)

	api.Get("/auth/bootstrap", r.handler.AuthBootstrap)

	api.Get("/users/me", r.mw.RequireAuth, r.handler.GetMyProfile)
	api.Patch("/users/me", r.mw.RequireAuth, r.handler.UpdateMyProfile)
	api.Delete("/users/me", r.mw.RequireAuth, r.handler.DeleteMyAccount)

	api.Get("/members", r.handler.ListMembers)

	// Доступ по opaque-токену из письма, аутентификация не требуется
	api.Get("/email/manage/:token", r.handler.GetEmailPreferences)
	api.Post("/email/manage/:token", r.handler.UpdateEmailPreferences)

	v1 := api.Group("/v1")

	v1.Get("/events", r.handler.GetEventsByPeriod)
	v1.Post("/events", r.mw.RequireAdmin, r.handler.CreateEvent)
	v1.Patch("/events", r.mw.RequireAdmin, r.handler.UpdateEvent)
	v1.Delete("/events/:id", r.mw.RequireAdmin, r.handler.DeleteEvent)
}
