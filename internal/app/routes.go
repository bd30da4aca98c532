package app

import (
	"github.com/berea-app/core/internal/middleware"
	"github.com/berea-app/core/internal/modules/account"
	"github.com/berea-app/core/internal/modules/anonsession"
	"github.com/berea-app/core/internal/modules/generation"
	"github.com/berea-app/core/internal/modules/guide"
	"github.com/berea-app/core/internal/modules/health"
	pkgredis "github.com/berea-app/core/internal/pkg/redis"
	"github.com/berea-app/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	engine := generation.NewEngine(a.cfg.AI)
	guideSvc := guide.NewService(db, a.cfg.Guide, engine.Generate, a.logger)

	api := r.Group("/api/v1")

	health.RegisterRoutes(api, db, a.sched, middleware.Auth(db))

	account.NewHandler(account.NewService(db)).RegisterRoutes(api, db)
	anonsession.NewHandler(a.cfg.Guide).RegisterRoutes(api)
	guide.NewHandler(guideSvc).RegisterRoutes(api, middleware.Principal(db))
}
