// Package intake provides the public lead intake bounded context: draft
// sessions and direct capture.
package intake

import (
	"leadrouter_backend/internal/dashboard/repository"
	apphttp "leadrouter_backend/internal/http"
	"leadrouter_backend/internal/intake/handler"
	"leadrouter_backend/internal/intake/service"
	"leadrouter_backend/internal/intake/session"
	"leadrouter_backend/internal/routing"
	"leadrouter_backend/internal/taxonomy"
	"leadrouter_backend/platform/config"
	"leadrouter_backend/platform/logger"
	"leadrouter_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// Module is the intake bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the intake module with its dependencies.
func NewModule(
	engine *routing.Engine,
	dashboard *repository.Repository,
	stores routing.StoreFactory,
	rdb *redis.Client,
	sessionCfg config.SessionConfig,
	tax *taxonomy.Taxonomy,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	sessions := session.New(rdb, sessionCfg)
	svc := service.New(engine, dashboard, stores, sessions, tax, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "intake"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the public intake routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/intake", ctx.IntakeRateLimiter.RateLimit())
	group.POST("/sessions/:id", m.handler.PatchSession)
	group.GET("/sessions/:id", m.handler.GetSession)
	group.DELETE("/sessions/:id", m.handler.DeleteSession)
	group.POST("/sessions/:id/submit", m.handler.SubmitSession)
	group.POST("/leads", m.handler.Capture)
}

var _ apphttp.Module = (*Module)(nil)
