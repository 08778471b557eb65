// Package leadrouting provides the admin routing bounded context:
// redistribution, close-out, overwrite re-sync and the orphan queue.
package leadrouting

import (
	"leadrouter_backend/internal/dashboard/repository"
	apphttp "leadrouter_backend/internal/http"
	"leadrouter_backend/internal/leadrouting/handler"
	"leadrouter_backend/internal/leadrouting/service"
	"leadrouter_backend/internal/routing"
	"leadrouter_backend/platform/logger"
	"leadrouter_backend/platform/validator"
)

// Module is the admin routing bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the routing module with its dependencies.
func NewModule(
	engine *routing.Engine,
	orphans *routing.OrphanProcessor,
	dashboard *repository.Repository,
	stores routing.StoreFactory,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	svc := service.New(engine, orphans, dashboard, stores, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leadrouting"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the admin routing routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Admin.Group("/leads")
	leads.POST("/:id/redistribute", m.handler.Redistribute)
	leads.POST("/:id/close", m.handler.Close)
	leads.POST("/:id/overwrite", m.handler.Overwrite)

	orphans := ctx.Admin.Group("/orphans")
	orphans.GET("", m.handler.ListOrphans)
	orphans.POST("/reprocess", m.handler.ReprocessOrphans)
}

var _ apphttp.Module = (*Module)(nil)
