// Package roster provides the consultant roster bounded context: admin
// CRUD, advisory lead counters and the closed-lead deletion watcher.
package roster

import (
	"context"

	"leadrouter_backend/internal/dashboard/repository"
	"leadrouter_backend/internal/events"
	apphttp "leadrouter_backend/internal/http"
	"leadrouter_backend/internal/roster/handler"
	"leadrouter_backend/internal/roster/service"
	"leadrouter_backend/internal/routing"
	"leadrouter_backend/platform/logger"
	"leadrouter_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// Module is the roster bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	watcher *service.Watcher
	log     *logger.Logger
}

// NewModule creates and initializes the roster module with its dependencies.
func NewModule(
	repo *repository.Repository,
	stores routing.StoreFactory,
	notifier routing.Notifier,
	rdb *redis.Client,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	svc := service.New(repo, log)
	watcher := service.NewWatcher(repo, stores, notifier, rdb, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, watcher: watcher, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "roster"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Watcher returns the deletion watcher for the scheduler.
func (m *Module) Watcher() *service.Watcher {
	return m.watcher
}

// RegisterRoutes mounts the admin roster routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/consultants")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Register)
	group.PATCH("/:id", m.handler.Update)
}

// RegisterHandlers subscribes the counter bookkeeping to routing events.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadCaptured{}.EventName(), m)
	bus.Subscribe(events.LeadRedistributed{}.EventName(), m)
	bus.Subscribe(events.LeadClosed{}.EventName(), m)
}

// Handle routes events to the counter bookkeeping.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCaptured:
		return m.service.RecordCapture(ctx, e.StoreID)
	case events.LeadRedistributed:
		return m.service.RecordCapture(ctx, e.ToStoreID)
	case events.LeadClosed:
		return m.service.RecordClose(ctx, e.StoreID)
	default:
		return nil
	}
}

var _ apphttp.Module = (*Module)(nil)
