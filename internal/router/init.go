package router

import (
	"github.com/oksasatya/go-user-registration/internal/container"
	handlers "github.com/oksasatya/go-user-registration/internal/interface/http"
	"github.com/oksasatya/go-user-registration/internal/router/modules"
)

// InitModules builds the feature modules from c and adds them to the registry.
// Call it once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	userHandler := handlers.NewUserHandler(c.Service, c.Logger)
	r.Add(modules.NewUserModule(userHandler, c.Redis, c.Config.SignUpRateLimit))

	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
