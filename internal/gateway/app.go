package gateway

import (
	"github.com/colonyops/writegate/internal/core/config"
	"github.com/colonyops/writegate/internal/core/ledger"
)

// App bundles the shared dependencies commands operate on. It is populated
// once in the CLI's Before hook; commands hold a pointer to it.
type App struct {
	Service *Service
	Ledger  ledger.Store
	Config  *config.Config
}

// NewApp creates an App with the given dependencies.
func NewApp(service *Service, store ledger.Store, cfg *config.Config) *App {
	return &App{
		Service: service,
		Ledger:  store,
		Config:  cfg,
	}
}
