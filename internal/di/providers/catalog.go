package providers

import (
	"github.com/samber/do/v2"

	"github.com/marginaliaapp/marginalia-server/internal/catalog"
	"github.com/marginaliaapp/marginalia-server/internal/config"
	"github.com/marginaliaapp/marginalia-server/internal/logger"
)

// CatalogClientHandle wraps the catalog client with shutdown capability.
type CatalogClientHandle struct {
	*catalog.Client
}

// Shutdown implements do.Shutdownable.
func (h *CatalogClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideCatalogClient provides the Google Books catalog client.
func ProvideCatalogClient(i do.Injector) (*CatalogClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var opts []catalog.Option
	if cfg.Catalog.APIKey != "" {
		opts = append(opts, catalog.WithAPIKey(cfg.Catalog.APIKey))
	}

	client := catalog.NewClient(log.Logger, opts...)

	log.Info("Catalog client initialized", "keyed", cfg.Catalog.APIKey != "")

	return &CatalogClientHandle{Client: client}, nil
}
