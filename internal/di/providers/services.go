package providers

import (
	"github.com/samber/do/v2"

	"github.com/marginaliaapp/marginalia-server/internal/config"
	"github.com/marginaliaapp/marginalia-server/internal/logger"
	"github.com/marginaliaapp/marginalia-server/internal/service"
	"github.com/marginaliaapp/marginalia-server/internal/validation"
)

// ProvideLibraryService provides the memo library service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideCatalogService provides the book catalog search service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	clientHandle := do.MustInvoke[*CatalogClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(clientHandle.Client, log.Logger, cfg.Catalog.MaxResults, cfg.Catalog.CacheTTL), nil
}
