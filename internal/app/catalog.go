package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rootly-app/rootly/internal/catalog"
	"github.com/rootly-app/rootly/internal/config"
)

// ImportCatalog loads plants from a JSON file or URL into the configured
// database. An empty source falls back to the configured catalogue source.
func ImportCatalog(ctx context.Context, cfg config.AppConfig, source string) (catalog.StoreReport, error) {
	serverCfg, errLoad := LoadConfig(cfg)
	if errLoad != nil {
		return catalog.StoreReport{}, errLoad
	}
	if strings.TrimSpace(source) == "" {
		source = serverCfg.Catalog.Source
	}
	if strings.TrimSpace(source) == "" {
		return catalog.StoreReport{}, fmt.Errorf("no catalog source given")
	}

	conn, errOpen := openDatabase(serverCfg)
	if errOpen != nil {
		return catalog.StoreReport{}, errOpen
	}
	defer closeDatabase(conn)

	return catalog.NewSyncer(conn, source, 0).SyncOnce(ctx)
}
