// Package main provides a CLI tool for seeding the database with master data.
package main

import (
	"context"
	"fmt"
	"os"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
	"hydrostock/internal/domain/alerting"
	"hydrostock/internal/domain/auth"
	"hydrostock/internal/infrastructure/storage/postgres"
	"hydrostock/internal/infrastructure/storage/postgres/catalog_repo"
	"hydrostock/pkg/config"
	"hydrostock/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}
	if cfg.Storage != config.DriverPostgres {
		log.Fatalw("seeding needs the postgres storage driver", "storage", cfg.Storage)
	}

	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.URL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to migrate schema", "error", err)
	}

	txm := postgres.NewTxManager(pool, postgres.DefaultTxOptions())

	if err := seedCatalog(ctx, cfg, txm, log); err != nil {
		log.Fatalw("failed to seed catalog", "error", err)
	}

	if cfg.JWT.Secret != "" {
		if err := printDevToken(cfg, log); err != nil {
			log.Warnw("failed to issue development token", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedCatalog(ctx context.Context, cfg *config.Config, txm *postgres.TxManager, log *logger.Logger) error {
	var seeded bool
	if err := txm.GetQuerier(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cat_organizations)`).Scan(&seeded); err != nil {
		return fmt.Errorf("check existing catalog: %w", err)
	}
	if seeded {
		log.Info("catalog already present, skipping import")
		return nil
	}

	catalog := catalog_repo.DemoCatalog()
	if cfg.CatalogFile != "" {
		var err error
		if catalog, err = catalog_repo.LoadCatalog(cfg.CatalogFile); err != nil {
			return err
		}
		log.Infow("loading catalog file", "path", cfg.CatalogFile)
	}

	importer := catalog_repo.NewImporter(txm)
	rules := catalog_repo.NewAlertRuleRepo(txm)

	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		stats, err := importer.Import(ctx, catalog)
		if err != nil {
			return err
		}
		for table, n := range stats {
			log.Infow("imported", "table", table, "rows", n)
		}

		for _, rule := range demoRules(catalog) {
			if err := rules.Create(ctx, &rule); err != nil {
				return fmt.Errorf("create alert rule %q: %w", rule.Name, err)
			}
			log.Infow("created alert rule", "name", rule.Name)
		}
		return nil
	})
}

// demoRules watches chlorine everywhere and any stock of the first warehouse.
func demoRules(c catalog_repo.Catalog) []alerting.Rule {
	var out []alerting.Rule

	if chems := c.Products[entity.ProductKindChemical]; len(chems) > 0 {
		kind := entity.ProductKindChemical
		out = append(out, alerting.Rule{
			ID:          id.New(),
			Name:        "Low " + chems[0].Name,
			ProductKind: &kind,
			ProductID:   &chems[0].ID,
			Threshold:   types.MustQuantity("500"),
			Active:      true,
		})
	}

	if len(c.Locations) > 0 {
		out = append(out, alerting.Rule{
			ID:         id.New(),
			Name:       "Empty shelf at " + c.Locations[0].Code,
			LocationID: &c.Locations[0].ID,
			Threshold:  types.ZeroQuantity(),
			Condition:  "quantity == threshold",
			Active:     true,
		})
	}
	return out
}

func printDevToken(cfg *config.Config, log *logger.Logger) error {
	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtConfig.Issuer = cfg.JWT.Issuer

	actor := os.Getenv("SEED_ACTOR")
	if actor == "" {
		actor = "storekeeper"
	}

	token, expiresAt, err := auth.NewTokenService(jwtConfig).GenerateAccessToken(actor, actor, []string{"storekeeper"})
	if err != nil {
		return err
	}
	log.Infow("development token issued", "actor", actor, "expires_at", expiresAt)
	fmt.Println(token)
	return nil
}
