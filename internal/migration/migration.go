package migration

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations applies every embedded *.up.sql file in lexical order,
// recording applied versions in schema_migrations so restarts are no-ops.
func RunMigrations(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	if err := db.WithContext(ctx).Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)`,
	).Error; err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := embeddedMigrations.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var applied int64
		if err := db.WithContext(ctx).Raw(
			`SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, name,
		).Scan(&applied).Error; err != nil {
			return err
		}
		if applied > 0 {
			continue
		}

		contents, err := embeddedMigrations.ReadFile(migrationsDir + "/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(contents)).Error; err != nil {
				return err
			}
			return tx.Exec(
				`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
				name, time.Now().UTC(),
			).Error
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		log.Info("migration applied", zap.String("version", name))
	}

	return nil
}

// Module applies migrations during dependency construction so later invokes
// see a fully migrated schema.
var Module = fx.Module("migration",
	fx.Invoke(func(db *gorm.DB, log *zap.Logger) error {
		return RunMigrations(context.Background(), db, log.Named("migration"))
	}),
)
