package app

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adanyl0v/go-taskboard/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var globalPostgresPool *pgxpool.Pool

func MustConnectPostgres() {
	cfg := config.Global().Postgres

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	globalPostgresPool, err = pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = globalPostgresPool.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}
	globalLogger.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Uint16("port", poolCfg.ConnConfig.Port).
		Str("database", poolCfg.ConnConfig.Database).
		Msg("connected to postgres")
}

// MustMigratePostgres applies the embedded schema files in name order.
// Every statement is idempotent, so this runs on each start.
func MustMigratePostgres() {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to list migrations")
		panic(err)
	}
	sort.Strings(names)

	ctx := context.Background()
	for _, name := range names {
		query, err := migrationsFS.ReadFile(name)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Str("migration", name).
				Msg("failed to read migration")
			panic(err)
		}

		_, err = globalPostgresPool.Exec(ctx, string(query))
		if err != nil {
			globalLogger.Error().
				Err(err).
				Str("migration", name).
				Msg("failed to apply migration")
			panic(err)
		}
		globalLogger.Debug().
			Str("migration", name).
			Msg("applied migration")
	}
	globalLogger.Info().
		Int("count", len(names)).
		Msg("migrated postgres")
}

func DisconnectPostgres() {
	globalPostgresPool.Close()
	globalLogger.Info().Msg("disconnected from postgres")
}
