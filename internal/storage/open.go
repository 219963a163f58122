package storage

import (
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/facturacr/facturacr/internal/config"
)

// Open selects the storage backend once at startup: remote PostgreSQL when
// configured and reachable, otherwise the local SQLite file, otherwise an
// in-memory store. The fallback is transparent; callers only ever see the
// Store interface.
func Open(cfg config.DatabaseConfig, log zerolog.Logger) Store {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	if cfg.Remote() {
		db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if err == nil {
			store, merr := NewGormStore(db)
			if merr == nil {
				log.Info().Str("backend", "postgres").Str("host", cfg.Host).Msg("storage ready")
				return store
			}
			err = merr
		}
		log.Warn().Err(err).Msg("remote database unavailable, falling back to local store")
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), gormCfg)
	if err == nil {
		store, merr := NewGormStore(db)
		if merr == nil {
			log.Info().Str("backend", "sqlite").Str("path", cfg.Path).Msg("storage ready")
			return store
		}
		err = merr
	}
	log.Warn().Err(err).Msg("local database unavailable, using in-memory store")
	return NewMemoryStore()
}
