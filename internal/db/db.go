package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"locallibrary/internal/config"
)

const (
	defaultMaxAttempts     = 10
	defaultDelayBetweenTry = 2 * time.Second
)

func open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	if cfg.DBDriver == "sqlite" {
		return gorm.Open(sqlite.Open(cfg.DSN()), gormCfg)
	}
	return gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
}

func ConnectWithRetry(cfg *config.Config) *gorm.DB {
	var db *gorm.DB
	var err error

	for attempt := 1; attempt <= defaultMaxAttempts; attempt++ {
		db, err = open(cfg)
		if err == nil {
			sqlDB, err2 := db.DB()
			if err2 == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					return db
				}
				err = pingErr
			} else {
				err = err2
			}
		}

		log.Printf("db not ready (attempt %d/%d): %v", attempt, defaultMaxAttempts, err)
		time.Sleep(defaultDelayBetweenTry)
	}

	log.Fatalf("could not connect to db after %d attempts: %v", defaultMaxAttempts, err)
	return nil
}
