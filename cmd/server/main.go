package main

// @title           Local Library API
// @version         1.0
// @description     Catalog, lending, and account management for a small library.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"locallibrary/internal/config"
	"locallibrary/internal/db"
	docs "locallibrary/internal/docs"
	"locallibrary/internal/handler"
	"locallibrary/internal/model"
	"locallibrary/internal/policy"
	"locallibrary/internal/repository"
)

const appVersion = "0.1.0"

func main() {
	startTime := time.Now()

	cfg := config.Load()

	gin.SetMode(cfg.GinMode)

	e := gin.Default()

	e.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
	})

	docs.SwaggerInfo.BasePath = "/api"

	database := db.ConnectWithRetry(cfg)

	if err := database.AutoMigrate(
		&model.Author{},
		&model.Genre{},
		&model.Language{},
		&model.Book{},
		&model.BookInstance{},
		&model.Permission{},
		&model.User{},
		&model.Token{},
	); err != nil {
		panic(err)
	}

	for _, code := range policy.AllPermissions {
		if err := database.FirstOrCreate(&model.Permission{}, model.Permission{Code: code}).Error; err != nil {
			panic(err)
		}
	}

	session := scs.New()
	session.Lifetime = cfg.SessionLifetime

	healthHandler := handler.NewHealthHandler(database, startTime, appVersion)
	healthHandler.RegisterRoutes(e)

	handler.Register(e, handler.Deps{
		DB:       database,
		Session:  session,
		Authz:    policy.NewTable(),
		Throttle: policy.NewRateThrottle(map[policy.Class]policy.Rate{
			policy.ClassBasic:   {PerSecond: cfg.BasicRPS, Burst: cfg.BasicBurst},
			policy.ClassPremium: {PerSecond: cfg.PremiumRPS, Burst: cfg.PremiumBurst},
		}),
		Users:      repository.NewGormUserRepository(database),
		Tokens:     repository.NewGormTokenRepository(database),
		Authors:    repository.NewGormAuthorRepository(database),
		Books:      repository.NewGormBookRepository(database),
		Instances:  repository.NewGormInstanceRepository(database),
		Summary:    repository.NewGormSummaryRepository(database),
		TokenTTL:   cfg.TokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})

	e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: session.LoadAndSave(e),
	}
	if err := srv.ListenAndServe(); err != nil {
		panic(err)
	}
}
