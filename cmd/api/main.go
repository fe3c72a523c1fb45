package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"appusers/internal/core/auth"
	"appusers/internal/core/cache"
	"appusers/internal/core/config"
	"appusers/internal/core/database"
	"appusers/internal/core/logger"
	"appusers/internal/core/server"
	"appusers/internal/domain"
	"appusers/internal/repo"
	"appusers/internal/service"
	"appusers/internal/transport/http/handler"
	mdw "appusers/internal/transport/http/middleware"
	"appusers/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	var log *zap.Logger
	var cleanup func()
	if cfg.Log.File != "" {
		log, cleanup = logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON,
			cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays, cfg.Log.Compress)
	} else {
		log, cleanup = logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Group{}, &domain.GroupMember{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}
	if cfg.DB.Seed {
		seedDev(db, log)
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.AccessTokenExpires,
	}

	var docCache *cache.Cache
	if cfg.Redis.Addr != "" {
		docCache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("document cache enabled", zap.String("redis", cfg.Redis.Addr))
	}

	userRepo := repo.NewUserRepo(db)
	groupRepo := repo.NewGroupRepo(db)
	userSvc := service.NewUserService(userRepo, docCache)
	groupSvc := service.NewGroupService(groupRepo, docCache)
	authSvc := service.NewAuthService(userRepo, jwter, cfg.Auth.MaxFailedLogins, cfg.Auth.LockTimeout)

	apiKey := mdw.APIKey(cfg.Auth.APIKey)
	bearer := mdw.Bearer(authSvc, false)
	admin := mdw.Bearer(authSvc, true)

	r := router.NewEngine(log,
		handler.NewLoginHandler(authSvc, log),
		handler.NewUserHandler(userSvc, log, apiKey, bearer, admin),
		handler.NewGroupHandler(groupSvc, log, apiKey, admin),
	)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info("api started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

// seedDev loads the development fixtures into an empty database.
func seedDev(db *gorm.DB, l *zap.Logger) {
	var n int64
	if err := db.Model(&domain.User{}).Count(&n).Error; err != nil || n > 0 {
		return
	}
	users := []domain.User{
		{Username: "johne", Firstname: "John", Lastname: "Example",
			Email: "johne@example.com", Phone: "123-444-5555"},
		{Username: "lindas", Firstname: "Linda", Lastname: "Someone",
			Email: "lindas@example.com", Phone: "123-444-6666"},
	}
	groups := []domain.Group{
		{Groupname: "admins", Description: "Administrators"},
		{Groupname: "friends", Description: "Friends and Family"},
	}
	if err := db.Create(&users).Error; err != nil {
		l.Warn("seed users failed", zap.Error(err))
		return
	}
	if err := db.Create(&groups).Error; err != nil {
		l.Warn("seed groups failed", zap.Error(err))
		return
	}
	l.Info("seeded development data")
}
