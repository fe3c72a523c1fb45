// Bootstrap CLI: creates or promotes the first admin account directly
// against the store. Needed once per deployment, because every
// admin-gated API operation requires an existing admin.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"appusers/internal/core/config"
	"appusers/internal/core/database"
	"appusers/internal/core/logger"
	"appusers/internal/domain"
	"appusers/internal/repo"
	"appusers/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	username := flag.String("username", "admin", "admin account username")
	password := flag.String("password", "", "admin account password (required when creating)")
	firstname := flag.String("firstname", "Admin", "first name")
	lastname := flag.String("lastname", "User", "last name")
	email := flag.String("email", "admin@example.com", "email address")
	phone := flag.String("phone", "123-444-5555", "phone number")
	flag.Parse()

	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Group{}, &domain.GroupMember{}); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	users := repo.NewUserRepo(db)

	u, err := users.FindByUsername(*username)
	switch {
	case err == nil:
		// existing account: promote it
		if err := users.SetAdmin(u.UserID, true); err != nil {
			log.Fatal("grant admin", zap.Error(err))
		}
		fmt.Printf("granted admin to existing user %q (userid %d)\n", u.Username, u.UserID)

	case isNotFound(err):
		if *password == "" {
			log.Fatal("password flag is required when creating a new admin account")
		}
		u = &domain.User{
			Username:     *username,
			Firstname:    *firstname,
			Lastname:     *lastname,
			Email:        *email,
			Phone:        *phone,
			PasswordHash: utils.HashPassword(*password),
			Admin:        true,
		}
		if err := users.Create(u); err != nil {
			log.Fatal("create admin", zap.Error(err))
		}
		fmt.Printf("created admin user %q (userid %d)\n", u.Username, u.UserID)

	default:
		log.Fatal("lookup admin", zap.Error(err))
	}
}

func isNotFound(err error) bool {
	var ae *domain.Error
	return errors.As(err, &ae) && ae.Kind == domain.KindNotFound
}
