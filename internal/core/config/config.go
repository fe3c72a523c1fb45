package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level string
	JSON  bool

	// File enables rotated log output alongside stdout.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Auth carries the access-control knobs: the pre-shared key for read
// endpoints, the token signing secret and the account lockout policy.
type Auth struct {
	APIKey             string
	JWTSecret          string
	Issuer             string
	AccessTokenExpires time.Duration
	MaxFailedLogins    int
	LockTimeout        time.Duration
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	Seed               bool
	LogLevel           string
}

type Config struct {
	App   App
	Log   Log
	Auth  Auth
	DB    DB
	Redis Redis `mapstructure:"redis"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "appusers")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.maxsizemb", 100)
	v.SetDefault("log.maxbackups", 7)
	v.SetDefault("log.maxagedays", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("auth.apikey", "appusers") // change this!
	v.SetDefault("auth.jwtsecret", "super-secret")
	v.SetDefault("auth.issuer", "appusers")
	v.SetDefault("auth.accesstokenexpires", 24*time.Hour)
	v.SetDefault("auth.maxfailedlogins", 5)
	v.SetDefault("auth.locktimeout", 5*time.Minute)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "appusers.sqlite3")
	v.SetDefault("db.maxopenconns", 10)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.seed", false)
	v.SetDefault("db.loglevel", "warn")
}

// Load reads the YAML config file pointed to by path (or CONFIG_PATH),
// overlays APPUSERS_* environment variables and falls back to built-in
// defaults. A missing file is not fatal: env plus defaults is a
// complete configuration.
func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	setDefaults(v)
	v.SetEnvPrefix("APPUSERS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			log.Fatalf("read config: %v", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}
