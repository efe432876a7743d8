package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/tendant/device-trust-demo/pkg/device"
	"github.com/tendant/device-trust-demo/pkg/loginflow"
	"github.com/tendant/device-trust-demo/pkg/notification"
	"github.com/tendant/device-trust-demo/pkg/ratelimit"
	"github.com/tendant/device-trust-demo/pkg/store"
	"github.com/tendant/device-trust-demo/pkg/tokengenerator"
	"github.com/tendant/device-trust-demo/pkg/twofa"
	"github.com/tendant/device-trust-demo/pkg/user"
	"github.com/tendant/device-trust-demo/pkg/web"
)

type DemoDbConfig struct {
	Host     string `env:"DEMO_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"DEMO_PG_PORT" env-default:"5432"`
	Database string `env:"DEMO_PG_DATABASE" env-default:"demo_db"`
	User     string `env:"DEMO_PG_USER" env-default:"demo"`
	Password string `env:"DEMO_PG_PASSWORD" env-default:"pwd"`
}

func (d DemoDbConfig) toDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

type JwtConfig struct {
	JwtSecret      string        `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	SessionExpiry  time.Duration `env:"SESSION_EXPIRY" env-default:"1h"`
	CookieHttpOnly bool          `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure   bool          `env:"COOKIE_SECURE" env-default:"false"`
}

type PersistenceConfig struct {
	Kind    string `env:"PERSISTENCE_KIND" env-default:"file"`
	DataDir string `env:"DATA_DIR" env-default:"data"`
}

type PasscodeConfig struct {
	Mode           string `env:"PASSCODE_MODE" env-default:"static"`
	StaticPasscode string `env:"PASSCODE_STATIC" env-default:"112233"`
	TotpSecret     string `env:"PASSCODE_TOTP_SECRET"`
}

type PasswordConfig struct {
	Scheme string `env:"PASSWORD_SCHEME" env-default:"plaintext"`
}

type NotifierConfig struct {
	Kind         string `env:"NOTIFIER_KIND" env-default:"log"`
	SMTPHost     string `env:"SMTP_HOST" env-default:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" env-default:"1025"`
	SMTPTls      bool   `env:"SMTP_TLS" env-default:"false"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" env-default:"noreply@example.com"`
}

type RateLimitConfig struct {
	Enabled    bool    `env:"RATELIMIT_ENABLED" env-default:"true"`
	Capacity   int     `env:"RATELIMIT_CAPACITY" env-default:"10"`
	RefillRate float64 `env:"RATELIMIT_REFILL_RATE" env-default:"0.167"`
}

type Config struct {
	DemoDbConfig      DemoDbConfig
	AppConfig         app.AppConfig
	JwtConfig         JwtConfig
	PersistenceConfig PersistenceConfig
	PasscodeConfig    PasscodeConfig
	PasswordConfig    PasswordConfig
	NotifierConfig    NotifierConfig
	RateLimitConfig   RateLimitConfig
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	slog.SetDefault(logger)

	loadEnvFile()

	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	userRepoConfig := user.RepositoryConfig{}
	deviceRepoConfig := device.RepositoryConfig{}

	switch config.PersistenceConfig.Kind {
	case "postgres", "postgresql":
		dbConfig := config.DemoDbConfig.toDbConfig()
		pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
			os.Exit(-1)
		}
		userRepoConfig.DB = pool
		deviceRepoConfig.DB = pool
	case "file":
		docStore, err := store.Open(config.PersistenceConfig.DataDir)
		if err != nil {
			slog.Error("Failed opening document store", "dataDir", config.PersistenceConfig.DataDir, "err", err)
			os.Exit(-1)
		}
		userRepoConfig.Store = docStore
		deviceRepoConfig.Store = docStore
	}

	userRepo, err := user.NewUserRepository(config.PersistenceConfig.Kind, userRepoConfig)
	if err != nil {
		slog.Error("Failed creating user repository", "err", err)
		os.Exit(-1)
	}
	deviceRepo, err := device.NewDeviceRepository(config.PersistenceConfig.Kind, deviceRepoConfig)
	if err != nil {
		slog.Error("Failed creating device repository", "err", err)
		os.Exit(-1)
	}

	hasher, err := user.NewPasswordHasher(config.PasswordConfig.Scheme)
	if err != nil {
		slog.Error("Failed creating password hasher", "err", err)
		os.Exit(-1)
	}
	userService := user.NewUserService(userRepo, user.WithPasswordHasher(hasher))
	deviceService := device.NewDeviceService(deviceRepo)

	notifier, err := notification.NewNotifier(config.NotifierConfig.Kind, notification.SMTPConfig{
		Host:     config.NotifierConfig.SMTPHost,
		Port:     config.NotifierConfig.SMTPPort,
		TLS:      config.NotifierConfig.SMTPTls,
		Username: config.NotifierConfig.SMTPUsername,
		Password: config.NotifierConfig.SMTPPassword,
		From:     config.NotifierConfig.SMTPFrom,
	})
	if err != nil {
		slog.Error("Failed creating notifier", "err", err)
		os.Exit(-1)
	}

	validator, err := twofa.NewPasscodeValidator(config.PasscodeConfig.Mode, twofa.ValidatorConfig{
		StaticPasscode: config.PasscodeConfig.StaticPasscode,
		TotpSecret:     config.PasscodeConfig.TotpSecret,
	})
	if err != nil {
		slog.Error("Failed creating passcode validator", "err", err)
		os.Exit(-1)
	}
	challengeService := twofa.NewChallengeService(validator, notifier)

	flowService := loginflow.NewFlowService(userService, deviceService, challengeService)

	tokenGenerator := tokengenerator.NewJwtTokenGenerator(config.JwtConfig.JwtSecret, "device-trust-demo", "device-trust-demo")
	tokenService := tokengenerator.NewTokenService(
		tokenGenerator,
		tokengenerator.WithCookieSetter(tokengenerator.NewCookieSetter(config.JwtConfig.CookieHttpOnly, config.JwtConfig.CookieSecure)),
		tokengenerator.WithSessionExpiry(config.JwtConfig.SessionExpiry),
	)

	renderer, err := web.NewRenderer()
	if err != nil {
		slog.Error("Failed parsing templates", "err", err)
		os.Exit(-1)
	}

	routerConfig := web.RouterConfig{}
	if config.RateLimitConfig.Enabled {
		limiter := ratelimit.NewRateLimiter(config.RateLimitConfig.Capacity, config.RateLimitConfig.RefillRate, time.Hour)
		routerConfig.CredentialLimiter = ratelimit.PerIPMiddleware(limiter)
	}

	handle := web.NewHandle(flowService, userService, deviceService, tokenService, renderer)
	tokenAuth := jwtauth.New("HS256", []byte(config.JwtConfig.JwtSecret), nil)

	server.R.Mount("/", web.Handler(handle, tokenAuth, routerConfig))

	server.Run()
}

// loadEnvFile loads a .env file when one is present. Missing files are fine;
// everything has an env default.
func loadEnvFile() {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		slog.Error("Failed to load .env file", "error", err)
		return
	}
	slog.Info("Configuration loaded from .env file")
}
