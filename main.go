package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"time"

	appApi "assistante-suite/api"
	appConfig "assistante-suite/config"
	"assistante-suite/utils"
	appAPIHelper "assistante-suite/utils/api"
	"assistante-suite/utils/cloudflare"
	"assistante-suite/utils/contentstore"
	appDatabaseManager "assistante-suite/utils/database"
	"assistante-suite/utils/database/memory"
	appMongo "assistante-suite/utils/database/mongo"
	dbManager "assistante-suite/utils/database/postgresql"
	appRedis "assistante-suite/utils/database/redis"
	"assistante-suite/utils/jsonform"
	appLogger "assistante-suite/utils/logger"
	"assistante-suite/utils/markdown"
	appSMTP "assistante-suite/utils/smtp"
	appVersion "assistante-suite/version"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type stores struct {
	db           *dbManager.Client
	mongo        *appMongo.MongoDBManager
	pages        contentstore.PageStore
	blog         utils.BlogRepository
	newsletter   utils.NewsletterRepository
	appointments utils.AppointmentRepository
}

func openPostgres(ctx context.Context, cfg appConfig.Config, s *stores) error {
	client, err := dbManager.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := client.Migrate(ctx); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed creating schema resources: %w", err)
		}
	}
	s.db = client
	s.pages = dbManager.NewPageStore(client)
	s.blog = dbManager.NewBlogRepository(client)
	s.newsletter = dbManager.NewNewsletterRepository(client)
	s.appointments = dbManager.NewAppointmentRepository(client)
	return nil
}

func openStores(ctx context.Context, cfg appConfig.Config) (*stores, error) {
	driver, err := utils.ParseContentDriver(cfg.Content.Driver)
	if err != nil {
		return nil, err
	}
	s := &stores{}
	switch driver {
	case utils.ContentDriverMemory:
		s.pages = contentstore.NewMemoryStore()
		s.blog = memory.NewBlogRepository()
		s.newsletter = memory.NewNewsletterRepository()
		s.appointments = memory.NewAppointmentRepository()
	case utils.ContentDriverPostgres:
		if err := openPostgres(ctx, cfg, s); err != nil {
			return nil, err
		}
	case utils.ContentDriverMongo:
		if err := openPostgres(ctx, cfg, s); err != nil {
			return nil, err
		}
		mongoManager, err := appMongo.NewMongoDBManager(ctx, cfg.MongoDB.URL, cfg.MongoDB.DB, cfg.MongoDB.Pages)
		if err != nil {
			_ = s.db.Close()
			return nil, fmt.Errorf("failed to init MongoDB: %w", err)
		}
		s.mongo = mongoManager
		s.pages = mongoManager
	}
	return s, nil
}

func main() {
	configPath := os.Getenv("ASSISTANTE_CONFIG")
	if configPath == "" {
		configPath = appConfig.DefaultConfigPath
	}
	cfg, err := appConfig.Load(configPath)
	if err != nil {
		appLogger.Errorf("%v", err)
		os.Exit(1)
	}
	appConfig.Cfg = cfg

	var loggerWriter io.Writer = os.Stdout
	if cfg.Backend.MainLogFile != "" {
		loggerWriter = io.MultiWriter(os.Stdout, appLogger.NewFileWriter(cfg.Backend.MainLogFile))
	}
	mainLogger := appLogger.NewLogger("Main", cfg.Backend.LogLevel, loggerWriter)
	appLogger.SetDefault(mainLogger)
	defer mainLogger.Sync()
	mainLogger.Infof("========================= Assistante Suite Backend %s =========================", appVersion.Version)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	s, err := openStores(ctx, cfg)
	cancel()
	if err != nil {
		mainLogger.Errorf("Failed to open content stores: %v", err)
		os.Exit(1)
	}
	if s.db != nil {
		defer func(client *dbManager.Client) {
			_ = client.Close()
		}(s.db)
	}
	if s.mongo != nil {
		defer func(m *appMongo.MongoDBManager) {
			_ = m.Close(context.Background())
		}(s.mongo)
	}

	var (
		redisClient  *appRedis.RedisManager
		pages        = s.pages
		editorStates jsonform.StateRepository
		sessionStore appAPIHelper.SessionStore
	)
	apiHelper := &appAPIHelper.RouterHelpers{
		Config:       cfg,
		Blog:         s.blog,
		Newsletter:   s.newsletter,
		Appointments: s.appointments,
		Markdown:     markdown.NewRenderer(),
	}
	if cfg.Redis.Host != "" {
		redisClient = appRedis.NewRedisClient(cfg.Redis)
		defer func(r *appRedis.RedisManager) {
			_ = r.Close()
		}(redisClient)
		pages = appRedis.NewCachedPageStore(s.pages, redisClient, time.Duration(cfg.Content.CacheTTLSeconds)*time.Second)
		editorStates = appRedis.NewEditorStateRepository(redisClient)
		sessionStore = appRedis.NewAdminSessionStore(redisClient)
		apiHelper.Cache = redisClient
		apiHelper.RateLimiter = redisClient
	} else {
		mainLogger.Warnf("Redis is not configured, sessions and editor state live in memory")
		editorStates = jsonform.NewMemoryStateRepository()
		sessionStore = appAPIHelper.NewMemorySessionStore()
	}
	apiHelper.DBManager = appDatabaseManager.NewDBManager(s.db, redisClient, s.mongo, pages, editorStates)
	apiHelper.SessionHandler = appAPIHelper.NewSessionHandler(sessionStore, cfg.Admin.SessionSignToken, time.Duration(cfg.Admin.SessionTTLHours)*time.Hour)
	if cfg.SMTP.Enabled {
		apiHelper.Mailer = appSMTP.NewSMTPClient(cfg.SMTP)
	}
	if cfg.Turnstile.Enabled {
		apiHelper.Challenge = cloudflare.NewTurnstileVerifier(cfg.Turnstile)
	}

	app := fiber.New(appAPIHelper.FiberConfig(cfg.Backend.BodyLimitMB))
	app.Use(func(c fiber.Ctx) error {
		nonceBytes := make([]byte, 16)
		if _, err := rand.Read(nonceBytes); err != nil {
			return err
		}
		nonce := base64.StdEncoding.EncodeToString(nonceBytes)
		c.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' https://challenges.cloudflare.com 'nonce-"+nonce+"'; "+
				"frame-src https://challenges.cloudflare.com; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data: https:; "+
				"object-src 'none'; "+
				"base-uri 'self'; "+
				"form-action 'self';",
		)
		c.Locals("cspNonce", nonce)
		return c.Next()
	})
	allowedOrigins := make(map[string]struct{})
	for _, origin := range cfg.Backend.AllowCORS {
		allowedOrigins[origin] = struct{}{}
	}
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			_, ok := allowedOrigins[origin]
			return ok
		},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"ETag"},
		AllowCredentials: true,
	}))

	if cfg.Backend.AccessLog != "" {
		loggerConfig := logger.Config{Format: cfg.Backend.AccessLog}
		if cfg.Backend.AccessLogPath != "" {
			loggerConfig.Stream = appLogger.NewFileWriter(cfg.Backend.AccessLogPath)
		}
		app.Use(logger.New(loggerConfig))
	}

	apiHelper.Router = app
	appApi.RegisterRoutes(apiHelper)

	addr := fmt.Sprintf("%s:%d", cfg.Backend.Host, cfg.Backend.Port)
	listenConfig := fiber.ListenConfig{
		DisableStartupMessage: true,
	}
	if cfg.Backend.SSL {
		mainLogger.Infof("SSL enabled, starting HTTPS server at %s", addr)
		listenConfig.CertFile = cfg.Backend.SSLCert
		listenConfig.CertKeyFile = cfg.Backend.SSLKey
		if err := app.Listen(addr, listenConfig); err != nil {
			mainLogger.Errorf("failed to start HTTPS server: %v", err)
			os.Exit(1)
		}
	} else {
		mainLogger.Infof("Starting HTTP server at %s", addr)
		if err := app.Listen(addr, listenConfig); err != nil {
			mainLogger.Errorf("failed to start HTTP server: %v", err)
			os.Exit(1)
		}
	}
}
