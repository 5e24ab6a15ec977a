package main

import (
	"context"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gestora/backend/modules/admin"
	"github.com/gestora/backend/pkg/channelacl"
	"github.com/gestora/backend/pkg/config"
	"github.com/gestora/backend/pkg/httpserver"
	"github.com/gestora/backend/pkg/logger"
	"github.com/gestora/backend/pkg/permission"
	"github.com/gestora/backend/svc/consolidation"
	mongostore "github.com/gestora/backend/storage/mongo"
	redisstore "github.com/gestora/backend/storage/redis"
)

type appConfig struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"gestora-backend"`
	CatalogPath string `env:"PERMISSIONS_CATALOG" envDefault:"permissions.yaml"`

	// ChannelBackend selects the channel grant store: "redis" for the
	// durable store, "memory" for the process-local one.
	ChannelBackend string `env:"CHANNEL_ACL_BACKEND" envDefault:"redis"`
}

func main() {
	var (
		appCfg   appConfig
		logCfg   logger.Config
		httpCfg  httpserver.Config
		mongoCfg mongostore.Config
		redisCfg redisstore.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&logCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&mongoCfg)
	if appCfg.ChannelBackend == "redis" {
		config.MustLoad(&redisCfg)
	}

	log := logger.NewFromConfig(logCfg, logger.WithService(appCfg.ServiceName))
	ctx := context.Background()

	db, err := mongostore.Connect(ctx, mongoCfg)
	if err != nil {
		log.ErrorContext(ctx, "document store connection failed", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	userStore := mongostore.NewUserStore(db)
	companyStore := mongostore.NewCompanyStore(db)
	roleStore := mongostore.NewRoleStore(db)

	readiness := []func(context.Context) error{
		func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
	}

	var channels channelacl.Store
	switch appCfg.ChannelBackend {
	case "memory":
		log.WarnContext(ctx, "channel grants are process-local and lost on restart")
		channels = channelacl.NewInMemStore()
	default:
		client, err := redisstore.Connect(ctx, redisCfg)
		if err != nil {
			log.ErrorContext(ctx, "channel store connection failed", logger.Error(err))
			os.Exit(1)
		}
		defer func() { _ = client.Close() }()
		channels = redisstore.NewChannelStore(client)
		readiness = append(readiness, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	aggregator, err := permission.NewAggregator(ctx, permission.NewFileCatalogSource(appCfg.CatalogPath), roleStore)
	if err != nil {
		log.ErrorContext(ctx, "permission catalog load failed", logger.Error(err))
		os.Exit(1)
	}

	consolidator := consolidation.New(userStore, companyStore, log)
	adminHandler := admin.NewHandler(userStore, aggregator, channels, consolidator, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", httpserver.Healthcheck(log, readiness...))
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(admin.ResolveCaller(userStore))
		r.Mount("/", adminHandler.Router())
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		log.ErrorContext(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}
