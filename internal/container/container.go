package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storefront/commerce/internal/api"
	"storefront/commerce/internal/auth"
	"storefront/commerce/internal/category"
	"storefront/commerce/internal/client"
	"storefront/commerce/internal/commerce"
	"storefront/commerce/internal/config"
	"storefront/commerce/internal/events"
	"storefront/commerce/internal/proxy"
	"storefront/commerce/internal/service"
	"storefront/commerce/internal/session"
	"storefront/commerce/internal/storage"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Storage    storage.Storage
	Store      *commerce.Store
	Categories *category.Cache
	Service    *service.CategoryService
	Bootstrap  *session.Bootstrap
	Publisher  events.Publisher
	Handler    *api.Handler

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		Config: cfg,
	}

	if cfg.Storage.Backend == "redis" || cfg.Events.Enabled {
		if err := c.connectRedis(ctx); err != nil {
			return nil, err
		}
	}

	st, err := c.newStorage(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Storage = st

	c.Publisher = events.NewNoopPublisher()
	if cfg.Events.Enabled {
		c.Publisher = events.NewRedisPublisher(c.redis, cfg.Events)
		log.Infof("📣 Publishing store events to streams with prefix %s", cfg.Events.StreamPrefix)
	}
	forwarder := events.NewForwarder(c.Publisher, nil)

	c.Store = commerce.NewStore(st,
		auth.NewStorageAuthenticator(st, cfg.Storage.AuthUserKey),
		commerce.WithStateKey(cfg.Storage.StateKey),
	)
	if err := c.Store.Hydrate(ctx); err != nil {
		log.Warnf("⚠️ Starting with empty commerce state: %v", err)
	}
	c.Store.Subscribe(forwarder.OnStateChanged)

	c.Categories = category.NewCache(st,
		category.WithKey(cfg.Storage.CategoriesKey),
		category.WithListener(forwarder.OnCategoriesChanged),
	)
	if err := c.Categories.Hydrate(ctx); err != nil {
		log.Warnf("⚠️ Starting with empty category cache: %v", err)
	}

	proxySupplier := proxy.NewProxySupplier(ctx, cfg.Catalog.Proxies, cfg.Catalog.BaseURL, nil)
	catalogClient := client.NewCatalogClient(cfg.Catalog, proxySupplier)

	c.Service = service.NewCategoryService(c.Categories, catalogClient)
	c.Bootstrap = session.NewBootstrap(c.Store)
	c.Handler = api.NewHandler(c.Store, c.Categories, c.Service, c.Bootstrap)

	return c, nil
}

func (c *Container) connectRedis(ctx context.Context) error {
	cfg := c.Config.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")
	c.redis = rdb
	return nil
}

func (c *Container) newStorage(ctx context.Context) (storage.Storage, error) {
	switch c.Config.Storage.Backend {
	case "redis":
		return storage.NewRedisStorage(c.redis, c.Config.Redis.KeyPrefix), nil

	case "postgres":
		dbCfg := c.Config.Database
		db, err := pgxpool.New(ctx,
			fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				dbCfg.Host,
				dbCfg.Port,
				dbCfg.User,
				dbCfg.Password,
				dbCfg.Name,
			))
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		c.db = db

		if err := storage.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		log.Info("✅ Connected to Postgres successfully")
		return storage.NewPostgresStorage(db), nil

	case "memory", "":
		log.Info("💾 Using in-memory storage; state is lost on restart")
		return storage.NewMemoryStorage(), nil

	case "none":
		log.Info("💾 Storage disabled; state is not persisted")
		return storage.NewNoopStorage(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", c.Config.Storage.Backend)
	}
}

// Run bootstraps the session, then serves the API and refreshes categories until ctx
// is cancelled.
func (c *Container) Run(ctx context.Context) error {
	c.Bootstrap.Run(ctx)

	server := &http.Server{
		Addr:              c.Config.Server.Addr(),
		Handler:           c.Handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("🚀 API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if interval := c.Config.Catalog.RefreshInterval; interval > 0 {
		g.Go(func() error {
			return c.Service.RunRefresher(ctx, time.Duration(interval)*time.Second)
		})
	}

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
