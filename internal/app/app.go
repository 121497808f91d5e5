// Package app wires configuration, stores and services into one runnable graph shared by the
// HTTP server and the admin CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"courtside/team-ops/internal/api"
	"courtside/team-ops/internal/cache"
	"courtside/team-ops/internal/config"
	"courtside/team-ops/internal/gameclock"
	"courtside/team-ops/internal/repository"
	"courtside/team-ops/internal/repository/memory"
	mongorepo "courtside/team-ops/internal/repository/mongo"
	"courtside/team-ops/internal/scheduler"
	"courtside/team-ops/internal/service"
	"courtside/team-ops/internal/storage"
	"courtside/team-ops/internal/syncer"

	"go.mongodb.org/mongo-driver/mongo"
)

// Stores are the repositories behind the services.
type Stores struct {
	Users     repository.UserRepository
	Sessions  repository.SessionRepository
	Practices repository.PracticeRepository
	Watcher   repository.PracticeWatcher
	Roster    repository.RosterRepository
	Wellness  repository.WellnessRepository
	Plans     repository.PlanRepository
	Folders   repository.FolderRepository

	// DB is nil for the in-memory driver.
	DB     *mongo.Database
	client *mongo.Client
}

// OpenStores connects the configured document store.
func OpenStores(cfg config.DatabaseConfig) (*Stores, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		log.Println("WARN: [Store] using the in-memory store, data is lost on exit")
		m := memory.NewStore()
		return &Stores{
			Users:     m.Users(),
			Sessions:  m.Sessions(),
			Practices: m.Practices(),
			Watcher:   m.PracticeWatcher(),
			Roster:    m.Roster(),
			Wellness:  m.Wellness(),
			Plans:     m.Plans(),
			Folders:   m.Folders(),
		}, nil
	case "", "mongo":
		client, err := mongorepo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("connecting to MongoDB: %w", err)
		}
		db := client.Database(cfg.Name)
		practices := mongorepo.NewMongoPracticeRepository(db)
		return &Stores{
			Users:     mongorepo.NewMongoUserRepository(db),
			Sessions:  mongorepo.NewMongoSessionRepository(db),
			Practices: practices,
			Watcher:   practices,
			Roster:    mongorepo.NewMongoRosterRepository(db),
			Wellness:  mongorepo.NewMongoWellnessRepository(db),
			Plans:     mongorepo.NewMongoPlanRepository(db),
			Folders:   mongorepo.NewMongoFolderRepository(db),
			DB:        db,
			client:    client,
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// EnsureIndexes is a no-op for the in-memory store.
func (s *Stores) EnsureIndexes(ctx context.Context) {
	if s.DB != nil {
		mongorepo.EnsureIndexes(ctx, s.DB)
	}
}

func (s *Stores) Close() {
	if s.client == nil {
		return
	}
	log.Println("INFO: Disconnecting MongoDB...")
	if err := mongorepo.DisconnectDB(s.client); err != nil {
		log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
	}
}

// OpenCache returns Redis when enabled and reachable, otherwise an in-process cache.
func OpenCache(ctx context.Context, cfg config.CacheConfig) (cache.Store, func()) {
	if !cfg.Enabled {
		return cache.NewMemoryCache(), func() {}
	}
	rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.TTL)
	if err != nil {
		log.Printf("WARN: [Cache] redis unavailable (%v), falling back to in-process cache", err)
		return cache.NewMemoryCache(), func() {}
	}
	log.Println("INFO: [Cache] connected to redis")
	return rc, func() {
		if err := rc.Close(); err != nil {
			log.Printf("WARN: [Cache] closing redis: %v", err)
		}
	}
}

// App is the assembled service graph.
type App struct {
	Config     config.Config
	Stores     *Stores
	Cache      cache.Store
	Retry      *scheduler.RetryQueue
	Debouncers *syncer.Registry
	Contexts   *syncer.Contexts
	Hub        *syncer.Hub
	Clocks     *gameclock.Manager
	Services   api.Services

	closeCache func()
	cancel     context.CancelFunc
}

// New builds every component. Background loops start with Start.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	stores, err := OpenStores(cfg.Database)
	if err != nil {
		return nil, err
	}
	store, closeCache := OpenCache(ctx, cfg.Cache)

	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		if fileStorage, err = storage.NewS3Storage(ctx, cfg.S3); err != nil {
			closeCache()
			stores.Close()
			return nil, fmt.Errorf("initializing S3 storage: %w", err)
		}
	} else {
		log.Println("WARN: [Reports] s3.bucket_name is empty, report export is disabled")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	a := &App{
		Config: cfg,
		Stores: stores,
		Cache:  store,
		Retry: scheduler.NewRetryQueue(scheduler.RetryConfig{
			Interval:    cfg.Sync.RetryInterval,
			MaxAttempts: cfg.Sync.RetryAttempts,
		}),
		Debouncers: syncer.NewRegistry(cfg.Sync.DebounceDelay, cfg.Sync.ErrorBuffer),
		Contexts:   syncer.NewContexts(),
		Clocks:     gameclock.NewManager(runCtx, 0),
		closeCache: closeCache,
		cancel:     cancel,
	}
	a.Hub = syncer.NewHub(a.Contexts, 0)

	sessions := service.NewSessionService(stores.Sessions, stores.Practices, store, a.Retry)
	roster := service.NewRosterService(stores.Roster, store)
	practice := service.NewPracticeService(sessions, stores.Practices, roster, store, a.Debouncers, a.Contexts)
	wellness := service.NewWellnessService(stores.Wellness, roster, store, cfg.Sync.WellnessAttempts)
	plans := service.NewPlanService(stores.Plans, stores.Folders)
	games := service.NewGameService(sessions, roster, a.Clocks)
	a.Services = api.Services{
		Auth:     service.NewAuthService(stores.Users, stores.Roster, cfg.JWT.Secret, cfg.JWT.Expiration),
		Sessions: sessions,
		Practice: practice,
		Surveys:  service.NewSurveyService(sessions, practice, stores.Practices, store),
		Wellness: wellness,
		Roster:   roster,
		Plans:    plans,
		Games:    games,
		Reports:  service.NewReportService(sessions, practice, stores.Practices, roster, wellness, plans, games, fileStorage, cfg.S3.ExportPrefix, cfg.S3.URLExpiry),
		Hub:      a.Hub,
		Retry:    a.Retry,
	}
	return a, nil
}

// Start runs the retry queue, the change feed and the sync error drain until Shutdown.
func (a *App) Start(ctx context.Context) {
	go a.Retry.Start(ctx)
	go a.Hub.Run(ctx, a.Stores.Watcher)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case we := <-a.Debouncers.Errors():
				log.Printf("ERROR: [Sync] %v", we)
			}
		}
	}()
}

// Shutdown flushes pending local writes and releases every resource.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Services.Practice.FlushAll(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("ERROR: [Sync] flushing pending writes on shutdown: %v", err)
	}
	a.Retry.Stop()
	a.Clocks.Close()
	a.cancel()
	a.closeCache()
	a.Stores.Close()
	return err
}
