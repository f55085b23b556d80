package main

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"persona-chat/internal/config"
	"persona-chat/internal/domain/ports/adapter"
	"persona-chat/internal/domain/ports/repository"
	aiAdapters "persona-chat/internal/infra/adapters/ai"
	pg "persona-chat/internal/infra/db/postgres"
	"persona-chat/internal/infra/db/sqlite"
	"persona-chat/internal/infra/events"
	"persona-chat/internal/infra/logging"
	"persona-chat/internal/infra/metrics"
	red "persona-chat/internal/infra/redis"
	"persona-chat/internal/infra/security"
	"persona-chat/internal/infra/store"
	"persona-chat/internal/infra/worker"
	"persona-chat/internal/persona"
	"persona-chat/internal/usecase"
)

// app holds everything a command needs. close releases it in reverse
// order of acquisition.
type app struct {
	cfg     *config.Config
	log     *zerolog.Logger
	catalog *persona.Catalog
	chat    *usecase.ChatManager
	bus     *gochannel.GoChannel

	closers []func()
}

func (a *app) close(ctx context.Context) {
	if a.chat != nil {
		if err := a.chat.Close(ctx); err != nil {
			a.log.Warn().Err(err).Msg("close chat")
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(cfgPath, devMode)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, cfg.AI.Provider, cfg.Store.Backend)

	a := &app{cfg: cfg, log: log}
	ok := false
	defer func() {
		if !ok {
			a.close(ctx)
		}
	}()

	// ---- Personas ----
	a.catalog = persona.NewCatalog()
	if cfg.PersonasFile != "" {
		if a.catalog, err = persona.LoadCatalog(cfg.PersonasFile); err != nil {
			return nil, fmt.Errorf("personas: %w", err)
		}
	}

	// ---- Session store ----
	kv, locker, err := a.openKV(ctx)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", cfg.Store.Backend, err)
	}
	if cfg.Store.EncryptionKey != "" {
		enc, err := security.NewEncryptionService(cfg.Store.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("encryption: %w", err)
		}
		kv = security.NewEncryptedKV(kv, enc)
	}
	opts := []store.Option{store.WithLogger(log), store.WithBackendName(cfg.Store.Backend)}
	if locker != nil {
		opts = append(opts, store.WithLocker(locker))
	}
	sessions := store.NewSessionStore(kv, opts...)

	// ---- Completion client ----
	client, err := newCompletionClient(cfg, log)
	if err != nil {
		return nil, err
	}
	client = aiAdapters.NewMeteredAI(
		aiAdapters.NewLimitedAI(client, cfg.AI.ConcurrentLimit),
		cfg.AI.Provider,
		aiAdapters.NewTiktokenCounter(log),
	)

	// ---- Events ----
	a.bus = events.NewBus(false)
	a.closers = append(a.closers, func() { _ = a.bus.Close() })
	if err := events.LogEvents(ctx, a.bus, events.TopicChatEvents, log); err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}

	chatOpts := usecase.ChatOptions{
		APIKey: cfg.AI.APIKey,
		Events: events.NewWatermillSink(a.bus, events.TopicChatEvents, log),
		Logger: log,
	}
	if cfg.Chat.BackgroundSaves {
		pool := worker.NewPool(1, log)
		pool.Start(context.WithoutCancel(ctx))
		a.closers = append(a.closers, pool.Stop)
		chatOpts.Persister = pool
	}
	a.chat = usecase.NewChatUseCase(sessions, client, a.catalog, chatOpts)

	log.Info().
		Str("provider", cfg.AI.Provider).
		Str("model", cfg.AI.Model).
		Str("store", cfg.Store.Backend).
		Bool("dev", cfg.Runtime.Dev).
		Msg("personachat ready")
	ok = true
	return a, nil
}

func (a *app) openKV(ctx context.Context) (repository.KVStore, repository.Locker, error) {
	cfg := a.cfg
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return store.NewMemoryKV(), nil, nil
	case config.BackendRedis:
		cli, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = cli.Close() })
		return red.NewKVStore(cli), red.NewLocker(cli), nil
	case config.BackendPostgres:
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, pool.Close)
		kv, err := pg.NewKVRepo(ctx, pool)
		if err != nil {
			return nil, nil, err
		}
		return kv, nil, nil
	case config.BackendSQLite:
		kv, err := sqlite.Open(ctx, cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = kv.Close() })
		return kv, nil, nil
	default:
		kv, err := store.NewFileKV(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return kv, nil, nil
	}
}

func newCompletionClient(cfg *config.Config, log *zerolog.Logger) (adapter.CompletionClient, error) {
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		return aiAdapters.NewGeminiHTTPClient(cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout), nil
	case config.ProviderGenAI:
		return aiAdapters.NewGeminiAdapter(cfg.AI.BaseURL, cfg.AI.Model, 0), nil
	case config.ProviderOpenAI:
		return aiAdapters.NewOpenAIAdapter(cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout), nil
	case config.ProviderNoop:
		return aiAdapters.NewNoopAIAdapter(log), nil
	}
	return nil, fmt.Errorf("ai.provider %q is not supported", cfg.AI.Provider)
}
