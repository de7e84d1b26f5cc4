package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/xreal/faqbase/internal/domain/faq"
	"github.com/xreal/faqbase/internal/domain/upload"
	"github.com/xreal/faqbase/internal/infra/config"
	"github.com/xreal/faqbase/internal/infra/embedder"
	"github.com/xreal/faqbase/internal/infra/excel"
	"github.com/xreal/faqbase/internal/infra/faqindex"
	"github.com/xreal/faqbase/internal/infra/faqrepo"
	"github.com/xreal/faqbase/internal/infra/syncqueue"
)

// repositories bundles the primary-store implementations so the memory
// fallback can share one backing store between FAQs and tags.
type repositories struct {
	faqs faq.FAQRepository
	tags faq.TagRepository
}

// providePostgresPool returns a ready pool, or nil when no DSN is set or the
// database is unreachable. Downstream providers fall back to memory stores.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory stores")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory stores", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory stores", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory stores", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

func provideRepositories(pool *pgxpool.Pool, logger *slog.Logger) repositories {
	if pool == nil {
		faqs := faqrepo.NewMemoryFAQRepository()
		return repositories{faqs: faqs, tags: faqrepo.NewMemoryTagRepository(faqs)}
	}
	faqs := faqrepo.NewPostgresFAQRepository(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := faqs.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure postgres schema", "error", err)
	}
	logger.Info("postgres repositories enabled")
	return repositories{faqs: faqs, tags: faqrepo.NewPostgresTagRepository(pool)}
}

func provideFAQRepository(repos repositories) faq.FAQRepository {
	return repos.faqs
}

func provideTagRepository(repos repositories) faq.TagRepository {
	return repos.tags
}

// provideDocumentIndex selects the search index backend. A nil index
// disables the projection without affecting the primary store.
func provideDocumentIndex(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) faq.DocumentIndex {
	switch cfg.Index.Backend {
	case "weaviate":
		idx, err := faqindex.NewWeaviateIndex(cfg.Index.Weaviate)
		if err != nil {
			logger.Error("failed to initialize weaviate index, search sync disabled", "error", err)
			return nil
		}
		logger.Info("weaviate search index enabled", "host", cfg.Index.Weaviate.Host, "class", cfg.Index.Weaviate.Class)
		return idx
	case "postgres":
		if pool == nil {
			logger.Error("postgres index backend requires a reachable database, search sync disabled")
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		idx, err := faqindex.NewPgvectorIndex(ctx, pool, cfg.Index.Dimensions)
		if err != nil {
			logger.Error("failed to initialize pgvector index, search sync disabled", "error", err)
			return nil
		}
		logger.Info("pgvector search index enabled")
		return idx
	default:
		logger.Info("search index disabled")
		return nil
	}
}

func provideEmbedder(cfg *config.Config, logger *slog.Logger) faq.Embedder {
	if cfg.Index.Backend == "none" {
		return nil
	}
	if strings.TrimSpace(cfg.Embedding.APIKey) == "" {
		logger.Info("embedding api key not set, using deterministic embedder")
		return embedder.NewDeterministicEmbedder(cfg.Index.Dimensions)
	}
	logger.Info("openai embedder enabled", "model", cfg.Embedding.Model)
	return embedder.NewOpenAIEmbedder(cfg.Embedding)
}

func provideSyncQueue(cfg *config.Config, logger *slog.Logger) syncqueue.HandlerQueue {
	if cfg.Sync.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, using immediate queue", "error", err)
			return syncqueue.NewImmediateQueue(nil)
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, using immediate queue", "error", err)
			return syncqueue.NewImmediateQueue(nil)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, using immediate queue", "error", err)
		} else {
			logger.Info("valkey sync queue enabled", "addr", cfg.Sync.Valkey.Addr)
			return syncqueue.NewValkeyQueue(client, cfg.Sync.Valkey.QueueKey, logger)
		}
	}
	return syncqueue.NewImmediateQueue(nil)
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Sync.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Sync.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Sync.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideSyncer(cfg *config.Config, index faq.DocumentIndex, embed faq.Embedder, queue syncqueue.HandlerQueue, logger *slog.Logger) *faq.Syncer {
	return faq.NewSyncer(faq.SyncConfig{
		BatchSize:      cfg.Sync.BatchSize,
		Timeout:        cfg.Sync.Timeout.Std(),
		AsyncThreshold: cfg.Sync.AsyncThreshold,
		Dimensions:     cfg.Index.Dimensions,
	}, index, embed, queue, logger)
}

func provideUploadService(cfg *config.Config, repos repositories, syncer *faq.Syncer, logger *slog.Logger) *upload.Service {
	return upload.NewService(upload.Config{
		TagSheet:     cfg.Importer.TagSheet,
		FAQSheet:     cfg.Importer.FAQSheet,
		MaxFileBytes: cfg.Importer.MaxFileBytes,
	}, excel.NewOpener(), repos.faqs, repos.tags, syncer, logger)
}
