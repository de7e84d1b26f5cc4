//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/xreal/faqbase/internal/bootstrap"
	"github.com/xreal/faqbase/internal/domain/faq"
	"github.com/xreal/faqbase/internal/domain/upload"
	"github.com/xreal/faqbase/internal/infra/config"
	httpiface "github.com/xreal/faqbase/internal/interface/http"
	"github.com/xreal/faqbase/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		providePostgresPool,
		provideRepositories,
		provideFAQRepository,
		provideTagRepository,
		provideDocumentIndex,
		provideEmbedder,
		provideSyncQueue,
		provideSyncer,
		provideUploadService,
		faq.NewService,
		faq.NewTagService,
		wire.Bind(new(httpiface.UploadService), new(*upload.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
