package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SumireDoi/LocaConne/config"
	"github.com/SumireDoi/LocaConne/internal/api"
	"github.com/SumireDoi/LocaConne/internal/api/handler"
	"github.com/SumireDoi/LocaConne/internal/extract"
	"github.com/SumireDoi/LocaConne/internal/imageproc"
	"github.com/SumireDoi/LocaConne/internal/knowledge"
	"github.com/SumireDoi/LocaConne/internal/maintenance"
	"github.com/SumireDoi/LocaConne/internal/repository"
	"github.com/SumireDoi/LocaConne/internal/service"
	"github.com/SumireDoi/LocaConne/internal/storage"
	"github.com/SumireDoi/LocaConne/internal/vision"
	"github.com/SumireDoi/LocaConne/pkg/database"
	"github.com/SumireDoi/LocaConne/pkg/logger"
	"github.com/SumireDoi/LocaConne/pkg/tracing"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func main() {
	_ = godotenv.Load()
	cfg := must(config.Load())

	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()
	shutdownTracing := must(tracing.Init(ctx, cfg.Tracing.Endpoint, "locaconne"))
	defer func() { _ = shutdownTracing(ctx) }()

	db := must(database.InitDB(cfg))

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	var store storage.ObjectStorage
	if cfg.Storage.Bucket != "" {
		store = storage.NewGCSStorage(cfg.Storage.Bucket, cfg.Storage.Token)
	} else {
		logger.Warn("no storage bucket configured, using in-memory storage")
		store = storage.NewMemoryStorage()
	}

	extractor := extract.NewExtractor(must(extract.NewKagomeTokenizer()))
	detector := vision.NewGoogleDetector(cfg.Vision.Endpoint, cfg.Vision.APIKey, cfg.Knowledge.Language)
	perturber := imageproc.NewPerturber(store, rand.New(rand.NewSource(time.Now().UnixNano())))

	wikidata := knowledge.NewWikidataClient(cfg.Knowledge.WikidataAPI, cfg.Knowledge.SPARQLEndpoint)
	wikipedia := knowledge.NewWikipediaClient(cfg.Knowledge.WikipediaAPI)
	enricher := service.NewEnricher(
		wikidata, wikipedia, rdb,
		time.Duration(cfg.Knowledge.CacheTTLMinutes)*time.Minute,
		cfg.Knowledge.Language,
	)

	postRepo := repository.NewPostRepository(db)
	detailRepo := repository.NewLocationDetailRepository(db)
	postService := service.NewPostService(postRepo, detailRepo, extractor, detector, perturber, store, enricher)

	if cfg.Maintenance.Schedule != "" {
		stop := must(maintenance.NewRunner(db).Start(cfg.Maintenance.Schedule))
		defer stop()
	}

	r := api.NewRouter(cfg.Server.Mode, handler.New(postService))
	logger.Info("server starting", zap.Int("port", cfg.Server.Port))
	if err := r.Run(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		logger.Error("server exited", zap.Error(err))
	}
}
