package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnendingLoop/ResizedImage/internal/config"
	"github.com/UnendingLoop/ResizedImage/internal/imageproc"
	"github.com/UnendingLoop/ResizedImage/internal/kafka"
	"github.com/UnendingLoop/ResizedImage/internal/params"
	"github.com/UnendingLoop/ResizedImage/internal/render"
	"github.com/UnendingLoop/ResizedImage/internal/service"
	"github.com/UnendingLoop/ResizedImage/internal/storage"
	"github.com/UnendingLoop/ResizedImage/internal/worker"
	kafkago "github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	settings, err := config.Load("./.env")
	if err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	zlog.InitConsole()
	if err := zlog.SetLevel(settings.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	if !settings.WarmupEnabled() {
		zlog.Logger.Fatal().Msg("KAFKA_BROKER is empty, nothing to consume")
	}

	// Listening to interruptions through context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключиться к общему кэшу - in-memory бэкенд здесь бессмысленен, но допустим для локальной отладки
	cache, err := storage.NewCache(ctx, settings)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Str("backend", settings.CacheBackend).Msg("Failed to connect to cache")
	}
	if settings.CacheBackend == config.BackendMemory {
		zlog.Logger.Warn().Msg("Worker uses in-memory cache, warmed entries are not visible to the API")
	}

	// создаем экземпляр сервиса - без паблишера, воркер сам в очередь не пишет
	codec := imageproc.NewImagingCodec(
		&http.Client{Timeout: settings.FetchTimeout},
		settings.JPEGQuality,
		imageproc.WithSourceRoot(settings.SourceRoot()),
		imageproc.WithRemoteSources(settings.AllowRemoteSources),
		imageproc.WithMaxSourcePixels(settings.MaxPixels),
	)
	var svc WarmupWorkerService = service.NewRenderService(
		cache,
		codec,
		render.NewRenderer(codec),
		params.NewNormalizer(settings.DocumentRoot),
		service.WithKeyPrefix(settings.CachePrefix),
		service.WithLimits(settings.Limits()),
	)

	// ждем пока кафка раздуплится
	if err := kafka.WaitKafkaReady(ctx, settings.KafkaBroker, settings.ConnectRetries, settings.ConnectDelay); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Kafka is not available")
	}
	if err := kafka.InitKafkaTopics(ctx, settings.KafkaBroker, settings.ConnectDelay, settings.ConnectRetries, settings.KafkaTopic); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to init kafka topics")
	}

	// подключиться к кафке как читатель
	queue := make(chan kafkago.Message)
	cons := wbfkafka.NewConsumer([]string{settings.KafkaBroker}, settings.KafkaTopic, settings.KafkaGroupID)
	cons.StartConsuming(ctx, queue, consumeRetryStrategy)

	// Собираем воедино все что нужно воркеру и запускаем его
	go worker.NewWorkerInstance(svc, queue, cons, taskRetryStrategy(settings)).StartWorker(ctx)

	// Waiting for interruption to stop context to start Graceful shutdown
	<-ctx.Done()

	shutdown(cons, cache)
	zlog.Logger.Info().Msg("Exiting worker...")
}

func shutdown(cons *wbfkafka.Consumer, cache storage.Cache) {
	zlog.Logger.Info().Msg("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := cons.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close Kafka-reader")
	}
	zlog.Logger.Info().Msg("Kafka-consumer connection closed.")

	// Closing cache connection
	if err := cache.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close cache correctly")
		return
	}
	zlog.Logger.Info().Msg("Cache closed")
}
