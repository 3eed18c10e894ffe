// Package main (in api-subfolder) provides launch of the whole application except worker
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/ResizedImage/internal/config"
	"github.com/UnendingLoop/ResizedImage/internal/imageproc"
	"github.com/UnendingLoop/ResizedImage/internal/kafka"
	"github.com/UnendingLoop/ResizedImage/internal/mwlogger"
	"github.com/UnendingLoop/ResizedImage/internal/params"
	"github.com/UnendingLoop/ResizedImage/internal/render"
	"github.com/UnendingLoop/ResizedImage/internal/service"
	"github.com/UnendingLoop/ResizedImage/internal/storage"
	"github.com/UnendingLoop/ResizedImage/internal/transport"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	settings, err := config.Load("./.env")
	if err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel(settings.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключиться к кэшу
	cache, err := storage.NewCache(ctx, settings)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Str("backend", settings.CacheBackend).Msg("Failed to connect to cache")
	}

	opts := []service.Option{service.WithKeyPrefix(settings.CachePrefix), service.WithLimits(settings.Limits())}

	// прогрев через кафку - только если задан брокер
	var pub *wbfkafka.Producer
	if settings.WarmupEnabled() {
		if err := kafka.WaitKafkaReady(ctx, settings.KafkaBroker, settings.ConnectRetries, settings.ConnectDelay); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("Kafka is not available")
		}
		if err := kafka.InitKafkaTopics(ctx, settings.KafkaBroker, settings.ConnectDelay, settings.ConnectRetries, settings.KafkaTopic); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("Failed to init kafka topics")
		}
		pub = wbfkafka.NewProducer([]string{settings.KafkaBroker}, settings.KafkaTopic)
		opts = append(opts, service.WithPublisher(pub))
	}

	// создаем экземпляр сервиса
	codec := imageproc.NewImagingCodec(
		&http.Client{Timeout: settings.FetchTimeout},
		settings.JPEGQuality,
		imageproc.WithSourceRoot(settings.SourceRoot()),
		imageproc.WithRemoteSources(settings.AllowRemoteSources),
		imageproc.WithMaxSourcePixels(settings.MaxPixels),
	)
	var svc RenderAPIService = service.NewRenderService(
		cache,
		codec,
		render.NewRenderer(codec),
		params.NewNormalizer(settings.DocumentRoot),
		opts...,
	)
	zlog.Logger.Info().Str("function", svc.Name()).Bool("host_cacheable", svc.Cacheable()).
		Str("cache_backend", settings.CacheBackend).Bool("warmup", settings.WarmupEnabled()).
		Bool("remote_sources", settings.AllowRemoteSources).Str("source_root", settings.SourceRoot()).Msg("render service ready")
	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewRenderHandler(svc)
	// сетапим сервер
	engine := ginext.New(settings.GinMode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.POST("/resized-image", handlers.Render)     // рендер с кэшем
	engine.POST("/resized-image/warm", handlers.Warm) // прогрев кэша через очередь

	srv := &http.Server{
		Addr:              ":" + settings.AppPort,
		Handler:           mwlogger.NewMWLogger(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Server launch
	go func() {
		zlog.Logger.Info().Msgf("Server running on http://localhost%s", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				zlog.Logger.Info().Msg("Server gracefully stopping...")
			default:
				zlog.Logger.Error().Err(err).Msg("Server stopped")
				stop()
			}
		}
	}()

	// запускаем фоновую чистку просроченных записей, если бэкенд сам их не удаляет
	if j, ok := cache.(storage.Janitor); ok && settings.CacheTTL > 0 {
		go janitorLoop(ctx, j, settings.CacheTTL)
	}

	// ждем отмены контекста для запуска грейсфул закрытия соединений
	<-ctx.Done()

	shutdown(srv, pub, cache)
	zlog.Logger.Info().Msg("Exiting API...")
}

func janitorLoop(ctx context.Context, j storage.Janitor, every time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Logger.Error().Interface("panic", r).Msg("Janitor loop crashed")
		}
	}()

	ticker := time.NewTicker(max(every, time.Minute))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := j.DeleteExpired(ctx)
			if err != nil {
				zlog.Logger.Error().Err(err).Msg("Failed to delete expired cache entries")
				continue
			}
			zlog.Logger.Debug().Int64("deleted", n).Msg("Expired cache entries removed")
		}
	}
}

func shutdown(srv *http.Server, pub *wbfkafka.Producer, cache storage.Cache) {
	zlog.Logger.Info().Msg("Interrupt received!!! Starting shutdown sequence...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
	}

	// Closing Kafka connection:
	if pub != nil {
		if err := pub.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("Failed to close Kafka-writer")
		}
		zlog.Logger.Info().Msg("Kafka-producer connection closed.")
	}

	// Closing cache connection
	if err := cache.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close cache correctly")
		return
	}
	zlog.Logger.Info().Msg("Cache closed")
}
