// Package service provides business-logic for the app
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/UnendingLoop/ResizedImage/internal/cachekey"
	"github.com/UnendingLoop/ResizedImage/internal/imageproc"
	"github.com/UnendingLoop/ResizedImage/internal/model"
	"github.com/UnendingLoop/ResizedImage/internal/mwlogger"
	"github.com/UnendingLoop/ResizedImage/internal/params"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
)

// RenderService runs the resized_image pipeline: validate, normalize, derive the key, then
// either return the cached string or resize, render and store it.
type RenderService struct {
	cache      Cache
	codec      imageproc.Codec
	renderer   OutputRenderer
	normalizer *params.Normalizer
	publisher  TaskPublisher
	keyPrefix  string
	limits     model.Limits
}

// Cache - контракт для работы с кэшем результатов
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// OutputRenderer - контракт для сборки итоговой строки
type OutputRenderer interface {
	Render(mode model.ReturnMode, img *imageproc.Image, attrs model.Attributes) (string, error)
}

// TaskPublisher - контракт для работы с очередью
type TaskPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

type Option func(*RenderService)

// WithPublisher enables Enqueue.
func WithPublisher(pub TaskPublisher) Option {
	return func(s *RenderService) { s.publisher = pub }
}

// WithKeyPrefix namespaces every cache key, e.g. per environment.
func WithKeyPrefix(prefix string) Option {
	return func(s *RenderService) { s.keyPrefix = prefix }
}

// WithLimits replaces model.DefaultLimits.
func WithLimits(limits model.Limits) Option {
	return func(s *RenderService) { s.limits = limits }
}

func NewRenderService(cache Cache, codec imageproc.Codec, renderer OutputRenderer, normalizer *params.Normalizer, opts ...Option) *RenderService {
	s := &RenderService{
		cache:      cache,
		codec:      codec,
		renderer:   renderer,
		normalizer: normalizer,
		limits:     model.DefaultLimits,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Стратегия ретрая отправки в очередь - можно потом вынести значения в конфиг/env
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

// Name is the function name templates call.
func (s *RenderService) Name() string { return model.FunctionName }

// Cacheable is false: the host must not memoize calls, the service caches by itself.
func (s *RenderService) Cacheable() bool { return false }

// Render returns the rendered string for raw. Validation errors are returned before any cache or
// image I/O; cache errors come back unchanged; nothing is stored when rendering fails.
func (s *RenderService) Render(ctx context.Context, raw model.RawArgs) (string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	req, key, err := s.prepare(raw)
	if err != nil {
		return "", err
	}

	cached, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Error().Err(err).Str("cache_key", key).Msg("Failed to read from cache")
		return "", err
	}
	if found {
		logger.Debug().Str("cache_key", key).Msg("cache hit")
		return cached, nil
	}
	logger.Info().Str("cache_key", key).Str("file", req.File).Str("fit", string(req.Fit)).Msg("cache miss, resizing")

	img, err := s.codec.Decode(ctx, req.File)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to decode source image")
		return "", err
	}

	resized, err := imageproc.Resize(img, req.Fit, req.Width, req.Height, s.limits.MaxPixels)
	if err != nil {
		logger.Warn().Err(err).Msg("Resize refused")
		return "", err
	}

	out, err := s.renderer.Render(req.Return, resized, req.Attributes)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to render resized image")
		return "", fmt.Errorf("%s failed to render image %q: %w", model.FunctionName, req.File, err)
	}

	if err := s.cache.Set(ctx, key, out); err != nil {
		logger.Error().Err(err).Str("cache_key", key).Msg("Failed to write to cache")
		return "", err
	}

	return out, nil
}

// Enqueue publishes raw as a warm-up task and returns the task id with the key the worker will fill.
func (s *RenderService) Enqueue(ctx context.Context, raw model.RawArgs) (string, string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if s.publisher == nil {
		return "", "", model.ErrWarmupDisabled
	}

	_, key, err := s.prepare(raw)
	if err != nil {
		return "", "", err
	}

	payload, err := raw.MarshalJSON()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal warm-up task")
		return "", "", model.ErrCommon500
	}

	taskID := uuid.New().String()

	// кладем в очередь задач(в кафку)
	if err := s.publisher.SendWithRetry(ctx, retryStrategy, []byte(taskID), payload); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish warm-up task %q to task-queue", taskID))
		return "", "", model.ErrCommon500
	}

	logger.Info().Str("task_id", taskID).Str("cache_key", key).Msg("warm-up task published")
	return taskID, key, nil
}

func (s *RenderService) prepare(raw model.RawArgs) (model.Request, string, error) {
	other := params.OtherArgs(raw)
	if err := params.Validate(raw, other); err != nil {
		return model.Request{}, "", err
	}
	// лимиты до кэша и до чтения картинки
	if err := params.CheckLimits(raw, s.limits); err != nil {
		return model.Request{}, "", err
	}

	req := s.normalizer.Normalize(raw, other)

	key, err := cachekey.Derive(req)
	if err != nil {
		return model.Request{}, "", fmt.Errorf("failed to derive cache key: %w", err)
	}

	return req, s.keyPrefix + key, nil
}
