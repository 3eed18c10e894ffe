// Package worker consumes cache warm-up tasks and renders them into the shared cache
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnendingLoop/ResizedImage/internal/model"
	"github.com/UnendingLoop/ResizedImage/internal/mwlogger"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type WarmupService interface {
	Render(ctx context.Context, raw model.RawArgs) (string, error)
}

// Committer is the part of wbf kafka.Consumer the worker needs.
type Committer interface {
	Commit(ctx context.Context, msg kafkago.Message) error
}

type Worker struct {
	service   WarmupService
	queue     <-chan kafkago.Message
	committer Committer
	strategy  retry.Strategy
}

// NewWorkerInstance builds a worker that retries transient task failures according to strategy.
func NewWorkerInstance(svc WarmupService, q <-chan kafkago.Message, cons Committer, strategy retry.Strategy) *Worker {
	return &Worker{service: svc, queue: q, committer: cons, strategy: strategy}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				zlog.Logger.Info().Msg("Queue channel closed, stopping worker...")
				return
			}
			w.handle(ctx, msg)
		}
	}
}

// handle commits every message it finishes with, including one whose retries ran out.
// Only shutdown leaves a task uncommitted.
func (w *Worker) handle(ctx context.Context, msg kafkago.Message) {
	logger := zlog.Logger.With().
		Str("task_id", string(msg.Key)).
		Int64("offset", msg.Offset).
		Logger()
	taskCtx := mwlogger.WithLogger(ctx, logger)

	if err := w.processWithRetry(taskCtx, msg); err != nil {
		switch {
		case ctx.Err() != nil:
			logger.Warn().Err(err).Msg("Warm-up task interrupted by shutdown, leaving it uncommitted")
			return
		case permanent(err):
			logger.Warn().Err(err).Msg("Warm-up task rejected, committing")
		default:
			// кэш догреется на первом же запросе к API
			logger.Error().Err(err).Int("attempts", attempts(w.strategy)).Msg("Warm-up task failed after retries, dropping it")
		}
	}

	if err := w.committer.Commit(ctx, msg); err != nil {
		logger.Error().Err(err).Msg("Failed to commit queue-message")
	}
}

func (w *Worker) processWithRetry(ctx context.Context, msg kafkago.Message) error {
	logger := mwlogger.LoggerFromContext(ctx)
	delay := w.strategy.Delay

	for attempt := 1; ; attempt++ {
		err := w.process(ctx, msg)
		if err == nil || permanent(err) || attempt >= attempts(w.strategy) {
			return err
		}
		logger.Warn().Err(err).Int("attempt", attempt).Dur("next_in", delay).Msg("Warm-up task failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if w.strategy.Backoff > 1 {
			delay = time.Duration(float64(delay) * w.strategy.Backoff)
		}
	}
}

func (w *Worker) process(ctx context.Context, msg kafkago.Message) error {
	var raw model.RawArgs
	if err := raw.UnmarshalJSON(msg.Value); err != nil {
		return fmt.Errorf("%w: %w", model.ErrBadPayload, err)
	}

	if _, err := w.service.Render(ctx, raw); err != nil {
		return err
	}

	logger := mwlogger.LoggerFromContext(ctx)
	logger.Info().Msg("Warm-up task done")
	return nil
}

func attempts(s retry.Strategy) int {
	return max(s.Attempts, 1)
}

// permanent errors will fail the same way on every attempt.
func permanent(err error) bool {
	return errors.Is(err, model.ErrInvalidArgument) || errors.Is(err, model.ErrBadPayload)
}
