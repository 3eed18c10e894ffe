package main

import (
	"context"
	"time"

	"github.com/UnendingLoop/ResizedImage/internal/config"
	"github.com/UnendingLoop/ResizedImage/internal/model"
	"github.com/wb-go/wbf/retry"
)

type WarmupWorkerService interface {
	Render(ctx context.Context, raw model.RawArgs) (string, error)
}

var consumeRetryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    2 * time.Second,
	Backoff:  1.5,
}

// повторы одной задачи внутри воркера, после них задача коммитится и пропадает
func taskRetryStrategy(s *config.Settings) retry.Strategy {
	return retry.Strategy{
		Attempts: s.TaskRetries,
		Delay:    s.TaskRetryDelay,
		Backoff:  2,
	}
}
