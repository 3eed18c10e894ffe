package main

import (
	"context"

	"github.com/UnendingLoop/ResizedImage/internal/model"
)

type RenderAPIService interface {
	Render(ctx context.Context, raw model.RawArgs) (string, error)
	Enqueue(ctx context.Context, raw model.RawArgs) (string, string, error)
	Name() string
	Cacheable() bool
}
