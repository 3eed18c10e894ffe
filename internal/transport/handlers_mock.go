package transport

import (
	"context"

	"github.com/UnendingLoop/ResizedImage/internal/model"
	"github.com/gin-gonic/gin"
)

type mockRenderService struct {
	renderFn  func(ctx context.Context, raw model.RawArgs) (string, error)
	enqueueFn func(ctx context.Context, raw model.RawArgs) (string, string, error)
}

func (m *mockRenderService) Render(ctx context.Context, raw model.RawArgs) (string, error) {
	return m.renderFn(ctx, raw)
}

func (m *mockRenderService) Enqueue(ctx context.Context, raw model.RawArgs) (string, string, error) {
	return m.enqueueFn(ctx, raw)
}

func init() {
	gin.SetMode(gin.TestMode)
}
