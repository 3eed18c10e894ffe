// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"io"

	"github.com/UnendingLoop/ResizedImage/internal/model"
	"github.com/UnendingLoop/ResizedImage/internal/mwlogger"
	"github.com/UnendingLoop/ResizedImage/internal/params"
	"github.com/wb-go/wbf/ginext"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
	maxBodySize     = 32 << 20 // inline data URIs can be large
)

type RenderHandler struct {
	service RenderService
}

type RenderService interface {
	Render(ctx context.Context, raw model.RawArgs) (string, error)                   // отрендерить сразу
	Enqueue(ctx context.Context, raw model.RawArgs) (taskID, key string, err error) // прогреть кэш через очередь
}

func NewRenderHandler(svc RenderService) *RenderHandler {
	return &RenderHandler{
		service: svc,
	}
}

func (h RenderHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h RenderHandler) Render(ctx *ginext.Context) {
	raw, err := readRawArgs(ctx)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	res, err := h.service.Render(ctx.Request.Context(), raw)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	cType := contentTypeText
	if params.ReturnMode(raw) == model.ReturnImage {
		cType = contentTypeHTML
	}
	ctx.Data(200, cType, []byte(res))
}

func (h RenderHandler) Warm(ctx *ginext.Context) {
	raw, err := readRawArgs(ctx)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	taskID, key, err := h.service.Enqueue(ctx.Request.Context(), raw)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(202, map[string]string{"task_id": taskID, "cache_key": key})
}

func readRawArgs(ctx *ginext.Context) (model.RawArgs, error) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxBodySize))
	if err != nil {
		logger := mwlogger.LoggerFromContext(ctx.Request.Context())
		logger.Warn().Err(err).Msg("Failed to read request body")
		return nil, model.ErrBadPayload
	}

	var raw model.RawArgs
	if err := raw.UnmarshalJSON(body); err != nil {
		return nil, model.ErrBadPayload
	}
	return raw, nil
}
