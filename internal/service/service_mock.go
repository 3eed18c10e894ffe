package service

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/UnendingLoop/ResizedImage/internal/imageproc"
	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/retry"
)

// MOCK CACHE

type mockCache struct {
	getFn func(ctx context.Context, key string) (string, bool, error)
	setFn func(ctx context.Context, key, value string) error
}

func (m *mockCache) Get(ctx context.Context, key string) (string, bool, error) {
	return m.getFn(ctx, key)
}

func (m *mockCache) Set(ctx context.Context, key, value string) error {
	return m.setFn(ctx, key, value)
}

// MOCK CODEC - отдает картинку заданного размера и пишет размеры в data URI

type fakeCodec struct {
	mu       sync.Mutex
	w, h     int
	decodeFn func(ctx context.Context, source string) (*imageproc.Image, error)
	sources  []string
	encoded  []string
}

func (f *fakeCodec) Decode(ctx context.Context, source string) (*imageproc.Image, error) {
	f.mu.Lock()
	f.sources = append(f.sources, source)
	f.mu.Unlock()

	if f.decodeFn != nil {
		return f.decodeFn(ctx, source)
	}
	return &imageproc.Image{Pixels: image.NewNRGBA(image.Rect(0, 0, f.w, f.h)), Format: imaging.PNG}, nil
}

func (f *fakeCodec) EncodeDataURI(img *imageproc.Image) (string, error) {
	uri := fmt.Sprintf("data:image/png;base64,%dx%d", img.Width(), img.Height())

	f.mu.Lock()
	f.encoded = append(f.encoded, uri)
	f.mu.Unlock()

	return uri, nil
}

func (f *fakeCodec) decodeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sources)
}

// MOCK PUBLISHER

type mockPublisher struct {
	sendFn func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
	return m.sendFn(ctx, s, key, v)
}
