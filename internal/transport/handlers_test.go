package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/UnendingLoop/ResizedImage/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
)

func newTestRouter(h *RenderHandler) *gin.Engine {
	r := gin.New()
	r.GET("/ping", func(c *gin.Context) { h.SimplePinger((*ginext.Context)(c)) })
	r.POST("/resized-image", func(c *gin.Context) { h.Render((*ginext.Context)(c)) })
	r.POST("/resized-image/warm", func(c *gin.Context) { h.Warm((*ginext.Context)(c)) })
	return r
}

func TestRenderHandler_Ping(t *testing.T) {
	r := newTestRouter(NewRenderHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "pong", body["message"])
}

func TestRenderHandler_Render(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mock       *mockRenderService
		wantStatus int
		wantCType  string
		wantBody   string
	}{
		{
			name: "image mode is html",
			body: `{"file":"photo.jpg","width":150,"class":"thumb"}`,
			mock: &mockRenderService{
				renderFn: func(ctx context.Context, raw model.RawArgs) (string, error) {
					require.Len(t, raw, 3)
					require.Equal(t, "class", raw[2].Key)
					return `<img class="thumb" alt="" src="data:,"/>`, nil
				},
			},
			wantStatus: 200,
			wantCType:  contentTypeHTML,
			wantBody:   `<img class="thumb" alt="" src="data:,"/>`,
		},
		{
			name: "url mode is plain text",
			body: `{"file":"photo.jpg","height":100,"return":"URL"}`,
			mock: &mockRenderService{
				renderFn: func(ctx context.Context, raw model.RawArgs) (string, error) {
					return "data:image/png;base64,AAAA", nil
				},
			},
			wantStatus: 200,
			wantCType:  contentTypeText,
			wantBody:   "data:image/png;base64,AAAA",
		},
		{
			name: "validation error",
			body: `{"width":100}`,
			mock: &mockRenderService{
				renderFn: func(ctx context.Context, raw model.RawArgs) (string, error) {
					return "", model.MissingRequiredArgumentError{Name: "file"}
				},
			},
			wantStatus: 400,
			wantBody:   `{"error":"resized_image requires \"file\" argument"}`,
		},
		{
			name: "unreadable image",
			body: `{"file":"broken.jpg","width":100}`,
			mock: &mockRenderService{
				renderFn: func(ctx context.Context, raw model.RawArgs) (string, error) {
					return "", model.ImageDecodeFailureError{Source: "broken.jpg", Err: errors.New("unexpected EOF")}
				},
			},
			wantStatus: 422,
		},
		{
			name: "refused source",
			body: `{"file":"/etc/passwd","width":100}`,
			mock: &mockRenderService{
				renderFn: func(ctx context.Context, raw model.RawArgs) (string, error) {
					return "", model.SourceNotAllowedError{Source: "/etc/passwd"}
				},
			},
			wantStatus: 422,
			wantBody:   `{"error":"resized_image failed to read image \"/etc/passwd\""}`,
		},
		{
			name: "dimension out of range",
			body: `{"file":"photo.jpg","width":2147483647,"height":2147483647}`,
			mock: &mockRenderService{
				renderFn: func(ctx context.Context, raw model.RawArgs) (string, error) {
					return "", model.DimensionOutOfRangeError{Name: "width", Max: 8192}
				},
			},
			wantStatus: 400,
			wantBody:   `{"error":"resized_image requires \"width\" to be between 0 and 8192"}`,
		},
		{
			name: "cache backend down",
			body: `{"file":"photo.jpg","width":100}`,
			mock: &mockRenderService{
				renderFn: func(ctx context.Context, raw model.RawArgs) (string, error) {
					return "", errors.New("dial tcp: connection refused")
				},
			},
			wantStatus: 500,
		},
		{
			name:       "body is not an object",
			body:       `["file","photo.jpg"]`,
			mock:       &mockRenderService{},
			wantStatus: 400,
			wantBody:   `{"error":"request body must be a JSON object"}`,
		},
		{
			name:       "broken json",
			body:       `{"file":`,
			mock:       &mockRenderService{},
			wantStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(NewRenderHandler(tt.mock))

			req := httptest.NewRequest(http.MethodPost, "/resized-image", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCType != "" {
				require.Equal(t, tt.wantCType, w.Header().Get("Content-Type"))
			}
			if tt.wantBody != "" {
				require.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestRenderHandler_Warm(t *testing.T) {
	tests := []struct {
		name       string
		mock       *mockRenderService
		wantStatus int
	}{
		{
			name: "accepted",
			mock: &mockRenderService{
				enqueueFn: func(ctx context.Context, raw model.RawArgs) (string, string, error) {
					return "task-1", "resized-image-abc-10", nil
				},
			},
			wantStatus: 202,
		},
		{
			name: "warm-up disabled",
			mock: &mockRenderService{
				enqueueFn: func(ctx context.Context, raw model.RawArgs) (string, string, error) {
					return "", "", model.ErrWarmupDisabled
				},
			},
			wantStatus: 503,
		},
		{
			name: "invalid request",
			mock: &mockRenderService{
				enqueueFn: func(ctx context.Context, raw model.RawArgs) (string, string, error) {
					return "", "", model.MissingDimensionsError{}
				},
			},
			wantStatus: 400,
		},
		{
			name: "queue failure",
			mock: &mockRenderService{
				enqueueFn: func(ctx context.Context, raw model.RawArgs) (string, string, error) {
					return "", "", model.ErrCommon500
				},
			},
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(NewRenderHandler(tt.mock))

			req := httptest.NewRequest(http.MethodPost, "/resized-image/warm", strings.NewReader(`{"file":"a.jpg","width":10}`))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == 202 {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.Equal(t, "task-1", body["task_id"])
				require.Equal(t, "resized-image-abc-10", body["cache_key"])
			}
		})
	}
}
