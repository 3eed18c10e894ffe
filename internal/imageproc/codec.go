// Package imageproc provides decoding of image sources, the fit algorithms and data-URI encoding.
package imageproc

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/UnendingLoop/ResizedImage/internal/model"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
)

var GetCType = map[imaging.Format]string{
	imaging.JPEG: JPEG,
	imaging.GIF:  GIF,
	imaging.PNG:  PNG,
}

// Image is a decoded image together with the format it should be written back in.
type Image struct {
	Pixels image.Image
	Format imaging.Format
}

func (i *Image) Width() int  { return i.Pixels.Bounds().Dx() }
func (i *Image) Height() int { return i.Pixels.Bounds().Dy() }

// Codec reads image sources and writes images as data URIs.
type Codec interface {
	Decode(ctx context.Context, source string) (*Image, error)
	EncodeDataURI(img *Image) (string, error)
}

// ImagingCodec implements Codec on top of disintegration/imaging.
type ImagingCodec struct {
	client      *http.Client
	jpegQuality int
	root        string
	denyRemote  bool
	maxPixels   int
}

type CodecOption func(*ImagingCodec)

// WithSourceRoot confines filesystem sources to root, symlinks resolved.
func WithSourceRoot(root string) CodecOption {
	return func(c *ImagingCodec) { c.root = root }
}

// WithRemoteSources switches http(s) sources on or off. They are on by default.
func WithRemoteSources(allow bool) CodecOption {
	return func(c *ImagingCodec) { c.denyRemote = !allow }
}

// WithMaxSourcePixels refuses sources whose header declares more pixels than n.
func WithMaxSourcePixels(n int) CodecOption {
	return func(c *ImagingCodec) { c.maxPixels = n }
}

var errSourceNotAllowed = errors.New("image source is not allowed")

func NewImagingCodec(client *http.Client, jpegQuality int, opts ...CodecOption) *ImagingCodec {
	if client == nil {
		client = http.DefaultClient
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 90
	}
	c := &ImagingCodec{client: client, jpegQuality: jpegQuality}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decode reads a data URI, an http(s) URL or a filesystem path. A source refused by the codec
// options fails with model.SourceNotAllowedError, every other failure with
// model.ImageDecodeFailureError carrying the source.
func (c *ImagingCodec) Decode(ctx context.Context, source string) (*Image, error) {
	data, err := c.read(ctx, source)
	if errors.Is(err, errSourceNotAllowed) {
		return nil, model.SourceNotAllowedError{Source: source}
	}
	if err != nil {
		return nil, model.ImageDecodeFailureError{Source: source, Err: err}
	}

	img, err := c.decodeBytes(data)
	if err != nil {
		return nil, model.ImageDecodeFailureError{Source: source, Err: err}
	}
	return img, nil
}

func (c *ImagingCodec) read(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, model.DataURIPrefix):
		return parseDataURI(source)
	case isHTTP(source):
		if c.denyRemote {
			return nil, errSourceNotAllowed
		}
		return c.fetch(ctx, source)
	default:
		if c.root != "" && !within(c.root, source) {
			return nil, errSourceNotAllowed
		}
		return os.ReadFile(source)
	}
}

func (c *ImagingCodec) fetch(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeFileFlow(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (c *ImagingCodec) decodeBytes(data []byte) (*Image, error) {
	cfg, f, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported image format: %w", err)
	}
	// заголовок проверяем до декодирования, чтобы не выделять память под бомбу
	if c.maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(c.maxPixels) {
		return nil, model.ImageTooLargeError{Width: cfg.Width, Height: cfg.Height, Max: c.maxPixels}
	}

	pixels, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", f, err)
	}

	format, err := imaging.FormatFromExtension(f)
	if err != nil {
		format = imaging.PNG
	}
	switch format {
	case imaging.JPEG, imaging.PNG, imaging.GIF:
	default:
		format = imaging.PNG
	}

	return &Image{Pixels: pixels, Format: format}, nil
}

// EncodeDataURI writes the image in its own format as data:<mime>;base64,<payload>.
func (c *ImagingCodec) EncodeDataURI(img *Image) (string, error) {
	if img == nil || img.Pixels == nil {
		return "", errors.New("nil image provided to EncodeDataURI")
	}

	format := img.Format
	cType, ok := GetCType[format]
	if !ok {
		format, cType = imaging.PNG, PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img.Pixels, format, imaging.JPEGQuality(c.jpegQuality)); err != nil {
		return "", fmt.Errorf("failed to encode %s data URI: %w", cType, err)
	}

	return model.DataURIPrefix + cType + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// parseDataURI accepts data:[<mime>][;param...][;base64],<payload>.
func parseDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, model.DataURIPrefix), ",")
	if !ok {
		return nil, errors.New("malformed data URI")
	}

	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		raw, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("malformed data URI payload: %w", err)
		}
		return []byte(raw), nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		// tolerate unpadded payloads
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(payload), "="))
		if err != nil {
			return nil, fmt.Errorf("malformed base64 payload: %w", err)
		}
	}
	return data, nil
}

func isHTTP(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// within reports whether path resolves to root or below it.
func within(root, path string) bool {
	absRoot, err := resolve(root)
	if err != nil {
		return false
	}
	absPath, err := resolve(path)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// resolve makes p absolute and follows symlinks. A missing file is resolved through its directory.
func resolve(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs)), nil
	}
	return abs, nil
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	_ = res.Close()
}
