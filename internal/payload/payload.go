// Package payload constructs the request body artifact shared by all workers.
//
// The body is built exactly once at startup. In image mode the local file is
// read and encoded a single time; workers only ever see the finished bytes,
// so a missing or unreadable file surfaces as a configuration error before
// any request is dispatched.
package payload

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"faasbench/internal/config"
)

const contentTypeJSON = "application/json"

// Builder holds the prebuilt request body for one run. It is immutable after
// construction and safe for concurrent use.
type Builder struct {
	mode config.Mode
	body []byte
}

// New builds the payload artifact for the configured mode.
func New(cfg *config.Config) (*Builder, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	switch cfg.Mode {
	case config.ModeURL:
		imageURL := strings.TrimSpace(cfg.ImageURL)
		if imageURL == "" {
			imageURL = config.DefaultImageURL
		}
		body, err := json.Marshal(map[string]string{"url": imageURL})
		if err != nil {
			return nil, err
		}
		return &Builder{mode: cfg.Mode, body: body}, nil

	case config.ModeImage:
		path := strings.TrimSpace(cfg.ImagePath)
		if path == "" {
			return nil, errors.New("image path is required in image mode")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image %q: %w", path, err)
		}
		encoded := base64.StdEncoding.EncodeToString(data)
		body, err := json.Marshal(map[string]string{"image": encoded})
		if err != nil {
			return nil, err
		}
		return &Builder{mode: cfg.Mode, body: body}, nil

	case config.ModeHealth:
		return &Builder{mode: cfg.Mode, body: []byte("{}")}, nil

	default:
		return nil, fmt.Errorf("unknown payload mode %q", cfg.Mode)
	}
}

func (b *Builder) Mode() config.Mode {
	return b.mode
}

// ContentType returns the Content-Type header value for the body.
func (b *Builder) ContentType() string {
	return contentTypeJSON
}

// NewReader returns a fresh reader over the shared body bytes.
func (b *Builder) NewReader() io.ReadCloser {
	return io.NopCloser(bytes.NewReader(b.body))
}

// ContentLength returns the body size in bytes.
func (b *Builder) ContentLength() int64 {
	return int64(len(b.body))
}

// Bytes exposes the body for inspection. Callers must not mutate it.
func (b *Builder) Bytes() []byte {
	return b.body
}
