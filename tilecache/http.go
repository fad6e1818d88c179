package tilecache

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // tile decoders
	_ "image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/maptile"
	_ "golang.org/x/image/webp"
)

// DefaultURLTemplate is the OpenStreetMap standard tile layer.
const DefaultURLTemplate = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// DefaultUserAgent identifies the client to tile servers, several of which
// reject requests without one.
const DefaultUserAgent = "slippy/1.0 (+https://github.com/phanxgames/slippy)"

const defaultTimeout = 15 * time.Second

// HTTPConfig configures an HTTPFetcher. Zero fields take the defaults.
type HTTPConfig struct {
	// URLTemplate contains {z}, {x} and {y} placeholders.
	URLTemplate string
	UserAgent   string
	// Timeout applies when Client is nil.
	Timeout time.Duration
	Client  *http.Client
}

// HTTPFetcher downloads tiles from an XYZ tile server and decodes PNG, JPEG
// or WebP images.
type HTTPFetcher struct {
	client    *http.Client
	template  string
	userAgent string
}

// NewHTTPFetcher creates a fetcher from cfg.
func NewHTTPFetcher(cfg HTTPConfig) *HTTPFetcher {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultURLTemplate
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Client == nil {
		if cfg.Timeout <= 0 {
			cfg.Timeout = defaultTimeout
		}
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPFetcher{
		client:    cfg.Client,
		template:  cfg.URLTemplate,
		userAgent: cfg.UserAgent,
	}
}

// URL expands the template for key.
func (f *HTTPFetcher) URL(key maptile.Tile) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(int(key.Z)),
		"{x}", strconv.FormatUint(uint64(key.X), 10),
		"{y}", strconv.FormatUint(uint64(key.Y), 10),
	)
	return r.Replace(f.template)
}

// Fetch downloads and decodes the tile. Missing tiles (404, 410) return an
// error wrapping ErrNotFound.
func (f *HTTPFetcher) Fetch(ctx context.Context, key maptile.Tile) (image.Image, error) {
	url := f.URL(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return nil, fmt.Errorf("fetch %s: %w", url, ErrNotFound)
	default:
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}
