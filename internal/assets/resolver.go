// Package assets downloads and caches company logos and advertisement PDFs
// from the media host.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/fairguide/internal/companies"
	"github.com/jonathan/fairguide/internal/logger"
)

const (
	// DefaultTimeout bounds a single asset download.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDimension is the largest logo side passed to the compiler.
	DefaultMaxDimension = 2048

	// DefaultMaxPixels is the largest logo, in pixels, that is decoded.
	DefaultMaxPixels = 40_000_000

	// DefaultMaxBytes is the largest asset body that is read.
	DefaultMaxBytes = 20 << 20

	// DefaultUserAgent is sent with every asset request.
	DefaultUserAgent = "fairguide/1.0"
)

// Kind selects which asset of a company is resolved.
type Kind int

const (
	// KindLogo is the company logo, re-encoded as PNG.
	KindLogo Kind = iota
	// KindAd is the advertisement page, stored as fetched.
	KindAd
)

func (k Kind) String() string {
	switch k {
	case KindLogo:
		return "logo"
	case KindAd:
		return "ad"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Config configures a Resolver.
type Config struct {
	BaseURL  string
	CacheDir string

	// LogoExt and AdExt are the extensions requested from the media host.
	LogoExt string
	AdExt   string

	MaxDimension int
	MaxPixels    int
	MaxBytes     int64
	Timeout      time.Duration

	// PlaceholderLogo and PlaceholderAd are substituted for missing assets.
	// Generated into CacheDir when empty.
	PlaceholderLogo string
	PlaceholderAd   string
}

// FetchError is a network level failure while downloading an asset.
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("asset fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("asset fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Resolver resolves company assets to local files.
type Resolver struct {
	cfg    Config
	client *http.Client
	group  singleflight.Group
	log    *logger.Logger
}

// NewResolver creates the cache directory and makes sure both placeholders
// exist.
func NewResolver(cfg Config, log *logger.Logger) (*Resolver, error) {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.CacheDir == "" {
		return nil, errors.New("assets: cache directory is required")
	}
	if cfg.LogoExt == "" {
		cfg.LogoExt = "png"
	}
	if cfg.AdExt == "" {
		cfg.AdExt = "pdf"
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = DefaultMaxDimension
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	for _, kind := range []Kind{KindLogo, KindAd} {
		if err := os.MkdirAll(filepath.Join(cfg.CacheDir, kind.String()), 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	logo, ad, err := EnsurePlaceholders(filepath.Join(cfg.CacheDir, "placeholders"), cfg.PlaceholderLogo, cfg.PlaceholderAd)
	if err != nil {
		return nil, err
	}
	cfg.PlaceholderLogo = logo
	cfg.PlaceholderAd = ad

	return &Resolver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With("component", "assets"),
	}, nil
}

// URL returns the media host location of an asset.
func (r *Resolver) URL(key, ext string) string {
	return strings.TrimRight(r.cfg.BaseURL, "/") + "/" + url.PathEscape(key) + "." + ext
}

// Fetch downloads <base>/<key>.<ext>. A non-200 answer is reported as
// ok=false without an error. A body larger than MaxBytes fails with
// ErrTooLarge; other errors are network failures.
func (r *Resolver) Fetch(ctx context.Context, key, ext string) (body []byte, ok bool, err error) {
	u := r.URL(key, ext)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, &FetchError{URL: u, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, false, &FetchError{URL: u, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		r.log.Debug("asset missing", "url", u, "status", resp.StatusCode)
		return nil, false, nil
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, r.cfg.MaxBytes+1))
	if err != nil {
		return nil, false, &FetchError{URL: u, Message: "failed to read response body", Cause: err}
	}
	if int64(len(body)) > r.cfg.MaxBytes {
		return nil, false, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, u, r.cfg.MaxBytes)
	}
	return body, true, nil
}

// Resolve returns the local file for a company asset. Cached files are
// reused. A missing or unusable asset resolves to the placeholder; network
// failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, companyName string, kind Kind) (companies.AssetRef, error) {
	key := companies.Key(companyName)
	if key == "" {
		return r.placeholder(kind), nil
	}

	target := r.cachePath(key, kind)
	if fileExists(target) {
		return companies.AssetRef{Path: target}, nil
	}

	// The shared download outlives any single caller; it is bounded by the
	// resolver timeout instead.
	v, err, _ := r.group.Do(kind.String()+"/"+key, func() (any, error) {
		if fileExists(target) {
			return companies.AssetRef{Path: target}, nil
		}
		dlCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.Timeout)
		defer cancel()
		return r.download(dlCtx, key, kind, target)
	})
	if err != nil {
		return companies.AssetRef{}, err
	}
	return v.(companies.AssetRef), nil
}

func (r *Resolver) download(ctx context.Context, key string, kind Kind, target string) (companies.AssetRef, error) {
	ext := r.cfg.LogoExt
	if kind == KindAd {
		ext = r.cfg.AdExt
	}

	body, ok, err := r.Fetch(ctx, key, ext)
	if errors.Is(err, ErrTooLarge) {
		r.log.Warn("oversized asset, using placeholder", "key", key, "kind", kind.String(), "error", err)
		return r.placeholder(kind), nil
	}
	if err != nil {
		return companies.AssetRef{}, err
	}
	if !ok {
		return r.placeholder(kind), nil
	}

	var data []byte
	switch kind {
	case KindLogo:
		data, err = PrepareImage(body, r.cfg.MaxDimension, r.cfg.MaxPixels)
	case KindAd:
		data, err = CheckDocument(body)
	default:
		err = fmt.Errorf("unknown asset kind %d", int(kind))
	}
	if err != nil {
		r.log.Warn("unusable asset, using placeholder", "key", key, "kind", kind.String(), "error", err)
		return r.placeholder(kind), nil
	}

	if err := writeAtomic(target, data); err != nil {
		return companies.AssetRef{}, err
	}
	r.log.Debug("asset cached", "key", key, "kind", kind.String(), "path", target, "bytes", len(data))
	return companies.AssetRef{Path: target}, nil
}

func (r *Resolver) placeholder(kind Kind) companies.AssetRef {
	if kind == KindAd {
		return companies.AssetRef{Path: r.cfg.PlaceholderAd, Placeholder: true}
	}
	return companies.AssetRef{Path: r.cfg.PlaceholderLogo, Placeholder: true}
}

// cachePath is keyed by company; logos are always stored as PNG.
func (r *Resolver) cachePath(key string, kind Kind) string {
	ext := "png"
	if kind == KindAd {
		ext = r.cfg.AdExt
	}
	return filepath.Join(r.cfg.CacheDir, kind.String(), fileSafe(key)+"."+ext)
}

// Purge removes every cached asset. Placeholders are kept.
func (r *Resolver) Purge() error {
	for _, kind := range []Kind{KindLogo, KindAd} {
		dir := filepath.Join(r.cfg.CacheDir, kind.String())
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to purge %s cache: %w", kind, err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to recreate %s cache: %w", kind, err)
		}
	}
	return nil
}

// writeAtomic writes data to a temporary file next to target and renames it
// into place, so readers never see a partial file.
func writeAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to move asset into cache: %w", err)
	}
	return nil
}

func fileSafe(key string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
