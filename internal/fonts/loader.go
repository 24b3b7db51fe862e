package fonts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/codyseavey/git-dungeon/backend/internal/metrics"
	"github.com/codyseavey/git-dungeon/backend/internal/models"
)

const (
	fontFetchTimeout = 15 * time.Second
	maxFontBytes     = 32 << 20
)

// Loader turns font sources into loaded font configs.
type Loader interface {
	LoadFonts(ctx context.Context, sources []Source) ([]models.FontConfig, error)
}

// FileLoader reads fonts from the local filesystem.
type FileLoader struct {
	cache *Cache
}

func NewFileLoader(cache *Cache) *FileLoader {
	if cache == nil {
		cache = NewCache()
	}
	return &FileLoader{cache: cache}
}

func (l *FileLoader) LoadFonts(ctx context.Context, sources []Source) ([]models.FontConfig, error) {
	return loadAll(ctx, l.cache, "file", sources, func(src Source) FetchFunc {
		return func(context.Context) ([]byte, error) {
			data, err := os.ReadFile(src.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to read font %q: %w", src.Name, err)
			}
			return toSFNT(data)
		}
	})
}

// URLLoader fetches fonts over HTTP with retries.
type URLLoader struct {
	cache  *Cache
	client *retryablehttp.Client
}

func NewURLLoader(cache *Cache) *URLLoader {
	if cache == nil {
		cache = NewCache()
	}
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = fontFetchTimeout
	client.Logger = nil // retryablehttp logs every attempt by default
	return &URLLoader{cache: cache, client: client}
}

func (l *URLLoader) LoadFonts(ctx context.Context, sources []Source) ([]models.FontConfig, error) {
	return loadAll(ctx, l.cache, "url", sources, func(src Source) FetchFunc {
		return func(ctx context.Context) ([]byte, error) {
			return l.fetch(ctx, src)
		}
	})
}

func (l *URLLoader) fetch(ctx context.Context, src Source) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create font request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch font %q: %w", src.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("font %q: %s returned status %d", src.Name, src.URL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFontBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read font %q: %w", src.Name, err)
	}
	return toSFNT(data)
}

func loadAll(ctx context.Context, cache *Cache, loader string, sources []Source, fetcher func(Source) FetchFunc) ([]models.FontConfig, error) {
	configs := make([]models.FontConfig, 0, len(sources))
	for _, src := range sources {
		fetch := fetcher(src)
		// Counted inside the fetch so cache hits are not reported as loads.
		data, err := cache.Load(ctx, src.Key(), func(ctx context.Context) ([]byte, error) {
			data, err := fetch(ctx)
			result := "success"
			if err != nil {
				result = "failed"
			}
			metrics.FontLoadsTotal.WithLabelValues(loader, result).Inc()
			return data, err
		})
		if err != nil {
			return nil, err
		}
		configs = append(configs, src.config(data))
	}
	return configs, nil
}

// MultiLoader loads a manifest's file and URL sources, preserving manifest order.
type MultiLoader struct {
	Files *FileLoader
	URLs  *URLLoader
}

func (m *MultiLoader) LoadFonts(ctx context.Context, sources []Source) ([]models.FontConfig, error) {
	configs := make([]models.FontConfig, 0, len(sources))
	for _, src := range sources {
		var loaded []models.FontConfig
		var err error
		if src.Path != "" {
			loaded, err = m.Files.LoadFonts(ctx, []Source{src})
		} else {
			loaded, err = m.URLs.LoadFonts(ctx, []Source{src})
		}
		if err != nil {
			return nil, err
		}
		configs = append(configs, loaded...)
	}
	return configs, nil
}
