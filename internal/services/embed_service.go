package services

import (
	"context"
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codyseavey/git-dungeon/backend/internal/embed"
	"github.com/codyseavey/git-dungeon/backend/internal/fonts"
	"github.com/codyseavey/git-dungeon/backend/internal/metrics"
	"github.com/codyseavey/git-dungeon/backend/internal/models"
)

const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// EmbedOptions are the sanitized query options of an embed request.
type EmbedOptions struct {
	Theme    models.Theme
	Size     models.Size
	Language models.Language
	// Animate adds the bonus shimmer. Ignored for PNG output.
	Animate bool
	Format  string
}

func (o EmbedOptions) ContentType() string {
	if o.Format == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// EmbedService renders character banners and caches the results.
type EmbedService struct {
	characters *CharacterService
	renderer   *embed.Renderer
	loader     fonts.Loader
	sources    []fonts.Source
	// cache keys include the character's update time, so entries for a
	// changed character are simply never hit again.
	cache *lru.Cache[string, []byte]
}

func NewEmbedService(characters *CharacterService, renderer *embed.Renderer, loader fonts.Loader, sources []fonts.Source, cacheSize int) (*EmbedService, error) {
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating embed cache: %w", err)
	}
	return &EmbedService{
		characters: characters,
		renderer:   renderer,
		loader:     loader,
		sources:    sources,
		cache:      cache,
	}, nil
}

// Warmup loads every configured font so the first request does not pay for it.
func (s *EmbedService) Warmup(ctx context.Context) error {
	loaded, err := s.loader.LoadFonts(ctx, s.sources)
	if err != nil {
		return err
	}
	log.Printf("Embed service: loaded %d fonts", len(loaded))
	return nil
}

// RenderCharacter renders the banner for a stored character.
func (s *EmbedService) RenderCharacter(ctx context.Context, username string, opts EmbedOptions) ([]byte, error) {
	c, err := s.characters.GetCharacter(ctx, username)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s|%s|%s|%s|%t|%s|%d",
		c.Username, opts.Theme, opts.Size, opts.Language, opts.Animate, opts.Format, c.UpdatedAt.UnixNano())
	if out, ok := s.cache.Get(key); ok {
		metrics.EmbedCacheHits.Inc()
		return out, nil
	}
	metrics.EmbedCacheMisses.Inc()

	out, err := s.Render(ctx, c.Overview(), opts)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, out)
	return out, nil
}

// Render renders an arbitrary overview. Font and engine failures are
// returned wrapped in embed.ErrRender.
func (s *EmbedService) Render(ctx context.Context, overview models.CharacterOverview, opts EmbedOptions) ([]byte, error) {
	start := time.Now()
	out, err := s.render(ctx, overview, opts)
	result := "success"
	if err != nil {
		result = "failed"
		log.Printf("Embed service: render failed for %q (%s/%s/%s): %v",
			overview.Username, opts.Size, opts.Theme, opts.Language, err)
	}
	metrics.EmbedRendersTotal.WithLabelValues(string(opts.Size), string(opts.Theme), result).Inc()
	metrics.EmbedRenderDuration.Observe(time.Since(start).Seconds())
	return out, err
}

func (s *EmbedService) render(ctx context.Context, overview models.CharacterOverview, opts EmbedOptions) ([]byte, error) {
	loaded, err := s.loader.LoadFonts(ctx, s.sources)
	if err != nil {
		return nil, fmt.Errorf("%w: loading fonts: %w", embed.ErrRender, err)
	}

	svg, err := s.renderer.RenderEmbedSVG(ctx, embed.RenderConfig{
		Theme:    opts.Theme,
		Size:     opts.Size,
		Language: opts.Language,
		Overview: overview,
		Fonts:    loaded,
	})
	if err != nil {
		return nil, err
	}

	if opts.Format == FormatPNG {
		png, err := svgToPNG([]byte(svg), 1)
		if err != nil {
			return nil, fmt.Errorf("%w: rasterizing: %w", embed.ErrRender, err)
		}
		return png, nil
	}

	if opts.Animate {
		animated := embed.InjectBonusAnimation(svg)
		if animated != svg {
			metrics.ShimmerInjectionsTotal.Inc()
		}
		svg = animated
	}
	return []byte(svg), nil
}

// CacheLen reports the number of cached renders.
func (s *EmbedService) CacheLen() int {
	return s.cache.Len()
}
