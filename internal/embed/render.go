package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/codyseavey/git-dungeon/backend/internal/boxsvg"
	"github.com/codyseavey/git-dungeon/backend/internal/models"
	"github.com/codyseavey/git-dungeon/backend/internal/sprites"
)

// ErrRender wraps every failure returned by RenderEmbedSVG.
var ErrRender = errors.New("rendering failed")

// LayoutEngine turns a box tree into an SVG document. *boxsvg.Engine is the
// production implementation.
type LayoutEngine interface {
	Render(ctx context.Context, root *boxsvg.Node, opts boxsvg.Options) (string, error)
}

// RenderConfig is the input of one render. It is not modified.
type RenderConfig struct {
	Theme    models.Theme
	Size     models.Size
	Language models.Language
	Overview models.CharacterOverview
	Fonts    []models.FontConfig

	// Engine, when set, is used instead of the renderer's shared engine.
	Engine LayoutEngine
	// Sprites, when set, replaces the renderer's sprite catalog.
	Sprites SpriteCatalog
}

// Renderer owns the layout engine shared by all renders. The engine is
// created on first use.
type Renderer struct {
	newEngine func() LayoutEngine
	sprites   SpriteCatalog

	mu     sync.Mutex
	engine LayoutEngine
}

// NewRenderer returns a renderer that builds its engine with newEngine, or
// boxsvg.New when newEngine is nil.
func NewRenderer(newEngine func() LayoutEngine, catalog SpriteCatalog) *Renderer {
	if newEngine == nil {
		newEngine = func() LayoutEngine { return boxsvg.New() }
	}
	return &Renderer{newEngine: newEngine, sprites: catalog}
}

var defaultRenderer = NewRenderer(nil, sprites.Default())

// RenderEmbedSVG renders cfg with the process-wide renderer.
func RenderEmbedSVG(ctx context.Context, cfg RenderConfig) (string, error) {
	return defaultRenderer.RenderEmbedSVG(ctx, cfg)
}

func (r *Renderer) layoutEngine() LayoutEngine {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.engine == nil {
		r.engine = r.newEngine()
	}
	return r.engine
}

// Reset drops the cached engine so the next render creates a fresh one.
func (r *Renderer) Reset() {
	r.mu.Lock()
	r.engine = nil
	r.mu.Unlock()
}

// RenderEmbedSVG builds the banner for cfg and returns the static SVG. The
// shimmer animation is not applied; see InjectBonusAnimation.
func (r *Renderer) RenderEmbedSVG(ctx context.Context, cfg RenderConfig) (string, error) {
	if cfg.Sprites == nil {
		cfg.Sprites = r.sprites
	}
	model := BuildBannerModel(cfg)
	tree := BuildBannerTree(model)

	engine := cfg.Engine
	if engine == nil {
		engine = r.layoutEngine()
	}
	out, err := engine.Render(ctx, tree, boxsvg.Options{
		Width:  model.Width,
		Height: model.Height,
		Fonts:  cfg.Fonts,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "<svg") {
		return "", fmt.Errorf("%w: engine returned no svg document", ErrRender)
	}
	return out, nil
}
