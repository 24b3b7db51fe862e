package fonts

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/tdewolff/font"

	"github.com/codyseavey/git-dungeon/backend/internal/models"
)

// Source describes where to load one font from. Exactly one of Path or URL
// is used depending on the loader.
type Source struct {
	Name     string `toml:"name"`
	Path     string `toml:"path"`
	URL      string `toml:"url"`
	Weight   int    `toml:"weight"`
	Style    string `toml:"style"`
	CacheKey string `toml:"cache_key"`
}

// Key returns the cache key for s, defaulting to its path or URL.
func (s Source) Key() string {
	if s.CacheKey != "" {
		return s.CacheKey
	}
	if s.Path != "" {
		return s.Path
	}
	return s.URL
}

func (s Source) config(data []byte) models.FontConfig {
	weight := s.Weight
	if weight == 0 {
		weight = 400
	}
	style := s.Style
	if style == "" {
		style = "normal"
	}
	return models.FontConfig{Name: s.Name, Data: data, Weight: weight, Style: style}
}

// toSFNT converts WOFF and WOFF2 payloads to plain SFNT so the layout engine
// can parse them. Other payloads are returned unchanged.
func toSFNT(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return data, nil
	}
	switch string(data[:4]) {
	case "wOFF", "wOF2":
		sfnt, err := font.ToSFNT(data)
		if err != nil {
			return nil, fmt.Errorf("converting web font to SFNT: %w", err)
		}
		return sfnt, nil
	}
	return data, nil
}

// Manifest lists the fonts a deployment renders with.
type Manifest struct {
	Fonts []Source `toml:"font"`
}

// LoadManifest reads a TOML font manifest:
//
//	[[font]]
//	name = "Pretendard"
//	path = "fonts/Pretendard-Regular.otf"
//	weight = 400
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("reading font manifest %s: %w", path, err)
	}
	for i, src := range m.Fonts {
		if src.Name == "" {
			return nil, fmt.Errorf("font manifest %s: entry %d has no name", path, i)
		}
		if src.Path == "" && src.URL == "" {
			return nil, fmt.Errorf("font manifest %s: font %q needs a path or url", path, src.Name)
		}
	}
	return &m, nil
}
