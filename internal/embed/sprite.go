package embed

import (
	"bytes"
	"encoding/base64"
	"strings"
	"unicode"

	svg "github.com/ajstarks/svgo"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codyseavey/git-dungeon/backend/internal/metrics"
	"github.com/codyseavey/git-dungeon/backend/internal/models"
)

// SpriteCatalog maps item codes (or sprite ids) to embeddable sprite URIs.
// *sprites.Registry satisfies it.
type SpriteCatalog interface {
	Lookup(code string) (string, bool)
}

// usableSprite reports whether ref can be embedded as-is.
func usableSprite(ref string) bool {
	return strings.HasPrefix(ref, "data:") ||
		strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "/")
}

// ResolveSprite returns an image URI for item. Stored references that are
// already embeddable win, then the sprite catalog, then a generated icon, so
// the result never depends on an asset being reachable at render time.
func ResolveSprite(item models.InventoryItem, catalog SpriteCatalog, pal Palette) string {
	if ref := strings.TrimSpace(item.Sprite); usableSprite(ref) {
		metrics.SpriteResolutionsTotal.WithLabelValues("stored").Inc()
		return ref
	}
	if catalog != nil {
		for _, key := range []string{item.Code, item.Sprite} {
			if key == "" {
				continue
			}
			if uri, ok := catalog.Lookup(key); ok {
				metrics.SpriteResolutionsTotal.WithLabelValues("catalog").Inc()
				return uri
			}
		}
	}
	metrics.SpriteResolutionsTotal.WithLabelValues("fallback").Inc()
	return FallbackIcon(Initials(item), pal.RarityColor(item.Rarity))
}

// Initials returns the first two characters of the item name, uppercased.
// Items without a name use their code, then their id.
func Initials(item models.InventoryItem) string {
	for _, s := range []string{item.Name, item.Code, item.ID} {
		var out []rune
		for _, r := range strings.TrimSpace(s) {
			if unicode.IsSpace(r) {
				continue
			}
			out = append(out, unicode.ToUpper(r))
			if len(out) == 2 {
				break
			}
		}
		if len(out) > 0 {
			return string(out)
		}
	}
	return "?"
}

// maxFallbackIcons bounds the icon memo; initials come from user item names.
const maxFallbackIcons = 1024

var fallbackIcons = mustIconCache(maxFallbackIcons) // initials|color -> data URI

func mustIconCache(size int) *lru.Cache[string, string] {
	c, err := lru.New[string, string](size)
	if err != nil {
		panic(err)
	}
	return c
}

// FallbackIcon draws a square icon with initials on a background colour and
// returns it as a base64 SVG data URI.
func FallbackIcon(initials, background string) string {
	key := initials + "|" + background
	if uri, ok := fallbackIcons.Get(key); ok {
		return uri
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(64, 64)
	canvas.Roundrect(0, 0, 64, 64, 12, 12, `fill="`+escapeAttr(background)+`"`)
	canvas.Text(32, 41, initials,
		`text-anchor="middle"`,
		`font-family="sans-serif"`,
		`font-size="26"`,
		`font-weight="700"`,
		`fill="#ffffff"`,
	)
	canvas.End()

	uri := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	fallbackIcons.Add(key, uri)
	return uri
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
