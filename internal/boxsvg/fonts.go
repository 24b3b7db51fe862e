package boxsvg

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/codyseavey/git-dungeon/backend/internal/models"
)

var (
	// ErrNoFonts is returned when a render is attempted without any font.
	ErrNoFonts = errors.New("boxsvg: no fonts supplied")
	// ErrMissingGlyph is returned when no supplied font covers a rune.
	ErrMissingGlyph = errors.New("boxsvg: missing glyph")
)

const ellipsis = "..."

type face struct {
	name   string
	weight int
	italic bool
	font   *sfnt.Font
}

// fontSet measures and outlines text for a single render. It owns an
// sfnt.Buffer and must not be shared between goroutines.
type fontSet struct {
	faces []*face
	buf   sfnt.Buffer
}

func (e *Engine) fontSet(fonts []models.FontConfig) (*fontSet, error) {
	if len(fonts) == 0 {
		return nil, ErrNoFonts
	}
	fs := &fontSet{}
	for _, fc := range fonts {
		f, err := e.parse(fc)
		if err != nil {
			return nil, err
		}
		weight := fc.Weight
		if weight == 0 {
			weight = 400
		}
		fs.faces = append(fs.faces, &face{
			name:   fc.Name,
			weight: weight,
			italic: fc.Style == "italic",
			font:   f,
		})
	}
	return fs, nil
}

func (e *Engine) parse(fc models.FontConfig) (*sfnt.Font, error) {
	key := fc.Name + "|" + strconv.Itoa(fc.Weight) + "|" + fc.Style + "|" + strconv.FormatUint(xxhash.Sum64(fc.Data), 16)

	e.mu.Lock()
	defer e.mu.Unlock()
	if f, ok := e.parsed[key]; ok {
		return f, nil
	}
	f, err := sfnt.Parse(fc.Data)
	if err != nil {
		return nil, fmt.Errorf("boxsvg: parse font %q: %w", fc.Name, err)
	}
	e.parsed[key] = f
	return f, nil
}

// byWeight returns the faces ordered by closeness to weight, upright first.
func (fs *fontSet) byWeight(weight int) []*face {
	ordered := make([]*face, len(fs.faces))
	copy(ordered, fs.faces)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].italic != ordered[j].italic {
			return !ordered[i].italic
		}
		return abs(ordered[i].weight-weight) < abs(ordered[j].weight-weight)
	})
	return ordered
}

func (fs *fontSet) glyph(faces []*face, r rune) (*face, sfnt.GlyphIndex, bool) {
	for _, f := range faces {
		idx, err := f.font.GlyphIndex(&fs.buf, r)
		if err == nil && idx != 0 {
			return f, idx, true
		}
	}
	return nil, 0, false
}

func ppem(size float64) fixed.Int26_6 {
	return fixed.Int26_6(size * 64)
}

// measure returns the advance width of s in pixels.
func (fs *fontSet) measure(s string, size float64, weight int) (float64, error) {
	faces := fs.byWeight(weight)
	var width float64
	for _, r := range s {
		f, idx, ok := fs.glyph(faces, r)
		if !ok {
			if unicode.IsSpace(r) {
				width += size * 0.3
				continue
			}
			return 0, fmt.Errorf("%w: %q (U+%04X) in %q", ErrMissingGlyph, r, r, s)
		}
		adv, err := f.font.GlyphAdvance(&fs.buf, idx, ppem(size), font.HintingNone)
		if err != nil {
			return 0, fmt.Errorf("boxsvg: advance for %q: %w", r, err)
		}
		width += float64(adv) / 64
	}
	return width, nil
}

// truncate shortens s with a trailing ellipsis until it fits in maxWidth.
func (fs *fontSet) truncate(s string, maxWidth, size float64, weight int) (string, float64, error) {
	suffixWidth, err := fs.measure(ellipsis, size, weight)
	if err != nil {
		return "", 0, err
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace)
		w, err := fs.measure(candidate, size, weight)
		if err != nil {
			return "", 0, err
		}
		if w+suffixWidth <= maxWidth {
			return candidate + ellipsis, w + suffixWidth, nil
		}
	}
	return ellipsis, suffixWidth, nil
}

// metrics returns the ascent and descent of the primary face at size.
func (fs *fontSet) metrics(size float64, weight int) (ascent, descent float64) {
	primary := fs.byWeight(weight)[0]
	m, err := primary.font.Metrics(&fs.buf, ppem(size), font.HintingNone)
	if err != nil {
		return size * 0.8, size * 0.2
	}
	return float64(m.Ascent) / 64, float64(m.Descent) / 64
}

// outline returns SVG path data for s with its baseline origin at (x, y).
func (fs *fontSet) outline(s string, x, y, size float64, weight int) (string, error) {
	faces := fs.byWeight(weight)
	var d strings.Builder
	pen := x
	for _, r := range s {
		f, idx, ok := fs.glyph(faces, r)
		if !ok {
			if unicode.IsSpace(r) {
				pen += size * 0.3
				continue
			}
			return "", fmt.Errorf("%w: %q (U+%04X) in %q", ErrMissingGlyph, r, r, s)
		}
		segments, err := f.font.LoadGlyph(&fs.buf, idx, ppem(size), nil)
		if err != nil {
			return "", fmt.Errorf("boxsvg: load glyph %q: %w", r, err)
		}
		writeSegments(&d, segments, pen, y)

		// LoadGlyph's segments alias the buffer, so advance only after writing them.
		adv, err := f.font.GlyphAdvance(&fs.buf, idx, ppem(size), font.HintingNone)
		if err != nil {
			return "", fmt.Errorf("boxsvg: advance for %q: %w", r, err)
		}
		pen += float64(adv) / 64
	}
	return strings.TrimSpace(d.String()), nil
}

func writeSegments(d *strings.Builder, segments sfnt.Segments, ox, oy float64) {
	pt := func(p fixed.Point26_6) string {
		return num(ox+float64(p.X)/64) + " " + num(oy+float64(p.Y)/64)
	}
	open := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				d.WriteString("Z")
			}
			d.WriteString("M" + pt(seg.Args[0]))
			open = true
		case sfnt.SegmentOpLineTo:
			d.WriteString("L" + pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			d.WriteString("Q" + pt(seg.Args[0]) + " " + pt(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			d.WriteString("C" + pt(seg.Args[0]) + " " + pt(seg.Args[1]) + " " + pt(seg.Args[2]))
		}
	}
	if open {
		d.WriteString("Z")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
