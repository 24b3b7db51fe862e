package boxsvg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/sfnt"

	"github.com/codyseavey/git-dungeon/backend/internal/models"
)

const (
	defaultColor    = "#000000"
	defaultFontSize = 14
	defaultWeight   = 400
)

// Options controls a single render.
type Options struct {
	Width  int
	Height int
	Fonts  []models.FontConfig
}

// Engine renders node trees to SVG. Parsed fonts are cached for the life of
// the engine, so one Engine should be reused across renders.
type Engine struct {
	mu     sync.Mutex
	parsed map[string]*sfnt.Font
}

func New() *Engine {
	return &Engine{parsed: make(map[string]*sfnt.Font)}
}

// Render lays out root at the requested size and returns the SVG document.
// Layout results are stored on the nodes, so a tree should be rendered once.
func (e *Engine) Render(ctx context.Context, root *Node, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if root == nil {
		return "", errors.New("boxsvg: nil root")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return "", fmt.Errorf("boxsvg: invalid size %dx%d", opts.Width, opts.Height)
	}

	fs, err := e.fontSet(opts.Fonts)
	if err != nil {
		return "", err
	}

	if root.Style.Width == 0 {
		root.Style.Width = float64(opts.Width)
	}
	if root.Style.Height == 0 {
		root.Style.Height = float64(opts.Height)
	}
	resolve(root, defaultColor, defaultFontSize, defaultWeight)

	l := &layouter{ctx: ctx, fs: fs}
	if err := l.place(root, float64(opts.Width)); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height)
	canvas := svg.New(&buf)
	if err := draw(ctx, canvas, fs, root, 0, 0); err != nil {
		return "", err
	}
	canvas.End()

	return strings.TrimSpace(buf.String()), nil
}

func draw(ctx context.Context, canvas *svg.SVG, fs *fontSet, n *Node, ox, oy float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x, y := ox+n.x, oy+n.y

	switch n.Kind {
	case KindImage:
		if n.Src == "" {
			return nil
		}
		canvas.Image(round(x), round(y), round(n.w), round(n.h), escapeAttr(n.Src))
		return nil

	case KindText:
		if strings.TrimSpace(n.drawn) == "" {
			return nil
		}
		ascent, descent := fs.metrics(n.size, n.weight)
		baseline := y + (n.h-(ascent+descent))/2 + ascent
		d, err := fs.outline(n.drawn, x, baseline, n.size, n.weight)
		if err != nil {
			return err
		}
		canvas.Group(attr("aria-label", n.Text))
		canvas.Path(d, attr("fill", n.color))
		canvas.Gend()
		return nil
	}

	s := n.Style
	if s.Shadow != "" {
		canvas.Path(roundRect(x, y+2, n.w, n.h, s.Radius), attr("fill", s.Shadow), `fill-opacity="0.12"`)
	}
	if s.Background != "" {
		canvas.Path(roundRect(x, y, n.w, n.h, s.Radius), attr("fill", s.Background))
	}
	if s.BorderColor != "" && s.BorderWidth > 0 {
		inset := s.BorderWidth / 2
		attrs := []string{
			`fill="none"`,
			attr("stroke", s.BorderColor),
			attr("stroke-width", num(s.BorderWidth)),
		}
		if s.BorderDashed {
			attrs = append(attrs, `stroke-dasharray="6 4"`)
		}
		canvas.Path(roundRect(x+inset, y+inset, n.w-2*inset, n.h-2*inset, max(0, s.Radius-inset)), attrs...)
	}

	for _, c := range n.Children {
		if err := draw(ctx, canvas, fs, c, x, y); err != nil {
			return err
		}
	}
	return nil
}

// roundRect returns path data for a rectangle with corner radius r.
func roundRect(x, y, w, h, r float64) string {
	r = min(r, w/2, h/2)
	if r <= 0 {
		return "M" + num(x) + " " + num(y) + "H" + num(x+w) + "V" + num(y+h) + "H" + num(x) + "Z"
	}
	arc := "A" + num(r) + " " + num(r) + " 0 0 1 "
	var d strings.Builder
	d.WriteString("M" + num(x+r) + " " + num(y))
	d.WriteString("H" + num(x+w-r))
	d.WriteString(arc + num(x+w) + " " + num(y+r))
	d.WriteString("V" + num(y+h-r))
	d.WriteString(arc + num(x+w-r) + " " + num(y+h))
	d.WriteString("H" + num(x+r))
	d.WriteString(arc + num(x) + " " + num(y+h-r))
	d.WriteString("V" + num(y+r))
	d.WriteString(arc + num(x+r) + " " + num(y))
	d.WriteString("Z")
	return d.String()
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func round(v float64) int {
	return int(math.Round(v))
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

func attr(name, value string) string {
	return name + `="` + escapeAttr(value) + `"`
}
