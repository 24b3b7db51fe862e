// Package sprites builds and serves the item-code to sprite data URI table
// used by the embed renderer. The table is generated offline by
// cmd/gen-sprites from an item catalog and a sprite asset directory.
package sprites

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"go/format"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/gjson"
)

// CatalogItem is one entry of the item catalog JSON.
type CatalogItem struct {
	Code     string
	Slot     string
	SpriteID string
}

// UnresolvedError lists every catalog item whose sprite could not be found.
type UnresolvedError struct {
	Items []CatalogItem
}

func (e *UnresolvedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d catalog item(s) have no sprite asset:", len(e.Items))
	for _, item := range e.Items {
		fmt.Fprintf(&b, "\n  code=%s slot=%s spriteId=%s", item.Code, item.Slot, item.SpriteID)
	}
	return b.String()
}

var assetTypes = map[string]string{
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ParseCatalog reads {"items": [{"code", "slot", "spriteId"}]}.
func ParseCatalog(data []byte) ([]CatalogItem, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("sprite catalog is not valid JSON")
	}
	items := gjson.GetBytes(data, "items")
	if !items.IsArray() {
		return nil, errors.New(`sprite catalog has no "items" array`)
	}

	var out []CatalogItem
	items.ForEach(func(_, v gjson.Result) bool {
		out = append(out, CatalogItem{
			Code:     v.Get("code").String(),
			Slot:     v.Get("slot").String(),
			SpriteID: v.Get("spriteId").String(),
		})
		return true
	})
	return out, nil
}

// Build resolves every catalog item to a sprite file under assetDir and
// returns code -> data URI. Any unresolved item fails the whole build with an
// *UnresolvedError naming all of them.
func Build(catalogPath, assetDir string) (map[string]string, error) {
	data, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("reading sprite catalog: %w", err)
	}
	items, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}
	return BuildFS(items, os.DirFS(assetDir))
}

// BuildFS is Build over an already parsed catalog and asset filesystem.
func BuildFS(items []CatalogItem, assets fs.FS) (map[string]string, error) {
	out := make(map[string]string, len(items))
	var unresolved []CatalogItem
	for _, item := range items {
		if item.Code == "" || item.SpriteID == "" {
			unresolved = append(unresolved, item)
			continue
		}
		file, err := findAsset(assets, item.SpriteID)
		if err != nil {
			return nil, err
		}
		if file == "" {
			unresolved = append(unresolved, item)
			continue
		}
		raw, err := fs.ReadFile(assets, file)
		if err != nil {
			return nil, fmt.Errorf("reading sprite %s: %w", file, err)
		}
		out[item.Code] = DataURI(file, raw)
	}
	if len(unresolved) > 0 {
		return nil, &UnresolvedError{Items: unresolved}
	}
	return out, nil
}

// findAsset returns the first asset named spriteID with a known image
// extension anywhere under assets, or "" when there is none.
func findAsset(assets fs.FS, spriteID string) (string, error) {
	if strings.ContainsAny(spriteID, `*?[]{}\/`) {
		return "", nil
	}
	matches, err := doublestar.Glob(assets, "**/"+spriteID+".{png,svg,webp,gif}")
	if err != nil {
		return "", fmt.Errorf("searching sprite %q: %w", spriteID, err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[0], nil
}

// DataURI encodes raw as a base64 data URI typed by the file extension.
func DataURI(name string, raw []byte) string {
	mime, ok := assetTypes[strings.ToLower(path.Ext(name))]
	if !ok {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

// WriteSource writes a gofmt'd Go file declaring the generated sprite table.
func WriteSource(w io.Writer, pkg string, table map[string]string) error {
	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var buf bytes.Buffer
	buf.WriteString("// Code generated by gen-sprites. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	buf.WriteString("var generated = map[string]string{\n")
	for _, code := range codes {
		fmt.Fprintf(&buf, "\t%s: %s,\n", strconv.Quote(code), strconv.Quote(table[code]))
	}
	buf.WriteString("}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("formatting generated sprites: %w", err)
	}
	_, err = w.Write(src)
	return err
}
