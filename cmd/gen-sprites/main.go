// gen-sprites builds the item sprite table compiled into the embed renderer.
//
// Usage: go run ./cmd/gen-sprites -catalog=<items.json> -assets=<dir> [-out=<file>] [-pkg=<name>]
//
// Every catalog item must resolve to an asset named after its spriteId
// somewhere under the asset directory. If any item does not, all of them are
// listed and nothing is written.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gookit/color"

	"github.com/codyseavey/git-dungeon/backend/internal/sprites"
)

var (
	colorError = color.Style{color.FgRed, color.OpBold}
	colorItem  = color.Style{color.FgYellow}
	colorOK    = color.Style{color.FgGreen, color.OpBold}
)

func main() {
	catalogPath := flag.String("catalog", "", "Path to the item catalog JSON (required)")
	assetDir := flag.String("assets", "", "Directory containing sprite assets (required)")
	outPath := flag.String("out", "internal/sprites/sprites_gen.go", "Generated Go file")
	pkg := flag.String("pkg", "sprites", "Package name of the generated file")
	flag.Parse()

	if *catalogPath == "" || *assetDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	table, err := sprites.Build(*catalogPath, *assetDir)
	if err != nil {
		var unresolved *sprites.UnresolvedError
		if errors.As(err, &unresolved) {
			colorError.Printf("%d catalog item(s) have no sprite asset\n", len(unresolved.Items))
			for _, item := range unresolved.Items {
				colorItem.Printf("  code=%s slot=%s spriteId=%s\n", item.Code, item.Slot, item.SpriteID)
			}
			os.Exit(1)
		}
		colorError.Println(err)
		os.Exit(1)
	}

	if err := write(*outPath, *pkg, table); err != nil {
		colorError.Println(err)
		os.Exit(1)
	}
	colorOK.Printf("Wrote %d sprites to %s\n", len(table), *outPath)
}

func write(path, pkg string, table map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := sprites.WriteSource(f, pkg, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
