// render-embed renders a banner from an overview JSON file without a database.
//
// Usage: go run ./cmd/render-embed -overview=<file|-> [-manifest=<fonts.toml>]
//
//	[-theme=light|dark] [-size=wide|compact|square] [-lang=ko|en]
//	[-animate] [-format=svg|png] [-out=<file>]
//
// The output goes to stdout unless -out is given.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/codyseavey/git-dungeon/backend/internal/embed"
	"github.com/codyseavey/git-dungeon/backend/internal/fonts"
	"github.com/codyseavey/git-dungeon/backend/internal/models"
	"github.com/codyseavey/git-dungeon/backend/internal/services"
	"github.com/codyseavey/git-dungeon/backend/internal/sprites"
)

func main() {
	overviewPath := flag.String("overview", "-", "Overview JSON file, or - for stdin")
	manifestPath := flag.String("manifest", "./fonts/fonts.toml", "Font manifest")
	theme := flag.String("theme", string(models.DefaultTheme), "Banner theme")
	size := flag.String("size", string(models.DefaultSize), "Banner size preset")
	lang := flag.String("lang", string(models.DefaultLanguage), "Banner language")
	animate := flag.Bool("animate", false, "Add the bonus shimmer animation (svg only)")
	format := flag.String("format", services.FormatSVG, "Output format: svg or png")
	outPath := flag.String("out", "", "Output file (default stdout)")
	flag.Parse()

	overview, err := readOverview(*overviewPath)
	if err != nil {
		log.Fatalf("Failed to read overview: %v", err)
	}

	manifest, err := fonts.LoadManifest(*manifestPath)
	if err != nil {
		log.Fatalf("Failed to load font manifest: %v", err)
	}
	cache := fonts.NewCache()
	loader := &fonts.MultiLoader{Files: fonts.NewFileLoader(cache), URLs: fonts.NewURLLoader(cache)}

	renderer := embed.NewRenderer(nil, sprites.Default())
	embedService, err := services.NewEmbedService(nil, renderer, loader, manifest.Fonts, 1)
	if err != nil {
		log.Fatalf("Failed to initialize embed service: %v", err)
	}

	opts := services.EmbedOptions{
		Theme:    models.ParseTheme(*theme),
		Size:     models.ParseSize(*size),
		Language: models.ParseLanguage(*lang),
		Animate:  *animate,
		Format:   services.FormatSVG,
	}
	if *format == services.FormatPNG {
		opts.Format = services.FormatPNG
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	out, err := embedService.Render(ctx, overview, opts)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	if *outPath == "" {
		if _, err := os.Stdout.Write(out); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		return
	}
	if err := os.WriteFile(*outPath, out, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outPath, err)
	}
	log.Printf("Wrote %s banner (%s/%s/%s) to %s", opts.Format, opts.Size, opts.Theme, opts.Language, *outPath)
}

func readOverview(path string) (models.CharacterOverview, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return models.CharacterOverview{}, err
		}
		defer f.Close()
		r = f
	}

	var overview models.CharacterOverview
	if err := json.NewDecoder(r).Decode(&overview); err != nil {
		return models.CharacterOverview{}, err
	}
	return overview, nil
}
