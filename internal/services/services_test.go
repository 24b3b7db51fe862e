package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/codyseavey/git-dungeon/backend/internal/boxsvg"
	"github.com/codyseavey/git-dungeon/backend/internal/database"
	"github.com/codyseavey/git-dungeon/backend/internal/embed"
	"github.com/codyseavey/git-dungeon/backend/internal/fonts"
	"github.com/codyseavey/git-dungeon/backend/internal/models"
)

func newTestCharacterService(t *testing.T, devMode bool) *CharacterService {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	return NewCharacterService(db, devMode)
}

// stubEngine emits one gain-coloured path per text node plus a viewBox so
// the output can also be rasterized.
type stubEngine struct {
	renders atomic.Int32
}

func (e *stubEngine) Render(_ context.Context, root *boxsvg.Node, opts boxsvg.Options) (string, error) {
	e.renders.Add(1)
	var b strings.Builder
	fmt.Fprintf(&b, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`,
		opts.Width, opts.Height, opts.Width, opts.Height)
	b.WriteString(`<path d="M0 0H10V10H0Z" fill="#ffffff" />`)
	for _, text := range root.Texts() {
		if strings.HasPrefix(text, "+") {
			b.WriteString(`<path d="M0 0H4V4H0Z" fill="#10b981" />`)
		}
	}
	b.WriteString("</svg>")
	return b.String(), nil
}

type stubLoader struct {
	err   error
	calls atomic.Int32
}

func (l *stubLoader) LoadFonts(_ context.Context, sources []fonts.Source) ([]models.FontConfig, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return []models.FontConfig{{Name: "stub", Data: []byte("ttf"), Weight: 400}}, nil
}

func sampleUpdate() models.CharacterUpdate {
	return models.CharacterUpdate{
		Level: 12, Exp: 4800, ExpToLevel: 5200, Gold: 3200, AP: 6,
		Floor:     models.FloorProgress{Current: 12, Best: 18, Progress: 65},
		BaseStats: models.StatBlock{HP: 300, MaxHP: 300, Atk: 40, Def: 20, Luck: 5},
		Items: []models.InventoryItem{
			{Name: "Iron Helm", Slot: "helm", Rarity: models.RarityUncommon, IsEquipped: true,
				Modifiers: []models.Modifier{{Stat: models.StatDef, Value: 4}}},
			{Name: "Spare Helm", Slot: models.SlotHelmet, IsEquipped: true,
				Modifiers: []models.Modifier{{Stat: models.StatDef, Value: 9}}},
			{Name: "Oak Staff", Slot: models.SlotWeapon, IsEquipped: true,
				Modifiers: []models.Modifier{{Stat: models.StatAtk, Value: 5}}},
			{Name: "Old Ring", Slot: models.SlotRing},
		},
	}
}

func TestSaveAndGetCharacter(t *testing.T) {
	svc := newTestCharacterService(t, false)
	ctx := context.Background()

	saved, err := svc.SaveCharacter(ctx, " OctoCat ", sampleUpdate())
	if err != nil {
		t.Fatalf("SaveCharacter() error = %v", err)
	}
	if saved.Username != "octocat" || len(saved.Items) != 4 {
		t.Fatalf("saved = %s with %d items", saved.Username, len(saved.Items))
	}
	for _, item := range saved.Items {
		if item.ID == "" {
			t.Errorf("item %q was not assigned an id", item.Name)
		}
	}
	if saved.Items[0].Slot != models.SlotHelmet {
		t.Errorf("legacy slot not normalized: %q", saved.Items[0].Slot)
	}
	if saved.Items[1].IsEquipped {
		t.Error("second equipped helmet should have been unequipped")
	}

	o, err := svc.GetOverview(ctx, "octocat")
	if err != nil {
		t.Fatalf("GetOverview() error = %v", err)
	}
	if len(o.Equipment) != 2 {
		t.Errorf("overview has %d equipped items, want 2", len(o.Equipment))
	}
	want := models.StatBlock{Atk: 5, Def: 4}
	if o.Stats.EquipmentBonus != want {
		t.Errorf("equipment bonus = %+v, want %+v", o.Stats.EquipmentBonus, want)
	}
	if o.Stats.Total.Atk != 45 {
		t.Errorf("total atk = %d, want 45", o.Stats.Total.Atk)
	}

	// Saving again replaces the inventory.
	update := sampleUpdate()
	update.Items = update.Items[:1]
	again, err := svc.SaveCharacter(ctx, "octocat", update)
	if err != nil {
		t.Fatalf("second SaveCharacter() error = %v", err)
	}
	if len(again.Items) != 1 {
		t.Errorf("inventory not replaced: %d items", len(again.Items))
	}
	if !again.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", saved.CreatedAt, again.CreatedAt)
	}
}

func TestGetCharacterErrors(t *testing.T) {
	svc := newTestCharacterService(t, false)
	if _, err := svc.GetCharacter(context.Background(), "ghost"); !errors.Is(err, ErrCharacterNotFound) {
		t.Errorf("GetCharacter(ghost) error = %v, want ErrCharacterNotFound", err)
	}
	if _, err := svc.GetCharacter(context.Background(), "  "); !errors.Is(err, ErrInvalidUsername) {
		t.Errorf("GetCharacter(blank) error = %v, want ErrInvalidUsername", err)
	}
}

func TestSetItemSprite(t *testing.T) {
	svc := newTestCharacterService(t, false)
	ctx := context.Background()
	saved, err := svc.SaveCharacter(ctx, "octocat", sampleUpdate())
	if err != nil {
		t.Fatal(err)
	}

	id := saved.Items[2].ID
	if err := svc.SetItemSprite(ctx, "octocat", id, "/sprites/staff.png"); err != nil {
		t.Fatalf("SetItemSprite() error = %v", err)
	}
	c, _ := svc.GetCharacter(ctx, "octocat")
	if c.Items[2].Sprite != "/sprites/staff.png" {
		t.Errorf("sprite = %q", c.Items[2].Sprite)
	}
	if !c.UpdatedAt.After(saved.UpdatedAt) && !c.UpdatedAt.Equal(saved.UpdatedAt) {
		t.Error("UpdatedAt should not move backwards")
	}

	if err := svc.SetItemSprite(ctx, "hubot", id, "/sprites/x.png"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("SetItemSprite() for another user error = %v, want ErrItemNotFound", err)
	}
}

func TestCheckItem(t *testing.T) {
	svc := newTestCharacterService(t, false)
	ctx := context.Background()
	saved, err := svc.SaveCharacter(ctx, "octocat", sampleUpdate())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		username string
		itemID   string
		want     error
	}{
		{"owned item", "Octocat", saved.Items[0].ID, nil},
		{"unknown character", "nobody", saved.Items[0].ID, ErrCharacterNotFound},
		{"unknown item", "octocat", "none", ErrItemNotFound},
		{"blank username", "  ", "none", ErrInvalidUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CheckItem(ctx, tt.username, tt.itemID)
			if tt.want == nil && err != nil {
				t.Errorf("CheckItem() error = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("CheckItem() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPrepareItemsKeepsFirstEquippedPerSlot(t *testing.T) {
	items := prepareItems("octocat", []models.InventoryItem{
		{ID: "a", Slot: "ring", IsEquipped: true},
		{ID: "b", Slot: "rings", IsEquipped: true},
		{ID: "c", Slot: "ring"},
	})
	if !items[0].IsEquipped || items[1].IsEquipped || items[2].IsEquipped {
		t.Errorf("equipped flags = %v %v %v", items[0].IsEquipped, items[1].IsEquipped, items[2].IsEquipped)
	}
	for _, item := range items {
		if item.CharacterID != "octocat" || item.Slot != models.SlotRing {
			t.Errorf("item %s = %+v", item.ID, item)
		}
	}
}

func newTestEmbedService(t *testing.T, loader fonts.Loader) (*EmbedService, *CharacterService, *stubEngine) {
	t.Helper()
	characters := newTestCharacterService(t, false)
	engine := &stubEngine{}
	renderer := embed.NewRenderer(func() embed.LayoutEngine { return engine }, nil)
	svc, err := NewEmbedService(characters, renderer, loader, []fonts.Source{{Name: "stub", Path: "stub.ttf"}}, 16)
	if err != nil {
		t.Fatalf("NewEmbedService() error = %v", err)
	}
	return svc, characters, engine
}

func TestEmbedServiceRenderCharacter(t *testing.T) {
	svc, characters, engine := newTestEmbedService(t, &stubLoader{})
	ctx := context.Background()
	if _, err := characters.SaveCharacter(ctx, "octocat", sampleUpdate()); err != nil {
		t.Fatal(err)
	}

	opts := EmbedOptions{Theme: models.ThemeLight, Size: models.SizeWide, Language: models.LanguageEnglish, Animate: true, Format: FormatSVG}
	out, err := svc.RenderCharacter(ctx, "octocat", opts)
	if err != nil {
		t.Fatalf("RenderCharacter() error = %v", err)
	}
	doc := string(out)
	if !strings.HasPrefix(doc, "<svg") {
		t.Errorf("output = %q", doc[:20])
	}
	if !strings.Contains(doc, embed.ShimmerIDPrefix+"-0") {
		t.Error("animated render should carry shimmer gradients")
	}

	if _, err := svc.RenderCharacter(ctx, "octocat", opts); err != nil {
		t.Fatal(err)
	}
	if engine.renders.Load() != 1 {
		t.Errorf("engine rendered %d times, want 1 (second call cached)", engine.renders.Load())
	}

	opts.Animate = false
	static, err := svc.RenderCharacter(ctx, "octocat", opts)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(static), embed.ShimmerIDPrefix) {
		t.Error("static render should not be animated")
	}
	if svc.CacheLen() != 2 {
		t.Errorf("cache holds %d renders, want 2", svc.CacheLen())
	}
}

func TestEmbedServiceErrors(t *testing.T) {
	fontErr := errors.New("font server down")
	svc, characters, _ := newTestEmbedService(t, &stubLoader{err: fontErr})
	ctx := context.Background()

	if _, err := svc.RenderCharacter(ctx, "ghost", EmbedOptions{}); !errors.Is(err, ErrCharacterNotFound) {
		t.Errorf("unknown character error = %v", err)
	}

	if _, err := characters.SaveCharacter(ctx, "octocat", sampleUpdate()); err != nil {
		t.Fatal(err)
	}
	_, err := svc.RenderCharacter(ctx, "octocat", EmbedOptions{Format: FormatSVG})
	if !errors.Is(err, embed.ErrRender) || !errors.Is(err, fontErr) {
		t.Errorf("font failure error = %v, want ErrRender wrapping the cause", err)
	}
	if svc.CacheLen() != 0 {
		t.Error("failed renders must not be cached")
	}
}

func TestEmbedServicePNG(t *testing.T) {
	svc, _, _ := newTestEmbedService(t, &stubLoader{})
	out, err := svc.Render(context.Background(), models.CharacterOverview{Level: 1},
		EmbedOptions{Size: models.SizeCompact, Format: FormatPNG, Animate: true})
	if err != nil {
		t.Fatalf("Render(png) error = %v", err)
	}
	if !strings.HasPrefix(string(out), "\x89PNG") {
		t.Error("output is not a PNG")
	}
	if (EmbedOptions{Format: FormatPNG}).ContentType() != "image/png" {
		t.Error("png content type")
	}
}

func TestSpriteStorage(t *testing.T) {
	svc := NewSpriteStorageService(t.TempDir())

	url, err := svc.SaveSprite([]byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	if err != nil {
		t.Fatalf("SaveSprite(svg) error = %v", err)
	}
	if !strings.HasPrefix(url, "/sprites/") || !strings.HasSuffix(url, ".svg") {
		t.Errorf("url = %q", url)
	}

	png := []byte("\x89PNG\r\n\x1a\n0000")
	if url, err := svc.SaveSprite(png); err != nil || !strings.HasSuffix(url, ".png") {
		t.Errorf("SaveSprite(png) = %q, %v", url, err)
	}

	if _, err := svc.SaveSprite([]byte("just text")); !errors.Is(err, ErrUnsupportedSprite) {
		t.Errorf("SaveSprite(text) error = %v, want ErrUnsupportedSprite", err)
	}
	if _, err := svc.SaveSprite(nil); err == nil {
		t.Error("SaveSprite(nil) should fail")
	}

	if err := svc.DeleteSprite(url); err != nil {
		t.Fatalf("DeleteSprite() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(svc.GetStorageDir(), filepath.Base(url))); !os.IsNotExist(err) {
		t.Errorf("sprite file should be gone, stat error = %v", err)
	}
	if err := svc.DeleteSprite(url); err != nil {
		t.Errorf("DeleteSprite() of a missing file error = %v", err)
	}
}

func TestSpriteStorageRejectsActiveSVG(t *testing.T) {
	svc := NewSpriteStorageService(t.TempDir())

	unsafe := []string{
		`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`,
		`<svg xmlns="http://www.w3.org/2000/svg" onload="alert(1)"></svg>`,
		`<svg/onload=alert(1)>`,
		`<svg xmlns="http://www.w3.org/2000/svg"><foreignObject><div>x</div></foreignObject></svg>`,
		`<svg xmlns="http://www.w3.org/2000/svg"><a href="javascript:alert(1)"><rect/></a></svg>`,
		`<svg xmlns="http://www.w3.org/2000/svg"><SCRIPT >alert(1)</SCRIPT></svg>`,
	}
	for _, data := range unsafe {
		if _, err := svc.SaveSprite([]byte(data)); !errors.Is(err, ErrUnsafeSprite) {
			t.Errorf("SaveSprite(%q) error = %v, want ErrUnsafeSprite", data, err)
		}
	}

	entries, err := os.ReadDir(svc.GetStorageDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected sprites left %d files on disk", len(entries))
	}

	safe := `<svg xmlns="http://www.w3.org/2000/svg" version="1.1"><rect width="4" height="4" fill="#f00"/></svg>`
	if _, err := svc.SaveSprite([]byte(safe)); err != nil {
		t.Errorf("SaveSprite(plain svg) error = %v", err)
	}
}
