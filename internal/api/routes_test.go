package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/git-dungeon/backend/internal/boxsvg"
	"github.com/codyseavey/git-dungeon/backend/internal/config"
	"github.com/codyseavey/git-dungeon/backend/internal/database"
	"github.com/codyseavey/git-dungeon/backend/internal/embed"
	"github.com/codyseavey/git-dungeon/backend/internal/fonts"
	"github.com/codyseavey/git-dungeon/backend/internal/models"
	"github.com/codyseavey/git-dungeon/backend/internal/services"
)

// textEngine writes each text node as an aria-label so responses can be
// checked without real fonts.
type textEngine struct {
	fail error
}

func (e textEngine) Render(_ context.Context, root *boxsvg.Node, opts boxsvg.Options) (string, error) {
	if e.fail != nil {
		return "", e.fail
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`,
		opts.Width, opts.Height, opts.Width, opts.Height)
	for _, text := range root.Texts() {
		fmt.Fprintf(&b, `<g aria-label="%s"></g>`, text)
	}
	b.WriteString("</svg>")
	return b.String(), nil
}

type noFonts struct{}

func (noFonts) LoadFonts(context.Context, []fonts.Source) ([]models.FontConfig, error) {
	return nil, nil
}

type testServer struct {
	router     *gin.Engine
	characters *services.CharacterService
	spriteDir  string
}

func newTestServer(t *testing.T, engine embed.LayoutEngine, burst int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	characters := services.NewCharacterService(db, true)
	renderer := embed.NewRenderer(func() embed.LayoutEngine { return engine }, nil)
	embedService, err := services.NewEmbedService(characters, renderer, noFonts{}, nil, 32)
	if err != nil {
		t.Fatal(err)
	}
	spriteDir := t.TempDir()
	sprites := services.NewSpriteStorageService(spriteDir)
	// A near-zero refill rate makes the burst the whole budget of a test.
	cfg := &config.Config{EmbedRateLimit: 0.01, EmbedRateBurst: burst}

	return &testServer{
		router:     SetupRouter(cfg, characters, embedService, sprites),
		characters: characters,
		spriteDir:  spriteDir,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seed(t *testing.T) {
	t.Helper()
	_, err := s.characters.SaveCharacter(context.Background(), "octocat", models.CharacterUpdate{
		Level: 12, Exp: 4800, ExpToLevel: 5200, Gold: 3200, AP: 6,
		Floor:     models.FloorProgress{Current: 12, Best: 18, Progress: 65},
		BaseStats: models.StatBlock{HP: 100, MaxHP: 100, Atk: 10},
		Items: []models.InventoryItem{{
			ID: "w1", Name: "Oak Staff", Slot: models.SlotWeapon, IsEquipped: true,
			Modifiers: []models.Modifier{{Stat: models.StatAtk, Value: 5}},
		}},
	})
	if err != nil {
		t.Fatalf("seeding character: %v", err)
	}
}

func TestGetEmbed(t *testing.T) {
	s := newTestServer(t, textEngine{}, 50)
	s.seed(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/embed/octocat?theme=dark&size=compact&lang=en", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("Cache-Control = %q", cc)
	}
	body := w.Body.String()
	for _, want := range []string{`width="480"`, `aria-label="Lv. 12"`, `aria-label="Equipment"`, `aria-label="ATK +5"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s", want)
		}
	}
}

func TestGetEmbedSanitizesOptions(t *testing.T) {
	s := newTestServer(t, textEngine{}, 50)
	s.seed(t)

	// Unknown values fall back to wide, light and Korean.
	w := s.do(httptest.NewRequest(http.MethodGet, "/api/embed/octocat.svg?theme=DARK&size=huge&language=fr", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `width="960"`) || !strings.Contains(body, `aria-label="장비"`) {
		t.Errorf("defaults not applied: %s", body)
	}
}

func TestGetEmbedPNG(t *testing.T) {
	s := newTestServer(t, textEngine{}, 50)
	s.seed(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/embed/octocat.png", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}
}

func TestGetEmbedErrors(t *testing.T) {
	s := newTestServer(t, textEngine{fail: fmt.Errorf("unsupported style")}, 50)
	s.seed(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/embed/ghost", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown character status = %d, want 404", w.Code)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/embed/octocat", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("render failure status = %d, want 500", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] != "rendering failed: unsupported style" {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestEmbedRateLimit(t *testing.T) {
	s := newTestServer(t, textEngine{}, 2)
	s.seed(t)

	var codes []int
	for range 3 {
		codes = append(codes, s.do(httptest.NewRequest(http.MethodGet, "/api/embed/octocat", nil)).Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 200 429]", codes)
	}

	// Other routes are not limited.
	if w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil)); w.Code != http.StatusOK {
		t.Errorf("/health status = %d", w.Code)
	}
}

func TestPreviewEmbed(t *testing.T) {
	s := newTestServer(t, textEngine{}, 50)

	body := `{"theme":"light","size":"square","language":"ko","animate":false,
		"overview":{"level":12,"exp":4800,"exp_to_level":5200,"gold":3200,"ap":6,
		"floor":{"current":12,"best":18,"progress":65},"equipment":[]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/embed/preview", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	out := w.Body.String()
	if !strings.HasPrefix(out, "<svg") || !strings.Contains(out, `aria-label="Lv. 12"`) {
		t.Errorf("unexpected preview: %s", out)
	}
	if got := strings.Count(out, `aria-label="장비 없음"`); got != 4 {
		t.Errorf("want 4 empty slots, got %d", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/embed/preview", strings.NewReader(`{"theme":"dark"}`))
	req.Header.Set("Content-Type", "application/json")
	if w := s.do(req); w.Code != http.StatusBadRequest {
		t.Errorf("preview without overview status = %d, want 400", w.Code)
	}
}

func TestCharacterRoutes(t *testing.T) {
	s := newTestServer(t, textEngine{}, 50)

	update := `{"level":3,"gold":50,"base_stats":{"hp":20,"max_hp":20,"atk":4},
		"equipment_bonus":{"atk":99},
		"items":[{"name":"Bone Club","slot":"sword","is_equipped":true,"modifiers":[{"stat":"atk","value":2}]}]}`
	req := httptest.NewRequest(http.MethodPut, "/api/characters/Hubot", strings.NewReader(update))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Character models.Character         `json:"character"`
		Overview  models.CharacterOverview `json:"overview"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Character.Username != "hubot" || len(resp.Character.Items) != 1 {
		t.Fatalf("character = %+v", resp.Character)
	}
	if resp.Overview.Stats.EquipmentBonus.Atk != 2 {
		t.Errorf("bonus atk = %d, want the computed 2 rather than the submitted 99", resp.Overview.Stats.EquipmentBonus.Atk)
	}
	itemID := resp.Character.Items[0].ID

	if w := s.do(httptest.NewRequest(http.MethodGet, "/api/characters/hubot", nil)); w.Code != http.StatusOK {
		t.Errorf("GET status = %d", w.Code)
	}
	if w := s.do(httptest.NewRequest(http.MethodGet, "/api/characters/nobody", nil)); w.Code != http.StatusNotFound {
		t.Errorf("GET unknown status = %d, want 404", w.Code)
	}

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, _ := mw.CreateFormFile("sprite", "club.svg")
	part.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	mw.Close()

	req = httptest.NewRequest(http.MethodPost, "/api/characters/hubot/items/"+itemID+"/sprite", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = s.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("sprite upload status = %d, body = %s", w.Code, w.Body.String())
	}
	var sprite map[string]string
	json.Unmarshal(w.Body.Bytes(), &sprite)
	if !strings.HasPrefix(sprite["sprite"], "/sprites/") {
		t.Fatalf("sprite response = %v", sprite)
	}

	// The stored sprite is served, with script disabled.
	w = s.do(httptest.NewRequest(http.MethodGet, sprite["sprite"], nil))
	if w.Code != http.StatusOK {
		t.Errorf("GET sprite status = %d", w.Code)
	}
	if csp := w.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "script-src 'none'") {
		t.Errorf("Content-Security-Policy = %q", csp)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/characters/hubot/items/missing/sprite",
		strings.NewReader(`{"image":"PHN2Zy8+"}`))
	req.Header.Set("Content-Type", "application/json")
	if w := s.do(req); w.Code != http.StatusNotFound {
		t.Errorf("sprite for unknown item status = %d, want 404", w.Code)
	}
}

func (s *testServer) spriteFiles(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(s.spriteDir)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestUploadItemSpriteRejectsWithoutWriting(t *testing.T) {
	s := newTestServer(t, textEngine{}, 50)
	s.seed(t)
	c, err := s.characters.GetCharacter(context.Background(), "octocat")
	if err != nil {
		t.Fatal(err)
	}
	itemID := c.Items[0].ID

	// base64 of <svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>
	scripted := "PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciPjxzY3JpcHQ+YWxlcnQoMSk8L3NjcmlwdD48L3N2Zz4="
	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown character", "/api/characters/nobody/items/none/sprite", http.StatusNotFound},
		{"unknown item", "/api/characters/octocat/items/none/sprite", http.StatusNotFound},
		{"scripted svg", "/api/characters/octocat/items/" + itemID + "/sprite", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(`{"image":"`+scripted+`"}`))
			req.Header.Set("Content-Type", "application/json")
			if w := s.do(req); w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if n := s.spriteFiles(t); n != 0 {
				t.Errorf("%d sprite files left on disk", n)
			}
		})
	}

	c, _ = s.characters.GetCharacter(context.Background(), "octocat")
	if c.Items[0].Sprite != "" {
		t.Errorf("rejected upload changed the sprite to %q", c.Items[0].Sprite)
	}
}
