package sprites

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

const testCatalog = `{
  "items": [
    {"code": "iron-helm", "slot": "helmet", "spriteId": "helm_01"},
    {"code": "oak-staff", "slot": "weapon", "spriteId": "staff_02"}
  ]
}`

func TestParseCatalog(t *testing.T) {
	items, err := ParseCatalog([]byte(testCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[1] != (CatalogItem{Code: "oak-staff", Slot: "weapon", SpriteID: "staff_02"}) {
		t.Errorf("items[1] = %+v", items[1])
	}

	for _, bad := range []string{`{"items": {}}`, `not json`, `{}`} {
		if _, err := ParseCatalog([]byte(bad)); err == nil {
			t.Errorf("ParseCatalog(%q) should fail", bad)
		}
	}
}

func TestBuildFSResolvesNestedAssets(t *testing.T) {
	assets := fstest.MapFS{
		"helmets/helm_01.png":  {Data: []byte{0x89, 'P', 'N', 'G'}},
		"weapons/staff_02.svg": {Data: []byte("<svg/>")},
		"weapons/staff_02.txt": {Data: []byte("ignored")},
	}
	items, _ := ParseCatalog([]byte(testCatalog))

	table, err := BuildFS(items, assets)
	if err != nil {
		t.Fatalf("BuildFS() error = %v", err)
	}
	if !strings.HasPrefix(table["iron-helm"], "data:image/png;base64,") {
		t.Errorf("iron-helm = %q, want png data URI", table["iron-helm"])
	}
	if table["oak-staff"] != "data:image/svg+xml;base64,PHN2Zy8+" {
		t.Errorf("oak-staff = %q", table["oak-staff"])
	}
}

func TestBuildFSListsEveryUnresolvedItem(t *testing.T) {
	items := []CatalogItem{
		{Code: "iron-helm", Slot: "helmet", SpriteID: "helm_01"},
		{Code: "ghost-ring", Slot: "ring", SpriteID: "ring_99"},
		{Code: "no-sprite", Slot: "armor"},
	}
	assets := fstest.MapFS{"helm_01.png": {Data: []byte("png")}}

	_, err := BuildFS(items, assets)
	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("BuildFS() error = %v, want *UnresolvedError", err)
	}
	if len(unresolved.Items) != 2 {
		t.Fatalf("unresolved = %+v, want 2 items", unresolved.Items)
	}
	msg := err.Error()
	for _, want := range []string{"ghost-ring", "ring_99", "slot=ring", "no-sprite"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing %q: %s", want, msg)
		}
	}
}

func TestBuildReadsCatalogFile(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalog.json")
	assets := filepath.Join(dir, "assets")
	if err := os.MkdirAll(assets, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(catalog, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"helm_01.png", "staff_02.webp"} {
		if err := os.WriteFile(filepath.Join(assets, name), []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	table, err := Build(catalog, assets)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.HasPrefix(table["oak-staff"], "data:image/webp;base64,") {
		t.Errorf("oak-staff = %q", table["oak-staff"])
	}
}

func TestWriteSource(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSource(&buf, "sprites", map[string]string{
		"b-item": "data:image/png;base64,Qg==",
		"a-item": "data:image/png;base64,QQ==",
	})
	if err != nil {
		t.Fatalf("WriteSource() error = %v", err)
	}
	src := buf.String()
	if !strings.HasPrefix(src, "// Code generated by gen-sprites. DO NOT EDIT.") {
		t.Error("generated source should carry the generated-code header")
	}
	if strings.Index(src, `"a-item"`) > strings.Index(src, `"b-item"`) {
		t.Error("entries should be sorted by code")
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(map[string]string{"Iron-Helm": "data:image/png;base64,AA=="})
	if uri, ok := r.Lookup(" iron-helm "); !ok || uri == "" {
		t.Errorf("Lookup() = %q, %v; want a hit", uri, ok)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup(missing) should miss")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}
