package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/lifelists/internal/catalog"
	"github.com/mesh-intelligence/lifelists/pkg/types"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Errorf("default config.json not written: %v", err)
	}
	if cfg.Database.Path != "lifelists.db" {
		t.Errorf("database path = %q, want lifelists.db", cfg.Database.Path)
	}
	if cfg.UI.WindowSize.Width != 1200 || cfg.UI.WindowSize.Height != 800 {
		t.Errorf("window size = %+v", cfg.UI.WindowSize)
	}
	if !cfg.Export.IncludePhotos {
		t.Error("include_photos default = false, want true")
	}
	if cfg.Map.DefaultZoom != 5 || cfg.Map.MarkerSize.Width != 100 {
		t.Errorf("map config = %+v", cfg.Map)
	}
}

func TestLoadBuiltInCatalog(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	templates, err := cfg.Templates()
	if err != nil {
		t.Fatalf("Templates failed: %v", err)
	}

	byName := make(map[string]*types.Template, len(templates))
	for _, tpl := range templates {
		if !tpl.BuiltIn {
			t.Errorf("template %q not marked built-in", tpl.Name)
		}
		byName[tpl.Name] = tpl
	}
	for _, name := range []string{"Wildlife", "Plants", "Books", "Travel", "Astronomy", "Foods"} {
		if byName[name] == nil {
			t.Errorf("built-in template %q missing", name)
		}
	}

	// Ordering is alphabetical, so repeated loads seed identically.
	for i := 1; i < len(templates); i++ {
		if templates[i-1].Name > templates[i].Name {
			t.Errorf("templates out of order: %q before %q", templates[i-1].Name, templates[i].Name)
		}
	}

	books := byName["Books"]
	if books.EntryTerm != "book" || books.ObservationTerm != "reading" {
		t.Errorf("Books terms = %q/%q", books.EntryTerm, books.ObservationTerm)
	}
	rating, ok := findField(books, "Rating")
	if !ok || rating.Type != types.FieldTypeRating || rating.Rating.Max != 5 {
		t.Errorf("Books Rating field = %+v", rating)
	}
	author, _ := findField(books, "Author")
	if !author.Required {
		t.Error("Books Author not required")
	}

	astro := byName["Astronomy"]
	objType, ok := findField(astro, "Object Type")
	if !ok || objType.Type != types.FieldTypeChoice || !objType.Required {
		t.Fatalf("Astronomy Object Type field = %+v", objType)
	}
	if len(objType.Choice.Options) == 0 {
		t.Error("Astronomy Object Type has no options")
	}
}

// Every built-in template must compile as-is and accept a record carrying
// its full default field set, in every tier it declares.
func TestBuiltInTemplatesAcceptDefaultRecords(t *testing.T) {
	cfg := DefaultConfig()
	templates, err := cfg.Templates()
	if err != nil {
		t.Fatalf("Templates failed: %v", err)
	}
	if len(templates) == 0 {
		t.Fatal("no built-in templates")
	}

	for _, tpl := range templates {
		t.Run(tpl.Name, func(t *testing.T) {
			schema, err := catalog.Compile(tpl, nil)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}

			values := make(map[string]any, len(schema.Fields))
			for _, spec := range schema.Fields {
				values[spec.Name] = sampleValue(t, spec)
			}
			for _, tier := range schema.Tiers {
				if _, report := catalog.ValidateRecord(schema, values, tier); !report.OK() {
					t.Errorf("tier %q rejected default record: %v", tier, report)
				}
			}
		})
	}
}

func sampleValue(t *testing.T, spec types.FieldSpec) any {
	t.Helper()
	switch spec.Type {
	case types.FieldTypeText:
		return "sample"
	case types.FieldTypeNumber:
		return 12.5
	case types.FieldTypeRating:
		return spec.Rating.Max
	case types.FieldTypeChoice:
		return spec.Choice.Options[0].Value
	default:
		t.Fatalf("field %q has unexpected type %q", spec.Name, spec.Type)
		return nil
	}
}

func TestLoadReadsUserConfig(t *testing.T) {
	dir := t.TempDir()
	userConfig := `{
  "database": {"path": "custom.db"},
  "map": {"default_zoom": 9},
  "lifelist_types": {
    "templates": {
      "Records": {
        "tiers": ["owned", "wanted"],
        "entry_term": "record",
        "observation_term": "listening",
        "default_fields": [
          {"name": "Artist", "type": "text", "required": 1},
          {"name": "Rating", "type": "rating", "options": {"max": 10}}
        ]
      }
    }
  }
}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(userConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "custom.db" {
		t.Errorf("database path = %q, want custom.db", cfg.Database.Path)
	}
	if cfg.Map.DefaultZoom != 9 {
		t.Errorf("default zoom = %d, want 9", cfg.Map.DefaultZoom)
	}

	templates, err := cfg.Templates()
	if err != nil {
		t.Fatalf("Templates failed: %v", err)
	}
	// A user-supplied catalog replaces the defaults wholesale.
	if len(templates) != 1 || templates[0].Name != "Records" {
		t.Fatalf("templates = %v, want only Records", templateNames(templates))
	}
	rating, _ := findField(templates[0], "Rating")
	if rating.Rating == nil || rating.Rating.Max != 10 {
		t.Errorf("Records Rating = %+v", rating)
	}
}

func TestLoadFailsFastOnMalformedCatalog(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			"options type mismatch",
			`{"lifelist_types":{"templates":{"Bad":{"tiers":["a"],"entry_term":"x","observation_term":"y",
			  "default_fields":[{"name":"F","type":"text","options":{"max":5}}]}}}}`,
			types.ErrOptionsMismatch,
		},
		{
			"rating without max",
			`{"lifelist_types":{"templates":{"Bad":{"tiers":["a"],"entry_term":"x","observation_term":"y",
			  "default_fields":[{"name":"F","type":"rating","options":{}}]}}}}`,
			types.ErrOptionsMismatch,
		},
		{
			"unknown field type",
			`{"lifelist_types":{"templates":{"Bad":{"tiers":["a"],"entry_term":"x","observation_term":"y",
			  "default_fields":[{"name":"F","type":"date"}]}}}}`,
			types.ErrInvalidFieldType,
		},
		{
			"duplicate tiers",
			`{"lifelist_types":{"templates":{"Bad":{"tiers":["a","a"],"entry_term":"x","observation_term":"y"}}}}`,
			types.ErrDuplicateTier,
		},
		{
			"no tiers",
			`{"lifelist_types":{"templates":{"Bad":{"tiers":[],"entry_term":"x","observation_term":"y"}}}}`,
			types.ErrNoTiers,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, err := Load(dir)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func findField(tpl *types.Template, name string) (types.FieldSpec, bool) {
	for _, f := range tpl.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return types.FieldSpec{}, false
}

func templateNames(templates []*types.Template) []string {
	names := make([]string, len(templates))
	for i, tpl := range templates {
		names[i] = tpl.Name
	}
	return names
}
