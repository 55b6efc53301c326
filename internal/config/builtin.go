package config

// DefaultConfig returns the configuration used when config.json is absent,
// including the built-in template catalog. The catalog is also what gets
// written to config.json on first run, so users can see and extend it.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: "lifelists.db"},
		UI: UIConfig{
			Theme:      "System",
			ColorTheme: "blue",
			WindowSize: WindowSize{Width: 1200, Height: 800},
		},
		Export: ExportConfig{
			DefaultDirectory: "",
			IncludePhotos:    true,
		},
		Map: MapConfig{
			DefaultZoom: 5,
			MarkerSize:  MarkerSize{Width: 100, Height: 100},
		},
		LifelistTypes: LifelistTypesConfig{Templates: builtInTemplates()},
	}
}

// builtInTemplates is the seed catalog registered at process start.
func builtInTemplates() map[string]TemplateConfig {
	return map[string]TemplateConfig{
		"Wildlife": {
			Tiers:           []string{"wild", "heard", "captive"},
			EntryTerm:       "species",
			ObservationTerm: "sighting",
			DefaultFields: []FieldConfig{
				{Name: "Scientific Name", Type: "text"},
				{Name: "Family", Type: "text"},
				{Name: "Weather", Type: "text"},
			},
		},
		"Plants": {
			Tiers:           []string{"wild", "garden", "greenhouse"},
			EntryTerm:       "species",
			ObservationTerm: "sighting",
			DefaultFields: []FieldConfig{
				{Name: "Scientific Name", Type: "text"},
				{Name: "Family", Type: "text"},
				{Name: "Habitat", Type: "text"},
				{Name: "Flowering Season", Type: "text"},
			},
		},
		"Books": {
			Tiers:           []string{"read", "currently reading", "want to read", "abandoned"},
			EntryTerm:       "book",
			ObservationTerm: "reading",
			DefaultFields: []FieldConfig{
				{Name: "Author", Type: "text", Required: 1},
				{Name: "Publisher", Type: "text"},
				{Name: "Year", Type: "number"},
				{Name: "Genre", Type: "text"},
				{Name: "Rating", Type: "rating", Options: map[string]any{"max": 5}},
			},
		},
		"Travel": {
			Tiers:           []string{"visited", "stayed overnight", "want to visit"},
			EntryTerm:       "place",
			ObservationTerm: "visit",
			DefaultFields: []FieldConfig{
				{Name: "Country", Type: "text"},
				{Name: "City", Type: "text"},
				{Name: "Duration", Type: "text"},
				{Name: "Rating", Type: "rating", Options: map[string]any{"max": 5}},
			},
		},
		"Astronomy": {
			Tiers:           []string{"observed", "photographed", "want to observe"},
			EntryTerm:       "object",
			ObservationTerm: "observation",
			DefaultFields: []FieldConfig{
				{Name: "Object Type", Type: "choice", Required: 1, Options: map[string]any{
					"options": []any{
						map[string]any{"label": "Star", "value": "star"},
						map[string]any{"label": "Planet", "value": "planet"},
						map[string]any{"label": "Galaxy", "value": "galaxy"},
						map[string]any{"label": "Nebula", "value": "nebula"},
						map[string]any{"label": "Star Cluster", "value": "star cluster"},
						map[string]any{"label": "Comet", "value": "comet"},
					},
				}},
				{Name: "Constellation", Type: "text"},
				{Name: "Magnitude", Type: "number"},
				{Name: "Rating", Type: "rating", Options: map[string]any{"max": 5}},
			},
		},
		"Foods": {
			Tiers:           []string{"tried", "cooked", "want to try"},
			EntryTerm:       "dish",
			ObservationTerm: "tasting",
			DefaultFields: []FieldConfig{
				{Name: "Cuisine", Type: "text"},
				{Name: "Ingredients", Type: "text"},
				{Name: "Restaurant", Type: "text"},
				{Name: "Rating", Type: "rating", Options: map[string]any{"max": 5}},
			},
		},
	}
}
