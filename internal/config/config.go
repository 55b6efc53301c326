// Package config loads the application configuration (config.json) with
// Viper and converts the template catalog it carries into validated
// template definitions for the store. Malformed definitions fail the load,
// never the first validation call.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "json"
	configFileExt  = "config.json"
)

// Config is the full application configuration. The schema engine consumes
// only the template catalog; the remaining sections are parsed and exposed
// for their external consumers (persistence, export pipeline, map/UI layer).
type Config struct {
	Database      DatabaseConfig      `mapstructure:"database" json:"database"`
	UI            UIConfig            `mapstructure:"ui" json:"ui"`
	Export        ExportConfig        `mapstructure:"export" json:"export"`
	Map           MapConfig           `mapstructure:"map" json:"map"`
	LifelistTypes LifelistTypesConfig `mapstructure:"lifelist_types" json:"lifelist_types"`
}

// DatabaseConfig names the database file managed by the persistence layer.
type DatabaseConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

// UIConfig holds window chrome settings consumed by the UI layer.
type UIConfig struct {
	Theme      string     `mapstructure:"theme" json:"theme"`
	ColorTheme string     `mapstructure:"color_theme" json:"color_theme"`
	WindowSize WindowSize `mapstructure:"window_size" json:"window_size"`
}

// WindowSize is the initial window geometry.
type WindowSize struct {
	Width  int `mapstructure:"width" json:"width"`
	Height int `mapstructure:"height" json:"height"`
}

// ExportConfig is consumed by the export pipeline.
type ExportConfig struct {
	DefaultDirectory string `mapstructure:"default_directory" json:"default_directory"`
	IncludePhotos    bool   `mapstructure:"include_photos" json:"include_photos"`
}

// MapConfig is consumed by the map layer.
type MapConfig struct {
	DefaultZoom int        `mapstructure:"default_zoom" json:"default_zoom"`
	MarkerSize  MarkerSize `mapstructure:"marker_size" json:"marker_size"`
}

// MarkerSize is the rendered marker geometry in pixels.
type MarkerSize struct {
	Width  int `mapstructure:"width" json:"width"`
	Height int `mapstructure:"height" json:"height"`
}

// LifelistTypesConfig holds the template catalog keyed by template name.
type LifelistTypesConfig struct {
	Templates map[string]TemplateConfig `mapstructure:"templates" json:"templates"`
}

// TemplateConfig is the wire form of one template definition.
type TemplateConfig struct {
	Tiers           []string      `mapstructure:"tiers" json:"tiers"`
	EntryTerm       string        `mapstructure:"entry_term" json:"entry_term"`
	ObservationTerm string        `mapstructure:"observation_term" json:"observation_term"`
	DefaultFields   []FieldConfig `mapstructure:"default_fields" json:"default_fields"`
}

// FieldConfig is the wire form of one field definition. Required is 0 or 1
// and Options is the type-dependent payload: absent for text and number,
// {"max": n} for rating, {"options": [{"label","value"},...]} for choice.
type FieldConfig struct {
	Name     string         `mapstructure:"name" json:"name"`
	Type     string         `mapstructure:"type" json:"type"`
	Required int            `mapstructure:"required" json:"required"`
	Options  map[string]any `mapstructure:"options" json:"options,omitempty"`
}

// Load reads config.json from the given directory. On first run the
// directory and a default config.json carrying the built-in catalog are
// created. A missing file after that is not an error; defaults apply.
func Load(configDir string) (*Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	cfg := DefaultConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		return &cfg, nil
	}
	// A catalog in the file replaces the default catalog wholesale;
	// otherwise decoding would merge the two template maps.
	if v.IsSet("lifelist_types.templates") {
		cfg.LifelistTypes.Templates = nil
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Viper lowercases map keys, which would mangle template names.
	// Re-read the catalog section from the raw file to preserve case.
	if v.IsSet("lifelist_types.templates") {
		if err := reloadCatalog(v.ConfigFileUsed(), &cfg); err != nil {
			return nil, err
		}
	}

	// Fail fast on malformed template definitions.
	if _, err := cfg.Templates(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// reloadCatalog replaces cfg's template catalog with the case-preserving
// JSON decoding of the lifelist_types section.
func reloadCatalog(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var raw struct {
		LifelistTypes LifelistTypesConfig `json:"lifelist_types"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode template catalog: %w", err)
	}
	cfg.LifelistTypes = raw.LifelistTypes
	return nil
}

// ensureDefaultConfigFile writes the default config.json if the file does
// not exist yet.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := DefaultConfig()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Templates converts the catalog section into validated template
// definitions, marked built-in, ordered alphabetically by name so the seed
// order is deterministic.
func (c *Config) Templates() ([]*types.Template, error) {
	names := make([]string, 0, len(c.LifelistTypes.Templates))
	for name := range c.LifelistTypes.Templates {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*types.Template, 0, len(names))
	for _, name := range names {
		tpl, err := c.LifelistTypes.Templates[name].toTemplate(name)
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, nil
}

// toTemplate builds and validates a template from its wire form.
func (tc TemplateConfig) toTemplate(name string) (*types.Template, error) {
	tpl := &types.Template{
		Name:            name,
		Tiers:           append([]string(nil), tc.Tiers...),
		EntryTerm:       tc.EntryTerm,
		ObservationTerm: tc.ObservationTerm,
		Fields:          make([]types.FieldSpec, 0, len(tc.DefaultFields)),
		BuiltIn:         true,
	}
	for _, fc := range tc.DefaultFields {
		spec, err := fc.toFieldSpec()
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}
		tpl.Fields = append(tpl.Fields, spec)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return tpl, nil
}

// toFieldSpec converts the untyped options payload into the variant
// matching the declared field type. A payload that does not match the type
// is a schema-definition error.
func (fc FieldConfig) toFieldSpec() (types.FieldSpec, error) {
	spec := types.FieldSpec{
		Name:     fc.Name,
		Type:     fc.Type,
		Required: fc.Required != 0,
	}

	switch fc.Type {
	case types.FieldTypeText, types.FieldTypeNumber:
		if len(fc.Options) != 0 {
			return spec, fmt.Errorf("field %q: %w: %s fields carry no options",
				fc.Name, types.ErrOptionsMismatch, fc.Type)
		}

	case types.FieldTypeRating:
		max, err := intOption(fc.Options, "max")
		if err != nil {
			return spec, fmt.Errorf("field %q: %w: %v", fc.Name, types.ErrOptionsMismatch, err)
		}
		spec.Rating = &types.RatingOptions{Max: max}

	case types.FieldTypeChoice:
		opts, err := choiceOptions(fc.Options)
		if err != nil {
			return spec, fmt.Errorf("field %q: %w: %v", fc.Name, types.ErrOptionsMismatch, err)
		}
		spec.Choice = opts

	default:
		return spec, fmt.Errorf("field %q: %w: %q", fc.Name, types.ErrInvalidFieldType, fc.Type)
	}

	if err := spec.Validate(); err != nil {
		return spec, err
	}
	return spec, nil
}

// intOption extracts an integer option value, tolerating the float64 that
// JSON decoding produces.
func intOption(options map[string]any, key string) (int64, error) {
	raw, ok := options[key]
	if !ok {
		return 0, fmt.Errorf("missing option %q", key)
	}
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("option %q must be a number, got %T", key, raw)
	}
}

// choiceOptions extracts the ordered label/value list of a choice field.
func choiceOptions(options map[string]any) (*types.ChoiceOptions, error) {
	raw, ok := options["options"]
	if !ok {
		return nil, fmt.Errorf("missing option %q", "options")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("option %q must be a list, got %T", "options", raw)
	}
	out := &types.ChoiceOptions{Options: make([]types.ChoiceOption, 0, len(list))}
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("option %d must be an object, got %T", i, item)
		}
		label, _ := entry["label"].(string)
		value, ok := entry["value"].(string)
		if !ok || value == "" {
			return nil, fmt.Errorf("option %d has no value", i)
		}
		if label == "" {
			label = value
		}
		out.Options = append(out.Options, types.ChoiceOption{Label: label, Value: value})
	}
	return out, nil
}
