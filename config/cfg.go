// Package config loads program configuration: an embedded default document
// with an optional user YAML file superimposed on it.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"github.com/ByLCY/infobox/fonts"
	"github.com/ByLCY/infobox/layout"
	"github.com/ByLCY/infobox/outline"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	PaletteConfig struct {
		Background string `yaml:"background,omitempty" validate:"omitempty,hexcolor"`
		Text       string `yaml:"text,omitempty" validate:"omitempty,hexcolor"`
		Accent     string `yaml:"accent,omitempty" validate:"omitempty,hexcolor"`
		Border     string `yaml:"border,omitempty" validate:"omitempty,hexcolor"`
		Rule       string `yaml:"rule,omitempty" validate:"omitempty,hexcolor"`
		Muted      string `yaml:"muted,omitempty" validate:"omitempty,hexcolor"`
	}

	RenderConfig struct {
		Preset  string        `yaml:"preset" validate:"required"`
		Width   int           `yaml:"width" validate:"min=200,max=4000"`
		DPI     int           `yaml:"dpi" validate:"gte=0,lte=4800"`
		Title   string        `yaml:"title"`
		Format  string        `yaml:"format" validate:"oneof=png tiff bmp"`
		Skipped string        `yaml:"skipped" validate:"oneof=silent collect"`
		Palette PaletteConfig `yaml:"palette"`
	}

	FontsConfig struct {
		Bold    string   `yaml:"bold"`
		Regular string   `yaml:"regular"`
		Dir     string   `yaml:"dir"`
		System  []string `yaml:"system" validate:"dive,required"`
	}

	Config struct {
		Version int           `yaml:"version" validate:"eq=1"`
		Render  RenderConfig  `yaml:"render"`
		Fonts   FontsConfig   `yaml:"fonts"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

// checkPreset rejects preset names the layout package does not know.
func checkPreset(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if _, ok := layout.Preset(cfg.Render.Preset); !ok {
		sl.ReportError(cfg.Render.Preset, "Preset", "Preset", "preset", strings.Join(layout.PresetNames(), " "))
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are allowed, so no yaml.Unmarshal here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkPreset)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}

// Layout returns the configured preset with title and palette overrides
// applied.
func (c *Config) Layout() (layout.Config, error) {
	lc, ok := layout.Preset(c.Render.Preset)
	if !ok {
		return layout.Config{}, fmt.Errorf("unknown preset %q (available: %s)", c.Render.Preset, strings.Join(layout.PresetNames(), ", "))
	}
	if len(c.Render.Title) > 0 {
		lc.Title = c.Render.Title
	}

	overrides := []struct {
		name  string
		value string
		dst   *layout.Color
	}{
		{"background", c.Render.Palette.Background, &lc.Palette.Background},
		{"text", c.Render.Palette.Text, &lc.Palette.Text},
		{"accent", c.Render.Palette.Accent, &lc.Palette.Accent},
		{"border", c.Render.Palette.Border, &lc.Palette.Border},
		{"rule", c.Render.Palette.Rule, &lc.Palette.Rule},
		{"muted", c.Render.Palette.Muted, &lc.Palette.Muted},
	}
	for _, o := range overrides {
		if len(o.value) == 0 {
			continue
		}
		col, err := layout.ParseHex(o.value)
		if err != nil {
			return layout.Config{}, fmt.Errorf("palette %s: %w", o.name, err)
		}
		*o.dst = col
	}
	return lc, nil
}

// SkipPolicy returns what to do with lines lacking a leading number.
func (c *Config) SkipPolicy() (outline.Policy, error) {
	return outline.ParsePolicy(c.Render.Skipped)
}

// FontPaths returns configured font files, relative ones joined with Dir.
func (c *Config) FontPaths() fonts.Paths {
	join := func(p string) string {
		if len(p) == 0 || len(c.Fonts.Dir) == 0 || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(c.Fonts.Dir, p)
	}
	return fonts.Paths{Bold: join(c.Fonts.Bold), Regular: join(c.Fonts.Regular)}
}

// Resolver builds a font resolver honouring configured files and system
// families.
func (c *Config) Resolver(log *zap.Logger) *fonts.Resolver {
	return fonts.NewResolver(c.FontPaths(),
		fonts.WithSystemNames(c.Fonts.System),
		fonts.WithLogger(log),
	)
}
