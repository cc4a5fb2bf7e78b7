package corkboard

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables of a board editor. The zero value is not usable;
// start from DefaultConfig or LoadConfig.
type Config struct {
	Zoom  ZoomConfig  `yaml:"zoom"`
	Card  CardConfig  `yaml:"card"`
	Frame FrameConfig `yaml:"frame"`

	// DragModifier is the key that must be held to pan or drag cards.
	DragModifier string `yaml:"drag_modifier" validate:"oneof=ctrl control shift alt option meta cmd super"`
	// SizeClass is the size class of freshly created boards.
	SizeClass string `yaml:"size_class" validate:"oneof=small medium large very-large"`

	SaveDirectory string `yaml:"save_directory"`
	RecentDB      string `yaml:"recent_db"`
	RecentLimit   int    `yaml:"recent_limit" validate:"gte=1,lte=100"`
	LogLevel      string `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// ZoomConfig describes the fixed ascending table of zoom factors.
type ZoomConfig struct {
	Min     float64 `yaml:"min" validate:"gt=0"`
	Max     float64 `yaml:"max" validate:"gtfield=Min"`
	Step    float64 `yaml:"step" validate:"gt=0"`
	Default float64 `yaml:"default" validate:"gt=0"`
}

// CardConfig sets the geometry and default colour of new cards.
type CardConfig struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
	Color  string  `yaml:"color" validate:"hexcolor"`
}

// FrameConfig is the frame size used before the host reports a real one.
type FrameConfig struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
}

// DefaultCardColor is the background colour of cards created without one.
const DefaultCardColor = "#fff8b0"

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Zoom:          ZoomConfig{Min: 0.1, Max: 3.0, Step: 0.1, Default: 1.0},
		Card:          CardConfig{Width: 200, Height: 120, Color: DefaultCardColor},
		Frame:         FrameConfig{Width: 1280, Height: 720},
		DragModifier:  "ctrl",
		SizeClass:     "medium",
		SaveDirectory: ".",
		RecentLimit:   10,
		LogLevel:      "info",
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Normalize lowercases enum-like fields and expands "~" in paths.
func (c *Config) Normalize() {
	c.DragModifier = strings.ToLower(strings.TrimSpace(c.DragModifier))
	c.SizeClass = strings.ToLower(strings.TrimSpace(c.SizeClass))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Card.Color = strings.ToLower(strings.TrimSpace(c.Card.Color))
	c.SaveDirectory = expandHome(strings.TrimSpace(c.SaveDirectory))
	c.RecentDB = expandHome(strings.TrimSpace(c.RecentDB))
	if c.SaveDirectory == "" {
		c.SaveDirectory = "."
	}
	if c.RecentLimit == 0 {
		c.RecentLimit = 10
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	errs := validateStruct(c)
	if c.Zoom.Default < c.Zoom.Min || c.Zoom.Default > c.Zoom.Max {
		errs = append(errs, fmt.Errorf("zoom.default %v outside [%v, %v]", c.Zoom.Default, c.Zoom.Min, c.Zoom.Max))
	}
	return multierr.Combine(errs...)
}

// ZoomTable returns the ascending zoom factors described by c.Zoom.
func (c Config) ZoomTable() []float64 {
	z := c.Zoom
	if z.Step <= 0 || z.Max < z.Min {
		return []float64{1}
	}
	n := int(math.Floor((z.Max-z.Min)/z.Step+1e-9)) + 1
	table := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		table = append(table, math.Round((z.Min+float64(i)*z.Step)*1000)/1000)
	}
	return table
}

// DefaultZoomIndex returns the table index closest to c.Zoom.Default.
func (c Config) DefaultZoomIndex() int {
	return nearestIndex(c.ZoomTable(), c.Zoom.Default)
}

// Modifier returns the parsed drag modifier, falling back to Ctrl.
func (c Config) Modifier() KeyModifiers {
	m, err := ParseModifier(c.DragModifier)
	if err != nil {
		return ModCtrl
	}
	return m
}

// DefaultSizeClass returns the parsed size class, falling back to medium.
func (c Config) DefaultSizeClass() SizeClass {
	s, err := ParseSizeClass(c.SizeClass)
	if err != nil {
		return SizeMedium
	}
	return s
}

func nearestIndex(table []float64, v float64) int {
	best := 0
	for i := range table {
		if math.Abs(table[i]-v) < math.Abs(table[best]-v) {
			best = i
		}
	}
	return best
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
