package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/floatwm/internal/platform"
)

// LayoutMode defines how managed windows are arranged on an output.
type LayoutMode string

const (
	LayoutColumns LayoutMode = "columns" // Two columns, last odd window spans the row.
	LayoutGrid    LayoutMode = "grid"    // Square-ish grid with gaps.
	LayoutNone    LayoutMode = "none"    // Leave windows where clients put them.
)

// Keys names the keysyms bound together with the configured modifier.
type Keys struct {
	Close string `yaml:"close"`
	Lower string `yaml:"lower"`
	Quit  string `yaml:"quit"`
	Spawn string `yaml:"spawn"`
}

// Config holds the application configuration.
type Config struct {
	Modifier        string     `yaml:"modifier"`
	MoveButton      string     `yaml:"move_button"`
	ResizeButton    string     `yaml:"resize_button"`
	MinWidth        int        `yaml:"min_width"`
	MinHeight       int        `yaml:"min_height"`
	TerminalCommand string     `yaml:"terminal_command"`
	Layout          LayoutMode `yaml:"layout"`
	GapSize         int        `yaml:"gap_size"`
	ArrangeOnMap    bool       `yaml:"arrange_on_map"`
	LogLevel        string     `yaml:"log_level"`
	Keys            Keys       `yaml:"keys"`
	Display         string     `yaml:"display,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Modifier:        "ctrl",
		MoveButton:      "left",
		ResizeButton:    "right",
		MinWidth:        80,
		MinHeight:       40,
		TerminalCommand: "weston-terminal",
		Layout:          LayoutColumns,
		GapSize:         0,
		ArrangeOnMap:    true,
		LogLevel:        "info",
		Keys: Keys{
			Close: "q",
			Lower: "Down",
			Quit:  "Escape",
			Spawn: "Return",
		},
	}
}

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var modifierNames = map[string]platform.Modifiers{
	"shift":   platform.ModShift,
	"lock":    platform.ModCaps,
	"caps":    platform.ModCaps,
	"ctrl":    platform.ModCtrl,
	"control": platform.ModCtrl,
	"alt":     platform.ModAlt,
	"mod1":    platform.ModAlt,
	"mod2":    platform.ModMod2,
	"mod3":    platform.ModMod3,
	"super":   platform.ModLogo,
	"logo":    platform.ModLogo,
	"mod4":    platform.ModLogo,
	"mod5":    platform.ModMod5,
}

// ParseModifiers converts a "+"-separated modifier list such as "ctrl+alt"
// into a modifier mask.
func ParseModifiers(s string) (platform.Modifiers, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("modifier is empty")
	}
	var mods platform.Modifiers
	for _, part := range strings.Split(s, "+") {
		name := strings.ToLower(strings.TrimSpace(part))
		m, ok := modifierNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown modifier %q", part)
		}
		mods |= m
	}
	return mods, nil
}

var buttonNames = map[string]uint32{
	"left":   platform.ButtonLeft,
	"right":  platform.ButtonRight,
	"middle": platform.ButtonMiddle,
}

// ParseButton converts a button name to its evdev button code.
func ParseButton(s string) (uint32, error) {
	code, ok := buttonNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown button %q (want left, right or middle)", s)
	}
	return code, nil
}

// ModifierMask returns the parsed session modifier.
func (c *Config) ModifierMask() platform.Modifiers {
	mods, err := ParseModifiers(c.Modifier)
	if err != nil {
		return platform.ModCtrl
	}
	return mods
}

// MoveButtonCode returns the evdev code of the move button.
func (c *Config) MoveButtonCode() uint32 {
	code, err := ParseButton(c.MoveButton)
	if err != nil {
		return platform.ButtonLeft
	}
	return code
}

// ResizeButtonCode returns the evdev code of the resize button.
func (c *Config) ResizeButtonCode() uint32 {
	code, err := ParseButton(c.ResizeButton)
	if err != nil {
		return platform.ButtonRight
	}
	return code
}

// MinSize returns the resize floor.
func (c *Config) MinSize() platform.Size {
	return platform.Size{W: uint32(c.MinWidth), H: uint32(c.MinHeight)}
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if _, err := ParseModifiers(c.Modifier); err != nil {
		return &ValidationError{Path: "modifier", Err: err}
	}
	moveButton, err := ParseButton(c.MoveButton)
	if err != nil {
		return &ValidationError{Path: "move_button", Err: err}
	}
	resizeButton, err := ParseButton(c.ResizeButton)
	if err != nil {
		return &ValidationError{Path: "resize_button", Err: err}
	}
	if moveButton == resizeButton {
		return &ValidationError{Path: "resize_button", Err: fmt.Errorf("resize_button must differ from move_button")}
	}
	if c.MinWidth < 1 {
		return &ValidationError{Path: "min_width", Err: fmt.Errorf("min_width must be >= 1")}
	}
	if c.MinHeight < 1 {
		return &ValidationError{Path: "min_height", Err: fmt.Errorf("min_height must be >= 1")}
	}
	if strings.TrimSpace(c.TerminalCommand) == "" {
		return &ValidationError{Path: "terminal_command", Err: fmt.Errorf("terminal_command must not be empty")}
	}
	switch c.Layout {
	case LayoutColumns, LayoutGrid, LayoutNone:
	default:
		return &ValidationError{Path: "layout", Err: fmt.Errorf("layout must be one of: columns, grid, none")}
	}
	if c.GapSize < 0 {
		return &ValidationError{Path: "gap_size", Err: fmt.Errorf("gap_size must be >= 0")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}

	keys := []struct {
		path  string
		value string
	}{
		{"keys.close", c.Keys.Close},
		{"keys.lower", c.Keys.Lower},
		{"keys.quit", c.Keys.Quit},
		{"keys.spawn", c.Keys.Spawn},
	}
	seen := make(map[string]string, len(keys))
	for _, k := range keys {
		v := strings.TrimSpace(k.value)
		if v == "" {
			return &ValidationError{Path: k.path, Err: fmt.Errorf("key must not be empty")}
		}
		if other, ok := seen[v]; ok {
			return &ValidationError{Path: k.path, Err: fmt.Errorf("key %q is already bound by %s", v, other)}
		}
		seen[v] = k.path
	}

	return nil
}
