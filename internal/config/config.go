// Package config loads and persists the window manager's TOML configuration
// file, following the schema described in the specification's external
// interfaces section.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full on-disk configuration record. Every external collaborator
// contract (mouse input tuning, decoration geometry, colors, behavior,
// panel, keybindings, compositor policy) lives here.
type Config struct {
	Input        Input        `toml:"input"`
	WindowManager WindowManager `toml:"window_manager"`
	Panel        Panel        `toml:"panel"`
	Keybindings  Keybindings  `toml:"keybindings"`
	Compositor   Compositor   `toml:"compositor"`
}

type Input struct {
	Mouse MouseConfig `toml:"mouse"`
}

type MouseConfig struct {
	AccelSpeed       *float64 `toml:"accel_speed"`
	AccelProfile     *string  `toml:"accel_profile"`
	LeftHanded       *bool    `toml:"left_handed"`
	NaturalScrolling *bool    `toml:"natural_scrolling"`
	ScrollSpeed      *int     `toml:"scroll_speed"`
}

type WindowManager struct {
	Decorations Decorations `toml:"decorations"`
	Colors      Colors      `toml:"colors"`
	Behavior    Behavior    `toml:"behavior"`
}

type Decorations struct {
	TitlebarHeight int `toml:"titlebar_height"`
	BorderWidth    int `toml:"border_width"`
	ButtonSize     int `toml:"button_size"`
	ButtonPadding  int `toml:"button_padding"`
}

type Colors struct {
	Background     uint32 `toml:"background"`
	Titlebar       uint32 `toml:"titlebar"`
	Border         uint32 `toml:"border"`
	CloseButton    uint32 `toml:"close_button"`
	MaximizeButton uint32 `toml:"maximize_button"`
	MinimizeButton uint32 `toml:"minimize_button"`
}

type FocusMode string

const (
	FocusClickToFocus     FocusMode = "click_to_focus"
	FocusFollowsMouse     FocusMode = "focus_follows_mouse"
	FocusSloppy           FocusMode = "sloppy_focus"
)

type Behavior struct {
	FocusMode    FocusMode `toml:"focus_mode"`
	RaiseOnFocus bool      `toml:"raise_on_focus"`
	WindowGaps   int       `toml:"window_gaps"`
}

type PanelPosition string

const (
	PanelTop    PanelPosition = "top"
	PanelBottom PanelPosition = "bottom"
	PanelLeft   PanelPosition = "left"
	PanelRight  PanelPosition = "right"
)

type Panel struct {
	Height   int           `toml:"height"`
	Position PanelPosition `toml:"position"`
	Opacity  float64       `toml:"opacity"`
	Color    [3]uint8      `toml:"color"`
}

type Keybindings struct {
	LauncherKey     string `toml:"launcher_key"`
	LauncherCommand string `toml:"launcher_command"`
}

type VsyncMode string

const (
	VsyncOn       VsyncMode = "on"
	VsyncOff      VsyncMode = "off"
	VsyncAdaptive VsyncMode = "adaptive"
)

type Compositor struct {
	Vsync                VsyncMode      `toml:"vsync"`
	TearFree             bool           `toml:"tear_free"`
	UnredirectFullscreen bool           `toml:"unredirect_fullscreen"`
	Transparency         TransparencyCfg `toml:"transparency"`
}

type TransparencyCfg struct {
	Enabled        bool    `toml:"enabled"`
	DefaultOpacity float64 `toml:"default_opacity"`
}

const fileName = "config.toml"

// Default returns the built-in configuration written on first run.
func Default() *Config {
	return &Config{
		WindowManager: WindowManager{
			Decorations: Decorations{
				TitlebarHeight: 32,
				BorderWidth:    2,
				ButtonSize:     18,
				ButtonPadding:  6,
			},
			Colors: Colors{
				Background:     0x202020,
				Titlebar:       0x303030,
				Border:         0x505050,
				CloseButton:    0xe05050,
				MaximizeButton: 0x50a050,
				MinimizeButton: 0xd0a030,
			},
			Behavior: Behavior{
				FocusMode:    FocusClickToFocus,
				RaiseOnFocus: true,
				WindowGaps:   0,
			},
		},
		Panel: Panel{
			Height:   28,
			Position: PanelTop,
			Opacity:  0.92,
			Color:    [3]uint8{32, 32, 32},
		},
		Keybindings: Keybindings{
			LauncherKey:     "Mod4+d",
			LauncherCommand: "dmenu_run",
		},
		Compositor: Compositor{
			Vsync:                VsyncOn,
			TearFree:             true,
			UnredirectFullscreen: true,
			Transparency: TransparencyCfg{
				Enabled:        true,
				DefaultOpacity: 1.0,
			},
		},
	}
}

// Dir resolves the configuration directory, preferring $XDG_CONFIG_HOME.
func Dir() string {
	return filepath.Join(xdgOrFallback("XDG_CONFIG_HOME", filepath.Join(os.Getenv("HOME"), ".config")), "fenestra")
}

// EnsureExists writes a default config.toml if none exists yet.
func EnsureExists() error {
	dir := Dir()
	ok, err := exists(dir)
	if err != nil {
		return fmt.Errorf("checking config directory: %w", err)
	}
	if !ok {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	path := filepath.Join(dir, fileName)
	ok, err = exists(path)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}
	if !ok {
		return Write(Default())
	}
	return nil
}

// Load decodes the on-disk config, falling back to defaults for anything
// the file is silent about.
func Load() (*Config, error) {
	path := filepath.Join(Dir(), fileName)
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return cfg, nil
}

// Write persists cfg to the config file.
func Write(cfg *Config) error {
	path := filepath.Join(Dir(), fileName)
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func xdgOrFallback(xdgVar, fallback string) string {
	if dir := os.Getenv(xdgVar); dir != "" {
		if ok, err := exists(dir); ok && err == nil {
			return dir
		}
	}
	return fallback
}
