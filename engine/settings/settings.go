// Package settings holds the user-facing configuration of the engine and
// persists it as a YAML file.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Wartori54/Hydrogen/engine/host"
)

// Switcher applies an optimization level and pure-only flag.
type Switcher interface {
	SwitchTo(level int, onlyPure bool) error
}

// Settings is the persisted configuration. Every field must carry a yaml tag
// to survive KnownFields(true) decoding.
type Settings struct {
	OptimizationLevel int    `yaml:"optimization_level"`
	OnlyPure          bool   `yaml:"only_pure"`
	UncappedSpeed     bool   `yaml:"uncapped_speed"`
	ToggleSpeed       string `yaml:"toggle_speed"`
	EnableOSD         bool   `yaml:"enable_osd"`

	switcher Switcher
}

// Default returns the settings used when no file exists: everything off,
// pure units only, toggle on right control.
func Default() *Settings {
	return &Settings{
		OptimizationLevel: -1,
		OnlyPure:          true,
		ToggleSpeed:       string(host.KeyRightControl),
	}
}

// Load reads path with strict field checking. A missing or empty file yields
// the defaults; fields absent from the file keep their default value.
func Load(path string) (*Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logrus.Debugf("[settings] %s not found, using defaults", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings to path.
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Validate rejects a level outside -1..maxLevel and unknown key bindings.
func (s *Settings) Validate(maxLevel int) error {
	if s.OptimizationLevel < -1 || s.OptimizationLevel > maxLevel {
		return fmt.Errorf("optimization_level %d out of range -1..%d", s.OptimizationLevel, maxLevel)
	}
	if _, err := s.ToggleKey(); err != nil {
		return fmt.Errorf("toggle_speed: %w", err)
	}
	return nil
}

// ToggleKey is the key bound to the uncapped toggle.
func (s *Settings) ToggleKey() (host.Key, error) {
	return host.ParseKey(s.ToggleSpeed)
}

// Bind makes later level and purity changes take effect through sw. Pass nil
// to detach.
func (s *Settings) Bind(sw Switcher) { s.switcher = sw }

// Apply switches the bound switcher to the current level and purity.
func (s *Settings) Apply() error {
	if s.switcher == nil {
		return nil
	}
	return s.switcher.SwitchTo(s.OptimizationLevel, s.OnlyPure)
}

// SetOptimizationLevel stores level and reconciles the loaded units.
func (s *Settings) SetOptimizationLevel(level int) error {
	s.OptimizationLevel = level
	return s.Apply()
}

// SetOnlyPure stores onlyPure and reconciles the loaded units.
func (s *Settings) SetOnlyPure(onlyPure bool) error {
	s.OnlyPure = onlyPure
	return s.Apply()
}
