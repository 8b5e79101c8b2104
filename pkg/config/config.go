// Package config loads foldergraph settings from TOML or YAML files.
//
// Every field has a default, so a file only needs the values it changes:
//
//	# foldergraph.toml
//	[forces]
//	padding = 40
//
//	[render]
//	show_folders = true
//	colors = { projects = "#aa5500" }
//
// Command line flags override file values.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/foldergraph/pkg/cluster"
	"github.com/matzehuels/foldergraph/pkg/errors"
	"github.com/matzehuels/foldergraph/pkg/sim"
)

// Config is the complete settings tree.
type Config struct {
	Forces     Forces     `toml:"forces" yaml:"forces"`
	Render     Render     `toml:"render" yaml:"render"`
	Simulation Simulation `toml:"simulation" yaml:"simulation"`
	Watch      Watch      `toml:"watch" yaml:"watch"`
}

// Forces holds the enclosure and push constants.
type Forces struct {
	Padding    float64 `toml:"padding" yaml:"padding"`
	MarginMin  float64 `toml:"margin_min" yaml:"margin_min"`
	HullForceK float64 `toml:"hull_force_k" yaml:"hull_force_k"`
}

// Render holds the view toggles.
type Render struct {
	// ShowFolders enables folder puddles in the global graph view.
	ShowFolders bool `toml:"show_folders" yaml:"show_folders"`
	// ShowFoldersLocal enables them in the local graph view.
	ShowFoldersLocal bool `toml:"show_folders_local" yaml:"show_folders_local"`
	// Polygons also draws each hull outline.
	Polygons bool `toml:"polygons" yaml:"polygons"`
	// Labels writes node names in exported images.
	Labels bool `toml:"labels" yaml:"labels"`
	// Colors maps a folder to a fill colour like "#516497".
	Colors map[string]string `toml:"colors" yaml:"colors"`
}

// Simulation holds the reference layout constants and frame pacing.
type Simulation struct {
	Repulsion    float64 `toml:"repulsion" yaml:"repulsion"`
	LinkDistance float64 `toml:"link_distance" yaml:"link_distance"`
	LinkStrength float64 `toml:"link_strength" yaml:"link_strength"`
	Gravity      float64 `toml:"gravity" yaml:"gravity"`
	Damping      float64 `toml:"damping" yaml:"damping"`
	AlphaDecay   float64 `toml:"alpha_decay" yaml:"alpha_decay"`
	AlphaMin     float64 `toml:"alpha_min" yaml:"alpha_min"`
	FPS          int     `toml:"fps" yaml:"fps"`
	Frames       int     `toml:"frames" yaml:"frames"` // 0 runs until interrupted
}

// Watch configures the vault watcher.
type Watch struct {
	Vault string `toml:"vault" yaml:"vault"`
}

// Default returns the built-in settings.
func Default() Config {
	opts := cluster.DefaultOptions()
	params := sim.DefaultParams()
	return Config{
		Forces: Forces{
			Padding:    opts.Padding,
			MarginMin:  opts.MarginMin,
			HullForceK: opts.HullForceK,
		},
		Render: Render{
			ShowFolders:      true,
			ShowFoldersLocal: true,
		},
		Simulation: Simulation{
			Repulsion:    params.Repulsion,
			LinkDistance: params.LinkDistance,
			LinkStrength: params.LinkStrength,
			Gravity:      params.Gravity,
			Damping:      params.Damping,
			AlphaDecay:   params.AlphaDecay,
			AlphaMin:     params.AlphaMin,
			FPS:          60,
		},
		Watch: Watch{Vault: "."},
	}
}

// Load reads path over the defaults and validates the result. The format is
// chosen by extension: .toml, .yaml or .yml. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return Config{}, errors.New(errors.ErrCodeUnsupported, "config format %q (want .toml, .yaml or .yml)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every value for range errors.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"forces.padding", c.Forces.Padding},
		{"forces.margin_min", c.Forces.MarginMin},
		{"forces.hull_force_k", c.Forces.HullForceK},
		{"simulation.repulsion", c.Simulation.Repulsion},
		{"simulation.link_distance", c.Simulation.LinkDistance},
		{"simulation.gravity", c.Simulation.Gravity},
		{"simulation.alpha_min", c.Simulation.AlphaMin},
	} {
		if err := errors.ValidateNonNegative(f.name, f.v); err != nil {
			return err
		}
	}

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"simulation.link_strength", c.Simulation.LinkStrength},
		{"simulation.damping", c.Simulation.Damping},
		{"simulation.alpha_decay", c.Simulation.AlphaDecay},
	} {
		if err := errors.ValidateNonNegative(f.name, f.v); err != nil {
			return err
		}
		if f.v > 1 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be in [0, 1], got %v", f.name, f.v)
		}
	}

	if c.Simulation.FPS <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "simulation.fps must be > 0, got %d", c.Simulation.FPS)
	}
	if c.Simulation.Frames < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "simulation.frames must be >= 0, got %d", c.Simulation.Frames)
	}
	if _, err := c.Render.ColorMap(); err != nil {
		return err
	}
	return nil
}

// ClusterOptions returns the force constants for new clusters.
func (f Forces) ClusterOptions() cluster.Options {
	return cluster.Options{
		Padding:    f.Padding,
		MarginMin:  f.MarginMin,
		HullForceK: f.HullForceK,
	}
}

// Params returns the reference layout constants.
func (s Simulation) Params() sim.Params {
	return sim.Params{
		Repulsion:    s.Repulsion,
		LinkDistance: s.LinkDistance,
		LinkStrength: s.LinkStrength,
		Gravity:      s.Gravity,
		Damping:      s.Damping,
		AlphaDecay:   s.AlphaDecay,
		AlphaMin:     s.AlphaMin,
	}
}

// Interval returns the time between two frames.
func (s Simulation) Interval() time.Duration {
	if s.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(s.FPS)
}

// Enabled reports whether puddles are shown in the given view.
func (r Render) Enabled(local bool) bool {
	if local {
		return r.ShowFoldersLocal
	}
	return r.ShowFolders
}

// ColorMap parses Colors into 0xRRGGBB values.
func (r Render) ColorMap() (map[string]uint32, error) {
	if len(r.Colors) == 0 {
		return nil, nil
	}
	out := make(map[string]uint32, len(r.Colors))
	for group, s := range r.Colors {
		rgb, err := ParseColor(s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.colors[%q]", group)
		}
		out[group] = rgb
	}
	return out, nil
}

// ParseColor parses "#rrggbb", "rrggbb" or "0xrrggbb".
func ParseColor(s string) (uint32, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(h) != 6 {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "colour %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "colour %q", s)
	}
	return uint32(v), nil
}
