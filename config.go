package canopy

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Errors returned while parsing bin directives and configuration files.
var (
	ErrMalformedBinSpec    = errors.New("canopy: bin spec must be \"name sort type\"")
	ErrBadSort             = errors.New("canopy: bin sort is not an integer")
	ErrUnknownBinType      = errors.New("canopy: unknown bin type")
	ErrUnknownConfigFormat = errors.New("canopy: unknown config file extension")
)

// DefaultMaxEmptyFrames is the number of consecutive empty outer frames after
// which an unowned CullState is evicted.
const DefaultMaxEmptyFrames = 100

// BinSpec describes one toplevel bin to attach.
type BinSpec struct {
	Name string
	Sort int
	Type BinType
}

func (s BinSpec) String() string {
	return fmt.Sprintf("%s %d %s", s.Name, s.Sort, s.Type)
}

// ParseBinType parses a bin type name. "btf" is accepted as an alias for
// back_to_front.
func ParseBinType(s string) (BinType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unsorted":
		return BinUnsorted, nil
	case "fixed":
		return BinFixed, nil
	case "back_to_front", "btf":
		return BinBackToFront, nil
	case "normal":
		return BinNormal, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBinType, s)
	}
}

// ParseBinSpec parses a "name sort type" directive.
func ParseBinSpec(directive string) (BinSpec, error) {
	f := strings.Fields(directive)
	if len(f) != 3 {
		return BinSpec{}, fmt.Errorf("%w: got %d fields in %q", ErrMalformedBinSpec, len(f), directive)
	}
	sort, err := strconv.Atoi(f[1])
	if err != nil {
		return BinSpec{}, fmt.Errorf("%w: %q", ErrBadSort, f[1])
	}
	typ, err := ParseBinType(f[2])
	if err != nil {
		return BinSpec{}, err
	}
	return BinSpec{Name: f[0], Sort: sort, Type: typ}, nil
}

// ParseBinSpecs parses every directive, returning the valid specs in order
// and the joined errors of the rejected ones.
func ParseBinSpecs(directives []string) ([]BinSpec, error) {
	specs := make([]BinSpec, 0, len(directives))
	var errs []error
	for _, d := range directives {
		s, err := ParseBinSpec(d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		specs = append(specs, s)
	}
	return specs, errors.Join(errs...)
}

// Config configures a Traverser.
type Config struct {
	// Bins lists "name sort type" directives attached at construction.
	Bins []string `toml:"bins" yaml:"bins"`
	// DefaultBin receives states that carry no bin attribute.
	DefaultBin string `toml:"default_bin" yaml:"default_bin"`

	// DecalsAsDirect renders decal arcs as direct-render subtrees.
	DecalsAsDirect bool `toml:"decals_as_direct" yaml:"decals_as_direct"`
	// ForceFullRecompute treats every cached association as stale each frame.
	ForceFullRecompute bool `toml:"force_full_recompute" yaml:"force_full_recompute"`
	// MaxEmptyFrames overrides DefaultMaxEmptyFrames when positive.
	MaxEmptyFrames int `toml:"max_empty_frames" yaml:"max_empty_frames"`

	// HideDirectRender skips direct-render subtrees entirely.
	HideDirectRender bool `toml:"hide_direct_render" yaml:"hide_direct_render"`
	// DisableDirectRender classifies direct-render subtrees like ordinary ones.
	DisableDirectRender bool `toml:"disable_direct_render" yaml:"disable_direct_render"`
	// HideSubRender skips subtrees that require a sub-render pass.
	HideSubRender bool `toml:"hide_sub_render" yaml:"hide_sub_render"`
	// DisableSubRender ignores sub-render hooks.
	DisableSubRender bool `toml:"disable_sub_render" yaml:"disable_sub_render"`

	// Debug turns invariant warnings into panics and enables frame logging.
	Debug bool `toml:"debug" yaml:"debug"`
}

// DefaultConfig returns the standard bin layout: a fixed background, a normal
// default bin, a fixed overlay and an unsorted catch-all.
func DefaultConfig() Config {
	return Config{
		Bins: []string{
			"background 10 fixed",
			"default 20 normal",
			"fixed 30 fixed",
			"unsorted 40 unsorted",
		},
		DefaultBin:     "default",
		MaxEmptyFrames: DefaultMaxEmptyFrames,
	}
}

func (c Config) maxEmptyFrames() int {
	if c.MaxEmptyFrames > 0 {
		return c.MaxEmptyFrames
	}
	return DefaultMaxEmptyFrames
}

func (c Config) defaultBin() string {
	if c.DefaultBin != "" {
		return c.DefaultBin
	}
	return "default"
}

// LoadConfig reads a Config from a .toml, .yaml or .yml file. Fields absent
// from the file keep their DefaultConfig values. Bin directives are not
// validated here; NewTraverser logs and skips malformed ones.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("canopy: reading config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnknownConfigFormat, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("canopy: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// logSkippedSpecs warns about each rejected directive.
func logSkippedSpecs(err error) {
	if err == nil {
		return
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range j.Unwrap() {
			Logger().Warn("skipping bin directive", slog.Any("err", e))
		}
		return
	}
	Logger().Warn("skipping bin directive", slog.Any("err", err))
}
