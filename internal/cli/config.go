package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/prereqtree/pkg/animate"
	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/layout"
	"github.com/matzehuels/prereqtree/pkg/render"
	"github.com/matzehuels/prereqtree/pkg/server"
	"github.com/matzehuels/prereqtree/pkg/view"
)

const configFile = "config.toml"

// Config is the on-disk configuration. Every section is optional; missing
// keys keep their defaults and command-line flags override both.
//
//	[layout]
//	level_spacing = 180
//	sibling_spacing = 40
//
//	[animation]
//	duration = "750ms"
//
//	[canvas]
//	width = 960
//	height = 500
//	margin = { top = 20, right = 120, bottom = 20, left = 120 }
//
//	[cache]
//	dir = "/var/cache/prereqtree"
//	ttl = "24h"
//	redis = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	max_views = 1024
//	idle_timeout = "30m"
//
//	[tags]
//	CS2040 = ["core", "data structures"]
type Config struct {
	Layout    LayoutConfig        `toml:"layout"`
	Animation AnimationConfig     `toml:"animation"`
	Canvas    render.Canvas       `toml:"canvas"`
	Cache     CacheConfig         `toml:"cache"`
	Server    ServerConfig        `toml:"server"`
	Tags      map[string][]string `toml:"tags"`
}

// LayoutConfig is the [layout] section.
type LayoutConfig struct {
	LevelSpacing   float64 `toml:"level_spacing"`
	SiblingSpacing float64 `toml:"sibling_spacing"`
}

// AnimationConfig is the [animation] section. A zero duration disables
// animation.
type AnimationConfig struct {
	Duration time.Duration `toml:"duration"`
}

// CacheConfig is the [cache] section.
type CacheConfig struct {
	Dir   string        `toml:"dir"`
	TTL   time.Duration `toml:"ttl"`
	Redis string        `toml:"redis"`
}

// ServerConfig is the [server] section.
type ServerConfig struct {
	Addr        string        `toml:"addr"`
	MaxViews    int           `toml:"max_views"`
	IdleTimeout time.Duration `toml:"idle_timeout"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	lo := layout.DefaultOptions()
	return Config{
		Layout: LayoutConfig{
			LevelSpacing:   lo.LevelSpacing,
			SiblingSpacing: lo.SiblingSpacing,
		},
		Animation: AnimationConfig{Duration: animate.DefaultDuration},
		Canvas:    render.DefaultCanvas(),
		Server: ServerConfig{
			Addr:        ":8080",
			MaxViews:    server.DefaultMaxViews,
			IdleTimeout: 30 * time.Minute,
		},
	}
}

// LoadConfig reads the config file at path. An empty path means the
// default location, which may be absent; an explicit path must exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFile)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidPath, err, "config %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(errors.GetCode(err), err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks every section that has constraints.
func (c Config) Validate() error {
	if err := c.LayoutOptions().Validate(); err != nil {
		return err
	}
	if err := c.Canvas.Validate(); err != nil {
		return err
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	if c.Server.MaxViews < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server max_views must not be negative")
	}
	return nil
}

// LayoutOptions converts the [layout] section.
func (c Config) LayoutOptions() layout.Options {
	lo := layout.DefaultOptions()
	lo.LevelSpacing = c.Layout.LevelSpacing
	lo.SiblingSpacing = c.Layout.SiblingSpacing
	return lo
}

// ViewOptions combines layout and animation settings. The first render
// grows from the canvas anchor.
func (c Config) ViewOptions() view.Options {
	return view.Options{
		Layout: c.LayoutOptions(),
		Animation: animate.Options{
			Duration:      c.Animation.Duration,
			InitialAnchor: c.Canvas.InitialAnchor(),
			Ease:          animate.EaseCubicInOut,
		},
	}
}
