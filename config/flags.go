package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options are the command-line switches that are not part of Config itself.
type Options struct {
	// ConfigPath is the TOML file passed with --config, empty when none was given.
	ConfigPath string
	// WatchConfig republishes controller tuning whenever ConfigPath changes.
	WatchConfig bool
}

// flagBinding copies one parsed flag value into a Config.
type flagBinding func(dst *Config)

// Flags binds every configurable field to a pflag.FlagSet. Flag values are staged separately
// so that only flags the user actually set override the file.
type Flags struct {
	fs       *pflag.FlagSet
	staged   Config
	options  Options
	bindings map[string]flagBinding
}

// BindFlags registers the viewer's flags on fs.
//
// Parameters:
//   - fs: the flag set to register on
//
// Returns:
//   - *Flags: handle used to resolve the final configuration after fs.Parse
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{
		fs:       fs,
		staged:   Default(),
		bindings: make(map[string]flagBinding),
	}
	d := f.staged

	fs.StringVarP(&f.options.ConfigPath, "config", "c", "", "path to a TOML configuration file")
	fs.BoolVar(&f.options.WatchConfig, "watch-config", false, "reload controller tuning when the config file changes")

	fs.StringVar(&f.staged.Window.Title, "title", d.Window.Title, "window title")
	f.bind("title", func(c *Config) { c.Window.Title = f.staged.Window.Title })
	fs.IntVar(&f.staged.Window.Width, "width", d.Window.Width, "initial window width in pixels")
	f.bind("width", func(c *Config) { c.Window.Width = f.staged.Window.Width })
	fs.IntVar(&f.staged.Window.Height, "height", d.Window.Height, "initial window height in pixels")
	f.bind("height", func(c *Config) { c.Window.Height = f.staged.Window.Height })
	fs.IntVar(&f.staged.Window.MinWidth, "min-width", d.Window.MinWidth, "smallest window width, 0 for none")
	f.bind("min-width", func(c *Config) { c.Window.MinWidth = f.staged.Window.MinWidth })
	fs.IntVar(&f.staged.Window.MinHeight, "min-height", d.Window.MinHeight, "smallest window height, 0 for none")
	f.bind("min-height", func(c *Config) { c.Window.MinHeight = f.staged.Window.MinHeight })
	fs.IntVar(&f.staged.Window.MaxWidth, "max-width", d.Window.MaxWidth, "largest window width, 0 for none")
	f.bind("max-width", func(c *Config) { c.Window.MaxWidth = f.staged.Window.MaxWidth })
	fs.IntVar(&f.staged.Window.MaxHeight, "max-height", d.Window.MaxHeight, "largest window height, 0 for none")
	f.bind("max-height", func(c *Config) { c.Window.MaxHeight = f.staged.Window.MaxHeight })

	fs.StringVarP(&f.staged.Mesh.Name, "mesh", "m", d.Mesh.Name, "mesh file to load")
	f.bind("mesh", func(c *Config) { c.Mesh.Name = f.staged.Mesh.Name })
	fs.StringVar(&f.staged.Mesh.ResourceDir, "resources", d.Mesh.ResourceDir, "directory searched for mesh files")
	f.bind("resources", func(c *Config) { c.Mesh.ResourceDir = f.staged.Mesh.ResourceDir })

	fs.Float32Var(&f.staged.Camera.FovyDegrees, "fovy", d.Camera.FovyDegrees, "vertical field of view in degrees")
	f.bind("fovy", func(c *Config) { c.Camera.FovyDegrees = f.staged.Camera.FovyDegrees })
	fs.Float32Var(&f.staged.Camera.ZNear, "znear", d.Camera.ZNear, "near clip plane")
	f.bind("znear", func(c *Config) { c.Camera.ZNear = f.staged.Camera.ZNear })
	fs.Float32Var(&f.staged.Camera.ZFar, "zfar", d.Camera.ZFar, "far clip plane")
	f.bind("zfar", func(c *Config) { c.Camera.ZFar = f.staged.Camera.ZFar })

	fs.Float32Var(&f.staged.Controller.Speed, "speed", d.Controller.Speed, "camera movement speed in units per second")
	f.bind("speed", func(c *Config) { c.Controller.Speed = f.staged.Controller.Speed })
	fs.Float32Var(&f.staged.Controller.Sensitivity, "sensitivity", d.Controller.Sensitivity, "radians of rotation per pixel of pointer offset")
	f.bind("sensitivity", func(c *Config) { c.Controller.Sensitivity = f.staged.Controller.Sensitivity })

	fs.StringVar(&f.staged.Renderer.PresentMode, "present-mode", d.Renderer.PresentMode, "vsync or uncapped")
	f.bind("present-mode", func(c *Config) { c.Renderer.PresentMode = f.staged.Renderer.PresentMode })
	fs.BoolVar(&f.staged.Renderer.ForceSoftware, "software", d.Renderer.ForceSoftware, "force the fallback (software) adapter")
	f.bind("software", func(c *Config) { c.Renderer.ForceSoftware = f.staged.Renderer.ForceSoftware })
	fs.StringVar(&f.staged.Renderer.Lighting, "lighting", d.Renderer.Lighting, "lighting pass: fullscreen or mesh")
	f.bind("lighting", func(c *Config) { c.Renderer.Lighting = f.staged.Renderer.Lighting })

	fs.StringVar(&f.staged.Log.Level, "log-level", d.Log.Level, "debug, info, warn or error")
	f.bind("log-level", func(c *Config) { c.Log.Level = f.staged.Log.Level })
	fs.StringVar(&f.staged.Log.Format, "log-format", d.Log.Format, "text or json")
	f.bind("log-format", func(c *Config) { c.Log.Format = f.staged.Log.Format })

	fs.BoolVar(&f.staged.Profile, "profile", d.Profile, "log frame rate and memory statistics every second")
	f.bind("profile", func(c *Config) { c.Profile = f.staged.Profile })

	return f
}

func (f *Flags) bind(name string, b flagBinding) {
	f.bindings[name] = b
}

// Resolve builds the final configuration: defaults, then the --config file if any, then every flag
// explicitly set on the command line. The result is validated.
//
// Returns:
//   - Config: the validated configuration
//   - Options: the non-config switches
//   - error: error if the file cannot be loaded or validation fails
func (f *Flags) Resolve() (Config, Options, error) {
	if !f.fs.Parsed() {
		return Config{}, Options{}, fmt.Errorf("flags must be parsed before Resolve")
	}

	cfg := Default()
	if f.options.ConfigPath != "" {
		loaded, err := Load(f.options.ConfigPath)
		if err != nil {
			return Config{}, Options{}, err
		}
		cfg = loaded
	}

	f.fs.Visit(func(fl *pflag.Flag) {
		if b, ok := f.bindings[fl.Name]; ok {
			b(&cfg)
		}
	})

	if f.options.WatchConfig && f.options.ConfigPath == "" {
		return Config{}, Options{}, fmt.Errorf("%w: --watch-config requires --config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, Options{}, err
	}
	return cfg, f.options, nil
}
