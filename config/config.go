// Package config holds the viewer's runtime configuration: built-in defaults, an optional TOML file and
// command-line overrides, plus a watcher that republishes controller tuning when the file changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Present modes accepted by RendererConfig.PresentMode.
const (
	PresentModeVSync    = "vsync"
	PresentModeUncapped = "uncapped"
)

// Lighting modes accepted by RendererConfig.Lighting.
const (
	LightingFullscreen = "fullscreen"
	LightingMesh       = "mesh"
)

// Config is the complete viewer configuration.
type Config struct {
	Window     WindowConfig     `toml:"window"`
	Mesh       MeshConfig       `toml:"mesh"`
	Camera     CameraConfig     `toml:"camera"`
	Controller ControllerConfig `toml:"controller"`
	Renderer   RendererConfig   `toml:"renderer"`
	Log        LogConfig        `toml:"log"`
	Profile    bool             `toml:"profile"`
}

// WindowConfig describes the initial window and how far it can be resized. A zero limit is unbounded.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	MinWidth  int    `toml:"min_width"`
	MinHeight int    `toml:"min_height"`
	MaxWidth  int    `toml:"max_width"`
	MaxHeight int    `toml:"max_height"`
}

// MeshConfig names the mesh loaded at start-up and where to find it.
type MeshConfig struct {
	Name        string `toml:"name"`
	ResourceDir string `toml:"resource_dir"`
}

// CameraConfig holds the initial pose and projection parameters.
type CameraConfig struct {
	FovyDegrees float32    `toml:"fovy_degrees"`
	ZNear       float32    `toml:"znear"`
	ZFar        float32    `toml:"zfar"`
	Eye         [3]float32 `toml:"eye"`
}

// ControllerConfig is the free-look controller tuning. It is the only section that can change while running.
type ControllerConfig struct {
	Speed       float32 `toml:"speed"`
	Sensitivity float32 `toml:"sensitivity"`
}

// RendererConfig selects presentation and lighting behaviour.
type RendererConfig struct {
	PresentMode   string `toml:"present_mode"`
	ForceSoftware bool   `toml:"force_software"`
	Lighting      string `toml:"lighting"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file or flags override it.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "oxy-viewer",
			Width:     1280,
			Height:    720,
			MinWidth:  200,
			MinHeight: 150,
		},
		Mesh: MeshConfig{
			Name:        "teapot.obj",
			ResourceDir: "res",
		},
		Camera: CameraConfig{
			FovyDegrees: 45,
			ZNear:       0.1,
			ZFar:        100,
			Eye:         [3]float32{0, 1, 2},
		},
		Controller: ControllerConfig{
			Speed:       5.0,
			Sensitivity: 0.001,
		},
		Renderer: RendererConfig{
			PresentMode: PresentModeVSync,
			Lighting:    LightingFullscreen,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a TOML file on top of the defaults. Keys absent from the file keep their default values;
// unknown keys are rejected.
//
// Parameters:
//   - path: the TOML file to read
//
// Returns:
//   - Config: the merged configuration (not yet validated)
//   - error: error if the file cannot be read or decoded
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	return Decode(data)
}

// Decode parses TOML bytes on top of the defaults.
//
// Parameters:
//   - data: TOML document
//
// Returns:
//   - Config: the merged configuration (not yet validated)
//   - error: error if the document is malformed or has unknown keys
func Decode(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Validate checks every field that would otherwise fail later at GPU or window creation.
//
// Returns:
//   - error: an ErrInvalidConfig-wrapping error describing all problems, or nil
func (c Config) Validate() error {
	var problems []string
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		problems = append(problems, fmt.Sprintf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if err := c.Window.validateLimits(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Mesh.Name == "" {
		problems = append(problems, "mesh name is empty")
	}
	if c.Camera.FovyDegrees <= 0 || c.Camera.FovyDegrees >= 180 {
		problems = append(problems, fmt.Sprintf("fovy must be in (0, 180) degrees, got %g", c.Camera.FovyDegrees))
	}
	if c.Camera.ZNear <= 0 || c.Camera.ZNear >= c.Camera.ZFar {
		problems = append(problems, fmt.Sprintf("clip planes must satisfy 0 < znear < zfar, got %g..%g", c.Camera.ZNear, c.Camera.ZFar))
	}
	if err := c.Controller.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	switch c.Renderer.PresentMode {
	case PresentModeVSync, PresentModeUncapped:
	default:
		problems = append(problems, fmt.Sprintf("unknown present mode %q", c.Renderer.PresentMode))
	}
	switch c.Renderer.Lighting {
	case LightingFullscreen, LightingMesh:
	default:
		problems = append(problems, fmt.Sprintf("unknown lighting mode %q", c.Renderer.Lighting))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// validateLimits checks that limits are non-negative and that min <= size <= max on each axis, ignoring a zero max.
func (w WindowConfig) validateLimits() error {
	axes := []struct {
		name         string
		size, lo, hi int
	}{
		{"width", w.Width, w.MinWidth, w.MaxWidth},
		{"height", w.Height, w.MinHeight, w.MaxHeight},
	}
	var problems []string
	for _, a := range axes {
		switch {
		case a.lo < 0 || a.hi < 0:
			problems = append(problems, fmt.Sprintf("window %s limits must not be negative, got min %d max %d", a.name, a.lo, a.hi))
		case a.hi > 0 && a.hi < a.lo:
			problems = append(problems, fmt.Sprintf("window max %s %d is below min %d", a.name, a.hi, a.lo))
		case a.size > 0 && a.size < a.lo:
			problems = append(problems, fmt.Sprintf("window %s %d is below min %d", a.name, a.size, a.lo))
		case a.hi > 0 && a.size > a.hi:
			problems = append(problems, fmt.Sprintf("window %s %d exceeds max %d", a.name, a.size, a.hi))
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Validate checks the controller tuning on its own, for hot reloads.
//
// Returns:
//   - error: error if speed or sensitivity is not positive
func (c ControllerConfig) Validate() error {
	if c.Speed <= 0 || c.Sensitivity <= 0 {
		return fmt.Errorf("controller speed and sensitivity must be positive, got %g and %g", c.Speed, c.Sensitivity)
	}
	return nil
}
