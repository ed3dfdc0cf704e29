// Command oxy-viewer opens a window and renders one mesh through a deferred geometry and lighting pass,
// with a free-look camera driven by WASD, Space/Shift and the mouse.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/pflag"
)

func init() {
	// GLFW and the surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "oxy-viewer:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("oxy-viewer", pflag.ContinueOnError)
	flags := config.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg, opts, err := flags.Resolve()
	if err != nil {
		return err
	}

	logger, err := common.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	common.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Window ──────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithMinSize(cfg.Window.MinWidth, cfg.Window.MinHeight),
		window.WithMaxSize(cfg.Window.MaxWidth, cfg.Window.MaxHeight),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	// ── Mesh (loads while the GPU device is negotiated) ─────────────────
	meshLoader := loader.NewLoader(loader.WithResourceDir(cfg.Mesh.ResourceDir))
	pending := meshLoader.LoadAsync(cfg.Mesh.Name)

	// ── Renderer ────────────────────────────────────────────────────────
	r, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(presentMode(cfg.Renderer.PresentMode)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceSoftware),
		renderer.WithLightingMode(lightingMode(cfg.Renderer.Lighting)),
	)
	if err != nil {
		return err
	}
	defer r.Release()

	// ── Camera ──────────────────────────────────────────────────────────
	eye := cfg.Camera.Eye
	cam := camera.NewCamera(
		camera.WithEye(mgl32.Vec3{eye[0], eye[1], eye[2]}),
		camera.WithFovy(mgl32.DegToRad(cfg.Camera.FovyDegrees)),
		camera.WithAspect(r.Extent().Aspect()),
		camera.WithNear(cfg.Camera.ZNear),
		camera.WithFar(cfg.Camera.ZFar),
	)
	controller := camera.NewCameraController(
		camera.WithSpeed(cfg.Controller.Speed),
		camera.WithSensitivity(cfg.Controller.Sensitivity),
	)
	if err := r.InitCamera(cam.BindGroupProvider()); err != nil {
		return err
	}

	// ── Model ───────────────────────────────────────────────────────────
	data, err := pending.Wait()
	if err != nil {
		return err
	}
	m, err := model.Upload(r, data)
	if err != nil {
		return err
	}
	r.SetModel(m)

	// ── Engine ──────────────────────────────────────────────────────────
	engineOptions := []engine.EngineBuilderOption{
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithCamera(cam),
		engine.WithController(controller),
		engine.WithProfiling(cfg.Profile),
	}
	if opts.WatchConfig {
		tuning, err := config.Watch(ctx, opts.ConfigPath)
		if err != nil {
			return err
		}
		engineOptions = append(engineOptions, engine.WithTuning(tuning))
	}

	return engine.NewEngine(engineOptions...).Run()
}

func presentMode(mode string) renderer.PresentMode {
	if mode == config.PresentModeUncapped {
		return renderer.PresentModeUncapped
	}
	return renderer.PresentModeVSync
}

func lightingMode(mode string) renderer.LightingMode {
	if mode == config.LightingMesh {
		return renderer.LightingMesh
	}
	return renderer.LightingFullscreen
}
