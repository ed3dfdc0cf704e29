package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// cameraUniformBinding is the binding of the camera uniform in group 0 of every mesh program.
const cameraUniformBinding = 0

// ErrNotRunning is returned by frame operations while the engine is not in StateRunning.
var ErrNotRunning = errors.New("engine not running")

// State is the lifecycle state of the frame driver.
type State int

const (
	// StateUninitialized is the state before Start.
	StateUninitialized State = iota
	// StateRunning is the per-frame loop.
	StateRunning
	// StateExiting is entered on a close request or an unrecoverable GPU error. It is final.
	StateExiting
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateExiting:
		return "exiting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// engine implements the Engine interface.
// All handlers run on the thread that owns the window; none of them lock.
type engine struct {
	state State
	err   error

	window     window.Window
	renderer   renderer.Renderer
	camera     camera.Camera
	controller camera.CameraController

	profiler         *profiler.Profiler
	profilingEnabled bool

	now       func() time.Time
	lastFrame time.Time

	// tuning delivers controller tuning published by the config watcher.
	tuning <-chan config.ControllerConfig

	// viewport is the last nonzero framebuffer size.
	viewport common.Extent
}

// Engine is the frame driver of the viewer. It receives window events serially, moves the camera,
// uploads its uniform and asks the renderer for a frame on every redraw request.
type Engine interface {
	// Start wires the window callbacks, grabs the cursor and enters StateRunning.
	//
	// Returns:
	//   - error: error if a collaborator is missing or the engine was already started
	Start() error

	// HandleKey forwards a key transition to the camera controller.
	//
	// Parameters:
	//   - code: the logical key code
	//   - pressed: true on key down
	//
	// Returns:
	//   - bool: true if the controller consumed the key
	HandleKey(code uint32, pressed bool) bool

	// HandlePointerMoved feeds an absolute pointer position to the controller and re-centres the cursor.
	// A failed re-centre is logged and ignored.
	//
	// Parameters:
	//   - x, y: pointer position in window coordinates
	HandlePointerMoved(x, y float64)

	// HandleResize updates the camera aspect and recreates the surface targets. It does not render;
	// the event source follows up with a redraw. Zero sizes are ignored.
	//
	// Parameters:
	//   - width, height: the new framebuffer size in pixels
	HandleResize(width, height int)

	// HandleCloseRequested enters StateExiting and asks the window to close.
	HandleCloseRequested()

	// HandleFullscreenToggle switches the window between fullscreen and windowed.
	HandleFullscreenToggle()

	// RedrawRequested runs one frame: controller update, uniform upload, geometry and lighting passes, present.
	// Lost or outdated surfaces are reconfigured, timeouts drop the frame, other errors end the run.
	//
	// Returns:
	//   - error: ErrNotRunning outside StateRunning, or the fatal error that ended the run
	RedrawRequested() error

	// Run starts the engine if needed and blocks in the window message loop until it closes.
	//
	// Returns:
	//   - error: the fatal error that ended the run, or nil after a normal close
	Run() error

	// State returns the current lifecycle state.
	State() State

	// Err returns the fatal error that moved the engine to StateExiting, if any.
	Err() error

	// Quit requests a close. Safe to call more than once.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Window, renderer, camera and controller must all be supplied before Start.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		state: StateUninitialized,
		now:   time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithClock(e.now))
	}
	return e
}

func (e *engine) Start() error {
	if e.state != StateUninitialized {
		return fmt.Errorf("engine already %s", e.state)
	}
	switch {
	case e.window == nil:
		return errors.New("engine has no window")
	case e.renderer == nil:
		return errors.New("engine has no renderer")
	case e.camera == nil:
		return errors.New("engine has no camera")
	case e.controller == nil:
		return errors.New("engine has no camera controller")
	}

	e.viewport = e.renderer.Extent()
	e.camera.UpdateAspect(e.viewport.Aspect())

	e.window.SetKeyDownCallback(func(code uint32) { e.HandleKey(code, true) })
	e.window.SetKeyUpCallback(func(code uint32) { e.HandleKey(code, false) })
	e.window.SetPointerMoveCallback(e.HandlePointerMoved)
	e.window.SetResizeCallback(e.HandleResize)
	e.window.SetCloseCallback(e.HandleCloseRequested)
	e.window.SetFullscreenCallback(e.HandleFullscreenToggle)
	e.window.SetRedrawCallback(func() { _ = e.RedrawRequested() })

	if err := e.window.SetCursorGrabbed(true); err != nil {
		common.Logger().Warn("cursor grab failed", "err", err)
	}
	e.recenter()

	e.state = StateRunning
	e.lastFrame = time.Time{}
	common.Logger().Debug("engine running", "viewport_width", e.viewport.Width, "viewport_height", e.viewport.Height)
	return nil
}

func (e *engine) HandleKey(code uint32, pressed bool) bool {
	if e.state != StateRunning {
		return false
	}
	return e.controller.HandleKey(code, pressed)
}

func (e *engine) HandlePointerMoved(x, y float64) {
	if e.state != StateRunning {
		return
	}
	e.controller.HandlePointerMoved(x, y, e.pointerSpace())
	e.recenter()
}

// pointerSpace is the extent cursor positions are measured in. On high-DPI displays window coordinates
// are scaled down from framebuffer pixels, so the viewport is only a fallback for windows that report no size.
func (e *engine) pointerSpace() common.Extent {
	if space := common.NewExtent(e.window.WindowSize()); !space.IsZero() {
		return space
	}
	return e.viewport
}

// recenter warps the cursor to the centre of the pointer space. Failures leave yaw/pitch derived from a stale pointer.
func (e *engine) recenter() {
	cx, cy := e.pointerSpace().Center()
	if err := e.window.WarpCursor(float64(cx), float64(cy)); err != nil {
		common.Logger().Warn("pointer re-centre failed", "err", err)
	}
}

func (e *engine) HandleResize(width, height int) {
	if e.state != StateRunning {
		return
	}
	extent := common.NewExtent(width, height)
	if extent.IsZero() {
		return
	}
	if err := e.renderer.Resize(width, height); err != nil {
		e.fail(fmt.Errorf("resize to %dx%d: %w", width, height, err))
		return
	}
	e.viewport = extent
	e.camera.UpdateAspect(extent.Aspect())
}

func (e *engine) HandleCloseRequested() {
	if e.state == StateExiting {
		return
	}
	e.state = StateExiting
	e.window.RequestClose()
}

func (e *engine) HandleFullscreenToggle() {
	if err := e.window.ToggleFullscreen(); err != nil {
		common.Logger().Warn("fullscreen toggle failed", "err", err)
	}
}

func (e *engine) RedrawRequested() error {
	if e.state != StateRunning {
		return ErrNotRunning
	}

	now := e.now()
	var dt float32
	if !e.lastFrame.IsZero() {
		dt = float32(now.Sub(e.lastFrame).Seconds())
	}
	e.lastFrame = now

	e.drainTuning()
	e.controller.Apply(e.camera, dt)

	uniform := e.camera.Uniform()
	e.renderer.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: e.camera.BindGroupProvider(),
		Binding:  cameraUniformBinding,
		Data:     uniform.Marshal(),
	}})

	if err := e.renderer.RenderFrame(); err != nil {
		if fatal := e.handleFrameError(err); fatal != nil {
			return fatal
		}
	}

	if e.profilingEnabled {
		e.profiler.Tick()
	}
	return nil
}

// handleFrameError applies the surface error policy and returns the error only when it ends the run.
func (e *engine) handleFrameError(err error) error {
	var surfaceErr *renderer.SurfaceError
	if errors.As(err, &surfaceErr) {
		switch {
		case surfaceErr.Recoverable():
			common.Logger().Debug("surface reconfigure", "kind", surfaceErr.Kind.String())
			if rerr := e.renderer.Reconfigure(); rerr != nil {
				e.fail(fmt.Errorf("reconfigure after %s: %w", surfaceErr.Kind, rerr))
				return e.err
			}
			return nil
		case surfaceErr.Kind == renderer.SurfaceErrorTimeout:
			common.Logger().Warn("frame dropped", "err", err)
			return nil
		}
	}
	e.fail(err)
	return e.err
}

// drainTuning applies every pending tuning update; the last one wins.
func (e *engine) drainTuning() {
	if e.tuning == nil {
		return
	}
	for {
		select {
		case tuning, ok := <-e.tuning:
			if !ok {
				e.tuning = nil
				return
			}
			e.controller.SetTuning(tuning.Speed, tuning.Sensitivity)
			common.Logger().Info("controller tuning applied", "speed", tuning.Speed, "sensitivity", tuning.Sensitivity)
		default:
			return
		}
	}
}

// fail records a fatal error, enters StateExiting and closes the window.
func (e *engine) fail(err error) {
	common.Logger().Error("engine stopping", "err", err)
	if e.err == nil {
		e.err = err
	}
	e.state = StateExiting
	e.window.RequestClose()
}

func (e *engine) Run() error {
	if e.state == StateUninitialized {
		if err := e.Start(); err != nil {
			return err
		}
	}
	e.window.ProcessMessages()
	e.state = StateExiting
	return e.err
}

func (e *engine) State() State {
	return e.state
}

func (e *engine) Err() error {
	return e.err
}

func (e *engine) Quit() {
	if e.window == nil {
		e.state = StateExiting
		return
	}
	e.HandleCloseRequested()
}
