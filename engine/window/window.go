package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and delivers input events serially on the thread that
// calls ProcessMessages.
type Window interface {
	// SetRedrawCallback sets the function called once per message loop iteration, after events
	// have been dispatched.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetRedrawCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	// Escape and F11 are handled by the window and not forwarded.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetPointerMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the absolute cursor position in window coordinates
	SetPointerMoveCallback(callback func(x, y float64))

	// SetCloseCallback sets the callback for close requests: the window's close button or Escape.
	SetCloseCallback(callback func())

	// SetFullscreenCallback sets the callback for fullscreen toggle requests (F11).
	SetFullscreenCallback(callback func())

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// FramebufferSize returns the drawable size in pixels.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	FramebufferSize() (int, int)

	// WindowSize returns the client area size in window coordinates, the space cursor positions and
	// WarpCursor use. On high-DPI displays it is smaller than FramebufferSize.
	//
	// Returns:
	//   - int: width in window coordinates, 0 before Init
	//   - int: height in window coordinates, 0 before Init
	WindowSize() (int, int)

	// WarpCursor moves the cursor to a position in window coordinates.
	//
	// Parameters:
	//   - x: horizontal position
	//   - y: vertical position
	//
	// Returns:
	//   - error: error if the platform rejected the move
	WarpCursor(x, y float64) error

	// SetCursorGrabbed hides the cursor over the window, or shows it again.
	//
	// Parameters:
	//   - grabbed: true to hide the cursor
	//
	// Returns:
	//   - error: error if the platform rejected the mode change
	SetCursorGrabbed(grabbed bool) error

	// ToggleFullscreen switches between borderless fullscreen on the primary monitor and the
	// previous windowed rectangle.
	//
	// Returns:
	//   - error: error if no monitor is available or the platform rejected the change
	ToggleFullscreen() error

	// Fullscreen reports whether the window is currently fullscreen.
	Fullscreen() bool

	// RequestClose marks the window for closing. ProcessMessages returns after the current iteration.
	RequestClose()

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the redraw callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth and maxHeight bound resizing. Zero means unbounded.
	maxWidth  int
	maxHeight int

	// minWidth and minHeight bound resizing. Zero means unbounded.
	minWidth  int
	minHeight int

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onRedraw     func()
	onResize     func(width, height int)
	onKeyDown    func(keyCode uint32)
	onKeyUp      func(keyCode uint32)
	onMouseMove  func(x, y float64)
	onClose      func()
	onFullscreen func()
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "oxy-viewer",
		minWidth:  200,
		minHeight: 150,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetRedrawCallback(callback func()) {
	w.onRedraw = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetPointerMoveCallback(callback func(x, y float64)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SetCloseCallback(callback func()) {
	w.onClose = callback
}

func (w *engineWindow) SetFullscreenCallback(callback func()) {
	w.onFullscreen = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

func (w *engineWindow) WindowSize() (int, int) {
	return platformWindowSize(w)
}

func (w *engineWindow) WarpCursor(x, y float64) error {
	return platformWarpCursor(w, x, y)
}

func (w *engineWindow) SetCursorGrabbed(grabbed bool) error {
	return platformSetCursorGrabbed(w, grabbed)
}

func (w *engineWindow) ToggleFullscreen() error {
	return platformToggleFullscreen(w)
}

func (w *engineWindow) Fullscreen() bool {
	return platformIsFullscreen(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onRedraw != nil {
			w.onRedraw()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// dispatchKey routes a key event. Escape requests close and F11 requests a fullscreen toggle;
// both act on press only. Every other key goes to the key callbacks.
func (w *engineWindow) dispatchKey(keyCode uint32, pressed, repeat bool) {
	switch keyCode {
	case common.KeyEsc:
		if pressed && !repeat {
			w.requestClose()
		}
		return
	case common.KeyF11:
		if pressed && !repeat && w.onFullscreen != nil {
			w.onFullscreen()
		}
		return
	}
	if pressed {
		if w.onKeyDown != nil {
			w.onKeyDown(keyCode)
		}
		return
	}
	if w.onKeyUp != nil {
		w.onKeyUp(keyCode)
	}
}

// requestClose forwards a close request to the close callback, or closes directly when none is set.
func (w *engineWindow) requestClose() {
	if w.onClose != nil {
		w.onClose()
		return
	}
	w.RequestClose()
}
