package camera

import "github.com/Carmen-Shannon/oxy-viewer/common"

// CameraController translates discrete key and pointer events into free-look camera motion.
// Key events toggle movement flags, pointer events accumulate absolute yaw/pitch angles, and Apply
// moves the camera once per frame. Translation is scaled by the frame delta; orientation is rebuilt
// from yaw and pitch on every Apply rather than rotated incrementally.
type CameraController interface {
	// HandleKey records a movement key transition.
	//
	// Parameters:
	//   - code: the logical key code (see common.Key*)
	//   - pressed: true on key down, false on key up
	//
	// Returns:
	//   - bool: true if the key is a movement key and was consumed
	HandleKey(code uint32, pressed bool) bool

	// HandlePointerMoved accumulates look angles from an absolute pointer position.
	// The offset from the viewport centre is scaled by the sensitivity; pitch is clamped to MaxPitch.
	// The caller must re-centre the pointer after each event.
	//
	// Parameters:
	//   - x, y: pointer position in viewport pixels
	//   - viewport: the current viewport size
	//
	// Returns:
	//   - bool: true if the event changed yaw or pitch
	HandlePointerMoved(x, y float64, viewport common.Extent) bool

	// Apply moves the camera along its horizontal basis according to the held keys and rebuilds its
	// orientation from the current yaw and pitch.
	//
	// Parameters:
	//   - cam: the camera to update
	//   - dt: elapsed seconds since the previous frame
	Apply(cam Camera, dt float32)

	// Yaw returns the accumulated horizontal angle in radians.
	Yaw() float32

	// Pitch returns the accumulated vertical angle in radians, within [-MaxPitch, MaxPitch].
	Pitch() float32

	// Speed returns the movement speed in world units per second.
	Speed() float32

	// Sensitivity returns the radians of rotation per pixel of pointer offset.
	Sensitivity() float32

	// SetTuning replaces speed and sensitivity. Non-positive values leave the current value in place.
	//
	// Parameters:
	//   - speed: world units per second
	//   - sensitivity: radians per pixel
	SetTuning(speed, sensitivity float32)

	// Pressed reports whether any movement key is currently held.
	Pressed() bool
}
