package camera

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxPitch is the largest absolute pitch the controller allows (75°), keeping the view away from the poles.
const MaxPitch = 5 * math32.Pi / 12

const (
	// DefaultSpeed is the movement speed in world units per second.
	DefaultSpeed float32 = 5.0
	// DefaultSensitivity is the look rotation in radians per pixel.
	DefaultSensitivity float32 = 0.001
)

// movement key flags
const (
	moveForward uint8 = 1 << iota
	moveBackward
	moveLeft
	moveRight
	moveUp
	moveDown
)

type cameraControllerImpl struct {
	speed       float32
	sensitivity float32

	yaw   float32
	pitch float32

	held uint8
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a free-look controller with DefaultSpeed, DefaultSensitivity and zero yaw/pitch.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		speed:       DefaultSpeed,
		sensitivity: DefaultSensitivity,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

// movementFlag maps a key code to its movement flag, or 0 if the key does not move the camera.
func movementFlag(code uint32) uint8 {
	switch code {
	case common.KeyW, common.KeyUp:
		return moveForward
	case common.KeyS, common.KeyDown:
		return moveBackward
	case common.KeyA, common.KeyLeft:
		return moveLeft
	case common.KeyD, common.KeyRight:
		return moveRight
	case common.KeySpace:
		return moveUp
	case common.KeyLeftShift:
		return moveDown
	}
	return 0
}

func (cc *cameraControllerImpl) HandleKey(code uint32, pressed bool) bool {
	flag := movementFlag(code)
	if flag == 0 {
		return false
	}
	if pressed {
		cc.held |= flag
	} else {
		cc.held &^= flag
	}
	return true
}

func (cc *cameraControllerImpl) HandlePointerMoved(x, y float64, viewport common.Extent) bool {
	if viewport.IsZero() {
		return false
	}
	cx, cy := viewport.Center()
	dx := float32(x) - cx
	dy := float32(y) - cy
	if dx == 0 && dy == 0 {
		return false
	}
	cc.yaw += dx * cc.sensitivity
	cc.pitch = clampPitch(cc.pitch + dy*cc.sensitivity)
	return true
}

func (cc *cameraControllerImpl) Apply(cam Camera, dt float32) {
	if dt < 0 {
		dt = 0
	}

	eye := cam.Eye()
	if cc.held != 0 && dt > 0 {
		up := cam.Up()
		var move mgl32.Vec3

		// Forward is projected onto the ground plane so pitch never changes horizontal speed.
		forward := cam.Orientation().Rotate(mgl32.Vec3{0, 0, -1})
		forward = forward.Sub(up.Mul(forward.Dot(up)))
		if forward.Len() > 1e-6 {
			forward = forward.Normalize()
			right := forward.Cross(up)
			if cc.has(moveForward) {
				move = move.Add(forward)
			}
			if cc.has(moveBackward) {
				move = move.Sub(forward)
			}
			if cc.has(moveRight) {
				move = move.Add(right)
			}
			if cc.has(moveLeft) {
				move = move.Sub(right)
			}
		}
		if cc.has(moveUp) {
			move = move.Add(up)
		}
		if cc.has(moveDown) {
			move = move.Sub(up)
		}

		if move.Len() > 1e-6 {
			eye = eye.Add(move.Normalize().Mul(cc.speed * dt))
		}
	}

	cam.SetPose(eye, cc.orientation())
}

func (cc *cameraControllerImpl) Yaw() float32 {
	return cc.yaw
}

func (cc *cameraControllerImpl) Pitch() float32 {
	return cc.pitch
}

func (cc *cameraControllerImpl) Speed() float32 {
	return cc.speed
}

func (cc *cameraControllerImpl) Sensitivity() float32 {
	return cc.sensitivity
}

func (cc *cameraControllerImpl) SetTuning(speed, sensitivity float32) {
	if speed > 0 {
		cc.speed = speed
	}
	if sensitivity > 0 {
		cc.sensitivity = sensitivity
	}
}

func (cc *cameraControllerImpl) Pressed() bool {
	return cc.held != 0
}

func (cc *cameraControllerImpl) has(flag uint8) bool {
	return cc.held&flag != 0
}

// orientation builds the camera-to-world rotation from yaw and pitch.
// The world-to-camera rotation is pitch applied after yaw; the camera stores its inverse.
func (cc *cameraControllerImpl) orientation() mgl32.Quat {
	yawRot := mgl32.QuatRotate(cc.yaw, mgl32.Vec3{0, 1, 0})
	pitchRot := mgl32.QuatRotate(cc.pitch, mgl32.Vec3{1, 0, 0})
	return pitchRot.Mul(yawRot).Normalize().Conjugate()
}

func clampPitch(pitch float32) float32 {
	return mgl32.Clamp(pitch, -MaxPitch, MaxPitch)
}
