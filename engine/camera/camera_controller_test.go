package camera

import (
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

var viewport = common.Extent{Width: 800, Height: 600}

func TestHandleKeyConsumesMovementKeys(t *testing.T) {
	cc := NewCameraController()

	for _, code := range []uint32{
		common.KeyW, common.KeyA, common.KeyS, common.KeyD,
		common.KeyUp, common.KeyDown, common.KeyLeft, common.KeyRight,
		common.KeySpace, common.KeyLeftShift,
	} {
		assert.True(t, cc.HandleKey(code, true), "key %d", code)
		assert.True(t, cc.HandleKey(code, false), "key %d", code)
	}
	assert.False(t, cc.HandleKey(common.KeyEsc, true))
	assert.False(t, cc.HandleKey(common.KeyF11, true))
	assert.False(t, cc.Pressed())
}

func TestPointerAccumulatesFromCentre(t *testing.T) {
	cc := NewCameraController(WithSensitivity(0.01))

	assert.False(t, cc.HandlePointerMoved(400, 300, viewport))
	assert.True(t, cc.HandlePointerMoved(410, 295, viewport))
	assert.InDelta(t, 0.1, cc.Yaw(), 1e-6)
	assert.InDelta(t, -0.05, cc.Pitch(), 1e-6)

	assert.True(t, cc.HandlePointerMoved(410, 300, viewport))
	assert.InDelta(t, 0.2, cc.Yaw(), 1e-6)

	assert.False(t, cc.HandlePointerMoved(10, 10, common.Extent{}))
}

func TestPitchIsClamped(t *testing.T) {
	cc := NewCameraController()

	for range 1000 {
		cc.HandlePointerMoved(400, 100000, viewport)
	}
	assert.Equal(t, float32(MaxPitch), cc.Pitch())

	for range 1000 {
		cc.HandlePointerMoved(400, -100000, viewport)
	}
	assert.Equal(t, float32(-MaxPitch), cc.Pitch())
}

func TestApplyWithoutKeysKeepsEye(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController()

	for _, dt := range []float32{0, 0.016, 1, 100} {
		cc.Apply(cam, dt)
		assert.Equal(t, mgl32.Vec3{0, 1, 2}, cam.Eye())
	}
}

func TestApplyOppositeKeysCancel(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController()

	cc.HandleKey(common.KeyW, true)
	cc.HandleKey(common.KeyS, true)
	cc.HandleKey(common.KeyA, true)
	cc.HandleKey(common.KeyD, true)
	cc.HandleKey(common.KeySpace, true)
	cc.HandleKey(common.KeyLeftShift, true)

	cc.Apply(cam, 1)
	assert.Equal(t, mgl32.Vec3{0, 1, 2}, cam.Eye())
}

func TestApplyDiagonalSpeedMatchesSingleAxis(t *testing.T) {
	single := NewCamera()
	diagonal := NewCamera()
	cc := NewCameraController()

	cc.HandleKey(common.KeyW, true)
	cc.Apply(single, 0.5)

	cc.HandleKey(common.KeyD, true)
	cc.Apply(diagonal, 0.5)

	start := mgl32.Vec3{0, 1, 2}
	assert.InDelta(t, 2.5, single.Eye().Sub(start).Len(), 1e-5)
	assert.InDelta(t, 2.5, diagonal.Eye().Sub(start).Len(), 1e-5)
}

func TestApplyForwardEndToEnd(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController()

	cc.HandleKey(common.KeyW, true)
	cc.Apply(cam, 1)

	eye := cam.Eye()
	assert.InDelta(t, 0, eye.X(), 1e-5)
	assert.InDelta(t, 1, eye.Y(), 1e-5)
	assert.InDelta(t, -3, eye.Z(), 1e-5)
}

func TestApplyForwardIgnoresPitch(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController(WithYawPitch(0, 1.0))

	// First Apply installs the pitched orientation; the second moves along it.
	cc.Apply(cam, 0)
	cc.HandleKey(common.KeyW, true)
	cc.Apply(cam, 1)

	moved := cam.Eye().Sub(mgl32.Vec3{0, 1, 2})
	assert.InDelta(t, 0, moved.Y(), 1e-5)
	assert.InDelta(t, 5, moved.Len(), 1e-5)
}

func TestApplyKeepsOrientationUnit(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController(WithSensitivity(0.05))
	rng := rand.New(rand.NewSource(7))

	cc.HandleKey(common.KeyW, true)
	cc.HandleKey(common.KeyD, true)
	for range 5000 {
		cc.HandlePointerMoved(rng.Float64()*800, rng.Float64()*600, viewport)
		cc.Apply(cam, 0.016)
		assert.InDelta(t, 1.0, cam.Orientation().Len(), 1e-5)
		assert.LessOrEqual(t, cc.Pitch(), float32(MaxPitch))
		assert.GreaterOrEqual(t, cc.Pitch(), float32(-MaxPitch))
	}
}

func TestYawTurnsTowardPointer(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController()

	// Pointer right of centre turns the view toward +X.
	cc.HandlePointerMoved(400+500, 300, viewport)
	cc.Apply(cam, 0)
	forward := cam.Orientation().Rotate(mgl32.Vec3{0, 0, -1})
	assert.Greater(t, forward.X(), float32(0))
}

func TestSetTuning(t *testing.T) {
	cc := NewCameraController()
	cc.SetTuning(9, 0.002)
	assert.Equal(t, float32(9), cc.Speed())
	assert.Equal(t, float32(0.002), cc.Sensitivity())

	cc.SetTuning(0, -1)
	assert.Equal(t, float32(9), cc.Speed())
	assert.Equal(t, float32(0.002), cc.Sensitivity())
}
