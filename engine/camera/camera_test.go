package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	assert.Equal(t, mgl32.Vec3{0, 1, 2}, c.Eye())
	assert.Equal(t, mgl32.QuatIdent(), c.Orientation())
	assert.InDelta(t, mgl32.DegToRad(45), c.Fovy(), 1e-6)
	assert.Equal(t, float32(0.1), c.ZNear())
	assert.Equal(t, float32(100), c.ZFar())
	require.NotNil(t, c.BindGroupProvider())
}

func TestCameraProvidersAreUniquelyNamed(t *testing.T) {
	a := NewCamera()
	b := NewCamera()
	assert.NotEqual(t, a.BindGroupProvider().Label(), b.BindGroupProvider().Label())
}

func TestSetPoseNormalizesOrientation(t *testing.T) {
	c := NewCamera()
	c.SetPose(mgl32.Vec3{1, 2, 3}, mgl32.Quat{W: 2, V: mgl32.Vec3{0, 2, 0}})

	assert.Equal(t, mgl32.Vec3{1, 2, 3}, c.Eye())
	assert.InDelta(t, 1.0, c.Orientation().Len(), 1e-5)

	c.SetPose(c.Eye(), mgl32.Quat{})
	assert.Equal(t, mgl32.QuatIdent(), c.Orientation())
}

func TestUpdateAspectIsUsedByNextBuild(t *testing.T) {
	c := NewCamera(WithAspect(800.0 / 600.0))
	before := c.BuildViewProjection()

	c.UpdateAspect(400.0 / 300.0)
	assert.Equal(t, before, c.BuildViewProjection())

	c.UpdateAspect(1920.0 / 1080.0)
	proj := c.Projection()
	// For a perspective matrix m[1][1] / m[0][0] equals the aspect ratio.
	assert.InDelta(t, 1920.0/1080.0, proj.At(1, 1)/proj.At(0, 0), 1e-5)
	assert.NotEqual(t, before, c.BuildViewProjection())
}

func TestUpdateAspectIgnoresNonPositive(t *testing.T) {
	c := NewCamera(WithAspect(2))
	c.UpdateAspect(0)
	c.UpdateAspect(-1)
	assert.Equal(t, float32(2), c.Aspect())
}

func TestViewMovesEyeToOrigin(t *testing.T) {
	c := NewCamera()
	eye := c.Eye()
	p := c.View().Mul4x1(eye.Vec4(1))
	assert.InDelta(t, 0, p.X(), 1e-5)
	assert.InDelta(t, 0, p.Y(), 1e-5)
	assert.InDelta(t, 0, p.Z(), 1e-5)
}

func TestBuildViewProjectionDepthRange(t *testing.T) {
	c := NewCamera(WithEye(mgl32.Vec3{0, 0, 0}))
	vp := c.BuildViewProjection()

	near := vp.Mul4x1(mgl32.Vec4{0, 0, -c.ZNear(), 1})
	far := vp.Mul4x1(mgl32.Vec4{0, 0, -c.ZFar(), 1})

	assert.InDelta(t, 0, near.Z()/near.W(), 1e-4)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-4)
}

func TestUniformMarshal(t *testing.T) {
	c := NewCamera()
	u := c.Uniform()

	assert.Equal(t, 64, u.Size())
	buf := u.Marshal()
	require.Len(t, buf, 64)
	assert.Equal(t, c.BuildViewProjection(), u.ViewProj)
}
