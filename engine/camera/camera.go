package camera

import (
	"strconv"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraCount is an atomic counter used to generate unique bind group provider names for each camera instance.
var cameraCount atomic.Uint64

// ClipSpaceCorrection remaps clip-space depth from the [-w, w] range produced by mgl32.Perspective
// to the [0, w] range WebGPU's depth test expects (z' = 0.5z + 0.5w). Column-major.
var ClipSpaceCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// DefaultEye is the starting world position of a new camera.
var DefaultEye = mgl32.Vec3{0, 1, 2}

type cameraImpl struct {
	eye         mgl32.Vec3
	orientation mgl32.Quat
	up          mgl32.Vec3

	fovy   float32
	aspect float32
	znear  float32
	zfar   float32

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera holds a world position, a camera-to-world orientation and perspective parameters.
// The view-projection matrix is derived on demand and never cached, so an aspect change is
// visible to the very next build.
type Camera interface {
	// Eye returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Eye() mgl32.Vec3

	// Orientation returns the camera-to-world rotation. It is always unit-norm.
	//
	// Returns:
	//   - mgl32.Quat: the orientation
	Orientation() mgl32.Quat

	// Up returns the world up axis used for movement and projection.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fovy returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fovy() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// ZNear returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	ZNear() float32

	// ZFar returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	ZFar() float32

	// SetPose replaces position and orientation. The orientation is normalized before it is stored;
	// a zero quaternion resets to identity.
	//
	// Parameters:
	//   - eye: the new world position
	//   - orientation: the new camera-to-world rotation
	SetPose(eye mgl32.Vec3, orientation mgl32.Quat)

	// Translate moves the eye by delta in world space.
	//
	// Parameters:
	//   - delta: world-space offset
	Translate(delta mgl32.Vec3)

	// UpdateAspect stores a new aspect ratio. Must be called before the next BuildViewProjection
	// after any viewport change. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width / height of the new viewport
	UpdateAspect(aspect float32)

	// View returns Rotation(orientation⁻¹) * Translation(-eye).
	//
	// Returns:
	//   - mgl32.Mat4: the world-to-camera matrix
	View() mgl32.Mat4

	// Projection returns the perspective projection for the current fovy, aspect and clip planes,
	// in the [-1, 1] depth convention.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	Projection() mgl32.Mat4

	// BuildViewProjection returns ClipSpaceCorrection * Projection() * View().
	//
	// Returns:
	//   - mgl32.Mat4: the combined view-projection matrix
	BuildViewProjection() mgl32.Mat4

	// Uniform snapshots the current view-projection for GPU upload.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform snapshot
	Uniform() GPUCameraUniform

	// BindGroupProvider returns the camera's bind group provider for GPU resources.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider sets the camera's bind group provider.
	//
	// Parameters:
	//   - provider: the bind group provider to set
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera at DefaultEye looking down -Z with a 45° vertical field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		eye:         DefaultEye,
		orientation: mgl32.QuatIdent(),
		up:          mgl32.Vec3{0, 1, 0},
		fovy:        mgl32.DegToRad(45),
		aspect:      1.0,
		znear:       0.1,
		zfar:        100.0,
		bindGroupProvider: bind_group_provider.NewBindGroupProvider(
			"camera_" + strconv.FormatUint(cameraCount.Add(1)-1, 10),
		),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	return c.eye
}

func (c *cameraImpl) Orientation() mgl32.Quat {
	return c.orientation
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	return c.up
}

func (c *cameraImpl) Fovy() float32 {
	return c.fovy
}

func (c *cameraImpl) Aspect() float32 {
	return c.aspect
}

func (c *cameraImpl) ZNear() float32 {
	return c.znear
}

func (c *cameraImpl) ZFar() float32 {
	return c.zfar
}

func (c *cameraImpl) SetPose(eye mgl32.Vec3, orientation mgl32.Quat) {
	c.eye = eye
	c.orientation = normalizeQuat(orientation)
}

func (c *cameraImpl) Translate(delta mgl32.Vec3) {
	c.eye = c.eye.Add(delta)
}

func (c *cameraImpl) UpdateAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
}

func (c *cameraImpl) View() mgl32.Mat4 {
	rotation := c.orientation.Conjugate().Mat4()
	return rotation.Mul4(mgl32.Translate3D(-c.eye.X(), -c.eye.Y(), -c.eye.Z()))
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	return mgl32.Perspective(c.fovy, c.aspect, c.znear, c.zfar)
}

func (c *cameraImpl) BuildViewProjection() mgl32.Mat4 {
	return ClipSpaceCorrection.Mul4(c.Projection()).Mul4(c.View())
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	return GPUCameraUniform{ViewProj: c.BuildViewProjection()}
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return c.bindGroupProvider
}

func (c *cameraImpl) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	c.bindGroupProvider = provider
}

// normalizeQuat returns q scaled to unit length, or identity when q has no usable length.
func normalizeQuat(q mgl32.Quat) mgl32.Quat {
	if q.Len() < 1e-6 {
		return mgl32.QuatIdent()
	}
	return q.Normalize()
}
