package renderer_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	width, height int
}

func (s fakeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (s fakeSurface) FramebufferSize() (int, int)                { return s.width, s.height }

var triangle = model.MeshData{
	Name:      "triangle",
	Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	Indices:   []uint32{0, 1, 2},
}

func newTestRenderer(t *testing.T, w, h int, options ...renderer.RendererBuilderOption) (renderer.Renderer, *renderertest.Backend) {
	t.Helper()
	backend := renderertest.NewBackend()
	options = append([]renderer.RendererBuilderOption{renderer.WithBackend(backend)}, options...)
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, fakeSurface{w, h}, options...)
	require.NoError(t, err)
	return r, backend
}

func readyRenderer(t *testing.T, options ...renderer.RendererBuilderOption) (renderer.Renderer, *renderertest.Backend, camera.Camera) {
	t.Helper()
	r, backend := newTestRenderer(t, 800, 600, options...)
	cam := camera.NewCamera()
	require.NoError(t, r.InitCamera(cam.BindGroupProvider()))
	m, err := model.Upload(r, triangle)
	require.NoError(t, err)
	r.SetModel(m)
	return r, backend, cam
}

func assertTargetsAt(t *testing.T, targets renderer.TargetSet, extent common.Extent) {
	t.Helper()
	assert.Equal(t, extent, targets.Extent())
	for _, target := range []*renderer.Target{targets.Depth(), targets.Normal(), targets.Color()} {
		require.NotNil(t, target)
		assert.Equal(t, extent, target.Extent, target.Label)
	}
}

func TestNewRendererConfiguresSurfaceAndTargets(t *testing.T) {
	r, backend := newTestRenderer(t, 800, 600)

	extent := common.NewExtent(800, 600)
	assert.Equal(t, []common.Extent{extent}, backend.Configured)
	assert.Equal(t, renderer.PresentModeVSync, backend.PresentMode)
	assert.Equal(t, []string{shader.KeyGeometry, shader.KeyLightingFullscreen}, backend.Registered)
	assert.Equal(t, renderer.LightingFullscreen, r.LightingMode())

	targets := r.Targets()
	assertTargetsAt(t, targets, extent)
	assert.Equal(t, renderer.DefaultDepthFormat, targets.Depth().Format)
	assert.Equal(t, renderer.DefaultNormalFormat, targets.Normal().Format)
	assert.Equal(t, renderer.DefaultColorFormat, targets.Color().Format)
	assert.Equal(t, uint64(1), targets.Generation())

	require.Len(t, backend.BindGroupInits, 1)
	inputs := backend.BindGroupInits[0]
	assert.Equal(t, "gbuffer_inputs", inputs.Label)
	assert.Len(t, inputs.TextureViews, 3)
	assert.Len(t, backend.Samplers, 2)

	assert.NotNil(t, r.Pipeline(shader.KeyGeometry))
	assert.NotNil(t, r.Pipeline(shader.KeyLightingFullscreen))
	assert.Nil(t, r.Pipeline(shader.KeyLightingMesh))
}

func TestNewRendererRejectsZeroFramebuffer(t *testing.T) {
	_, err := renderer.NewRenderer(renderer.BackendTypeWGPU, fakeSurface{0, 600},
		renderer.WithBackend(renderertest.NewBackend()))
	assert.ErrorIs(t, err, renderer.ErrZeroExtent)
}

func TestResizeRecreatesAllTargets(t *testing.T) {
	r, backend := newTestRenderer(t, 800, 600)
	old := []*renderer.Target{r.Targets().Depth(), r.Targets().Normal(), r.Targets().Color()}

	require.NoError(t, r.Resize(1920, 1080))

	extent := common.NewExtent(1920, 1080)
	assertTargetsAt(t, r.Targets(), extent)
	assert.Equal(t, extent, r.Extent())
	assert.Equal(t, extent, backend.Configured[len(backend.Configured)-1])
	assert.ElementsMatch(t, old, backend.Released)
	assert.Equal(t, uint64(2), r.Targets().Generation())

	// the lighting inputs were rebound to the new views
	last := backend.BindGroupInits[len(backend.BindGroupInits)-1]
	views := []*wgpu.TextureView{r.Targets().Depth().View, r.Targets().Normal().View, r.Targets().Color().View}
	for _, v := range last.TextureViews {
		assert.Contains(t, views, v)
	}
	// samplers are created once
	assert.Len(t, backend.Samplers, 2)
}

func TestResizeZeroIsNoOp(t *testing.T) {
	r, backend := newTestRenderer(t, 800, 600)
	depth := r.Targets().Depth()

	require.NoError(t, r.Resize(0, 600))
	require.NoError(t, r.Resize(800, 0))

	assert.Len(t, backend.Configured, 1)
	assert.Empty(t, backend.Released)
	assert.Same(t, depth, r.Targets().Depth())
	assert.Equal(t, common.NewExtent(800, 600), r.Extent())
}

func TestResizeFailureKeepsPreviousTargets(t *testing.T) {
	r, backend := newTestRenderer(t, 800, 600)
	normal := r.Targets().Normal()

	backend.FailCreateAfter = 2
	err := r.Resize(1024, 768)
	require.Error(t, err)

	assertTargetsAt(t, r.Targets(), common.NewExtent(800, 600))
	assert.Same(t, normal, r.Targets().Normal())
	assert.Equal(t, common.NewExtent(800, 600), r.Extent())
	// the two targets created before the failure were released
	assert.Len(t, backend.Released, 2)
	for _, released := range backend.Released {
		assert.Equal(t, common.NewExtent(1024, 768), released.Extent)
	}
}

func TestBindGroupFailureRestoresViews(t *testing.T) {
	r, backend := newTestRenderer(t, 800, 600)
	targets := r.Targets()
	normalView := targets.Normal().View

	backend.BindGroupErr = errors.New("bind group rejected")
	_, err := targets.Recreate(common.NewExtent(640, 480))
	require.Error(t, err)

	assertTargetsAt(t, targets, common.NewExtent(800, 600))
	binding, ok := shaderBinding(t, "normal_texture")
	require.True(t, ok)
	assert.Same(t, normalView, targets.Inputs().TextureView(binding))
	assert.Len(t, backend.Released, 3)
}

func shaderBinding(t *testing.T, name string) (int, bool) {
	t.Helper()
	_, fs, err := shader.Load(shader.KeyLightingFullscreen)
	require.NoError(t, err)
	return fs.BindGroupFromVarName(0, name)
}

func TestInitCameraSizesUniform(t *testing.T) {
	_, backend, cam := readyRenderer(t)

	var cameraInit *renderertest.BindGroupInit
	for i := range backend.BindGroupInits {
		if backend.BindGroupInits[i].Label == cam.BindGroupProvider().Label() {
			cameraInit = &backend.BindGroupInits[i]
		}
	}
	require.NotNil(t, cameraInit)
	assert.Equal(t, map[int]uint64{0: 64}, cameraInit.BufferSizes)
}

func findBindGroupInit(t *testing.T, backend *renderertest.Backend, label string) renderertest.BindGroupInit {
	t.Helper()
	for i := len(backend.BindGroupInits) - 1; i >= 0; i-- {
		if backend.BindGroupInits[i].Label == label {
			return backend.BindGroupInits[i]
		}
	}
	require.Failf(t, "bind group not created", "label %q", label)
	return renderertest.BindGroupInit{}
}

func TestBindGroupsUsePipelineLayouts(t *testing.T) {
	cases := []struct {
		name        string
		mode        renderer.LightingMode
		lightingKey string
		inputGroup  int
	}{
		{"fullscreen", renderer.LightingFullscreen, shader.KeyLightingFullscreen, 0},
		{"mesh", renderer.LightingMesh, shader.KeyLightingMesh, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, backend, cam := readyRenderer(t, renderer.WithLightingMode(tc.mode))
			stages := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

			cameraInit := findBindGroupInit(t, backend, cam.BindGroupProvider().Label())
			geometryLayout := r.Pipeline(shader.KeyGeometry).BindGroupLayoutDescriptors()[0]
			assert.Equal(t, geometryLayout, cameraInit.Descriptor)
			require.NotEmpty(t, cameraInit.Descriptor.Entries)
			for _, entry := range cameraInit.Descriptor.Entries {
				assert.Equal(t, stages, entry.Visibility, "camera binding %d", entry.Binding)
			}

			inputsInit := findBindGroupInit(t, backend, r.Targets().Inputs().Label())
			lightingLayout := r.Pipeline(tc.lightingKey).BindGroupLayoutDescriptors()[tc.inputGroup]
			assert.Equal(t, lightingLayout, inputsInit.Descriptor)
			require.NotEmpty(t, inputsInit.Descriptor.Entries)
			for _, entry := range inputsInit.Descriptor.Entries {
				assert.Equal(t, stages, entry.Visibility, "g-buffer binding %d", entry.Binding)
			}

			require.NoError(t, r.RenderFrame())
			require.NoError(t, r.Resize(1024, 768))
			require.NoError(t, r.RenderFrame())
			assert.Empty(t, backend.LayoutMismatches)
		})
	}
}

func TestGeometryPipelineState(t *testing.T) {
	r, _ := newTestRenderer(t, 800, 600)
	geometry := r.Pipeline(shader.KeyGeometry)
	require.NotNil(t, geometry)

	assert.Equal(t, wgpu.CompareFunctionLess, geometry.DepthCompare())
	assert.True(t, geometry.DepthWriteEnabled())
	assert.Equal(t, wgpu.CullModeBack, geometry.CullMode())
	assert.Equal(t, renderer.DefaultDepthFormat, geometry.DepthFormat())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, geometry.Topology())
	assert.Equal(t, []wgpu.TextureFormat{renderer.DefaultNormalFormat, renderer.DefaultColorFormat}, geometry.ColorTargets())
}

func TestRenderFrameWithoutModel(t *testing.T) {
	r, _ := newTestRenderer(t, 800, 600)
	assert.ErrorIs(t, r.RenderFrame(), renderer.ErrNoModel)
}

func TestRenderFrameFullscreen(t *testing.T) {
	r, backend, cam := readyRenderer(t)

	require.NoError(t, r.RenderFrame())

	assert.Equal(t, 1, backend.Submitted)
	assert.Equal(t, 1, backend.Presented)
	require.Len(t, backend.Passes, 2)

	geometry := backend.Passes[0]
	require.Len(t, geometry.Colors, 2)
	assert.Same(t, r.Targets().Normal(), geometry.Colors[0].Target)
	assert.Same(t, r.Targets().Color(), geometry.Colors[1].Target)
	assert.Same(t, r.Targets().Depth(), geometry.Depth)
	assert.False(t, geometry.DepthLoad)

	lighting := backend.Passes[1]
	require.Len(t, lighting.Colors, 1)
	assert.Nil(t, lighting.Colors[0].Target)
	assert.Equal(t, wgpu.Color{A: 1}, lighting.Colors[0].Clear)
	assert.Nil(t, lighting.Depth)

	require.Len(t, backend.Draws, 2)
	assert.Equal(t, renderertest.Draw{
		Pipeline:   shader.KeyGeometry,
		Mesh:       "mesh_triangle",
		BindGroups: []string{cam.BindGroupProvider().Label()},
	}, backend.Draws[0])
	assert.Equal(t, renderertest.Draw{
		Pipeline:   shader.KeyLightingFullscreen,
		Fullscreen: true,
		BindGroups: []string{"gbuffer_inputs"},
	}, backend.Draws[1])
}

func TestRenderFrameMeshLighting(t *testing.T) {
	r, backend, cam := readyRenderer(t, renderer.WithLightingMode(renderer.LightingMesh))
	assert.Contains(t, backend.Registered, shader.KeyLightingMesh)

	require.NoError(t, r.RenderFrame())

	require.Len(t, backend.Passes, 2)
	lighting := backend.Passes[1]
	assert.Same(t, r.Targets().Depth(), lighting.Depth)
	assert.True(t, lighting.DepthLoad)

	require.Len(t, backend.Draws, 2)
	assert.Equal(t, shader.KeyLightingMesh, backend.Draws[1].Pipeline)
	assert.False(t, backend.Draws[1].Fullscreen)
	assert.Equal(t, []string{cam.BindGroupProvider().Label(), "gbuffer_inputs"}, backend.Draws[1].BindGroups)

	// mesh lighting reads no depth texture
	assert.Len(t, backend.BindGroupInits[0].TextureViews, 2)
}

func TestRenderFrameClassifiesAcquireFailure(t *testing.T) {
	r, backend, _ := readyRenderer(t)
	backend.FrameErrors = []error{errors.New("Timeout")}

	err := r.RenderFrame()

	var se *renderer.SurfaceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, renderer.SurfaceErrorTimeout, se.Kind)
	assert.Empty(t, backend.Passes)
	assert.Zero(t, backend.Presented)

	require.NoError(t, r.RenderFrame())
	assert.Equal(t, 1, backend.Presented)
}

func TestRenderFrameDiscardsOnPassFailure(t *testing.T) {
	r, backend, _ := readyRenderer(t)
	backend.PassErr = errors.New("encoder invalid")

	require.Error(t, r.RenderFrame())
	assert.Equal(t, 1, backend.Discarded)
	assert.Zero(t, backend.Presented)

	backend.PassErr = nil
	require.NoError(t, r.RenderFrame())
}

func TestReconfigureUsesLastExtent(t *testing.T) {
	r, backend := newTestRenderer(t, 800, 600)
	require.NoError(t, r.Resize(400, 300))

	require.NoError(t, r.Reconfigure())

	assert.Equal(t, common.NewExtent(400, 300), backend.Configured[len(backend.Configured)-1])
	assertTargetsAt(t, r.Targets(), common.NewExtent(400, 300))
}

func TestWriteBuffersAndSetModel(t *testing.T) {
	r, backend, cam := readyRenderer(t)
	uniform := cam.Uniform()

	r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: cam.BindGroupProvider(),
		Binding:  0,
		Data:     uniform.Marshal(),
	}})
	require.Len(t, backend.Writes, 1)
	assert.Len(t, backend.Writes[0].Data, 64)

	other, err := model.Upload(r, triangle, model.WithName("other"))
	require.NoError(t, err)
	r.SetModel(other)
	assert.Equal(t, "other", r.Model().Name())
}
