package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoModel is returned by RenderFrame before a model has been set.
var ErrNoModel = errors.New("renderer: no model set")

// SurfaceSource is the window side of a Renderer: where the surface comes from and how large it is.
type SurfaceSource interface {
	// SurfaceDescriptor returns the platform surface description.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// FramebufferSize returns the drawable size in pixels.
	FramebufferSize() (width, height int)
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType RendererBackendType
	backend     Backend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	lightingMode         LightingMode
	clearColor           wgpu.Color

	extent  common.Extent
	targets TargetSet
	graph   *renderGraph

	cameraProvider bind_group_provider.BindGroupProvider
	model          model.Model
}

// Renderer is the render context of the viewer. It owns the backend, the surface target set and the
// render graph, and draws one model through one camera each frame.
type Renderer interface {
	// Backend returns the backend the renderer drives.
	Backend() Backend

	// Extent returns the last nonzero surface size.
	Extent() common.Extent

	// LightingMode returns the lighting pass variant.
	LightingMode() LightingMode

	// Resize reconfigures the surface and recreates the target set at the new size.
	// A zero width or height is ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the surface or targets could not be recreated
	Resize(width, height int) error

	// Reconfigure repeats Resize at the current extent. Used after the surface was lost or outdated.
	//
	// Returns:
	//   - error: an error if the surface or targets could not be recreated
	Reconfigure() error

	// InitCamera creates the camera uniform buffer and bind group on the provider.
	//
	// Parameters:
	//   - provider: the camera's bind group provider
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitCamera(provider bind_group_provider.BindGroupProvider) error

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// SetModel sets the model drawn by RenderFrame. The renderer takes ownership of it.
	SetModel(m model.Model)

	// Model returns the model drawn by RenderFrame.
	Model() model.Model

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// RenderFrame runs the geometry pass then the lighting pass and presents the result.
	//
	// Returns:
	//   - error: a *SurfaceError when no frame could be acquired, ErrNoModel, or a submission error
	RenderFrame() error

	// Targets returns the surface target set.
	Targets() TargetSet

	// Pipeline returns the registered pipeline with the given key, or nil.
	//
	// Parameters:
	//   - key: shader.KeyGeometry or the key of the active lighting program
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline, or nil if not registered
	Pipeline(key string) pipeline.Pipeline

	// Release destroys the model, targets, pipelines and backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the backend, configures the surface at the source's framebuffer size,
// allocates the surface target set and registers both render graph pipelines.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., BackendTypeWGPU)
//   - source: the window providing the surface; unused when WithBackend supplies a backend
//   - options: a variadic list of RendererBuilderOption functions to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the device, surface, targets or pipelines could not be created
func NewRenderer(backendType RendererBackendType, source SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		backendType:  backendType,
		presentMode:  PresentModeVSync,
		lightingMode: LightingFullscreen,
		clearColor:   wgpu.Color{R: 0, G: 0, B: 0, A: 1},
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	extent := common.NewExtent(source.FramebufferSize())
	if extent.IsZero() {
		return nil, fmt.Errorf("initial surface: %w", ErrZeroExtent)
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			b, err := newWGPURendererBackend(source.SurfaceDescriptor(), r.forceFallbackAdapter)
			if err != nil {
				return nil, err
			}
			r.backend = b
		}
	}

	r.backend.SetPresentMode(r.presentMode)
	if err := r.backend.ConfigureSurface(extent); err != nil {
		r.backend.Release()
		return nil, err
	}
	r.extent = extent

	graph, err := newRenderGraph(r.backend, r.lightingMode, r.clearColor,
		DefaultDepthFormat, DefaultNormalFormat, DefaultColorFormat)
	if err != nil {
		r.backend.Release()
		return nil, err
	}
	r.graph = graph

	r.targets = NewTargetSet(r.backend, graph.lighting, graph.inputGroup())
	if _, err := r.targets.Recreate(extent); err != nil {
		r.graph.release()
		r.backend.Release()
		return nil, err
	}

	common.Logger().Info("renderer ready", "width", extent.Width, "height", extent.Height,
		"lighting", r.lightingMode.String())
	return r, nil
}

func (r *renderer) Backend() Backend {
	return r.backend
}

func (r *renderer) Extent() common.Extent {
	return r.extent
}

func (r *renderer) LightingMode() LightingMode {
	return r.lightingMode
}

func (r *renderer) Resize(width, height int) error {
	extent := common.NewExtent(width, height)
	if extent.IsZero() {
		return nil
	}
	if err := r.backend.ConfigureSurface(extent); err != nil {
		return err
	}
	if _, err := r.targets.Recreate(extent); err != nil {
		return err
	}
	r.extent = extent
	return nil
}

func (r *renderer) Reconfigure() error {
	w, h := int(r.extent.Width), int(r.extent.Height)
	return r.Resize(w, h)
}

func (r *renderer) InitCamera(provider bind_group_provider.BindGroupProvider) error {
	// The merged layout keeps the bind group compatible with every pipeline that draws with it.
	descriptor := r.graph.geometry.BindGroupLayoutDescriptors()[cameraGroup]
	binding, ok := r.graph.geometry.Shader(shader.ShaderTypeVertex).BindGroupFromVarName(cameraGroup, "camera")
	if !ok {
		return errors.New("geometry program declares no camera binding")
	}
	var uniform camera.GPUCameraUniform
	sizes := map[int]uint64{binding: uint64(uniform.Size())}
	if err := r.backend.InitBindGroup(provider, descriptor, sizes); err != nil {
		return fmt.Errorf("camera bind group: %w", err)
	}
	r.cameraProvider = provider
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) SetModel(m model.Model) {
	if r.model != nil && r.model != m {
		r.model.Release()
	}
	r.model = m
}

func (r *renderer) Model() model.Model {
	return r.model
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) RenderFrame() error {
	if r.model == nil {
		return ErrNoModel
	}
	if r.cameraProvider == nil {
		return errors.New("renderer: camera not initialized")
	}
	return r.graph.execute(r.targets, r.cameraProvider, r.model.MeshProvider())
}

func (r *renderer) Targets() TargetSet {
	return r.targets
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	switch key {
	case r.graph.geometry.PipelineKey():
		return r.graph.geometry
	case r.graph.lighting.PipelineKey():
		return r.graph.lighting
	default:
		return nil
	}
}

func (r *renderer) Release() {
	if r.model != nil {
		r.model.Release()
		r.model = nil
	}
	if r.targets != nil {
		r.targets.Release()
	}
	if r.graph != nil {
		r.graph.release()
	}
	r.backend.Release()
}
