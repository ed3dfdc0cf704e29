package renderer

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the graphics API implementation backing a Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU (wgpu-native) backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank (Fifo). Frames are capped to the display refresh rate.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately (Immediate). May tear.
	PresentModeUncapped
)

// Target is one offscreen render attachment: a 2D texture and its default view.
type Target struct {
	Label   string
	Format  wgpu.TextureFormat
	Extent  common.Extent
	Texture *wgpu.Texture
	View    *wgpu.TextureView
}

// ColorAttachment is one color output of a render pass.
type ColorAttachment struct {
	// Target is the texture to render into. Nil selects the current surface frame.
	Target *Target

	// Clear is the value the attachment is cleared to when the pass begins.
	Clear wgpu.Color
}

// PassAttachments describes the outputs of a single render pass.
type PassAttachments struct {
	Label  string
	Colors []ColorAttachment

	// Depth is the optional depth attachment.
	Depth *Target

	// DepthLoad keeps the existing depth contents instead of clearing them to 1.0.
	DepthLoad bool
}

// Backend is the graphics API surface the Renderer drives. One frame is
// BeginFrame, any number of BeginPass/Draw*/EndPass groups, then EndFrame and Present.
// DiscardFrame abandons a frame started with BeginFrame.
type Backend interface {
	// ConfigureSurface (re)configures the presentable surface for the given size.
	//
	// Parameters:
	//   - extent: the new surface size in pixels, both dimensions nonzero
	//
	// Returns:
	//   - error: ErrZeroExtent for an empty extent
	ConfigureSurface(extent common.Extent) error

	// SurfaceFormat returns the format chosen by the last ConfigureSurface.
	SurfaceFormat() wgpu.TextureFormat

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// CreateTarget allocates a texture usable both as a render attachment and a sampled binding.
	//
	// Parameters:
	//   - label: debug label for the texture
	//   - format: the texture format
	//   - extent: the texture size
	//
	// Returns:
	//   - *Target: the new target
	//   - error: an error if the texture or its view could not be created
	CreateTarget(label string, format wgpu.TextureFormat, extent common.Extent) (*Target, error)

	// ReleaseTarget destroys a target created by CreateTarget. Nil is ignored.
	ReleaseTarget(t *Target)

	// InitSampler creates a GPU sampler and stores it on the provider at the given binding.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the sampler on
	//   - bindingKey: the binding index of the sampler
	//   - samplerStagingData: sampler configuration; zero fields take backend defaults
	//
	// Returns:
	//   - error: an error if the sampler could not be created
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// InitBindGroup creates the provider's layout (once), any missing buffers, and a new bind group
	// referencing the provider's current buffers, texture views and samplers.
	//
	// Parameters:
	//   - provider: the BindGroupProvider describing and storing the resources
	//   - descriptor: the layout of the bind group
	//   - bufferSizeOverrides: buffer sizes by binding, for bindings whose reflected size is zero
	//
	// Returns:
	//   - error: an error if a resource is missing or the bind group could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// InitMeshBuffers creates write-once vertex and index buffers and stores them on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the buffers on
	//   - vertexData: the raw vertex bytes
	//   - indexData: the raw uint32 index bytes
	//   - indexCount: the number of indices in indexData
	//
	// Returns:
	//   - error: an error if the buffers could not be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// WriteBuffers writes staged data to provider buffers through the queue.
	//
	// Parameters:
	//   - writes: the writes to perform
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// RegisterRenderPipeline creates the GPU render pipeline described by p and stores it on p.
	//
	// Parameters:
	//   - p: the pipeline configuration
	//
	// Returns:
	//   - error: an error if a shader module, layout or the pipeline could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// BeginFrame acquires the next surface frame and creates the frame's command encoder.
	//
	// Returns:
	//   - error: the raw acquisition error
	BeginFrame() error

	// BeginPass starts a render pass in the current frame.
	//
	// Parameters:
	//   - attachments: the pass outputs
	//
	// Returns:
	//   - error: an error if no frame is open or a pass is already open
	BeginPass(attachments PassAttachments) error

	// DrawIndexed draws the whole mesh held by meshProvider in the open pass.
	//
	// Parameters:
	//   - p: the registered pipeline to draw with
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - bindGroups: providers whose bind groups are set at groups 0..n-1
	DrawIndexed(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// DrawFullscreen draws one screen-covering triangle generated from the vertex index.
	//
	// Parameters:
	//   - p: the registered pipeline to draw with
	//   - bindGroups: providers whose bind groups are set at groups 0..n-1
	DrawFullscreen(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider)

	// EndPass ends the open pass.
	EndPass()

	// EndFrame finishes the frame's encoder and submits it to the queue.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// DiscardFrame drops any open pass, encoder and surface frame without submitting.
	DiscardFrame()

	// Present shows the submitted surface frame.
	Present()

	// Release destroys the device, surface and instance.
	Release()
}
