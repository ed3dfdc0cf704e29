// Package renderertest provides a recording renderer.Backend that needs no GPU.
package renderertest

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Draw records one draw call.
type Draw struct {
	Pipeline   string
	Mesh       string
	Fullscreen bool
	BindGroups []string
}

// BindGroupInit records one InitBindGroup call and the texture views bound at that moment.
type BindGroupInit struct {
	Label        string
	Descriptor   wgpu.BindGroupLayoutDescriptor
	TextureViews map[int]*wgpu.TextureView
	BufferSizes  map[int]uint64
}

// Backend is a renderer.Backend that records every call. Texture views it hands out are distinct
// placeholders and must never be released through the real API.
type Backend struct {
	Format      wgpu.TextureFormat
	PresentMode renderer.PresentMode

	Configured     []common.Extent
	Registered     []string
	Created        []*renderer.Target
	Released       []*renderer.Target
	Samplers       []string
	BindGroupInits []BindGroupInit
	MeshUploads    []string
	Writes         []bind_group_provider.BufferWrite
	Passes         []renderer.PassAttachments
	Draws          []Draw

	// LayoutMismatches lists every draw whose bind group was created with a layout other than the
	// pipeline's layout for that group. A real device rejects such draws.
	LayoutMismatches []string

	Frames    int
	Submitted int
	Presented int
	Discarded int

	// FrameErrors are returned by successive BeginFrame calls; nil entries succeed.
	FrameErrors []error

	// FailCreateAfter makes CreateTarget fail once this many more targets have been created. Negative disables.
	FailCreateAfter int

	// BindGroupErr is returned by every InitBindGroup call while set.
	BindGroupErr error

	// PassErr is returned by every BeginPass call while set.
	PassErr error

	inFrame bool
	inPass  bool

	layouts map[string]wgpu.BindGroupLayoutDescriptor
}

var _ renderer.Backend = &Backend{}

// NewBackend returns a recording backend reporting an sRGB surface format.
func NewBackend() *Backend {
	return &Backend{
		Format:          wgpu.TextureFormatBGRA8UnormSrgb,
		FailCreateAfter: -1,
	}
}

func (b *Backend) ConfigureSurface(extent common.Extent) error {
	if extent.IsZero() {
		return renderer.ErrZeroExtent
	}
	b.Configured = append(b.Configured, extent)
	return nil
}

func (b *Backend) SurfaceFormat() wgpu.TextureFormat {
	return b.Format
}

func (b *Backend) SetPresentMode(mode renderer.PresentMode) {
	b.PresentMode = mode
}

func (b *Backend) CreateTarget(label string, format wgpu.TextureFormat, extent common.Extent) (*renderer.Target, error) {
	if b.FailCreateAfter == 0 {
		b.FailCreateAfter = -1
		return nil, errors.New("renderertest: create target failed")
	}
	if b.FailCreateAfter > 0 {
		b.FailCreateAfter--
	}
	t := &renderer.Target{
		Label:  label,
		Format: format,
		Extent: extent,
		View:   &wgpu.TextureView{},
	}
	b.Created = append(b.Created, t)
	return t, nil
}

func (b *Backend) ReleaseTarget(t *renderer.Target) {
	if t == nil {
		return
	}
	b.Released = append(b.Released, t)
}

func (b *Backend) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, _ common.SamplerStagingData) error {
	b.Samplers = append(b.Samplers, provider.Label())
	return nil
}

func (b *Backend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	if b.BindGroupErr != nil {
		return b.BindGroupErr
	}
	views := make(map[int]*wgpu.TextureView)
	for _, entry := range descriptor.Entries {
		if entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined {
			views[int(entry.Binding)] = provider.TextureView(int(entry.Binding))
		}
	}
	if b.layouts == nil {
		b.layouts = make(map[string]wgpu.BindGroupLayoutDescriptor)
	}
	b.layouts[provider.Label()] = descriptor
	b.BindGroupInits = append(b.BindGroupInits, BindGroupInit{
		Label:        provider.Label(),
		Descriptor:   descriptor,
		TextureViews: views,
		BufferSizes:  bufferSizeOverrides,
	})
	return nil
}

func (b *Backend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.MeshUploads = append(b.MeshUploads, provider.Label())
	provider.SetMeshBuffers(nil, nil, indexCount)
	return nil
}

func (b *Backend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.Writes = append(b.Writes, writes...)
}

func (b *Backend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.Registered = append(b.Registered, p.PipelineKey())
	return nil
}

func (b *Backend) BeginFrame() error {
	if len(b.FrameErrors) > 0 {
		err := b.FrameErrors[0]
		b.FrameErrors = b.FrameErrors[1:]
		if err != nil {
			return err
		}
	}
	if b.inFrame {
		return errors.New("renderertest: previous frame not presented")
	}
	b.inFrame = true
	b.Frames++
	return nil
}

func (b *Backend) BeginPass(attachments renderer.PassAttachments) error {
	if b.PassErr != nil {
		return b.PassErr
	}
	if !b.inFrame || b.inPass {
		return errors.New("renderertest: pass out of order")
	}
	b.inPass = true
	b.Passes = append(b.Passes, attachments)
	return nil
}

func (b *Backend) DrawIndexed(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) {
	b.checkLayouts(p, bindGroups)
	b.Draws = append(b.Draws, Draw{
		Pipeline:   p.PipelineKey(),
		Mesh:       meshProvider.Label(),
		BindGroups: labels(bindGroups),
	})
}

func (b *Backend) DrawFullscreen(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) {
	b.checkLayouts(p, bindGroups)
	b.Draws = append(b.Draws, Draw{
		Pipeline:   p.PipelineKey(),
		Fullscreen: true,
		BindGroups: labels(bindGroups),
	})
}

// checkLayouts compares the layout each bind group was created with against the pipeline layout at its index.
func (b *Backend) checkLayouts(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) {
	want := p.BindGroupLayoutDescriptors()
	for i, bg := range bindGroups {
		got, ok := b.layouts[bg.Label()]
		if !ok || i >= len(want) || !reflect.DeepEqual(got, want[i]) {
			b.LayoutMismatches = append(b.LayoutMismatches, fmt.Sprintf("%s group %d (%s)", p.PipelineKey(), i, bg.Label()))
		}
	}
}

func (b *Backend) EndPass() {
	b.inPass = false
}

func (b *Backend) EndFrame() error {
	if !b.inFrame {
		return errors.New("renderertest: no frame in progress")
	}
	b.inPass = false
	b.Submitted++
	return nil
}

func (b *Backend) DiscardFrame() {
	b.inFrame = false
	b.inPass = false
	b.Discarded++
}

func (b *Backend) Present() {
	if !b.inFrame {
		return
	}
	b.inFrame = false
	b.Presented++
}

func (b *Backend) Release() {}

func labels(providers []bind_group_provider.BindGroupProvider) []string {
	out := make([]string, len(providers))
	for i, p := range providers {
		out[i] = p.Label()
	}
	return out
}
