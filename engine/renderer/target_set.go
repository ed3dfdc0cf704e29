package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrZeroExtent is returned when a surface or target would have no area.
var ErrZeroExtent = errors.New("renderer: zero extent")

// Variable names the lighting programs use for the g-buffer inputs.
const (
	varNormalSampler = "normal_sampler"
	varNormalTexture = "normal_texture"
	varColorSampler  = "color_sampler"
	varColorTexture  = "color_texture"
	varDepthTexture  = "depth_texture"
)

// Default g-buffer formats.
const (
	DefaultDepthFormat  = wgpu.TextureFormatDepth32Float
	DefaultNormalFormat = wgpu.TextureFormatRGBA16Float
	DefaultColorFormat  = wgpu.TextureFormatRGBA8Unorm
)

type targetSet struct {
	backend Backend

	depthFormat  wgpu.TextureFormat
	normalFormat wgpu.TextureFormat
	colorFormat  wgpu.TextureFormat

	descriptor wgpu.BindGroupLayoutDescriptor
	bindings   map[string]int
	inputs     bind_group_provider.BindGroupProvider

	samplersReady bool

	extent     common.Extent
	depth      *Target
	normal     *Target
	color      *Target
	generation uint64
}

// TargetSet is the group of offscreen textures (depth, normal, color) written by the geometry pass
// and read by the lighting pass. All three always share one extent.
type TargetSet interface {
	// Recreate replaces all three targets with new ones of the given extent and rebuilds the
	// lighting input bind group. A zero extent is ignored and the current targets are kept.
	// On failure the previous targets stay in place.
	//
	// Parameters:
	//   - extent: the new viewport size
	//
	// Returns:
	//   - bool: true if the targets were replaced
	//   - error: an error if a texture or the bind group could not be created
	Recreate(extent common.Extent) (bool, error)

	// Extent returns the size shared by all three targets. Zero before the first Recreate.
	Extent() common.Extent

	// Depth returns the depth target.
	Depth() *Target

	// Normal returns the normal target.
	Normal() *Target

	// Color returns the color target.
	Color() *Target

	// Inputs returns the provider holding the lighting pass bind group.
	Inputs() bind_group_provider.BindGroupProvider

	// Generation counts successful recreations.
	Generation() uint64

	// Release destroys the targets, samplers and bind group.
	Release()
}

var _ TargetSet = &targetSet{}

// NewTargetSet creates an empty TargetSet whose input bind group uses the lighting pipeline's layout
// at group, so the bind group stays compatible with the pipeline layout it is drawn with.
// Targets are allocated by the first Recreate.
//
// Parameters:
//   - backend: the backend that allocates textures and bind groups
//   - lighting: the lighting pipeline reading the targets
//   - group: the bind group index of the g-buffer inputs in that pipeline
//   - options: functional options to configure the target set
//
// Returns:
//   - TargetSet: the new target set
func NewTargetSet(backend Backend, lighting pipeline.Pipeline, group int, options ...TargetSetBuilderOption) TargetSet {
	fragment := lighting.Shader(shader.ShaderTypeFragment)
	t := &targetSet{
		backend:      backend,
		depthFormat:  DefaultDepthFormat,
		normalFormat: DefaultNormalFormat,
		colorFormat:  DefaultColorFormat,
		descriptor:   lighting.BindGroupLayoutDescriptors()[group],
		bindings:     make(map[string]int),
		inputs:       bind_group_provider.NewBindGroupProvider("gbuffer_inputs"),
	}
	for _, name := range []string{varNormalSampler, varNormalTexture, varColorSampler, varColorTexture, varDepthTexture} {
		if binding, ok := fragment.BindGroupFromVarName(group, name); ok {
			t.bindings[name] = binding
		}
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *targetSet) Recreate(extent common.Extent) (bool, error) {
	if extent.IsZero() {
		return false, nil
	}
	if err := t.initSamplers(); err != nil {
		return false, err
	}

	var created []*Target
	releaseCreated := func() {
		for _, target := range created {
			t.backend.ReleaseTarget(target)
		}
	}
	create := func(label string, format wgpu.TextureFormat) (*Target, error) {
		target, err := t.backend.CreateTarget(label, format, extent)
		if err != nil {
			releaseCreated()
			return nil, err
		}
		created = append(created, target)
		return target, nil
	}

	depth, err := create("gbuffer_depth", t.depthFormat)
	if err != nil {
		return false, err
	}
	normal, err := create("gbuffer_normal", t.normalFormat)
	if err != nil {
		return false, err
	}
	color, err := create("gbuffer_color", t.colorFormat)
	if err != nil {
		return false, err
	}

	t.bindViews(depth, normal, color)
	if err := t.backend.InitBindGroup(t.inputs, t.descriptor, nil); err != nil {
		t.bindViews(t.depth, t.normal, t.color)
		releaseCreated()
		return false, fmt.Errorf("gbuffer input bind group: %w", err)
	}

	t.backend.ReleaseTarget(t.depth)
	t.backend.ReleaseTarget(t.normal)
	t.backend.ReleaseTarget(t.color)
	t.depth, t.normal, t.color = depth, normal, color
	t.extent = extent
	t.generation++

	common.Logger().Debug("gbuffer recreated", "width", extent.Width, "height", extent.Height,
		"generation", t.generation)
	return true, nil
}

// initSamplers creates the non-filtering samplers once. They do not depend on the extent.
func (t *targetSet) initSamplers() error {
	if t.samplersReady {
		return nil
	}
	nearest := common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeNearest,
		MinFilter:    wgpu.FilterModeNearest,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	}
	for _, name := range []string{varNormalSampler, varColorSampler} {
		binding, ok := t.bindings[name]
		if !ok {
			continue
		}
		if err := t.backend.InitSampler(t.inputs, binding, nearest); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	t.samplersReady = true
	return nil
}

// bindViews points the input provider at the given targets' views. Nil targets clear the binding.
func (t *targetSet) bindViews(depth, normal, color *Target) {
	set := func(name string, target *Target) {
		binding, ok := t.bindings[name]
		if !ok {
			return
		}
		var view *wgpu.TextureView
		if target != nil {
			view = target.View
		}
		t.inputs.SetTextureView(binding, view)
	}
	set(varDepthTexture, depth)
	set(varNormalTexture, normal)
	set(varColorTexture, color)
}

func (t *targetSet) Extent() common.Extent {
	return t.extent
}

func (t *targetSet) Depth() *Target {
	return t.depth
}

func (t *targetSet) Normal() *Target {
	return t.normal
}

func (t *targetSet) Color() *Target {
	return t.color
}

func (t *targetSet) Inputs() bind_group_provider.BindGroupProvider {
	return t.inputs
}

func (t *targetSet) Generation() uint64 {
	return t.generation
}

func (t *targetSet) Release() {
	t.inputs.Release()
	t.backend.ReleaseTarget(t.depth)
	t.backend.ReleaseTarget(t.normal)
	t.backend.ReleaseTarget(t.color)
	t.depth, t.normal, t.color = nil, nil, nil
	t.extent = common.Extent{}
	t.samplersReady = false
}
