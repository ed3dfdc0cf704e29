package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("lighting")

	assert.Equal(t, "lighting", p.PipelineKey())
	assert.Equal(t, []wgpu.TextureFormat{wgpu.TextureFormatUndefined}, p.ColorTargets())
	assert.Equal(t, wgpu.TextureFormatUndefined, p.DepthFormat())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Nil(t, p.RenderPipeline())
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))
}

func TestPipelineOptions(t *testing.T) {
	layout := wgpu.VertexBufferLayout{ArrayStride: 36}
	p := NewPipeline("geometry",
		WithColorTargets(wgpu.TextureFormatRGBA16Float, wgpu.TextureFormatRGBA8Unorm),
		WithVertexLayouts(layout),
		WithDepth(wgpu.TextureFormatDepth32Float, wgpu.CompareFunctionLess, true),
		WithCullMode(wgpu.CullModeNone),
	)

	assert.Len(t, p.ColorTargets(), 2)
	require.Len(t, p.VertexLayouts(), 1)
	assert.Equal(t, uint64(36), p.VertexLayouts()[0].ArrayStride)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, p.DepthFormat())
	assert.Equal(t, wgpu.CompareFunctionLess, p.DepthCompare())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
}

func TestBindGroupLayoutDescriptorsMergeStages(t *testing.T) {
	vs, fs, err := shader.Load(shader.KeyLightingMesh)
	require.NoError(t, err)

	p := NewPipeline("lighting_mesh", WithVertexShader(vs), WithFragmentShader(fs))
	merged := p.BindGroupLayoutDescriptors()

	require.Len(t, merged, 2)
	require.Len(t, merged[0].Entries, 1)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, merged[0].Entries[0].Visibility)
	assert.Len(t, merged[1].Entries, 4)
}

func TestMergeBindGroupLayoutsDisjoint(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageVertex}}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 1, Visibility: wgpu.ShaderStageFragment}}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	require.Len(t, merged, 2)
	require.Len(t, merged[0].Entries, 2)
	assert.Equal(t, uint32(0), merged[0].Entries[0].Binding)
	assert.Equal(t, uint32(1), merged[0].Entries[1].Binding)
	assert.Len(t, merged[1].Entries, 1)
}
