package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGeometry(t *testing.T) {
	vs, fs, err := Load(KeyGeometry)
	require.NoError(t, err)

	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Equal(t, "fs_main", fs.EntryPoint())
	assert.Equal(t, ShaderTypeVertex, vs.ShaderType())
	assert.Equal(t, ShaderTypeFragment, fs.ShaderType())

	desc := vs.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[0].Buffer.Type)
	assert.Equal(t, wgpu.ShaderStageVertex, desc.Entries[0].Visibility)
	assert.Equal(t, "camera", vs.BindGroupVarName(0, 0))
	assert.Equal(t, vs.Source(), vs.Module().WGSLDescriptor.Code)
}

func TestLoadLightingFullscreen(t *testing.T) {
	_, fs, err := Load(KeyLightingFullscreen)
	require.NoError(t, err)

	desc := fs.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 5)
	for i, e := range desc.Entries {
		assert.Equal(t, uint32(i), e.Binding)
	}
	assert.Equal(t, wgpu.SamplerBindingTypeNonFiltering, desc.Entries[0].Sampler.Type)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, desc.Entries[1].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, desc.Entries[1].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeNonFiltering, desc.Entries[2].Sampler.Type)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, desc.Entries[4].Texture.SampleType)

	binding, ok := fs.BindGroupFromVarName(0, "depth_texture")
	assert.True(t, ok)
	assert.Equal(t, 4, binding)

	_, ok = fs.BindGroupFromVarName(0, "missing")
	assert.False(t, ok)
}

func TestLoadLightingMeshGroups(t *testing.T) {
	vs, _, err := Load(KeyLightingMesh)
	require.NoError(t, err)

	descs := vs.BindGroupLayoutDescriptors()
	require.Len(t, descs, 2)
	assert.Len(t, descs[0].Entries, 1)
	assert.Len(t, descs[1].Entries, 4)
	assert.Equal(t, "color_texture", vs.BindGroupVarName(1, 3))
}

func TestLoadUnknownKey(t *testing.T) {
	_, _, err := Load("nope")
	assert.Error(t, err)
}

func TestNewShaderWithoutEntryPoint(t *testing.T) {
	_, err := NewShader("compute_only", ShaderTypeVertex, "@compute @workgroup_size(1) fn main() {}")
	assert.ErrorIs(t, err, ErrNoEntryPoint)
}

func TestCommentedDeclarationsAreIgnored(t *testing.T) {
	src := `
// @group(0) @binding(0) var<uniform> hidden: Camera;
/* @group(0) @binding(1) var also_hidden: sampler; */
@group(0) @binding(2) var visible: sampler;
@vertex fn vs() -> @builtin(position) vec4<f32> { return vec4<f32>(); }
`
	s, err := NewShader("comments", ShaderTypeVertex, src)
	require.NoError(t, err)

	desc := s.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, uint32(2), desc.Entries[0].Binding)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, desc.Entries[0].Sampler.Type)
}

func TestSplitTypeParams(t *testing.T) {
	base, param := splitTypeParams("texture_2d<f32>")
	assert.Equal(t, "texture_2d", base)
	assert.Equal(t, "f32", param)

	base, param = splitTypeParams("sampler")
	assert.Equal(t, "sampler", base)
	assert.Empty(t, param)
}

// TestProgramsCompile compiles every embedded program to SPIR-V with naga.
func TestProgramsCompile(t *testing.T) {
	for _, key := range []string{KeyGeometry, KeyLightingFullscreen, KeyLightingMesh} {
		t.Run(key, func(t *testing.T) {
			src, ok := Source(key)
			require.True(t, ok)

			spirv, err := Compile(src)
			if err != nil {
				msg := err.Error()
				if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") || strings.Contains(msg, "unsupported") {
					t.Skipf("naga limitation: %v", err)
				}
				t.Fatalf("failed to compile %s: %v", key, err)
			}

			require.GreaterOrEqual(t, len(spirv), 4)
			magic := uint32(spirv[0]) | uint32(spirv[1])<<8 | uint32(spirv[2])<<16 | uint32(spirv[3])<<24
			assert.Equal(t, uint32(0x07230203), magic)
		})
	}
}
