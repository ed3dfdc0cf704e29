package shader

import "github.com/cogentcore/webgpu/wgpu"

// ShaderBuilderOption is a functional option applied to a shader during NewShader.
type ShaderBuilderOption func(*shader)

// WithSamplerBindingType sets the binding type reflected for plain `sampler` declarations.
// Defaults to wgpu.SamplerBindingTypeFiltering.
//
// Parameters:
//   - t: the sampler binding type
//
// Returns:
//   - ShaderBuilderOption: a function that sets the sampler binding type
func WithSamplerBindingType(t wgpu.SamplerBindingType) ShaderBuilderOption {
	return func(s *shader) {
		s.samplerType = t
	}
}
