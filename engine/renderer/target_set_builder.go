package renderer

import "github.com/cogentcore/webgpu/wgpu"

// TargetSetBuilderOption is a functional option for configuring a TargetSet via NewTargetSet.
type TargetSetBuilderOption func(*targetSet)

// WithDepthFormat sets the depth target format.
func WithDepthFormat(format wgpu.TextureFormat) TargetSetBuilderOption {
	return func(t *targetSet) {
		t.depthFormat = format
	}
}

// WithNormalFormat sets the normal target format.
func WithNormalFormat(format wgpu.TextureFormat) TargetSetBuilderOption {
	return func(t *targetSet) {
		t.normalFormat = format
	}
}

// WithColorFormat sets the color target format.
func WithColorFormat(format wgpu.TextureFormat) TargetSetBuilderOption {
	return func(t *targetSet) {
		t.colorFormat = format
	}
}
