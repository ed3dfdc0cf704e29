package shader

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Keys of the built-in WGSL programs.
const (
	KeyGeometry           = "geometry"
	KeyLightingFullscreen = "lighting_fullscreen"
	KeyLightingMesh       = "lighting_mesh"
)

//go:embed assets/geometry.wgsl
var geometrySource string

//go:embed assets/lighting_fullscreen.wgsl
var lightingFullscreenSource string

//go:embed assets/lighting_mesh.wgsl
var lightingMeshSource string

var sources = map[string]string{
	KeyGeometry:           geometrySource,
	KeyLightingFullscreen: lightingFullscreenSource,
	KeyLightingMesh:       lightingMeshSource,
}

// Source returns the embedded WGSL program for a key.
func Source(key string) (string, bool) {
	src, ok := sources[key]
	return src, ok
}

// Load reflects both stages of an embedded program.
// Lighting programs reflect their samplers as non-filtering, since the g-buffer holds
// per-pixel attributes that must not be interpolated across texels.
//
// Parameters:
//   - key: one of KeyGeometry, KeyLightingFullscreen, KeyLightingMesh
//
// Returns:
//   - vertex: the vertex stage
//   - fragment: the fragment stage
//   - err: an error if the key is unknown or reflection fails
func Load(key string) (vertex, fragment Shader, err error) {
	src, ok := Source(key)
	if !ok {
		return nil, nil, fmt.Errorf("shader: unknown program %q", key)
	}

	var options []ShaderBuilderOption
	if key != KeyGeometry {
		options = append(options, WithSamplerBindingType(wgpu.SamplerBindingTypeNonFiltering))
	}

	vertex, err = NewShader(key+"_vs", ShaderTypeVertex, src, options...)
	if err != nil {
		return nil, nil, err
	}
	fragment, err = NewShader(key+"_fs", ShaderTypeFragment, src, options...)
	if err != nil {
		return nil, nil, err
	}
	return vertex, fragment, nil
}
