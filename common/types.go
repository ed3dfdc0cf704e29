// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Extent is a pixel size of a window, surface or render target.
type Extent struct {
	Width  uint32
	Height uint32
}

// NewExtent builds an Extent from signed window dimensions, clamping negatives to zero.
//
// Parameters:
//   - width, height: dimensions in pixels
//
// Returns:
//   - Extent: the clamped extent
func NewExtent(width, height int) Extent {
	return Extent{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))}
}

// IsZero reports whether either dimension is zero. Zero-area extents are never allocated on the GPU.
func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// Aspect returns width / height, or 1 for a zero-area extent.
func (e Extent) Aspect() float32 {
	if e.IsZero() {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

// Center returns the midpoint of the extent in pixel coordinates.
func (e Extent) Center() (x, y float32) {
	return float32(e.Width) / 2, float32(e.Height) / 2
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero-valued fields fall back to the backend defaults (clamp-to-edge, nearest).
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level.
	MaxAnisotropy uint16
}
