package model

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// VertexDescriber is implemented by vertex record types that describe their own GPU buffer layout.
type VertexDescriber interface {
	// VertexLayout returns the layout of one vertex buffer holding records of this type.
	//
	// Returns:
	//   - wgpu.VertexBufferLayout: stride, step mode and attributes
	VertexLayout() wgpu.VertexBufferLayout
}

// ModelVertex is the GPU-aligned vertex record of a loaded mesh.
// Size: 36 bytes, three tightly packed vec3<f32> at shader locations 0, 1 and 2.
type ModelVertex struct {
	Position [3]float32 // offset  0: model-space position
	Color    [3]float32 // offset 12: reserved, uploaded as zero
	Normal   [3]float32 // offset 24: model-space normal, zero when the source has none
}

var _ VertexDescriber = ModelVertex{}

// modelVertexLayout is shared by every ModelVertex buffer.
var modelVertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: uint64(unsafe.Sizeof(ModelVertex{})),
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{
			Format:         wgpu.VertexFormatFloat32x3,
			Offset:         0,
			ShaderLocation: 0,
		},
		{
			Format:         wgpu.VertexFormatFloat32x3,
			Offset:         uint64(unsafe.Offsetof(ModelVertex{}.Color)),
			ShaderLocation: 1,
		},
		{
			Format:         wgpu.VertexFormatFloat32x3,
			Offset:         uint64(unsafe.Offsetof(ModelVertex{}.Normal)),
			ShaderLocation: 2,
		},
	},
}

// VertexLayout returns the vertex buffer layout for ModelVertex records.
func (ModelVertex) VertexLayout() wgpu.VertexBufferLayout {
	return modelVertexLayout
}

// Size returns the size of the ModelVertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (36)
func (v *ModelVertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// Marshal serializes the vertex into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 36-byte buffer
func (v *ModelVertex) Marshal() []byte {
	buf := make([]byte, v.Size())
	fields := [3][3]float32{v.Position, v.Color, v.Normal}
	for f, field := range fields {
		for i, c := range field {
			binary.LittleEndian.PutUint32(buf[f*12+i*4:], math.Float32bits(c))
		}
	}
	return buf
}
