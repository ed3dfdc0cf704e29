package model

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUploader struct {
	vertexData, indexData []byte
	indexCount            int
	err                   error
}

func (u *recordingUploader) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	if u.err != nil {
		return u.err
	}
	u.vertexData = append([]byte(nil), vertexData...)
	u.indexData = append([]byte(nil), indexData...)
	u.indexCount = indexCount
	provider.SetMeshBuffers(nil, nil, indexCount)
	return nil
}

func triangle() MeshData {
	return MeshData{
		Name:      "tri",
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:   []uint32{0, 1, 2},
	}
}

func TestModelVertexLayout(t *testing.T) {
	layout := ModelVertex{}.VertexLayout()

	assert.Equal(t, uint64(36), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	require.Len(t, layout.Attributes, 3)
	for i, attr := range layout.Attributes {
		assert.Equal(t, uint32(i), attr.ShaderLocation)
		assert.Equal(t, uint64(i*12), attr.Offset)
		assert.Equal(t, wgpu.VertexFormatFloat32x3, attr.Format)
	}
}

func TestModelVertexMarshal(t *testing.T) {
	v := ModelVertex{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 1, 0}}
	buf := v.Marshal()

	require.Len(t, buf, 36)
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])))
	assert.Equal(t, float32(0), math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[28:])))
}

func TestBuildVerticesPadsMissingNormals(t *testing.T) {
	data := triangle()
	data.Normals = data.Normals[:1]

	vertices, err := BuildVertices(data)
	require.NoError(t, err)
	require.Len(t, vertices, 3)
	assert.Equal(t, [3]float32{0, 0, 1}, vertices[0].Normal)
	assert.Equal(t, [3]float32{}, vertices[1].Normal)
	assert.Equal(t, [3]float32{}, vertices[2].Normal)
	for _, v := range vertices {
		assert.Equal(t, [3]float32{}, v.Color)
	}
}

func TestBuildVerticesRejectsBadMeshes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MeshData)
	}{
		{"no positions", func(d *MeshData) { d.Positions = nil }},
		{"no indices", func(d *MeshData) { d.Indices = nil }},
		{"partial triangle", func(d *MeshData) { d.Indices = []uint32{0, 1} }},
		{"index out of range", func(d *MeshData) { d.Indices = []uint32{0, 1, 3} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := triangle()
			tt.mutate(&data)
			_, err := BuildVertices(data)
			assert.ErrorIs(t, err, ErrInvalidMesh)
		})
	}
}

func TestUpload(t *testing.T) {
	u := &recordingUploader{}
	m, err := Upload(u, triangle())
	require.NoError(t, err)

	assert.Equal(t, "tri", m.Name())
	assert.Equal(t, 3, m.IndexCount())
	assert.Equal(t, 3, m.VertexCount())
	assert.Equal(t, 3, m.MeshProvider().IndexCount())
	assert.Equal(t, "mesh_tri", m.MeshProvider().Label())
	assert.Len(t, u.vertexData, 3*36)
	assert.Len(t, u.indexData, 3*4)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(u.indexData[8:]))
}

func TestUploadOptions(t *testing.T) {
	provider := bind_group_provider.NewBindGroupProvider("custom")
	m, err := Upload(&recordingUploader{}, triangle(), WithMeshProvider(provider), WithName("teapot"))
	require.NoError(t, err)
	assert.Equal(t, "teapot", m.Name())
	assert.Same(t, provider, m.MeshProvider())
}

func TestUploadPropagatesErrors(t *testing.T) {
	boom := errors.New("out of memory")
	_, err := Upload(&recordingUploader{err: boom}, triangle())
	assert.ErrorIs(t, err, boom)

	_, err = Upload(&recordingUploader{}, MeshData{Name: "empty"})
	assert.ErrorIs(t, err, ErrInvalidMesh)
}
