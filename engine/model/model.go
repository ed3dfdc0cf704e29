package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
)

// MeshUploader creates the GPU vertex and index buffers of a mesh.
// The renderer implements it.
type MeshUploader interface {
	// InitMeshBuffers creates write-once vertex and index buffers and stores them on the provider.
	//
	// Parameters:
	//   - provider: the provider receiving the buffers
	//   - vertexData: packed vertex records
	//   - indexData: packed uint32 indices
	//   - indexCount: number of indices in indexData
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
}

// model is the implementation of the Model interface.
type model struct {
	name         string
	meshProvider bind_group_provider.BindGroupProvider
	vertexCount  int
	indexCount   int
}

// Model is the Mesh Store: one loaded mesh resident in GPU memory.
// Its buffers are written once by Upload and never mutated afterwards.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// MeshProvider retrieves the BindGroupProvider holding the vertex and index buffers.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider

	// IndexCount returns the number of indices in the index buffer.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// VertexCount returns the number of vertex records in the vertex buffer.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// Release frees the GPU buffers.
	Release()
}

var _ Model = &model{}

// Upload interleaves mesh data into ModelVertex records and creates its GPU buffers.
//
// Parameters:
//   - uploader: the GPU buffer creator, usually the renderer
//   - data: the mesh to upload
//   - options: functional options to configure the model
//
// Returns:
//   - Model: the GPU-resident model
//   - error: ErrInvalidMesh for malformed data, or the wrapped upload error
func Upload(uploader MeshUploader, data MeshData, options ...ModelBuilderOption) (Model, error) {
	vertices, err := BuildVertices(data)
	if err != nil {
		return nil, err
	}

	m := &model{
		name:        data.Name,
		vertexCount: len(vertices),
		indexCount:  len(data.Indices),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.meshProvider == nil {
		m.meshProvider = bind_group_provider.NewBindGroupProvider("mesh_" + data.Name)
	}

	err = uploader.InitMeshBuffers(m.meshProvider, common.SliceToBytes(vertices), common.SliceToBytes(data.Indices), m.indexCount)
	if err != nil {
		m.meshProvider.Release()
		return nil, fmt.Errorf("upload mesh %q: %w", data.Name, err)
	}

	common.Logger().Debug("mesh uploaded", "name", m.name, "vertices", m.vertexCount, "indices", m.indexCount)
	return m, nil
}

func (m *model) Name() string {
	return m.name
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *model) IndexCount() int {
	return m.indexCount
}

func (m *model) VertexCount() int {
	return m.vertexCount
}

func (m *model) Release() {
	if m.meshProvider != nil {
		m.meshProvider.Release()
	}
}
