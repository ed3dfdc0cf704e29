package model

import (
	"errors"
	"fmt"
)

// ErrInvalidMesh is returned when mesh data cannot be turned into GPU buffers.
var ErrInvalidMesh = errors.New("model: invalid mesh")

// MeshData is the raw output of the mesh-loading collaborator: one entry in Positions and Normals
// per vertex, and triangle-list indices into them.
type MeshData struct {
	// Name identifies the mesh, usually its resource file name.
	Name string

	// Positions holds model-space vertex positions.
	Positions [][3]float32

	// Normals holds per-vertex normals. It may be shorter than Positions or empty;
	// vertices without a normal get a zero vector.
	Normals [][3]float32

	// Indices holds triangle-list indices into Positions.
	Indices []uint32
}

// BuildVertices interleaves MeshData into ModelVertex records.
// Missing normals become zero vectors and the color channel is left zero.
//
// Parameters:
//   - data: the mesh data to interleave
//
// Returns:
//   - []ModelVertex: one record per position
//   - error: ErrInvalidMesh when the mesh has no geometry, a partial triangle or an out-of-range index
func BuildVertices(data MeshData) ([]ModelVertex, error) {
	if len(data.Positions) == 0 || len(data.Indices) == 0 {
		return nil, fmt.Errorf("%w: %q has no geometry", ErrInvalidMesh, data.Name)
	}
	if len(data.Indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %q has %d indices, not a multiple of 3", ErrInvalidMesh, data.Name, len(data.Indices))
	}
	for i, idx := range data.Indices {
		if int(idx) >= len(data.Positions) {
			return nil, fmt.Errorf("%w: %q index %d at %d out of range (%d vertices)", ErrInvalidMesh, data.Name, idx, i, len(data.Positions))
		}
	}

	vertices := make([]ModelVertex, len(data.Positions))
	for i, p := range data.Positions {
		vertices[i].Position = p
		if i < len(data.Normals) {
			vertices[i].Normal = data.Normals[i]
		}
	}
	return vertices, nil
}
