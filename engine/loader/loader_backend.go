package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// loaderBackend decodes one mesh file format into raw mesh data.
// Concrete implementations (e.g., objLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Decode reads a complete mesh from r.
	//
	// Parameters:
	//   - name: the mesh name stored in the result and used in log lines
	//   - r: the reader providing the encoded mesh
	//
	// Returns:
	//   - model.MeshData: positions, normals and triangle-list indices
	//   - error: error if the stream cannot be parsed
	Decode(name string, r io.Reader) (model.MeshData, error)
}
