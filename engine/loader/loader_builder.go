package loader

import "github.com/Carmen-Shannon/oxy-viewer/engine/model"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithResourceDir sets the directory mesh names are resolved against.
//
// Parameters:
//   - dir: the resource directory
//
// Returns:
//   - LoaderBuilderOption: a function that applies the directory option to a loader
func WithResourceDir(dir string) LoaderBuilderOption {
	return func(l *loader) {
		if dir != "" {
			l.resourceDir = dir
		}
	}
}

// WithWorkers sets the size of the pool used by LoadAsync. Values below one are ignored.
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithMesh pre-populates the mesh cache.
//
// Parameters:
//   - name: the cache key for the mesh
//   - data: the mesh to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the mesh option to a loader
func WithMesh(name string, data model.MeshData) LoaderBuilderOption {
	return func(l *loader) {
		l.meshCache[name] = data
	}
}
