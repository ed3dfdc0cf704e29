package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

var (
	// ErrLoad is returned when a mesh resource is missing or cannot be parsed.
	ErrLoad = errors.New("loader: load failed")

	// ErrUnsupportedFormat is returned when no backend handles a file extension.
	ErrUnsupportedFormat = errors.New("loader: unsupported format")
)

// DefaultResourceDir is the directory mesh names are resolved against.
const DefaultResourceDir = "res"

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	resourceDir string
	workers     int
	pool        worker.DynamicWorkerPool
	poolOnce    sync.Once
	nextTaskID  int

	meshCache map[string]model.MeshData
}

// Loader resolves mesh names against a resource directory, decodes them with the backend matching
// the file extension and caches the decoded data by name.
type Loader interface {
	// LoadMesh reads and decodes the named mesh from the resource directory.
	// A cached mesh is returned without touching the filesystem.
	//
	// Parameters:
	//   - name: the mesh file name, e.g. "teapot.obj"
	//
	// Returns:
	//   - model.MeshData: the decoded mesh
	//   - error: ErrLoad or ErrUnsupportedFormat
	LoadMesh(name string) (model.MeshData, error)

	// LoadMeshReader decodes a mesh from r and caches it under name.
	//
	// Parameters:
	//   - name: the cache key for the mesh
	//   - format: the file extension selecting the backend, with or without the leading dot
	//   - r: the reader providing the encoded mesh
	//
	// Returns:
	//   - model.MeshData: the decoded mesh
	//   - error: ErrLoad or ErrUnsupportedFormat
	LoadMeshReader(name, format string, r io.Reader) (model.MeshData, error)

	// LoadAsync starts LoadMesh on the loader's worker pool and returns immediately.
	//
	// Parameters:
	//   - name: the mesh file name
	//
	// Returns:
	//   - *PendingMesh: a handle whose Wait blocks until the load finishes
	LoadAsync(name string) *PendingMesh

	// Get retrieves a cached mesh by name.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.MeshData: the cached mesh
	//   - bool: whether the mesh was cached
	Get(name string) (model.MeshData, bool)
}

var _ Loader = &loader{}

// PendingMesh is the result of an asynchronous load.
type PendingMesh struct {
	name string
	wg   sync.WaitGroup
	data model.MeshData
	err  error
}

// Name returns the mesh name the load was started for.
func (p *PendingMesh) Name() string {
	return p.name
}

// Wait blocks until the load completes.
//
// Returns:
//   - model.MeshData: the decoded mesh
//   - error: the load error, if any
func (p *PendingMesh) Wait() (model.MeshData, error) {
	p.wg.Wait()
	return p.data, p.err
}

// NewLoader creates a new Loader with the options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader instance
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:          sync.RWMutex{},
		resourceDir: DefaultResourceDir,
		workers:     1,
		meshCache:   make(map[string]model.MeshData),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) LoadMesh(name string) (model.MeshData, error) {
	if cached, ok := l.Get(name); ok {
		return cached, nil
	}

	backend, err := l.resolveBackend(name)
	if err != nil {
		return model.MeshData{}, err
	}

	path := filepath.Join(l.resourceDir, name)
	f, err := os.Open(path)
	if err != nil {
		return model.MeshData{}, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer f.Close()

	start := time.Now()
	data, err := backend.Decode(name, f)
	if err != nil {
		return model.MeshData{}, err
	}
	common.Logger().Info("mesh loaded", "path", path, "vertices", len(data.Positions),
		"indices", len(data.Indices), "elapsed", time.Since(start))

	l.store(name, data)
	return data, nil
}

func (l *loader) LoadMeshReader(name, format string, r io.Reader) (model.MeshData, error) {
	if !strings.HasPrefix(format, ".") {
		format = "." + format
	}
	backend, err := l.resolveBackend(format)
	if err != nil {
		return model.MeshData{}, err
	}

	data, err := backend.Decode(name, r)
	if err != nil {
		return model.MeshData{}, err
	}
	l.store(name, data)
	return data, nil
}

func (l *loader) LoadAsync(name string) *PendingMesh {
	p := &PendingMesh{name: name}
	p.wg.Add(1)

	l.poolOnce.Do(func() {
		l.pool = worker.NewDynamicWorkerPool(l.workers, 16, 1*time.Second)
	})

	l.mu.Lock()
	id := l.nextTaskID
	l.nextTaskID++
	l.mu.Unlock()

	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			defer p.wg.Done()
			p.data, p.err = l.LoadMesh(name)
			return nil, p.err
		},
	})
	return p
}

func (l *loader) Get(name string) (model.MeshData, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	data, ok := l.meshCache[name]
	return data, ok
}

func (l *loader) store(name string, data model.MeshData) {
	l.mu.Lock()
	l.meshCache[name] = data
	l.mu.Unlock()
}

// resolveBackend selects a loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".obj":
		return newOBJLoaderBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
