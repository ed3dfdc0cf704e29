package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
`

const noNormalsOBJ = `o tri
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

const twoObjectsOBJ = `o first
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
o second
v 0 0 1
v 1 0 1
v 0 1 1
f 4 5 6
`

// sharedPositionOBJ uses position 1 with two different normals.
const sharedPositionOBJ = `o split
v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
vn 0 0 1
vn 0 1 0
f 1//1 2//1 3//1
f 1//2 2//2 4//2
`

func TestQuadIsFanTriangulated(t *testing.T) {
	l := NewLoader()
	data, err := l.LoadMeshReader("quad.obj", "obj", strings.NewReader(quadOBJ))
	require.NoError(t, err)

	assert.Equal(t, "quad.obj", data.Name)
	assert.Len(t, data.Positions, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, data.Indices)
	for _, n := range data.Normals {
		assert.Equal(t, [3]float32{0, 0, 1}, n)
	}
}

func TestMissingNormalsBecomeZero(t *testing.T) {
	data, err := NewLoader().LoadMeshReader("tri", ".obj", strings.NewReader(noNormalsOBJ))
	require.NoError(t, err)

	require.Len(t, data.Normals, 3)
	for _, n := range data.Normals {
		assert.Equal(t, [3]float32{}, n)
	}

	vertices, err := model.BuildVertices(data)
	require.NoError(t, err)
	assert.Len(t, vertices, 3)
}

func TestMultipleObjectsUsesFirst(t *testing.T) {
	data, err := NewLoader().LoadMeshReader("two", "obj", strings.NewReader(twoObjectsOBJ))
	require.NoError(t, err)

	assert.Len(t, data.Indices, 3)
	for _, p := range data.Positions {
		assert.Equal(t, float32(0), p[2])
	}
}

func TestVertexPerPositionNormalPair(t *testing.T) {
	data, err := NewLoader().LoadMeshReader("split", "obj", strings.NewReader(sharedPositionOBJ))
	require.NoError(t, err)

	// positions 1 and 2 appear with two normals each, position 3 and 4 once
	assert.Len(t, data.Positions, 6)
	assert.Len(t, data.Indices, 6)
	assert.NotEqual(t, data.Indices[0], data.Indices[3])
}

func TestUnsupportedFormat(t *testing.T) {
	l := NewLoader()
	_, err := l.LoadMeshReader("mesh", "fbx", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.LoadMesh("scene.gltf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMeshMissingFile(t *testing.T) {
	l := NewLoader(WithResourceDir(t.TempDir()))
	_, err := l.LoadMesh("teapot.obj")
	assert.ErrorIs(t, err, ErrLoad)
}

func TestLoadMeshWithoutFacesFails(t *testing.T) {
	_, err := NewLoader().LoadMeshReader("empty", "obj", strings.NewReader("o empty\nv 0 0 0\n"))
	assert.ErrorIs(t, err, ErrLoad)
}

func TestLoadMeshCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	l := NewLoader(WithResourceDir(dir))
	first, err := l.LoadMesh("quad.obj")
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	second, err := l.LoadMesh("quad.obj")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cached, ok := l.Get("quad.obj")
	assert.True(t, ok)
	assert.Equal(t, first, cached)
}

func TestLoadAsync(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.obj"), []byte(quadOBJ), 0o644))

	l := NewLoader(WithResourceDir(dir), WithWorkers(2))
	ok := l.LoadAsync("quad.obj")
	missing := l.LoadAsync("missing.obj")

	data, err := ok.Wait()
	require.NoError(t, err)
	assert.Len(t, data.Indices, 6)
	assert.Equal(t, "quad.obj", ok.Name())

	_, err = missing.Wait()
	assert.ErrorIs(t, err, ErrLoad)
}

func TestWithMeshPrepopulates(t *testing.T) {
	mesh := model.MeshData{Name: "pre", Positions: [][3]float32{{0, 0, 0}}, Indices: []uint32{0, 0, 0}}
	l := NewLoader(WithMesh("pre.obj", mesh))

	data, err := l.LoadMesh("pre.obj")
	require.NoError(t, err)
	assert.Equal(t, mesh, data)
}
