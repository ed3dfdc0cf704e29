package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/g3n/engine/loader/obj"
)

// objLoaderBackend decodes Wavefront OBJ text. Faces are fan-triangulated and one vertex is emitted
// per unique (position, normal) index pair. Materials are ignored.
type objLoaderBackend struct{}

var _ loaderBackend = &objLoaderBackend{}

func newOBJLoaderBackend() *objLoaderBackend {
	return &objLoaderBackend{}
}

// vertexKey identifies a unique face corner.
type vertexKey struct {
	position int
	normal   int
}

func (b *objLoaderBackend) Decode(name string, r io.Reader) (model.MeshData, error) {
	decoder, err := obj.DecodeReader(r, strings.NewReader(""))
	if err != nil {
		return model.MeshData{}, fmt.Errorf("%w: decode %q: %v", ErrLoad, name, err)
	}
	if len(decoder.Objects) == 0 {
		return model.MeshData{}, fmt.Errorf("%w: %q contains no objects", ErrLoad, name)
	}
	if len(decoder.Objects) > 1 {
		common.Logger().Warn("mesh has multiple objects, using the first",
			"name", name, "objects", len(decoder.Objects), "used", decoder.Objects[0].Name)
	}
	for _, w := range decoder.Warnings {
		common.Logger().Debug("obj decoder warning", "name", name, "warning", w)
	}

	positions := []float32(decoder.Vertices)
	normals := []float32(decoder.Normals)

	data := model.MeshData{Name: name}
	unique := make(map[vertexKey]uint32)

	addCorner := func(face obj.Face, corner int) error {
		vIdx := face.Vertices[corner]
		if vIdx < 0 || vIdx*3+2 >= len(positions) {
			return fmt.Errorf("%w: %q references missing position %d", ErrLoad, name, vIdx)
		}
		nIdx := -1
		if corner < len(face.Normals) {
			if n := face.Normals[corner]; n >= 0 && n*3+2 < len(normals) {
				nIdx = n
			}
		}

		key := vertexKey{position: vIdx, normal: nIdx}
		index, ok := unique[key]
		if !ok {
			index = uint32(len(data.Positions))
			data.Positions = append(data.Positions, [3]float32{
				positions[vIdx*3], positions[vIdx*3+1], positions[vIdx*3+2],
			})
			var normal [3]float32
			if nIdx >= 0 {
				normal = [3]float32{normals[nIdx*3], normals[nIdx*3+1], normals[nIdx*3+2]}
			}
			data.Normals = append(data.Normals, normal)
			unique[key] = index
		}
		data.Indices = append(data.Indices, index)
		return nil
	}

	for _, face := range decoder.Objects[0].Faces {
		for i := 2; i < len(face.Vertices); i++ {
			for _, corner := range [3]int{0, i - 1, i} {
				if err := addCorner(face, corner); err != nil {
					return model.MeshData{}, err
				}
			}
		}
	}

	if len(data.Indices) == 0 {
		return model.MeshData{}, fmt.Errorf("%w: %q has no faces", ErrLoad, name)
	}
	return data, nil
}
