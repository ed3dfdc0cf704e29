package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProviderLabel(t *testing.T) {
	p := NewBindGroupProvider("camera_0")
	assert.Equal(t, "camera_0", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.TextureView(1))
	assert.Empty(t, p.Samplers())
}

func TestSetMeshBuffersAndRelease(t *testing.T) {
	p := NewBindGroupProvider("mesh")
	p.SetMeshBuffers(nil, nil, 36)
	assert.Equal(t, 36, p.IndexCount())

	p.SetTextureView(1, nil)
	p.Release()
	assert.Equal(t, 0, p.IndexCount())
	assert.Nil(t, p.VertexBuffer())
	assert.Nil(t, p.IndexBuffer())
}

func TestReleaseIsIdempotent(t *testing.T) {
	p := NewBindGroupProvider("empty")
	assert.NotPanics(t, func() {
		p.Release()
		p.Release()
		p.ReleaseBindGroup()
	})
}
