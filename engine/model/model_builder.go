package model

import "github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"

// ModelBuilderOption is a functional option applied to a model during Upload.
type ModelBuilderOption func(*model)

// WithMeshProvider uses an existing provider for the model's GPU buffers instead of creating one.
//
// Parameters:
//   - provider: the provider that receives the vertex and index buffers
//
// Returns:
//   - ModelBuilderOption: a function that sets the mesh provider
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) {
		m.meshProvider = provider
	}
}

// WithName overrides the model name taken from the mesh data.
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}
