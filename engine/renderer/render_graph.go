package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// LightingMode selects how the lighting pass covers the screen.
type LightingMode int

const (
	// LightingFullscreen draws one screen-covering triangle that samples the g-buffer.
	LightingFullscreen LightingMode = iota

	// LightingMesh re-draws the mesh with the camera transform, depth-tested against the
	// geometry pass depth, and shades only the pixels the mesh covers.
	LightingMesh
)

// String returns the configuration name of the mode.
func (m LightingMode) String() string {
	if m == LightingMesh {
		return "mesh"
	}
	return "fullscreen"
}

// Bind group indices of the camera uniform in every mesh program and of the g-buffer inputs in each
// lighting program.
const (
	cameraGroup = 0

	fullscreenInputGroup = 0
	meshInputGroup       = 1
)

// renderGraph encodes the geometry pass and the lighting pass of one frame.
type renderGraph struct {
	backend    Backend
	mode       LightingMode
	clearColor wgpu.Color

	geometry pipeline.Pipeline
	lighting pipeline.Pipeline
}

// newRenderGraph builds and registers both pipelines. The surface must already be configured so
// the lighting pipeline can target the surface format.
func newRenderGraph(backend Backend, mode LightingMode, clearColor wgpu.Color, depthFormat, normalFormat, colorFormat wgpu.TextureFormat) (*renderGraph, error) {
	g := &renderGraph{
		backend:    backend,
		mode:       mode,
		clearColor: clearColor,
	}

	vertexLayout := model.ModelVertex{}.VertexLayout()

	gvs, gfs, err := shader.Load(shader.KeyGeometry)
	if err != nil {
		return nil, err
	}
	g.geometry = pipeline.NewPipeline(shader.KeyGeometry,
		pipeline.WithVertexShader(gvs),
		pipeline.WithFragmentShader(gfs),
		pipeline.WithColorTargets(normalFormat, colorFormat),
		pipeline.WithVertexLayouts(vertexLayout),
		pipeline.WithDepth(depthFormat, wgpu.CompareFunctionLess, true),
		pipeline.WithCullMode(wgpu.CullModeBack),
	)

	lightingKey := shader.KeyLightingFullscreen
	if mode == LightingMesh {
		lightingKey = shader.KeyLightingMesh
	}
	lvs, lfs, err := shader.Load(lightingKey)
	if err != nil {
		return nil, err
	}
	lightingOptions := []pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(lvs),
		pipeline.WithFragmentShader(lfs),
		pipeline.WithColorTargets(wgpu.TextureFormatUndefined),
	}
	if mode == LightingMesh {
		lightingOptions = append(lightingOptions,
			pipeline.WithVertexLayouts(vertexLayout),
			pipeline.WithDepth(depthFormat, wgpu.CompareFunctionLessEqual, false),
			pipeline.WithCullMode(wgpu.CullModeBack),
		)
	} else {
		lightingOptions = append(lightingOptions, pipeline.WithCullMode(wgpu.CullModeNone))
	}
	g.lighting = pipeline.NewPipeline(lightingKey, lightingOptions...)

	for _, p := range []pipeline.Pipeline{g.geometry, g.lighting} {
		for _, s := range []shader.Shader{p.Shader(shader.ShaderTypeVertex), p.Shader(shader.ShaderTypeFragment)} {
			if err := shader.Validate(s); err != nil {
				common.Logger().Warn("shader validation", "shader", s.Key(), "err", err)
			}
		}
		if err := backend.RegisterRenderPipeline(p); err != nil {
			g.release()
			return nil, fmt.Errorf("register %s pipeline: %w", p.PipelineKey(), err)
		}
	}
	return g, nil
}

// inputGroup is the bind group index the lighting program reads the g-buffer from.
func (g *renderGraph) inputGroup() int {
	if g.mode == LightingMesh {
		return meshInputGroup
	}
	return fullscreenInputGroup
}

// execute renders one frame: geometry pass into the targets, lighting pass into the surface, then present.
// Surface acquisition failures are returned as *SurfaceError. Any failure drops the frame.
func (g *renderGraph) execute(targets TargetSet, cameraProvider, meshProvider bind_group_provider.BindGroupProvider) error {
	if err := g.backend.BeginFrame(); err != nil {
		return classifySurfaceError(err)
	}

	if err := g.geometryPass(targets, cameraProvider, meshProvider); err != nil {
		g.backend.DiscardFrame()
		return err
	}
	if err := g.lightingPass(targets, cameraProvider, meshProvider); err != nil {
		g.backend.DiscardFrame()
		return err
	}
	if err := g.backend.EndFrame(); err != nil {
		g.backend.DiscardFrame()
		return fmt.Errorf("submit frame: %w", err)
	}

	g.backend.Present()
	return nil
}

func (g *renderGraph) geometryPass(targets TargetSet, cameraProvider, meshProvider bind_group_provider.BindGroupProvider) error {
	err := g.backend.BeginPass(PassAttachments{
		Label: "geometry",
		Colors: []ColorAttachment{
			{Target: targets.Normal()},
			{Target: targets.Color()},
		},
		Depth: targets.Depth(),
	})
	if err != nil {
		return err
	}
	g.backend.DrawIndexed(g.geometry, meshProvider, []bind_group_provider.BindGroupProvider{cameraProvider})
	g.backend.EndPass()
	return nil
}

func (g *renderGraph) lightingPass(targets TargetSet, cameraProvider, meshProvider bind_group_provider.BindGroupProvider) error {
	attachments := PassAttachments{
		Label:  "lighting",
		Colors: []ColorAttachment{{Clear: g.clearColor}},
	}
	if g.mode == LightingMesh {
		attachments.Depth = targets.Depth()
		attachments.DepthLoad = true
	}
	if err := g.backend.BeginPass(attachments); err != nil {
		return err
	}

	if g.mode == LightingMesh {
		g.backend.DrawIndexed(g.lighting, meshProvider,
			[]bind_group_provider.BindGroupProvider{cameraProvider, targets.Inputs()})
	} else {
		g.backend.DrawFullscreen(g.lighting, []bind_group_provider.BindGroupProvider{targets.Inputs()})
	}
	g.backend.EndPass()
	return nil
}

func (g *renderGraph) release() {
	if g.geometry != nil {
		g.geometry.Release()
	}
	if g.lighting != nil {
		g.lighting.Release()
	}
}
