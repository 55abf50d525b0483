// Package debug provides debug visualization utilities.
package debug

import (
	"fmt"

	"github.com/Faultbox/organism/internal/engine/scene"
	"github.com/Faultbox/organism/internal/engine/shader"
)

// AxesModule is the shader module the axes are drawn with.
const AxesModule = "axes"

// AxesAttributes is the vertex layout of the axes mesh.
var AxesAttributes = []scene.VertexAttribute{
	{Name: "position", Size: 3},
	{Name: "color", Size: 3},
}

// GenerateAxesVertices returns three line segments from the origin along
// +X (red), +Y (green) and +Z (blue). Format: [x, y, z, r, g, b] per vertex.
func GenerateAxesVertices(length float32) []float32 {
	return []float32{
		0, 0, 0, 1, 0, 0,
		length, 0, 0, 1, 0, 0,
		0, 0, 0, 0, 1, 0,
		0, length, 0, 0, 1, 0,
		0, 0, 0, 0, 0, 1,
		0, 0, length, 0, 0, 1,
	}
}

// AxesVertexCount is the number of vertices in the axes mesh (3 lines × 2).
const AxesVertexCount = 6

// NewAxesViewer builds the axes mesh with its material. The axes module
// must already be loaded into store.
func NewAxesViewer(store *shader.Store, length float32) (*scene.Mesh, error) {
	mat, err := scene.NewShaderMaterial(store, AxesModule, scene.MaterialOptions{
		Attributes:     []string{"position", "color"},
		UniformBuffers: []string{scene.SceneUniforms, scene.MeshUniforms},
	})
	if err != nil {
		return nil, fmt.Errorf("axes viewer: %w", err)
	}

	m := scene.NewMesh("axes", AxesAttributes, GenerateAxesVertices(length), nil, scene.Lines)
	m.Material = mat
	return m, nil
}
