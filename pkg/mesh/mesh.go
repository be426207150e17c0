// Package mesh holds the indexed triangle mesh shared by the format readers,
// the procedural generator and the attribute synthesizer.
package mesh

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/meshkit/pkg/math"
)

// ErrInvalidMesh is returned by Validate when the mesh arrays disagree.
var ErrInvalidMesh = errors.New("invalid mesh")

// Synthesized records which attributes were derived rather than read.
type Synthesized struct {
	Normals   bool
	TexCoords bool
}

// Mesh is an indexed triangle mesh with flattened per-vertex attributes.
//
// Positions and Normals hold xyz triples, TexCoords holds st pairs and
// Indices holds one triple per triangle. Winding is kept as supplied by
// the source.
type Mesh struct {
	Positions []float32
	Indices   []uint32
	Normals   []float32
	TexCoords []float32

	BoundingMin math.Vec3
	BoundingMax math.Vec3

	// DiffuseTexturePath references an image on disk; it is never loaded here.
	DiffuseTexturePath string

	Synthesized Synthesized
}

// New returns an empty mesh with inverted bounds.
func New() *Mesh {
	m := &Mesh{}
	m.BoundingMin, m.BoundingMax = emptyBounds()
	return m
}

func emptyBounds() (math.Vec3, math.Vec3) {
	inf := float32(gomath.Inf(1))
	return math.Vec3{X: inf, Y: inf, Z: inf}, math.Vec3{X: -inf, Y: -inf, Z: -inf}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Indices) / 3
}

// Empty reports whether the mesh has no vertices. Bounds of an empty mesh
// are inverted and must not be used.
func (m *Mesh) Empty() bool {
	return len(m.Positions) == 0
}

// Position returns the position of vertex i.
func (m *Mesh) Position(i int) math.Vec3 {
	return math.Vec3At(m.Positions, i)
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) math.Vec3 {
	return math.Vec3At(m.Normals, i)
}

// TexCoord returns the texture coordinate of vertex i.
func (m *Mesh) TexCoord(i int) math.Vec2 {
	return math.Vec2At(m.TexCoords, i)
}

// Validate checks the array-length invariants and index ranges of a
// completed mesh.
func (m *Mesh) Validate() error {
	if len(m.Positions)%3 != 0 {
		return fmt.Errorf("%w: %d position floats is not a multiple of 3", ErrInvalidMesh, len(m.Positions))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrInvalidMesh, len(m.Indices))
	}
	if len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normal floats for %d position floats", ErrInvalidMesh, len(m.Normals), len(m.Positions))
	}
	if len(m.TexCoords)*3 != len(m.Positions)*2 {
		return fmt.Errorf("%w: %d texcoord floats for %d vertices", ErrInvalidMesh, len(m.TexCoords), m.VertexCount())
	}

	vertices := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= vertices {
			return fmt.Errorf("%w: index %d at %d out of range (vertices=%d)", ErrInvalidMesh, idx, i, vertices)
		}
	}
	return nil
}

// Clone returns a deep copy that shares no arrays with m.
func (m *Mesh) Clone() *Mesh {
	out := *m
	out.Positions = append([]float32(nil), m.Positions...)
	out.Indices = append([]uint32(nil), m.Indices...)
	out.Normals = append([]float32(nil), m.Normals...)
	out.TexCoords = append([]float32(nil), m.TexCoords...)
	return &out
}
