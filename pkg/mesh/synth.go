package mesh

import (
	gomath "math"

	"github.com/Faultbox/meshkit/pkg/math"
)

// Face normals shorter than this are treated as degenerate.
const degenerateNormalLength = 1e-5

// ComputeNormals derives per-vertex normals by angle-weighted averaging of
// the unnormalized face normals around each vertex. Every index must be in
// range for positions.
//
// Degenerate faces contribute a zero normal, corners with an undefined
// angle are skipped, and a vertex whose accumulated normal is zero keeps
// the zero vector.
func ComputeNormals(positions []float32, indices []uint32) []float32 {
	normals := make([]float32, len(positions))

	for f := 0; f+2 < len(indices); f += 3 {
		tri := [3]int{int(indices[f]), int(indices[f+1]), int(indices[f+2])}
		corners := [3]math.Vec3{
			math.Vec3At(positions, tri[0]),
			math.Vec3At(positions, tri[1]),
			math.Vec3At(positions, tri[2]),
		}

		faceNormal := corners[1].Sub(corners[0]).Cross(corners[2].Sub(corners[0]))
		if faceNormal.Length() < degenerateNormalLength {
			faceNormal = math.Vec3{}
		}

		for j := 0; j < 3; j++ {
			p := corners[j]
			angle := corners[(j+1)%3].Sub(p).Angle(corners[(j+2)%3].Sub(p))
			if gomath.IsNaN(angle) {
				continue
			}

			w := faceNormal.Scale(float32(angle))
			idx := tri[j] * 3
			normals[idx] += w.X
			normals[idx+1] += w.Y
			normals[idx+2] += w.Z
		}
	}

	for i := 0; i < len(normals)/3; i++ {
		n := math.Vec3At(normals, i).Normalize()
		normals[i*3] = n.X
		normals[i*3+1] = n.Y
		normals[i*3+2] = n.Z
	}
	return normals
}

// ComputeTexCoords projects every position onto a sphere around the origin:
//
//	s = atan2(y, x) / 2π + 0.5
//	t = asin(z) / π + 0.5
//
// The projection is only exact for unit-length positions; other meshes get
// approximate, wrapped coordinates. z is clamped to [-1, 1] so the result
// is never NaN.
func ComputeTexCoords(positions []float32) []float32 {
	vertices := len(positions) / 3
	texCoords := make([]float32, vertices*2)

	for i := 0; i < vertices; i++ {
		x := float64(positions[i*3])
		y := float64(positions[i*3+1])
		z := gomath.Max(-1, gomath.Min(1, float64(positions[i*3+2])))

		longitude := gomath.Atan2(y, x)
		latitude := gomath.Asin(z)

		texCoords[i*2] = float32(longitude/(2*gomath.Pi) + 0.5)
		texCoords[i*2+1] = float32(latitude/gomath.Pi + 0.5)
	}
	return texCoords
}

// ComputeBounds returns the componentwise minimum and maximum of positions.
// With no positions the result stays at the +Inf/-Inf sentinels (min > max).
func ComputeBounds(positions []float32) (min, max math.Vec3) {
	min, max = emptyBounds()
	for i := 0; i < len(positions)/3; i++ {
		p := math.Vec3At(positions, i)
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max
}

// Synthesize fills in normals and texture coordinates when the mesh does not
// carry a full set, and recomputes the bounding box.
func (m *Mesh) Synthesize() {
	if len(m.Normals) != len(m.Positions) {
		m.Normals = ComputeNormals(m.Positions, m.Indices)
		m.Synthesized.Normals = true
	}
	if len(m.TexCoords) != m.VertexCount()*2 {
		m.TexCoords = ComputeTexCoords(m.Positions)
		m.Synthesized.TexCoords = true
	}
	m.BoundingMin, m.BoundingMax = ComputeBounds(m.Positions)
}
