package mesh

import gomath "math"

// Fixed tessellation of the default sphere.
const (
	SphereSectors = 64
	SphereStacks  = 64
)

// SphereVertexCount returns the vertex count of a UV-sphere. The seam column
// is duplicated so it can carry s=0 and s=1.
func SphereVertexCount(sectors, stacks int) int {
	return (sectors + 1) * (stacks + 1)
}

// SphereTriangleCount returns the triangle count of a UV-sphere: two per
// sector in every band except the pole bands, which fan with one.
func SphereTriangleCount(sectors, stacks int) int {
	return 2 * sectors * (stacks - 1)
}

// NewSphere returns the default model: a unit UV-sphere with analytic
// normals and texture coordinates.
func NewSphere() *Mesh {
	return buildSphere(1, SphereSectors, SphereStacks)
}

func buildSphere(radius float32, sectors, stacks int) *Mesh {
	vertices := SphereVertexCount(sectors, stacks)
	m := &Mesh{
		Positions: make([]float32, 0, vertices*3),
		Normals:   make([]float32, 0, vertices*3),
		TexCoords: make([]float32, 0, vertices*2),
		Indices:   make([]uint32, 0, SphereTriangleCount(sectors, stacks)*3),
	}

	sectorStep := 2 * gomath.Pi / float64(sectors)
	stackStep := gomath.Pi / float64(stacks)
	lengthInv := 1 / radius

	for i := 0; i <= stacks; i++ {
		// From +pi/2 at the top pole down to -pi/2.
		stackAngle := gomath.Pi/2 - float64(i)*stackStep
		xy := radius * float32(gomath.Cos(stackAngle))
		z := radius * float32(gomath.Sin(stackAngle))

		for j := 0; j <= sectors; j++ {
			sectorAngle := float64(j) * sectorStep
			x := xy * float32(gomath.Cos(sectorAngle))
			y := xy * float32(gomath.Sin(sectorAngle))

			m.Positions = append(m.Positions, x, y, z)
			m.Normals = append(m.Normals, x*lengthInv, y*lengthInv, z*lengthInv)
			m.TexCoords = append(m.TexCoords, float32(j)/float32(sectors), float32(i)/float32(stacks))
		}
	}

	for i := 0; i < stacks; i++ {
		k1 := uint32(i * (sectors + 1)) // current stack
		k2 := k1 + uint32(sectors) + 1  // next stack

		for j := 0; j < sectors; j, k1, k2 = j+1, k1+1, k2+1 {
			if i != 0 {
				m.Indices = append(m.Indices, k1, k2, k1+1)
			}
			if i != stacks-1 {
				m.Indices = append(m.Indices, k1+1, k2, k2+1)
			}
		}
	}

	m.BoundingMin, m.BoundingMax = ComputeBounds(m.Positions)
	return m
}
