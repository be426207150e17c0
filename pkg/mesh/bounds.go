package mesh

import "github.com/Faultbox/meshkit/pkg/math"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Bounds returns the mesh bounding box.
func (m *Mesh) Bounds() Bounds {
	return Bounds{Min: m.BoundingMin, Max: m.BoundingMax}
}

// Valid reports whether Min <= Max on every axis.
func (b Bounds) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Center returns the box center.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent on each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Diagonal returns the length of the box diagonal.
func (b Bounds) Diagonal() float32 {
	return b.Size().Length()
}

// FitTransform returns a model matrix that moves the box center to the
// origin and scales the diagonal to 2 units, so the model fits a unit
// sphere. Invalid or point-sized boxes only get the translation.
func (b Bounds) FitTransform() math.Mat4 {
	if !b.Valid() {
		return math.Identity()
	}

	c := b.Center()
	t := math.Translate(-c.X, -c.Y, -c.Z)

	d := b.Diagonal()
	if d == 0 {
		return t
	}
	s := 2 / d
	return math.Scale(s, s, s).Mul(t)
}

// Fit returns a copy of the mesh moved and scaled by FitTransform. Normals
// are unchanged since the scale is uniform.
func (m *Mesh) Fit() *Mesh {
	t := m.Bounds().FitTransform()

	out := m.Clone()
	for i := 0; i < out.VertexCount(); i++ {
		p := t.TransformVec3(math.Vec3At(out.Positions, i))
		out.Positions[i*3] = p.X
		out.Positions[i*3+1] = p.Y
		out.Positions[i*3+2] = p.Z
	}
	out.BoundingMin, out.BoundingMax = ComputeBounds(out.Positions)
	return out
}
