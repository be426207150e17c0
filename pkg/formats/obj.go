// OBJ reader built on the g3n Wavefront decoder.
package formats

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/g3n/engine/loader/obj"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

// ErrOBJDecode wraps failures reported by the OBJ decoder.
var ErrOBJDecode = fmt.Errorf("%w: OBJ decode failed", ErrFormat)

// ReadOBJ reads a Wavefront OBJ file and its material library.
//
// Every face corner becomes its own vertex, so Indices is the identity
// sequence. Texture V is flipped to the bottom-up convention. Missing
// normals are synthesized and missing texture coordinates are projected
// spherically, but only when the file has none at all; otherwise corners
// without an index get zero values. The diffuse texture of the first face
// material that has one is resolved relative to the OBJ directory.
//
// Decoder warnings (unknown statements, missing materials) are returned
// alongside the mesh.
func ReadOBJ(path string) (*mesh.Mesh, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, ioError("reading OBJ file", err)
	}

	dir := filepath.Dir(path)
	mtl, err := readMaterialLibrary(dir, materialLibrary(data))
	if err != nil {
		return nil, nil, err
	}

	dec, err := decodeOBJ(data, mtl)
	if err != nil {
		return nil, nil, err
	}

	m, err := buildOBJMesh(dec, dir)
	if err != nil {
		return nil, nil, err
	}
	return m, dec.Warnings, nil
}

func decodeOBJ(data, mtl []byte) (dec *obj.Decoder, err error) {
	defer func() {
		if r := recover(); r != nil {
			dec = nil
			err = fmt.Errorf("%w: %v", ErrOBJDecode, r)
		}
	}()

	dec, err = obj.DecodeReader(bytes.NewReader(data), bytes.NewReader(mtl))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOBJDecode, err)
	}
	return dec, nil
}

// materialLibrary returns the first mtllib name declared in an OBJ file.
func materialLibrary(data []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 1 && fields[0] == "mtllib" {
			return strings.Join(fields[1:], " ")
		}
	}
	return ""
}

// readMaterialLibrary returns the MTL contents, or nothing when the library
// is not declared or not present. A missing library only loses materials.
func readMaterialLibrary(dir, name string) ([]byte, error) {
	if name == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ioError("reading material library", err)
	}
	return data, nil
}

func buildOBJMesh(dec *obj.Decoder, dir string) (*mesh.Mesh, error) {
	positionCount := len(dec.Vertices) / 3
	normalCount := len(dec.Normals) / 3
	uvCount := len(dec.Uvs) / 2
	hasNormals := normalCount > 0
	hasUVs := uvCount > 0

	corners := 0
	for oi := range dec.Objects {
		for fi, face := range dec.Objects[oi].Faces {
			if len(face.Vertices) != 3 {
				return nil, fmt.Errorf("%w: object %q face %d has %d vertices",
					ErrNonTriangularFace, dec.Objects[oi].Name, fi, len(face.Vertices))
			}
			corners += 3
		}
	}

	m := mesh.New()
	m.Positions = make([]float32, 0, corners*3)
	m.Indices = make([]uint32, 0, corners)
	if hasNormals {
		m.Normals = make([]float32, 0, corners*3)
	}
	if hasUVs {
		m.TexCoords = make([]float32, 0, corners*2)
	}

	for oi := range dec.Objects {
		object := &dec.Objects[oi]
		for fi, face := range object.Faces {
			for c := 0; c < 3; c++ {
				v := face.Vertices[c]
				if v < 0 || v >= positionCount {
					return nil, fmt.Errorf("%w: object %q face %d references vertex %d (vertices=%d)",
						ErrIndexOutOfRange, object.Name, fi, v, positionCount)
				}
				m.Indices = append(m.Indices, uint32(len(m.Positions)/3))
				m.Positions = append(m.Positions, dec.Vertices[v*3], dec.Vertices[v*3+1], dec.Vertices[v*3+2])

				if hasNormals {
					if n, ok := cornerIndex(face.Normals, c, normalCount); ok {
						m.Normals = append(m.Normals, dec.Normals[n*3], dec.Normals[n*3+1], dec.Normals[n*3+2])
					} else {
						m.Normals = append(m.Normals, 0, 0, 0)
					}
				}
				if hasUVs {
					if t, ok := cornerIndex(face.Uvs, c, uvCount); ok {
						m.TexCoords = append(m.TexCoords, dec.Uvs[t*2], 1-dec.Uvs[t*2+1])
					} else {
						m.TexCoords = append(m.TexCoords, 0, 0)
					}
				}
			}
		}
	}

	m.Synthesize()
	m.DiffuseTexturePath = diffuseTexture(dec, dir)
	return m, nil
}

// cornerIndex returns the attribute index of corner c when the face has one
// within range.
func cornerIndex(indices []int, c, count int) (int, bool) {
	if c >= len(indices) {
		return 0, false
	}
	idx := indices[c]
	return idx, idx >= 0 && idx < count
}

// diffuseTexture resolves the diffuse map of the first face material that
// is defined in the material library and has one. Faces without usemtl
// carry a decoder placeholder name that is never in the library.
func diffuseTexture(dec *obj.Decoder, dir string) string {
	for oi := range dec.Objects {
		for _, face := range dec.Objects[oi].Faces {
			mat, ok := dec.Materials[face.Material]
			if !ok || mat.MapKd == "" {
				continue
			}
			return filepath.Join(dir, mat.MapKd)
		}
	}
	return ""
}
