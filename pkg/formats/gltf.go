// glTF export of finished meshes.
package formats

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

// BuildGLTF converts a finished mesh into a single-node glTF document.
// The diffuse texture, when set, is referenced by URI and not embedded.
func BuildGLTF(m *mesh.Mesh, name string) (*gltf.Document, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.Empty() {
		return nil, fmt.Errorf("%w: no vertices", mesh.ErrInvalidMesh)
	}

	vertices := m.VertexCount()
	positions := make([][3]float32, vertices)
	normals := make([][3]float32, vertices)
	texCoords := make([][2]float32, vertices)
	for i := 0; i < vertices; i++ {
		positions[i] = [3]float32{m.Positions[i*3], m.Positions[i*3+1], m.Positions[i*3+2]}
		normals[i] = [3]float32{m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2]}
		texCoords[i] = [2]float32{m.TexCoords[i*2], m.TexCoords[i*2+1]}
	}

	doc := gltf.NewDocument()
	primitive := &gltf.Primitive{
		Indices: gltf.Index(modeler.WriteIndices(doc, m.Indices)),
		Attributes: map[string]int{
			gltf.POSITION:   modeler.WritePosition(doc, positions),
			gltf.NORMAL:     modeler.WriteNormal(doc, normals),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, texCoords),
		},
	}

	if m.DiffuseTexturePath != "" {
		doc.Images = append(doc.Images, &gltf.Image{URI: filepath.ToSlash(m.DiffuseTexturePath)})
		doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(len(doc.Images) - 1)})
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: "diffuse",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorTexture: &gltf.TextureInfo{Index: len(doc.Textures) - 1},
			},
		})
		primitive.Material = gltf.Index(len(doc.Materials) - 1)
	}

	doc.Meshes = []*gltf.Mesh{{Name: name, Primitives: []*gltf.Primitive{primitive}}}
	doc.Nodes = []*gltf.Node{{Name: name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	return doc, nil
}

// WriteGLTF saves a mesh as glTF. A .glb path produces the binary container;
// anything else is written as JSON with the buffer embedded.
func WriteGLTF(path string, m *mesh.Mesh) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	doc, err := BuildGLTF(m, name)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(doc, path)
	} else {
		doc.Buffers[0].EmbeddedResource()
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return ioError("writing glTF", err)
	}
	return nil
}
