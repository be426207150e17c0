package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Faultbox/meshkit/pkg/math"
)

// makePLY builds a binary little-endian PLY file. normals may be nil; each
// face is written with its own corner count.
func makePLY(header []string, positions, normals [][3]float32, faces [][]int32) []byte {
	buf := new(bytes.Buffer)

	for _, line := range header {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	for i, p := range positions {
		binary.Write(buf, binary.LittleEndian, p)
		if normals != nil {
			binary.Write(buf, binary.LittleEndian, normals[i])
		}
	}

	for _, f := range faces {
		buf.WriteByte(byte(len(f)))
		for _, idx := range f {
			binary.Write(buf, binary.LittleEndian, idx)
		}
	}

	return buf.Bytes()
}

func nearVec3(a, b math.Vec3) bool {
	const eps = 1e-5
	return a.Sub(b).Length() < eps
}

func triangleHeader() []string {
	return []string{
		"ply",
		"element vertex 3",
		"element face 1",
		"end_header",
	}
}

var trianglePositions = [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

func TestParsePLY_Triangle(t *testing.T) {
	data := makePLY(triangleHeader(), trianglePositions, nil, [][]int32{{0, 1, 2}})

	m, err := ParsePLY(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}

	if m.VertexCount() != 3 {
		t.Errorf("VertexCount() = %d, want 3", m.VertexCount())
	}
	if m.FaceCount() != 1 {
		t.Errorf("FaceCount() = %d, want 1", m.FaceCount())
	}
	if len(m.Normals) != 9 || len(m.TexCoords) != 6 {
		t.Errorf("len(normals)=%d len(texcoords)=%d, want 9 and 6", len(m.Normals), len(m.TexCoords))
	}

	for i := 0; i < 3; i++ {
		if n := m.Normal(i); !nearVec3(n, math.Vec3{Z: 1}) {
			t.Errorf("Normal(%d) = %v, want (0, 0, 1)", i, n)
		}
	}

	if m.BoundingMin != (math.Vec3{}) {
		t.Errorf("BoundingMin = %v, want (0, 0, 0)", m.BoundingMin)
	}
	if m.BoundingMax != (math.Vec3{X: 1, Y: 1, Z: 0}) {
		t.Errorf("BoundingMax = %v, want (1, 1, 0)", m.BoundingMax)
	}

	if !m.Synthesized.Normals || !m.Synthesized.TexCoords {
		t.Errorf("Synthesized = %+v, want normals and texcoords", m.Synthesized)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestParsePLY_WithNormals(t *testing.T) {
	header := []string{
		"ply",
		"format binary_little_endian 1.0",
		"comment exported for tests",
		"element vertex 3",
		"property float x",
		"property float y",
		"property float z",
		"property float nx",
		"property float ny",
		"property float nz",
		"element face 1",
		"property list uchar int vertex_indices",
		"end_header",
	}
	normals := [][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	data := makePLY(header, trianglePositions, normals, [][]int32{{0, 1, 2}})

	m, err := ParsePLY(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}

	if m.Synthesized.Normals {
		t.Error("declared normals should be read, not synthesized")
	}
	for i, want := range normals {
		got := m.Normal(i)
		if got != (math.Vec3{X: want[0], Y: want[1], Z: want[2]}) {
			t.Errorf("Normal(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestParsePLY_ArrayLengths(t *testing.T) {
	tests := []struct {
		name string
		grid int
	}{
		{"1x1", 1},
		{"4x4", 4},
		{"16x16", 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// (grid+1)^2 vertices on a plane, two triangles per cell.
			side := tt.grid + 1
			var positions [][3]float32
			for y := 0; y < side; y++ {
				for x := 0; x < side; x++ {
					positions = append(positions, [3]float32{float32(x), float32(y), 0})
				}
			}
			var faces [][]int32
			for y := 0; y < tt.grid; y++ {
				for x := 0; x < tt.grid; x++ {
					a := int32(y*side + x)
					b, c, d := a+1, a+int32(side), a+int32(side)+1
					faces = append(faces, []int32{a, b, d}, []int32{a, d, c})
				}
			}

			header := []string{
				"ply",
				"format binary_little_endian 1.0",
				"element vertex " + strconv.Itoa(len(positions)),
				"element face " + strconv.Itoa(len(faces)),
				"end_header",
			}
			m, err := ParsePLY(bytes.NewReader(makePLY(header, positions, nil, faces)))
			if err != nil {
				t.Fatalf("ParsePLY failed: %v", err)
			}

			if len(m.Positions) != 3*len(positions) {
				t.Errorf("len(Positions) = %d, want %d", len(m.Positions), 3*len(positions))
			}
			if len(m.Indices) != 3*len(faces) {
				t.Errorf("len(Indices) = %d, want %d", len(m.Indices), 3*len(faces))
			}
			if err := m.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
			for i := 0; i < m.VertexCount(); i++ {
				if n := m.Normal(i); !nearVec3(n, math.Vec3{Z: 1}) {
					t.Fatalf("Normal(%d) = %v, want (0, 0, 1)", i, n)
				}
			}
		})
	}
}

func TestParsePLY_CRLFHeader(t *testing.T) {
	header := strings.Join(triangleHeader(), "\r\n")
	data := makePLY([]string{header}, trianglePositions, nil, [][]int32{{0, 1, 2}})

	m, err := ParsePLY(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}
	if m.FaceCount() != 1 {
		t.Errorf("FaceCount() = %d, want 1", m.FaceCount())
	}
}

func TestParsePLY_Errors(t *testing.T) {
	good := [][]int32{{0, 1, 2}}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "empty data",
			data:    []byte{},
			wantErr: ErrInvalidPLYMagic,
		},
		{
			name:    "invalid magic",
			data:    makePLY([]string{"obj", "element vertex 3", "end_header"}, trianglePositions, nil, nil),
			wantErr: ErrInvalidPLYMagic,
		},
		{
			name:    "zero vertices",
			data:    makePLY([]string{"ply", "element vertex 0", "element face 0", "end_header"}, nil, nil, nil),
			wantErr: ErrInvalidPLYVertexCount,
		},
		{
			name:    "negative vertices",
			data:    makePLY([]string{"ply", "element vertex -3", "end_header"}, nil, nil, nil),
			wantErr: ErrInvalidPLYVertexCount,
		},
		{
			name:    "missing vertex element",
			data:    makePLY([]string{"ply", "element face 1", "end_header"}, nil, nil, good),
			wantErr: ErrInvalidPLYVertexCount,
		},
		{
			name:    "bad element count",
			data:    makePLY([]string{"ply", "element vertex three", "end_header"}, nil, nil, nil),
			wantErr: ErrInvalidPLYHeader,
		},
		{
			name:    "ascii format",
			data:    makePLY([]string{"ply", "format ascii 1.0", "element vertex 3", "end_header"}, nil, nil, nil),
			wantErr: ErrUnsupportedPLYFormat,
		},
		{
			name:    "big endian format",
			data:    makePLY([]string{"ply", "format binary_big_endian 1.0", "element vertex 3", "end_header"}, nil, nil, nil),
			wantErr: ErrUnsupportedPLYFormat,
		},
		{
			name:    "double normals",
			data:    makePLY([]string{"ply", "element vertex 3", "property double nx", "end_header"}, nil, nil, nil),
			wantErr: ErrUnsupportedPLYFormat,
		},
		{
			name:    "header without terminator",
			data:    []byte("ply\nelement vertex 3\nelement face 1\n"),
			wantErr: ErrTruncatedPLYData,
		},
		{
			name:    "quad face",
			data:    makePLY(triangleHeader(), trianglePositions, nil, [][]int32{{0, 1, 2, 0}}),
			wantErr: ErrNonTriangularFace,
		},
		{
			name:    "index out of range",
			data:    makePLY(triangleHeader(), trianglePositions, nil, [][]int32{{0, 1, 3}}),
			wantErr: ErrIndexOutOfRange,
		},
		{
			name:    "negative index",
			data:    makePLY(triangleHeader(), trianglePositions, nil, [][]int32{{0, -1, 2}}),
			wantErr: ErrIndexOutOfRange,
		},
		{
			name:    "truncated vertices",
			data:    makePLY(triangleHeader(), trianglePositions[:2], nil, nil),
			wantErr: ErrTruncatedPLYData,
		},
		{
			name:    "truncated faces",
			data:    makePLY(triangleHeader(), trianglePositions, nil, nil),
			wantErr: ErrTruncatedPLYData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParsePLY(bytes.NewReader(tt.data))
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrFormat) {
				t.Errorf("error %v should be a format error", err)
			}
			if m != nil {
				t.Error("failed parse must not return a mesh")
			}
		})
	}
}

func TestParsePLY_TruncatedFaceIndices(t *testing.T) {
	data := makePLY(triangleHeader(), trianglePositions, nil, [][]int32{{0, 1, 2}})
	data = data[:len(data)-2]

	_, err := ParsePLY(bytes.NewReader(data))
	if !errors.Is(err, ErrTruncatedPLYData) {
		t.Errorf("got error %v, want ErrTruncatedPLYData", err)
	}
}

func TestParsePLY_HeaderLimits(t *testing.T) {
	t.Run("too many lines", func(t *testing.T) {
		header := []string{"ply"}
		for i := 0; i < 20; i++ {
			header = append(header, "comment padding")
		}
		header = append(header, "element vertex 3", "element face 1", "end_header")
		data := makePLY(header, trianglePositions, nil, [][]int32{{0, 1, 2}})

		_, err := ParsePLYWithOptions(bytes.NewReader(data), PLYOptions{MaxHeaderLines: 10})
		if !errors.Is(err, ErrPLYHeaderTooLong) {
			t.Errorf("got error %v, want ErrPLYHeaderTooLong", err)
		}

		// The default limit accepts the same header.
		if _, err := ParsePLY(bytes.NewReader(data)); err != nil {
			t.Errorf("default options: %v", err)
		}
	})

	t.Run("line too long", func(t *testing.T) {
		header := []string{"ply", "comment " + strings.Repeat("x", 200), "element vertex 3", "element face 1", "end_header"}
		data := makePLY(header, trianglePositions, nil, [][]int32{{0, 1, 2}})

		_, err := ParsePLYWithOptions(bytes.NewReader(data), PLYOptions{MaxHeaderLineLength: 64})
		if !errors.Is(err, ErrPLYHeaderTooLong) {
			t.Errorf("got error %v, want ErrPLYHeaderTooLong", err)
		}
	})
}

func TestReadPLYHeader(t *testing.T) {
	header := []string{
		"ply",
		"format binary_little_endian 1.0",
		"element vertex 3",
		"property float x",
		"property float nx",
		"element face 1",
		"end_header",
	}
	normals := [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	data := makePLY(header, trianglePositions, normals, [][]int32{{0, 1, 2}})

	h, err := ReadPLYHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadPLYHeader failed: %v", err)
	}

	want := PLYHeader{Format: "binary_little_endian", Vertices: 3, Faces: 1, HasNormals: true}
	if *h != want {
		t.Errorf("header = %+v, want %+v", *h, want)
	}
}

func TestParsePLY_NormalsFlagIsPerCall(t *testing.T) {
	withNormals := makePLY(
		[]string{"ply", "element vertex 3", "property float nx", "element face 1", "end_header"},
		trianglePositions, [][3]float32{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}}, [][]int32{{0, 1, 2}},
	)
	without := makePLY(triangleHeader(), trianglePositions, nil, [][]int32{{0, 1, 2}})

	if _, err := ParsePLY(bytes.NewReader(withNormals)); err != nil {
		t.Fatalf("ParsePLY with normals: %v", err)
	}

	// A previous file with normals must not change how the next one is read.
	m, err := ParsePLY(bytes.NewReader(without))
	if err != nil {
		t.Fatalf("ParsePLY without normals: %v", err)
	}
	if !m.Synthesized.Normals {
		t.Error("normals should be synthesized for a file without them")
	}
	if n := m.Normal(0); !nearVec3(n, math.Vec3{Z: 1}) {
		t.Errorf("Normal(0) = %v, want (0, 0, 1)", n)
	}
}

func TestReadPLY_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triangle.ply")
	data := makePLY(triangleHeader(), trianglePositions, nil, [][]int32{{0, 1, 2}})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	m, err := ReadPLY(path)
	if err != nil {
		t.Fatalf("ReadPLY failed: %v", err)
	}
	if m.VertexCount() != 3 {
		t.Errorf("VertexCount() = %d, want 3", m.VertexCount())
	}
}

func TestReadPLY_MissingFile(t *testing.T) {
	_, err := ReadPLY(filepath.Join(t.TempDir(), "missing.ply"))
	if !errors.Is(err, ErrIO) {
		t.Errorf("got error %v, want ErrIO", err)
	}
	if errors.Is(err, ErrFormat) {
		t.Error("missing file should not be a format error")
	}
}

func TestWritePLY_NotSupported(t *testing.T) {
	m, err := ParsePLY(bytes.NewReader(makePLY(triangleHeader(), trianglePositions, nil, [][]int32{{0, 1, 2}})))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}

	var out bytes.Buffer
	if err := WritePLY(&out, m); !errors.Is(err, ErrWriteNotSupported) {
		t.Errorf("WritePLY() = %v, want ErrWriteNotSupported", err)
	}
	if out.Len() != 0 {
		t.Errorf("WritePLY wrote %d bytes", out.Len())
	}
}
