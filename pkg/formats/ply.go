// PLY reader for binary little-endian triangle meshes.
package formats

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

// PLY format errors.
var (
	ErrInvalidPLYMagic       = fmt.Errorf("%w: invalid PLY magic: expected 'ply'", ErrFormat)
	ErrInvalidPLYVertexCount = fmt.Errorf("%w: invalid PLY vertex count", ErrFormat)
	ErrInvalidPLYFaceCount   = fmt.Errorf("%w: invalid PLY face count", ErrFormat)
	ErrInvalidPLYHeader      = fmt.Errorf("%w: malformed PLY header line", ErrFormat)
	ErrUnsupportedPLYFormat  = fmt.Errorf("%w: unsupported PLY format", ErrFormat)
	ErrPLYHeaderTooLong      = fmt.Errorf("%w: PLY header too long", ErrFormat)
	ErrTruncatedPLYData      = fmt.Errorf("%w: truncated PLY data", ErrFormat)

	ErrWriteNotSupported = errors.New("writing PLY is not supported")
)

const (
	plyMagic     = "ply"
	plyEndHeader = "end_header"
	plyBinaryLE  = "binary_little_endian"

	// DefaultPLYMaxHeaderLines bounds the number of header lines after the magic.
	DefaultPLYMaxHeaderLines = 256
	// DefaultPLYMaxHeaderLineLength bounds a single header line in bytes.
	DefaultPLYMaxHeaderLineLength = 1024

	// Upper bound for up-front allocation; larger bodies grow as they are read.
	plyPreallocLimit = 1 << 20
)

// PLYOptions bounds header scanning.
type PLYOptions struct {
	MaxHeaderLines      int
	MaxHeaderLineLength int
}

// DefaultPLYOptions returns the default header limits.
func DefaultPLYOptions() PLYOptions {
	return PLYOptions{
		MaxHeaderLines:      DefaultPLYMaxHeaderLines,
		MaxHeaderLineLength: DefaultPLYMaxHeaderLineLength,
	}
}

func (o PLYOptions) withDefaults() PLYOptions {
	if o.MaxHeaderLines <= 0 {
		o.MaxHeaderLines = DefaultPLYMaxHeaderLines
	}
	if o.MaxHeaderLineLength <= 0 {
		o.MaxHeaderLineLength = DefaultPLYMaxHeaderLineLength
	}
	return o
}

// PLYHeader is the information extracted from a PLY header.
type PLYHeader struct {
	Format     string // empty when the header has no format line
	Vertices   int
	Faces      int
	HasNormals bool
}

// ReadPLY reads a PLY file from disk.
func ReadPLY(path string) (*mesh.Mesh, error) {
	return ReadPLYWithOptions(path, DefaultPLYOptions())
}

// ReadPLYWithOptions reads a PLY file from disk with custom header limits.
func ReadPLYWithOptions(path string, opts PLYOptions) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("opening PLY file", err)
	}
	defer f.Close()

	return ParsePLYWithOptions(f, opts)
}

// ParsePLY parses a PLY stream.
func ParsePLY(r io.Reader) (*mesh.Mesh, error) {
	return ParsePLYWithOptions(r, DefaultPLYOptions())
}

// ParsePLYWithOptions parses a PLY stream.
//
// The body is read as packed little-endian records: per vertex three float32
// positions, followed by three float32 normals when the header declares
// them; per face a one-byte corner count that must be 3 and three int32
// indices. Missing normals are synthesized; texture coordinates are always
// projected spherically.
func ParsePLYWithOptions(r io.Reader, opts PLYOptions) (*mesh.Mesh, error) {
	br := bufio.NewReader(r)

	header, err := readPLYHeader(br, opts.withDefaults())
	if err != nil {
		return nil, err
	}

	m := mesh.New()
	if err := readPLYVertices(br, header, m); err != nil {
		return nil, err
	}
	if err := readPLYFaces(br, header, m); err != nil {
		return nil, err
	}

	m.Synthesize()
	return m, nil
}

// ReadPLYHeader parses only the header of a PLY stream. The reader is left
// positioned somewhere inside the body.
func ReadPLYHeader(r io.Reader) (*PLYHeader, error) {
	return readPLYHeader(bufio.NewReader(r), DefaultPLYOptions())
}

func readPLYHeader(br *bufio.Reader, opts PLYOptions) (*PLYHeader, error) {
	magic, err := readHeaderLine(br, opts.MaxHeaderLineLength)
	if err != nil {
		if errors.Is(err, ErrFormat) {
			return nil, ErrInvalidPLYMagic
		}
		return nil, err
	}
	if strings.TrimSpace(magic) != plyMagic {
		return nil, ErrInvalidPLYMagic
	}

	header := &PLYHeader{}
	terminated := false

	for n := 0; n < opts.MaxHeaderLines; n++ {
		line, err := readHeaderLine(br, opts.MaxHeaderLineLength)
		if err != nil {
			return nil, err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == plyEndHeader {
			terminated = true
			break
		}
		if err := header.parseLine(fields); err != nil {
			return nil, err
		}
	}

	if !terminated {
		return nil, fmt.Errorf("%w: no %s within %d lines", ErrPLYHeaderTooLong, plyEndHeader, opts.MaxHeaderLines)
	}
	// Indices are int32 on disk, so larger counts cannot be addressed.
	if header.Vertices <= 0 || header.Vertices > gomath.MaxInt32 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPLYVertexCount, header.Vertices)
	}
	if header.Faces < 0 || header.Faces > gomath.MaxInt32 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPLYFaceCount, header.Faces)
	}
	return header, nil
}

func (h *PLYHeader) parseLine(fields []string) error {
	switch fields[0] {
	case "format":
		if len(fields) < 2 {
			return fmt.Errorf("%w: %q", ErrInvalidPLYHeader, strings.Join(fields, " "))
		}
		h.Format = fields[1]
		if h.Format != plyBinaryLE {
			return fmt.Errorf("%w: %s", ErrUnsupportedPLYFormat, h.Format)
		}

	case "element":
		if len(fields) < 3 {
			return fmt.Errorf("%w: %q", ErrInvalidPLYHeader, strings.Join(fields, " "))
		}
		count, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("%w: element %s count %q", ErrInvalidPLYHeader, fields[1], fields[2])
		}
		switch fields[1] {
		case "vertex":
			h.Vertices = count
		case "face":
			h.Faces = count
		}

	case "property":
		// Only the nx marker matters; ny and nz are implied by the fixed layout.
		if len(fields) == 3 && fields[2] == "nx" {
			if fields[1] != "float" && fields[1] != "float32" {
				return fmt.Errorf("%w: normals of type %s", ErrUnsupportedPLYFormat, fields[1])
			}
			h.HasNormals = true
		}
	}
	return nil
}

// readHeaderLine reads one newline-terminated header line of at most maxLen
// bytes, without the line ending.
func readHeaderLine(br *bufio.Reader, maxLen int) (string, error) {
	var sb strings.Builder
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: header ended without %s", ErrTruncatedPLYData, plyEndHeader)
			}
			return "", ioError("reading PLY header", err)
		}
		if b == '\n' {
			return strings.TrimSuffix(sb.String(), "\r"), nil
		}
		if sb.Len() >= maxLen {
			return "", fmt.Errorf("%w: line exceeds %d bytes", ErrPLYHeaderTooLong, maxLen)
		}
		sb.WriteByte(b)
	}
}

func readPLYVertices(r io.Reader, header *PLYHeader, m *mesh.Mesh) error {
	m.Positions = make([]float32, 0, min(header.Vertices*3, plyPreallocLimit))
	if header.HasNormals {
		m.Normals = make([]float32, 0, min(header.Vertices*3, plyPreallocLimit))
	}

	stride := 12
	if header.HasNormals {
		stride = 24
	}
	buf := make([]byte, stride)

	for i := 0; i < header.Vertices; i++ {
		if err := readRecord(r, buf); err != nil {
			return fmt.Errorf("reading vertex %d: %w", i, err)
		}
		m.Positions = append(m.Positions, float32At(buf, 0), float32At(buf, 4), float32At(buf, 8))
		if header.HasNormals {
			m.Normals = append(m.Normals, float32At(buf, 12), float32At(buf, 16), float32At(buf, 20))
		}
	}
	return nil
}

func readPLYFaces(r io.Reader, header *PLYHeader, m *mesh.Mesh) error {
	m.Indices = make([]uint32, 0, min(header.Faces*3, plyPreallocLimit))

	count := make([]byte, 1)
	buf := make([]byte, 12)

	for i := 0; i < header.Faces; i++ {
		if err := readRecord(r, count); err != nil {
			return fmt.Errorf("reading face %d: %w", i, err)
		}
		if count[0] != 3 {
			return fmt.Errorf("%w: face %d has %d vertices", ErrNonTriangularFace, i, count[0])
		}
		if err := readRecord(r, buf); err != nil {
			return fmt.Errorf("reading face %d: %w", i, err)
		}

		for j := 0; j < 3; j++ {
			idx := int32(binary.LittleEndian.Uint32(buf[j*4:]))
			if idx < 0 || int(idx) >= header.Vertices {
				return fmt.Errorf("%w: face %d references vertex %d (vertices=%d)", ErrIndexOutOfRange, i, idx, header.Vertices)
			}
			m.Indices = append(m.Indices, uint32(idx))
		}
	}
	return nil
}

func readRecord(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncatedPLYData
		}
		return ioError("reading PLY body", err)
	}
	return nil
}

func float32At(buf []byte, off int) float32 {
	return gomath.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

// WritePLY is not supported; it always returns ErrWriteNotSupported.
func WritePLY(w io.Writer, m *mesh.Mesh) error {
	return ErrWriteNotSupported
}
