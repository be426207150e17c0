// Package formats reads triangle meshes from PLY and OBJ files and exports
// finished meshes as glTF.
//
// Every reader returns an independent, fully populated mesh.Mesh or an
// error; there is no partial result. Errors wrap ErrIO when the file could
// not be opened or read, and ErrFormat when its contents are malformed.
package formats

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrIO     = errors.New("model i/o error")
	ErrFormat = errors.New("malformed model data")
)

// Structural errors shared by the readers.
var (
	ErrNonTriangularFace = fmt.Errorf("%w: only triangular faces are supported", ErrFormat)
	ErrIndexOutOfRange   = fmt.Errorf("%w: vertex index out of range", ErrFormat)
)

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
