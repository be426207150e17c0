package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/meshkit/pkg/formats"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		src, dir, format string
		want             string
	}{
		{"models/bunny.ply", "out", "glb", filepath.Join("out", "bunny.glb")},
		{"cube.OBJ", ".", ".gltf", "cube.gltf"},
		{"", "out", "glb", filepath.Join("out", "sphere.glb")},
		{".null", "out", "gltf", filepath.Join("out", "sphere.gltf")},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := outputPath(tt.src, tt.dir, tt.format); got != tt.want {
				t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.src, tt.dir, tt.format, got, tt.want)
			}
		})
	}
}

func TestExportMesh(t *testing.T) {
	dir := t.TempDir()
	sphere := mesh.NewSphere()

	if err := exportMesh(filepath.Join(dir, "sphere.glb"), sphere, true); err != nil {
		t.Fatalf("glb export failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sphere.glb")); err != nil {
		t.Errorf("glb not written: %v", err)
	}

	if err := exportMesh(filepath.Join(dir, "sphere.ply"), sphere, false); !errors.Is(err, formats.ErrWriteNotSupported) {
		t.Errorf("ply export = %v, want ErrWriteNotSupported", err)
	}
	if err := exportMesh(filepath.Join(dir, "sphere.stl"), sphere, false); err == nil {
		t.Error("expected error for unknown export format")
	}
}

func TestInfoCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"info", ".null"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("info failed: %v", err)
	}

	for _, want := range []string{"procedural sphere", "Vertices: 4225", "Faces: 8064", "Diagonal:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
}
