package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshkit/internal/loader"
	"github.com/Faultbox/meshkit/pkg/formats"
	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

var infoHeaderOnly bool

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display counts, bounds and derived attributes of a model",
	Long: `Load a model and print its vertex and face counts, bounding box, diffuse
texture and which attributes were synthesized. Without a file the configured
default model (or the procedural sphere) is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoHeaderOnly, "header", false, "Print only the PLY header")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	if infoHeaderOnly {
		return printPLYHeader(cmd.OutOrStdout(), path)
	}

	m, err := loader.New(cfg.Loader).Load(path)
	if err != nil {
		return err
	}

	printInfo(cmd.OutOrStdout(), path, m)
	return nil
}

func printPLYHeader(w io.Writer, path string) error {
	if loader.DetectKind(path) != loader.KindPLY {
		return fmt.Errorf("--header needs a .ply file, got %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h, err := formats.ReadPLYHeader(f)
	if err != nil {
		return err
	}

	format := h.Format
	if format == "" {
		format = "(not declared)"
	}
	fmt.Fprintf(w, "Format:   %s\n", format)
	fmt.Fprintf(w, "Vertices: %d\n", h.Vertices)
	fmt.Fprintf(w, "Faces:    %d\n", h.Faces)
	fmt.Fprintf(w, "Normals:  %t\n", h.HasNormals)
	return nil
}

func printInfo(w io.Writer, path string, m *mesh.Mesh) {
	if path == "" {
		path = cfg.Loader.DefaultModel
	}
	kind := loader.DetectKind(path)

	fmt.Fprintln(w, "Model Information")
	fmt.Fprintln(w, "=================")
	if kind == loader.KindSphere {
		fmt.Fprintf(w, "Source: procedural sphere (%dx%d)\n\n", mesh.SphereSectors, mesh.SphereStacks)
	} else {
		fmt.Fprintf(w, "File: %s (%s)\n\n", path, kind)
	}

	fmt.Fprintln(w, "Statistics:")
	fmt.Fprintf(w, "  Vertices: %d\n", m.VertexCount())
	fmt.Fprintf(w, "  Faces: %d\n\n", m.FaceCount())

	b := m.Bounds()
	fmt.Fprintln(w, "Bounding Box:")
	if !b.Valid() {
		fmt.Fprintln(w, "  (empty)")
	} else {
		fmt.Fprintf(w, "  Min: %s\n", formatVec3(b.Min))
		fmt.Fprintf(w, "  Max: %s\n", formatVec3(b.Max))
		fmt.Fprintf(w, "  Center: %s\n", formatVec3(b.Center()))
		fmt.Fprintf(w, "  Size: %s\n", formatVec3(b.Size()))
		fmt.Fprintf(w, "  Diagonal: %.6f\n", b.Diagonal())
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Attributes:")
	fmt.Fprintf(w, "  Normals: %s\n", origin(m.Synthesized.Normals))
	fmt.Fprintf(w, "  TexCoords: %s\n", origin(m.Synthesized.TexCoords))
	if m.DiffuseTexturePath != "" {
		fmt.Fprintf(w, "  Diffuse texture: %s\n", m.DiffuseTexturePath)
	}
}

func origin(synthesized bool) string {
	if synthesized {
		return "synthesized"
	}
	return "from source"
}

func formatVec3(v math.Vec3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
