package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/loader"
	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/formats"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

var exportFit bool

var exportCmd = &cobra.Command{
	Use:   "export <file> [output]",
	Short: "Export a model as glTF",
	Long: `Load a model and write it as .gltf (JSON with an embedded buffer) or .glb.
Without an output path the file is written to the configured output
directory in the configured format. PLY output is not supported.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportFit, "fit", false, "Center the model and scale it to a unit sphere")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	src := args[0]
	out := ""
	if len(args) > 1 {
		out = args[1]
	} else {
		out = outputPath(src, cfg.Export.OutputDir, cfg.Export.Format)
	}

	m, err := loader.New(cfg.Loader).Load(src)
	if err != nil {
		return err
	}

	if err := exportMesh(out, m, exportFit); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d vertices, %d faces)\n", out, m.VertexCount(), m.FaceCount())
	return nil
}

// outputPath derives <dir>/<source name>.<format> for a source model.
func outputPath(src, dir, format string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if loader.DetectKind(src) == loader.KindSphere {
		base = "sphere"
	}
	return filepath.Join(dir, base+"."+strings.TrimPrefix(format, "."))
}

func exportMesh(path string, m *mesh.Mesh, fit bool) error {
	if fit {
		m = m.Fit()
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		if err := formats.WriteGLTF(path, m); err != nil {
			return fmt.Errorf("exporting %s: %w", path, err)
		}
	case ".ply":
		return formats.WritePLY(io.Discard, m)
	default:
		return fmt.Errorf("unknown export format %q", filepath.Ext(path))
	}

	logger.Info("model exported", zap.String("path", path), zap.Bool("fit", fit))
	return nil
}
