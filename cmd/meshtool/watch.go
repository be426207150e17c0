package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/loader"
	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/internal/watcher"
)

var watchExport string

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Reload a model whenever it changes",
	Long: `Load a model and reload it every time the file is written. A reload that
fails keeps the previous model. With --export the current model is written
out again after every successful reload.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchExport, "export", "", "Re-export to this .gltf/.glb path after each reload")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	slot := loader.NewSlot(loader.New(cfg.Loader))
	reload := func(p string) {
		if !slot.Load(p) {
			fmt.Fprintf(out, "Reload of %s failed, keeping previous model\n", p)
			return
		}
		s := slot.Stats()
		fmt.Fprintf(out, "Loaded %s: %d vertices, %d faces\n", s.Path, s.Vertices, s.Faces)

		if watchExport != "" {
			if err := exportMesh(watchExport, slot.Current(), false); err != nil {
				logger.Error("export after reload failed", zap.String("path", watchExport), zap.Error(err))
			}
		}
	}

	reload(path)

	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Watch([]string{path}, reload); err != nil {
		return err
	}
	fw.Start()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", path)
	<-ctx.Done()
	return nil
}
