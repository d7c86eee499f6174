package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docuchat-labs/docuchat/internal/adapters/driven/watch"
	"github.com/docuchat-labs/docuchat/internal/core/domain"
)

var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and ingest new files",
	Long: `Watches the upload directory and ingests every file dropped into
it. Files already present are ingested on startup. Runs until
interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "directory to watch (default from config, then ./uploads)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	dir := watchDir
	if dir == "" && configStore != nil {
		dir = configStore.Overrides().UploadDirectory
	}
	if dir == "" {
		dir = domain.DefaultUploadDirectory
	}

	watcher, err := watch.New(dir, documentService)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	for {
		select {
		case <-sigs:
			cmd.Println("\nStopping.")
			return nil
		case ev := <-watcher.Events():
			if ev.Err != nil {
				cmd.Printf("%s: %v\n", ev.Path, ev.Err)
				continue
			}
			if ev.Result.Deduplicated {
				cmd.Printf("%s: already stored\n", ev.Path)
				continue
			}
			cmd.Printf("%s: stored as %s (%d chunks, %d embedded)\n",
				ev.Path, ev.Result.Document.ID, ev.Result.Chunks, ev.Result.Embedded)
		}
	}
}
