package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docuchat-labs/docuchat/internal/normalisers"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]...",
	Short: "Ingest documents into the store",
	Long: `Reads each file, stores it with its chunks, and embeds the chunks
when an embedding provider is configured. Files whose content was
already ingested are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		result, err := documentService.Ingest(ctx, filepath.Base(path), normalisers.MediaTypeForPath(path), content)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}

		if result.Deduplicated {
			cmd.Printf("%s: identical content already stored as %s\n", path, result.Document.ID)
			continue
		}
		cmd.Printf("%s: stored as %s (%d chunks, %d embedded)\n",
			path, result.Document.ID, result.Chunks, result.Embedded)
	}
	return nil
}
