package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docuchat-labs/docuchat/internal/adapters/driven/storage/sqlite"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the store and repair missing schema",
	Long: `Probes the database: verifies the baseline tables, re-creates the
vector table when it is missing, and reports whether similarity search
is available.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if store == nil {
		return errors.New("store not configured")
	}

	// Re-probe so a vector table dropped since startup is rebuilt and
	// the report reflects the current state.
	probed, err := sqlite.Probe(store.Path(), store.Dimensions())
	if err != nil {
		return fmt.Errorf("probing store: %w", err)
	}
	store = probed

	info := store.Info()
	cmd.Printf("Database: %s\n", info.Path)
	cmd.Printf("Dimensions: %d\n", info.Dimensions)
	cmd.Printf("Vector search: %s\n", vectorStatus(info.VectorTable, info.Accelerated))
	if info.Degradation != "" {
		cmd.Printf("Degradation: %s\n", info.Degradation)
	}

	docs, err := documentService.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	cmd.Printf("Documents: %d\n", len(docs))
	return nil
}
