package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider, chunking, and search
options. Settings persist to the config file and apply to future runs.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Set the API key",
	Long:  `Prompts for the API key without echoing it to the terminal.`,
	RunE:  runSettingsKey,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	RunE:  runSettingsEmbedding,
}

var settingsUploadCmd = &cobra.Command{
	Use:   "upload [directory]",
	Short: "Set the upload staging directory watched by `docuchat watch`",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsUpload,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsKeyCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsUploadCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	o := configStore.Overrides()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[OpenAI]")
	if o.OpenAIAPIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(o.OpenAIAPIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Base URL: %s\n", orDefault(o.RAGBaseURL, domain.DefaultRAGBaseURL))
	cmd.Printf("  Model: %s\n", orDefault(o.RAGModel, domain.DefaultRAGModel))
	if o.RAGAPIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(o.RAGAPIKey))
	} else {
		cmd.Printf("  API Key: (falls back to OpenAI key)\n")
	}
	if o.EmbeddingDimensions != nil {
		cmd.Printf("  Dimensions: %d\n", *o.EmbeddingDimensions)
	}
	cmd.Println()

	cmd.Println("[Search]")
	if o.SimilarityThreshold != nil {
		cmd.Printf("  Similarity threshold: %.2f\n", *o.SimilarityThreshold)
	} else {
		cmd.Printf("  Similarity threshold: %.2f (default)\n", float64(domain.DefaultSimilarityThreshold))
	}
	cmd.Println()

	cmd.Println("[Uploads]")
	cmd.Printf("  Directory: %s\n", orDefault(o.UploadDirectory, domain.DefaultUploadDirectory))
	cmd.Println()

	if store != nil {
		info := store.Info()
		cmd.Println("[Store]")
		cmd.Printf("  Path: %s\n", info.Path)
		cmd.Printf("  Dimensions: %d\n", info.Dimensions)
		cmd.Printf("  Vector search: %s\n", vectorStatus(info.VectorTable, info.Accelerated))
		if info.Degradation != "" {
			cmd.Printf("  Degradation: %s\n", info.Degradation)
		}
	}
	return nil
}

func runSettingsKey(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Print("API key: ")
	key := readPassword()
	cmd.Println()
	if key == "" {
		return errors.New("no key entered")
	}

	if err := configStore.SetAPIKey(key); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}
	cmd.Println("API key saved.")
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Printf("Base URL [%s]: ", domain.DefaultRAGBaseURL)
	baseURL := readLine(reader)

	cmd.Printf("Model [%s]: ", domain.DefaultRAGModel)
	model := readLine(reader)

	cmd.Print("API key (empty to fall back to OpenAI key): ")
	apiKey := readPassword()
	cmd.Println()

	if err := configStore.SetEmbedding(baseURL, model, apiKey); err != nil {
		return fmt.Errorf("saving embedding settings: %w", err)
	}
	cmd.Println("Embedding settings saved.")
	return nil
}

func runSettingsUpload(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	if err := configStore.SetUploadDirectory(args[0]); err != nil {
		return fmt.Errorf("saving upload directory: %w", err)
	}
	cmd.Printf("Upload directory set to %s\n", args[0])
	return nil
}

// Helper functions.

func vectorStatus(table, accelerated bool) string {
	switch {
	case !table:
		return "unavailable"
	case !accelerated:
		return "available (ranking in Go)"
	default:
		return "available (accelerated)"
	}
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def + " (default)"
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
