package cli

import (
	"errors"

	"github.com/spf13/cobra"

	sqliteindex "github.com/epistle-labs/epistle/internal/adapters/driven/index/sqlite"
	"github.com/epistle-labs/epistle/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and index state",
	Long: `Shows the effective configuration and the state of the persistent
index: collection name, recorded embedding model and document count.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	settings, err := getSettings()
	if err != nil {
		return err
	}

	printBanner(cmd, "EPISTLE STATUS")
	cmd.Printf("Account:          %s\n", settings.EmailID)
	cmd.Printf("IMAP server:      %s:%s\n", settings.IMAPHost, settings.IMAPPort)
	cmd.Printf("Date range:       %s to %s (end exclusive)\n", settings.StartDate, settings.EndDate)
	cmd.Printf("Provider:         %s\n", settings.Provider)
	cmd.Printf("LLM model:        %s\n", settings.LLMModel)
	cmd.Printf("Embedding model:  %s\n", settings.EmbeddingModel)
	cmd.Printf("Index directory:  %s\n", settings.IndexDir)
	cmd.Println()

	index, err := sqliteindex.Open(settings.IndexDir, settings.Collection)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotFound) {
			cmd.Println("Index: not built yet. Run 'epistle refresh' to build it.")
			return nil
		}
		return err
	}
	defer index.Close()

	ctx := cmd.Context()
	info, err := index.Info(ctx)
	if err != nil {
		return err
	}
	count, err := index.Count(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Collection:       %s\n", info.Collection)
	cmd.Printf("Indexed with:     %s\n", info.EmbeddingModel)
	cmd.Printf("Documents:        %d\n", count)
	return nil
}
