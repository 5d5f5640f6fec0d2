// Package cli implements the epistle command line interface.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/epistle-labs/epistle/internal/adapters/driven/ai"
	sqliteindex "github.com/epistle-labs/epistle/internal/adapters/driven/index/sqlite"
	imapmailbox "github.com/epistle-labs/epistle/internal/adapters/driven/mailbox/imap"
	"github.com/epistle-labs/epistle/internal/config"
	"github.com/epistle-labs/epistle/internal/core/domain"
	"github.com/epistle-labs/epistle/internal/core/ports/driving"
	"github.com/epistle-labs/epistle/internal/core/services"
	"github.com/epistle-labs/epistle/internal/logger"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

var (
	verboseFlag bool
	configFlag  string
)

// Injectable services. Commands wire them from configuration on first
// use; tests substitute mocks.
var (
	queryService    driving.QueryService
	workflowService driving.Workflow
)

// loadedSettings caches the settings for the current invocation.
var loadedSettings *domain.Settings

var rootCmd = &cobra.Command{
	Use:   "epistle",
	Short: "Ask questions about your email",
	Long: `Epistle fetches mail over IMAP, indexes it with vector embeddings
and answers natural-language questions about it using a local or
cloud language model.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default ~/.epistle/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getSettings loads and validates the configuration once per invocation.
func getSettings() (domain.Settings, error) {
	if loadedSettings != nil {
		return *loadedSettings, nil
	}

	settings, err := config.Load(configFlag)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}

	loadedSettings = &settings
	return settings, nil
}

// getWorkflow returns the injected workflow or wires one from
// configuration: IMAP mailbox, embedding service and a writable index.
func getWorkflow() (driving.Workflow, error) {
	if workflowService != nil {
		return workflowService, nil
	}

	settings, err := getSettings()
	if err != nil {
		return nil, err
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	index, err := sqliteindex.Create(settings.IndexDir, settings.Collection, embedder.ModelName())
	if err != nil {
		return nil, err
	}

	mailbox := imapmailbox.NewClient(imapmailbox.Config{
		Host:     settings.IMAPHost,
		Port:     settings.IMAPPort,
		Username: settings.EmailID,
		Password: settings.AppPassword,
	})

	workflowService = services.NewWorkflow(mailbox, services.NewIndexer(embedder, index))
	return workflowService, nil
}

// getQueryService returns the injected query service or wires one from
// configuration. It requires an existing index; the caller sees
// domain.ErrIndexNotFound when none has been built yet.
func getQueryService() (driving.QueryService, error) {
	if queryService != nil {
		return queryService, nil
	}

	settings, err := getSettings()
	if err != nil {
		return nil, err
	}

	index, err := sqliteindex.Open(settings.IndexDir, settings.Collection)
	if err != nil {
		return nil, err
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(settings)
	if err != nil {
		index.Close()
		return nil, err
	}

	llm, err := ai.CreateAndValidateLLMService(settings)
	if err != nil {
		index.Close()
		embedder.Close()
		return nil, err
	}

	queryService = services.NewQueryEngine(index, embedder, llm,
		settings.RetrievalCount, settings.Temperature)
	return queryService, nil
}

// printBanner writes a boxed section title.
func printBanner(cmd *cobra.Command, title string) {
	rule := strings.Repeat("=", 60)
	cmd.Println(rule)
	cmd.Println(title)
	cmd.Println(rule)
}

// indexHint rewrites a missing-index error into actionable guidance.
func indexHint(err error) error {
	if errors.Is(err, domain.ErrIndexNotFound) {
		return fmt.Errorf("%w\nRun 'epistle refresh' to build the index first", err)
	}
	return err
}
