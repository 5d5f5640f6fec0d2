package cli

import (
	"github.com/spf13/cobra"

	"github.com/epistle-labs/epistle/internal/adapters/driving/tui"
)

var (
	runStart       string
	runEnd         string
	runSkipRefresh bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Refresh the index and start an interactive session",
	Long: `Runs the full assistant workflow: fetches mail for the configured
date range, rebuilds the index, then opens an interactive chat where
follow-up questions see the earlier turns of the conversation.

Use --no-refresh to skip fetching and chat over the existing index.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runStart, "start", "", "start date (YYYY-MM-DD, inclusive)")
	runCmd.Flags().StringVar(&runEnd, "end", "", "end date (YYYY-MM-DD, exclusive)")
	runCmd.Flags().BoolVar(&runSkipRefresh, "no-refresh", false, "skip fetching, use the existing index")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	settings, err := getSettings()
	if err != nil {
		return err
	}

	if !runSkipRefresh {
		start := runStart
		if start == "" {
			start = settings.StartDate
		}
		end := runEnd
		if end == "" {
			end = settings.EndDate
		}
		if err := validateDateFlags(start, end); err != nil {
			return err
		}

		workflow, err := getWorkflow()
		if err != nil {
			return err
		}

		printBanner(cmd, "EMAIL ASSISTANT")
		cmd.Printf("Fetching mail from %s to %s...\n", start, end)

		result, err := workflow.Refresh(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		cmd.Printf("Fetched %d messages, indexed %d documents.\n", result.Fetched, result.Indexed)
	}

	svc, err := getQueryService()
	if err != nil {
		return indexHint(err)
	}

	count, err := svc.DocumentCount(cmd.Context())
	if err != nil {
		return err
	}

	return tui.Run(svc, count)
}
