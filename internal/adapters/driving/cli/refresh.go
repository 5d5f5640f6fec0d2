package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/epistle-labs/epistle/internal/core/domain"
)

var (
	refreshStart string
	refreshEnd   string
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch mail and rebuild the index",
	Long: `Fetches messages from the configured mailbox for a date range,
normalises them and adds them to the vector index.

Dates use the YYYY-MM-DD format. The end date is exclusive, matching
the IMAP BEFORE search criterion. Without flags the configured
START_DATE and END_DATE are used.`,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().StringVar(&refreshStart, "start", "", "start date (YYYY-MM-DD, inclusive)")
	refreshCmd.Flags().StringVar(&refreshEnd, "end", "", "end date (YYYY-MM-DD, exclusive)")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	settings, err := getSettings()
	if err != nil {
		return err
	}

	start := refreshStart
	if start == "" {
		start = settings.StartDate
	}
	end := refreshEnd
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

	printBanner(cmd, "EMAIL ASSISTANT - REFRESH")
	cmd.Printf("Fetching mail from %s to %s...\n", start, end)

	result, err := workflow.Refresh(cmd.Context(), start, end)
	if err != nil {
		return err
	}

	if result.Fetched == 0 {
		cmd.Println("No messages found in the requested range.")
		return nil
	}

	cmd.Printf("Fetched %d messages, indexed %d documents.\n", result.Fetched, result.Indexed)
	return nil
}

// validateDateFlags checks both dates parse and the range is ordered.
func validateDateFlags(start, end string) error {
	startT, err := time.Parse(domain.DateLayout, start)
	if err != nil {
		return fmt.Errorf("%w: start date %q is not YYYY-MM-DD", domain.ErrInvalidConfig, start)
	}
	endT, err := time.Parse(domain.DateLayout, end)
	if err != nil {
		return fmt.Errorf("%w: end date %q is not YYYY-MM-DD", domain.ErrInvalidConfig, end)
	}
	if !endT.After(startT) {
		return fmt.Errorf("%w: end date %s must be after start date %s", domain.ErrInvalidConfig, end, start)
	}
	return nil
}
