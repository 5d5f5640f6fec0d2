package cli

import (
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a single question about your indexed mail",
	Long: `Answers one natural-language question using retrieval-augmented
generation over the indexed mail, then exits. Use 'epistle run' for an
interactive session with conversation memory.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	svc, err := getQueryService()
	if err != nil {
		return indexHint(err)
	}

	answer, err := svc.Answer(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	cmd.Println(answer)
	return nil
}
