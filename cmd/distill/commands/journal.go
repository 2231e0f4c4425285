package commands

import (
	"github.com/spf13/cobra"

	"github.com/silverl/distill/internal/orchestrator"
)

var (
	journalSince  string
	journalUntil  string
	journalStyles []string
	journalForce  bool
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Ingest sources and synthesize daily journals only",
	Long: `Ingest every configured source and synthesize one journal per
(date, style) in the range, without running blog synthesis or
publishing. Use 'distill blog' and 'distill publish' for those stages.

Examples:
  distill journal --since 2026-02-01 --until 2026-02-08
  distill journal --force --style dev-journal`,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := runPipeline(cmd, orchestrator.RunOptions{
			Since:           journalSince,
			Until:           journalUntil,
			Styles:          journalStyles,
			ForceRegenerate: journalForce,
			SkipBlogs:       true,
			SkipPublish:     true,
		})
		if summary != nil {
			printSummary(summary)
		}
		return err
	},
}

func init() {
	journalCmd.Flags().StringVar(&journalSince, "since", "", "First date to synthesize (YYYY-MM-DD, defaults to --until)")
	journalCmd.Flags().StringVar(&journalUntil, "until", "", "Last date to synthesize (YYYY-MM-DD, defaults to today)")
	journalCmd.Flags().StringArrayVar(&journalStyles, "style", nil, "Journal style(s) to synthesize (defaults to journal.style)")
	journalCmd.Flags().BoolVar(&journalForce, "force", false, "Regenerate even when state says the journal is up to date")
}
