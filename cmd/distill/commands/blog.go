package commands

import (
	"github.com/spf13/cobra"

	"github.com/silverl/distill/internal/orchestrator"
)

var (
	blogSince string
	blogUntil string
	blogForce bool
)

var blogCmd = &cobra.Command{
	Use:   "blog",
	Short: "Synthesize weekly and thematic blog posts from existing journals",
	Long: `Run the pipeline through blog synthesis without publishing. Journal
synthesis for the range still runs first, but dates whose journals are
already up to date are read back from disk rather than regenerated.

Examples:
  distill blog --since 2026-02-01 --until 2026-02-08
  distill blog --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := runPipeline(cmd, orchestrator.RunOptions{
			Since:           blogSince,
			Until:           blogUntil,
			ForceRegenerate: blogForce,
			SkipPublish:     true,
		})
		if summary != nil {
			printSummary(summary)
		}
		return err
	},
}

func init() {
	blogCmd.Flags().StringVar(&blogSince, "since", "", "First journal date to aggregate (YYYY-MM-DD, defaults to --until)")
	blogCmd.Flags().StringVar(&blogUntil, "until", "", "Last journal date to aggregate (YYYY-MM-DD, defaults to today)")
	blogCmd.Flags().BoolVar(&blogForce, "force", false, "Regenerate even when state says the post is up to date")
}
