package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/silverl/distill/internal/config"
	"github.com/silverl/distill/internal/orchestrator"
)

var (
	runSince  string
	runUntil  string
	runStyles []string
	runForce  bool
	runNoPub  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: ingest, journals, blog posts, publishing",
	Long: `Run the full distill pipeline for a date range: ingest every configured
session and content source, synthesize one journal per (date, style),
synthesize weekly and thematic blog posts from the resulting journals,
then fan each post out to every enabled publisher.

Dates already up to date are skipped unless --force is given.

Examples:
  distill run --since 2026-02-01 --until 2026-02-08
  distill run --since 2026-02-08 --force
  distill run --no-publish`,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := runPipeline(cmd, orchestrator.RunOptions{
			Since:           runSince,
			Until:           runUntil,
			Styles:          runStyles,
			ForceRegenerate: runForce,
			SkipPublish:     runNoPub,
		})
		if summary != nil {
			printSummary(summary)
		}
		return err
	},
}

func init() {
	runCmd.Flags().StringVar(&runSince, "since", "", "First date to synthesize (YYYY-MM-DD, defaults to --until)")
	runCmd.Flags().StringVar(&runUntil, "until", "", "Last date to synthesize (YYYY-MM-DD, defaults to today)")
	runCmd.Flags().StringArrayVar(&runStyles, "style", nil, "Journal style(s) to synthesize (defaults to journal.style)")
	runCmd.Flags().BoolVar(&runForce, "force", false, "Regenerate even when state says the work is up to date")
	runCmd.Flags().BoolVar(&runNoPub, "no-publish", false, "Skip the publisher fan-out stage")
}

// runPipeline loads config, builds an Orchestrator, and drives one Run.
// Shared by the run/journal/blog subcommands, which differ only in their
// RunOptions.
func runPipeline(cmd *cobra.Command, opts orchestrator.RunOptions) (*orchestrator.RunSummary, error) {
	dir, err := GetWorkDir(workDir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	o, err := orchestrator.New(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return o.Run(cmd.Context(), opts)
}

// printSummary prints the end-of-run structured summary: counts per
// stage plus the list of pending dates requiring attention.
func printSummary(s *orchestrator.RunSummary) {
	fmt.Printf("sessions ingested:   %d\n", s.SessionCount)
	fmt.Printf("items ingested:      %d\n", s.ItemCount)
	fmt.Printf("digests written:     %d\n", s.DigestsWritten)
	fmt.Printf("journals written:    %d (skipped %d, pending %d)\n", s.JournalsWritten, s.JournalsSkipped, s.JournalsPending)
	fmt.Printf("blog posts written:  %d\n", s.BlogPostsWritten)
	fmt.Printf("parser diagnostics:  %d\n", s.Diagnostics)
	if len(s.PendingDates) > 0 {
		fmt.Printf("pending dates:       %v\n", s.PendingDates)
	}
}
