package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/silverl/distill/internal/config"
	"github.com/silverl/distill/internal/orchestrator"
)

var publishCmd = &cobra.Command{
	Use:   "publish [slug...]",
	Short: "Fan existing blog posts out to the configured platforms",
	Long: `Deliver already-synthesized blog posts to every enabled publisher.
With no arguments every post recorded in blog state is published;
otherwise only the named slugs are.

Examples:
  distill publish
  distill publish weekly-2026-W06`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := GetWorkDir(workDir)
		if err != nil {
			return err
		}
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		o, err := orchestrator.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		published, err := o.PublishExisting(cmd.Context(), args)
		for _, slug := range published {
			fmt.Printf("published %s\n", slug)
		}
		return err
	},
}
