package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/silverl/distill/internal/config"
	"github.com/silverl/distill/internal/editorial"
	"github.com/silverl/distill/internal/storage"
	"github.com/silverl/distill/pkg/model"
)

var seedTags []string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Manage idea seeds fed into journal synthesis",
}

var seedAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add an idea seed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := editorialStore()
		if err != nil {
			return err
		}
		seed := model.Seed{
			ID:        ulid.Make().String(),
			Text:      strings.Join(args, " "),
			Tags:      model.NewStringSet(seedTags...),
			CreatedAt: time.Now(),
		}
		if err := st.AddSeed(cmd.Context(), seed); err != nil {
			return err
		}
		fmt.Printf("added seed %s\n", seed.ID)
		return nil
	},
}

var seedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List seeds and whether each has been used",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := editorialStore()
		if err != nil {
			return err
		}
		seeds, err := st.LoadSeeds(cmd.Context())
		if err != nil {
			return err
		}
		for _, s := range seeds {
			status := "unused"
			if s.Used {
				status = "used in " + s.UsedIn
			}
			fmt.Printf("%s  %-60s  %s\n", s.ID, truncate(s.Text, 60), status)
		}
		return nil
	},
}

func init() {
	seedAddCmd.Flags().StringArrayVar(&seedTags, "tag", nil, "Tag(s) to attach to the seed")
	seedCmd.AddCommand(seedAddCmd)
	seedCmd.AddCommand(seedListCmd)
}

// editorialStore opens the seed/note store rooted at the configured
// output directory, without building the rest of the pipeline.
func editorialStore() (*editorial.Store, error) {
	dir, err := GetWorkDir(workDir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	return editorial.New(storage.New(cfg.Output.Directory)), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
