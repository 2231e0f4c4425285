package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/silverl/distill/pkg/model"
)

var noteTarget string

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage editorial notes steering synthesis",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add an editorial note",
	Long: `Add a steering instruction for future synthesis. The target is either
empty (applies everywhere), week:<ISO-week>, or theme:<slug>.

Examples:
  distill note add "mention the conference talk"
  distill note add --target week:2026-W06 "focus on the migration"
  distill note add --target theme:testing "link the coverage write-up"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if noteTarget != "" &&
			!strings.HasPrefix(noteTarget, "week:") &&
			!strings.HasPrefix(noteTarget, "theme:") {
			return fmt.Errorf("target must be empty, week:<ISO-week>, or theme:<slug>")
		}
		st, err := editorialStore()
		if err != nil {
			return err
		}
		note := model.EditorialNote{
			ID:        ulid.Make().String(),
			Text:      strings.Join(args, " "),
			Target:    noteTarget,
			CreatedAt: time.Now(),
		}
		if err := st.AddNote(cmd.Context(), note); err != nil {
			return err
		}
		fmt.Printf("added note %s\n", note.ID)
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List editorial notes and whether each has been used",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := editorialStore()
		if err != nil {
			return err
		}
		notes, err := st.LoadNotes(cmd.Context())
		if err != nil {
			return err
		}
		for _, n := range notes {
			target := n.Target
			if target == "" {
				target = "global"
			}
			status := "unused"
			if n.Used {
				status = "used"
			}
			fmt.Printf("%s  %-12s  %-50s  %s\n", n.ID, target, truncate(n.Text, 50), status)
		}
		return nil
	},
}

func init() {
	noteAddCmd.Flags().StringVar(&noteTarget, "target", "", "Scope: week:<ISO-week> or theme:<slug> (empty = global)")
	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteListCmd)
}
