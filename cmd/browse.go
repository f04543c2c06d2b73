package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/trellis-data/trellis/internal/render"
	"github.com/trellis-data/trellis/internal/tui"
)

var (
	browseView     string
	browsePatterns []string
)

func init() {
	browseCmd.Flags().StringVar(&browseView, "view", "", "View name from the dataset config")
	browseCmd.Flags().StringArrayVarP(&browsePatterns, "pattern", "p", nil, "Field pattern to browse (repeatable; overrides the view)")
	rootCmd.AddCommand(browseCmd)
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse rows interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := loadRun(true)
		if err != nil {
			return err
		}
		if rc.Source.NumRows() == 0 {
			return fmt.Errorf("dataset %q has no rows", rc.Dataset.Name)
		}

		patterns, err := patternsFor(rc, browseView, browsePatterns)
		if err != nil {
			return err
		}

		model := tui.New(tui.Config{
			DatasetName: rc.Dataset.Name,
			Source:      rc.Source,
			Patterns:    patterns,
			Manifest:    rc.Manifest,
			DatasetPref: rc.Dataset.PreferredEmbedding,
			SessionPref: rc.Session.EmbeddingFor(rc.Dataset.Name),
			RenderOpts: render.Options{
				Styles: render.DefaultStyles(),
				Plain:  rc.Session.PlainOutput,
			},
		})

		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	},
}
