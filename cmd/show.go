package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trellis-data/trellis/internal/render"
)

var (
	showRow      int
	showView     string
	showPatterns []string
	showPlain    bool
	showMaxLen   int
)

func init() {
	showCmd.Flags().IntVar(&showRow, "row", 0, "Row ordinal to render")
	showCmd.Flags().StringVar(&showView, "view", "", "View name from the dataset config")
	showCmd.Flags().StringArrayVarP(&showPatterns, "pattern", "p", nil, "Field pattern to render (repeatable; overrides the view)")
	showCmd.Flags().BoolVar(&showPlain, "plain", false, "Disable styling")
	showCmd.Flags().IntVar(&showMaxLen, "max-len", 0, "Truncate values longer than this")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render one row as nested field blocks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := loadRun(true)
		if err != nil {
			return err
		}

		patterns, err := patternsFor(rc, showView, showPatterns)
		if err != nil {
			return err
		}

		row, err := rc.Source.Row(showRow)
		if err != nil {
			return err
		}

		opts := render.Options{
			Styles:      render.DefaultStyles(),
			Plain:       showPlain || rc.Session.PlainOutput,
			MaxValueLen: showMaxLen,
		}
		out, err := render.RenderRow(row, patterns, opts)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}
