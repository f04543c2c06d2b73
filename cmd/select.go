package cmd

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/trellis-data/trellis/api"
	"github.com/trellis-data/trellis/internal/selection"
	"github.com/trellis-data/trellis/internal/walk"
)

var (
	selectRow      int
	selectJSON     bool
	selectMatching bool
	selectFilters  []string
	selectExcludes []string
)

func init() {
	selectCmd.Flags().IntVar(&selectRow, "row", -1, "Resolve against a single row ordinal (default: all rows)")
	selectCmd.Flags().BoolVar(&selectJSON, "json", false, "Print resolved nodes as JSON")
	selectCmd.Flags().BoolVar(&selectMatching, "matching", false, "Print only the ordinals of rows with at least one match")
	selectCmd.Flags().StringArrayVar(&selectFilters, "filter", nil, "Keep only rows matching this extra pattern (repeatable)")
	selectCmd.Flags().StringArrayVar(&selectExcludes, "exclude", nil, "Drop rows matching this pattern (repeatable)")
	rootCmd.AddCommand(selectCmd)
}

var selectCmd = &cobra.Command{
	Use:   "select PATTERN",
	Short: "Resolve a wildcard field pattern against dataset rows",
	Long: `Resolves PATTERN (e.g. "reviews.*.text") against rows and prints each
concrete path with its value. Wildcards fan out over array elements;
rows where the pattern matches nothing are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := api.ParsePath(args[0])
		if err := pattern.Validate(); err != nil {
			return fmt.Errorf("pattern %q: %w", args[0], err)
		}

		rc, err := loadRun(false)
		if err != nil {
			return err
		}

		filters := []selection.Filter{{Pattern: pattern}}
		for _, f := range selectFilters {
			p := api.ParsePath(f)
			if err := p.Validate(); err != nil {
				return fmt.Errorf("filter %q: %w", f, err)
			}
			filters = append(filters, selection.Filter{Pattern: p})
		}
		for _, f := range selectExcludes {
			p := api.ParsePath(f)
			if err := p.Validate(); err != nil {
				return fmt.Errorf("exclude %q: %w", f, err)
			}
			filters = append(filters, selection.Filter{Pattern: p, Negate: true})
		}

		rows, err := selection.Apply(rc.Source, filters)
		if err != nil {
			return err
		}

		if selectMatching {
			for _, ord := range selection.Ordinals(rows) {
				fmt.Printf("%d\t%s\n", ord, rc.Source.RowID(int(ord)))
			}
			return nil
		}

		out := []any{}

		for _, ord := range selection.Ordinals(rows) {
			i := int(ord)
			if selectRow >= 0 && i != selectRow {
				continue
			}
			row, err := rc.Source.Row(i)
			if err != nil {
				return err
			}
			nodes, err := walk.Resolve(row, pattern)
			if err != nil {
				return err
			}
			for _, n := range nodes {
				if selectJSON {
					out = append(out, map[string]any{
						"row":   i,
						"rowid": rc.Source.RowID(i),
						"path":  n.Path.String(),
						"value": n.Value.Interface(),
					})
				} else {
					fmt.Printf("%d\t%s\t%s\n", i, n.Path, n.Value)
				}
			}
		}

		if selectJSON {
			fmt.Println(oj.JSON(out, 2))
		}
		return nil
	},
}
