package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var schemaJSON bool

func init() {
	schemaCmd.Flags().BoolVar(&schemaJSON, "json", false, "Print the schema as JSON")
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Infer and print the dataset schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := loadRun(true)
		if err != nil {
			return err
		}
		if schemaJSON {
			encoded, err := rc.Schema.Encode()
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		}
		fmt.Print(rc.Schema.String())
		return nil
	},
}
