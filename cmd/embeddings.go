package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trellis-data/trellis/internal/manifest"
	"github.com/trellis-data/trellis/internal/schema"
)

func init() {
	rootCmd.AddCommand(embeddingsCmd)
}

var embeddingsCmd = &cobra.Command{
	Use:   "embeddings",
	Short: "Show computed embeddings and the active pick per string field",
	Long: `For every string leaf in the schema, lists the embeddings the manifest
declares as computed and which one the current preferences select
(session preference wins over the dataset's, which wins over the first
computed one).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := loadRun(true)
		if err != nil {
			return err
		}

		sessionPref := rc.Session.EmbeddingFor(rc.Dataset.Name)
		for _, leaf := range rc.Schema.LeafsOfType(schema.DTypeString) {
			var computed []string
			if rc.Manifest != nil {
				computed = rc.Manifest.Embeddings(leaf.Path)
			}
			picked, ok := manifest.Pick(computed, rc.Dataset.PreferredEmbedding, sessionPref)
			if !ok {
				fmt.Printf("%s\t(none computed)\n", leaf.Path)
				continue
			}
			fmt.Printf("%s\t%s\t[%s]\n", leaf.Path, picked, strings.Join(computed, ", "))
		}
		return nil
	},
}
