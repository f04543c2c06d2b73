package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/trellis-data/trellis/internal/tasks"
)

func init() {
	rootCmd.AddCommand(tasksCmd)
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Load the dataset and report the run's tasks",
	Long: `Runs the load and schema-inference pipeline and prints the task manifest:
one line per task with its status, progress, and elapsed message. Useful
for checking how long a dataset takes to open.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := loadRun(true)
		if err != nil {
			return err
		}

		man := rc.Tasks.Manifest()
		infos := make([]tasks.Info, 0, len(man.Tasks))
		for _, t := range man.Tasks {
			infos = append(infos, t)
		}
		sort.Slice(infos, func(i, j int) bool { return infos[i].Start.Before(infos[j].Start) })

		for _, t := range infos {
			line := fmt.Sprintf("%s\t%s\t%s", t.Name, t.Type, t.Status)
			if t.TotalLen > 0 {
				line += fmt.Sprintf("\t%d/%d", t.Progress, t.TotalLen)
			}
			if t.Message != "" {
				line += "\t" + t.Message
			}
			if t.Error != "" {
				line += "\t" + t.Error
			}
			fmt.Println(line)
		}
		return nil
	},
}
