package cli

import (
	"github.com/kdduha/sportsclass/internal/bench"
	"github.com/spf13/cobra"
)

var benchDir string

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Classify every image in a directory and print latency per format",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeCache, err := newClassifyService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeCache()

		results, err := bench.Run(cmd.Context(), logger, benchDir, svc)
		if err != nil {
			return err
		}
		bench.WriteMarkdown(cmd.OutOrStdout(), results)
		return nil
	},
}

func init() {
	benchCmd.Flags().StringVarP(&benchDir, "dir", "d", "data", "directory with images")
}
