package cmd

import (
	"fmt"

	"gdl/job"

	"github.com/spf13/cobra"
)

var flagPrintQueue bool

var urlsCmd = &cobra.Command{
	Use:   "urls <url>...",
	Short: "Print file urls instead of downloading them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		handler := job.NewURLJob(cmd.OutOrStdout())
		handler.PrintQueue = flagPrintQueue
		return runJobs(args, func() job.Handler { return handler })
	},
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords <url>",
	Short: "Print the keywords available to directory and filename formats",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJobs(args, func() job.Handler {
			return job.NewKeywordJob(cmd.OutOrStdout())
		})
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash <url>...",
	Short: "Print digests of the urls and metadata an extractor yields",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, url := range args {
			handler := job.NewHashJob()
			if err := runJobs([]string{url}, func() job.Handler { return handler }); err != nil {
				return err
			}
			urls, metadata, count := handler.Sums()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n  urls      %s (%d)\n  metadata  %s\n", url, urls, count, metadata)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(urlsCmd, keywordsCmd, hashCmd)

	urlsCmd.Flags().BoolVar(&flagPrintQueue, "print-queue", false, "Print queued urls with a \"| \" prefix instead of following them")
}
