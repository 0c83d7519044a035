package cmd

import (
	"fmt"
	"time"

	"gdl/config"
	"gdl/database"
	"gdl/ext"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var flagCategory string

var extractorsCmd = &cobra.Command{
	Use:   "extractors",
	Short: "List the supported sites in matching order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, extractor := range ext.ByCategory(flagCategory) {
			fmt.Fprintf(out, "%s\n", extractor.CodeName)
			fmt.Fprintf(out, "  %s\n", extractor.Name)
			if extractor.Example != "" {
				fmt.Fprintf(out, "  Example: %s\n", extractor.Example)
			}
			if config.GetExtractorConfig(extractor).IsDisabled {
				fmt.Fprintln(out, "  (disabled)")
			}
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the download archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := flagArchive
		if dsn == "" {
			dsn = config.Env.ArchiveDSN
		}
		if err := database.Start(dsn); err != nil {
			return err
		}
		total, err := database.GetArchiveCount()
		if err != nil {
			return err
		}
		since := time.Now().Add(-24 * time.Hour)
		recent, err := database.GetArchiveCountSince(since)
		if err != nil {
			return err
		}
		counts, err := database.GetArchiveCountByExtractor()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s entries, %s since %s\n",
			humanize.Comma(total), humanize.Comma(recent), humanize.Time(since))
		for _, c := range counts {
			fmt.Fprintf(out, "  %-32s %s\n", c.Extractor, humanize.Comma(c.Count))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractorsCmd, statsCmd)

	extractorsCmd.Flags().StringVar(&flagCategory, "category", "", "Only list extractors of this category")
	statsCmd.Flags().StringVar(&flagArchive, "archive", "", "Archive to read (sqlite path or mysql:// dsn)")
}
