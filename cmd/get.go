package cmd

import (
	"gdl/config"
	"gdl/database"
	"gdl/job"
	"gdl/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagArchive  string
	flagSimulate bool
)

var getCmd = &cobra.Command{
	Use:   "get <url>...",
	Short: "Download all files of the given urls",
	Long: `Get resolves each url to an extractor and downloads every file it
yields below the base directory. Queued urls are followed.

Examples:
  gdl get https://wallhaven.cc/w/8x1g8y
  gdl get -d ./wallpapers "https://wallhaven.cc/search?q=landscape"
  gdl get --archive archive.sqlite3 https://desktopography.net/exhibition-2020/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVar(&flagArchive, "archive", "", "Record downloaded files in this archive (sqlite path or mysql:// dsn)")
	getCmd.Flags().BoolVar(&flagSimulate, "simulate", false, "Print target paths without downloading")
}

func runGet(cmd *cobra.Command, args []string) error {
	dsn := flagArchive
	if dsn == "" {
		dsn = config.Env.ArchiveDSN
	}
	var archive models.Archive
	if dsn != "" {
		if err := database.Start(dsn); err != nil {
			return err
		}
		archive = database.NewArchive(database.DB)
	}

	handler := job.NewDownloadJob(archive)
	handler.Simulate = flagSimulate
	err := runJobs(args, func() job.Handler { return handler })

	downloaded, skipped, failed := handler.Stats()
	zap.S().Infof("%d downloaded, %d skipped, %d failed", downloaded, skipped, failed)
	return err
}
