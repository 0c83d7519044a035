// Package cmd implements the gdl command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gdl/config"
	"gdl/enums"
	"gdl/job"
	"gdl/metrics"
	"gdl/util"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	flagDestination string
	flagOptions     []string
	flagQueueMode   string
	flagParallel    int
)

// Metrics is shared by every job of the process.
var Metrics = metrics.NewMetrics(nil)

var rootCmd = &cobra.Command{
	Use:   "gdl",
	Short: "gdl downloads image galleries and collections",
	Long: `gdl turns gallery, search and listing urls into a stream of files,
directories and further urls, and stores or prints the result.

Usage:
  gdl get <url>... [flags]
  gdl urls <url>...`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: applyFlags,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&flagDestination, "destination", "d", "", "Target base directory")
	flags.StringArrayVarP(&flagOptions, "option", "o", nil, "Additional option as key=value, e.g. extractor.wallhaven.api-key=KEY")
	flags.StringVar(&flagQueueMode, "queue-mode", "", "Order of queued urls: depth or breadth")
	flags.IntVar(&flagParallel, "parallel-queue", 0, "Queued urls run in parallel in breadth mode")
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var coded exitError
		if errors.As(err, &coded) {
			return int(coded)
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// exitError carries a non-zero exit code out of a command.
type exitError int

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func applyFlags(cmd *cobra.Command, args []string) error {
	if flagDestination != "" {
		config.Set(nil, "base-directory", flagDestination)
	}
	if flagQueueMode != "" {
		mode := enums.QueueMode(flagQueueMode)
		if mode != enums.QueueModeDepth && mode != enums.QueueModeBreadth {
			return fmt.Errorf("invalid queue mode %q", flagQueueMode)
		}
		config.Set([]string{"extractor"}, "queue-mode", flagQueueMode)
	}
	if flagParallel > 0 {
		config.Set([]string{"extractor"}, "parallel-queue", flagParallel)
	}
	for _, option := range flagOptions {
		if err := setOption(option); err != nil {
			return err
		}
	}
	return nil
}

// setOption stores "a.b.key=value". The value is parsed as yaml so
// numbers, booleans and lists keep their type.
func setOption(option string) error {
	key, raw, ok := strings.Cut(option, "=")
	if !ok || key == "" {
		return fmt.Errorf("invalid option %q, expected key=value", option)
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	path := strings.Split(key, ".")
	config.Set(path[:len(path)-1], path[len(path)-1], value)
	return nil
}

// runJobs runs one root job per url and combines their exit codes.
func runJobs(urls []string, newHandler func() job.Handler) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := job.OptionsFromConfig()
	opts.Metrics = Metrics

	code := 0
	for _, url := range urls {
		j, err := job.New(url, newHandler(), opts)
		if err != nil {
			zap.S().Errorf("%v", err)
			code |= util.ExitCode(err)
			continue
		}
		outcome := j.Run(ctx)
		code |= outcome.ExitCode()
		if outcome.Terminated() || ctx.Err() != nil {
			break
		}
	}
	if code != 0 {
		return exitError(code)
	}
	return nil
}
