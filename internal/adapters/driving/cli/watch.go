package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Keep documents in sync with a directory",
	Long: `Ingests the directory, then watches it: new and changed files are
ingested or reprocessed, deleted and renamed files are removed.
Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchInclude   []string
	watchExclude   []string
	watchDebounce  time.Duration
	watchNoInitial bool
)

func init() {
	watchCmd.Flags().StringSliceVar(&watchInclude, "include", nil, "glob of files to include (repeatable)")
	watchCmd.Flags().StringSliceVar(&watchExclude, "exclude", nil, "glob of files to exclude (repeatable)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a change is applied")
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "skip the initial directory ingest")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errNoIngestion
	}

	w, err := watcher.New(watcher.Config{
		Root:     args[0],
		Include:  watchInclude,
		Exclude:  watchExclude,
		Debounce: watchDebounce,
	}, ingestionService, appLogger)
	if err != nil {
		return err
	}

	if !watchNoInitial {
		report, err := ingestionService.IngestDirectory(cmd.Context(), args[0], watchInclude, watchExclude)
		if err != nil {
			return fmt.Errorf("initial ingest failed: %w", err)
		}
		cmd.Printf("Ingested: %d  Skipped: %d  Failed: %d\n",
			len(report.Ingested), report.Skipped, len(report.Failed))
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(cmd.Context())
}
