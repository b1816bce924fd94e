package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [path...]",
	Short: "Ingest one or more files",
	Long: `Extracts the text of each file, splits it into chunks, embeds the
chunks and stores the result as a new document.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var addDirCmd = &cobra.Command{
	Use:   "add-dir [dir]",
	Short: "Ingest every supported file under a directory",
	Long: `Walks the directory and ingests every supported file. Files already
ingested from the same path are reprocessed instead of duplicated.

Patterns use doublestar syntax and match the path relative to the directory:
  docrag add-dir ./notes --include "**/*.md" --exclude "drafts/**"`,
	Args: cobra.ExactArgs(1),
	RunE: runAddDir,
}

var reprocessCmd = &cobra.Command{
	Use:   "reprocess [doc-id]",
	Short: "Re-read, re-chunk and re-embed a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runReprocess,
}

var (
	addDirInclude []string
	addDirExclude []string
)

func init() {
	addDirCmd.Flags().StringSliceVar(&addDirInclude, "include", nil, "glob of files to include (repeatable)")
	addDirCmd.Flags().StringSliceVar(&addDirExclude, "exclude", nil, "glob of files to exclude (repeatable)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(addDirCmd)
	rootCmd.AddCommand(reprocessCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errNoIngestion
	}

	var failed int
	for _, path := range args {
		doc, err := ingestionService.IngestFile(cmd.Context(), path)
		if err != nil {
			cmd.PrintErrf("Failed to add %s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("Added %s (%s, %d chunks)\n", doc.Name, doc.ID, len(doc.Chunks))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func runAddDir(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errNoIngestion
	}

	report, err := ingestionService.IngestDirectory(cmd.Context(), args[0], addDirInclude, addDirExclude)
	if err != nil {
		return fmt.Errorf("failed to ingest directory: %w", err)
	}

	for i := range report.Ingested {
		cmd.Printf("  %s  %s\n", report.Ingested[i].ID, report.Ingested[i].SourcePath)
	}
	if len(report.Failed) > 0 {
		paths := make([]string, 0, len(report.Failed))
		for p := range report.Failed {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		cmd.Println("\nFailed:")
		for _, p := range paths {
			cmd.Printf("  %s: %v\n", p, report.Failed[p])
		}
	}

	cmd.Printf("\nIngested: %d  Skipped: %d  Failed: %d\n",
		len(report.Ingested), report.Skipped, len(report.Failed))
	return nil
}

func runReprocess(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errNoIngestion
	}

	doc, err := ingestionService.ReprocessDocument(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to reprocess document: %w", err)
	}
	cmd.Printf("Reprocessed %s (%d chunks)\n", doc.ID, len(doc.Chunks))
	return nil
}
