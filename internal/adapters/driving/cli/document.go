package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var contentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document content",
	Args:  cobra.ExactArgs(1),
	RunE:  runContent,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id...]",
	Short: "Delete documents with their content and chunks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

var selectCmd = &cobra.Command{
	Use:   "select [doc-id...]",
	Short: "Add documents to the retrieval scope",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetSelected(cmd, args, true)
	},
}

var unselectCmd = &cobra.Command{
	Use:   "unselect [doc-id...]",
	Short: "Remove documents from the retrieval scope",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetSelected(cmd, args, false)
	},
}

var (
	listSelected  bool
	listJSON      bool
	contentChunks bool
)

func init() {
	listCmd.Flags().BoolVar(&listSelected, "selected", false, "only selected documents")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	contentCmd.Flags().BoolVar(&contentChunks, "chunks", false, "print the chunk set instead of the full text")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(unselectCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if repository == nil {
		return errNoRepository
	}

	docs, err := repository.GetAllDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if listSelected {
		kept := docs[:0]
		for i := range docs {
			if docs[i].IsSelected {
				kept = append(kept, docs[i])
			}
		}
		docs = kept
	}

	if listJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "CHUNKS", "SELECTED", "ADDED")
	for i := range docs {
		sel := ""
		if docs[i].IsSelected {
			sel = "*"
		}
		t.Row(docs[i].ID, docs[i].Name, strconv.Itoa(docs[i].ChunkCount), sel,
			docs[i].AddedAt.Local().Format(timeLayout))
	}
	cmd.Println(t.Render())
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if repository == nil {
		return errNoRepository
	}

	doc, err := repository.GetDocumentByID(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	if doc == nil {
		return notFound(args[0])
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:       %s\n", doc.Name)
	cmd.Printf("  Source:     %s\n", doc.SourcePath)
	cmd.Printf("  Processed:  %t\n", doc.IsProcessed)
	cmd.Printf("  Selected:   %t\n", doc.IsSelected)
	cmd.Printf("  Chunks:     %d\n", doc.ChunkCount)
	cmd.Printf("  Added:      %s\n", doc.AddedAt.Local().Format(timeLayout))
	if !doc.ProcessedAt.IsZero() {
		cmd.Printf("  Processed:  %s\n", doc.ProcessedAt.Local().Format(timeLayout))
	}
	cmd.Printf("  Updated:    %s\n", doc.UpdatedAt.Local().Format(timeLayout))

	if len(doc.Extra) > 0 {
		keys := make([]string, 0, len(doc.Extra))
		for k := range doc.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cmd.Println("\n  Metadata:")
		for _, k := range keys {
			cmd.Printf("    %s: %s\n", k, doc.Extra[k])
		}
	}
	return nil
}

func runContent(cmd *cobra.Command, args []string) error {
	if repository == nil {
		return errNoRepository
	}

	doc, err := repository.LoadFullContent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return notFound(args[0])
	}

	if !contentChunks {
		cmd.Println(doc.Content)
		return nil
	}
	for i := range doc.Chunks {
		c := &doc.Chunks[i]
		header := c.ID
		if c.SectionPath != "" {
			header += "  [" + c.SectionPath + "]"
		}
		cmd.Println(header)
		cmd.Println(strings.Repeat("-", len(header)))
		cmd.Println(c.Content)
		cmd.Println()
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if repository == nil {
		return errNoRepository
	}

	for _, id := range args {
		if err := repository.DeleteDocument(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", id, err)
		}
		cmd.Printf("Deleted %s\n", id)
	}
	return nil
}

func runSetSelected(cmd *cobra.Command, args []string, selected bool) error {
	if repository == nil {
		return errNoRepository
	}

	verb := "Selected"
	if !selected {
		verb = "Unselected"
	}
	for _, id := range args {
		if err := repository.SetSelected(cmd.Context(), id, selected); err != nil {
			return fmt.Errorf("failed to update %s: %w", id, err)
		}
		cmd.Printf("%s %s\n", verb, id)
	}
	return nil
}

