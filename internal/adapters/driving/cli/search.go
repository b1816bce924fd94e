package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var (
	searchLimit    int
	searchJSON     bool
	searchDocs     []string
	searchSelected bool
	scoreDocs      []string
	scoreSelected  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find the chunks most relevant to a query",
	Long: `Embeds the query and ranks stored chunks by cosine similarity.
Results below retrieval.min_score are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var scoreCmd = &cobra.Command{
	Use:   "score [query] [chunk-id]",
	Short: "Print the relevance of one chunk to a query",
	Long: `Scores one chunk against a query without storing anything.
With --doc or --selected a chunk owned by any other document is reported
as not found.`,
	Args: cobra.ExactArgs(2),
	RunE: runScore,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringSliceVar(&searchDocs, "doc", nil, "restrict to these document ids (repeatable)")
	searchCmd.Flags().BoolVar(&searchSelected, "selected", false, "restrict to selected documents")
	searchCmd.MarkFlagsMutuallyExclusive("doc", "selected")

	scoreCmd.Flags().StringSliceVar(&scoreDocs, "doc", nil, "only accept chunks of these document ids (repeatable)")
	scoreCmd.Flags().BoolVar(&scoreSelected, "selected", false, "only accept chunks of selected documents")
	scoreCmd.MarkFlagsMutuallyExclusive("doc", "selected")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(scoreCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errNoRetrieval
	}

	var (
		results []domain.SimilarityResult
		err     error
	)
	if searchSelected {
		results, err = retrievalService.RetrieveFromSelected(cmd.Context(), args[0], searchLimit)
	} else {
		results, err = retrievalService.RetrieveRelevantChunks(cmd.Context(), args[0], searchDocs, searchLimit)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchText(cmd, results)
}

type searchResultJSON struct {
	ChunkID     string  `json:"chunk_id"`
	DocumentID  string  `json:"document_id"`
	Source      string  `json:"source"`
	SectionPath string  `json:"section_path,omitempty"`
	Score       float64 `json:"score"`
	Content     string  `json:"content"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SimilarityResult) error {
	out := make([]searchResultJSON, len(results))
	for i := range results {
		c := &results[i].Chunk
		out[i] = searchResultJSON{
			ChunkID:     c.ID,
			DocumentID:  c.DocumentID,
			Source:      c.Source,
			SectionPath: c.SectionPath,
			Score:       results[i].Score,
			Content:     c.Content,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.SimilarityResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i := range results {
		c := &results[i].Chunk
		// Format: [N] source > section (score)
		label := c.Source
		if c.SectionPath != "" {
			label += " > " + c.SectionPath
		}
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, label, results[i].Score)
		cmd.Printf("      %s\n", c.ID)
		cmd.Printf("      %s\n\n", snippet(c.Content, 200))
	}
	return nil
}

func runScore(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errNoRetrieval
	}
	if repository == nil {
		return errNoRepository
	}

	allowed := scoreDocs
	if scoreSelected {
		ids, err := repository.SelectedDocumentIDs(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load selection: %w", err)
		}
		if len(ids) == 0 {
			return fmt.Errorf("chunk %s: %w", args[1], domain.ErrNotFound)
		}
		allowed = ids
	}

	chunk, err := repository.GetChunkByID(cmd.Context(), args[1], allowed...)
	if err != nil {
		return fmt.Errorf("failed to load chunk: %w", err)
	}
	if chunk == nil {
		return fmt.Errorf("chunk %s: %w", args[1], domain.ErrNotFound)
	}

	score, err := retrievalService.CalculateRelevanceScore(cmd.Context(), args[0], *chunk)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}
	cmd.Printf("%.4f\n", score)
	return nil
}

// snippet flattens whitespace and cuts s to at most n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
