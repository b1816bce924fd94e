package cli

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docrag/internal/chunking"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/services"
	"github.com/custodia-labs/docrag/internal/processors"
)

// letterEmbedder maps text to its normalised a-z letter histogram.
type letterEmbedder struct{}

func (letterEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	var norm float64
	for _, x := range v {
		norm += float64(x * x)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range v {
			v[i] /= n
		}
	}
	return v, nil
}

func (e letterEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

func (letterEmbedder) Dimensions() int            { return 26 }
func (letterEmbedder) ModelName() string          { return "letters" }
func (letterEmbedder) Ping(context.Context) error { return nil }
func (letterEmbedder) Close() error               { return nil }

type cliFixture struct {
	repo     *services.DocumentRepository
	metadata *memory.MetadataStore
	config   *memoryConfig
	dir      string
}

// setupTestServices wires real services over in-memory stores.
func setupTestServices(t *testing.T) *cliFixture {
	t.Helper()

	engine, err := chunking.NewEngine(domain.DefaultSettings().Chunking)
	require.NoError(t, err)

	vectors := memory.NewVectorStore(26)
	metadata := memory.NewMetadataStore()
	repo := services.NewDocumentRepository(memory.NewContentStore(), vectors, metadata, nil)
	settings := domain.DefaultSettings().Retrieval
	settings.MinScore = 0

	f := &cliFixture{repo: repo, metadata: metadata, config: newMemoryConfig(), dir: t.TempDir()}
	SetServices(&Services{
		Repository: repo,
		Retrieval:  services.NewRetrievalService(vectors, letterEmbedder{}, repo, settings, nil),
		Ingestion:  services.NewIngestionService(processors.Default(), engine, letterEmbedder{}, repo, nil),
		Config:     f.config,
	})
	t.Cleanup(func() { SetServices(&Services{}) })
	return f
}

func (f *cliFixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f *cliFixture) add(t *testing.T, rel, content string) *domain.Document {
	t.Helper()
	out, err := execute(t, "add", f.write(t, rel, content))
	require.NoError(t, err, out)
	docs, err := f.repo.GetAllDocuments(context.Background())
	require.NoError(t, err)
	for i := range docs {
		if filepath.Base(docs[i].SourcePath) == filepath.Base(rel) {
			return &docs[i]
		}
	}
	t.Fatalf("document for %s not stored", rel)
	return nil
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	// Cobra only hands the root context to subcommands without one.
	cmd.SetContext(nil) //nolint:staticcheck
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// safeBuffer is a bytes.Buffer safe for concurrent writers.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
