package kb

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoader_LoadAll(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "quantitative/impact_stats.md", "# Impact Statistics\n\nWe served 1,200 families in 2023.")
	writeFile(t, root, "quantitative/donations_summary.md", "Totals by year.")
	writeFile(t, root, "contact/address.txt", "123 Main Street, Springfield")
	writeFile(t, root, "qualitative/story.html", "<html><head><title>Client Story</title><style>p{}</style></head><body><p>Maria found housing.</p><script>x()</script><p>She now mentors others.</p></body></html>")
	writeFile(t, root, "misc/image.png", "not text")
	writeFile(t, root, ".git/config", "[core]")
	writeFile(t, root, "broken/report.pdf", "this is not a pdf")

	docs, err := NewLoader(root).LoadAll(context.Background())
	require.NoError(t, err)

	byPath := make(map[string]Document, len(docs))
	for _, d := range docs {
		byPath[d.Path] = d
	}

	require.Len(t, docs, 4, "png, hidden dirs and the broken pdf are skipped")

	stats := byPath["quantitative/impact_stats.md"]
	assert.Equal(t, "Impact Statistics", stats.Title)
	assert.Equal(t, "impact_stats.md", stats.Filename)
	assert.Equal(t, PriorityQuantitative, stats.Priority)
	assert.Contains(t, stats.Content, "1,200 families")

	assert.Equal(t, PriorityDonationsSummary, byPath["quantitative/donations_summary.md"].Priority)

	address := byPath["contact/address.txt"]
	assert.Equal(t, PriorityContact, address.Priority)
	assert.Equal(t, "Address", address.Title)

	story := byPath["qualitative/story.html"]
	assert.Equal(t, "Client Story", story.Title)
	assert.Equal(t, "Maria found housing.\nShe now mentors others.", story.Content)
	assert.Equal(t, PriorityQualitative, story.Priority)

	for i := 1; i < len(docs); i++ {
		assert.Less(t, docs[i-1].Path, docs[i].Path, "documents are returned in path order")
	}
}

func TestLoader_LoadAll_MissingRoot(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "missing")).LoadAll(context.Background())
	assert.Error(t, err)
}

func TestLoader_LoadAll_RootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.txt", "hello")

	_, err := NewLoader(filepath.Join(root, "file.txt")).LoadAll(context.Background())
	assert.Error(t, err)
}

func TestMarkdownTitleFallsBackToH2ThenFilename(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/with_h2.md", "intro\n\n## Second Level\n\ntext")
	writeFile(t, root, "a/no_heading.md", "just text")

	e := newMarkdownExtractor()

	_, title, err := e.Extract(filepath.Join(root, "a/with_h2.md"))
	require.NoError(t, err)
	assert.Equal(t, "Second Level", title)

	_, title, err = e.Extract(filepath.Join(root, "a/no_heading.md"))
	require.NoError(t, err)
	assert.Equal(t, "No Heading", title)
}
