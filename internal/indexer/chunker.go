package indexer

import (
	"strings"
	"unicode/utf8"

	"grant-assistant/internal/kb"
)

// LineChunker splits documents into overlapping windows of whole lines.
// Size is measured in runes.
type LineChunker struct {
	size    int
	overlap int
}

// NewLineChunker creates a LineChunker with a target chunk size and the
// number of trailing runes carried into the next chunk.
func NewLineChunker(size, overlap int) *LineChunker {
	if overlap < 0 {
		overlap = 0
	}
	return &LineChunker{size: size, overlap: overlap}
}

// ChunkAll chunks every document in order.
func (c *LineChunker) ChunkAll(docs []kb.Document) []Chunk {
	var chunks []Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.ChunkDocument(doc)...)
	}
	return chunks
}

// ChunkDocument walks the document's lines, emitting a chunk whenever the
// next line would push the buffer past the size. The next buffer is seeded
// with the tail of the emitted chunk. A single line longer than the size
// becomes a chunk on its own.
func (c *LineChunker) ChunkDocument(doc kb.Document) []Chunk {
	lines := strings.Split(doc.Content, "\n")

	var (
		chunks []Chunk
		buf    string
		bufLen int
		start  int
	)

	emit := func(end int) {
		if strings.TrimSpace(buf) == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Path:      doc.Path,
			Filename:  doc.Filename,
			Title:     doc.Title,
			Content:   buf,
			StartLine: start,
			EndLine:   end,
			Priority:  doc.Priority,
		})
	}

	for i, line := range lines {
		lineLen := utf8.RuneCountInString(line)

		if buf != "" && bufLen+1+lineLen > c.size {
			emit(i)

			seed := c.overlapSeed(buf, lineLen)
			if seed != "" {
				buf = seed + "\n" + line
				bufLen = utf8.RuneCountInString(seed) + 1 + lineLen
				start = max(0, i-(strings.Count(seed, "\n")+1))
				continue
			}
			buf, bufLen, start = "", 0, i
		}

		if buf == "" {
			// Blank lines never open a buffer.
			if strings.TrimSpace(line) != "" {
				buf, bufLen = line, lineLen
			}
			continue
		}
		buf += "\n" + line
		bufLen += 1 + lineLen
	}

	emit(len(lines))
	return chunks
}

// overlapSeed returns the trailing runes of buf to carry into the next
// chunk, shortened so that seed, newline and next line fit the size.
func (c *LineChunker) overlapSeed(buf string, nextLineLen int) string {
	budget := min(c.overlap, c.size-nextLineLen-1)
	if budget <= 0 {
		return ""
	}
	return tailRunes(buf, budget)
}

func tailRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := len(s)
	for n > 0 && i > 0 {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		n--
	}
	return s[i:]
}
